package weather

import (
	"math"
	"time"
)

// CodeClear is the OpenWeatherMap condition id for a clear sky
const CodeClear = 800

// Observation is the wind input of the animation, refreshed once per weather fetch
type Observation struct {
	Speed   float64 `json:"speed"`   // m/s
	Bearing float64 `json:"bearing"` // degrees, direction wind blows FROM
	Code    int     `json:"code"`    // condition id, 0 means unknown
	IsNight bool    `json:"is_night"`
}

// Normalized returns a copy with an absent condition code defaulted to clear
func (o Observation) Normalized() Observation {
	if o.Code == 0 {
		o.Code = CodeClear
	}
	if math.IsNaN(o.Speed) || o.Speed < 0 {
		o.Speed = 0
	}
	if math.IsNaN(o.Bearing) {
		o.Bearing = 0
	}
	return o
}

// Category returns the condition group of the observation
func (o Observation) Category() Category {
	return CategoryOf(o.Normalized().Code)
}

// Report is a full fetch result: the observation plus what the header shows
type Report struct {
	Observation Observation `json:"observation"`

	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"` // °C
	Humidity    int     `json:"humidity"`    // %
	Description string  `json:"description"`

	Sunrise  int64 `json:"sunrise"`  // unix seconds
	Sunset   int64 `json:"sunset"`   // unix seconds
	TZOffset int   `json:"tz_offset"` // seconds east of UTC

	Forecast  []ForecastPoint `json:"forecast,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// ForecastPoint is one interval of the forecast list
type ForecastPoint struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	POP         float64   `json:"pop"` // probability of precipitation, 0..1
}

// Location formats "City, CC", dropping empty parts
func (r Report) Location() string {
	switch {
	case r.City == "" && r.Country == "":
		return ""
	case r.Country == "":
		return r.City
	case r.City == "":
		return r.Country
	}
	return r.City + ", " + r.Country
}

// NextHours returns at most n leading forecast points
func (r Report) NextHours(n int) []ForecastPoint {
	if n <= 0 || len(r.Forecast) == 0 {
		return nil
	}
	if len(r.Forecast) < n {
		n = len(r.Forecast)
	}
	return r.Forecast[:n]
}
