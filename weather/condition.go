package weather

// Category groups OpenWeatherMap condition ids by their hundreds digit
// 2xx thunderstorm, 3xx drizzle, 5xx rain, 6xx snow, 7xx atmosphere, 800 clear, 80x clouds
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryThunderstorm
	CategoryDrizzle
	CategoryRain
	CategorySnow
	CategoryAtmosphere
	CategoryClear
	CategoryClouds
)

var categoryNames = [...]string{
	CategoryUnknown:      "Unknown",
	CategoryThunderstorm: "Thunderstorm",
	CategoryDrizzle:      "Drizzle",
	CategoryRain:         "Rain",
	CategorySnow:         "Snow",
	CategoryAtmosphere:   "Atmosphere",
	CategoryClear:        "Clear",
	CategoryClouds:       "Clouds",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return categoryNames[CategoryUnknown]
}

// CategoryOf maps a condition id to its category
func CategoryOf(code int) Category {
	switch {
	case code >= 200 && code < 300:
		return CategoryThunderstorm
	case code >= 300 && code < 400:
		return CategoryDrizzle
	case code >= 500 && code < 600:
		return CategoryRain
	case code >= 600 && code < 700:
		return CategorySnow
	case code >= 700 && code < 800:
		return CategoryAtmosphere
	case code == 800:
		return CategoryClear
	case code > 800 && code < 900:
		return CategoryClouds
	}
	return CategoryUnknown
}

// IsOvercast reports whether the sky should carry mist blobs
// Matches ids 200-699 (storm, drizzle, rain, snow) and anything above 800 (clouds)
func IsOvercast(code int) bool {
	return (code >= 200 && code <= 699) || code > 800
}
