// Package owm fetches current weather and forecasts from OpenWeatherMap
package owm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lixenwraith/windmap/weather"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// ErrCityNotFound is returned when the API answers 404 for the queried city
var ErrCityNotFound = errors.New("city not found")

// StatusUnavailable is shown when a refresh fails for any other reason
const StatusUnavailable = "weather unavailable"

// StatusText is the on-screen line for a failed refresh of city
func StatusText(city string, err error) string {
	if errors.Is(err, ErrCityNotFound) {
		if city == "" {
			return "city not found"
		}
		return fmt.Sprintf("%s: city not found", city)
	}
	return StatusUnavailable
}

// Fetcher returns the current report for a city
type Fetcher interface {
	Fetch(ctx context.Context, city string) (weather.Report, error)
}

// Client implements Fetcher against the OpenWeatherMap HTTP API
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client with metric units
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
	}
}

// WithBaseURL points the client at another API root, used by tests and proxies
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// Fetch reads current conditions, then the forecast
// A failed forecast is logged and leaves the report without forecast points
func (c *Client) Fetch(ctx context.Context, city string) (weather.Report, error) {
	var cur currentResponse
	if err := c.get(ctx, "weather", city, &cur); err != nil {
		return weather.Report{}, err
	}
	rep := cur.report()
	rep.FetchedAt = c.clock.Now()

	var fc forecastResponse
	if err := c.get(ctx, "forecast", city, &fc); err != nil {
		c.logger.Warn("forecast fetch failed", "city", city, "error", err)
		return rep, nil
	}
	rep.Forecast = fc.points()
	return rep, nil
}

func (c *Client) get(ctx context.Context, endpoint, city string, out any) error {
	params := url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %q: %w", endpoint, city, ErrCityNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// OpenWeatherMap API response types

type condition struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	Icon        string `json:"icon"` // "01d", "10n": the suffix marks day or night
}

type currentResponse struct {
	Name    string      `json:"name"`
	Dt      int64       `json:"dt"`
	Weather []condition `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

func (r currentResponse) report() weather.Report {
	rep := weather.Report{
		City:        r.Name,
		Country:     r.Sys.Country,
		Temperature: r.Main.Temp,
		Humidity:    r.Main.Humidity,
		Sunrise:     r.Sys.Sunrise,
		Sunset:      r.Sys.Sunset,
		TZOffset:    r.Timezone,
		Observation: weather.Observation{
			Speed:   r.Wind.Speed,
			Bearing: r.Wind.Deg,
		},
	}
	if len(r.Weather) > 0 {
		w := r.Weather[0]
		rep.Observation.Code = w.ID
		rep.Description = w.Description
		rep.Observation.IsNight = isNight(w.Icon, r.Dt, r.Sys.Sunrise, r.Sys.Sunset)
	} else {
		rep.Observation.IsNight = isNight("", r.Dt, r.Sys.Sunrise, r.Sys.Sunset)
	}
	return rep
}

// isNight trusts the icon suffix and falls back to the sun times
func isNight(icon string, dt, sunrise, sunset int64) bool {
	switch {
	case strings.HasSuffix(icon, "n"):
		return true
	case strings.HasSuffix(icon, "d"):
		return false
	case dt == 0 || sunrise == 0 || sunset == 0:
		return false
	}
	return dt < sunrise || dt >= sunset
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

func (r forecastResponse) points() []weather.ForecastPoint {
	if len(r.List) == 0 {
		return nil
	}
	pts := make([]weather.ForecastPoint, len(r.List))
	for i, item := range r.List {
		pts[i] = weather.ForecastPoint{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
			POP:         item.Pop,
		}
	}
	return pts
}
