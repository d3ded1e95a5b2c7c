package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/lixenwraith/windmap/terminal"
	"github.com/lixenwraith/windmap/weather"
)

// ForecastPoints is the number of forecast intervals in the strip
const ForecastPoints = 8

// StatusPrefix marks the feed status line
const StatusPrefix = "⚠ "

// SparklineChars provides 8-level vertical resolution
var SparklineChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// HeaderText formats the conditions line
// Without a report only the wind part is shown
func HeaderText(obs weather.Observation, rep *weather.Report) string {
	wind := fmt.Sprintf("wind %.1f m/s %s", obs.Speed, weather.Cardinal(obs.Bearing))
	if rep == nil {
		return wind
	}

	parts := make([]string, 0, 6)
	if loc := rep.Location(); loc != "" {
		parts = append(parts, loc)
	}
	parts = append(parts, fmt.Sprintf("%d°C", int(math.Round(rep.Temperature))))
	if rep.Description != "" {
		parts = append(parts, rep.Description)
	}
	parts = append(parts, wind)
	if rep.Humidity > 0 {
		parts = append(parts, fmt.Sprintf("hum %d%%", rep.Humidity))
	}
	if rep.Sunrise != 0 && rep.Sunset != 0 {
		parts = append(parts, fmt.Sprintf("↑%s ↓%s",
			weather.FormatLocalTime(rep.Sunrise, rep.TZOffset),
			weather.FormatLocalTime(rep.Sunset, rep.TZOffset)))
	}
	return strings.Join(parts, "  ")
}

// drawHeader writes the conditions line on the top row and any feed status below it
func (r *Renderer) drawHeader(buf *Buffer, f *Frame, obs weather.Observation) {
	ink, accent := Ink(obs.IsNight)
	buf.Text(1, 0, HeaderText(obs, f.Report), ink, terminal.AttrNone)
	if f.Status != "" && buf.Height() > 1 {
		buf.Text(1, 1, StatusPrefix+f.Status, accent, terminal.AttrBold)
	}
}

// Sparkline maps values onto block characters scaled between their min and max
// A flat series renders at the lowest level
func Sparkline(values []float64) []rune {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rangeV := hi - lo
	if rangeV == 0 {
		rangeV = 1
	}

	out := make([]rune, len(values))
	for i, v := range values {
		norm := (v - lo) / rangeV
		idx := int(norm * 7.99)
		if idx < 0 {
			idx = 0
		}
		if idx > 7 {
			idx = 7
		}
		out[i] = SparklineChars[idx]
	}
	return out
}

// drawForecast writes "HH▅ HH▆ ..  lo–hi°C" on the bottom row, left aligned
func (r *Renderer) drawForecast(buf *Buffer, f *Frame, isNight bool) {
	if f.Report == nil || buf.Height() < 3 {
		return
	}
	points := f.Report.NextHours(ForecastPoints)
	if len(points) == 0 {
		return
	}

	temps := make([]float64, len(points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		temps[i] = p.Temperature
		lo = math.Min(lo, p.Temperature)
		hi = math.Max(hi, p.Temperature)
	}
	spark := Sparkline(temps)

	ink, accent := Ink(isNight)
	y := buf.Height() - 1
	x := 1
	offset := f.Report.TZOffset
	for i, p := range points {
		hour := p.Time.Add(time.Duration(offset) * time.Second).UTC().Hour()
		x = buf.Text(x, y, fmt.Sprintf("%02d", hour), ink, terminal.AttrDim)
		buf.SetFgOnly(x, y, spark[i], accent, terminal.AttrNone)
		x += 2
	}
	buf.Text(x, y, fmt.Sprintf(" %d–%d°C", int(math.Round(lo)), int(math.Round(hi))), ink, terminal.AttrNone)
}
