package weather

import (
	"fmt"
	"math"
	"time"
)

var cardinals = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// BearingToFlow converts a meteorological bearing (0° north, clockwise, wind FROM)
// into a canvas flow angle in radians within [0, 2π)
// Canvas space has 0 rad pointing east and π/2 pointing south (y grows downward),
// so the flow angle is the TOWARD direction: (bearing - 90 + 180) mod 360
func BearingToFlow(bearing float64) float64 {
	deg := math.Mod(bearing-90+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg * math.Pi / 180
}

// Cardinal returns the 8-point compass label nearest to the bearing
func Cardinal(bearing float64) string {
	idx := int(math.Round(bearing/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return cardinals[idx]
}

// FormatLocalTime renders a unix timestamp as "h:mm AM" in the location's offset
func FormatLocalTime(unix int64, tzOffset int) string {
	t := time.Unix(unix+int64(tzOffset), 0).UTC()
	hours := t.Hour()
	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	hours %= 12
	if hours == 0 {
		hours = 12
	}
	return fmt.Sprintf("%d:%02d %s", hours, t.Minute(), ampm)
}
