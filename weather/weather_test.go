package weather

import (
	"math"
	"testing"
	"time"
)

func TestBearingToFlow(t *testing.T) {
	tests := []struct {
		name    string
		bearing float64
		want    float64
	}{
		{"North wind flows south", 0, math.Pi / 2},
		{"East wind flows west", 90, math.Pi},
		{"South wind flows north", 180, 3 * math.Pi / 2},
		{"West wind flows east", 270, 0},
		{"Full turn wraps", 360, math.Pi / 2},
		{"Negative bearing", -90, 0},
		{"North-east wind flows south-west", 45, 3 * math.Pi / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingToFlow(tt.bearing)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BearingToFlow(%v) = %v, want %v", tt.bearing, got, tt.want)
			}
			if got < 0 || got >= 2*math.Pi {
				t.Errorf("BearingToFlow(%v) = %v outside [0, 2π)", tt.bearing, got)
			}
		})
	}
}

func TestBearingToFlowMatchesFormula(t *testing.T) {
	for b := 0.0; b < 360; b += 7.5 {
		want := math.Mod(b-90+180, 360) * math.Pi / 180
		if got := BearingToFlow(b); math.Abs(got-want) > 1e-9 {
			t.Fatalf("bearing %v: got %v, want %v", b, got, want)
		}
	}
}

func TestCardinal(t *testing.T) {
	tests := []struct {
		bearing float64
		want    string
	}{
		{0, "N"}, {22, "N"}, {23, "NE"}, {45, "NE"}, {90, "E"},
		{135, "SE"}, {180, "S"}, {225, "SW"}, {270, "W"}, {315, "NW"},
		{350, "N"}, {359.9, "N"},
	}

	for _, tt := range tests {
		if got := Cardinal(tt.bearing); got != tt.want {
			t.Errorf("Cardinal(%v) = %q, want %q", tt.bearing, got, tt.want)
		}
	}
}

func TestFormatLocalTime(t *testing.T) {
	base := time.Date(2024, 6, 1, 5, 7, 0, 0, time.UTC).Unix()

	tests := []struct {
		name     string
		tzOffset int
		want     string
	}{
		{"UTC morning", 0, "5:07 AM"},
		{"Plus two hours", 7200, "7:07 AM"},
		{"Minus six hours wraps to evening", -6 * 3600, "11:07 PM"},
		{"Noon", 7 * 3600, "12:07 PM"},
		{"Midnight", 19 * 3600, "12:07 AM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLocalTime(base, tt.tzOffset); got != tt.want {
				t.Errorf("FormatLocalTime = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		code     int
		want     Category
		overcast bool
	}{
		{211, CategoryThunderstorm, true},
		{301, CategoryDrizzle, true},
		{502, CategoryRain, true},
		{601, CategorySnow, true},
		{741, CategoryAtmosphere, false},
		{800, CategoryClear, false},
		{803, CategoryClouds, true},
		{0, CategoryUnknown, false},
	}

	for _, tt := range tests {
		if got := CategoryOf(tt.code); got != tt.want {
			t.Errorf("CategoryOf(%d) = %v, want %v", tt.code, got, tt.want)
		}
		if got := IsOvercast(tt.code); got != tt.overcast {
			t.Errorf("IsOvercast(%d) = %v, want %v", tt.code, got, tt.overcast)
		}
	}
}

func TestObservationNormalized(t *testing.T) {
	obs := Observation{Speed: -3, Bearing: math.NaN()}.Normalized()
	if obs.Code != CodeClear {
		t.Errorf("Code = %d, want %d", obs.Code, CodeClear)
	}
	if obs.Speed != 0 || obs.Bearing != 0 {
		t.Errorf("expected zeroed speed/bearing, got %v/%v", obs.Speed, obs.Bearing)
	}
	if (Observation{}).Category() != CategoryClear {
		t.Error("absent code should count as clear")
	}
}

func TestReportLocationAndForecast(t *testing.T) {
	r := Report{City: "London", Country: "GB"}
	if got := r.Location(); got != "London, GB" {
		t.Errorf("Location = %q", got)
	}
	if got := (Report{City: "Oslo"}).Location(); got != "Oslo" {
		t.Errorf("Location = %q", got)
	}

	r.Forecast = make([]ForecastPoint, 12)
	if got := len(r.NextHours(8)); got != 8 {
		t.Errorf("NextHours(8) len = %d", got)
	}
	r.Forecast = r.Forecast[:3]
	if got := len(r.NextHours(8)); got != 3 {
		t.Errorf("NextHours(8) len = %d on short forecast", got)
	}
}
