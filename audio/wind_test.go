package audio

import (
	"math"
	"testing"
)

func TestGainFor(t *testing.T) {
	tests := []struct {
		speed float64
		want  float64
	}{
		{-3, 0},
		{0, 0},
		{math.NaN(), 0},
		{12.5, 0.5},
		{25, 1},
		{60, 1},
	}
	for _, tt := range tests {
		if got := GainFor(tt.speed); got != tt.want {
			t.Errorf("GainFor(%v) = %v, want %v", tt.speed, got, tt.want)
		}
	}
}

func TestNoiseBedGlidesToGain(t *testing.T) {
	bed := NewNoiseBed(1)
	buf := make([][2]float64, 512)

	bed.Stream(buf)
	for i, s := range buf {
		if s[0] != 0 {
			t.Fatalf("silent bed produced %v at %d", s[0], i)
		}
	}

	bed.SetGain(0.3)
	for i := 0; i < 40; i++ {
		if n, ok := bed.Stream(buf); n != len(buf) || !ok {
			t.Fatalf("bed stream ended: n=%d ok=%v", n, ok)
		}
	}
	if math.Abs(bed.Gain()-0.3) > 1e-3 {
		t.Errorf("gain = %v after glide, want 0.3", bed.Gain())
	}
	for _, s := range buf {
		if s[0] != s[1] || math.Abs(s[0]) > 1 {
			t.Fatalf("sample out of range or not mono: %v", s)
		}
	}
}

func TestSwooshEnds(t *testing.T) {
	g := NewSwoosh(sampleRate, 7)
	buf := make([][2]float64, 4096)
	total := 0
	for {
		n, ok := g.Stream(buf)
		total += n
		if !ok {
			break
		}
		if total > sampleRate.N(swooshLength)+len(buf) {
			t.Fatal("swoosh never ended")
		}
	}
	if total != sampleRate.N(swooshLength) {
		t.Errorf("swoosh length %d, want %d", total, sampleRate.N(swooshLength))
	}
}

func TestNopAmbience(t *testing.T) {
	var a Ambience = NopAmbience{}
	a.SetWind(10)
	a.Gust()
	a.Close()
}
