package audio

import (
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(48000)

	// FullGainSpeed is the wind speed at which the noise bed reaches full gain
	FullGainSpeed = 25.0
	maxBedGain    = 0.35
	swooshLength  = 600 * time.Millisecond
)

// Ambience is the sound bed the animation drives
type Ambience interface {
	// SetWind sets the noise bed level for a wind speed in m/s
	SetWind(speed float64)
	// Gust plays a short swoosh, called on particle bursts
	Gust()
	Close()
}

// NopAmbience is the silent fallback when no speaker is available
type NopAmbience struct{}

func (NopAmbience) SetWind(float64) {}
func (NopAmbience) Gust()           {}
func (NopAmbience) Close()          {}

// GainFor maps wind speed to a bed gain in [0, 1]
func GainFor(speed float64) float64 {
	if speed <= 0 || math.IsNaN(speed) {
		return 0
	}
	if speed >= FullGainSpeed {
		return 1
	}
	return speed / FullGainSpeed
}

// Speaker plays the wind ambience through the system audio device
type Speaker struct {
	mu     sync.Mutex
	bed    *NoiseBed
	mixer  *beep.Mixer
	volume *effects.Volume
	rng    *rand.Rand
	closed bool
}

// OpenSpeaker initializes the speaker and starts the noise bed silent
// volume is in beep's exponential units, 0 is unity gain
func OpenSpeaker(volume float64) (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return nil, err
	}

	s := &Speaker{
		bed:   NewNoiseBed(time.Now().UnixNano()),
		mixer: &beep.Mixer{},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.mixer.Add(s.bed)
	s.volume = &effects.Volume{Streamer: s.mixer, Base: 2, Volume: volume}
	speaker.Play(s.volume)
	return s, nil
}

// SetWind retargets the bed gain; the bed glides to it per sample
func (s *Speaker) SetWind(speed float64) {
	s.bed.SetGain(GainFor(speed) * maxBedGain)
}

// Gust mixes in a one-shot swoosh
func (s *Speaker) Gust() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	sw := beep.Take(sampleRate.N(swooshLength), NewSwoosh(sampleRate, s.rng.Int63()))
	speaker.Lock()
	s.mixer.Add(sw)
	speaker.Unlock()
}

// Close silences and detaches all streamers
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Clear()
}

// NoiseBed streams low-passed noise at a gain settable from any goroutine
type NoiseBed struct {
	target atomic.Uint64 // float64 bits
	gain   float64
	lp     float64
	seed   int64
}

// NewNoiseBed creates a silent bed
func NewNoiseBed(seed int64) *NoiseBed {
	return &NoiseBed{seed: seed}
}

// SetGain sets the level the bed glides toward
func (b *NoiseBed) SetGain(g float64) {
	b.target.Store(math.Float64bits(g))
}

// Gain returns the current smoothed gain
func (b *NoiseBed) Gain() float64 {
	return b.gain
}

func (b *NoiseBed) Stream(samples [][2]float64) (n int, ok bool) {
	target := math.Float64frombits(b.target.Load())
	for i := range samples {
		// ~20ms glide at 48kHz avoids zipper noise on gain changes
		b.gain += (target - b.gain) * 0.001

		b.seed = (b.seed*1103515245 + 12345) & 0x7fffffff
		white := float64(b.seed)/float64(0x7fffffff)*2 - 1

		// One-pole low-pass turns white noise into a rushing wind tone
		b.lp += (white - b.lp) * 0.05

		v := b.lp * b.gain * 3
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (b *NoiseBed) Err() error {
	return nil
}

// Swoosh is a noise burst swept by a sine envelope
type Swoosh struct {
	sr      beep.SampleRate
	pos     int
	samples int
	lp      float64
	seed    int64
}

// NewSwoosh creates a swoosh generator lasting swooshLength
func NewSwoosh(sr beep.SampleRate, seed int64) *Swoosh {
	return &Swoosh{sr: sr, samples: sr.N(swooshLength), seed: seed & 0x7fffffff}
}

func (g *Swoosh) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.samples {
			return i, i > 0
		}
		phase := float64(g.pos) / float64(g.samples)
		envelope := math.Sin(phase * math.Pi)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		white := float64(g.seed)/float64(0x7fffffff)*2 - 1

		// Cutoff opens then closes with the envelope
		g.lp += (white - g.lp) * (0.02 + 0.2*envelope)

		v := 0.3 * envelope * g.lp
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *Swoosh) Err() error {
	return nil
}
