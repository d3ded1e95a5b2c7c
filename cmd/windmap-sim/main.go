// Command windmap-sim steps the animation headless on a fake clock and prints what it produced
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/lixenwraith/windmap/engine"
	"github.com/lixenwraith/windmap/observability"
	"github.com/lixenwraith/windmap/weather"
)

var (
	frames  = flag.Int("frames", 600, "Frames to step")
	cols    = flag.Int("cols", 120, "Surface width in cells")
	rows    = flag.Int("rows", 40, "Surface height in cells")
	speed   = flag.Float64("speed", 5, "Wind speed m/s")
	bearing = flag.Float64("bearing", 270, "Wind bearing degrees (direction the wind blows from)")
	code    = flag.Int("code", 800, "Weather condition code")
	night   = flag.Bool("night", false, "Night palette")
	seed    = flag.Int64("seed", 1, "Random seed")
	asJSON  = flag.Bool("json", false, "Print stats as JSON")
	dump    = flag.Bool("dump", false, "Print the glyphs of the last frame")
	verbose = flag.Bool("v", false, "Debug log to stderr")
)

func main() {
	flag.Parse()

	if *frames < 1 || *cols < 1 || *rows < 1 {
		fmt.Fprintln(os.Stderr, "windmap-sim: frames, cols and rows must be positive")
		os.Exit(2)
	}

	logger := observability.Discard()
	if *verbose {
		logger = observability.NewLogger("debug", "text", os.Stderr)
	}

	clock := clockwork.NewFakeClock()
	surface := engine.NewHeadless(*cols, *rows)
	wm := engine.New(engine.Options{
		Clock:  clock,
		Rand:   rand.New(rand.NewSource(*seed)),
		Logger: logger,
	})
	defer wm.Close()

	wm.Init(context.Background(), surface, weather.Observation{
		Speed:   *speed,
		Bearing: *bearing,
		Code:    *code,
		IsNight: *night,
	})
	// Frames are stepped here, not by the loop's ticker
	wm.Stop()

	start := time.Now()
	for i := 0; i < *frames; i++ {
		wm.Step()
		clock.Advance(engine.DefaultFrameInterval)
	}
	elapsed := time.Since(start)

	st := wm.Stats()
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			fmt.Fprintf(os.Stderr, "windmap-sim: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Printf("state:      %s\n", st.State)
		fmt.Printf("frames:     %d (presented %d)\n", st.Frames, surface.Frames())
		fmt.Printf("bursts:     %d\n", st.Bursts)
		fmt.Printf("particles:  %d (target %d, ceiling %d)\n", st.Particles, st.Band.Target, st.Band.Ceiling)
		fmt.Printf("direction:  %.1f° (target %.1f°)\n", degrees(st.Direction), degrees(st.Target))
		fmt.Printf("elapsed:    %v (%.1f µs/frame)\n", elapsed, float64(elapsed.Microseconds())/float64(*frames))
	}

	if *dump {
		if buf := surface.Last(); buf != nil {
			cells := buf.Cells()
			var sb strings.Builder
			for y := 0; y < buf.Height(); y++ {
				for x := 0; x < buf.Width(); x++ {
					r := cells[y*buf.Width()+x].Rune
					if r == 0 {
						r = ' '
					}
					sb.WriteRune(r)
				}
				sb.WriteByte('\n')
			}
			fmt.Print(sb.String())
		}
	}
}

func degrees(rad float64) float64 {
	return math.Mod(rad*180/math.Pi+360, 360)
}
