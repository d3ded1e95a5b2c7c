package particle

import (
	"math/rand"
	"testing"

	"github.com/lixenwraith/windmap/flow"
)

var canvas = Bounds{W: 800, H: 600}

func newTestPool(seed int64, isNight bool) *Pool {
	return NewPool(rand.New(rand.NewSource(seed)), isNight)
}

func TestBandFor(t *testing.T) {
	tests := []struct {
		speed   float64
		windy   bool
		target  int
		ceiling int
	}{
		{0, false, CalmTarget, CalmCeiling},
		{10, false, CalmTarget, CalmCeiling},
		{10.1, true, WindyTarget, WindyCeiling},
		{40, true, WindyTarget, WindyCeiling},
	}

	for _, tt := range tests {
		b := BandFor(tt.speed)
		if b.Windy != tt.windy || b.Target != tt.target || b.Ceiling != tt.ceiling {
			t.Errorf("BandFor(%v) = %+v", tt.speed, b)
		}
		if b.Ceiling > HardCeiling {
			t.Errorf("band ceiling %d above hard ceiling", b.Ceiling)
		}
	}
}

func TestCreateInitial(t *testing.T) {
	p := newTestPool(1, false)
	p.CreateInitial(CalmTarget, canvas)

	if p.Len() != CalmTarget {
		t.Fatalf("Len() = %d, want %d", p.Len(), CalmTarget)
	}
	for i, pt := range p.Particles() {
		if pt.X < 0 || pt.X >= canvas.W || pt.Y < 0 || pt.Y >= canvas.H {
			t.Errorf("particle %d at (%v,%v) outside canvas", i, pt.X, pt.Y)
		}
		if pt.Life < LifeMin || pt.Life >= LifeMin+LifeSpan {
			t.Errorf("particle %d life %v out of range", i, pt.Life)
		}
		if len(pt.Trail) != 0 || pt.Age != 0 {
			t.Errorf("particle %d not fresh: age=%d trail=%d", i, pt.Age, len(pt.Trail))
		}
		if pt.Thickness < ThicknessMin || pt.Thickness >= ThicknessMax {
			t.Errorf("particle %d thickness %v", i, pt.Thickness)
		}
		if pt.SpeedMult < SpeedMultMin || pt.SpeedMult >= SpeedMultMax {
			t.Errorf("particle %d speedMult %v", i, pt.SpeedMult)
		}
		if !DayPalette.Contains(pt.Hue) {
			t.Errorf("particle %d hue %v outside day palette", i, pt.Hue)
		}
	}

	p.CreateInitial(HardCeiling+100, canvas)
	if p.Len() != HardCeiling {
		t.Errorf("CreateInitial above hard ceiling gave %d", p.Len())
	}
}

func TestNightPalette(t *testing.T) {
	p := newTestPool(2, true)
	p.CreateInitial(50, canvas)
	for _, pt := range p.Particles() {
		if !NightPalette.Contains(pt.Hue) {
			t.Fatalf("hue %v outside night palette", pt.Hue)
		}
		_, s, l := pt.Color.Hsl()
		if l < 0.65 || s < 0.6 {
			t.Fatalf("night color too dark/dull: s=%v l=%v", s, l)
		}
	}

	p.SetNight(false)
	p.Reset(p.Particles()[0], canvas)
	if !DayPalette.Contains(p.Particles()[0].Hue) {
		t.Error("reset after SetNight(false) did not use day palette")
	}
}

func TestResetPreservesIdentity(t *testing.T) {
	p := newTestPool(3, false)
	p.CreateInitial(10, canvas)

	pt := p.Particles()[4]
	pt.Age = 99
	pt.X, pt.Y = -500, -500
	pt.Trail = append(pt.Trail, Point{1, 1}, Point{2, 2})
	trailBacking := &pt.Trail[:1][0]

	p.Reset(pt, canvas)

	if p.Particles()[4] != pt {
		t.Fatal("reset replaced the particle pointer")
	}
	if pt.Age != 0 || len(pt.Trail) != 0 {
		t.Errorf("reset left age=%d trail=%d", pt.Age, len(pt.Trail))
	}
	if &pt.Trail[:1][0] != trailBacking {
		t.Error("reset reallocated the trail")
	}
	if p.Len() != 10 {
		t.Errorf("pool size changed to %d", p.Len())
	}
}

func TestTrailFIFO(t *testing.T) {
	pt := &Particle{Trail: make([]Point, 0, TrailCap)}
	for i := 0; i < TrailCap+5; i++ {
		pt.X = float64(i)
		pt.pushTrail()
		if len(pt.Trail) > TrailCap {
			t.Fatalf("trail grew to %d", len(pt.Trail))
		}
	}
	if pt.Trail[0].X != 5 {
		t.Errorf("oldest kept point = %v, want 5", pt.Trail[0].X)
	}
	if pt.Trail[TrailCap-1].X != float64(TrailCap+4) {
		t.Errorf("newest point = %v", pt.Trail[TrailCap-1].X)
	}
}

func TestSpawnBurstRespectsCeiling(t *testing.T) {
	for _, speed := range []float64{5, 20} {
		p := newTestPool(4, false)
		p.SetSpeed(speed)
		band := p.Band()
		p.CreateInitial(band.Target, canvas)

		for i := 0; i < 40; i++ {
			p.SpawnBurst(BurstSize, canvas)
			if p.Len() > band.Ceiling {
				t.Fatalf("speed %v: pool %d above ceiling %d after burst %d", speed, p.Len(), band.Ceiling, i)
			}
		}
		if p.Len() != band.Ceiling {
			t.Errorf("speed %v: expected pool to saturate at %d, got %d", speed, band.Ceiling, p.Len())
		}
	}
}

func TestSpawnBurstShortLived(t *testing.T) {
	p := newTestPool(5, false)
	p.CreateInitial(10, canvas)
	p.SpawnBurst(BurstSize, canvas)

	ps := p.Particles()
	if len(ps) != 10+BurstSize {
		t.Fatalf("Len() = %d", len(ps))
	}
	for _, pt := range ps[10:] {
		if !pt.Burst || pt.Life != BurstLife {
			t.Errorf("burst particle life=%v burst=%v", pt.Life, pt.Burst)
		}
	}
}

func TestTrimOldestFirst(t *testing.T) {
	p := newTestPool(6, false)
	p.CreateInitial(10, canvas)
	keep := p.Particles()[3]

	if n := p.Trim(7); n != 3 {
		t.Fatalf("Trim dropped %d, want 3", n)
	}
	if p.Particles()[0] != keep {
		t.Error("Trim did not drop from the front")
	}
	if n := p.Trim(100); n != 0 || p.Len() != 7 {
		t.Errorf("Trim above size dropped %d", n)
	}
}

func TestSetSpeedTrims(t *testing.T) {
	p := newTestPool(7, false)
	p.SetSpeed(20)
	p.CreateInitial(WindyTarget, canvas)
	p.SetSpeed(3)
	if p.Len() != CalmCeiling {
		t.Errorf("calming down left %d particles, want %d", p.Len(), CalmCeiling)
	}
	if p.NeedsRecreate() {
		t.Error("150 particles against a 120 target is within slack")
	}
}

func TestNeedsRecreate(t *testing.T) {
	p := newTestPool(8, false)
	if !p.NeedsRecreate() {
		t.Error("empty pool must be recreated")
	}
	p.CreateInitial(CalmTarget+RecreateSlack, canvas)
	if p.NeedsRecreate() {
		t.Error("pool within slack recreated")
	}
	p.SetSpeed(20)
	if !p.NeedsRecreate() {
		t.Error("calm pool under windy band should be recreated")
	}
}

func TestAdvanceRecyclesDeadParticles(t *testing.T) {
	p := newTestPool(9, false)
	p.CreateInitial(5, canvas)
	field := flow.NewField()
	st := &flow.State{}

	dying := p.Particles()[0]
	dying.Age = int(dying.Life) + 1

	p.Advance(field, st, 5, canvas)

	if dying.Age != 0 {
		t.Errorf("dead particle age = %d after update, want 0", dying.Age)
	}
	if dying.X < 0 || dying.X >= canvas.W || dying.Y < 0 || dying.Y >= canvas.H {
		t.Errorf("dead particle reset outside canvas: (%v,%v)", dying.X, dying.Y)
	}
}

func TestAdvanceRecyclesOutOfBounds(t *testing.T) {
	p := newTestPool(10, false)
	p.CreateInitial(5, canvas)
	field := flow.NewField()
	st := &flow.State{}

	escaped := p.Particles()[1]
	escaped.X = canvas.W + BoundsMargin + 10
	escaped.Age = 1

	p.Advance(field, st, 5, canvas)

	if escaped.Age != 0 || escaped.X >= canvas.W {
		t.Errorf("out-of-bounds particle not reset: age=%d x=%v", escaped.Age, escaped.X)
	}
}

func TestAdvanceMovesAlongDirection(t *testing.T) {
	p := newTestPool(11, false)
	p.CreateInitial(1, canvas)
	pt := p.Particles()[0]
	pt.X, pt.Y = 400, 300
	pt.Life = 1000

	field := flow.Field{} // no perturbation
	st := &flow.State{Direction: 0}

	p.Advance(field, st, 1, canvas) // speed clamps up to SpeedFloor
	wantX := 400 + SpeedFloor*pt.SpeedMult
	if diff := pt.X - wantX; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("x = %v, want %v", pt.X, wantX)
	}
	if pt.Y < 299.999 || pt.Y > 300.001 {
		t.Errorf("y drifted to %v", pt.Y)
	}
	if len(pt.Trail) != 1 || pt.Trail[0].X != pt.X {
		t.Errorf("trail not appended: %v", pt.Trail)
	}
}
