package uav

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

var testUAV = UAV{
	MinTurnRadius: 30,
	MaxAirSpeed:   18,
	MaxPitchAngle: 6 * math.Pi / 180,
	ViewWidth:     100,
	ViewDepth:     100,
}

func TestTravelDistanceStraight(t *testing.T) {
	a := Waypoint{X: 0, Y: 0, Dir: 0}
	b := Waypoint{X: 500, Y: 0, Dir: 0}

	d := testUAV.TravelDistance(a, b)
	if !scalar.EqualWithinAbs(d, 500, 1e-6) {
		t.Errorf("Aligned waypoints should fly straight: got %g, want 500", d)
	}
}

func TestTravelDistanceLowerBound(t *testing.T) {
	// The Dubins path can never beat the straight line.
	cases := []struct{ a, b Waypoint }{
		{Waypoint{0, 0, 0, 0}, Waypoint{100, 50, 0, math.Pi / 2}},
		{Waypoint{0, 0, 0, math.Pi}, Waypoint{200, 0, 0, 0}},
		{Waypoint{0, 0, 0, 0}, Waypoint{10, 0, 0, 0}},
		{Waypoint{50, 80, 0, 1.2}, Waypoint{-40, 10, 0, -2.5}},
	}
	for _, c := range cases {
		d := testUAV.TravelDistance(c.a, c.b)
		euclid := math.Hypot(c.b.X-c.a.X, c.b.Y-c.a.Y)
		if d < euclid-1e-6 {
			t.Errorf("TravelDistance(%v, %v) = %g below euclidean %g", c.a, c.b, d, euclid)
		}
	}
}

func TestTravelDistanceTurnAround(t *testing.T) {
	// Reversing heading in place requires at least a half turn on each side.
	a := Waypoint{X: 0, Y: 0, Dir: 0}
	b := Waypoint{X: 0, Y: 0, Dir: math.Pi}

	d := testUAV.TravelDistance(a, b)
	if d < math.Pi*testUAV.MinTurnRadius {
		t.Errorf("Turn-around distance %g below half circumference %g",
			d, math.Pi*testUAV.MinTurnRadius)
	}
}

func TestTravelTimeClimbLimited(t *testing.T) {
	a := Waypoint{X: 0, Y: 0, Z: 0, Dir: 0}
	b := Waypoint{X: 10, Y: 0, Z: 500, Dir: 0}

	tt := testUAV.TravelTime(a, b)
	climb := 500 / (testUAV.MaxAirSpeed * math.Sin(testUAV.MaxPitchAngle))
	if !scalar.EqualWithinAbs(tt, climb, 1e-6) {
		t.Errorf("Steep climb should be pitch limited: got %g, want %g", tt, climb)
	}
}

func TestPathSamplingEndsAtDestination(t *testing.T) {
	a := Waypoint{X: 0, Y: 0, Dir: 0}
	b := Waypoint{X: 300, Y: 200, Dir: math.Pi / 3}

	sampler := testUAV.PathSampling(a, b, 10)
	wps := sampler.Collect()
	if len(wps) < 2 {
		t.Fatalf("Expected several samples, got %d", len(wps))
	}

	last := wps[len(wps)-1]
	if !scalar.EqualWithinAbs(last.X, b.X, 1e-6) || !scalar.EqualWithinAbs(last.Y, b.Y, 1e-6) {
		t.Errorf("Last sample %v is not the destination %v", last, b)
	}

	// Consecutive samples stay near the requested step.
	for i := 1; i < len(wps)-1; i++ {
		d := math.Hypot(wps[i].X-wps[i-1].X, wps[i].Y-wps[i-1].Y)
		if d > 10+1e-6 {
			t.Errorf("Sample spacing %g exceeds step at index %d", d, i)
		}
	}
}

func TestPathSamplerReset(t *testing.T) {
	a := Waypoint{X: 0, Y: 0, Dir: 0}
	b := Waypoint{X: 100, Y: 40, Dir: 0}

	sampler := testUAV.PathSampling(a, b, 25)
	first := sampler.Collect()
	sampler.Reset()
	second := sampler.Collect()

	if len(first) != len(second) {
		t.Fatalf("Reset changed sample count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Sample %d differs after reset: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestVisibilityCenter(t *testing.T) {
	seg := NewSegment(Waypoint{X: 100, Y: 200, Dir: 0}, 80)
	c := testUAV.VisibilityCenter(seg)
	if !scalar.EqualWithinAbs(c.X, 140, 1e-9) || !scalar.EqualWithinAbs(c.Y, 200, 1e-9) {
		t.Errorf("Footprint center should be the segment midpoint, got %v", c)
	}

	point := NewSegment(Waypoint{X: 5, Y: 7, Dir: 1}, 0)
	c = testUAV.VisibilityCenter(point)
	if c.X != 5 || c.Y != 7 {
		t.Errorf("Zero-length segment observes its own position, got %v", c)
	}
}

func TestSegmentBetween(t *testing.T) {
	s := SegmentBetween(Waypoint{X: 0, Y: 0}, Waypoint{X: 0, Y: 50})
	if !scalar.EqualWithinAbs(s.Length, 50, 1e-9) {
		t.Errorf("Length = %g, want 50", s.Length)
	}
	if !scalar.EqualWithinAbs(s.Start.Dir, math.Pi/2, 1e-9) {
		t.Errorf("Heading = %g, want pi/2", s.Start.Dir)
	}
}

func TestSegmentEqual(t *testing.T) {
	s := NewSegment(Waypoint{X: 10, Y: 20, Dir: 0.5}, 30)
	if !s.Equal(s, 1e-9) {
		t.Error("Segment should equal itself")
	}
	shifted := NewSegment(Waypoint{X: 10.5, Y: 20, Dir: 0.5}, 30)
	if s.Equal(shifted, 0.1) {
		t.Error("Shifted segment should not be equal within 0.1")
	}
}
