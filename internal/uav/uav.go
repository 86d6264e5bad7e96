package uav

import (
	"math"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
)

// UAV holds the capability constants of one aircraft. It is a pure
// capability object: all methods are functions of two waypoints and these
// constants, with no mutable state.
type UAV struct {
	MinTurnRadius float64 // metres
	MaxAirSpeed   float64 // metres per second
	MaxPitchAngle float64 // radians
	ViewWidth     float64 // sensor footprint width, metres
	ViewDepth     float64 // sensor footprint depth, metres
}

// TravelDistance returns the length of the shortest feasible path between
// two oriented waypoints. The path respects the minimum turn radius, so it
// is curved rather than straight-line whenever headings require it.
func (u UAV) TravelDistance(a, b Waypoint) float64 {
	path, ok := shortestDubins(a, b, u.MinTurnRadius)
	if !ok {
		return math.Hypot(b.X-a.X, b.Y-a.Y)
	}
	return path.length()
}

// TravelTime returns the time to fly between two oriented waypoints.
// Climb is limited by the maximum pitch angle; the slower of the
// horizontal and vertical motions dominates.
func (u UAV) TravelTime(a, b Waypoint) float64 {
	horizontal := u.TravelDistance(a, b) / u.MaxAirSpeed
	dz := math.Abs(b.Z - a.Z)
	if dz == 0 || u.MaxPitchAngle <= 0 {
		return horizontal
	}
	vertical := dz / (u.MaxAirSpeed * math.Sin(u.MaxPitchAngle))
	return math.Max(horizontal, vertical)
}

// VisibilityCenter returns the waypoint the sensor footprint is centered on
// while the aircraft traverses seg: the midpoint of the observation leg.
func (u UAV) VisibilityCenter(seg Segment) Waypoint {
	return seg.Start.Forward(seg.Length / 2)
}

// PathSampler walks the feasible curved path between two waypoints at a
// fixed spatial step. It is finite and restartable: Next returns waypoints
// until the destination is emitted, and Reset rewinds to the origin.
type PathSampler struct {
	path   dubinsPath
	a, b   Waypoint
	step   float64
	length float64
	pos    float64
	done   bool
}

// PathSampling builds a sampler over the shortest feasible path from a to b.
// The step must be positive.
func (u UAV) PathSampling(a, b Waypoint, step float64) *PathSampler {
	path, _ := shortestDubins(a, b, u.MinTurnRadius)
	return &PathSampler{path: path, a: a, b: b, step: step, length: path.length()}
}

// Next returns the next waypoint along the path. The final call emits the
// destination exactly; afterwards ok is false.
func (s *PathSampler) Next() (Waypoint, bool) {
	if s.done || s.step <= 0 {
		return Waypoint{}, false
	}
	if s.pos >= s.length {
		s.done = true
		return s.b, true
	}
	q := s.path.at(s.pos)
	frac := 0.0
	if s.length > 0 {
		frac = s.pos / s.length
	}
	wp := Waypoint{
		X:   q[0],
		Y:   q[1],
		Z:   s.a.Z + (s.b.Z-s.a.Z)*frac,
		Dir: q[2],
	}
	s.pos += s.step
	return wp, true
}

// Length returns the total length of the sampled path.
func (s *PathSampler) Length() float64 { return s.length }

// Reset rewinds the sampler to the origin waypoint.
func (s *PathSampler) Reset() {
	s.pos = 0
	s.done = false
}

// Collect drains the sampler into a slice.
func (s *PathSampler) Collect() []Waypoint {
	var out []Waypoint
	for {
		wp, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, wp)
	}
}

// ObservedCell returns the grid cell whose footprint center falls in g while
// the aircraft flies seg, if any.
func (u UAV) ObservedCell(seg Segment, g *geo.Grid) (geo.Cell, bool) {
	return g.CellOf(u.VisibilityCenter(seg).Point())
}
