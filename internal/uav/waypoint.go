// Package uav models the kinematic and sensing capabilities of a fixed-wing
// observation aircraft: oriented waypoints, observation segments and
// turn-radius-constrained (Dubins) travel between waypoints.
package uav

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
)

// Waypoint is an oriented position: world coordinates plus heading (radians).
type Waypoint struct {
	X, Y, Z float64
	Dir     float64
}

// Point drops altitude and heading.
func (w Waypoint) Point() geo.Point {
	return geo.Point{X: w.X, Y: w.Y}
}

// Forward returns the waypoint advanced by dist along its heading.
func (w Waypoint) Forward(dist float64) Waypoint {
	return Waypoint{
		X:   w.X + math.Cos(w.Dir)*dist,
		Y:   w.Y + math.Sin(w.Dir)*dist,
		Z:   w.Z,
		Dir: w.Dir,
	}
}

func (w Waypoint) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.3f)", w.X, w.Y, w.Z, w.Dir)
}

// Segment is a directed straight observation leg flown at constant heading.
// Start and End share the heading; Length is the ground distance between
// them. A zero-length segment is a single observation point.
type Segment struct {
	Start, End Waypoint
	Length     float64
}

// NewSegment builds a segment from a start waypoint and a length.
func NewSegment(start Waypoint, length float64) Segment {
	return Segment{Start: start, End: start.Forward(length), Length: length}
}

// SegmentBetween builds a segment from two waypoints, taking the heading
// and length from the straight line joining them.
func SegmentBetween(a, b Waypoint) Segment {
	dir := math.Atan2(b.Y-a.Y, b.X-a.X)
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if length == 0 {
		dir = a.Dir
	}
	a.Dir = dir
	b.Dir = dir
	return Segment{Start: a, End: b, Length: length}
}

// Equal reports whether two segments coincide within tolerance eps.
func (s Segment) Equal(o Segment, eps float64) bool {
	return math.Abs(s.Start.X-o.Start.X) <= eps &&
		math.Abs(s.Start.Y-o.Start.Y) <= eps &&
		math.Abs(s.Start.Z-o.Start.Z) <= eps &&
		math.Abs(angleDiff(s.Start.Dir, o.Start.Dir)) <= eps &&
		math.Abs(s.Length-o.Length) <= eps
}

func (s Segment) String() string {
	return fmt.Sprintf("[%v -> %v, len %.2f]", s.Start, s.End, s.Length)
}

// angleDiff returns the signed smallest difference between two angles.
func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	}
	if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// mod2pi wraps an angle into [0, 2*pi).
func mod2pi(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}
