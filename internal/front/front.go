// Package front derives the spatio-temporal fire-front model from raster
// data: per-cell arrival and departure times, propagation directions, and
// the projection of observation segments onto the front's position in time.
package front

import (
	"fmt"
	"math"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
)

// NeverReached marks cells the front never arrives at. Arrival values at or
// above it are treated as unburned.
const NeverReached = 1e30

// Data is the fire-front model derived once from an arrival-time grid and
// an elevation grid. It is immutable after construction and shared
// read-only by every plan derived from it; replanning builds a fresh Data
// from updated grids rather than mutating this one.
type Data struct {
	arrival   *geo.Grid
	elevation *geo.Grid
	departure *geo.Grid
	direction *geo.Grid
}

// New derives the front model. The two grids must have identical geometry.
func New(arrival, elevation *geo.Grid) (*Data, error) {
	if arrival == nil || elevation == nil {
		return nil, fmt.Errorf("front: arrival and elevation grids are required")
	}
	if arrival.Width != elevation.Width || arrival.Height != elevation.Height {
		return nil, fmt.Errorf("front: grid size mismatch %dx%d vs %dx%d",
			arrival.Width, arrival.Height, elevation.Width, elevation.Height)
	}
	d := &Data{arrival: arrival, elevation: elevation}
	d.departure = d.computeDeparture()
	d.direction = d.computeDirection()
	return d, nil
}

// Grid returns the arrival-time grid, e.g. for geometry lookups.
func (d *Data) Grid() *geo.Grid { return d.arrival }

// Arrival returns the time the front reaches c.
func (d *Data) Arrival(c geo.Cell) float64 { return d.arrival.At(c) }

// Departure returns the end of the informative window for c: the time the
// front has fully traversed the cell.
func (d *Data) Departure(c geo.Cell) float64 { return d.departure.At(c) }

// Direction returns the local propagation direction at c, in radians.
func (d *Data) Direction(c geo.Cell) float64 { return d.direction.At(c) }

// Elevation returns the terrain elevation at c.
func (d *Data) Elevation(c geo.Cell) float64 { return d.elevation.At(c) }

// Window returns the informative window [arrival, departure] of c.
func (d *Data) Window(c geo.Cell) geo.TimeWindow {
	return geo.TimeWindow{Start: d.Arrival(c), End: d.Departure(c)}
}

// computeDeparture estimates per-cell traversal end as the latest finite
// arrival among the cell's neighbors: once every reachable neighbor has
// ignited, the front has moved past the cell.
func (d *Data) computeDeparture() *geo.Grid {
	values := make([]float64, d.arrival.Width*d.arrival.Height)
	for y := 0; y < d.arrival.Height; y++ {
		for x := 0; x < d.arrival.Width; x++ {
			c := geo.Cell{X: x, Y: y}
			arr := d.arrival.At(c)
			if arr >= NeverReached {
				values[x+y*d.arrival.Width] = NeverReached
				continue
			}
			end := arr
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					n := geo.Cell{X: x + dx, Y: y + dy}
					if !d.arrival.Contains(n) {
						continue
					}
					na := d.arrival.At(n)
					if na < NeverReached && na > end {
						end = na
					}
				}
			}
			values[x+y*d.arrival.Width] = end
		}
	}
	g, _ := geo.NewGrid(values, d.arrival.Width, d.arrival.Height,
		d.arrival.XOffset, d.arrival.YOffset, d.arrival.CellSize)
	return g
}

// computeDirection estimates the propagation direction as the gradient of
// the arrival-time field. Cells without a usable gradient get direction 0.
func (d *Data) computeDirection() *geo.Grid {
	values := make([]float64, d.arrival.Width*d.arrival.Height)
	for y := 0; y < d.arrival.Height; y++ {
		for x := 0; x < d.arrival.Width; x++ {
			values[x+y*d.arrival.Width] = d.gradientDir(geo.Cell{X: x, Y: y})
		}
	}
	g, _ := geo.NewGrid(values, d.arrival.Width, d.arrival.Height,
		d.arrival.XOffset, d.arrival.YOffset, d.arrival.CellSize)
	return g
}

func (d *Data) gradientDir(c geo.Cell) float64 {
	dx, okx := d.partial(c, 1, 0)
	dy, oky := d.partial(c, 0, 1)
	if !okx && !oky {
		return 0
	}
	if !okx {
		dx = 0
	}
	if !oky {
		dy = 0
	}
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Atan2(dy, dx)
}

// partial is the finite-difference derivative of arrival time along one
// axis, falling back to one-sided differences at boundaries and next to
// unburned cells.
func (d *Data) partial(c geo.Cell, sx, sy int) (float64, bool) {
	fwd := geo.Cell{X: c.X + sx, Y: c.Y + sy}
	back := geo.Cell{X: c.X - sx, Y: c.Y - sy}
	here := d.arrival.At(c)
	if here >= NeverReached {
		return 0, false
	}

	fwdOK := d.arrival.Contains(fwd) && d.arrival.At(fwd) < NeverReached
	backOK := d.arrival.Contains(back) && d.arrival.At(back) < NeverReached
	switch {
	case fwdOK && backOK:
		return (d.arrival.At(fwd) - d.arrival.At(back)) / (2 * d.arrival.CellSize), true
	case fwdOK:
		return (d.arrival.At(fwd) - here) / d.arrival.CellSize, true
	case backOK:
		return (here - d.arrival.At(back)) / d.arrival.CellSize, true
	default:
		return 0, false
	}
}

// ProjectOnFront maps seg onto the front's estimated position at time t:
// a replacement segment of the same heading and length whose footprint
// center lies on a cell whose informative window contains t. The walk
// follows the local propagation direction (or its opposite, when the front
// has not yet reached the segment). ok is false when no such cell exists
// within the grid: the front has not reached or has fully passed the
// operating area at t.
func (d *Data) ProjectOnFront(seg uav.Segment, u uav.UAV, t float64) (uav.Segment, bool) {
	center := u.VisibilityCenter(seg)
	cell, ok := d.arrival.CellOf(center.Point())
	if !ok {
		return uav.Segment{}, false
	}

	maxSteps := d.arrival.Width + d.arrival.Height
	for step := 0; step < maxSteps; step++ {
		arr := d.Arrival(cell)
		if arr < NeverReached && d.Window(cell).Contains(t) {
			return d.moveSegmentTo(seg, u, cell), true
		}

		dir := d.Direction(cell)
		if arr >= NeverReached || arr > t {
			// Front has not reached this cell yet: walk back toward it.
			dir += math.Pi
		}
		next := neighborToward(cell, dir)
		if next == cell || !d.arrival.Contains(next) {
			return uav.Segment{}, false
		}
		cell = next
	}
	return uav.Segment{}, false
}

// moveSegmentTo translates seg so its footprint center sits on the center
// of c, lifting it to the local terrain elevation.
func (d *Data) moveSegmentTo(seg uav.Segment, u uav.UAV, c geo.Cell) uav.Segment {
	oldCenter := u.VisibilityCenter(seg)
	target := d.arrival.Center(c)
	start := seg.Start
	start.X += target.X - oldCenter.X
	start.Y += target.Y - oldCenter.Y
	start.Z = d.Elevation(c)
	return uav.NewSegment(start, seg.Length)
}

// neighborToward steps one cell in the direction closest to dir.
func neighborToward(c geo.Cell, dir float64) geo.Cell {
	dx := int(math.Round(math.Cos(dir)))
	dy := int(math.Round(math.Sin(dir)))
	return geo.Cell{X: c.X + dx, Y: c.Y + dy}
}
