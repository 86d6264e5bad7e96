// Package geo defines geographic primitives for fire-front planning:
// points, cells, time windows and dense raster grids.
package geo

import (
	"fmt"
	"math"
)

// Point is a 2D position in world coordinates (metres).
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance to another point.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Cell is a discrete grid index.
type Cell struct {
	X, Y int
}

// PointTime is a position tagged with a time.
type PointTime struct {
	Pt   Point
	Time float64
}

// PointTimeWindow is a position tagged with a time interval.
type PointTimeWindow struct {
	Pt Point
	TW TimeWindow
}

// Grid is a dense width x height scalar field over geographic space.
// Values are stored row-major: index = x + y*Width. A Grid is immutable
// after construction; all planning components share it read-only.
type Grid struct {
	Width, Height    int
	XOffset, YOffset float64 // world position of cell (0,0) center
	CellSize         float64
	data             []float64
}

// NewGrid builds a grid from a dense row-major value slice.
func NewGrid(data []float64, width, height int, xOffset, yOffset, cellSize float64) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid: invalid dimensions %dx%d", width, height)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("grid: cell size must be positive, got %g", cellSize)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("grid: %d values for %dx%d grid", len(data), width, height)
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &Grid{
		Width:    width,
		Height:   height,
		XOffset:  xOffset,
		YOffset:  yOffset,
		CellSize: cellSize,
		data:     d,
	}, nil
}

// UniformGrid builds a grid with every cell set to v.
func UniformGrid(v float64, width, height int, xOffset, yOffset, cellSize float64) (*Grid, error) {
	data := make([]float64, width*height)
	for i := range data {
		data[i] = v
	}
	return NewGrid(data, width, height, xOffset, yOffset, cellSize)
}

// At returns the value stored at c. The cell must be in bounds.
func (g *Grid) At(c Cell) float64 {
	return g.data[c.X+c.Y*g.Width]
}

// Contains reports whether c is a valid cell index.
func (g *Grid) Contains(c Cell) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// CellOf converts a world point to the cell containing it.
// The second return value is false when the point falls outside the grid.
func (g *Grid) CellOf(p Point) (Cell, bool) {
	c := Cell{
		X: int(math.Round((p.X - g.XOffset) / g.CellSize)),
		Y: int(math.Round((p.Y - g.YOffset) / g.CellSize)),
	}
	return c, g.Contains(c)
}

// Center returns the world position of the center of c.
func (g *Grid) Center(c Cell) Point {
	return Point{
		X: g.XOffset + float64(c.X)*g.CellSize,
		Y: g.YOffset + float64(c.Y)*g.CellSize,
	}
}

// Values returns a copy of the raw row-major values.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.data))
	copy(out, g.data)
	return out
}
