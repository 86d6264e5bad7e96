// Package report renders finished planning episodes to PNG files: the
// front arrival-time field with the planned trajectories drawn on top,
// and the cost history across the search's intermediate snapshots.
package report

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/elektrokombinacija/firefront-research/internal/front"
	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/plan"
	"github.com/elektrokombinacija/firefront-research/internal/vns"
)

// sampleStep is the along-path spacing, in meters, used when flattening
// trajectories to polylines for drawing.
const sampleStep = 25.0

// arrivalGrid adapts a front arrival field to the heat map's grid
// interface. Cells the front never reaches are clamped to the latest
// finite arrival so they do not blow out the color scale.
type arrivalGrid struct {
	g     *geo.Grid
	limit float64
}

func newArrivalGrid(g *geo.Grid) arrivalGrid {
	limit := 0.0
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if v := g.At(geo.Cell{X: x, Y: y}); v < front.NeverReached && v > limit {
				limit = v
			}
		}
	}
	return arrivalGrid{g: g, limit: limit}
}

func (a arrivalGrid) Dims() (c, r int) { return a.g.Width, a.g.Height }

func (a arrivalGrid) Z(c, r int) float64 {
	v := a.g.At(geo.Cell{X: c, Y: r})
	if v > a.limit {
		return a.limit
	}
	return v
}

func (a arrivalGrid) X(c int) float64 { return a.g.Center(geo.Cell{X: c}).X }
func (a arrivalGrid) Y(r int) float64 { return a.g.Center(geo.Cell{Y: r}).Y }

// RenderPlan draws the plan over its front's arrival-time field and
// saves the result as a PNG at path.
func RenderPlan(p *plan.Plan, title, path string) error {
	pl := plot.New()
	pl.Title.Text = title
	pl.X.Label.Text = "East (m)"
	pl.Y.Label.Text = "North (m)"

	grid := newArrivalGrid(p.Front().Grid())
	heat := plotter.NewHeatMap(grid, moreland.SmoothBlueRed().Palette(255))
	pl.Add(heat)

	for ti := 0; ti < p.NumTrajectories(); ti++ {
		traj := p.Trajectory(ti)
		pts := make(plotter.XYs, 0, traj.Size())
		for _, wp := range traj.Sampled(sampleStep) {
			pts = append(pts, plotter.XY{X: wp.X, Y: wp.Y})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = color.RGBA{A: 255}
		line.Width = vg.Points(1.5)
		pl.Add(line)
		pl.Legend.Add(fmt.Sprintf("uav %d", ti), line)
	}

	obsPts := make(plotter.XYs, 0)
	for _, o := range p.Observations() {
		obsPts = append(obsPts, plotter.XY{X: o.Pt.X, Y: o.Pt.Y})
	}
	if len(obsPts) > 0 {
		sc, err := plotter.NewScatter(obsPts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Color = color.RGBA{G: 255, A: 255}
		pl.Add(sc)
		pl.Legend.Add("observations", sc)
	}

	pl.Legend.Top = true
	return pl.Save(10*vg.Inch, 10*vg.Inch, path)
}

// RenderCostHistory plots the cost of each intermediate snapshot, in
// discovery order, ending at the final plan's cost.
func RenderCostHistory(res *vns.SearchResult, path string) error {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Episode %s", res.Metadata.EpisodeID)
	pl.X.Label.Text = "Snapshot"
	pl.Y.Label.Text = "Cost"

	pts := make(plotter.XYs, 0, len(res.Intermediate)+2)
	pts = append(pts, plotter.XY{X: 0, Y: res.InitialPlan.Cost()})
	for i, p := range res.Intermediate {
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: p.Cost()})
	}
	pts = append(pts, plotter.XY{X: float64(len(pts)), Y: res.FinalPlan.Cost()})

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	pl.Add(line)

	return pl.Save(8*vg.Inch, 4*vg.Inch, path)
}

// RenderEpisode writes both plots for a finished episode into dir,
// creating it if needed. It returns the paths of the generated files.
func RenderEpisode(res *vns.SearchResult, dir string) ([]string, error) {
	if res == nil || res.FinalPlan == nil {
		return nil, fmt.Errorf("report: cannot render an incomplete search result")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	planFile := filepath.Join(dir, "plan.png")
	title := fmt.Sprintf("Final plan %s", res.Metadata.EpisodeID)
	if err := RenderPlan(res.FinalPlan, title, planFile); err != nil {
		return nil, fmt.Errorf("render plan: %w", err)
	}

	costFile := filepath.Join(dir, "cost_history.png")
	if err := RenderCostHistory(res, costFile); err != nil {
		return []string{planFile}, fmt.Errorf("render cost history: %w", err)
	}
	return []string{planFile, costFile}, nil
}

// MakeOutputDir builds a timestamped directory path for one episode's
// plots under baseDir.
func MakeOutputDir(baseDir, episodeID string) string {
	ts := time.Now().Format("20060102_150405")
	if episodeID != "" {
		return filepath.Join(baseDir, episodeID, ts)
	}
	return filepath.Join(baseDir, ts)
}
