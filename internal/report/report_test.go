package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/firefront-research/internal/front"
	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/plan"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
	"github.com/elektrokombinacija/firefront-research/internal/vns"
)

func episodeResult(t *testing.T) *vns.SearchResult {
	t.Helper()
	n := 10
	values := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			values[x+y*n] = float64(x) * 10
		}
	}
	arrival, err := geo.NewGrid(values, n, n, 0, 0, 100)
	require.NoError(t, err)
	elevation, err := geo.UniformGrid(0, n, n, 0, 0, 100)
	require.NoError(t, err)
	fire, err := front.New(arrival, elevation)
	require.NoError(t, err)

	u := uav.UAV{
		MinTurnRadius: 10,
		MaxAirSpeed:   100,
		MaxPitchAngle: 6 * math.Pi / 180,
		ViewWidth:     100,
		ViewDepth:     100,
	}
	tw, err := geo.NewTimeWindow(0, 100)
	require.NoError(t, err)
	p, err := plan.New([]plan.TrajectoryConfig{
		{UAV: u, StartTime: 0, MaxFlightTime: 3600},
	}, fire, tw)
	require.NoError(t, err)

	engine, err := vns.BuildFromConfig([]byte(`{"max_time": 0.2, "seed": 3}`))
	require.NoError(t, err)
	return engine.Search(p, 0, 0, true)
}

func TestRenderEpisodeWritesBothPlots(t *testing.T) {
	res := episodeResult(t)
	dir := t.TempDir()

	files, err := RenderEpisode(res, filepath.Join(dir, "plots"))
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), "plot file should not be empty")
	}
}

func TestRenderEpisodeRejectsNil(t *testing.T) {
	_, err := RenderEpisode(nil, t.TempDir())
	assert.Error(t, err)
}

func TestArrivalGridClampsUnreachedCells(t *testing.T) {
	values := []float64{0, 10, front.NeverReached, 30}
	g, err := geo.NewGrid(values, 2, 2, 0, 0, 100)
	require.NoError(t, err)

	a := newArrivalGrid(g)
	c, r := a.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	assert.Equal(t, 30.0, a.Z(0, 1), "unreached cell clamps to the latest finite arrival")
	assert.Equal(t, 10.0, a.Z(1, 0))
}

func TestMakeOutputDir(t *testing.T) {
	dir := MakeOutputDir("plots", "ep-1")
	assert.Contains(t, dir, filepath.Join("plots", "ep-1"))
}
