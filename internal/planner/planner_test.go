package planner

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/plan"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
)

var testUAV = uav.UAV{
	MinTurnRadius: 10,
	MaxAirSpeed:   100,
	MaxPitchAngle: 6 * math.Pi / 180,
	ViewWidth:     100,
	ViewDepth:     100,
}

const testConfJSON = `{
	"min_time": 0,
	"max_time": 100,
	"save_every": 0,
	"save_improvements": true,
	"vns": {"max_time": 0.3, "seed": 7}
}`

// linearGrids builds a 10x10 scenario where the front arrival time
// increases linearly along the x axis.
func linearGrids(t *testing.T) (arrival, elevation *geo.Grid) {
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
	elevation, err = geo.UniformGrid(0, n, n, 0, 0, 100)
	require.NoError(t, err)
	return arrival, elevation
}

func TestParseConfigMissingFields(t *testing.T) {
	cases := []struct {
		drop string
		doc  string
	}{
		{"min_time", `{"max_time": 100, "save_every": 1, "save_improvements": false, "vns": {"max_time": 1}}`},
		{"max_time", `{"min_time": 0, "save_every": 1, "save_improvements": false, "vns": {"max_time": 1}}`},
		{"save_every", `{"min_time": 0, "max_time": 100, "save_improvements": false, "vns": {"max_time": 1}}`},
		{"save_improvements", `{"min_time": 0, "max_time": 100, "save_every": 1, "vns": {"max_time": 1}}`},
		{"vns", `{"min_time": 0, "max_time": 100, "save_every": 1, "save_improvements": false}`},
	}
	for _, c := range cases {
		t.Run(c.drop, func(t *testing.T) {
			_, err := ParseConfig([]byte(c.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.drop, "error should name the missing key")
		})
	}
}

func TestParseConfigRejectsInvalidValues(t *testing.T) {
	_, err := ParseConfig([]byte(`{"min_time": 100, "max_time": 0, "save_every": 1, "save_improvements": false, "vns": {"max_time": 1}}`))
	assert.Error(t, err, "inverted window must be rejected")

	_, err = ParseConfig([]byte(`{"min_time": 0, "max_time": 100, "save_every": -2, "save_improvements": false, "vns": {"max_time": 1}}`))
	assert.Error(t, err, "negative save_every must be rejected")
}

func TestParseConfigUnknownOperatorFailsBeforePlanning(t *testing.T) {
	conf, err := ParseConfig([]byte(`{
		"min_time": 0, "max_time": 100, "save_every": 0, "save_improvements": false,
		"vns": {"max_time": 1, "neighborhoods": [{"name": "does-not-exist"}]}
	}`))
	require.NoError(t, err)

	arrival, elevation := linearGrids(t)
	confs := []plan.TrajectoryConfig{{UAV: testUAV, StartTime: 0, MaxFlightTime: 3600}}
	_, err = Plan(confs, arrival, elevation, conf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestPlanSingleVehicleLinearFront(t *testing.T) {
	conf, err := ParseConfig([]byte(testConfJSON))
	require.NoError(t, err)

	arrival, elevation := linearGrids(t)
	confs := []plan.TrajectoryConfig{{UAV: testUAV, StartTime: 0, MaxFlightTime: 3600}}

	res, err := Plan(confs, arrival, elevation, conf)
	require.NoError(t, err)
	require.NotNil(t, res.FinalPlan)

	assert.LessOrEqual(t, res.FinalPlan.Cost(), res.InitialPlan.Cost(),
		"final plan must not be worse than the initial plan")
	assert.True(t, res.FinalPlan.IsValid())
	assert.Greater(t, res.Metadata.PlanningTime, 0.0)
	assert.GreaterOrEqual(t, res.Metadata.PreprocessingTime, 0.0)
	assert.NotEmpty(t, res.Metadata.EpisodeID)
	assert.JSONEq(t, testConfJSON, string(res.Metadata.Configuration),
		"metadata must echo the configuration")
}

func TestReplanPreservesFrozenPrefix(t *testing.T) {
	conf, err := ParseConfig([]byte(testConfJSON))
	require.NoError(t, err)

	arrival, elevation := linearGrids(t)
	confs := []plan.TrajectoryConfig{{UAV: testUAV, StartTime: 0, MaxFlightTime: 3600}}

	prior, err := Plan(confs, arrival, elevation, conf)
	require.NoError(t, err)

	cutoff := prior.FinalPlan.Trajectory(0).Duration()
	res, err := Replan(prior, cutoff, arrival, elevation, conf)
	require.NoError(t, err)

	priorTraj := prior.FinalPlan.Trajectory(0)
	newTraj := res.FinalPlan.Trajectory(0)
	require.GreaterOrEqual(t, newTraj.Size(), priorTraj.Size(),
		"frozen segments must all survive the replan")
	for i := 0; i < priorTraj.Size(); i++ {
		assert.Equal(t, priorTraj.Segment(i), newTraj.Segment(i),
			fmt.Sprintf("frozen segment %d changed during replan", i))
	}
}

func TestReplanRequiresCompletedResult(t *testing.T) {
	conf, err := ParseConfig([]byte(testConfJSON))
	require.NoError(t, err)
	arrival, elevation := linearGrids(t)

	_, err = Replan(nil, 0, arrival, elevation, conf)
	assert.Error(t, err)
}
