package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenarioRoundTrip(t *testing.T) {
	arrival, elevation := linearGrids(t)
	scen := Scenario{
		Width: 10, Height: 10, CellSize: 100,
		Arrival:   arrival.Values(),
		Elevation: elevation.Values(),
		Vehicles: []Vehicle{{
			MinTurnRadius: 10,
			MaxAirSpeed:   100,
			MaxPitchAngle: 0.1,
			ViewWidth:     100,
			ViewDepth:     100,
			MaxFlightTime: 3600,
			Start:         &Waypoint{X: 0, Y: 0, Z: 0, Dir: 0},
		}},
	}
	raw, err := json.Marshal(scen)
	require.NoError(t, err)

	parsed, err := ParseScenario(raw)
	require.NoError(t, err)

	confs := parsed.TrajectoryConfigs()
	require.Len(t, confs, 1)
	assert.Equal(t, 100.0, confs[0].UAV.MaxAirSpeed)
	require.NotNil(t, confs[0].Start)
	assert.Nil(t, confs[0].End)

	a, e, err := parsed.Grids()
	require.NoError(t, err)
	assert.Equal(t, arrival.Values(), a.Values())
	assert.Equal(t, elevation.Values(), e.Values())
}

func TestParseScenarioRejectsBadInput(t *testing.T) {
	_, err := ParseScenario([]byte(`{`))
	assert.Error(t, err)

	_, err = ParseScenario([]byte(`{"width": 2, "height": 2, "cell_size": 10,
		"arrival": [0,0,0,0], "elevation": [0,0,0,0]}`))
	assert.Error(t, err, "scenario without vehicles must be rejected")

	_, err = ParseScenario([]byte(`{"width": 2, "height": 2, "cell_size": 10,
		"arrival": [0,0,0], "elevation": [0,0,0,0],
		"vehicles": [{"max_air_speed": 10, "max_flight_time": 100}]}`))
	assert.Error(t, err, "raster length mismatch must be rejected")
}
