package planner

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/plan"
	"github.com/elektrokombinacija/firefront-research/internal/uav"
	"github.com/elektrokombinacija/firefront-research/internal/vns"
)

// Scenario is the on-disk description of one planning problem: the
// raster fields in row-major order plus the vehicles available to fly.
type Scenario struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	CellSize float64 `json:"cell_size"`
	XOffset  float64 `json:"x_offset"`
	YOffset  float64 `json:"y_offset"`

	Arrival   []float64 `json:"arrival"`
	Elevation []float64 `json:"elevation"`

	Vehicles []Vehicle `json:"vehicles"`
}

// Vehicle describes one aircraft and its mission envelope.
type Vehicle struct {
	MinTurnRadius float64 `json:"min_turn_radius"`
	MaxAirSpeed   float64 `json:"max_air_speed"`
	MaxPitchAngle float64 `json:"max_pitch_angle"`
	ViewWidth     float64 `json:"view_width"`
	ViewDepth     float64 `json:"view_depth"`

	StartTime     float64 `json:"start_time"`
	MaxFlightTime float64 `json:"max_flight_time"`

	Start *Waypoint `json:"start,omitempty"`
	End   *Waypoint `json:"end,omitempty"`
}

// Waypoint is a scenario-file waypoint.
type Waypoint struct {
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
	Z   float64 `json:"z"`
	Dir float64 `json:"dir"`
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(raw []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("planner: parse scenario: %w", err)
	}
	if len(s.Vehicles) == 0 {
		return nil, fmt.Errorf("planner: scenario has no vehicles")
	}
	if _, _, err := s.Grids(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("planner: read scenario: %w", err)
	}
	return ParseScenario(raw)
}

// Grids builds the arrival and elevation grids from the raster fields.
func (s *Scenario) Grids() (arrival, elevation *geo.Grid, err error) {
	arrival, err = geo.NewGrid(s.Arrival, s.Width, s.Height, s.XOffset, s.YOffset, s.CellSize)
	if err != nil {
		return nil, nil, fmt.Errorf("planner: arrival grid: %w", err)
	}
	elevation, err = geo.NewGrid(s.Elevation, s.Width, s.Height, s.XOffset, s.YOffset, s.CellSize)
	if err != nil {
		return nil, nil, fmt.Errorf("planner: elevation grid: %w", err)
	}
	return arrival, elevation, nil
}

// TrajectoryConfigs converts the scenario vehicles to trajectory
// configurations.
func (s *Scenario) TrajectoryConfigs() []plan.TrajectoryConfig {
	confs := make([]plan.TrajectoryConfig, len(s.Vehicles))
	for i, v := range s.Vehicles {
		confs[i] = plan.TrajectoryConfig{
			UAV: uav.UAV{
				MinTurnRadius: v.MinTurnRadius,
				MaxAirSpeed:   v.MaxAirSpeed,
				MaxPitchAngle: v.MaxPitchAngle,
				ViewWidth:     v.ViewWidth,
				ViewDepth:     v.ViewDepth,
			},
			StartTime:     v.StartTime,
			MaxFlightTime: v.MaxFlightTime,
			Start:         toWaypoint(v.Start),
			End:           toWaypoint(v.End),
		}
	}
	return confs
}

func toWaypoint(w *Waypoint) *uav.Waypoint {
	if w == nil {
		return nil
	}
	return &uav.Waypoint{X: w.X, Y: w.Y, Z: w.Z, Dir: w.Dir}
}

// PlanScenario runs one full episode for a scenario document.
func PlanScenario(s *Scenario, conf Config) (*vns.SearchResult, error) {
	arrival, elevation, err := s.Grids()
	if err != nil {
		return nil, err
	}
	return Plan(s.TrajectoryConfigs(), arrival, elevation, conf)
}
