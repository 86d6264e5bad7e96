package vns

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/elektrokombinacija/firefront-research/internal/front"
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

func testPlan(t *testing.T) *plan.Plan {
	t.Helper()
	n := 10
	values := make([]float64, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			values[x+y*n] = float64(x) * 10
		}
	}
	arrival, err := geo.NewGrid(values, n, n, 0, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	elevation, err := geo.UniformGrid(0, n, n, 0, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	fire, err := front.New(arrival, elevation)
	if err != nil {
		t.Fatal(err)
	}
	conf := plan.TrajectoryConfig{UAV: testUAV, StartTime: 0, MaxFlightTime: 3600}
	p, err := plan.New([]plan.TrajectoryConfig{conf}, fire, geo.TimeWindow{Start: 0, End: 100})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func seededConfig(maxTime float64) Config {
	return Config{MaxTime: &maxTime, Seed: 42}
}

func TestBuildMissingMaxTime(t *testing.T) {
	_, err := BuildFromConfig(json.RawMessage(`{"neighborhoods": [{"name": "segment-insert"}]}`))
	if err == nil {
		t.Fatal("Expected error for missing max_time")
	}
	if !strings.Contains(err.Error(), "max_time") {
		t.Errorf("Error should name the missing field, got: %v", err)
	}
}

func TestBuildUnknownOperator(t *testing.T) {
	_, err := BuildFromConfig(json.RawMessage(`{"max_time": 5, "neighborhoods": [{"name": "segment-teleport"}]}`))
	if err == nil {
		t.Fatal("Expected error for unknown operator")
	}
	if !strings.Contains(err.Error(), "segment-teleport") {
		t.Errorf("Error should name the unknown operator, got: %v", err)
	}
}

func TestBuildOperatorMissingName(t *testing.T) {
	_, err := BuildFromConfig(json.RawMessage(`{"max_time": 5, "neighborhoods": [{"params": {}}]}`))
	if err == nil {
		t.Fatal("Expected error for unnamed operator entry")
	}
}

func TestBuildDefaultNeighborhoods(t *testing.T) {
	engine, err := BuildFromConfig(json.RawMessage(`{"max_time": 5}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(engine.neighborhoods) != len(defaultNeighborhoodOrder) {
		t.Errorf("Expected %d default operators, got %d",
			len(defaultNeighborhoodOrder), len(engine.neighborhoods))
	}
}

func TestSearchImprovesCost(t *testing.T) {
	engine, err := Build(seededConfig(60))
	if err != nil {
		t.Fatal(err)
	}

	p := testPlan(t)
	res := engine.Search(p, 300*time.Millisecond, 0, false)

	initialCost := res.InitialPlan.Cost()
	finalCost := res.FinalPlan.Cost()
	if finalCost > initialCost {
		t.Errorf("Search worsened the plan: %g -> %g", initialCost, finalCost)
	}
	if finalCost >= initialCost {
		t.Logf("No improvement found (initial %g); unusual but allowed", initialCost)
	}
	if !res.FinalPlan.IsValid() {
		t.Error("Final plan must be valid")
	}
	if res.Metadata.Iterations == 0 {
		t.Error("Expected at least one iteration")
	}
	if res.Metadata.EpisodeID == "" {
		t.Error("Episode must carry an ID")
	}
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	engine, err := Build(seededConfig(60))
	if err != nil {
		t.Fatal(err)
	}

	p := testPlan(t)
	costBefore := p.Cost()
	segsBefore := p.NumSegments()
	engine.Search(p, 100*time.Millisecond, 0, false)

	if p.Cost() != costBefore || p.NumSegments() != segsBefore {
		t.Error("Search must not mutate the input plan")
	}
}

func TestSearchRespectsBudget(t *testing.T) {
	engine, err := Build(seededConfig(60))
	if err != nil {
		t.Fatal(err)
	}

	p := testPlan(t)
	start := time.Now()
	engine.Search(p, 150*time.Millisecond, 0, false)
	elapsed := time.Since(start)

	// Termination happens at or shortly after the budget; one in-flight
	// move may overrun it.
	if elapsed > 2*time.Second {
		t.Errorf("Search ran %v, far past the 150ms budget", elapsed)
	}
}

func TestSearchSnapshots(t *testing.T) {
	engine, err := Build(seededConfig(60))
	if err != nil {
		t.Fatal(err)
	}

	p := testPlan(t)
	res := engine.Search(p, 200*time.Millisecond, 50, true)

	if res.Metadata.Improvements > 0 && len(res.Intermediate) == 0 {
		t.Error("Improvements were found but no snapshots recorded")
	}
	if res.Metadata.Iterations >= 50 && len(res.Intermediate) == 0 {
		t.Error("Periodic snapshots missing despite enough iterations")
	}
}

func TestSearchPeriodicSnapshotsEveryIteration(t *testing.T) {
	engine, err := Build(seededConfig(60))
	if err != nil {
		t.Fatal(err)
	}

	res := engine.Search(testPlan(t), 100*time.Millisecond, 1, false)
	if len(res.Intermediate) != res.Metadata.Iterations {
		t.Errorf("save_every=1 should snapshot each iteration: %d snapshots for %d iterations",
			len(res.Intermediate), res.Metadata.Iterations)
	}
}
