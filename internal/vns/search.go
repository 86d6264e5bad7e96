package vns

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/firefront-research/internal/plan"
)

// Engine runs variable neighborhood search over one plan per episode.
// It is single-threaded: all mutation during an episode happens
// sequentially on exclusively owned plan copies.
type Engine struct {
	maxTime       time.Duration
	neighborhoods []Neighborhood
	rng           *rand.Rand
}

// Metadata describes a finished search episode.
type Metadata struct {
	EpisodeID         string          `json:"episode_id"`
	PlanningTime      float64         `json:"planning_time"`       // seconds
	PreprocessingTime float64         `json:"preprocessing_time"`  // seconds, set by the caller
	Iterations        int             `json:"iterations"`
	Improvements      int             `json:"improvements"`
	Configuration     json.RawMessage `json:"configuration,omitempty"`
}

// SearchResult bundles one finished episode: the untouched initial plan,
// the best plan found, optional intermediate snapshots in discovery order,
// and episode metadata.
type SearchResult struct {
	InitialPlan  *plan.Plan
	FinalPlan    *plan.Plan
	Intermediate []*plan.Plan
	Metadata     Metadata
}

// Search runs one bounded-time episode from p. The plan itself is never
// mutated; all moves apply to working copies. maxTime overrides the
// engine's configured budget when positive.
//
// Snapshots: when saveImprovements is set, the plan is recorded each time
// the best-known cost improves; independently, the current plan is
// recorded every saveEvery iterations when saveEvery is positive.
func (e *Engine) Search(p *plan.Plan, maxTime time.Duration, saveEvery int, saveImprovements bool) *SearchResult {
	budget := e.maxTime
	if maxTime > 0 {
		budget = maxTime
	}

	res := &SearchResult{
		InitialPlan: p.Clone(),
		Metadata:    Metadata{EpisodeID: uuid.NewString()},
	}

	current := p.Clone()
	currentCost := current.Cost()
	best := current.Clone()
	bestCost := currentCost

	start := time.Now()
	deadline := start.Add(budget)
	k := 0
	// The budget is checked at iteration boundaries only; a move in
	// flight is allowed to finish.
	for time.Now().Before(deadline) {
		res.Metadata.Iterations++

		working := current.Clone()
		moved := e.neighborhoods[k].Apply(working, e.rng)
		switch {
		case !moved || !working.IsValid():
			k = (k + 1) % len(e.neighborhoods)
		default:
			cost := working.Cost()
			if cost < currentCost {
				current = working
				currentCost = cost
				k = 0
			} else {
				k = (k + 1) % len(e.neighborhoods)
			}
			if cost < bestCost {
				best = working.Clone()
				bestCost = cost
				res.Metadata.Improvements++
				if saveImprovements {
					res.Intermediate = append(res.Intermediate, working.Clone())
				}
			}
		}

		if saveEvery > 0 && res.Metadata.Iterations%saveEvery == 0 {
			res.Intermediate = append(res.Intermediate, current.Clone())
		}
	}

	res.FinalPlan = best
	res.Metadata.PlanningTime = time.Since(start).Seconds()
	return res
}
