// Package planner exposes the planning entry points consumed by transport
// and binding layers: configuration parsing, planning and replanning.
package planner

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/elektrokombinacija/firefront-research/internal/front"
	"github.com/elektrokombinacija/firefront-research/internal/geo"
	"github.com/elektrokombinacija/firefront-research/internal/plan"
	"github.com/elektrokombinacija/firefront-research/internal/vns"
)

// Config is the planning configuration document. Required fields are
// pointers so absent keys are detected and reported rather than silently
// defaulted.
type Config struct {
	MinTime          *float64        `json:"min_time"`
	MaxTime          *float64        `json:"max_time"`
	SaveEvery        *int            `json:"save_every"`
	SaveImprovements *bool           `json:"save_improvements"`
	VNS              json.RawMessage `json:"vns"`

	raw json.RawMessage
}

// ParseConfig decodes and validates a configuration document. Every
// missing required key fails with an error naming it.
func ParseConfig(raw []byte) (Config, error) {
	var conf Config
	if err := json.Unmarshal(raw, &conf); err != nil {
		return Config{}, fmt.Errorf("planner: invalid configuration: %w", err)
	}
	switch {
	case conf.MinTime == nil:
		return Config{}, missingField("min_time")
	case conf.MaxTime == nil:
		return Config{}, missingField("max_time")
	case conf.SaveEvery == nil:
		return Config{}, missingField("save_every")
	case conf.SaveImprovements == nil:
		return Config{}, missingField("save_improvements")
	case len(conf.VNS) == 0:
		return Config{}, missingField("vns")
	}
	if *conf.MinTime > *conf.MaxTime {
		return Config{}, fmt.Errorf("planner: min_time %g after max_time %g", *conf.MinTime, *conf.MaxTime)
	}
	if *conf.SaveEvery < 0 {
		return Config{}, fmt.Errorf("planner: save_every must not be negative, got %d", *conf.SaveEvery)
	}
	conf.raw = append(json.RawMessage(nil), raw...)
	return conf, nil
}

func missingField(name string) error {
	return fmt.Errorf("planner: missing required configuration field %q", name)
}

// Window returns the plan time window described by the configuration.
func (c Config) Window() geo.TimeWindow {
	return geo.TimeWindow{Start: *c.MinTime, End: *c.MaxTime}
}

// Plan runs one full planning episode: derive the front model from the
// grids, build the initial plan for the vehicle configurations, and search
// under the configured wall-clock budget.
func Plan(configs []plan.TrajectoryConfig, arrival, elevation *geo.Grid, conf Config) (*vns.SearchResult, error) {
	engine, err := vns.BuildFromConfig(conf.VNS)
	if err != nil {
		return nil, err
	}

	log.Printf("planner: processing front data")
	preStart := time.Now()
	fire, err := front.New(arrival, elevation)
	if err != nil {
		return nil, err
	}
	preprocessing := time.Since(preStart)

	log.Printf("planner: building initial plan")
	p, err := plan.New(configs, fire, conf.Window())
	if err != nil {
		return nil, err
	}

	log.Printf("planner: planning")
	res := engine.Search(p, 0, *conf.SaveEvery, *conf.SaveImprovements)
	res.Metadata.PreprocessingTime = preprocessing.Seconds()
	res.Metadata.Configuration = conf.raw
	log.Printf("planner: best plan utility %g, duration %gs after %d iterations",
		res.FinalPlan.Utility(), res.FinalPlan.Duration(), res.Metadata.Iterations)
	return res, nil
}

// Replan continues a finished episode against updated grids: the prior
// final plan keeps its already-committed prefix (frozen before the cutoff
// time), the front model is rebuilt, one repair pass drops or re-projects
// the remaining segments, and a fresh search episode runs from there.
// The prior result must come from a completed episode.
func Replan(prior *vns.SearchResult, cutoff float64, arrival, elevation *geo.Grid, conf Config) (*vns.SearchResult, error) {
	if prior == nil || prior.FinalPlan == nil {
		return nil, fmt.Errorf("planner: replan requires a completed search result")
	}
	engine, err := vns.BuildFromConfig(conf.VNS)
	if err != nil {
		return nil, err
	}

	log.Printf("planner: processing updated front data")
	preStart := time.Now()
	fire, err := front.New(arrival, elevation)
	if err != nil {
		return nil, err
	}
	preprocessing := time.Since(preStart)

	log.Printf("planner: building initial plan from prior final plan")
	p := prior.FinalPlan.Clone()
	p.SetFront(fire)
	p.FreezeBefore(cutoff)
	p.ProjectOnFirefront()

	log.Printf("planner: replanning")
	res := engine.Search(p, 0, *conf.SaveEvery, *conf.SaveImprovements)
	res.Metadata.PreprocessingTime = preprocessing.Seconds()
	res.Metadata.Configuration = conf.raw
	return res, nil
}
