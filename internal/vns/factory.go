package vns

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// neighborhoodFactory builds one operator from its raw JSON parameters.
type neighborhoodFactory func(params json.RawMessage) (Neighborhood, error)

// registry maps operator names to constructors. Referencing a name not in
// this table is a configuration error, never a silent no-op.
var registry = map[string]neighborhoodFactory{
	"segment-insert": func(params json.RawMessage) (Neighborhood, error) {
		n := &segmentInsert{}
		if err := decodeParams(params, n); err != nil {
			return nil, err
		}
		return n, nil
	},
	"segment-removal": func(params json.RawMessage) (Neighborhood, error) {
		return &segmentRemoval{}, nil
	},
	"segment-replace": func(params json.RawMessage) (Neighborhood, error) {
		n := &segmentReplace{}
		if err := decodeParams(params, n); err != nil {
			return nil, err
		}
		return n, nil
	},
	"segment-swap": func(params json.RawMessage) (Neighborhood, error) {
		return &segmentSwap{}, nil
	},
}

func decodeParams(params json.RawMessage, into interface{}) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, into)
}

// defaultNeighborhoodOrder is used when a configuration does not list
// operators explicitly.
var defaultNeighborhoodOrder = []string{
	"segment-insert",
	"segment-replace",
	"segment-swap",
	"segment-removal",
}

// Config is the declarative description of one search engine, the "vns"
// section of a planning configuration.
type Config struct {
	// MaxTime is the wall-clock search budget in seconds. Required.
	MaxTime *float64 `json:"max_time"`
	// Seed makes runs reproducible; 0 seeds from the clock.
	Seed int64 `json:"seed"`
	// Neighborhoods lists the operators in shaking order. Empty means the
	// default order with default parameters.
	Neighborhoods []NeighborhoodConfig `json:"neighborhoods"`
}

// NeighborhoodConfig names one operator plus its parameters.
type NeighborhoodConfig struct {
	Name   string          `json:"name"`
	Params json.RawMessage `json:"params"`
}

// BuildFromConfig constructs a search engine from the raw "vns" section.
// Unknown operator names and missing required fields fail fast with an
// error naming the offender.
func BuildFromConfig(raw json.RawMessage) (*Engine, error) {
	var conf Config
	if err := json.Unmarshal(raw, &conf); err != nil {
		return nil, fmt.Errorf("vns: invalid configuration: %w", err)
	}
	return Build(conf)
}

// Build constructs a search engine from a decoded configuration.
func Build(conf Config) (*Engine, error) {
	if conf.MaxTime == nil {
		return nil, fmt.Errorf("vns: missing required field %q", "max_time")
	}
	if *conf.MaxTime <= 0 {
		return nil, fmt.Errorf("vns: %q must be positive, got %g", "max_time", *conf.MaxTime)
	}

	entries := conf.Neighborhoods
	if len(entries) == 0 {
		for _, name := range defaultNeighborhoodOrder {
			entries = append(entries, NeighborhoodConfig{Name: name})
		}
	}

	var neighborhoods []Neighborhood
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("vns: neighborhood entry missing required field %q", "name")
		}
		factory, ok := registry[entry.Name]
		if !ok {
			return nil, fmt.Errorf("vns: unknown neighborhood operator %q", entry.Name)
		}
		n, err := factory(entry.Params)
		if err != nil {
			return nil, fmt.Errorf("vns: operator %q: %w", entry.Name, err)
		}
		neighborhoods = append(neighborhoods, n)
	}

	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		maxTime:       time.Duration(*conf.MaxTime * float64(time.Second)),
		neighborhoods: neighborhoods,
		rng:           rand.New(rand.NewSource(seed)),
	}, nil
}
