// Command frontplan runs one observation-planning episode from a
// scenario file and prints the result.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/elektrokombinacija/firefront-research/internal/planner"
	"github.com/elektrokombinacija/firefront-research/internal/report"
	"github.com/elektrokombinacija/firefront-research/internal/store"
)

func main() {
	scenarioFile := flag.String("scenario", "", "Scenario JSON file")
	configFile := flag.String("config", "", "Planner configuration JSON file")
	dbFile := flag.String("db", "", "SQLite episode database (empty = no persistence)")
	plotDir := flag.String("plots", "", "Directory for rendered plots (empty = no plots)")
	flag.Parse()

	if *scenarioFile == "" || *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: frontplan -scenario <file> -config <file> [-db <file>] [-plots <dir>]")
		os.Exit(2)
	}

	scen, err := planner.LoadScenario(*scenarioFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
		os.Exit(1)
	}

	rawConf, err := os.ReadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading configuration: %v\n", err)
		os.Exit(1)
	}
	conf, err := planner.ParseConfig(rawConf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Firefront Observation Planner ===\n")
	fmt.Printf("Scenario: %s (%dx%d cells, %d vehicles)\n",
		*scenarioFile, scen.Width, scen.Height, len(scen.Vehicles))

	res, err := planner.PlanScenario(scen, conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Planning failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nEpisode %s\n", res.Metadata.EpisodeID)
	fmt.Printf("  Initial cost:  %.4f\n", res.InitialPlan.Cost())
	fmt.Printf("  Final cost:    %.4f\n", res.FinalPlan.Cost())
	fmt.Printf("  Iterations:    %d (%d improvements)\n",
		res.Metadata.Iterations, res.Metadata.Improvements)
	fmt.Printf("  Planning time: %.2fs (preprocessing %.3fs)\n",
		res.Metadata.PlanningTime, res.Metadata.PreprocessingTime)

	if *dbFile != "" {
		db, err := store.Open(*dbFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.SaveEpisode(res); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving episode: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  Saved to:      %s\n", *dbFile)
	}

	if *plotDir != "" {
		dir := report.MakeOutputDir(*plotDir, res.Metadata.EpisodeID)
		files, err := report.RenderEpisode(res, dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering plots: %v\n", err)
			os.Exit(1)
		}
		for _, f := range files {
			fmt.Printf("  Plot:          %s\n", f)
		}
	}
}
