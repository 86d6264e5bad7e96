// Package main provides the benchmark runner for the observation
// planner. It runs repeated episodes over a directory of scenario
// files and collects per-run and per-scenario metrics.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/elektrokombinacija/firefront-research/internal/planner"
)

// BenchmarkResult stores results from a single planning run.
type BenchmarkResult struct {
	Timestamp    string
	CommitHash   string
	GoVersion    string
	OS           string
	Arch         string
	Scenario     string
	GridSize     string
	NumVehicles  int
	Run          int
	EpisodeID    string
	InitialCost  float64
	FinalCost    float64
	Improvement  float64
	Iterations   int
	Improvements int
	PlanningTime float64
}

// ScenarioMetrics aggregates runs of one scenario.
type ScenarioMetrics struct {
	Name       string
	FinalCosts []float64
	Times      []float64
}

func getGitCommit() string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	output, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(output))
}

func runScenario(scen *planner.Scenario, conf planner.Config, name string, run int) (*BenchmarkResult, error) {
	res, err := planner.PlanScenario(scen, conf)
	if err != nil {
		return nil, err
	}
	initial := res.InitialPlan.Cost()
	final := res.FinalPlan.Cost()
	improvement := 0.0
	if initial > 0 {
		improvement = (initial - final) / initial * 100
	}
	return &BenchmarkResult{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		CommitHash:   getGitCommit(),
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		Scenario:     name,
		GridSize:     fmt.Sprintf("%dx%d", scen.Width, scen.Height),
		NumVehicles:  len(scen.Vehicles),
		Run:          run,
		EpisodeID:    res.Metadata.EpisodeID,
		InitialCost:  initial,
		FinalCost:    final,
		Improvement:  improvement,
		Iterations:   res.Metadata.Iterations,
		Improvements: res.Metadata.Improvements,
		PlanningTime: res.Metadata.PlanningTime,
	}, nil
}

func writeCSV(results []*BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"timestamp", "commit_hash", "go_version", "os", "arch",
		"scenario", "grid_size", "num_vehicles", "run", "episode_id",
		"initial_cost", "final_cost", "improvement_pct",
		"iterations", "improvements", "planning_time_s",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range results {
		row := []string{
			r.Timestamp, r.CommitHash, r.GoVersion, r.OS, r.Arch,
			r.Scenario, r.GridSize, fmt.Sprintf("%d", r.NumVehicles),
			fmt.Sprintf("%d", r.Run), r.EpisodeID,
			fmt.Sprintf("%.4f", r.InitialCost), fmt.Sprintf("%.4f", r.FinalCost),
			fmt.Sprintf("%.1f", r.Improvement),
			fmt.Sprintf("%d", r.Iterations), fmt.Sprintf("%d", r.Improvements),
			fmt.Sprintf("%.3f", r.PlanningTime),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func printSummary(results []*BenchmarkResult) {
	metrics := make(map[string]*ScenarioMetrics)
	for _, r := range results {
		m, ok := metrics[r.Scenario]
		if !ok {
			m = &ScenarioMetrics{Name: r.Scenario}
			metrics[r.Scenario] = m
		}
		m.FinalCosts = append(m.FinalCosts, r.FinalCost)
		m.Times = append(m.Times, r.PlanningTime)
	}

	fmt.Println("\n=== BENCHMARK SUMMARY ===")
	fmt.Printf("%-32s %6s %12s %12s %12s\n",
		"Scenario", "Runs", "Mean Cost", "Cost StdDev", "Mean Time(s)")
	fmt.Println(strings.Repeat("-", 78))

	var names []string
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		m := metrics[name]
		meanCost, stdCost := stat.MeanStdDev(m.FinalCosts, nil)
		meanTime := stat.Mean(m.Times, nil)
		if len(m.FinalCosts) < 2 {
			stdCost = 0
		}
		fmt.Printf("%-32s %6d %12.4f %12.4f %12.2f\n",
			m.Name, len(m.FinalCosts), meanCost, stdCost, meanTime)
	}
}

func main() {
	inputDir := flag.String("input", "testdata", "Directory containing scenario JSON files")
	configFile := flag.String("config", "", "Planner configuration JSON file")
	outputFile := flag.String("output", "evidence/benchmark_results.csv", "Output CSV file")
	runs := flag.Int("runs", 3, "Runs per scenario")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: run_benchmarks -config <file> [-input <dir>] [-output <file>] [-runs N]")
		os.Exit(2)
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

	outputDir := filepath.Dir(*outputFile)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	pattern := filepath.Join(*inputDir, "*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *inputDir)
		fmt.Fprintf(os.Stderr, "Run gen_scenarios first: go run ./tools/gen_scenarios -output %s\n", *inputDir)
		os.Exit(1)
	}

	var results []*BenchmarkResult
	totalRuns := len(files) * *runs
	currentRun := 0

	fmt.Printf("Running benchmarks: %d scenarios x %d runs = %d episodes\n",
		len(files), *runs, totalRuns)
	fmt.Println()

	for _, file := range files {
		scen, err := planner.LoadScenario(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", file, err)
			continue
		}
		name := strings.TrimSuffix(filepath.Base(file), ".json")

		for run := 0; run < *runs; run++ {
			currentRun++
			if *verbose {
				fmt.Printf("[%d/%d] %s run %d ... ", currentRun, totalRuns, name, run)
			} else {
				fmt.Printf("\r[%d/%d] Running...", currentRun, totalRuns)
			}

			result, err := runScenario(scen, conf, name, run)
			if err != nil {
				fmt.Fprintf(os.Stderr, "\nError running %s: %v\n", name, err)
				continue
			}
			results = append(results, result)

			if *verbose {
				fmt.Printf("cost %.4f -> %.4f (%.1f%%, %.2fs)\n",
					result.InitialCost, result.FinalCost,
					result.Improvement, result.PlanningTime)
			}
		}
	}

	fmt.Println()

	if err := writeCSV(results, *outputFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Results written to: %s\n", *outputFile)

	printSummary(results)
}
