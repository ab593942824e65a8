package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/benchmark"
)

func main() {
	var (
		iterations = flag.Int("iterations", 20, "Number of iterations per stage")
		scale      = flag.Float64("scale", 2, "Capture upscale factor")
		lines      = flag.String("lines", "", "Snippet lines separated by '|' (default: built-in sample)")
		only       = flag.String("stage", "", "Run a single stage")
		outputFile = flag.String("output", "", "Write CSV results to this file")
		verbose    = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	fmt.Println("pogo-lens stage benchmark")
	fmt.Println("=========================")

	cfg := benchmark.DefaultLensConfig()
	cfg.Scale = *scale
	if *lines != "" {
		cfg.Lines = strings.Split(*lines, "|")
	}

	suite, err := benchmark.NewLensSuite(cfg)
	if err != nil {
		log.Fatalf("Failed to set up benchmarks: %v", err)
	}
	if *verbose {
		fmt.Printf("Snippet lines: %q at scale %.1f\n", cfg.Lines, cfg.Scale)
		fmt.Printf("Stages: %s\n", strings.Join(suite.Names(), ", "))
	}

	fmt.Printf("Running benchmarks with %d iterations per stage...\n\n", *iterations)

	var results []benchmark.Result
	if *only != "" {
		results = []benchmark.Result{suite.Run(*only, *iterations)}
	} else {
		results = suite.RunAll(*iterations)
	}
	_ = benchmark.WriteText(os.Stdout, results)

	if *outputFile != "" {
		if err := saveResultsToFile(*outputFile, results); err != nil {
			log.Printf("Failed to save results to file: %v", err)
		} else {
			fmt.Printf("\nResults saved to: %s\n", *outputFile)
		}
	}

	for _, r := range results {
		if r.Error != nil {
			os.Exit(1)
		}
	}
}

func saveResultsToFile(filename string, results []benchmark.Result) error {
	file, err := os.Create(filename) //nolint:gosec // G304: user-chosen output path
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return benchmark.WriteCSV(file, results)
}
