// Package main provides the archetypes CLI: fit an archetypal analysis
// model to a CSV matrix and print the archetypes, labels and final
// reconstruction error.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/wangzcl/archetypes"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("archetypes %s\n", version)
		return
	}

	var (
		k       = flag.Int("k", 3, "number of archetypes")
		method  = flag.String("method", "nnls", "optimization method: nnls, pgd or gradient")
		maxIter = flag.Int("max-iter", 300, "maximum outer iterations")
		tol     = flag.Float64("tol", 1e-4, "convergence tolerance on the loss change")
		seed    = flag.Int64("seed", 0, "random seed")
		verbose = flag.Bool("v", false, "log progress every 10 iterations")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: archetypes [flags] data.csv")
		flag.PrintDefaults()
		os.Exit(2)
	}

	x, err := readCSVMatrix(flag.Arg(0))
	if err != nil {
		fatal(err)
	}

	cfg := archetypes.DefaultConfig(*k)
	cfg.Method = archetypes.Method(*method)
	cfg.MaxIter = *maxIter
	cfg.Tol = *tol
	cfg.Seed = *seed
	cfg.Verbose = *verbose

	aa, err := archetypes.New(cfg)
	if err != nil {
		fatal(err)
	}
	model, err := aa.Fit(x)
	if err != nil {
		fatal(err)
	}

	losses := model.Losses()
	fmt.Printf("iterations: %d\n", len(losses)-1)
	fmt.Printf("final rss:  %g\n", losses[len(losses)-1])
	fmt.Println("archetypes:")
	z := model.Archetypes()
	rows, cols := z.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if j > 0 {
				fmt.Print(",")
			}
			fmt.Printf("%g", z.At(i, j))
		}
		fmt.Println()
	}
	fmt.Printf("labels: %v\n", model.Labels())
}

// readCSVMatrix parses a headerless CSV of floats into a dense matrix.
func readCSVMatrix(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty input", path)
	}

	rows, cols := len(records), len(records[0])
	data := make([]float64, 0, rows*cols)
	for i, rec := range records {
		if len(rec) != cols {
			return nil, fmt.Errorf("%s: row %d has %d fields, want %d", path, i+1, len(rec), cols)
		}
		for _, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", path, i+1, err)
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "archetypes:", err)
	os.Exit(1)
}
