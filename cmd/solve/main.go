// Command solve is a thin CLI wrapper around the solver: given one of the
// built-in fixture IDs, it runs the full solve and prints every
// surviving world. It is not a puzzle-authoring DSL — new puzzles are
// still written as Go in internal/puzzlefixtures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/qingchang/clocktower-solver/internal/puzzlefixtures"
	"github.com/qingchang/clocktower-solver/internal/solver"
)

func main() {
	id := flag.String("puzzle", "s1", "fixture id to solve (s1..s6, s4-control)")
	workers := flag.Int("workers", 1, "number of in-process parallel workers (0 or 1 runs serially)")
	flag.Parse()

	puzzle, err := puzzlefixtures.LoadByID(context.Background(), *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", *id, err)
		os.Exit(1)
	}

	solutions, err := solver.Solve(context.Background(), puzzle, solver.Options{Workers: *workers})
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve %s: %v\n", *id, err)
		os.Exit(1)
	}

	fmt.Printf("%d solution(s) for %s:\n", len(solutions), *id)
	for i, w := range solutions {
		fmt.Printf("%3d: %s\n", i+1, w.Render())
	}
}
