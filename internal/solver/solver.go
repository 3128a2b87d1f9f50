// Package solver is the top-level driver (C7): it composes placement and
// pipeline, deduplicates by initial seating, falls back to an Atheist
// world when every ordinary configuration is rejected, and optionally
// fans work out across a bounded in-process worker pool.
package solver

import (
	"context"
	"strings"
	"sync"

	"github.com/qingchang/clocktower-solver/internal/apperr"
	"github.com/qingchang/clocktower-solver/internal/pipeline"
	"github.com/qingchang/clocktower-solver/internal/placement"
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// Options configures a solve.
type Options struct {
	// Workers bounds the number of starting configurations explored
	// concurrently. 0 or 1 run serially in the caller's goroutine.
	Workers int
}

// Solve enumerates every world consistent with puzzle's claims and
// records, returning each as a final, fully-simulated World.
func Solve(ctx context.Context, puzzle *worldstate.Puzzle, opts Options) ([]*worldstate.World, error) {
	if opts.Workers > 1 {
		return solveParallel(ctx, puzzle, opts.Workers)
	}
	return solveSerial(ctx, puzzle)
}

func solveSerial(ctx context.Context, puzzle *worldstate.Puzzle) ([]*worldstate.World, error) {
	var solutions []*worldstate.World
	seen := map[string]bool{}
	for start := range placement.Enumerate(puzzle) {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Wrap(apperr.CodeCancelled, "solve cancelled", err)
		}
		for final := range pipeline.RunPuzzle(start) {
			if accept(puzzle, seen, final) {
				solutions = append(solutions, final)
			}
		}
	}
	if len(solutions) == 0 {
		if fallback := synthesizeAtheistWorld(puzzle); fallback != nil {
			solutions = append(solutions, fallback)
		}
	}
	return solutions, nil
}

// solveParallel distributes starting configurations across a bounded
// pool of worker goroutines, each an actor-style loop consuming from a
// single shared, bounded channel until it closes — the same shape this
// codebase uses elsewhere for handing a stream of independent units of
// work to a fixed pool.
func solveParallel(ctx context.Context, puzzle *worldstate.Puzzle, workers int) ([]*worldstate.World, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	starts := make(chan *worldstate.World, workers*4)
	results := make(chan *worldstate.World, workers*4)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for start := range starts {
				for final := range pipeline.RunPuzzle(start) {
					select {
					case results <- final:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		defer close(starts)
		for start := range placement.Enumerate(puzzle) {
			select {
			case starts <- start:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var solutions []*worldstate.World
	seen := map[string]bool{}
	for final := range results {
		if accept(puzzle, seen, final) {
			solutions = append(solutions, final)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(apperr.CodeCancelled, "solve cancelled", err)
	}
	if len(solutions) == 0 {
		if fallback := synthesizeAtheistWorld(puzzle); fallback != nil {
			solutions = append(solutions, fallback)
		}
	}
	return solutions, nil
}

func accept(puzzle *worldstate.Puzzle, seen map[string]bool, final *worldstate.World) bool {
	if !puzzle.DeduplicateInitialCharacters {
		return true
	}
	key := strings.Join(final.InitialRoles, "|")
	if seen[key] {
		return false
	}
	seen[key] = true
	return true
}

// synthesizeAtheistWorld is the last-resort fallback: if every ordinary
// starting configuration was rejected but some player's claim implements
// AtheistLike, try the trivial world where every claim holds at face
// value, still subject to full pipeline verification.
func synthesizeAtheistWorld(puzzle *worldstate.Puzzle) *worldstate.World {
	hasAtheistClaim := false
	for _, rec := range puzzle.Players {
		if a, ok := rec.Claim.(worldstate.AtheistLike); ok && a.AtheistLike() {
			hasAtheistClaim = true
			break
		}
	}
	if !hasAtheistClaim {
		return nil
	}
	start := worldstate.NewWorld(puzzle)
	start.InitialRoles = make([]string, len(start.Players))
	for i, p := range start.Players {
		start.InitialRoles[i] = p.Role.Name()
	}
	for final := range pipeline.RunPuzzle(start) {
		return final
	}
	return nil
}
