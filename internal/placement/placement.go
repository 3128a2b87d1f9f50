// Package placement enumerates Starting Configurations: every way the
// puzzle's hidden character pool could be seated, deterministically and
// without duplicates, honouring category bounds and any
// worldstate.SpeculativeEvilSource roles on the script.
package placement

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// Enumerate yields one freshly-seeded World per distinct starting
// configuration.
func Enumerate(puzzle *worldstate.Puzzle) iter.Seq[*worldstate.World] {
	hiddenPool := buildHiddenPool(puzzle)
	n := len(puzzle.Players)
	start := 0
	if puzzle.PlayerZeroIsYou {
		start = 1
	}
	seatPool := make([]int, 0, n)
	for i := start; i < n; i++ {
		seatPool = append(seatPool, i)
	}

	return func(yield func(*worldstate.World) bool) {
		for combo := range combinations(seatPool, len(hiddenPool)) {
			comboSet := map[int]bool{}
			for _, s := range combo {
				comboSet[s] = true
			}
			remaining := make([]int, 0, len(seatPool)-len(combo))
			for _, s := range seatPool {
				if !comboSet[s] {
					remaining = append(remaining, s)
				}
			}

			for perm := range permutations(hiddenPool) {
				for selfCombo := range combinations(remaining, len(puzzle.HiddenSelf)) {
					for selfPerm := range permutations(puzzle.HiddenSelf) {
						base := worldstate.NewWorld(puzzle)
						for i, seat := range combo {
							role := perm[i].Clone()
							base.Players[seat].Role = role
							base.Players[seat].IsEvil = role.Category().IsEvilCategory()
						}
						// HiddenSelf roles (e.g. a Drunk) replace a claiming
						// good player's role without making them evil: the
						// wearer still believes and claims their original
						// character.
						for i, seat := range selfCombo {
							base.Players[seat].Role = selfPerm[i].Clone()
						}
						if !withinCategoryBounds(puzzle, base) {
							continue
						}
						already := append(append([]int(nil), combo...), selfCombo...)
						for tagged := range speculateEvil(puzzle, base, already) {
							if !respectsClaimedTokens(puzzle, tagged) {
								continue
							}
							if !yield(tagged) {
								return
							}
						}
					}
				}
			}
		}
	}
}

// respectsClaimedTokens enforces "no two players share the same claimed
// role among non-liars unless the puzzle allows duplicate bag tokens":
// a player who behaves evil or whose current role may lie about its
// character doesn't occupy a real claimed-role token.
func respectsClaimedTokens(puzzle *worldstate.Puzzle, w *worldstate.World) bool {
	if puzzle.AllowDuplicateTokensInBag {
		return true
	}
	seen := map[string]bool{}
	for _, p := range w.Players {
		if p.LiesAboutCharacter(w) {
			continue
		}
		name := p.Claim.Name()
		if seen[name] {
			return false
		}
		seen[name] = true
	}
	return true
}

func buildHiddenPool(puzzle *worldstate.Puzzle) []worldstate.Role {
	pool := make([]worldstate.Role, 0, len(puzzle.Demons)+len(puzzle.Minions)+len(puzzle.HiddenGood))
	pool = append(pool, puzzle.Demons...)
	pool = append(pool, puzzle.Minions...)
	pool = append(pool, puzzle.HiddenGood...)
	return pool
}

func withinCategoryBounds(puzzle *worldstate.Puzzle, w *worldstate.World) bool {
	bounds := worldstate.NewFixedBounds(
		puzzle.CategoryCounts.Townsfolk,
		puzzle.CategoryCounts.Outsider,
		puzzle.CategoryCounts.Minion,
		puzzle.CategoryCounts.Demon,
	)
	var counts [5]int
	for _, p := range w.Players {
		bounds = p.Role.ModifyCategoryBounds(bounds)
		counts[p.Role.Category()]++
	}
	for cat := worldstate.Townsfolk; cat <= worldstate.Demon; cat++ {
		if counts[cat] < bounds[cat].Min || counts[cat] > bounds[cat].Max {
			return false
		}
	}
	return true
}

// speculateEvil yields, for the already-seeded base world, one world per
// allowed combination of "secretly turned evil" seats drawn from whatever
// SpeculativeEvilSource roles are currently in play.
func speculateEvil(puzzle *worldstate.Puzzle, base *worldstate.World, already []int) iter.Seq[*worldstate.World] {
	excluded := map[int]bool{}
	for _, s := range already {
		excluded[s] = true
	}

	var sources []worldstate.SpeculativeEvilSource
	for _, p := range base.Players {
		if s, ok := p.Role.(worldstate.SpeculativeEvilSource); ok {
			sources = append(sources, s)
		}
	}
	if len(sources) == 0 {
		base.InitialRoles = roleNames(base)
		return func(yield func(*worldstate.World) bool) { yield(base) }
	}

	maxSpec := 0
	for _, s := range sources {
		if m := s.MaxSpeculativeEvilFromScript(puzzle.Script); m > maxSpec {
			maxSpec = m
		}
	}
	if maxSpec > puzzle.Compromises.MaxSpeculation {
		maxSpec = puzzle.Compromises.MaxSpeculation
	}

	var candidates []int
	for i, p := range base.Players {
		if excluded[i] || p.IsEvil {
			continue
		}
		for _, s := range sources {
			if s.CanTargetAsSpeculativeEvil(p.Role, rolesInPlay(base)) {
				candidates = append(candidates, i)
				break
			}
		}
	}

	return func(yield func(*worldstate.World) bool) {
		forkID := 0
		for subset := range subsetsUpTo(candidates, maxSpec) {
			w := base.Fork(forkID)
			forkID++
			for _, seat := range subset {
				w.Players[seat].SpeculativeEvil = true
				w.Players[seat].IsEvil = true
			}
			w.InitialRoles = roleNames(w)
			if !yield(w) {
				return
			}
		}
	}
}

func roleNames(w *worldstate.World) []string {
	names := make([]string, len(w.Players))
	for i, p := range w.Players {
		names[i] = p.Role.Name()
	}
	return names
}

func rolesInPlay(w *worldstate.World) []worldstate.Role {
	roles := make([]worldstate.Role, len(w.Players))
	for i, p := range w.Players {
		roles[i] = p.Role
	}
	return roles
}

// combinations yields every size-k subset of items, in index order, as a
// slice in ascending index order.
func combinations(items []int, k int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if k == 0 {
			yield(nil)
			return
		}
		if k > len(items) {
			return
		}
		var rec func(start int, chosen []int) bool
		rec = func(start int, chosen []int) bool {
			if len(chosen) == k {
				return yield(append([]int(nil), chosen...))
			}
			remaining := k - len(chosen)
			for i := start; i <= len(items)-remaining; i++ {
				if !rec(i+1, append(chosen, items[i])) {
					return false
				}
			}
			return true
		}
		rec(0, nil)
	}
}

// subsetsUpTo yields every subset of items of size 0..maxSize, smallest
// first.
func subsetsUpTo(items []int, maxSize int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		for size := 0; size <= maxSize && size <= len(items); size++ {
			for combo := range combinations(items, size) {
				if !yield(combo) {
					return
				}
			}
		}
	}
}

// permutations yields every ordering of roles, deterministically.
func permutations(roles []worldstate.Role) iter.Seq[[]worldstate.Role] {
	return func(yield func([]worldstate.Role) bool) {
		n := len(roles)
		if n == 0 {
			yield(nil)
			return
		}
		used := make([]bool, n)
		current := make([]worldstate.Role, 0, n)
		var rec func() bool
		rec = func() bool {
			if len(current) == n {
				return yield(append([]worldstate.Role(nil), current...))
			}
			for i := 0; i < n; i++ {
				if used[i] {
					continue
				}
				used[i] = true
				current = append(current, roles[i])
				cont := rec()
				current = current[:len(current)-1]
				used[i] = false
				if !cont {
					return false
				}
			}
			return true
		}
		rec()
	}
}
