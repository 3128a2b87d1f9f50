package placement

import (
	"iter"
	"sort"
	"testing"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// stubRole is a minimal worldstate.Role used to build puzzles without
// depending on the concrete role catalog.
type stubRole struct {
	name   string
	cat    worldstate.Category
	mayLie bool
}

func (r *stubRole) Name() string                      { return r.name }
func (r *stubRole) Category() worldstate.Category     { return r.cat }
func (r *stubRole) MayLie() bool                      { return r.mayLie }
func (r *stubRole) MisregisterCategories() []worldstate.Category { return nil }
func (r *stubRole) WakePattern() worldstate.WakePattern { return worldstate.WakeNever }
func (r *stubRole) Clone() worldstate.Role              { cp := *r; return &cp }
func (r *stubRole) ModifyCategoryBounds(b worldstate.CategoryBounds) worldstate.CategoryBounds {
	return b
}
func (r *stubRole) RunSetup(w *worldstate.World, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}
func (r *stubRole) RunNight(w *worldstate.World, n int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}
func (r *stubRole) RunDay(w *worldstate.World, d int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}
func (r *stubRole) EndNight(w *worldstate.World, n int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}
func (r *stubRole) EndDay(w *worldstate.World, d int, me worldstate.PlayerID) bool { return true }
func (r *stubRole) AttackedAtNight(w *worldstate.World, me, src worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}
func (r *stubRole) Executed(w *worldstate.World, me worldstate.PlayerID, died bool) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}
func (r *stubRole) ActivateEffects(w *worldstate.World, me worldstate.PlayerID)   {}
func (r *stubRole) DeactivateEffects(w *worldstate.World, me worldstate.PlayerID) {}
func (r *stubRole) RunNightExternal(w *worldstate.World, ext worldstate.ExternalInfo, me worldstate.PlayerID) bool {
	return true
}

// jumperRole is a SpeculativeEvilSource stand-in bounded to a single
// speculative seat, targeting any good role.
type jumperRole struct{ stubRole }

func (j *jumperRole) Clone() worldstate.Role { cp := *j; return &cp }

func (j *jumperRole) MaxSpeculativeEvilFromScript(script []worldstate.Role) int { return 1 }
func (j *jumperRole) CanTargetAsSpeculativeEvil(candidate worldstate.Role, inPlay []worldstate.Role) bool {
	return !candidate.Category().IsEvilCategory()
}

func buildPlacementPuzzle(t *testing.T, players []worldstate.PuzzlePlayerInput, hidden, hiddenSelf []worldstate.Role, counts worldstate.CategoryBounds4) *worldstate.Puzzle {
	t.Helper()
	var tags []string
	for _, p := range players {
		tags = append(tags, p.Claim.Name())
	}
	for _, c := range hidden {
		tags = append(tags, c.Name())
	}
	for _, c := range hiddenSelf {
		tags = append(tags, c.Name())
	}
	p, err := worldstate.NewPuzzle(worldstate.PuzzleInput{
		Players:          players,
		HiddenCharacters: hidden,
		HiddenSelf:       hiddenSelf,
		CategoryCounts:   &counts,
		InactiveRoleTags: tags,
	})
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}
	return p
}

func TestCombinations(t *testing.T) {
	got := collectInts(combinations([]int{0, 1, 2, 3}, 2))
	want := [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	if !equalIntSlices(got, want) {
		t.Errorf("combinations(4 choose 2) = %v, want %v", got, want)
	}
}

func TestCombinationsSizeZero(t *testing.T) {
	got := collectInts(combinations([]int{0, 1}, 0))
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("combinations(_, 0) should yield exactly one empty subset, got %v", got)
	}
}

func TestCombinationsSizeExceedsItems(t *testing.T) {
	got := collectInts(combinations([]int{0, 1}, 3))
	if len(got) != 0 {
		t.Errorf("combinations with k > len(items) should yield nothing, got %v", got)
	}
}

func TestSubsetsUpTo(t *testing.T) {
	got := collectInts(subsetsUpTo([]int{0, 1, 2}, 2))
	want := [][]int{{}, {0}, {1}, {2}, {0, 1}, {0, 2}, {1, 2}}
	if !equalIntSlices(got, want) {
		t.Errorf("subsetsUpTo = %v, want %v", got, want)
	}
}

func TestPermutationsCountAndUniqueness(t *testing.T) {
	rs := []worldstate.Role{
		&stubRole{name: "A"}, &stubRole{name: "B"}, &stubRole{name: "C"},
	}
	seen := map[string]bool{}
	n := 0
	for perm := range permutations(rs) {
		n++
		key := perm[0].Name() + perm[1].Name() + perm[2].Name()
		if seen[key] {
			t.Errorf("permutation %q yielded more than once", key)
		}
		seen[key] = true
	}
	if n != 6 {
		t.Errorf("permutations of 3 roles should yield 3! = 6 orderings, got %d", n)
	}
}

func TestEnumerateSeatsHiddenCharacterAcrossEverySeat(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Empath", cat: worldstate.Townsfolk}},
		{Name: "C", Claim: &stubRole{name: "Noble", cat: worldstate.Townsfolk}},
	}
	demon := &stubRole{name: "Demon", cat: worldstate.Demon}
	puzzle := buildPlacementPuzzle(t, players, []worldstate.Role{demon}, nil, worldstate.CategoryBounds4{Townsfolk: 2, Demon: 1})

	var demonSeats []int
	for w := range Enumerate(puzzle) {
		for i, p := range w.Players {
			if p.Role.Category() == worldstate.Demon {
				demonSeats = append(demonSeats, i)
			}
		}
	}
	sort.Ints(demonSeats)
	if want := []int{0, 1, 2}; !equalIntSliceSingle(demonSeats, want) {
		t.Errorf("demon should have been seated in every seat across starting configurations, got %v", demonSeats)
	}
}

func TestEnumerateHonoursCategoryBounds(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Townsfolk", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Townsfolk", cat: worldstate.Townsfolk}},
	}
	// Two hidden demons but bounds only allow one: every configuration
	// must be rejected.
	puzzle := buildPlacementPuzzle(t, players,
		[]worldstate.Role{&stubRole{name: "Demon1", cat: worldstate.Demon}, &stubRole{name: "Demon2", cat: worldstate.Demon}},
		nil, worldstate.CategoryBounds4{Townsfolk: 1, Demon: 1})

	for range Enumerate(puzzle) {
		t.Fatalf("expected no starting configuration to satisfy the category bounds")
	}
}

func TestEnumeratePlacesHiddenSelfWithoutMarkingEvil(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Empath", cat: worldstate.Townsfolk}},
		{Name: "C", Claim: &stubRole{name: "Noble", cat: worldstate.Townsfolk}},
	}
	demon := &stubRole{name: "Demon", cat: worldstate.Demon}
	drunk := &stubRole{name: "Drunk", cat: worldstate.Outsider, mayLie: true}
	puzzle := buildPlacementPuzzle(t, players, []worldstate.Role{demon}, []worldstate.Role{drunk},
		worldstate.CategoryBounds4{Townsfolk: 1, Outsider: 1, Demon: 1})

	found := false
	for w := range Enumerate(puzzle) {
		for _, p := range w.Players {
			if p.Role.Name() == "Drunk" {
				found = true
				if p.IsEvil {
					t.Errorf("a HiddenSelf role must not mark its wearer evil")
				}
			}
		}
	}
	if !found {
		t.Errorf("expected at least one configuration to place the HiddenSelf role")
	}
}

func TestEnumerateRejectsDuplicateClaimedTokens(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "C", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
	}
	demon := &stubRole{name: "Demon", cat: worldstate.Demon}
	puzzle := buildPlacementPuzzle(t, players, []worldstate.Role{demon}, nil,
		worldstate.CategoryBounds4{Townsfolk: 2, Demon: 1})

	// Every configuration converts exactly one of three identical Steward
	// claims to the hidden Demon; the remaining two seats still claim
	// "Steward" without lying, which is an impossible duplicate-token bag.
	for range Enumerate(puzzle) {
		t.Fatalf("expected every configuration to be rejected for duplicate non-lying claims")
	}
}

func TestEnumerateAllowsDuplicateTokensWhenPermitted(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "C", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
	}
	demon := &stubRole{name: "Demon", cat: worldstate.Demon}
	var tags []string
	for _, p := range players {
		tags = append(tags, p.Claim.Name())
	}
	tags = append(tags, demon.Name())
	puzzle, err := worldstate.NewPuzzle(worldstate.PuzzleInput{
		Players:                   players,
		HiddenCharacters:          []worldstate.Role{demon},
		CategoryCounts:            &worldstate.CategoryBounds4{Townsfolk: 2, Demon: 1},
		AllowDuplicateTokensInBag: true,
		InactiveRoleTags:          tags,
	})
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}

	count := 0
	for range Enumerate(puzzle) {
		count++
	}
	if count == 0 {
		t.Errorf("AllowDuplicateTokensInBag should let duplicate Steward claims through")
	}
}

func TestSpeculateEvilBoundedByMaxSpeculation(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "Jumper", Claim: &jumperRole{stubRole{name: "Jumper", cat: worldstate.Traveller}}},
		{Name: "A", Claim: &stubRole{name: "Townsfolk", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Townsfolk", cat: worldstate.Townsfolk}},
	}
	puzzle := buildPlacementPuzzle(t, players, nil, nil, worldstate.CategoryBounds4{Townsfolk: 2})

	base := worldstate.NewWorld(puzzle)
	var sawEvilSeat1, sawNoSpeculation bool
	for w := range speculateEvil(puzzle, base, nil) {
		if w.Players[1].SpeculativeEvil || w.Players[2].SpeculativeEvil {
			sawEvilSeat1 = true
			evilCount := 0
			for _, p := range w.Players {
				if p.SpeculativeEvil {
					evilCount++
				}
			}
			if evilCount > 1 {
				t.Errorf("MaxSpeculativeEvilFromScript=1 must bound speculative seats to at most 1, got %d", evilCount)
			}
		} else {
			sawNoSpeculation = true
		}
	}
	if !sawEvilSeat1 || !sawNoSpeculation {
		t.Errorf("expected both a no-speculation branch and a one-seat-speculative branch")
	}
}

func TestWithinCategoryBounds(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Townsfolk", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Townsfolk", cat: worldstate.Townsfolk}},
	}
	puzzle := buildPlacementPuzzle(t, players, nil, nil, worldstate.CategoryBounds4{Townsfolk: 2})
	w := worldstate.NewWorld(puzzle)
	if !withinCategoryBounds(puzzle, w) {
		t.Errorf("a seating exactly matching the target counts should be within bounds")
	}
	w.Players[0].Role = &stubRole{name: "Demon", cat: worldstate.Demon}
	if withinCategoryBounds(puzzle, w) {
		t.Errorf("a seating deviating from the target counts should be rejected")
	}
}

func TestRespectsClaimedTokens(t *testing.T) {
	players := []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
		{Name: "B", Claim: &stubRole{name: "Steward", cat: worldstate.Townsfolk}},
	}
	puzzle := buildPlacementPuzzle(t, players, nil, nil, worldstate.CategoryBounds4{Townsfolk: 2})
	w := worldstate.NewWorld(puzzle)
	if respectsClaimedTokens(puzzle, w) {
		t.Errorf("two non-lying players claiming the same role should violate the duplicate-token invariant")
	}
	w.Players[0].IsEvil = true
	if !respectsClaimedTokens(puzzle, w) {
		t.Errorf("an evil player's claim doesn't occupy a real token, so this should now pass")
	}
}

func collectInts(seq iter.Seq[[]int]) [][]int {
	var out [][]int
	for v := range seq {
		out = append(out, append([]int(nil), v...))
	}
	return out
}

func equalIntSlices(got, want [][]int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !equalIntSliceSingle(got[i], want[i]) {
			return false
		}
	}
	return true
}

func equalIntSliceSingle(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
