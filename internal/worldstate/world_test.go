package worldstate

import (
	"iter"
	"testing"
)

// stubRole is a minimal worldstate.Role used only to exercise World/Player
// machinery without depending on the concrete role catalog.
type stubRole struct {
	name        string
	cat         Category
	mayLie      bool
	misregister []Category
	woke        bool
	activated   bool
}

func (r *stubRole) Name() string                      { return r.name }
func (r *stubRole) Category() Category                { return r.cat }
func (r *stubRole) MayLie() bool                      { return r.mayLie }
func (r *stubRole) MisregisterCategories() []Category { return r.misregister }
func (r *stubRole) WakePattern() WakePattern            { return WakeEachNight }
func (r *stubRole) Clone() Role                         { cp := *r; return &cp }
func (r *stubRole) ModifyCategoryBounds(b CategoryBounds) CategoryBounds { return b }

func (r *stubRole) RunSetup(w *World, me PlayerID) iter.Seq[*World] {
	return func(yield func(*World) bool) { yield(w) }
}
func (r *stubRole) RunNight(w *World, night int, me PlayerID) iter.Seq[*World] {
	return func(yield func(*World) bool) { r.woke = true; yield(w) }
}
func (r *stubRole) RunDay(w *World, day int, me PlayerID) iter.Seq[*World] {
	return func(yield func(*World) bool) { yield(w) }
}
func (r *stubRole) EndNight(w *World, night int, me PlayerID) iter.Seq[*World] {
	return func(yield func(*World) bool) { yield(w) }
}
func (r *stubRole) EndDay(w *World, day int, me PlayerID) bool { return true }
func (r *stubRole) AttackedAtNight(w *World, me, src PlayerID) iter.Seq[*World] {
	return func(yield func(*World) bool) { w.Players[me].IsDead = true; yield(w) }
}
func (r *stubRole) Executed(w *World, me PlayerID, died bool) iter.Seq[*World] {
	return func(yield func(*World) bool) { w.Players[me].IsDead = died; yield(w) }
}
func (r *stubRole) ActivateEffects(w *World, me PlayerID)   { r.activated = true }
func (r *stubRole) DeactivateEffects(w *World, me PlayerID) { r.activated = false }
func (r *stubRole) RunNightExternal(w *World, ext ExternalInfo, me PlayerID) bool { return true }

func buildTestPuzzle(t *testing.T, roles ...Role) *Puzzle {
	t.Helper()
	players := make([]PuzzlePlayerInput, len(roles))
	for i, r := range roles {
		players[i] = PuzzlePlayerInput{Name: r.Name(), Claim: r}
	}
	var tags []string
	for _, r := range roles {
		tags = append(tags, r.Name())
	}
	p, err := NewPuzzle(PuzzleInput{
		Players:          players,
		InactiveRoleTags: tags,
		CategoryCounts:   &CategoryBounds4{},
	})
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}
	return p
}

func TestWorldForkIsIndependent(t *testing.T) {
	puzzle := buildTestPuzzle(t, &stubRole{name: "A", cat: Townsfolk}, &stubRole{name: "B", cat: Outsider})
	w := NewWorld(puzzle)
	w.Players[0].IsDead = false

	fork := w.Fork(1)
	fork.Players[0].IsDead = true
	fork.Players[0].Role.(*stubRole).name = "changed"

	if w.Players[0].IsDead {
		t.Errorf("forking should not mutate the original world's player")
	}
	if w.Players[0].Role.Name() != "A" {
		t.Errorf("forking should not share role instances: got %q", w.Players[0].Role.Name())
	}
	if fork.Puzzle != w.Puzzle {
		t.Errorf("fork must share the Puzzle by reference")
	}
	if len(fork.LineageKey) != 1 || fork.LineageKey[0] != 1 {
		t.Errorf("fork should record the fork id in LineageKey, got %v", fork.LineageKey)
	}
}

func TestBehavesEvilDefersToIsEvil(t *testing.T) {
	puzzle := buildTestPuzzle(t, &stubRole{name: "A", cat: Townsfolk})
	w := NewWorld(puzzle)
	w.Players[0].IsEvil = true
	if !w.BehavesEvil(0) {
		t.Errorf("evil player should behave evil by default")
	}
	w.Players[0].IsEvil = false
	if w.BehavesEvil(0) {
		t.Errorf("good player with no overriding marker should not behave evil")
	}
}

type alwaysEvilRole struct{ stubRole }

func (r *alwaysEvilRole) Clone() Role          { cp := *r; return &cp }
func (alwaysEvilRole) AlwaysBehavesEvil() bool { return true }

type neverEvilRole struct{ stubRole }

func (r *neverEvilRole) Clone() Role         { cp := *r; return &cp }
func (neverEvilRole) NeverBehavesEvil() bool { return true }

func TestBehavesEvilHonoursMarkerInterfaces(t *testing.T) {
	puzzle := buildTestPuzzle(t,
		&alwaysEvilRole{stubRole{name: "Always", cat: Townsfolk}},
		&neverEvilRole{stubRole{name: "Never", cat: Demon}},
	)
	w := NewWorld(puzzle)
	w.Players[0].IsEvil = false
	if !w.BehavesEvil(0) {
		t.Errorf("AlwaysBehavesEvil role should behave evil despite IsEvil=false")
	}
	w.Players[1].IsEvil = true
	if w.BehavesEvil(1) {
		t.Errorf("NeverBehavesEvil role should not behave evil despite IsEvil=true")
	}
}

func TestCheckGameOverAllDemonsDead(t *testing.T) {
	puzzle := buildTestPuzzle(t, &stubRole{name: "Demon", cat: Demon}, &stubRole{name: "Good", cat: Townsfolk})
	w := NewWorld(puzzle)
	if w.CheckGameOver() {
		t.Fatalf("game should not be over while the demon lives")
	}
	w.Players[0].IsDead = true
	if !w.CheckGameOver() {
		t.Errorf("game should be over once every demon is dead")
	}
}

type keepsAliveRole struct{ stubRole }

func (r *keepsAliveRole) Clone() Role                            { cp := *r; return &cp }
func (keepsAliveRole) KeepsGameAlive(w *World, me PlayerID) bool { return true }

func TestCheckGameOverKeepsAliveException(t *testing.T) {
	puzzle := buildTestPuzzle(t, &stubRole{name: "Demon", cat: Demon}, &keepsAliveRole{stubRole{name: "Twin", cat: Minion}})
	w := NewWorld(puzzle)
	w.Players[0].IsDead = true
	if w.CheckGameOver() {
		t.Errorf("a KeepsGameAlive role should prevent game-over even with every demon dead")
	}
}

func TestMathMisregistrationBounds(t *testing.T) {
	puzzle := buildTestPuzzle(t, &stubRole{name: "A", cat: Townsfolk})
	w := NewWorld(puzzle)

	trueResult := True
	w.MathMisregistration(0, &trueResult)
	if min, max := w.MathMisregistrationBounds(); min != 0 || max != 0 {
		t.Errorf("a known-TRUE result should not widen the bound, got (%d,%d)", min, max)
	}

	w.ResetMathMisregistration()
	w.MathMisregistration(0, nil)
	if min, max := w.MathMisregistrationBounds(); min != 1 || max != 1 {
		t.Errorf("an unconditional misregistration should widen both bounds, got (%d,%d)", min, max)
	}

	w.ResetMathMisregistration()
	maybeResult := Maybe
	w.MathMisregistration(0, &maybeResult)
	if min, max := w.MathMisregistrationBounds(); min != 0 || max != 1 {
		t.Errorf("a MAYBE result should widen only the max bound, got (%d,%d)", min, max)
	}
	// A second call for the same player must not double-count.
	w.MathMisregistration(0, &maybeResult)
	if _, max := w.MathMisregistrationBounds(); max != 1 {
		t.Errorf("repeated calls for the same player must not double-count")
	}
}

func TestDispatchNightRecordsWoke(t *testing.T) {
	puzzle := buildTestPuzzle(t, &stubRole{name: "Seer", cat: Townsfolk})
	w := NewWorld(puzzle)
	var out *World
	for next := range w.DispatchNight("Seer", 1) {
		out = next
	}
	if out == nil {
		t.Fatalf("DispatchNight yielded no world")
	}
	if !out.Players[0].WokeTonight {
		t.Errorf("a WakeEachNight role should be marked as having woken")
	}
}

func TestDroisonSuppressesMisregisterCategories(t *testing.T) {
	r := &stubRole{name: "Spy", cat: Minion, misregister: []Category{Townsfolk}}
	puzzle := buildTestPuzzle(t, r)
	w := NewWorld(puzzle)

	if cats := w.Players[0].GetMisregisterCategories(); len(cats) != 1 {
		t.Fatalf("undroisoned player should report its role's misregister categories, got %v", cats)
	}
	w.Players[0].Droison(w)
	if cats := w.Players[0].GetMisregisterCategories(); cats != nil {
		t.Errorf("droisoned player should report no misregister categories, got %v", cats)
	}
	w.Players[0].Undroison(w)
	if cats := w.Players[0].GetMisregisterCategories(); len(cats) != 1 {
		t.Errorf("undroisoning should restore misregister categories, got %v", cats)
	}
}
