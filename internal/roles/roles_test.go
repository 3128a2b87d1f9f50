package roles

import (
	"testing"

	"github.com/qingchang/clocktower-solver/internal/predicates"
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

func buildRolePuzzle(t *testing.T, players []worldstate.PuzzlePlayerInput, hidden ...worldstate.Role) *worldstate.Puzzle {
	t.Helper()
	p, err := worldstate.NewPuzzle(worldstate.PuzzleInput{
		Players:          players,
		HiddenCharacters: hidden,
		CategoryCounts:   &worldstate.CategoryBounds4{},
		GlobalSetupOrder: GlobalSetupOrder,
		GlobalNightOrder: GlobalNightOrder,
		GlobalDayOrder:   GlobalDayOrder,
		InactiveRoleTags: InactiveRoleTags,
	})
	if err != nil {
		t.Fatalf("NewPuzzle: %v", err)
	}
	return p
}

func onlyWorld(t *testing.T, seq func(func(*worldstate.World) bool)) *worldstate.World {
	t.Helper()
	var out *worldstate.World
	n := 0
	for w := range seq {
		out = w
		n++
	}
	if n != 1 {
		t.Fatalf("expected exactly one surviving world, got %d", n)
	}
	return out
}

func noWorlds(t *testing.T, seq func(func(*worldstate.World) bool)) {
	t.Helper()
	for range seq {
		t.Fatalf("expected no surviving world, but one was yielded")
	}
}

// TestEveryCatalogRoleIsRegistered guards against the class of bug where a
// new catalog role is never added to any turn order or the inactive list,
// which would make Puzzle construction reject any script containing it.
func TestEveryCatalogRoleIsRegistered(t *testing.T) {
	catalog := []worldstate.Role{
		&VillageDemon{}, &VortoxDemon{}, &Trickster{}, &Baron{}, &Poisoner{},
		&Drunk{}, &Monk{}, &Empath{}, &Investigator{}, &Knight{}, &Steward{},
		&Savant{}, &Seamstress{}, &Noble{}, &Atheist{}, &Puppeteer{}, &FortuneTeller{}, &Slayer{},
	}
	registered := map[string]bool{}
	for _, tag := range GlobalNightOrder {
		registered[tag] = true
	}
	for _, tag := range GlobalDayOrder {
		registered[tag] = true
	}
	for _, tag := range InactiveRoleTags {
		registered[tag] = true
	}
	for _, r := range catalog {
		if !registered[r.Name()] {
			t.Errorf("role %q is not in GlobalNightOrder, GlobalDayOrder or InactiveRoleTags", r.Name())
		}
	}
}

func TestDefaultInfoCheckPassesOnTrue(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Steward", Claim: &Steward{}, NightInfo: map[int][]worldstate.Claimed{
			1: {{RoleTag: "Steward", Stmt: StewardPing(1)}},
		}},
		{Name: "Target", Claim: &Empath{}},
	})
	w := worldstate.NewWorld(puzzle)
	out := onlyWorld(t, DefaultInfoCheck(w, 0, worldstate.InfoKey{Round: 1, RoleTag: "Steward"}))
	if out == nil {
		t.Fatal("expected a surviving world")
	}
}

func TestDefaultInfoCheckPrunesOnFalseUnlessLiar(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Steward", Claim: &Steward{}, NightInfo: map[int][]worldstate.Claimed{
			1: {{RoleTag: "Steward", Stmt: StewardPing(1)}},
		}},
		{Name: "Target", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	noWorlds(t, DefaultInfoCheck(w, 0, worldstate.InfoKey{Round: 1, RoleTag: "Steward"}))
}

func TestDefaultInfoCheckDroisonedNeverContradicted(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Steward", Claim: &Steward{}, NightInfo: map[int][]worldstate.Claimed{
			1: {{RoleTag: "Steward", Stmt: StewardPing(1)}},
		}},
		{Name: "Target", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	w.Players[0].Droison(w)
	out := onlyWorld(t, DefaultInfoCheck(w, 0, worldstate.InfoKey{Round: 1, RoleTag: "Steward"}))
	if out == nil {
		t.Fatal("a droisoned claim must never be contradicted")
	}
}

func TestDefaultInfoCheckVortoxInvertsTownsfolkClaims(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Steward", Claim: &Steward{}, NightInfo: map[int][]worldstate.Claimed{
			1: {{RoleTag: "Steward", Stmt: StewardPing(1)}},
		}},
		{Name: "Target", Claim: &Empath{}},
	})
	w := worldstate.NewWorld(puzzle)
	w.VortoxMode = true
	// Under Vortox the claimed TRUE (target is Townsfolk) is the one that's
	// contradicted, so this should now prune.
	noWorlds(t, DefaultInfoCheck(w, 0, worldstate.InfoKey{Round: 1, RoleTag: "Steward"}))
}

func TestDefaultInfoCheckVortoxDoesNotInvertEvilClaims(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Poisoner", Claim: &Poisoner{}},
	})
	w := worldstate.NewWorld(puzzle)
	w.VortoxMode = true
	w.Players[0].ClaimedNightInfo[worldstate.InfoKey{Round: 1, RoleTag: "Poisoner"}] =
		predicates.IsAlive{Target: 0}
	// Kept good so the liar exemption for evil players cannot hide an
	// inversion: only Vortox's category rule is under test.
	w.Players[0].IsEvil = false
	// Poisoner is a Minion, not Townsfolk, so Vortox must not invert its
	// claim: the TRUE claim should still be consistent.
	out := onlyWorld(t, DefaultInfoCheck(w, 0, worldstate.InfoKey{Round: 1, RoleTag: "Poisoner"}))
	if out == nil {
		t.Fatal("Vortox must only invert Townsfolk claims")
	}
}

func TestKnightPingExcludesNamedDemon(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "A", Claim: &Steward{}},
		{Name: "B", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	stmt := KnightPing(0, 1, "Village Demon")
	if got := stmt.Eval(w, 0); got != worldstate.False {
		t.Errorf("KnightPing naming the actual demon = %v, want FALSE", got)
	}
}

func TestSeamstressSpendsOnce(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Seamstress", Claim: &Seamstress{}, NightInfo: map[int][]worldstate.Claimed{
			1: {{RoleTag: "Seamstress", Stmt: SeamstressPing(1, 2)}},
		}},
		{Name: "A", Claim: &Steward{}},
		{Name: "B", Claim: &Empath{}},
	})
	w := worldstate.NewWorld(puzzle)
	sm := w.Players[0].Role.(*Seamstress)

	out := onlyWorld(t, sm.RunNight(w, 1, 0))
	if !out.Players[0].Role.(*Seamstress).Spent {
		t.Fatalf("Seamstress should be marked Spent after acting")
	}

	// A second night, already spent: must be a no-op regardless of claims.
	w2 := out
	out2 := onlyWorld(t, w2.Players[0].Role.(*Seamstress).RunNight(w2, 2, 0))
	if out2 != w2 {
		t.Errorf("a spent Seamstress's RunNight must yield the world unchanged")
	}
}

func TestMonkProtectsAgainstDemonAttack(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Monk", Claim: &Monk{}},
		{Name: "Target", Claim: &Steward{}},
		{Name: "Demon", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	var protectedWorld *worldstate.World
	for next := range w.Players[0].Role.RunNight(w, 2, 0) {
		if next.Players[1].ProtectedTonight {
			protectedWorld = next
			break
		}
	}
	if protectedWorld == nil {
		t.Fatal("Monk's RunNight should yield a branch protecting the target seat")
	}
	for after := range protectedWorld.Players[1].Role.AttackedAtNight(protectedWorld, 1, 2) {
		if after.Players[1].IsDead {
			t.Errorf("a protected player must survive a demon attack")
		}
	}
}

func TestPoisonerDroisonsAndLapses(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Poisoner", Claim: &Poisoner{}},
		{Name: "A", Claim: &Steward{}},
		{Name: "B", Claim: &Empath{}},
	})
	w := worldstate.NewWorld(puzzle)
	var afterNight1 *worldstate.World
	for next := range w.Players[0].Role.RunNight(w, 1, 0) {
		if next.Players[1].DroisonCount > 0 {
			afterNight1 = next
			break
		}
	}
	if afterNight1 == nil {
		t.Fatal("expected a branch where the Poisoner droisons seat 1")
	}
	var afterNight2 *worldstate.World
	for next := range afterNight1.Players[0].Role.RunNight(afterNight1, 2, 0) {
		if next.Players[2].DroisonCount > 0 {
			afterNight2 = next
			break
		}
	}
	if afterNight2 == nil {
		t.Fatal("expected a branch where the Poisoner retargets seat 2 on night 2")
	}
	if afterNight2.Players[1].DroisonCount != 0 {
		t.Errorf("switching targets should undroison the previous target, got count=%d", afterNight2.Players[1].DroisonCount)
	}
}

func TestBaronShiftsCategoryBounds(t *testing.T) {
	baron := &Baron{}
	bounds := worldstate.NewFixedBounds(7, 1, 2, 1)
	shifted := baron.ModifyCategoryBounds(bounds)
	if shifted[worldstate.Townsfolk].Min != 5 || shifted[worldstate.Townsfolk].Max != 5 {
		t.Errorf("Baron should shift Townsfolk down by 2, got %v", shifted[worldstate.Townsfolk])
	}
	if shifted[worldstate.Outsider].Min != 3 || shifted[worldstate.Outsider].Max != 3 {
		t.Errorf("Baron should shift Outsider up by 2, got %v", shifted[worldstate.Outsider])
	}
}

func TestTricksterMisregistersAsTownsfolk(t *testing.T) {
	trickster := &Trickster{}
	cats := trickster.MisregisterCategories()
	if len(cats) != 1 || cats[0] != worldstate.Townsfolk {
		t.Errorf("Trickster should misregister as Townsfolk only, got %v", cats)
	}
}

func TestDrunkMayLie(t *testing.T) {
	if !(&Drunk{}).MayLie() {
		t.Errorf("Drunk must be allowed to lie about its claimed character/info")
	}
}

func TestAtheistIsAtheistLike(t *testing.T) {
	var r worldstate.Role = &Atheist{}
	al, ok := r.(worldstate.AtheistLike)
	if !ok || !al.AtheistLike() {
		t.Errorf("Atheist must implement AtheistLike and report true")
	}
}

func TestPuppeteerTargetsGoodOnly(t *testing.T) {
	p := &Puppeteer{}
	if !p.CanTargetAsSpeculativeEvil(&Steward{}, nil) {
		t.Errorf("Puppeteer should be able to speculatively turn a Townsfolk")
	}
	if !p.CanTargetAsSpeculativeEvil(&Drunk{}, nil) {
		t.Errorf("Puppeteer should be able to speculatively turn an Outsider")
	}
	if p.CanTargetAsSpeculativeEvil(&VillageDemon{}, nil) {
		t.Errorf("Puppeteer should not be able to speculatively turn an already-evil role")
	}
}

func TestPuppeteerMaxSpeculativeEvilCountsItself(t *testing.T) {
	p := &Puppeteer{}
	if got := p.MaxSpeculativeEvilFromScript([]worldstate.Role{&Puppeteer{}}); got != 1 {
		t.Errorf("MaxSpeculativeEvilFromScript with Puppeteer on script = %d, want 1", got)
	}
	if got := p.MaxSpeculativeEvilFromScript([]worldstate.Role{&Steward{}}); got != 0 {
		t.Errorf("MaxSpeculativeEvilFromScript without Puppeteer on script = %d, want 0", got)
	}
}

func TestFortuneTellerRedHerringAlwaysRegistersDemon(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Seer", Claim: &FortuneTeller{}},
		{Name: "A", Claim: &Steward{}},
		{Name: "C", Claim: &Empath{}},
		{Name: "Demon", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	var withHerringOnA *worldstate.World
	for next := range w.Players[0].Role.RunSetup(w, 0) {
		ft := next.Players[0].Role.(*FortuneTeller)
		if ft.HasRedHerring && ft.RedHerring == 1 {
			withHerringOnA = next
			break
		}
	}
	if withHerringOnA == nil {
		t.Fatal("FortuneTeller setup should offer a branch with the red herring on the good seat")
	}
	// Neither A nor C is the actual demon, but A carries the red herring:
	// a ping naming A must still register TRUE.
	stmt := FortuneTellerPing{Seer: 0, A: 1, B: 2}
	if got := stmt.Eval(withHerringOnA, 0); got != worldstate.True {
		t.Errorf("a ping including the red herring seat must register TRUE, got %v", got)
	}
}

func TestSlayerShotKillsDemon(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Slayer", Claim: &Slayer{}},
		{Name: "Demon", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	ev := SlayerShot{Shooter: 0, Target: 1, Died: true}
	out := onlyWorld(t, ev.Apply(w))
	if !out.Players[1].IsDead {
		t.Errorf("a claimed-dead shot against the actual demon should kill it")
	}
	if !out.Players[0].Role.(*Slayer).Spent {
		t.Errorf("the Slayer should be marked Spent after shooting")
	}
}

func TestSlayerShotPrunesOnMismatch(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Slayer", Claim: &Slayer{}},
		{Name: "Good", Claim: &Steward{}},
	})
	w := worldstate.NewWorld(puzzle)
	ev := SlayerShot{Shooter: 0, Target: 1, Died: true}
	noWorlds(t, ev.Apply(w))
}

func TestSlayerShotCannotFireTwice(t *testing.T) {
	puzzle := buildRolePuzzle(t, []worldstate.PuzzlePlayerInput{
		{Name: "Slayer", Claim: &Slayer{}},
		{Name: "Demon", Claim: &VillageDemon{}},
		{Name: "Demon2", Claim: &VillageDemon{}},
	})
	w := worldstate.NewWorld(puzzle)
	first := SlayerShot{Shooter: 0, Target: 1, Died: true}
	out := onlyWorld(t, first.Apply(w))
	second := SlayerShot{Shooter: 0, Target: 2, Died: true}
	noWorlds(t, second.Apply(out))
}
