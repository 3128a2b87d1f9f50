// Package puzzlefixtures holds the literal scenario puzzles used as
// acceptance tests and demo data: six hand-built puzzles exercising
// info-check consistency, night-death reconciliation, the Fortune
// Teller's red herring, the Vortox demon's info inversion, duplicate
// character tokens, and deterministic parallel solving.
package puzzlefixtures

import (
	"context"
	"iter"

	"github.com/qingchang/clocktower-solver/internal/apperr"
	"github.com/qingchang/clocktower-solver/internal/predicates"
	"github.com/qingchang/clocktower-solver/internal/roles"
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// dayMarker is an inert worldstate.Event: it records that a day happened
// on the round it's attached to without claiming anything about it, so a
// scenario whose last recorded claim falls on a night isn't mistaken for
// one where the game is already over by then.
type dayMarker struct{}

func (dayMarker) Apply(w *worldstate.World) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}

func orders() (setup, night, day, inactive []string) {
	return roles.GlobalSetupOrder, roles.GlobalNightOrder, roles.GlobalDayOrder, roles.InactiveRoleTags
}

func build(in worldstate.PuzzleInput) (*worldstate.Puzzle, error) {
	setup, night, day, inactive := orders()
	in.GlobalSetupOrder = setup
	in.GlobalNightOrder = night
	in.GlobalDayOrder = day
	in.InactiveRoleTags = inactive
	return worldstate.NewPuzzle(in)
}

// S1 is the "simple minion-hunt" scenario: 6 seats, claims Savant,
// Knight, Steward, Investigator, Noble, Seamstress; hidden pool of a
// roaming demon, a misregistering minion and a lying outsider.
func S1() (*worldstate.Puzzle, error) {
	const (
		pSavant = worldstate.PlayerID(iota)
		pKnight
		pSteward
		pInvestigator
		pNoble
		pSeamstress
	)

	return build(worldstate.PuzzleInput{
		Players: []worldstate.PuzzlePlayerInput{
			{
				Name:  "Savant",
				Claim: &roles.Savant{},
				DayInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Savant", Stmt: roles.SavantPair(
						predicates.IsInPlay{RoleTag: "Trickster"},
						predicates.IsEvil{Target: pKnight},
					)}},
				},
			},
			{
				Name:  "Knight",
				Claim: &roles.Knight{},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Knight", Stmt: roles.KnightPing(pSteward, pNoble, "Village Demon")}},
				},
			},
			{
				Name:  "Steward",
				Claim: &roles.Steward{},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Steward", Stmt: roles.StewardPing(pNoble)}},
				},
			},
			{
				Name:  "Investigator",
				Claim: &roles.Investigator{},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Investigator", Stmt: roles.InvestigatorPing(pSteward, pSeamstress, "Trickster")}},
				},
			},
			{
				Name:  "Noble",
				Claim: &roles.Noble{},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Noble", Stmt: roles.NoblePing(pKnight, pSteward, pInvestigator)}},
				},
			},
			{
				Name:  "Seamstress",
				Claim: &roles.Seamstress{},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Seamstress", Stmt: roles.SeamstressPing(pSteward, pInvestigator)}},
				},
			},
		},
		HiddenCharacters: []worldstate.Role{
			&roles.VillageDemon{},
			&roles.Trickster{},
		},
		HiddenSelf: []worldstate.Role{
			&roles.Drunk{},
		},
		DeduplicateInitialCharacters: true,
		FinishFinalDay:                false,
	})
}

// S2 is the "night-death reconciliation" scenario: 7 seats, a Slayer
// shot claimed to land on day 1, no claimed night deaths, a hidden demon,
// and a claimed Monk whose night protection has lapsed by the time of
// the day shot.
func S2() (*worldstate.Puzzle, error) {
	const (
		pSlayer = worldstate.PlayerID(iota)
		pTarget
	)

	return build(worldstate.PuzzleInput{
		Players: []worldstate.PuzzlePlayerInput{
			{Name: "Slayer", Claim: &roles.Slayer{}},
			{Name: "Target", Claim: &roles.Savant{}},
			{Name: "Monk", Claim: &roles.Monk{}},
			{Name: "P4", Claim: &roles.Steward{}},
			{Name: "P5", Claim: &roles.Investigator{}},
			{Name: "P6", Claim: &roles.Noble{}},
			{Name: "P7", Claim: &roles.Knight{}},
		},
		DayEvents: map[int][]worldstate.Event{
			1: {roles.SlayerShot{Shooter: pSlayer, Target: pTarget, Died: true}},
		},
		NightDeaths: map[int][]worldstate.NightRecord{},
		HiddenCharacters: []worldstate.Role{
			&roles.VillageDemon{},
			&roles.Trickster{},
		},
		DeduplicateInitialCharacters: true,
	})
}

// S3 is the "Fortune-teller red herring" scenario: a Fortune Teller
// makes two ping statements across nights 1 and 2 that together pin down
// exactly one seat as the red herring.
func S3() (*worldstate.Puzzle, error) {
	const (
		pSeer = worldstate.PlayerID(iota)
		pA
		pB
		pC
		p5
		p6
	)

	return build(worldstate.PuzzleInput{
		Players: []worldstate.PuzzlePlayerInput{
			{
				Name:  "Seer",
				Claim: &roles.FortuneTeller{},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Fortune Teller", Stmt: roles.FortuneTellerPing{Seer: pSeer, A: pA, B: pB}}},
					2: {{RoleTag: "Fortune Teller", Stmt: roles.FortuneTellerPing{Seer: pSeer, A: pA, B: pC}}},
				},
			},
			{Name: "A", Claim: &roles.Steward{}},
			{Name: "B", Claim: &roles.Investigator{}},
			{Name: "C", Claim: &roles.Noble{}},
			{Name: "P5", Claim: &roles.Knight{}},
			{Name: "P6", Claim: &roles.Savant{}},
		},
		// Night 2 is the last claim recorded; mark day 2 as having
		// happened too so the puzzle isn't mistaken for one that ends
		// with night 2, which would force the demon to already be dead.
		DayEvents: map[int][]worldstate.Event{2: {dayMarker{}}},
		// The demon wakes again on night 2 and must kill; P6 isn't named
		// in either Fortune Teller ping, so recording its death here doesn't
		// constrain the red herring.
		NightDeaths: map[int][]worldstate.NightRecord{
			2: {{Kind: worldstate.NightDeath, Player: p6}},
		},
		HiddenCharacters: []worldstate.Role{
			&roles.VillageDemon{},
			&roles.Trickster{},
			&roles.Drunk{},
		},
		DeduplicateInitialCharacters: true,
	})
}

// S4 builds the Vortox-demon scenario twice: WithVortox true swaps the
// hidden demon for a VortoxDemon, everything else unchanged, so callers
// can compare pruning behaviour on the same Townsfolk info lines.
func S4(withVortox bool) (*worldstate.Puzzle, error) {
	const (
		pEmpath = worldstate.PlayerID(iota)
		pLeft
		pRight
		p4
		p5
	)

	demon := worldstate.Role(&roles.VillageDemon{})
	if withVortox {
		demon = &roles.VortoxDemon{}
	}

	return build(worldstate.PuzzleInput{
		Players: []worldstate.PuzzlePlayerInput{
			{
				Name:  "Empath",
				Claim: &roles.Empath{Left: pRight, Right: pLeft},
				NightInfo: map[int][]worldstate.Claimed{
					1: {{RoleTag: "Empath", Stmt: roles.EmpathPing(0, pLeft, pRight)}},
				},
			},
			{Name: "Left", Claim: &roles.Steward{}},
			{Name: "Right", Claim: &roles.Investigator{}},
			{Name: "P4", Claim: &roles.Noble{}},
			{Name: "P5", Claim: &roles.Knight{}},
		},
		// Night 1 is the only claim recorded; mark day 1 as having
		// happened too, for the same reason as S3's day 2 marker.
		DayEvents:                    map[int][]worldstate.Event{1: {dayMarker{}}},
		HiddenCharacters:              []worldstate.Role{demon, &roles.Trickster{}},
		DeduplicateInitialCharacters: true,
	})
}

// S5 is the "duplicate tokens allowed" scenario: every player claims the
// same Townsfolk role, which would otherwise be rejected as an
// impossible bag.
func S5() (*worldstate.Puzzle, error) {
	players := make([]worldstate.PuzzlePlayerInput, 7)
	for i := range players {
		players[i] = worldstate.PuzzlePlayerInput{Name: "P", Claim: &roles.Atheist{}}
	}
	return build(worldstate.PuzzleInput{
		Players:                   players,
		AllowDuplicateTokensInBag: true,
		HiddenCharacters: []worldstate.Role{
			&roles.VillageDemon{},
			&roles.Trickster{},
		},
	})
}

// S6 returns the puzzle deterministic-parallel solving is checked
// against (identical to S1: solving it with worker counts 1 and 8 must
// yield set-equal solutions).
func S6() (*worldstate.Puzzle, error) {
	return S1()
}

// LoadByID resolves one of the fixed demo scenario IDs ("s1".."s6") to
// its puzzle. Intended for the CLI and as the default api.Server
// PuzzleLoader before a real puzzle-authoring surface exists.
func LoadByID(ctx context.Context, id string) (*worldstate.Puzzle, error) {
	switch id {
	case "s1":
		return S1()
	case "s2":
		return S2()
	case "s3":
		return S3()
	case "s4":
		return S4(true)
	case "s4-control":
		return S4(false)
	case "s5":
		return S5()
	case "s6":
		return S6()
	default:
		return nil, apperr.Newf(apperr.CodeValidation, "unknown puzzle id %q", id)
	}
}
