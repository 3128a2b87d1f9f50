package worldstate

import (
	"iter"
	"sort"

	"github.com/qingchang/clocktower-solver/internal/apperr"
)

// Event is a publicly visible happening the puzzle records for a given
// day: an execution, a slayer-style shot, a public statement, etc. Night
// deaths are not publicly visible and so are modelled as NightRecord, not
// Event.
type Event interface {
	Apply(w *World) iter.Seq[*World]
}

type NightEventKind int

const (
	NightDeath NightEventKind = iota
	NightResurrection
)

type NightRecord struct {
	Kind   NightEventKind
	Player PlayerID
}

// CompromiseConfig collects knobs that trade solver thoroughness for
// speed. They can cause a solution to be missed but never cause an
// illegal one to be returned. The zero-value-free defaults below incur no
// compromise.
type CompromiseConfig struct {
	MaxSpeculation int
}

func DefaultCompromiseConfig() CompromiseConfig {
	return CompromiseConfig{MaxSpeculation: 99}
}

// Claimed pairs a statement with the role tag it is claimed to come from,
// since one player may hold claims "from" multiple abilities across a
// game (role-change, Boffin-style borrowed abilities, etc).
type Claimed struct {
	RoleTag string
	Stmt    Info
}

type ExternalClaim struct {
	RoleTag string
	Night   int
	Stmt    ExternalInfo
}

// PuzzlePlayerInput is the author-facing schema for one seated player.
type PuzzlePlayerInput struct {
	Name              string
	Claim             Role
	NightInfo         map[int][]Claimed
	DayInfo           map[int][]Claimed
	ExternalNightInfo []ExternalClaim
	// DayEvents lets an author attach an event to "this player's" day-info
	// for readability; Puzzle construction moves it into the central
	// DayEvents map, same as the reference implementation.
	DayEvents map[int][]Event
}

// PuzzleInput is the full author-facing schema (§6 External Interfaces).
type PuzzleInput struct {
	Players         []PuzzlePlayerInput
	DayEvents       map[int][]Event
	NightDeaths     map[int][]NightRecord
	CategoryCounts  *CategoryBounds4 // nil => derive from player count
	HiddenCharacters []Role
	HiddenSelf      []Role
	AlsoOnScript    []Role
	Compromises     CompromiseConfig

	DeduplicateInitialCharacters bool
	FinishFinalDay               bool
	AllowDuplicateTokensInBag    bool
	PlayerZeroIsYou              bool
	AllowKillingDeadPlayers      bool

	// Catalog wiring, supplied by the caller (typically the roles
	// package's exported order slices) to keep this package independent
	// of any specific role catalog.
	GlobalSetupOrder []string
	GlobalNightOrder []string
	GlobalDayOrder   []string
	InactiveRoleTags []string
}

// CategoryBounds4 is the (Townsfolk, Outsider, Minion, Demon) target
// counts an author supplies explicitly, overriding the player-count
// default table.
type CategoryBounds4 struct {
	Townsfolk, Outsider, Minion, Demon int
}

// DefaultCategoryCounts mirrors the standard Trouble Brewing distribution
// table, keyed by player count.
var DefaultCategoryCounts = map[int]CategoryBounds4{
	5:  {3, 0, 1, 1},
	6:  {3, 1, 1, 1},
	7:  {5, 0, 1, 1},
	8:  {5, 1, 1, 1},
	9:  {5, 2, 1, 1},
	10: {7, 0, 2, 1},
	11: {7, 1, 2, 1},
	12: {7, 2, 2, 1},
	13: {9, 0, 3, 1},
	14: {9, 1, 3, 1},
	15: {9, 2, 3, 1},
}

// Puzzle is the immutable input to a solve: player claims, the public
// record, hidden pools, and solver flags. It is constructed once and
// shared by reference across every World and fork.
type Puzzle struct {
	Players []struct {
		Name              string
		Claim             Role
		NightInfo         map[InfoKey]Info
		DayInfo           map[InfoKey]Info
		ExternalNightInfo map[ExternalInfoKey][]ExternalInfo
	}

	DayEvents   map[int][]Event
	NightDeaths map[int][]NightRecord

	CategoryCounts CategoryBounds4
	Demons         []Role
	Minions        []Role
	HiddenGood     []Role
	HiddenSelf     []Role
	AlsoOnScript   []Role

	Compromises CompromiseConfig

	DeduplicateInitialCharacters bool
	FinishFinalDay               bool
	AllowDuplicateTokensInBag    bool
	PlayerZeroIsYou              bool
	AllowKillingDeadPlayers      bool

	Script     []Role
	SetupOrder []string
	NightOrder []string
	DayOrder   []string

	MaxNight int
	MaxDay   int

	EventCounts map[int]int

	ExternalInfoRegistry map[ExternalInfoKey][]ExternalInfoEntry
}

// NewPuzzle normalizes and validates the author-facing PuzzleInput,
// producing an immutable Puzzle ready to seed the placement enumerator.
func NewPuzzle(in PuzzleInput) (*Puzzle, error) {
	n := len(in.Players)
	counts := in.CategoryCounts
	if counts == nil {
		def, ok := DefaultCategoryCounts[n]
		if !ok {
			return nil, apperr.Newf(apperr.CodeValidation, "no default category counts for %d players", n)
		}
		counts = &def
	}

	p := &Puzzle{
		DayEvents:                    map[int][]Event{},
		NightDeaths:                  map[int][]NightRecord{},
		CategoryCounts:               *counts,
		HiddenSelf:                   in.HiddenSelf,
		AlsoOnScript:                  in.AlsoOnScript,
		Compromises:                  in.Compromises,
		DeduplicateInitialCharacters: in.DeduplicateInitialCharacters,
		FinishFinalDay:               in.FinishFinalDay,
		AllowDuplicateTokensInBag:    in.AllowDuplicateTokensInBag,
		PlayerZeroIsYou:              in.PlayerZeroIsYou,
		AllowKillingDeadPlayers:      in.AllowKillingDeadPlayers,
		EventCounts:                  map[int]int{},
		ExternalInfoRegistry:         map[ExternalInfoKey][]ExternalInfoEntry{},
	}
	if p.Compromises.MaxSpeculation == 0 {
		p.Compromises = DefaultCompromiseConfig()
	}

	for night, deaths := range in.NightDeaths {
		p.NightDeaths[night] = append([]NightRecord(nil), deaths...)
	}
	for day, evs := range in.DayEvents {
		p.DayEvents[day] = append([]Event(nil), evs...)
	}

	for _, c := range in.HiddenCharacters {
		switch c.Category() {
		case Demon:
			p.Demons = append(p.Demons, c)
		case Minion:
			p.Minions = append(p.Minions, c)
		default:
			p.HiddenGood = append(p.HiddenGood, c)
		}
	}

	p.Players = make([]struct {
		Name              string
		Claim             Role
		NightInfo         map[InfoKey]Info
		DayInfo           map[InfoKey]Info
		ExternalNightInfo map[ExternalInfoKey][]ExternalInfo
	}, n)

	for i, pi := range in.Players {
		rec := &p.Players[i]
		rec.Name = pi.Name
		rec.Claim = pi.Claim
		rec.NightInfo = map[InfoKey]Info{}
		rec.DayInfo = map[InfoKey]Info{}
		rec.ExternalNightInfo = map[ExternalInfoKey][]ExternalInfo{}

		for night, claims := range pi.NightInfo {
			for _, c := range claims {
				key := InfoKey{Round: night, RoleTag: c.RoleTag}
				if _, dup := rec.NightInfo[key]; dup {
					return nil, apperr.Newf(apperr.CodeValidation,
						"player %q has duplicate night-%d info for role %q", pi.Name, night, c.RoleTag)
				}
				rec.NightInfo[key] = c.Stmt
			}
		}
		for day, claims := range pi.DayInfo {
			for _, c := range claims {
				key := InfoKey{Round: day, RoleTag: c.RoleTag}
				if _, dup := rec.DayInfo[key]; dup {
					return nil, apperr.Newf(apperr.CodeValidation,
						"player %q has duplicate day-%d info for role %q", pi.Name, day, c.RoleTag)
				}
				rec.DayInfo[key] = c.Stmt
			}
		}
		for _, ext := range pi.ExternalNightInfo {
			key := ExternalInfoKey{RoleTag: ext.RoleTag, Night: ext.Night}
			rec.ExternalNightInfo[key] = append(rec.ExternalNightInfo[key], ext.Stmt)
		}
		for day, evs := range pi.DayEvents {
			p.DayEvents[day] = append(p.DayEvents[day], evs...)
		}
	}

	p.MaxDay = 0
	for day := range p.DayEvents {
		if day > p.MaxDay {
			p.MaxDay = day
		}
	}
	for _, rec := range p.Players {
		for k := range rec.DayInfo {
			if k.Round > p.MaxDay {
				p.MaxDay = k.Round
			}
		}
	}
	p.MaxNight = p.MaxDay
	for night := range p.NightDeaths {
		if night > p.MaxNight {
			p.MaxNight = night
		}
	}
	for _, rec := range p.Players {
		for k := range rec.NightInfo {
			if k.Round > p.MaxNight {
				p.MaxNight = k.Round
			}
		}
		for k := range rec.ExternalNightInfo {
			if k.Night > p.MaxNight {
				p.MaxNight = k.Night
			}
		}
	}
	if p.MaxDay < p.MaxNight-1 {
		p.MaxDay = p.MaxNight - 1
	}
	if p.MaxDay < p.MaxNight {
		p.FinishFinalDay = true
	}

	for day := range p.DayEvents {
		p.EventCounts[day] = len(p.DayEvents[day])
	}

	for pid, rec := range p.Players {
		for key, stmts := range rec.ExternalNightInfo {
			for _, s := range stmts {
				p.ExternalInfoRegistry[key] = append(p.ExternalInfoRegistry[key], ExternalInfoEntry{
					Info: s, Player: PlayerID(pid),
				})
			}
		}
	}

	if _, ok := p.NightDeaths[1]; ok {
		return nil, apperr.New(apperr.CodeValidation, "cannot have a death on night 1")
	}

	scriptSet := map[string]Role{}
	for _, rec := range p.Players {
		scriptSet[rec.Claim.Name()] = rec.Claim
	}
	for _, c := range in.HiddenCharacters {
		scriptSet[c.Name()] = c
	}
	for _, c := range in.HiddenSelf {
		scriptSet[c.Name()] = c
	}
	for _, c := range in.AlsoOnScript {
		scriptSet[c.Name()] = c
	}
	for _, c := range scriptSet {
		p.Script = append(p.Script, c)
	}
	sort.Slice(p.Script, func(i, j int) bool { return p.Script[i].Name() < p.Script[j].Name() })

	inScript := func(tag string) bool {
		for _, c := range p.Script {
			if c.Name() == tag {
				return true
			}
		}
		return false
	}
	for _, tag := range in.GlobalSetupOrder {
		if inScript(tag) {
			p.SetupOrder = append(p.SetupOrder, tag)
		}
	}
	for _, tag := range in.GlobalNightOrder {
		if inScript(tag) {
			p.NightOrder = append(p.NightOrder, tag)
		}
	}
	for _, tag := range in.GlobalDayOrder {
		if inScript(tag) {
			p.DayOrder = append(p.DayOrder, tag)
		}
	}

	if err := p.validate(in); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Puzzle) validate(in PuzzleInput) error {
	registered := map[string]bool{}
	for _, tag := range in.GlobalNightOrder {
		registered[tag] = true
	}
	for _, tag := range in.GlobalDayOrder {
		registered[tag] = true
	}
	for _, tag := range in.InactiveRoleTags {
		registered[tag] = true
	}
	for _, c := range p.Script {
		if !registered[c.Name()] {
			return apperr.Newf(apperr.CodeValidation,
				"role %q is not registered in any turn order; did you forget to add it to the catalog's order lists?", c.Name())
		}
	}
	for _, c := range p.HiddenGood {
		if !c.MayLie() {
			return apperr.Newf(apperr.CodeValidation,
				"role %q is in the hidden-good pool but cannot lie about its character", c.Name())
		}
	}
	for _, c := range p.HiddenSelf {
		if !c.MayLie() {
			return apperr.Newf(apperr.CodeValidation,
				"role %q is in the hidden-self pool but cannot lie about its character", c.Name())
		}
	}
	if p.PlayerZeroIsYou && len(p.Players) > 0 && p.Players[0].Name != "You" {
		return apperr.New(apperr.CodeValidation, `player 0 must be named "You" when PlayerZeroIsYou is set`)
	}
	return nil
}
