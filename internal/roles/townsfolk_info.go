package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/predicates"
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// Empath wakes each night and learns how many of its two living
// neighbours are evil.
type Empath struct {
	BaseRole
	Left, Right worldstate.PlayerID
}

func (r *Empath) Name() string                       { return "Empath" }
func (r *Empath) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Empath) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNight }
func (r *Empath) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Empath) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: night, RoleTag: "Empath"})
}

// EmpathPing is the claimed-statement shape for an Empath's ping:
// "exactly n of my two neighbours are evil".
func EmpathPing(n int, left, right worldstate.PlayerID) worldstate.Info {
	return predicates.ExactlyN{N: n, Stmts: []worldstate.Info{
		predicates.IsEvil{Target: left},
		predicates.IsEvil{Target: right},
	}}
}

// Investigator wakes on the first night only, learning that one of two
// players holds a named minion role.
type Investigator struct{ BaseRole }

func (r *Investigator) Name() string                       { return "Investigator" }
func (r *Investigator) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Investigator) WakePattern() worldstate.WakePattern { return worldstate.WakeFirstNight }
func (r *Investigator) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Investigator) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: night, RoleTag: "Investigator"})
}

// InvestigatorPing is the claimed-statement shape: "exactly one of these
// two seats is roleTag".
func InvestigatorPing(a, b worldstate.PlayerID, roleTag string) worldstate.Info {
	return predicates.ExactlyN{N: 1, Stmts: []worldstate.Info{
		predicates.IsRole{Target: a, RoleTag: roleTag},
		predicates.IsRole{Target: b, RoleTag: roleTag},
	}}
}

// Knight wakes on the first night, learning two players who are not the
// demon.
type Knight struct{ BaseRole }

func (r *Knight) Name() string                       { return "Knight" }
func (r *Knight) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Knight) WakePattern() worldstate.WakePattern { return worldstate.WakeFirstNight }
func (r *Knight) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Knight) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: night, RoleTag: "Knight"})
}

// KnightPing is the claimed-statement shape: neither seat is the named
// demon.
func KnightPing(a, b worldstate.PlayerID, demonTag string) worldstate.Info {
	return predicates.And{
		A: predicates.Not{Stmt: predicates.IsRole{Target: a, RoleTag: demonTag}},
		B: predicates.Not{Stmt: predicates.IsRole{Target: b, RoleTag: demonTag}},
	}
}

// Steward wakes on the first night, learning one living player who is a
// Townsfolk.
type Steward struct{ BaseRole }

func (r *Steward) Name() string                       { return "Steward" }
func (r *Steward) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Steward) WakePattern() worldstate.WakePattern { return worldstate.WakeFirstNight }
func (r *Steward) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Steward) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: night, RoleTag: "Steward"})
}

// StewardPing: the named seat is a Townsfolk.
func StewardPing(seat worldstate.PlayerID) worldstate.Info {
	return predicates.IsCategory{Target: seat, Cat: worldstate.Townsfolk}
}

// Savant acts during the day, once per day, receiving two statements from
// the storyteller of which exactly one is true.
type Savant struct{ BaseRole }

func (r *Savant) Name() string                       { return "Savant" }
func (r *Savant) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Savant) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNight }
func (r *Savant) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Savant) RunDay(w *worldstate.World, day int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: day, RoleTag: "Savant"})
}

// SavantPair is the claimed-statement shape: exactly one of two
// storyteller-supplied statements holds.
func SavantPair(a, b worldstate.Info) worldstate.Info {
	return predicates.ExactlyN{N: 1, Stmts: []worldstate.Info{a, b}}
}

// Seamstress is a once-per-game ability: choose two players and learn
// whether they share an alignment. WakeEachNightUntilSpent models
// "available every night until used".
type Seamstress struct {
	BaseRole
	Spent bool
}

func (r *Seamstress) Name() string                       { return "Seamstress" }
func (r *Seamstress) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Seamstress) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNightUntilSpent }
func (r *Seamstress) Clone() worldstate.Role              { cp := *r; return &cp }
func (r *Seamstress) HasSpent() bool                      { return r.Spent }

func (r *Seamstress) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	if r.Spent {
		return func(yield func(*worldstate.World) bool) { yield(w) }
	}
	return func(yield func(*worldstate.World) bool) {
		key := worldstate.InfoKey{Round: night, RoleTag: "Seamstress"}
		_, used := w.Players[me].ClaimedNightInfo[key]
		for next := range DefaultInfoCheck(w, me, key) {
			if sm, ok := next.Players[me].Role.(*Seamstress); ok && used {
				sm.Spent = true
			}
			if !yield(next) {
				return
			}
		}
	}
}

// SeamstressPing: the two named seats share an alignment.
func SeamstressPing(a, b worldstate.PlayerID) worldstate.Info {
	return predicates.Eq{A: predicates.IsEvil{Target: a}, B: predicates.IsEvil{Target: b}}
}

// Noble wakes on the first night, learning that exactly one of three
// named players is evil.
type Noble struct{ BaseRole }

func (r *Noble) Name() string                       { return "Noble" }
func (r *Noble) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Noble) WakePattern() worldstate.WakePattern { return worldstate.WakeFirstNight }
func (r *Noble) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Noble) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: night, RoleTag: "Noble"})
}

// NoblePing: exactly one of three named seats is evil.
func NoblePing(a, b, c worldstate.PlayerID) worldstate.Info {
	return predicates.ExactlyN{N: 1, Stmts: []worldstate.Info{
		predicates.IsEvil{Target: a},
		predicates.IsEvil{Target: b},
		predicates.IsEvil{Target: c},
	}}
}

// Atheist has no ability. Its sole purpose is to be detected by the
// solver driver's atheist-world fallback: if every other starting
// configuration is rejected, any player who could plausibly hold an
// Atheist-shaped role (one whose presence makes the storyteller's claims
// true by fiat) synthesizes one last candidate world.
type Atheist struct{ BaseRole }

func (r *Atheist) Name() string                       { return "Atheist" }
func (r *Atheist) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Atheist) WakePattern() worldstate.WakePattern { return worldstate.WakeNever }
func (r *Atheist) Clone() worldstate.Role              { cp := *r; return &cp }
func (r *Atheist) AtheistLike() bool                   { return true }
