// Package predicates implements the concrete information statements a
// player's claimed ability results evaluate against: "is seat 3 evil",
// "exactly one of these two seats is the Trickster", and so on. Each type
// satisfies worldstate.Info by evaluating against a World from a given
// observer's perspective.
package predicates

import (
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// T is a convenience alias so fixture code reads "predicates.T" rather
// than the fully qualified tri-valued type.
type T = worldstate.STBool

// IsEvil reports whether the target seat is evil, honouring the
// Recluse-style "registers evil" and Spy-style "registers good"
// exceptions via the target's misregister categories.
type IsEvil struct {
	Target worldstate.PlayerID
}

func (p IsEvil) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	target := w.Players[p.Target]
	cats := target.GetMisregisterCategories()
	evilCat, goodCat := false, false
	for _, c := range cats {
		if c.IsEvilCategory() {
			evilCat = true
		} else {
			goodCat = true
		}
	}
	actual := worldstate.FromBool(target.IsEvil)
	if evilCat && !target.IsEvil {
		return worldstate.Maybe
	}
	if goodCat && target.IsEvil {
		return worldstate.Maybe
	}
	return actual
}

// IsAlive reports whether the target seat is alive, with the
// Zombuul-style "registers dead while actually alive" exception folded
// into the target role's AttackedAtNight/Executed bookkeeping rather than
// here; droison state is not consulted since death is never droisoned
// away.
type IsAlive struct {
	Target worldstate.PlayerID
}

func (p IsAlive) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return worldstate.FromBool(!w.Players[p.Target].IsDead)
}

// IsDroisoned reports whether the target seat currently has any active
// droison source.
type IsDroisoned struct {
	Target worldstate.PlayerID
}

func (p IsDroisoned) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return worldstate.FromBool(w.Players[p.Target].DroisonCount > 0)
}

// IsRole reports whether the target seat's current role is exactly
// roleTag (TRUE), honouring misregistration: a role that may misregister
// into the category of the script's roleTag role registers as roleTag
// MAYBE even when it isn't.
type IsRole struct {
	Target  worldstate.PlayerID
	RoleTag string
}

func (p IsRole) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	target := w.Players[p.Target]
	if target.Role.Name() == p.RoleTag {
		return worldstate.True
	}
	for _, r := range w.Puzzle.Script {
		if r.Name() != p.RoleTag {
			continue
		}
		for _, c := range target.GetMisregisterCategories() {
			if c == r.Category() {
				return worldstate.Maybe
			}
		}
	}
	return worldstate.False
}

// IsCategory reports whether the target seat currently belongs to cat,
// honouring misregistration: a misregistering role may register into a
// different category (MAYBE) while droisoned-off misregistration
// suppresses the exception entirely.
type IsCategory struct {
	Target worldstate.PlayerID
	Cat    worldstate.Category
}

func (p IsCategory) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	target := w.Players[p.Target]
	if target.Role.Category() == p.Cat {
		return worldstate.True
	}
	for _, c := range target.GetMisregisterCategories() {
		if c == p.Cat {
			return worldstate.Maybe
		}
	}
	return worldstate.False
}

// ExactlyN counts how many of the given statements evaluate TRUE (with
// MAYBE contributing ambiguity) and compares against n, returning MAYBE
// whenever the TRUE/MAYBE spread straddles n.
type ExactlyN struct {
	N     int
	Stmts []worldstate.Info
}

func (p ExactlyN) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	trueCount, maybeCount := 0, 0
	for _, s := range p.Stmts {
		switch s.Eval(w, src) {
		case worldstate.True:
			trueCount++
		case worldstate.Maybe:
			maybeCount++
		}
	}
	if trueCount == p.N && maybeCount == 0 {
		return worldstate.True
	}
	if trueCount <= p.N && trueCount+maybeCount >= p.N {
		return worldstate.Maybe
	}
	return worldstate.False
}

// IsInPlay reports whether any seated player currently holds roleTag,
// short-circuiting on the first definite TRUE.
type IsInPlay struct {
	RoleTag string
}

func (p IsInPlay) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	result := worldstate.False
	for i := range w.Players {
		v := (IsRole{Target: worldstate.PlayerID(i), RoleTag: p.RoleTag}).Eval(w, src)
		if v == worldstate.True {
			return worldstate.True
		}
		if v == worldstate.Maybe {
			result = worldstate.Maybe
		}
	}
	return result
}

// SameCategory reports whether two seats currently share a category. This
// does not yet account for one side misregistering into the other's
// category; a precise version would OR in each side's misregister
// categories, left as a known gap (see DESIGN.md).
type SameCategory struct {
	A, B worldstate.PlayerID
}

func (p SameCategory) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return worldstate.FromBool(w.Players[p.A].Role.Category() == w.Players[p.B].Role.Category())
}

// CustomInfo wraps an arbitrary evaluation closure, an escape hatch for
// fixtures and roles whose ability doesn't fit one of the named
// predicates above.
type CustomInfo struct {
	Fn func(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool
}

func (p CustomInfo) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return p.Fn(w, src)
}

// Not negates a statement.
type Not struct{ Stmt worldstate.Info }

func (p Not) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return p.Stmt.Eval(w, src).Not()
}

// Or combines two statements with tri-valued OR.
type Or struct{ A, B worldstate.Info }

func (p Or) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return p.A.Eval(w, src).Or(p.B.Eval(w, src))
}

// And combines two statements with tri-valued AND.
type And struct{ A, B worldstate.Info }

func (p And) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return p.A.Eval(w, src).And(p.B.Eval(w, src))
}

// Xor combines two statements with tri-valued XOR.
type Xor struct{ A, B worldstate.Info }

func (p Xor) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return p.A.Eval(w, src).Xor(p.B.Eval(w, src))
}

// Eq combines two statements with tri-valued equality.
type Eq struct{ A, B worldstate.Info }

func (p Eq) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	return p.A.Eval(w, src).Eq(p.B.Eval(w, src))
}
