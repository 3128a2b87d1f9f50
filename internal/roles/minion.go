package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// Trickster is a hidden minion that can misregister as a Townsfolk to
// every info ability. It has no active ability of its own.
type Trickster struct{ BaseRole }

func (r *Trickster) Name() string                 { return "Trickster" }
func (r *Trickster) Category() worldstate.Category { return worldstate.Minion }
func (r *Trickster) MisregisterCategories() []worldstate.Category {
	return []worldstate.Category{worldstate.Townsfolk}
}
func (r *Trickster) WakePattern() worldstate.WakePattern { return worldstate.WakeNever }
func (r *Trickster) Clone() worldstate.Role              { cp := *r; return &cp }

// Baron is a hidden minion whose presence in play shifts two
// Townsfolk slots to Outsider slots at bag-composition time.
type Baron struct{ BaseRole }

func (r *Baron) Name() string                 { return "Baron" }
func (r *Baron) Category() worldstate.Category { return worldstate.Minion }
func (r *Baron) WakePattern() worldstate.WakePattern { return worldstate.WakeNever }
func (r *Baron) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Baron) ModifyCategoryBounds(b worldstate.CategoryBounds) worldstate.CategoryBounds {
	b[worldstate.Townsfolk].Min -= 2
	b[worldstate.Townsfolk].Max -= 2
	b[worldstate.Outsider].Min += 2
	b[worldstate.Outsider].Max += 2
	return b
}

// Poisoner wakes each night and droisons one living player (other than
// itself) until it chooses a new target the following night.
type Poisoner struct {
	BaseRole
	HasTarget bool
	Target    worldstate.PlayerID
}

func (r *Poisoner) Name() string                       { return "Poisoner" }
func (r *Poisoner) Category() worldstate.Category       { return worldstate.Minion }
func (r *Poisoner) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNight }
func (r *Poisoner) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Poisoner) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		for _, candidate := range w.Players {
			if candidate.IsDead || candidate.Seat == me {
				continue
			}
			next := w.Fork(int(candidate.Seat))
			pr := next.Players[me].Role.(*Poisoner)
			if pr.HasTarget {
				next.Players[pr.Target].Undroison(next)
			}
			pr.HasTarget = true
			pr.Target = candidate.Seat
			next.Players[candidate.Seat].Droison(next)
			if !yield(next) {
				return
			}
		}
	}
}
