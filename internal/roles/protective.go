package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// Monk wakes each night except the first, choosing a living player other
// than itself to shield from a demon attack until dawn.
type Monk struct{ BaseRole }

func (r *Monk) Name() string                       { return "Monk" }
func (r *Monk) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Monk) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNightExceptFirst }
func (r *Monk) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Monk) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		if night == 1 {
			yield(w)
			return
		}
		for _, candidate := range w.Players {
			if candidate.IsDead || candidate.Seat == me {
				continue
			}
			next := w.Fork(int(candidate.Seat))
			next.Players[candidate.Seat].ProtectedTonight = true
			if !yield(next) {
				return
			}
		}
	}
}
