package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// Slayer has a single-use day ability: publicly name a player. If that
// player is the demon (and not otherwise protected), they die; if not,
// nothing happens. Modelled entirely as a SlayerShot worldstate.Event
// whose Apply marks the shooter spent and carries the actual resolution,
// since the shot is a public day event the puzzle record attaches at a
// specific day rather than an ability the role resolves by itself.
type Slayer struct {
	BaseRole
	Spent bool
}

func (r *Slayer) Name() string                       { return "Slayer" }
func (r *Slayer) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *Slayer) WakePattern() worldstate.WakePattern { return worldstate.WakeNever }
func (r *Slayer) Clone() worldstate.Role              { cp := *r; return &cp }

// SlayerShot is the public event "shooter names target on this day".
type SlayerShot struct {
	Shooter worldstate.PlayerID
	Target  worldstate.PlayerID
	// Died is the claimed public outcome: the shot killed its target.
	Died bool
}

func (e SlayerShot) Apply(w *worldstate.World) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		shooter, ok := w.Players[e.Shooter].Role.(*Slayer)
		if !ok || shooter.Spent {
			return
		}
		shooter.Spent = true
		target := w.Players[e.Target]
		killed := target.Role.Category() == worldstate.Demon && target.DroisonCount == 0 && !target.ProtectedTonight
		if killed != e.Died {
			return
		}
		if killed {
			target.IsDead = true
		}
		yield(w)
	}
}
