package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// VillageDemon is a plain roaming demon: each night except the first, it
// chooses a living player (not itself) to attack.
type VillageDemon struct{ BaseRole }

func (r *VillageDemon) Name() string                       { return "Village Demon" }
func (r *VillageDemon) Category() worldstate.Category       { return worldstate.Demon }
func (r *VillageDemon) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNightExceptFirst }
func (r *VillageDemon) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *VillageDemon) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		self := w.Players[me]
		if night == 1 || self.IsDead || self.DroisonCount > 0 {
			yield(w)
			return
		}
		for _, candidate := range w.Players {
			if candidate.IsDead || candidate.Seat == me {
				continue
			}
			next := w.Fork(int(candidate.Seat))
			target := next.Players[candidate.Seat]
			for after := range target.Role.AttackedAtNight(next, target.Seat, me) {
				if !yield(after) {
					return
				}
			}
		}
	}
}

// VortoxDemon is a roaming demon whose mere presence in play guarantees
// every townsfolk ability gives false information while its effects are
// active. Only DeactivateEffects (droisoning or a role change) clears
// World.VortoxMode; the Vortox's death does not.
type VortoxDemon struct{ BaseRole }

func (r *VortoxDemon) Name() string                       { return "Vortox Demon" }
func (r *VortoxDemon) Category() worldstate.Category       { return worldstate.Demon }
func (r *VortoxDemon) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNightExceptFirst }
func (r *VortoxDemon) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *VortoxDemon) ActivateEffects(w *worldstate.World, me worldstate.PlayerID) {
	r.BaseRole.ActivateEffects(w, me)
	w.VortoxMode = true
}

func (r *VortoxDemon) DeactivateEffects(w *worldstate.World, me worldstate.PlayerID) {
	r.BaseRole.DeactivateEffects(w, me)
	w.VortoxMode = false
}

func (r *VortoxDemon) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		self := w.Players[me]
		if night == 1 || self.IsDead || self.DroisonCount > 0 {
			yield(w)
			return
		}
		for _, candidate := range w.Players {
			if candidate.IsDead || candidate.Seat == me {
				continue
			}
			next := w.Fork(int(candidate.Seat))
			target := next.Players[candidate.Seat]
			for after := range target.Role.AttackedAtNight(next, target.Seat, me) {
				if !yield(after) {
					return
				}
			}
		}
	}
}
