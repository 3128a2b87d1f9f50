package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/predicates"
	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// FortuneTeller is placed during setup with a hidden "red herring" seat:
// a good player who will register as the demon to its own ability for
// the rest of the game. Each night it chooses two players and learns
// whether either registers as a demon.
type FortuneTeller struct {
	BaseRole
	HasRedHerring bool
	RedHerring    worldstate.PlayerID
}

func (r *FortuneTeller) Name() string                       { return "Fortune Teller" }
func (r *FortuneTeller) Category() worldstate.Category       { return worldstate.Townsfolk }
func (r *FortuneTeller) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNight }
func (r *FortuneTeller) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *FortuneTeller) RunSetup(w *worldstate.World, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		for _, candidate := range w.Players {
			if candidate.Role.Category().IsEvilCategory() {
				continue
			}
			next := w.Fork(int(candidate.Seat))
			ft := next.Players[me].Role.(*FortuneTeller)
			ft.HasRedHerring = true
			ft.RedHerring = candidate.Seat
			if !yield(next) {
				return
			}
		}
	}
}

func (r *FortuneTeller) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return DefaultInfoCheck(w, me, worldstate.InfoKey{Round: night, RoleTag: "Fortune Teller"})
}

// FortuneTellerPing is the claimed-statement shape for a ping against two
// seats, honouring whichever player holds the Fortune Teller's red
// herring.
type FortuneTellerPing struct {
	Seer worldstate.PlayerID
	A, B worldstate.PlayerID
}

func (p FortuneTellerPing) Eval(w *worldstate.World, src worldstate.PlayerID) worldstate.STBool {
	ft, _ := w.Players[p.Seer].Role.(*FortuneTeller)
	registers := func(seat worldstate.PlayerID) worldstate.STBool {
		isDemon := (predicates.IsCategory{Target: seat, Cat: worldstate.Demon}).Eval(w, src)
		if ft != nil && ft.HasRedHerring && seat == ft.RedHerring {
			return worldstate.True
		}
		return isDemon
	}
	return registers(p.A).Or(registers(p.B))
}
