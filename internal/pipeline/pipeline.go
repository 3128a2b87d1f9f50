// Package pipeline drives one already-seeded World through setup, every
// night/day round the puzzle records, and a final consistency check,
// yielding every surviving branch lazily.
package pipeline

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// RunPuzzle runs w from setup through its final recorded day, yielding
// every World consistent with every claimed statement and recorded death
// along the way.
func RunPuzzle(w *worldstate.World) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		for afterSetup := range runSetup(w) {
			for final := range runRounds(afterSetup) {
				if final.Puzzle.FinishFinalDay && !final.CheckGameOver() {
					continue
				}
				if !yield(final) {
					return
				}
			}
		}
	}
}

// chain composes a sequence of World->iter.Seq[World] steps, running each
// in turn against every branch the previous step yielded.
func chain(w *worldstate.World, steps []func(*worldstate.World) iter.Seq[*worldstate.World]) iter.Seq[*worldstate.World] {
	if len(steps) == 0 {
		return func(yield func(*worldstate.World) bool) { yield(w) }
	}
	return func(yield func(*worldstate.World) bool) {
		for next := range steps[0](w) {
			for out := range chain(next, steps[1:]) {
				if !yield(out) {
					return
				}
			}
		}
	}
}

func runSetup(w *worldstate.World) iter.Seq[*worldstate.World] {
	w.Phase = worldstate.PhaseSetup
	var steps []func(*worldstate.World) iter.Seq[*worldstate.World]
	for _, tag := range w.Puzzle.SetupOrder {
		tag := tag
		steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
			return world.DispatchSetup(tag)
		})
	}
	steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
		return func(yield func(*worldstate.World) bool) {
			for _, p := range world.Players {
				if p.DroisonCount == 0 {
					p.Role.ActivateEffects(world, p.Seat)
				}
			}
			yield(world)
		}
	})
	return chain(w, steps)
}

func runRounds(w *worldstate.World) iter.Seq[*worldstate.World] {
	maxRound := w.Puzzle.MaxNight
	if w.Puzzle.MaxDay > maxRound {
		maxRound = w.Puzzle.MaxDay
	}
	var steps []func(*worldstate.World) iter.Seq[*worldstate.World]
	for round := 1; round <= maxRound; round++ {
		round := round
		if round <= w.Puzzle.MaxNight {
			steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
				return runNight(world, round)
			})
		}
		if round <= w.Puzzle.MaxDay {
			steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
				return runDay(world, round)
			})
		}
	}
	return chain(w, steps)
}

func runNight(w *worldstate.World, night int) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		w.Phase = worldstate.PhaseNight
		w.Night = night
		prevAlive := w.CurrentlyAlive()
		for _, p := range w.Players {
			p.ProtectedTonight = false
		}

		var steps []func(*worldstate.World) iter.Seq[*worldstate.World]
		for _, tag := range w.Puzzle.NightOrder {
			tag := tag
			steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
				return world.DispatchNight(tag, night)
			})
			steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
				return verifyExternalInfo(world, tag, night)
			})
		}

		for after := range chain(w, steps) {
			for afterEnd := range endNightHooks(after, night) {
				if reconcileNightDeaths(afterEnd, night, prevAlive) {
					// Night protection lasts only until dawn.
					for _, p := range afterEnd.Players {
						p.ProtectedTonight = false
					}
					if !yield(afterEnd) {
						return
					}
				}
			}
		}
	}
}

// verifyExternalInfo checks every attestation reported by another player
// about roleTag's action tonight (e.g. "I was chosen by the Nightwatchman"),
// pruning the branch entirely if any attested claim turns out false.
func verifyExternalInfo(w *worldstate.World, roleTag string, night int) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		key := worldstate.ExternalInfoKey{RoleTag: roleTag, Night: night}
		for _, entry := range w.Puzzle.ExternalInfoRegistry[key] {
			reporter := w.Players[entry.Player]
			if !reporter.Role.RunNightExternal(w, entry.Info, entry.Player) {
				return
			}
		}
		yield(w)
	}
}

func endNightHooks(w *worldstate.World, night int) iter.Seq[*worldstate.World] {
	var steps []func(*worldstate.World) iter.Seq[*worldstate.World]
	for i := range w.Players {
		id := worldstate.PlayerID(i)
		steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
			return world.Players[id].Role.EndNight(world, night, id)
		})
	}
	return chain(w, steps)
}

// reconcileNightDeaths prunes any branch whose actual night deaths and
// resurrections don't match exactly what the puzzle records for this
// night.
func reconcileNightDeaths(w *worldstate.World, night int, prevAlive []bool) bool {
	claims := map[worldstate.PlayerID]worldstate.NightEventKind{}
	for _, rec := range w.Puzzle.NightDeaths[night] {
		claims[rec.Player] = rec.Kind
	}
	for i, p := range w.Players {
		seat := worldstate.PlayerID(i)
		was, now := prevAlive[i], !p.IsDead
		switch {
		case was && !now:
			if kind, ok := claims[seat]; !ok || kind != worldstate.NightDeath {
				return false
			}
		case !was && now:
			if kind, ok := claims[seat]; !ok || kind != worldstate.NightResurrection {
				return false
			}
		default:
			if kind, ok := claims[seat]; ok {
				// A death/resurrection was claimed but didn't happen.
				_ = kind
				return false
			}
		}
	}
	return true
}

func runDay(w *worldstate.World, day int) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		w.Phase = worldstate.PhaseDay
		w.Day = day

		var steps []func(*worldstate.World) iter.Seq[*worldstate.World]
		for _, tag := range w.Puzzle.DayOrder {
			tag := tag
			steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
				return world.DispatchDay(tag, day)
			})
		}
		for _, ev := range w.Puzzle.DayEvents[day] {
			ev := ev
			steps = append(steps, func(world *worldstate.World) iter.Seq[*worldstate.World] {
				return ev.Apply(world)
			})
		}

		for after := range chain(w, steps) {
			if endDayHooksOK(after, day) {
				if !yield(after) {
					return
				}
			}
		}
	}
}

func endDayHooksOK(w *worldstate.World, day int) bool {
	for i, p := range w.Players {
		if !p.Role.EndDay(w, day, worldstate.PlayerID(i)) {
			return false
		}
	}
	return true
}
