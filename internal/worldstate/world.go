package worldstate

import (
	"fmt"
	"iter"
	"strings"
)

type Phase int

const (
	PhaseSetup Phase = iota
	PhaseNight
	PhaseDay
)

// World is one candidate game state: a full seating of players plus a
// cursor into whichever phase/turn order is currently running. Worlds are
// created once per starting configuration and fork (deep copy) at every
// storyteller choice point; the Puzzle they reference is shared and never
// mutated after construction.
type World struct {
	Puzzle *Puzzle
	Players []*Player

	Phase           Phase
	Night           int // current or most recent night; 0 before night 1
	Day             int // current or most recent day; 0 before day 1
	PhaseOrderIndex int

	PlayersStillToAct []PlayerID
	ActingRoleTag     string

	PrevAlive []bool
	VortoxMode bool

	InitialRoles []string

	// LineageKey records the sequence of fork choices leading to this
	// world, kept for determinism/debugging (§4.5 "lineage key").
	LineageKey []int

	mathBounds        [2]int
	mathMisregisterers map[PlayerID]bool
}

// NewWorld seeds a fresh World from a Puzzle, one Player per puzzle
// player, each starting with Role == Claim (before the placement
// enumerator overwrites hidden seats).
func NewWorld(puzzle *Puzzle) *World {
	players := make([]*Player, len(puzzle.Players))
	for i, pp := range puzzle.Players {
		players[i] = NewPlayer(pp.Name, PlayerID(i), pp.Claim)
		players[i].ClaimedNightInfo = pp.NightInfo
		players[i].ClaimedDayInfo = pp.DayInfo
		players[i].ExternalNightInfo = pp.ExternalNightInfo
	}
	return &World{
		Puzzle:  puzzle,
		Players: players,
	}
}

// Fork deep-copies the player arena but shares the Puzzle by reference —
// "deep copy of player and state, shared Puzzle" (§4.5).
func (w *World) Fork(forkID int) *World {
	cp := &World{
		Puzzle:            w.Puzzle,
		Players:           make([]*Player, len(w.Players)),
		Phase:             w.Phase,
		Night:             w.Night,
		Day:               w.Day,
		PhaseOrderIndex:   w.PhaseOrderIndex,
		PlayersStillToAct: append([]PlayerID(nil), w.PlayersStillToAct...),
		ActingRoleTag:     w.ActingRoleTag,
		PrevAlive:         append([]bool(nil), w.PrevAlive...),
		VortoxMode:        w.VortoxMode,
		InitialRoles:      w.InitialRoles,
		LineageKey:        append(append([]int(nil), w.LineageKey...), forkID),
		mathBounds:        w.mathBounds,
	}
	if w.mathMisregisterers != nil {
		cp.mathMisregisterers = make(map[PlayerID]bool, len(w.mathMisregisterers))
		for k, v := range w.mathMisregisterers {
			cp.mathMisregisterers[k] = v
		}
	}
	for i, p := range w.Players {
		cp.Players[i] = p.Clone()
	}
	return cp
}

// BehavesEvil reports whether the player is evil, or holds a role that
// behaves evilly despite its nominal alignment (named per-role via the
// AlwaysBehavesEvil/NeverBehavesEvil optional interfaces).
func (w *World) BehavesEvil(p PlayerID) bool {
	player := w.Players[p]
	if always, ok := player.Role.(AlwaysBehavesEvil); ok && always.AlwaysBehavesEvil() {
		return true
	}
	if never, ok := player.Role.(NeverBehavesEvil); ok && never.NeverBehavesEvil() {
		return false
	}
	return player.IsEvil
}

// CheckGameOver reports whether the puzzle's implicit "the game never
// actually ends" assumption has been violated: all demons dead (modulo
// any role that keeps the game alive while present, e.g. an Evil Twin
// analogue, queried via the KeepsGameAlive optional interface).
func (w *World) CheckGameOver() bool {
	allDemonsDead := true
	for _, p := range w.Players {
		if p.Role.Category() == Demon && !p.IsDead {
			allDemonsDead = false
			break
		}
	}
	keepsAlive := false
	for _, p := range w.Players {
		if k, ok := p.Role.(KeepsGameAlive); ok && k.KeepsGameAlive(w, p.Seat) {
			keepsAlive = true
			break
		}
	}
	return allDemonsDead && !keepsAlive
}

// KeepsGameAlive is implemented by roles whose mere (undead, undroisoned)
// presence prevents the game from being considered over even once all
// demons are dead (the distilled spec's Evil Twin-style exception).
type KeepsGameAlive interface {
	KeepsGameAlive(w *World, me PlayerID) bool
}

// MathMisregistration tracks bounds on a counting-style ability (the
// distilled spec's named Mathematician open question, §9): if
// misregistration is certain, result is nil; if it depends on an STBool
// being FALSE, pass it so the bound only widens when the result isn't
// already known-true (a MAYBE result widens only the upper bound).
func (w *World) MathMisregistration(player PlayerID, result *STBool) {
	if w.mathMisregisterers == nil {
		w.mathMisregisterers = map[PlayerID]bool{}
	}
	if (result != nil && *result == True) || w.mathMisregisterers[player] {
		return
	}
	w.mathBounds[1]++
	w.mathMisregisterers[player] = true
	if result == nil || !result.IsMaybe() {
		w.mathBounds[0]++
	}
}

func (w *World) MathMisregistrationBounds() (min, max int) {
	return w.mathBounds[0], w.mathBounds[1]
}

func (w *World) ResetMathMisregistration() {
	w.mathBounds = [2]int{}
	w.mathMisregisterers = nil
}

// PlayersActingLike returns, in seat order, every player whose current
// role acts like roleTag.
func (w *World) PlayersActingLike(roleTag string) []PlayerID {
	var ids []PlayerID
	for _, p := range w.Players {
		if p.ActsLike(roleTag) {
			ids = append(ids, p.Seat)
		}
	}
	return ids
}

// dispatch recursively runs fn for each player in ids against w, fanning
// out through every world each step yields — the Go analogue of the
// original's recursive tail-called generator stack, so that a player
// changing role mid-turn naturally changes who acts next.
func dispatch(w *World, ids []PlayerID, fn func(w *World, id PlayerID) iter.Seq[*World]) iter.Seq[*World] {
	return func(yield func(*World) bool) {
		if len(ids) == 0 {
			yield(w)
			return
		}
		id, rest := ids[0], ids[1:]
		for next := range fn(w, id) {
			cont := true
			for out := range dispatch(next, rest, fn) {
				if !yield(out) {
					cont = false
					break
				}
			}
			if !cont {
				return
			}
		}
	}
}

// DispatchNight runs every player acting like roleTag through RunNight,
// in seat order, recording who woke tonight per the role's wake pattern.
func (w *World) DispatchNight(roleTag string, night int) iter.Seq[*World] {
	ids := w.PlayersActingLike(roleTag)
	return dispatch(w, ids, func(world *World, id PlayerID) iter.Seq[*World] {
		player := world.Players[id]
		if wakesOnNight(player.Role, night) {
			player.Woke()
		}
		return player.Role.RunNight(world, night, id)
	})
}

// wakesOnNight reports whether role's wake pattern has it waking on the
// given night, independent of whether RunNight is actually dispatched.
func wakesOnNight(role Role, night int) bool {
	switch role.WakePattern() {
	case WakeFirstNight:
		return night == 1
	case WakeEachNight:
		return true
	case WakeEachNightExceptFirst:
		return night != 1
	case WakeEachNightUntilSpent:
		if st, ok := role.(SpentTracker); ok {
			return !st.HasSpent()
		}
		return true
	case WakeNever, WakeManual:
		return false
	default:
		return false
	}
}

func (w *World) DispatchDay(roleTag string, day int) iter.Seq[*World] {
	ids := w.PlayersActingLike(roleTag)
	return dispatch(w, ids, func(world *World, id PlayerID) iter.Seq[*World] {
		return world.Players[id].Role.RunDay(world, day, id)
	})
}

func (w *World) DispatchSetup(roleTag string) iter.Seq[*World] {
	ids := w.PlayersActingLike(roleTag)
	return dispatch(w, ids, func(world *World, id PlayerID) iter.Seq[*World] {
		return world.Players[id].Role.RunSetup(world, id)
	})
}

// CurrentlyAlive reports the live/dead vector for §4.5's dawn
// reconciliation check.
func (w *World) CurrentlyAlive() []bool {
	alive := make([]bool, len(w.Players))
	for i, p := range w.Players {
		alive[i] = !p.IsDead
	}
	return alive
}

// Render is a one-line seat-by-seat summary of a final world, suitable
// for the HTTP API and CLI output: "0:Alice=Fortune Teller(alive) 1:Bob=Poisoner(dead) ...".
func (w *World) Render() string {
	parts := make([]string, len(w.Players))
	for i, p := range w.Players {
		status := "alive"
		if p.IsDead {
			status = "dead"
		}
		parts[i] = fmt.Sprintf("%d:%s=%s(%s)", p.Seat, p.Name, p.Role.Name(), status)
	}
	return strings.Join(parts, " ")
}
