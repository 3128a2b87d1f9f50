// Package roles is the concrete role catalog (the "script"): a base
// embeddable type implementing the common default info-check algorithm
// and sensible no-op hooks, plus a representative cross-section of
// townsfolk, outsider, minion, demon and traveller mechanisms.
//
// GlobalSetupOrder, GlobalNightOrder and GlobalDayOrder are the catalog's
// canonical turn orders; worldstate.NewPuzzle filters them down to
// whatever is actually on script. Keeping these lists here rather
// than in package worldstate avoids worldstate depending on any specific
// catalog.
package roles

import (
	"iter"

	"github.com/qingchang/clocktower-solver/internal/worldstate"
)

// BaseRole gives every concrete role sensible no-op defaults so a role
// definition only needs to override what it actually does. Embed it by
// value so Clone's shallow copy is correct unless a role overrides Clone
// itself.
type BaseRole struct {
	EffectsActive bool
	FirstNight    int
}

func (BaseRole) MisregisterCategories() []worldstate.Category { return nil }
func (BaseRole) MayLie() bool                                 { return false }

func (BaseRole) ModifyCategoryBounds(b worldstate.CategoryBounds) worldstate.CategoryBounds {
	return b
}

func (BaseRole) RunSetup(w *worldstate.World, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return single(w)
}

func (BaseRole) RunDay(w *worldstate.World, day int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return single(w)
}

// RunNight's default is a no-op: a role with no night ability (Drunk,
// Atheist, Baron, Trickster, ...) simply leaves the world unchanged.
// Info roles override this with a call to DefaultInfoCheck instead.
func (BaseRole) RunNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return single(w)
}

func (BaseRole) EndNight(w *worldstate.World, night int, me worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return single(w)
}

func (BaseRole) EndDay(w *worldstate.World, day int, me worldstate.PlayerID) bool { return true }

func (BaseRole) AttackedAtNight(w *worldstate.World, me, src worldstate.PlayerID) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		player := w.Players[me]
		if player.DroisonCount == 0 && !player.ProtectedTonight {
			player.IsDead = true
		}
		yield(w)
	}
}

func (BaseRole) Executed(w *worldstate.World, me worldstate.PlayerID, died bool) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		w.Players[me].IsDead = died
		yield(w)
	}
}

func (b *BaseRole) ActivateEffects(w *worldstate.World, me worldstate.PlayerID)   { b.EffectsActive = true }
func (b *BaseRole) DeactivateEffects(w *worldstate.World, me worldstate.PlayerID) { b.EffectsActive = false }

func (BaseRole) RunNightExternal(w *worldstate.World, ext worldstate.ExternalInfo, me worldstate.PlayerID) bool {
	return ext.Verify(w, me)
}

// BaseRole's RunNight above is only a no-op: the six-step default
// info-check algorithm lives in DefaultInfoCheck below, and each info
// role overrides RunNight to call it explicitly with its own
// claimed-statement lookup, since Go has no way to default an interface
// method from an embedded struct while still letting the embedder read
// its own fields.

// DefaultInfoCheck implements the standard "does the claimed result for
// this round hold" algorithm shared by every passive/active info role:
//  1. Find the player's claimed statement for this round and role tag; if
//     none was claimed, nothing to check (no info was given to verify).
//  2. A player who behaves evil or whose role may lie about its info is
//     never contradicted: yield the world unchanged.
//  3. A dead player's claim is rejected (the world is pruned), unless
//     evenIfDead is set (e.g. a Ravenkeeper-style ability whose trigger
//     is the player's own death).
//  4. A droisoned role learns nothing and cannot be contradicted, except
//     under a Vortox, which guarantees false information to Townsfolk
//     regardless of droison state.
//  5. Evaluate the claimed statement against the world. TRUE or MAYBE is
//     consistent (under a Vortox, for a Townsfolk: FALSE or MAYBE), and
//     the world is yielded unchanged.
//  6. Otherwise the claim is contradicted and the world is pruned.
func DefaultInfoCheck(w *worldstate.World, me worldstate.PlayerID, key worldstate.InfoKey, evenIfDead ...bool) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) {
		player := w.Players[me]
		claimed, ok := player.ClaimedNightInfo[key]
		if !ok {
			claimed, ok = player.ClaimedDayInfo[key]
		}
		if !ok {
			yield(w)
			return
		}
		if player.LiesAboutInfo(w) {
			yield(w)
			return
		}
		if player.IsDead && !(len(evenIfDead) > 0 && evenIfDead[0]) {
			return
		}

		// Under a Vortox, every townsfolk ability is guaranteed to give
		// false information, so a claimed TRUE is what gets contradicted
		// rather than a claimed FALSE.
		invert := w.VortoxMode && player.Role.Category() == worldstate.Townsfolk
		if player.DroisonCount > 0 && !invert {
			yield(w)
			return
		}

		result := claimed.Eval(w, me)
		consistent := result.IsMaybe() || (result.IsTrue() != invert)
		if consistent {
			yield(w)
			return
		}
		// contradicted and not permitted to lie: prune by yielding nothing
	}
}

func single(w *worldstate.World) iter.Seq[*worldstate.World] {
	return func(yield func(*worldstate.World) bool) { yield(w) }
}

// GlobalSetupOrder, GlobalNightOrder and GlobalDayOrder list every
// catalog role tag in canonical dispatch order. A worldstate.Puzzle keeps
// only the entries whose role is actually on its script.
var (
	GlobalSetupOrder = []string{
		"Fortune Teller",
		"Trickster",
		"Drunk",
		"Baron",
	}
	GlobalNightOrder = []string{
		"Poisoner",
		"Monk",
		"Fortune Teller",
		"Empath",
		"Investigator",
		"Knight",
		"Steward",
		"Savant",
		"Seamstress",
		"Noble",
		"Puppeteer",
		"Vortox Demon",
		"Village Demon",
	}
	GlobalDayOrder = []string{
		"Slayer",
	}
	// InactiveRoleTags lists roles registered in the catalog that never
	// wake or act on a night/day turn order (setup-only or purely passive
	// roles), so Puzzle validation doesn't reject them as unregistered.
	// Atheist has no ability at all; Drunk, Baron and Trickster only ever
	// act during RunSetup, which Puzzle validation doesn't index by tag.
	InactiveRoleTags = []string{
		"Atheist",
		"Drunk",
		"Baron",
		"Trickster",
	}
)
