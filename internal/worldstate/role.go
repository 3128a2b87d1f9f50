package worldstate

import "iter"

// Role is the contract every catalog entry (package roles) implements.
// Static metadata methods must be pure and depend only on the role's
// identity, never on a particular Player or World. Hook methods advance a
// World and fork lazily via iter.Seq — the Go analogue of a generator —
// so that non-deterministic storyteller choices are expressed as
// successor worlds yielded in a fixed, deterministic order.
type Role interface {
	Name() string
	Category() Category
	MayLie() bool
	MisregisterCategories() []Category
	WakePattern() WakePattern

	// Clone returns a fresh, independent instance carrying the same
	// mutable role_state (red herring seat, poison target history, spent
	// flags, ...). Every player holds their own Role instance — roles are
	// never shared between players or between a world and its forks.
	Clone() Role

	// ModifyCategoryBounds is pure, applied once per in-play instance
	// during bag validation.
	ModifyCategoryBounds(bounds CategoryBounds) CategoryBounds

	// RunSetup may fork for non-deterministic setup choices, or yield
	// nothing to prune. Also invoked when a role is installed mid-game by
	// a role-change, so implementations must condition behaviour on the
	// World's current phase.
	RunSetup(w *World, me PlayerID) iter.Seq[*World]
	// RunNight performs the night ability. roles.BaseRole's default is a
	// no-op; info roles override it with a call to roles.DefaultInfoCheck.
	RunNight(w *World, night int, me PlayerID) iter.Seq[*World]
	RunDay(w *World, day int, me PlayerID) iter.Seq[*World]
	// EndNight performs dusk bookkeeping specific to the role (e.g. a
	// poisoner's effect lapsing). May fork or prune.
	EndNight(w *World, night int, me PlayerID) iter.Seq[*World]
	// EndDay performs dusk bookkeeping; returning false prunes the world.
	EndDay(w *World, day int, me PlayerID) bool

	// AttackedAtNight decides whether a night attack kills "me".
	AttackedAtNight(w *World, me, src PlayerID) iter.Seq[*World]
	// Executed applies execution semantics, reconciling with the claimed
	// died flag.
	Executed(w *World, me PlayerID, died bool) iter.Seq[*World]

	// ActivateEffects/DeactivateEffects implement the role's ongoing
	// passive effect. Called directly by the pipeline's setup step (for
	// every undroisoned player), by Player.Droison/Undroison on the
	// droison-count transitions, and by Player.RoleChange. There is no
	// gating wrapper: calls are not filtered on death, and a death does
	// not deactivate a role's effects.
	ActivateEffects(w *World, me PlayerID)
	DeactivateEffects(w *World, me PlayerID)

	// RunNightExternal verifies an attestation caused by this role's
	// action but reported by a different player.
	RunNightExternal(w *World, ext ExternalInfo, me PlayerID) bool
}

// AlwaysBehavesEvil is implemented by roles whose wearer behaves evilly
// (may lie freely, counts toward evil-info checks) despite a nominally
// good alignment — e.g. a role that genuinely believes it is evil.
type AlwaysBehavesEvil interface {
	AlwaysBehavesEvil() bool
}

// NeverBehavesEvil is implemented by roles that are exempted from the
// evil-alignment "behaves evil" default even when actually evil — e.g. a
// role puppeted entirely by another player's choices.
type NeverBehavesEvil interface {
	NeverBehavesEvil() bool
}

// SpeculativeEvilSource is implemented by roles whose presence on the
// script can cause an initially-good player to become evil mid-game
// (jump/charm style abilities). The placement enumerator (C4) consults
// this to bound how many "speculative evil" seats it must consider,
// without needing to name individual roles.
type SpeculativeEvilSource interface {
	// MaxSpeculativeEvilFromScript reports how many extra speculative
	// evil seats this role's mere presence on the script can introduce.
	MaxSpeculativeEvilFromScript(script []Role) int
	// CanTargetAsSpeculativeEvil reports whether the given candidate
	// player (already assigned `candidate`'s starting role) is a
	// plausible target of this role's jump/charm effect.
	CanTargetAsSpeculativeEvil(candidate Role, inPlay []Role) bool
}

// SpentTracker is implemented by roles with a WakeEachNightUntilSpent wake
// pattern, so DispatchNight can tell whether the ability has already been
// used up and shouldn't be recorded as waking again.
type SpentTracker interface {
	HasSpent() bool
}

// AtheistLike is implemented by roles whose presence makes the
// storyteller's every public claim true by fiat (no contradiction is
// possible while they hold a seat). The solver driver uses it as a last
// resort: if every ordinary starting configuration is rejected, any claim
// implementing this marker seeds one further candidate world assuming
// every player's claim was taken at face value.
type AtheistLike interface {
	AtheistLike() bool
}
