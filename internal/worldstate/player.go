package worldstate

// Player is one seat's mutable record for the lifetime of a single world.
// Role and its role_state are reassigned wholesale on role-change, but the
// Player value itself (name, seat, history) persists — "characters can
// change, but players are forever".
type Player struct {
	Name        string
	Seat        PlayerID
	Claim       Role
	Role        Role
	IsEvil      bool
	IsDead      bool
	DroisonCount int
	WokeTonight bool

	RoleHistory     []string
	EverBehavedEvil bool

	// SpeculativeEvil is set by the placement enumerator (see C4).
	// SpeculativeGood is not set anywhere in the current pipeline; it
	// stays false.
	SpeculativeEvil bool
	SpeculativeGood bool

	// ProtectedTonight is a one-night shield raised by protective
	// abilities (e.g. Monk), consulted by AttackedAtNight and cleared by
	// the pipeline at the end of each night.
	ProtectedTonight bool

	ClaimedNightInfo   map[InfoKey]Info
	ClaimedDayInfo     map[InfoKey]Info
	ExternalNightInfo  map[ExternalInfoKey][]ExternalInfo
}

// NewPlayer builds a Player whose starting Role matches its Claim — the
// common case before the placement enumerator overwrites hidden seats.
func NewPlayer(name string, seat PlayerID, claim Role) *Player {
	return &Player{
		Name:              name,
		Seat:              seat,
		Claim:             claim,
		Role:              claim.Clone(),
		ClaimedNightInfo:  map[InfoKey]Info{},
		ClaimedDayInfo:    map[InfoKey]Info{},
		ExternalNightInfo: map[ExternalInfoKey][]ExternalInfo{},
	}
}

// Clone deep-copies the player, including an independent Role instance,
// for use by World.Fork.
func (p *Player) Clone() *Player {
	cp := *p
	cp.Role = p.Role.Clone()
	cp.RoleHistory = append([]string(nil), p.RoleHistory...)
	// Claimed info and external info are read-only after Puzzle
	// construction; share them by reference like the Puzzle itself.
	return &cp
}

// Droison increments droison_count; on the 0->1 transition the player's
// passive effects are torn down.
func (p *Player) Droison(w *World) {
	p.DroisonCount++
	if p.DroisonCount == 1 {
		p.Role.DeactivateEffects(w, p.Seat)
	}
}

// Undroison decrements droison_count; on the 1->0 transition the
// player's passive effects are reinstated.
func (p *Player) Undroison(w *World) {
	p.DroisonCount--
	if p.DroisonCount == 0 {
		p.Role.ActivateEffects(w, p.Seat)
	}
}

func (p *Player) Woke() { p.WokeTonight = true }

// GetMisregisterCategories returns the categories this player's role may
// falsely register as, suppressed entirely while droisoned.
func (p *Player) GetMisregisterCategories() []Category {
	if p.DroisonCount > 0 {
		return nil
	}
	return p.Role.MisregisterCategories()
}

// LiesAboutCharacter reports whether this player's claimed character can
// differ from their actual role without pruning the world.
func (p *Player) LiesAboutCharacter(w *World) bool {
	return w.BehavesEvil(p.Seat) || p.Role.MayLie()
}

// LiesAboutInfo reports whether this player's claimed info about their
// own ability can be false without pruning the world.
func (p *Player) LiesAboutInfo(w *World) bool {
	return w.BehavesEvil(p.Seat) || p.Role.MayLie()
}

// ActsLike reports whether the player currently wields an ability that
// behaves as roleTag for the purposes of night/day order dispatch.
func (p *Player) ActsLike(roleTag string) bool {
	return p.Role.Name() == roleTag
}

// RoleChange snapshots history, tears down the outgoing role's effects,
// and installs newRole. The caller is responsible for re-running the new
// role's RunSetup and pruning the world if that setup rejects (C3 §4.3).
func (p *Player) RoleChange(w *World, newRole Role) {
	p.RoleHistory = append(p.RoleHistory, p.Role.Name())
	p.Role.DeactivateEffects(w, p.Seat)
	p.Role = newRole
}
