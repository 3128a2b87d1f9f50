package roles

import "github.com/qingchang/clocktower-solver/internal/worldstate"

// Drunk is a hidden outsider: it believes and claims to be whatever
// Townsfolk it was told it is, but its ability never actually functions,
// so any information it claims need not hold.
type Drunk struct{ BaseRole }

func (r *Drunk) Name() string                 { return "Drunk" }
func (r *Drunk) Category() worldstate.Category { return worldstate.Outsider }
func (r *Drunk) MayLie() bool                  { return true }
func (r *Drunk) WakePattern() worldstate.WakePattern {
	return worldstate.WakeNever
}
func (r *Drunk) Clone() worldstate.Role { cp := *r; return &cp }
