package roles

import "github.com/qingchang/clocktower-solver/internal/worldstate"

// Puppeteer is a travelling minion that can turn one good player evil
// speculatively each game. It implements worldstate.SpeculativeEvilSource
// so the placement enumerator can bound how many extra "might secretly be
// evil" seats to consider without hardcoding its name.
type Puppeteer struct{ BaseRole }

func (r *Puppeteer) Name() string                       { return "Puppeteer" }
func (r *Puppeteer) Category() worldstate.Category       { return worldstate.Traveller }
func (r *Puppeteer) WakePattern() worldstate.WakePattern { return worldstate.WakeEachNight }
func (r *Puppeteer) Clone() worldstate.Role              { cp := *r; return &cp }

func (r *Puppeteer) MaxSpeculativeEvilFromScript(script []worldstate.Role) int {
	for _, c := range script {
		if c.Name() == "Puppeteer" {
			return 1
		}
	}
	return 0
}

func (r *Puppeteer) CanTargetAsSpeculativeEvil(candidate worldstate.Role, inPlay []worldstate.Role) bool {
	return candidate.Category() == worldstate.Townsfolk || candidate.Category() == worldstate.Outsider
}
