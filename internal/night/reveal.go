package night

import (
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// Announcement is a memo a claimant reads out in the morning
type Announcement struct {
	ClaimantID int
	Role       model.Role
	Record     model.InspectionRecord
}

// Reveal has every living seer and medium claimant announce last night's memo
// (or the one before, if last night produced none), then converges trust flags.
// The living mayor is never made to announce.
func (r *Resolver) Reveal() []Announcement {
	day := r.state.Day
	var out []Announcement

	announce := func(role model.Role, kind game.RevealKind, latest func(int, int) (model.InspectionRecord, bool)) {
		for _, id := range r.state.Claimants(role) {
			if !r.state.IsAlive(id) || id == r.state.MayorID {
				continue
			}
			rec, ok := latest(id, day-1)
			if !ok {
				continue
			}
			r.state.AddReveal(game.Reveal{Day: day, ClaimantID: id, Kind: kind, Record: rec})
			r.bus.Publish(event.NewResultRevealed(day, id, role, rec))
			out = append(out, Announcement{ClaimantID: id, Role: role, Record: rec})
		}
	}
	announce(model.RoleSeer, game.RevealInspection, r.state.LatestMemo)
	announce(model.RoleMedium, game.RevealMedium, r.state.LatestMediumMemo)

	r.state.UpdateTrust()
	return out
}
