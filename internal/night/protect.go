package night

import (
	"context"

	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// Guard picks tonight's protection for every living knight. A knight never
// guards itself or the player it guarded the night before. A guard
// designation applies to all knights when the target is legal for them.
func (r *Resolver) Guard(ctx context.Context) []int {
	if r.guards != nil {
		return r.guards
	}
	day := r.state.Day
	guards := []int{}
	for _, id := range r.state.LivingIDs(func(p *model.Player) bool { return p.Role == model.RoleKnight }) {
		last := r.state.LastGuard(id)
		legal := r.state.LivingIDs(func(p *model.Player) bool { return p.ID != id && p.ID != last })
		if len(legal) == 0 {
			continue
		}

		var target int
		var rule string
		if r.mayorActs(id, model.RoleKnight) {
			target, rule = r.mayor(ctx, model.RoleKnight, legal), "mayor"
		} else if d, ok := r.designations.Guard(); ok && game.Contains(legal, d.TargetID) {
			target, rule = d.TargetID, "designation"
		} else {
			target, rule, _ = game.Select(r.state.Rand(),
				game.Pool{Rule: "active-white", Candidates: func() []int {
					return game.Filter(legal, func(c int) bool {
						p, _ := r.state.Player(c)
						return p.ConfirmedWhite() && r.state.SpeechCount(day, c) > 0
					})
				}},
				game.Pool{Rule: "white", Candidates: func() []int {
					return game.Filter(legal, func(c int) bool {
						p, _ := r.state.Player(c)
						return p.ConfirmedWhite()
					})
				}},
				game.Pool{Rule: "investigator-claimant", Candidates: func() []int {
					claimed := setOf(r.state.Claimants(model.RoleSeer, model.RoleMedium))
					return game.Filter(legal, func(c int) bool { return claimed[c] })
				}},
				game.Pool{Rule: "random", Candidates: func() []int { return legal }},
			)
		}

		r.state.SetLastGuard(id, target)
		guards = append(guards, target)
		r.decide("guard", id, target, rule)
	}
	r.guards = guards
	return guards
}
