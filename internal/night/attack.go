package night

import (
	"context"

	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// Attack picks the wolves' target among living non-wolves. Rules, first
// non-empty pool wins:
//
//  1. A public protector claimant, preferring the likely-target hint.
//  2. On the first attack, anyone but investigative claimants (unless the
//     formation lifts this). On later attacks, the most talkative player
//     today, else a confirmed-white player.
//  3. Anyone.
//
// A living wolf mayor chooses instead.
func (r *Resolver) Attack(ctx context.Context) int {
	if r.attack != model.NoTarget {
		return r.attack
	}
	day := r.state.Day
	wolves := r.state.LivingIDs(func(p *model.Player) bool { return p.IsWolf() })
	legal := r.state.LivingIDs(func(p *model.Player) bool { return !p.IsWolf() })
	if len(wolves) == 0 || len(legal) == 0 {
		return model.NoTarget
	}

	mayor := r.state.Mayor()
	if mayor != nil && r.mayorActs(mayor.ID, model.RoleWolf) {
		r.attack = r.mayor(ctx, model.RoleWolf, legal)
		r.decide("attack", mayor.ID, r.attack, "mayor")
		return r.attack
	}

	protectors := func() []int {
		claimed := setOf(r.state.Claimants(model.RoleKnight))
		return game.Filter(legal, func(c int) bool { return claimed[c] })
	}
	hint := r.state.LikelyAttackTarget()

	pools := []game.Pool{
		{Rule: "protector-hint", Candidates: func() []int {
			if game.Contains(protectors(), hint) {
				return []int{hint}
			}
			return nil
		}},
		{Rule: "protector-claim", Candidates: protectors},
	}

	if r.state.AttackCount() == 0 {
		pools = append(pools, game.Pool{Rule: "first-avoid-investigators", Candidates: func() []int {
			if r.state.Formation.AllowInvestigatorAttack {
				return legal
			}
			investigators := setOf(r.state.Claimants(model.RoleSeer, model.RoleMedium))
			return game.Filter(legal, func(c int) bool { return !investigators[c] })
		}})
	} else {
		pools = append(pools,
			game.Pool{Rule: "most-spoken", Candidates: func() []int {
				return game.MaxBy(legal, func(c int) int { return r.state.SpeechCount(day, c) }, 0)
			}},
			game.Pool{Rule: "white", Candidates: func() []int {
				return game.Filter(legal, func(c int) bool {
					p, _ := r.state.Player(c)
					return p.ConfirmedWhite()
				})
			}},
		)
	}
	pools = append(pools, game.Pool{Rule: "any", Candidates: func() []int { return legal }})

	target, rule, _ := game.Select(r.state.Rand(), pools...)
	r.attack = target
	r.decide("attack", wolves[0], target, rule)
	return target
}
