package night

import (
	"context"

	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// fakeBlackOdds is the 1-in-N chance a decoy announces a wolf
const fakeBlackOdds = 3

// Inspectors returns living true seers and living public seer claimants
func (r *Resolver) Inspectors() []int {
	return r.investigators(model.RoleSeer)
}

func (r *Resolver) investigators(role model.Role) []int {
	claimed := setOf(r.state.Claimants(role))
	return r.state.LivingIDs(func(p *model.Player) bool {
		return p.Role == role || claimed[p.ID]
	})
}

// Inspect writes one memo per inspector for tonight. Genuine seers read the
// target's true alignment; decoy claimants fabricate a plausible verdict in
// the same record shape. Inspectors that already hold a memo for tonight
// are skipped, so the step can be re-entered.
func (r *Resolver) Inspect(ctx context.Context) {
	day := r.state.Day
	for _, id := range r.Inspectors() {
		if hasDay(r.state.Memos(id), day) {
			continue
		}
		target, rule, ok := r.inspectTarget(ctx, id)
		if !ok {
			continue
		}
		p, _ := r.state.Player(id)
		t, _ := r.state.Player(target)

		rec := model.InspectionRecord{Day: day, TargetID: target}
		if p.Role == model.RoleSeer {
			rec.IsWolf = t.IsWolf()
		} else {
			rec.IsWolf = r.fakeVerdict(p, t, r.state.Memos(id))
		}
		r.state.AddMemo(id, rec)
		r.decide("inspect", id, target, rule)
	}
}

func (r *Resolver) inspectTarget(ctx context.Context, id int) (int, string, bool) {
	base := r.state.LivingIDs(func(p *model.Player) bool { return p.ID != id })
	if len(base) == 0 {
		return model.NoTarget, "", false
	}

	if r.mayorActs(id, model.RoleSeer) {
		return r.mayor(ctx, model.RoleSeer, base), "mayor", true
	}
	if d, ok := r.designations.ConsumeInspect(id); ok && d.TargetID != id && r.state.IsAlive(d.TargetID) {
		return d.TargetID, "designation", true
	}

	inspected := r.state.InspectedBy(id)
	announced := r.state.AnnouncedByOthers(id)
	claimed := setOf(r.state.Claimants(model.RoleSeer, model.RoleMedium, model.RoleKnight))

	// Exclusions are lifted one at a time until a candidate remains
	target, rule, ok := game.Select(r.state.Rand(),
		game.Pool{Rule: "fresh", Candidates: func() []int { return without(without(without(base, inspected), announced), claimed) }},
		game.Pool{Rule: "fresh-incl-claimants", Candidates: func() []int { return without(without(base, inspected), announced) }},
		game.Pool{Rule: "uninspected", Candidates: func() []int { return without(base, inspected) }},
		game.Pool{Rule: "any", Candidates: func() []int { return base }},
	)
	return target, rule, ok
}

// fakeVerdict produces a decoy's announced result. Wolves cover their own;
// at most one fake black is announced per decoy, never on the first memo.
func (r *Resolver) fakeVerdict(decoy, target *model.Player, history []model.InspectionRecord) bool {
	if decoy.IsWolf() && target.IsWolf() {
		return false
	}
	if len(history) == 0 {
		return false
	}
	for _, m := range history {
		if m.IsWolf {
			return false
		}
	}
	return r.state.Rand().Intn(fakeBlackOdds) == 0
}

// Medium records, for each living medium and medium claimant, whether the
// player executed today was a wolf. Nothing happens on days without an execution.
func (r *Resolver) Medium() {
	day := r.state.Day
	executed, ok := r.state.ExecutionOn(day)
	if !ok {
		return
	}
	t, _ := r.state.Player(executed)

	for _, id := range r.investigators(model.RoleMedium) {
		if hasDay(r.state.MediumMemos(id), day) {
			continue
		}
		p, _ := r.state.Player(id)
		rec := model.InspectionRecord{Day: day, TargetID: executed}
		if p.Role == model.RoleMedium {
			rec.IsWolf = t.IsWolf()
		} else {
			rec.IsWolf = r.fakeVerdict(p, t, r.state.MediumMemos(id))
		}
		r.state.AddMediumMemo(id, rec)
		r.decide("medium", id, executed, "execution")
	}
}

func hasDay(recs []model.InspectionRecord, day int) bool {
	for _, m := range recs {
		if m.Day == day {
			return true
		}
	}
	return false
}
