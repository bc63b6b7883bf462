// Package night resolves hidden role actions: inspections, medium readings,
// protection and the wolves' attack, reconciled into one NightActionResult.
package night

import (
	"context"

	"github.com/ppiankov/nightfall/internal/designation"
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// MayorChooser asks the human for a night target among legal candidates.
// It must return a member of legal; the engine degrades to a random pick
// on timeout.
type MayorChooser func(ctx context.Context, role model.Role, legal []int) int

// Decision records why an actor picked its target
type Decision struct {
	Step     string
	ActorID  int
	TargetID int
	Rule     string
}

// Resolver runs the night steps against the game state
type Resolver struct {
	state        *game.State
	designations *designation.Service
	bus          *event.Bus
	mayor        MayorChooser

	guards    []int
	attack    int
	decisions []Decision
}

// NewResolver creates a night resolver
func NewResolver(state *game.State, designations *designation.Service, bus *event.Bus) *Resolver {
	return &Resolver{
		state:        state,
		designations: designations,
		bus:          bus,
		attack:       model.NoTarget,
	}
}

// SetMayorChooser installs the hook used when the mayor holds a night role
func (r *Resolver) SetMayorChooser(fn MayorChooser) {
	r.mayor = fn
}

// Begin clears per-night scratch state
func (r *Resolver) Begin() {
	r.guards = nil
	r.attack = model.NoTarget
	r.decisions = nil
}

// Decisions returns tonight's decisions in order
func (r *Resolver) Decisions() []Decision {
	return r.decisions
}

// Resolve runs every step in order: inspect, medium, guard, attack, record
func (r *Resolver) Resolve(ctx context.Context) model.NightActionResult {
	r.Begin()
	r.Inspect(ctx)
	r.Medium()
	r.Guard(ctx)
	r.Attack(ctx)
	return r.Record()
}

// Record reconciles guard and attack and stores the outcome for dawn.
// When any knight guarded the attack target the result carries that target
// as GuardTargetID so the negation is visible in the record.
func (r *Resolver) Record() model.NightActionResult {
	res := model.NightActionResult{
		Day:            r.state.Day,
		AttackTargetID: r.attack,
		GuardTargetID:  model.NoTarget,
	}
	if len(r.guards) > 0 {
		res.GuardTargetID = r.guards[0]
	}
	if r.attack != model.NoTarget && game.Contains(r.guards, r.attack) {
		res.GuardTargetID = r.attack
	}
	r.state.SetPendingNight(res)
	return res
}

// Dawn applies the pending night outcome: the attack target dies unless
// guarded. It reports false when there was nothing to apply.
func (r *Resolver) Dawn() (model.NightActionResult, bool) {
	res, ok := r.state.TakePendingNight()
	if !ok || res.AttackTargetID == model.NoTarget {
		return res, ok
	}
	if res.Saved() {
		r.state.RecordAttack(res.Day, model.NoTarget)
	} else {
		r.state.Kill(res.AttackTargetID)
		r.state.RecordAttack(res.Day, res.AttackTargetID)
	}
	r.bus.Publish(event.NewAttackResolved(res.Day, res.AttackTargetID, res.Saved()))
	return res, true
}

func (r *Resolver) decide(step string, actor, target int, rule string) {
	r.decisions = append(r.decisions, Decision{Step: step, ActorID: actor, TargetID: target, Rule: rule})
}

// mayorActs reports whether the living mayor holds role and a chooser is set
func (r *Resolver) mayorActs(id int, role model.Role) bool {
	p, ok := r.state.Player(id)
	return ok && r.mayor != nil && p.Mayor && p.Alive() && p.Role == role
}

func without(ids []int, drop map[int]bool) []int {
	return game.Filter(ids, func(id int) bool { return !drop[id] })
}

func setOf(ids []int) map[int]bool {
	m := make(map[int]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
