package engine

import (
	"context"

	"github.com/ppiankov/nightfall/internal/claim"
	"github.com/ppiankov/nightfall/internal/designation"
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

// Commands are safe to call from any goroutine. Rule violations are not
// errors: they come back as designation.Rejected and are published as
// DesignationRejected.

const (
	actionVote        = "vote"
	actionNightAction = "night_action"
	actionClaim       = "claim"
	actionSay         = "say"
)

// CastVote keeps the mayor's ballot for today. NoTarget abstains.
func (e *Engine) CastVote(voter, target int) designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mayorCan(voter, actionVote, target) {
		return designation.Rejected
	}
	if target != model.NoTarget && (target == voter || !e.state.IsAlive(target)) {
		return e.reject(actionVote, target, event.ReasonInvalidTarget)
	}
	e.mayorBallot = target
	return designation.Accepted
}

// SubmitNightAction answers a pending night-action request. An illegal
// target still ends the wait, and the engine picks at random.
func (e *Engine) SubmitNightAction(actor, target int) designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if actor != e.state.MayorID || e.nightDone == nil {
		return e.reject(actionNightAction, target, event.ReasonNotPermitted)
	}

	e.nightPick = target
	close(e.nightDone)
	e.nightDone = nil
	if !game.Contains(e.nightLegal, target) {
		return e.reject(actionNightAction, target, event.ReasonInvalidTarget)
	}
	return designation.Accepted
}

// ForceClaim makes the mayor publicly claim role. During the day the claim
// is spoken at once; otherwise it waits for the next claims step.
func (e *Engine) ForceClaim(role model.Role) designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mayorCan(e.state.MayorID, actionClaim, model.NoTarget) {
		return designation.Rejected
	}
	if !role.Valid() {
		return e.reject(actionClaim, model.NoTarget, event.ReasonNotPermitted)
	}

	if e.state.Phase == model.PhaseDay {
		e.emit(context.Background(), e.state.MayorID, claim.TemplateKey(role), nil)
		return designation.Accepted
	}
	e.pendingClaims = append(e.pendingClaims, role)
	return designation.Accepted
}

// SetDesignation stores a mayor override for today. inspector names the
// seer for inspect designations and is ignored otherwise. Only a living
// mayor may designate.
func (e *Engine) SetDesignation(kind model.DesignationType, target, inspector int) designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mayorCan(e.state.MayorID, string(kind), target) {
		return designation.Rejected
	}
	return e.designations.Set(kind, target, inspector)
}

// AskIndividualQuestion spends one question quota; the target answers with
// the question.<key> line.
func (e *Engine) AskIndividualQuestion(target int, key string) designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mayorCan(e.state.MayorID, string(game.QuotaQuestion), target) {
		return designation.Rejected
	}
	if e.state.Phase != model.PhaseDay {
		return e.reject(string(game.QuotaQuestion), target, event.ReasonNotPermitted)
	}
	if !e.designations.TryQuestion(target) {
		return designation.Rejected
	}

	ctx := context.Background()
	vars := e.target(e.state.MayorID)
	if key == "suspect" {
		vars = e.target(e.tally.Preference(target))
	}
	e.emit(ctx, target, "question."+key, vars)
	return designation.Accepted
}

// AskEveryoneSuspicious has every living agent name its current suspect
func (e *Engine) AskEveryoneSuspicious() designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mayorCan(e.state.MayorID, string(game.QuotaAskEveryone), model.NoTarget) {
		return designation.Rejected
	}
	if e.state.Phase != model.PhaseDay {
		return e.reject(string(game.QuotaAskEveryone), model.NoTarget, event.ReasonNotPermitted)
	}
	if !e.designations.TryAskEveryone() {
		return designation.Rejected
	}

	ctx := context.Background()
	e.emit(ctx, e.state.MayorID, "mayor.ask", nil)
	for _, id := range e.state.LivingIDs(func(p *model.Player) bool { return !p.Mayor }) {
		e.emit(ctx, id, "suspect", e.target(e.tally.Preference(id)))
	}
	return designation.Accepted
}

// Say records the mayor's free text. It is classified like any statement,
// so it can realize a claim.
func (e *Engine) Say(text string) designation.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.mayorCan(e.state.MayorID, actionSay, model.NoTarget) {
		return designation.Rejected
	}
	e.emitText(e.state.MayorID, text)
	return designation.Accepted
}

// ProceedToVote opens today's vote gate
func (e *Engine) ProceedToVote() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.proceeded {
		return
	}
	e.proceeded = true
	close(e.proceed)
}

// Stop freezes pacing and halts the running sequence at its next checkpoint
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	e.pacer.Pause()
}

// Resume continues a stopped game from its last checkpoint
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = false
	e.pacer.Resume()
}

// Stopped reports whether Stop is in effect
func (e *Engine) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// Skip resolves every pending wait: pacing, the vote gate and night actions
func (e *Engine) Skip() {
	e.pacer.Skip()
}

// Reset discards the current game and deals a fresh one
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancel != nil {
		e.stopped = false
		e.cancel(ErrReset)
		e.pacer.Resume()
		return nil
	}
	return e.newGame()
}

// mayorCan checks that actor is the living mayor during a live game
func (e *Engine) mayorCan(actor int, action string, target int) bool {
	mayor := e.state.Mayor()
	if actor != mayor.ID || !mayor.Alive() || e.state.Phase == model.PhaseEnded {
		e.reject(action, target, event.ReasonNotPermitted)
		return false
	}
	return true
}

func (e *Engine) reject(action string, target int, reason string) designation.Outcome {
	e.gameLog.Debug("command rejected", "action", action, "target", target, "reason", reason)
	e.bus.Publish(event.NewDesignationRejected(action, target, reason))
	return designation.Rejected
}
