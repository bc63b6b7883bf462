package engine

import (
	"context"
	"sort"

	"github.com/ppiankov/nightfall/internal/claim"
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/flavor"
	"github.com/ppiankov/nightfall/internal/model"
)

func (e *Engine) daySequence() *Sequence {
	return NewSequence("day", e.gameLog,
		Step{Name: "reset-day", Run: e.resetDay},
		Step{Name: "dawn", Run: e.dawn},
		Step{Name: "reveals", Run: e.reveals},
		Step{Name: "claims", Run: e.claimStep},
		Step{Name: "discussion", Run: e.discussion},
		Step{Name: "await-vote", Run: e.awaitVote},
		Step{Name: "vote", Run: e.voteStep},
		Step{Name: "win-check", Run: e.dayEnd},
	)
}

// resetDay advances the counter on a Night to Day transition and clears
// designations and quotas
func (e *Engine) resetDay(ctx context.Context) error {
	if e.state.Phase == model.PhaseNight {
		e.state.Day++
	}
	if limit := e.cfg.Game.MaxDays; limit > 0 && e.state.Day > limit {
		e.state.Day = limit
		e.end(model.WinnerNone, "day_limit")
		return errEnded
	}

	e.state.Phase = model.PhaseDay
	e.designations.ResetDay()
	e.clearDay()
	e.gameLog.Debug("day begins", "day", e.state.Day)
	e.bus.Publish(event.NewPhaseChanged(e.state.Day, model.PhaseDay))
	return nil
}

// dawn applies last night's outcome, then checks for a winner
func (e *Engine) dawn(ctx context.Context) error {
	if res, ok := e.night.Dawn(); ok {
		e.gameLog.Info("dawn", "day", e.state.Day, "attack", res.AttackTargetID, "saved", res.Saved())
	}
	return e.checkWin()
}

func (e *Engine) reveals(ctx context.Context) error {
	for _, a := range e.night.Reveal() {
		key := "reveal." + string(a.Role) + ".white"
		if a.Record.IsWolf {
			key = "reveal." + string(a.Role) + ".black"
		}
		if err := e.speak(ctx, a.ClaimantID, key, e.target(a.Record.TargetID)); err != nil {
			return err
		}
	}
	return nil
}

// claimStep realizes the formation on Day 1 and serves queued mayor claims
func (e *Engine) claimStep(ctx context.Context) error {
	if e.state.Day == 1 {
		planned := e.state.Formation.Claimants()
		ids := make([]int, 0, len(planned))
		for id := range planned {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			if err := e.speak(ctx, id, claim.TemplateKey(planned[id]), nil); err != nil {
				return err
			}
		}
	}

	pending := e.pendingClaims
	e.pendingClaims = nil
	for _, role := range pending {
		e.emit(ctx, e.state.MayorID, claim.TemplateKey(role), nil)
	}
	return nil
}

// line is one scripted discussion statement
type line struct {
	speaker int
	key     string
}

// discussion runs the day's scripted talk. It records its position, so a
// halt mid-way resumes at the next unspoken line.
func (e *Engine) discussion(ctx context.Context) error {
	if e.script == nil {
		e.script = e.buildScript()
	}
	for e.scriptPos < len(e.script) {
		if e.stopped {
			return ErrHalted
		}
		if err := e.reactions(ctx); err != nil {
			return err
		}

		l := e.script[e.scriptPos]
		e.scriptPos++
		if !e.state.IsAlive(l.speaker) {
			continue
		}

		var vars flavor.Vars
		if l.key == "suspect" {
			vars = e.target(e.tally.Preference(l.speaker))
		}
		if err := e.speak(ctx, l.speaker, l.key, vars); err != nil {
			return err
		}
	}
	return e.reactions(ctx)
}

func (e *Engine) buildScript() []line {
	rng := e.state.Rand()
	agents := e.state.LivingIDs(func(p *model.Player) bool { return !p.Mayor })
	if len(agents) == 0 {
		return []line{}
	}

	script := []line{{speaker: agents[rng.Intn(len(agents))], key: "discussion.opening"}}
	for round := 0; round < e.cfg.Pacing.DiscussionRounds; round++ {
		for _, id := range agents {
			key := "discussion.idle"
			if round > 0 || e.state.Day > 1 || rng.Intn(2) == 0 {
				key = "suspect"
			}
			script = append(script, line{speaker: id, key: key})
		}
	}
	return script
}

// reactions lets pressured players respond to the latest contradiction.
// The flag clears once they speak.
func (e *Engine) reactions(ctx context.Context) error {
	for _, p := range e.state.Living() {
		if !p.ForcedReaction || p.Mayor {
			continue
		}
		p.ForcedReaction = false
		if err := e.speak(ctx, p.ID, "reaction.contradiction", e.target(e.contradiction)); err != nil {
			return err
		}
	}
	return nil
}

// awaitVote is the discussion gate: proceedToVote, skip, or autopilot
func (e *Engine) awaitVote(ctx context.Context) error {
	if e.cfg.Pacing.Autopilot || e.proceeded || !e.state.Mayor().Alive() {
		return nil
	}
	done := e.proceed
	var err error
	e.suspend(func() { _, err = e.pacer.Await(ctx, done, 0) })
	return err
}

func (e *Engine) voteStep(ctx context.Context) error {
	if knight, ok := e.tally.DesignatedKnight(); ok {
		e.emit(ctx, knight, claim.TemplateKey(model.RoleKnight), nil)
	}
	res := e.tally.Run(e.mayorBallot)
	e.gameLog.Info("vote", "day", res.Day, "executed", res.TargetID, "tie_break", res.TieBreak)
	return nil
}

func (e *Engine) dayEnd(ctx context.Context) error {
	if err := e.checkWin(); err != nil {
		return err
	}
	e.state.Phase = model.PhaseNight
	e.bus.Publish(event.NewPhaseChanged(e.state.Day, model.PhaseNight))
	return nil
}
