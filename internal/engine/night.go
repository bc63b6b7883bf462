package engine

import (
	"context"

	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/model"
)

func (e *Engine) nightSequence() *Sequence {
	return NewSequence("night", e.gameLog.WithPhase(e.state.Day, string(model.PhaseNight)),
		Step{Name: "begin", Run: func(ctx context.Context) error {
			e.night.Begin()
			return nil
		}},
		Step{Name: "inspect", Run: func(ctx context.Context) error {
			e.night.Inspect(ctx)
			return nil
		}},
		Step{Name: "medium", Run: func(ctx context.Context) error {
			e.night.Medium()
			return nil
		}},
		Step{Name: "guard", Run: func(ctx context.Context) error {
			e.night.Guard(ctx)
			return nil
		}},
		Step{Name: "attack", Run: func(ctx context.Context) error {
			e.night.Attack(ctx)
			return nil
		}},
		Step{Name: "record", Run: func(ctx context.Context) error {
			res := e.night.Record()
			for _, d := range e.night.Decisions() {
				e.gameLog.Debug("night decision", "day", e.state.Day, "step", d.Step, "actor", d.ActorID, "target", d.TargetID, "rule", d.Rule)
			}
			e.gameLog.Info("night recorded", "day", res.Day, "attack", res.AttackTargetID, "guard", res.GuardTargetID)
			return nil
		}},
		Step{Name: "win-check", Run: func(ctx context.Context) error {
			return e.checkWin()
		}},
	)
}

// chooseNight waits for the mayor's night action. It runs on the control
// goroutine with the lock held and releases it while waiting. No answer,
// a skip or an illegal target degrades to a uniformly random legal choice.
func (e *Engine) chooseNight(ctx context.Context, role model.Role, legal []int) int {
	pick := model.NoTarget
	if timeout := e.cfg.Pacing.NightActionTimeout; timeout > 0 {
		done := make(chan struct{})
		e.nightDone, e.nightLegal, e.nightPick = done, legal, model.NoTarget
		e.bus.Publish(event.NewNightActionRequested(e.state.Day, role, legal))

		e.suspend(func() { _, _ = e.pacer.Await(ctx, done, timeout) })

		pick = e.nightPick
		e.nightDone, e.nightLegal = nil, nil
	}

	if !game.Contains(legal, pick) {
		pick = game.Pick(e.state.Rand(), legal)
		e.gameLog.Info("mayor night action defaulted", "role", role, "target", pick)
	}
	return pick
}
