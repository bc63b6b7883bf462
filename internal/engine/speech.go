package engine

import (
	"context"

	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/flavor"
	"github.com/ppiankov/nightfall/internal/model"
)

// emit voices key for speaker and appends it to the discussion log. The
// claim tracker sees every statement, so realized claims and contradictions
// are recorded here.
func (e *Engine) emit(ctx context.Context, speaker int, key string, vars flavor.Vars) {
	p, ok := e.state.Player(speaker)
	if !ok || !p.Alive() {
		return
	}

	all := flavor.Vars{"speaker": p.Name}
	for k, v := range vars {
		all[k] = v
	}
	text := key
	if e.voice != nil {
		text = e.voice.Line(ctx, p, key, all)
	}
	e.record(p, model.Statement{Day: e.state.Day, SpeakerID: speaker, Content: text, Key: key})
}

// emitText appends free text, used for the mayor's own words
func (e *Engine) emitText(speaker int, text string) {
	p, ok := e.state.Player(speaker)
	if !ok || !p.Alive() {
		return
	}
	e.record(p, model.Statement{Day: e.state.Day, SpeakerID: speaker, Content: text})
}

func (e *Engine) record(p *model.Player, st model.Statement) {
	e.state.AddStatement(st)
	e.bus.Publish(event.NewStatementEmitted(st, p.Name))

	rec, ok := e.claims.Observe(st)
	if ok && rec.Type == model.ClaimContradictory {
		e.contradiction = p.ID
		e.gameLog.Info("contradictory claim", "player", p.ID, "role", rec.ClaimedRole)
	}
}

// speak emits a scripted line and then paces
func (e *Engine) speak(ctx context.Context, speaker int, key string, vars flavor.Vars) error {
	if !e.state.IsAlive(speaker) {
		return nil
	}
	e.emit(ctx, speaker, key, vars)

	var err error
	e.suspend(func() { err = e.pacer.Statement(ctx) })
	return err
}

// target returns template vars naming a player, or nil for NoTarget
func (e *Engine) target(id int) flavor.Vars {
	p, ok := e.state.Player(id)
	if !ok {
		return nil
	}
	return flavor.Vars{"target": p.Name}
}
