// Package engine is the phase controller: it owns the game state, drives
// the Day and Night sequences, and accepts the mayor's commands.
//
// One goroutine runs the game (Run) and holds the engine lock while it
// mutates state. The lock is released only at suspension points (pacing
// sleeps, the vote gate, the mayor's night-action wait), which is where
// commands from other goroutines get in.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/nightfall/internal/claim"
	"github.com/ppiankov/nightfall/internal/designation"
	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/flavor"
	"github.com/ppiankov/nightfall/internal/game"
	"github.com/ppiankov/nightfall/internal/logging"
	"github.com/ppiankov/nightfall/internal/model"
	"github.com/ppiankov/nightfall/internal/night"
	"github.com/ppiankov/nightfall/internal/vote"
)

// Voice supplies display lines for template keys
type Voice interface {
	Line(ctx context.Context, speaker *model.Player, key string, vars flavor.Vars) string
}

// Engine runs one table. Reset replaces the game in place.
type Engine struct {
	cfg   *model.Config
	bus   *event.Bus
	voice Voice
	log   *logging.Logger
	pacer *Pacer

	mu      sync.Mutex
	seed    int64
	games   int
	running bool

	state        *game.State
	claims       *claim.Tracker
	designations *designation.Service
	night        *night.Resolver
	tally        *vote.Tally
	gameLog      *logging.Logger
	seq          *Sequence
	summary      *model.Summary
	announced    bool // GameStarted published for this game

	cancel  context.CancelCauseFunc
	stopped bool

	// Per-day scratch, cleared by the reset-day step
	proceed       chan struct{}
	proceeded     bool
	mayorBallot   int
	script        []line
	scriptPos     int
	contradiction int

	pendingClaims []model.Role

	nightDone  chan struct{}
	nightLegal []int
	nightPick  int
}

// New creates an engine and deals the first game
func New(cfg *model.Config, bus *event.Bus, voice Voice, log *logging.Logger) (*Engine, error) {
	if log == nil {
		log = logging.NopLogger()
	}
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		cfg:   cfg,
		bus:   bus,
		voice: voice,
		log:   log,
		pacer: NewPacer(cfg.Pacing, seed),
		seed:  seed,
	}
	if err := e.newGame(); err != nil {
		return nil, err
	}
	return e, nil
}

// newGame deals roles, draws a formation and wires fresh components
func (e *Engine) newGame() error {
	rng := rand.New(rand.NewSource(e.seed + int64(e.games)))
	e.games++

	roles, err := game.DealRoles(e.cfg.Game.Players, e.cfg.Game.Composition, rng)
	if err != nil {
		return fmt.Errorf("deal roles: %w", err)
	}
	players := game.Seat(roles)

	s := game.New(uuid.NewString(), players, 0, rng)
	s.Plan(game.DrawFormation(players, s.MayorID, rng))

	e.state = s
	e.claims = claim.NewTracker(s, e.bus)
	e.designations = designation.NewService(s, e.bus, e.cfg.Quotas)
	e.night = night.NewResolver(s, e.designations, e.bus)
	e.night.SetMayorChooser(e.chooseNight)
	e.tally = vote.NewTally(s, e.designations, e.bus)
	e.gameLog = e.log.WithGame(s.ID)
	e.seq = nil
	e.summary = nil
	e.announced = false
	e.stopped = false
	e.pendingClaims = nil
	e.nightDone = nil
	e.clearDay()
	e.pacer.Resume()
	return nil
}

func (e *Engine) clearDay() {
	e.proceed = make(chan struct{})
	e.proceeded = false
	e.mayorBallot = model.NoTarget
	e.script = nil
	e.scriptPos = 0
	e.contradiction = model.NoTarget
}

// Run plays until a game ends or ctx is cancelled. A reset restarts the
// loop with a fresh game; only the final game's summary is returned. Run on
// a finished game returns its summary without replaying it.
func (e *Engine) Run(ctx context.Context) (*model.Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil, errors.New("engine already running")
	}
	if e.state.Phase == model.PhaseEnded {
		return e.summary, nil
	}
	e.running = true
	defer func() { e.running = false }()

	for {
		gctx, cancel := context.WithCancelCause(ctx)
		e.cancel = cancel

		e.start()
		err := e.loop(gctx)
		cancel(nil)
		e.cancel = nil

		if errors.Is(context.Cause(gctx), ErrReset) && ctx.Err() == nil {
			e.gameLog.Info("game reset")
			if err := e.newGame(); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		return e.summary, nil
	}
}

func (e *Engine) start() {
	if e.announced {
		return
	}
	e.announced = true
	names := make([]string, 0, len(e.state.Players()))
	for _, p := range e.state.Players() {
		names = append(names, p.Name)
	}
	mayor := e.state.Mayor()
	e.gameLog.Info("game started", "formation", e.state.Formation.Name, "players", len(names), "mayor_role", mayor.Role)
	e.bus.Publish(event.NewGameStarted(e.state.ID, e.state.Formation.Name, names, mayor.Role))
}

func (e *Engine) loop(ctx context.Context) error {
	for e.state.Phase != model.PhaseEnded {
		if e.seq == nil || e.seq.Done() {
			e.seq = e.nextSequence()
		}

		err := e.seq.Run(ctx, e.gate)
		switch {
		case err == nil:
		case errors.Is(err, errEnded):
			return nil
		case errors.Is(err, ErrHalted):
			e.gameLog.Info("halted", "sequence", e.seq.Name(), "checkpoint", e.seq.Checkpoint())
			if err := e.waitResume(ctx); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

func (e *Engine) nextSequence() *Sequence {
	if e.seq != nil && e.seq.Name() == "day" {
		return e.nightSequence()
	}
	return e.daySequence()
}

func (e *Engine) gate() error {
	if e.state.Phase == model.PhaseEnded {
		return errEnded
	}
	if e.stopped {
		return ErrHalted
	}
	return nil
}

func (e *Engine) waitResume(ctx context.Context) error {
	for e.stopped {
		var err error
		e.suspend(func() { err = e.pacer.WaitResume(ctx) })
		if err != nil {
			return err
		}
	}
	return nil
}

// suspend releases the engine lock around fn
func (e *Engine) suspend(fn func()) {
	e.mu.Unlock()
	defer e.mu.Lock()
	fn()
}

func (e *Engine) checkWin() error {
	winner, reason := game.Evaluate(e.state.Players())
	if winner == model.WinnerNone {
		return nil
	}
	e.end(winner, reason)
	return errEnded
}

func (e *Engine) end(winner model.Winner, reason string) {
	e.state.Phase = model.PhaseEnded
	sum := e.state.Summary(winner, reason)
	e.summary = &sum
	e.gameLog.Info("game ended", "winner", winner, "reason", reason, "days", sum.Days)
	e.bus.Publish(event.NewGameEnded(sum))
}

// View is a read-only snapshot for front ends
type View struct {
	GameID    string
	Day       int
	Phase     model.Phase
	Formation string
	Mayor     model.PlayerFinal
	Players   []model.PlayerFinal // Roles hidden except the mayor's
	Pending   string              // Next checkpoint of the running sequence
}

// View returns the current table as the mayor sees it
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		GameID:    e.state.ID,
		Day:       e.state.Day,
		Phase:     e.state.Phase,
		Formation: e.state.Formation.Name,
	}
	if e.seq != nil {
		v.Pending = e.seq.Pending()
	}
	for _, p := range e.state.Players() {
		pf := model.PlayerFinal{ID: p.ID, Name: p.Name, Status: p.Status, Mayor: p.Mayor}
		if p.Mayor {
			pf.Role, pf.Team = p.Role, p.Team
			v.Mayor = pf
		}
		v.Players = append(v.Players, pf)
	}
	return v
}
