package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/nightfall/internal/event"
	"github.com/ppiankov/nightfall/internal/logging"
	"github.com/ppiankov/nightfall/internal/model"
)

// Headless plays games with no pacing and no human: every mayor decision
// defaults. It implements worker.GameRunner.
type Headless struct {
	cfg   model.Config
	voice Voice
	log   *logging.Logger
	seed  int64
}

// NewHeadless creates a runner from cfg with pacing disabled. Game i uses
// seed+i, so a batch is reproducible from one seed.
func NewHeadless(cfg *model.Config, voice Voice, log *logging.Logger) *Headless {
	c := *cfg
	c.Pacing = model.PacingConfig{
		DiscussionRounds: cfg.Pacing.DiscussionRounds,
		Autopilot:        true,
	}
	seed := c.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if log == nil {
		log = logging.NopLogger()
	}
	return &Headless{cfg: c, voice: voice, log: log, seed: seed}
}

// RunGame plays game index to completion
func (h *Headless) RunGame(ctx context.Context, index int) (*model.Summary, error) {
	cfg := h.cfg
	cfg.Game.Seed = h.seed + int64(index)

	e, err := New(&cfg, event.NewBus(), h.voice, h.log.With("game_index", index))
	if err != nil {
		return nil, fmt.Errorf("new game: %w", err)
	}
	sum, err := e.Run(ctx)
	if err != nil {
		return nil, err
	}
	return sum, nil
}
