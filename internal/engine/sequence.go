package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/nightfall/internal/logging"
)

var (
	// ErrHalted is returned when a stop request interrupts a sequence
	ErrHalted = errors.New("sequence halted")
	// ErrReset is the cancellation cause of a game discarded by Reset
	ErrReset = errors.New("game reset")

	// errEnded stops the current sequence once the game has a result
	errEnded = errors.New("game ended")
)

// Step is one named checkpoint of a sequence
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Sequence runs steps in order and remembers the last completed one, so a
// halted sequence re-enters exactly where it stopped.
type Sequence struct {
	name  string
	steps []Step
	next  int
	log   *logging.Logger
}

// NewSequence creates a sequence at its first step
func NewSequence(name string, log *logging.Logger, steps ...Step) *Sequence {
	return &Sequence{name: name, steps: steps, log: log}
}

// Name returns the sequence name
func (s *Sequence) Name() string {
	return s.name
}

// Done reports whether every step completed
func (s *Sequence) Done() bool {
	return s.next >= len(s.steps)
}

// Checkpoint returns the last completed step, or "" before the first
func (s *Sequence) Checkpoint() string {
	if s.next == 0 {
		return ""
	}
	return s.steps[s.next-1].Name
}

// Pending returns the step that runs next, or "" when done
func (s *Sequence) Pending() string {
	if s.Done() {
		return ""
	}
	return s.steps[s.next].Name
}

// Run executes the remaining steps. gate is consulted before every step and
// its error stops the run without side effects. A step that returns
// ErrHalted is re-entered on the next Run. Any other step error or panic is
// logged and the step counts as done. Context errors propagate.
func (s *Sequence) Run(ctx context.Context, gate func() error) error {
	for !s.Done() {
		if err := gate(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		step := s.steps[s.next]
		err := s.runStep(ctx, step)
		switch {
		case err == nil:
		case errors.Is(err, ErrHalted), errors.Is(err, errEnded):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			s.log.Warn("step failed, continuing", "sequence", s.name, "step", step.Name, "error", err)
		}
		s.next++
	}
	return nil
}

func (s *Sequence) runStep(ctx context.Context, step Step) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", step.Name, r)
		}
	}()
	return step.Run(ctx)
}
