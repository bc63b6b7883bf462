package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/nightfall/internal/logging"
)

func noGate() error { return nil }

func recorder(trace *[]string, name string, err error) Step {
	return Step{Name: name, Run: func(ctx context.Context) error {
		*trace = append(*trace, name)
		return err
	}}
}

func TestSequence_RunsInOrder(t *testing.T) {
	var trace []string
	s := NewSequence("day", logging.NopLogger(),
		recorder(&trace, "a", nil),
		recorder(&trace, "b", nil),
		recorder(&trace, "c", nil),
	)

	assert.Equal(t, "", s.Checkpoint())
	assert.Equal(t, "a", s.Pending())

	require.NoError(t, s.Run(context.Background(), noGate))
	assert.Equal(t, []string{"a", "b", "c"}, trace)
	assert.True(t, s.Done())
	assert.Equal(t, "c", s.Checkpoint())
	assert.Equal(t, "", s.Pending())
}

func TestSequence_FaultsAreSwallowed(t *testing.T) {
	var trace []string
	s := NewSequence("night", logging.NopLogger(),
		recorder(&trace, "a", errors.New("boom")),
		Step{Name: "panics", Run: func(ctx context.Context) error {
			trace = append(trace, "panics")
			panic("bad step")
		}},
		recorder(&trace, "c", nil),
	)

	require.NoError(t, s.Run(context.Background(), noGate))
	assert.Equal(t, []string{"a", "panics", "c"}, trace)
}

func TestSequence_HaltResumesAtCheckpoint(t *testing.T) {
	var trace []string
	halts := 1
	s := NewSequence("day", logging.NopLogger(),
		recorder(&trace, "a", nil),
		Step{Name: "b", Run: func(ctx context.Context) error {
			trace = append(trace, "b")
			if halts > 0 {
				halts--
				return ErrHalted
			}
			return nil
		}},
		recorder(&trace, "c", nil),
	)

	err := s.Run(context.Background(), noGate)
	assert.ErrorIs(t, err, ErrHalted)
	assert.Equal(t, "a", s.Checkpoint())
	assert.Equal(t, "b", s.Pending())

	require.NoError(t, s.Run(context.Background(), noGate))
	assert.Equal(t, []string{"a", "b", "b", "c"}, trace)
}

func TestSequence_GateStopsBeforeStep(t *testing.T) {
	var trace []string
	stopped := false
	gate := func() error {
		if stopped {
			return ErrHalted
		}
		return nil
	}
	s := NewSequence("day", logging.NopLogger(),
		Step{Name: "a", Run: func(ctx context.Context) error {
			trace = append(trace, "a")
			stopped = true
			return nil
		}},
		recorder(&trace, "b", nil),
	)

	assert.ErrorIs(t, s.Run(context.Background(), gate), ErrHalted)
	assert.Equal(t, []string{"a"}, trace)
	assert.Equal(t, "b", s.Pending())

	stopped = false
	require.NoError(t, s.Run(context.Background(), gate))
	assert.Equal(t, []string{"a", "b"}, trace)
}

func TestSequence_EndedStopsWithoutAdvancing(t *testing.T) {
	var trace []string
	s := NewSequence("night", logging.NopLogger(),
		recorder(&trace, "a", errEnded),
		recorder(&trace, "b", nil),
	)

	assert.ErrorIs(t, s.Run(context.Background(), noGate), errEnded)
	assert.Equal(t, []string{"a"}, trace)
}

func TestSequence_ContextErrorPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var trace []string
	s := NewSequence("day", logging.NopLogger(),
		Step{Name: "a", Run: func(ctx context.Context) error {
			trace = append(trace, "a")
			cancel()
			return ctx.Err()
		}},
		recorder(&trace, "b", nil),
	)

	assert.ErrorIs(t, s.Run(ctx, noGate), context.Canceled)
	assert.Equal(t, []string{"a"}, trace)
	assert.Equal(t, "a", s.Pending())
}
