package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ppiankov/nightfall/internal/model"
)

// Pacer owns every suspension point of a game. Paused countdowns keep their
// remaining time; Skip resolves every pending wait at once.
type Pacer struct {
	mu      sync.Mutex
	paused  bool
	pauseCh chan struct{} // closed while paused
	resume  chan struct{} // closed while running
	skip    chan struct{} // closed and replaced on every Skip

	limiter  *rate.Limiter
	interval time.Duration
	jitter   time.Duration
	rng      *rand.Rand
}

// NewPacer creates a running pacer from pacing config
func NewPacer(cfg model.PacingConfig, seed int64) *Pacer {
	p := &Pacer{
		pauseCh:  make(chan struct{}),
		resume:   make(chan struct{}),
		skip:     make(chan struct{}),
		interval: cfg.StatementInterval,
		jitter:   cfg.Jitter,
		rng:      rand.New(rand.NewSource(seed)),
	}
	close(p.resume)
	if cfg.StatementsPerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.StatementsPerSecond), 1)
	}
	return p
}

// Pause freezes countdowns. Calling it twice is the same as once.
func (p *Pacer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	close(p.pauseCh)
	p.resume = make(chan struct{})
}

// Resume continues frozen countdowns
func (p *Pacer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	close(p.resume)
	p.pauseCh = make(chan struct{})
}

// Paused reports whether countdowns are frozen
func (p *Pacer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Skip resolves every wait pending right now
func (p *Pacer) Skip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	close(p.skip)
	p.skip = make(chan struct{})
}

// WaitResume blocks while paused
func (p *Pacer) WaitResume(ctx context.Context) error {
	for {
		_, resume, _, paused := p.channels()
		if !paused {
			return nil
		}
		select {
		case <-resume:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *Pacer) channels() (pause, resume, skip chan struct{}, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauseCh, p.resume, p.skip, p.paused
}

// Sleep waits d of unpaused time. It returns early on Skip and fails only
// when ctx ends.
func (p *Pacer) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	_, err := p.Await(ctx, nil, d)
	return err
}

// Await waits until done is closed. A positive timeout is a pause-aware
// countdown; zero waits without a deadline. It reports true only when done
// fired; Skip and timeouts report false.
func (p *Pacer) Await(ctx context.Context, done <-chan struct{}, timeout time.Duration) (bool, error) {
	remaining := timeout
	for {
		pause, resume, skip, paused := p.channels()

		if paused {
			select {
			case <-done:
				return true, nil
			case <-skip:
				return false, nil
			case <-resume:
				continue
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}

		var expired <-chan time.Time
		var timer *time.Timer
		if timeout > 0 {
			timer = time.NewTimer(remaining)
			expired = timer.C
		}
		start := time.Now()

		select {
		case <-done:
			stop(timer)
			return true, nil
		case <-skip:
			stop(timer)
			return false, nil
		case <-expired:
			return false, nil
		case <-pause:
			stop(timer)
			if timeout > 0 {
				remaining -= time.Since(start)
				if remaining <= 0 {
					return false, nil
				}
			}
		case <-ctx.Done():
			stop(timer)
			return false, ctx.Err()
		}
	}
}

// Statement paces one line of scripted dialogue: a rate-limiter token plus
// the configured interval with random jitter.
func (p *Pacer) Statement(ctx context.Context) error {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	d := p.interval
	if p.jitter > 0 {
		p.mu.Lock()
		d += time.Duration(p.rng.Int63n(int64(p.jitter)))
		p.mu.Unlock()
	}
	return p.Sleep(ctx, d)
}

func stop(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
