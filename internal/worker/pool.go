package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// Pool manages a pool of workers that execute jobs concurrently
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	queueOnce  sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	return NewPoolWithContext(context.Background(), workers)
}

// NewPoolWithContext creates a pool whose jobs are cancelled with ctx
func NewPoolWithContext(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan Job, workers*2), // Buffered to prevent blocking
		results:    make(chan Result, workers*2),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go func() {
		p.wg.Wait()
		p.closeResults()
	}()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit submits a job to the pool for execution. It blocks while the queue
// is full, so producers of many jobs should submit from their own goroutine
// and drain Results concurrently.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Close signals that no more jobs will be submitted
func (p *Pool) Close() {
	p.queueOnce.Do(func() {
		close(p.jobQueue)
	})
}

// Results streams results until every worker exits
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Wait closes the queue and collects every result
func (p *Pool) Wait() []Result {
	p.Close()

	var results []Result
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Run submits jobs from a separate goroutine and collects every result.
// It never deadlocks on queue capacity.
func (p *Pool) Run(jobs []Job) []Result {
	go func() {
		for _, job := range jobs {
			p.Submit(job)
		}
		p.Close()
	}()

	results := make([]Result, 0, len(jobs))
	for result := range p.results {
		results = append(results, result)
	}
	return results
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
