package worker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ppiankov/nightfall/internal/model"
)

// GameRunner plays one headless game to completion
type GameRunner interface {
	RunGame(ctx context.Context, index int) (*model.Summary, error)
}

// GameJob represents one simulated game
type GameJob struct {
	Index   int
	Runner  GameRunner
	Timeout time.Duration
}

// Execute runs the game under the job's timeout
func (j *GameJob) Execute(ctx context.Context) Result {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	summary, err := j.Runner.RunGame(ctx, j.Index)
	res := &GameResult{Index: j.Index, Summary: summary, Duration: time.Since(start)}
	if err != nil {
		res.Error = fmt.Errorf("game %d: %w", j.Index, err)
	}
	return res
}

// GameResult represents the result of a game job
type GameResult struct {
	Index    int
	Summary  *model.Summary
	Duration time.Duration
	Error    error
}

// GetError returns the error from the game result
func (r *GameResult) GetError() error {
	return r.Error
}

// Stats aggregates a batch of games
type Stats struct {
	Games        int            `json:"games"`
	Failed       int            `json:"failed"`
	VillageWins  int            `json:"village_wins"`
	WolfWins     int            `json:"wolf_wins"`
	Undecided    int            `json:"undecided"`
	AverageDays  float64        `json:"average_days"`
	ByFormation  map[string]int `json:"by_formation"`
	VillageRate  float64        `json:"village_rate"`
	TotalRuntime time.Duration  `json:"total_runtime"`
}

// BatchProcessor runs many games concurrently
type BatchProcessor struct {
	runner      GameRunner
	concurrency int
	timeout     time.Duration
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner GameRunner, concurrency int, timeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// ProcessGames plays games games and returns results ordered by index
func (b *BatchProcessor) ProcessGames(ctx context.Context, games int) []*GameResult {
	if games <= 0 {
		return []*GameResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	jobs := make([]Job, games)
	for i := range jobs {
		jobs[i] = &GameJob{Index: i, Runner: b.runner, Timeout: b.timeout}
	}

	results := pool.Run(jobs)

	gameResults := make([]*GameResult, len(results))
	for i, result := range results {
		gameResults[i] = result.(*GameResult)
	}
	sort.Slice(gameResults, func(i, j int) bool { return gameResults[i].Index < gameResults[j].Index })
	return gameResults
}

// Aggregate summarizes finished games
func Aggregate(results []*GameResult) Stats {
	s := Stats{ByFormation: make(map[string]int)}
	days := 0
	for _, r := range results {
		s.Games++
		s.TotalRuntime += r.Duration
		if r.Error != nil || r.Summary == nil {
			s.Failed++
			continue
		}
		days += r.Summary.Days
		s.ByFormation[r.Summary.Formation]++
		switch r.Summary.Winner {
		case model.WinnerVillage:
			s.VillageWins++
		case model.WinnerWolves:
			s.WolfWins++
		default:
			s.Undecided++
		}
	}
	if finished := s.Games - s.Failed; finished > 0 {
		s.AverageDays = float64(days) / float64(finished)
		s.VillageRate = float64(s.VillageWins) / float64(finished)
	}
	return s
}
