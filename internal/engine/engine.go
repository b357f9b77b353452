// Package engine runs large batches of traffic-duration lookups with bounded
// concurrency and round-based retry.
package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/drivetime/drivetime/internal/maps"
)

// Task is one (origin, destination, departure, traffic model) unit of work
// mapped to exactly one remote call.
type Task struct {
	Origin      maps.Coordinate
	Destination maps.Coordinate
	Departure   time.Time
	Model       maps.TrafficModel
}

// FetchFunc executes a single task and returns the drive duration in seconds.
type FetchFunc func(ctx context.Context, task Task) (int, error)

// Config holds configuration for the batch engine.
type Config struct {
	// MaxRounds is the total number of scheduling rounds, including the
	// first. Tasks still failing after the last round are dropped.
	// Default: 3
	MaxRounds int

	// FirstRoundWorkers bounds concurrency in the first round.
	// Default: 30
	FirstRoundWorkers int

	// RetryWorkers bounds concurrency in retry rounds. Deliberately lower
	// than FirstRoundWorkers: repeated failure suggests the remote service
	// is degraded. Default: 10
	RetryWorkers int

	// TaskAttempts is how many times a single task is attempted within one
	// round before it is requeued for the next round. Default: 3
	TaskAttempts int

	// BaseDelay is the unit of the per-task backoff; attempt n sleeps
	// (n+1)*BaseDelay before the next attempt. Default: 500ms
	BaseDelay time.Duration

	// Logger for engine operations.
	Logger zerolog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxRounds:         3,
		FirstRoundWorkers: 30,
		RetryWorkers:      10,
		TaskAttempts:      3,
		BaseDelay:         500 * time.Millisecond,
	}
}

// Engine schedules batches of duration lookups across retry rounds.
// It holds no state between runs apart from aggregate metrics.
type Engine struct {
	cfg     Config
	metrics *Metrics
}

// New creates a batch engine, filling in defaults for zero config fields.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = def.MaxRounds
	}
	if cfg.FirstRoundWorkers <= 0 {
		cfg.FirstRoundWorkers = def.FirstRoundWorkers
	}
	if cfg.RetryWorkers <= 0 {
		cfg.RetryWorkers = def.RetryWorkers
	}
	if cfg.TaskAttempts <= 0 {
		cfg.TaskAttempts = def.TaskAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}

	return &Engine{
		cfg:     cfg,
		metrics: &Metrics{},
	}
}

// Table accumulates fetched durations in minutes, keyed by departure instant
// and traffic model. A recorded cell is never overwritten.
type Table map[time.Time]map[maps.TrafficModel]float64

// Result is the outcome of a batch run.
type Result struct {
	// Table holds the durations that were fetched successfully.
	Table Table

	// Failed counts tasks that never succeeded in any round.
	Failed int

	// Rounds is the number of rounds that were actually scheduled.
	Rounds int

	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
}

// Run executes every task with bounded concurrency and multi-round retry,
// merging successes into a shared table. Individual task failures never
// surface as errors; tasks still failing after the last retry round
// are counted in Result.Failed and absent from the table.
func (e *Engine) Run(ctx context.Context, tasks []Task, fetch FetchFunc) *Result {
	start := time.Now()
	result := &Result{Table: make(Table, len(tasks)/2+1)}

	e.cfg.Logger.Info().
		Int("tasks", len(tasks)).
		Int("workers", e.cfg.FirstRoundWorkers).
		Int("max_rounds", e.cfg.MaxRounds).
		Msg("starting batch fetch")

	pending := make([]Task, len(tasks))
	copy(pending, tasks)

	round := 0
	for len(pending) > 0 && round < e.cfg.MaxRounds {
		// Cancellation applies at round granularity: a started round always
		// runs to its barrier, but no further round is scheduled.
		if ctx.Err() != nil {
			break
		}

		workers := e.cfg.FirstRoundWorkers
		if round > 0 {
			workers = e.cfg.RetryWorkers
		}
		if workers > len(pending) {
			workers = len(pending)
		}

		pending = e.runRound(ctx, round, workers, pending, fetch, result.Table)
		round++

		if len(pending) > 0 && round < e.cfg.MaxRounds {
			e.cfg.Logger.Warn().
				Int("round", round).
				Int("still_failing", len(pending)).
				Msg("queries failed, scheduling retry round")
		}
	}

	result.Failed = len(pending)
	result.Rounds = round
	result.Duration = time.Since(start)

	if result.Failed > 0 {
		e.cfg.Logger.Warn().
			Int("failed", result.Failed).
			Int("rounds", result.Rounds).
			Msg("queries failed after all retry rounds")
	}

	e.metrics.record(result)

	e.cfg.Logger.Info().
		Dur("duration", result.Duration).
		Int("succeeded", len(tasks)-result.Failed).
		Int("failed", result.Failed).
		Msg("batch fetch completed")

	return result
}

type taskResult struct {
	task    Task
	minutes float64
	ok      bool
}

// runRound fans the pending tasks out over a fresh worker pool and merges
// completions as they arrive. It returns the tasks that exhausted their
// local attempts; the round is a full barrier, so every dispatched task has
// resolved before this returns.
func (e *Engine) runRound(ctx context.Context, round, workers int, pending []Task, fetch FetchFunc, table Table) []Task {
	taskCh := make(chan Task, len(pending))
	resultCh := make(chan taskResult, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.fetchWorker(ctx, taskCh, resultCh, fetch)
		}()
	}

	for _, task := range pending {
		taskCh <- task
	}
	close(taskCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Single-consumer merge keeps table writes race-free.
	var failed []Task
	for tr := range resultCh {
		if !tr.ok {
			failed = append(failed, tr.task)
			continue
		}
		row, ok := table[tr.task.Departure]
		if !ok {
			row = make(map[maps.TrafficModel]float64, 2)
			table[tr.task.Departure] = row
		}
		if _, exists := row[tr.task.Model]; !exists {
			row[tr.task.Model] = tr.minutes
		}
	}

	e.cfg.Logger.Debug().
		Int("round", round).
		Int("dispatched", len(pending)).
		Int("failed", len(failed)).
		Msg("round completed")

	return failed
}

func (e *Engine) fetchWorker(ctx context.Context, tasks <-chan Task, results chan<- taskResult, fetch FetchFunc) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- taskResult{task: task}
		default:
			results <- e.attemptTask(ctx, task, fetch)
		}
	}
}

// attemptTask tries one task up to TaskAttempts times with a growing delay
// between attempts. Only the final failure is reported; intermediate
// failures stay local to the task.
func (e *Engine) attemptTask(ctx context.Context, task Task, fetch FetchFunc) taskResult {
	for attempt := 0; attempt < e.cfg.TaskAttempts; attempt++ {
		atomic.AddInt64(&e.metrics.Attempts, 1)

		seconds, err := fetch(ctx, task)
		if err == nil {
			atomic.AddInt64(&e.metrics.Successes, 1)
			return taskResult{task: task, minutes: roundMinutes(seconds), ok: true}
		}

		if attempt < e.cfg.TaskAttempts-1 {
			delay := time.Duration(attempt+1) * e.cfg.BaseDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return taskResult{task: task}
			}
			continue
		}

		atomic.AddInt64(&e.metrics.Failures, 1)
		e.cfg.Logger.Debug().
			Err(err).
			Time("departure", task.Departure).
			Str("model", string(task.Model)).
			Int("attempts", e.cfg.TaskAttempts).
			Msg("task failed after local retries")
	}

	return taskResult{task: task}
}

// roundMinutes converts seconds to minutes with one decimal of precision,
// rounding half away from zero.
func roundMinutes(seconds int) float64 {
	return math.Round(float64(seconds)/60*10) / 10
}
