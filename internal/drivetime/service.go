// Package drivetime analyzes how driving time between two points varies with
// departure time across a sampled window.
package drivetime

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/drivetime/drivetime/internal/chart"
	"github.com/drivetime/drivetime/internal/engine"
	"github.com/drivetime/drivetime/internal/maps"
	"github.com/drivetime/drivetime/internal/series"
	"github.com/drivetime/drivetime/internal/timegrid"
)

// DefaultInterval is the default sampling interval in minutes.
const DefaultInterval = 15

// DefaultTimezone is used when a request does not name one.
const DefaultTimezone = "America/Los_Angeles"

// ServiceConfig holds configuration for the analysis service.
type ServiceConfig struct {
	// Provider computes traffic-aware durations.
	Provider maps.DurationProvider

	// Engine is the batch fetch engine (optional; a default engine is
	// created when nil).
	Engine *engine.Engine

	// Logger for service operations.
	Logger zerolog.Logger
}

// Service runs departure-time analyses.
type Service struct {
	provider maps.DurationProvider
	engine   *engine.Engine
	logger   zerolog.Logger
}

// NewService creates a new analysis service.
func NewService(cfg ServiceConfig) *Service {
	eng := cfg.Engine
	if eng == nil {
		engCfg := engine.DefaultConfig()
		engCfg.Logger = cfg.Logger
		eng = engine.New(engCfg)
	}

	return &Service{
		provider: cfg.Provider,
		engine:   eng,
		logger:   cfg.Logger,
	}
}

// AnalyzeRequest describes one analysis window.
type AnalyzeRequest struct {
	Origin      maps.Coordinate
	Destination maps.Coordinate

	// Date is the calendar date, YYYY-MM-DD.
	Date string
	// Start and End are wall-clock HH:MM bounds on that date.
	Start string
	End   string

	// IntervalMinutes is the sampling interval (default 15).
	IntervalMinutes int

	// Timezone resolves the date and times (default America/Los_Angeles).
	Timezone string
}

// Analysis is the outcome of one run: the complete series, its extremes, the
// rendered chart and how much data was lost to failures.
type Analysis struct {
	Series  series.Series
	Insight *series.Insight
	Chart   string

	// FailedTasks counts individual fetches that never succeeded.
	FailedTasks int
	// FailedPoints counts departure instants dropped for incomplete
	// model coverage.
	FailedPoints int
}

// Analyze samples the departure window and returns the assembled series with
// insights and a rendered text chart. Individual fetch failures degrade the
// result (and are counted) rather than failing the run; ErrEmptySeries is
// returned only when no instant produced complete data.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Analysis, error) {
	interval := req.IntervalMinutes
	if interval == 0 {
		interval = DefaultInterval
	}
	tz := req.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}

	grid, err := timegrid.Build(req.Date, req.Start, req.End, interval, tz)
	if err != nil {
		return nil, err
	}

	tasks := buildTasks(req.Origin, req.Destination, grid)

	s.logger.Info().
		Str("origin", req.Origin.String()).
		Str("destination", req.Destination.String()).
		Int("time_points", len(grid)).
		Int("tasks", len(tasks)).
		Str("provider", s.provider.Name()).
		Msg("starting departure-time analysis")

	result := s.engine.Run(ctx, tasks, s.fetchTask)

	assembled, insight, err := series.Assemble(result.Table)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		Series:       assembled,
		Insight:      insight,
		Chart:        chart.Render(assembled, insight, chart.Options{}),
		FailedTasks:  result.Failed,
		FailedPoints: len(grid) - len(assembled),
	}

	s.logger.Info().
		Int("series_points", len(assembled)).
		Int("failed_points", analysis.FailedPoints).
		Time("best_departure", insight.Best.Departure).
		Time("worst_departure", insight.Worst.Departure).
		Msg("analysis completed")

	return analysis, nil
}

// buildTasks expands the grid into one task per (instant, traffic model).
func buildTasks(origin, destination maps.Coordinate, grid []time.Time) []engine.Task {
	tasks := make([]engine.Task, 0, 2*len(grid))
	for _, departure := range grid {
		for _, model := range []maps.TrafficModel{maps.ModelOptimistic, maps.ModelPessimistic} {
			tasks = append(tasks, engine.Task{
				Origin:      origin,
				Destination: destination,
				Departure:   departure,
				Model:       model,
			})
		}
	}
	return tasks
}

func (s *Service) fetchTask(ctx context.Context, task engine.Task) (int, error) {
	return s.provider.DurationInTraffic(ctx, maps.DurationRequest{
		Origin:         task.Origin,
		Destination:    task.Destination,
		DepartureEpoch: task.Departure.Unix(),
		Model:          task.Model,
	})
}
