package drivetime_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivetime/drivetime/internal/drivetime"
	"github.com/drivetime/drivetime/internal/engine"
	"github.com/drivetime/drivetime/internal/maps"
	"github.com/drivetime/drivetime/internal/series"
	"github.com/drivetime/drivetime/internal/timegrid"
)

// mockProvider serves canned durations keyed by wall-clock time and model.
type mockProvider struct {
	mu sync.Mutex
	// seconds maps "HH:MM/model" to a duration in seconds.
	seconds map[string]int
	// failing marks keys that error on every call.
	failing map[string]bool
	loc     *time.Location
}

func (m *mockProvider) key(epoch int64, model maps.TrafficModel) string {
	return time.Unix(epoch, 0).In(m.loc).Format("15:04") + "/" + string(model)
}

func (m *mockProvider) DurationInTraffic(_ context.Context, req maps.DurationRequest) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.key(req.DepartureEpoch, req.Model)
	if m.failing[k] {
		return 0, &maps.Error{Provider: "mock", Code: "BOOM", Message: "remote failure", Err: maps.ErrProviderUnavailable}
	}
	if secs, ok := m.seconds[k]; ok {
		return secs, nil
	}
	return 0, &maps.Error{Provider: "mock", Code: "MISSING", Message: "no fixture", Err: maps.ErrNoRouteFound}
}

func (m *mockProvider) Name() string { return "mock" }

func newMockProvider(t *testing.T) *mockProvider {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	return &mockProvider{
		loc: loc,
		seconds: map[string]int{
			"08:00/optimistic": 600, "08:00/pessimistic": 840,
			"08:15/optimistic": 720, "08:15/pessimistic": 960,
			"08:30/optimistic": 1200, "08:30/pessimistic": 1440,
			"08:45/optimistic": 900, "08:45/pessimistic": 1140,
		},
		failing: map[string]bool{},
	}
}

func newService(provider maps.DurationProvider) *drivetime.Service {
	eng := engine.New(engine.Config{
		MaxRounds:         3,
		FirstRoundWorkers: 4,
		RetryWorkers:      2,
		TaskAttempts:      2,
		BaseDelay:         time.Millisecond,
		Logger:            zerolog.Nop(),
	})

	return drivetime.NewService(drivetime.ServiceConfig{
		Provider: provider,
		Engine:   eng,
		Logger:   zerolog.Nop(),
	})
}

func baseRequest() drivetime.AnalyzeRequest {
	return drivetime.AnalyzeRequest{
		Origin:          maps.Coordinate{Lat: 37.7749, Lng: -122.4194},
		Destination:     maps.Coordinate{Lat: 37.3382, Lng: -121.8863},
		Date:            "2025-06-02",
		Start:           "08:00",
		End:             "08:45",
		IntervalMinutes: 15,
		Timezone:        "America/Los_Angeles",
	}
}

func TestService_Analyze(t *testing.T) {
	svc := newService(newMockProvider(t))

	analysis, err := svc.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Len(t, analysis.Series, 4)
	assert.Equal(t, 0, analysis.FailedTasks)
	assert.Equal(t, 0, analysis.FailedPoints)

	// opt=[10,12,20,15], pes=[14,16,24,19] → avg=[12,14,22,17]
	assert.Equal(t, "08:00", analysis.Insight.Best.Departure.Format("15:04"))
	assert.Equal(t, 12.0, analysis.Insight.Best.AverageMin)
	assert.Equal(t, "08:30", analysis.Insight.Worst.Departure.Format("15:04"))
	assert.Equal(t, 22.0, analysis.Insight.Worst.AverageMin)
	assert.Equal(t, 10.0, analysis.Insight.DifferenceMin)

	assert.Contains(t, analysis.Chart, "LEGEND:")
	assert.Contains(t, analysis.Chart, "B = Best (08:00, 12.0 min)")
	assert.Equal(t, 20, strings.Count(analysis.Chart, " min | "))
}

func TestService_Analyze_PartialFailureDropsInstant(t *testing.T) {
	provider := newMockProvider(t)
	provider.failing["08:15/pessimistic"] = true

	svc := newService(provider)

	analysis, err := svc.Analyze(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Len(t, analysis.Series, 3)
	assert.Equal(t, 1, analysis.FailedTasks)
	assert.Equal(t, 1, analysis.FailedPoints)
	for _, entry := range analysis.Series {
		assert.NotEqual(t, "08:15", entry.Departure.Format("15:04"))
	}
}

func TestService_Analyze_AllFail(t *testing.T) {
	provider := newMockProvider(t)
	provider.seconds = map[string]int{}

	svc := newService(provider)

	_, err := svc.Analyze(context.Background(), baseRequest())
	assert.ErrorIs(t, err, series.ErrEmptySeries)
}

func TestService_Analyze_InvalidRange(t *testing.T) {
	svc := newService(newMockProvider(t))

	req := baseRequest()
	req.Start, req.End = "09:00", "08:00"

	_, err := svc.Analyze(context.Background(), req)
	assert.ErrorIs(t, err, timegrid.ErrInvalidRange)
}

func TestService_Analyze_Defaults(t *testing.T) {
	provider := newMockProvider(t)
	svc := newService(provider)

	req := baseRequest()
	req.IntervalMinutes = 0 // default 15
	req.Timezone = ""       // default America/Los_Angeles

	analysis, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, analysis.Series, 4)
}
