package chart_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivetime/drivetime/internal/chart"
	"github.com/drivetime/drivetime/internal/series"
)

func entry(t *testing.T, hour, minute int, opt, pes, avg float64) series.Entry {
	t.Helper()
	return series.Entry{
		Departure:      time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC),
		OptimisticMin:  opt,
		PessimisticMin: pes,
		AverageMin:     avg,
	}
}

func TestRender_Shape(t *testing.T) {
	s := series.Series{
		entry(t, 8, 0, 10, 14, 12),
		entry(t, 8, 15, 12, 16, 14),
		entry(t, 8, 30, 20, 24, 22),
	}
	insight := &series.Insight{Best: s[0], Worst: s[2], DifferenceMin: 10}

	out := chart.Render(s, insight, chart.Options{HeightRows: 20})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// 20 value rows, axis, hour labels, axis title, blank, and 3 legend lines.
	require.Len(t, lines, 27)

	for i := 0; i < 20; i++ {
		assert.Regexp(t, `^ *\d+ min \| `, lines[i])
		assert.Len(t, lines[i], 10+len(s), "every row spans the full grid width")
	}

	assert.Equal(t, "        +---", lines[20])
	assert.Equal(t, "          8", lines[21])
	assert.Equal(t, "          Hour of Day", lines[22])
	assert.Equal(t, "LEGEND:", lines[24])
	assert.Equal(t, "  + = Optimistic  |  o = Pessimistic  |  * = Average", lines[25])
	assert.Equal(t, "  B = Best (08:00, 12.0 min)  |  W = Worst (08:30, 22.0 min)", lines[26])
}

func TestRender_ScaleAndMarkers(t *testing.T) {
	s := series.Series{
		entry(t, 8, 0, 10, 14, 12),
		entry(t, 8, 15, 12, 16, 14),
		entry(t, 8, 30, 20, 24, 22),
	}
	insight := &series.Insight{Best: s[0], Worst: s[2], DifferenceMin: 10}

	out := chart.Render(s, insight, chart.Options{HeightRows: 20})
	lines := strings.Split(out, "\n")

	// Row 0 carries the maximum value (pessimistic 24 at the last column).
	assert.True(t, strings.HasPrefix(lines[0], " 24 min | "))
	assert.Equal(t, byte('o'), lines[0][12])

	// The last value row carries the minimum (optimistic 10, first column).
	assert.True(t, strings.HasPrefix(lines[19], " 10 min | "))
	assert.Equal(t, byte('+'), lines[19][10])

	// Best/worst markers land on the average rows of their columns,
	// overriding the series markers there.
	assert.Equal(t, byte('B'), lines[16][10])
	assert.Equal(t, byte('W'), lines[3][12])
}

func TestRender_AverageOverridesSeriesMarker(t *testing.T) {
	// The first column collapses all three markers into one cell; the
	// average must win it.
	s := series.Series{
		entry(t, 8, 0, 10, 10, 10),
		entry(t, 8, 15, 10, 12, 11),
	}

	out := chart.Render(s, nil, chart.Options{HeightRows: 20})
	lines := strings.Split(out, "\n")

	// Without insight markers the collapsed first column shows the average.
	assert.Equal(t, byte('*'), lines[19][10])
}

func TestRender_TwoDigitHourLabels(t *testing.T) {
	s := series.Series{
		entry(t, 9, 45, 10, 14, 12),
		entry(t, 10, 0, 11, 15, 13),
		entry(t, 10, 15, 12, 16, 14),
	}
	insight := &series.Insight{Best: s[0], Worst: s[2], DifferenceMin: 2}

	out := chart.Render(s, insight, chart.Options{HeightRows: 20})
	lines := strings.Split(out, "\n")

	// The "10" label starts under its column (index 1 → offset 11).
	assert.Equal(t, "           10", lines[21])
}

func TestRender_AdjacentHourLabelsDoNotCollide(t *testing.T) {
	// Hourly sampling puts a label under every column; a two-digit hour
	// would otherwise run into the next label's starting column.
	s := series.Series{
		entry(t, 10, 0, 10, 14, 12),
		entry(t, 11, 0, 11, 15, 13),
		entry(t, 12, 0, 12, 16, 14),
	}

	out := chart.Render(s, nil, chart.Options{HeightRows: 20})
	lines := strings.Split(out, "\n")

	assert.Equal(t, "          10 11 12", lines[21])
}

func TestRender_DefaultHeight(t *testing.T) {
	s := series.Series{entry(t, 8, 0, 10, 14, 12)}

	out := chart.Render(s, nil, chart.Options{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.GreaterOrEqual(t, len(lines), chart.DefaultHeightRows)
}

func TestRender_EmptySeries(t *testing.T) {
	assert.Empty(t, chart.Render(nil, nil, chart.Options{}))
}
