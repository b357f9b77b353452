// Package chart renders a drive-time series as a fixed-height ASCII chart
// with an hour-labeled axis and best/worst markers.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/drivetime/drivetime/internal/series"
)

// Marker characters, in drawing order. Later markers override earlier ones
// in the same cell.
const (
	markerPessimistic = 'o'
	markerOptimistic  = '+'
	markerAverage     = '*'
	markerBest        = 'B'
	markerWorst       = 'W'
)

// DefaultHeightRows is the default number of value rows.
const DefaultHeightRows = 20

// yAxisWidth is the width of the "999 min | " gutter in front of each row.
const yAxisWidth = 10

// Options controls chart rendering.
type Options struct {
	// HeightRows is the number of discrete value rows. Default: 20
	HeightRows int
}

// Render draws the optimistic, pessimistic and average series into a
// character grid, one column per departure instant. The vertical scale spans
// the min and max of the optimistic and pessimistic series only. The best
// and worst columns are overwritten last with their distinguished markers.
func Render(s series.Series, insight *series.Insight, opts Options) string {
	if len(s) == 0 {
		return ""
	}

	height := opts.HeightRows
	if height <= 0 {
		height = DefaultHeightRows
	}
	width := len(s)

	minVal, maxVal := valueBounds(s)

	// scale maps a value onto [0, height-1], 0 = minimum.
	scale := func(v float64) int {
		if maxVal == minVal {
			return 0
		}
		return int(math.Round((v - minVal) / (maxVal - minVal) * float64(height-1)))
	}
	rowFor := func(v float64) int { return height - 1 - scale(v) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	// Draw order: pessimistic, optimistic, average. The average marker
	// overrides a coincident series marker; otherwise first writer wins.
	for col, entry := range s {
		if cell := &grid[rowFor(entry.PessimisticMin)][col]; *cell == ' ' {
			*cell = markerPessimistic
		}
		if cell := &grid[rowFor(entry.OptimisticMin)][col]; *cell == ' ' {
			*cell = markerOptimistic
		}
		grid[rowFor(entry.AverageMin)][col] = markerAverage
	}

	// Best/worst markers are applied last and override anything.
	if insight != nil {
		for col, entry := range s {
			if entry.Departure.Equal(insight.Best.Departure) {
				grid[rowFor(insight.Best.AverageMin)][col] = markerBest
			}
			if entry.Departure.Equal(insight.Worst.Departure) {
				grid[rowFor(insight.Worst.AverageMin)][col] = markerWorst
			}
		}
	}

	var b strings.Builder
	for i := 0; i < height; i++ {
		rowVal := maxVal
		if height > 1 {
			rowVal = maxVal - float64(i)/float64(height-1)*(maxVal-minVal)
		}
		fmt.Fprintf(&b, "%3d min | %s\n", int(rowVal), string(grid[i]))
	}

	b.WriteString("        +" + strings.Repeat("-", width) + "\n")
	b.WriteString(hourAxis(s) + "\n")
	b.WriteString("          Hour of Day\n")
	b.WriteString("\n")
	b.WriteString("LEGEND:\n")
	b.WriteString("  + = Optimistic  |  o = Pessimistic  |  * = Average\n")
	if insight != nil {
		fmt.Fprintf(&b, "  B = Best (%s, %.1f min)  |  W = Worst (%s, %.1f min)\n",
			insight.Best.Departure.Format("15:04"), insight.Best.AverageMin,
			insight.Worst.Departure.Format("15:04"), insight.Worst.AverageMin)
	}

	return b.String()
}

// valueBounds returns the min and max across the optimistic and pessimistic
// series. The average is plotted but never sets the scale.
func valueBounds(s series.Series) (minVal, maxVal float64) {
	minVal = s[0].OptimisticMin
	maxVal = s[0].OptimisticMin
	for _, entry := range s {
		for _, v := range [2]float64{entry.OptimisticMin, entry.PessimisticMin} {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	return minVal, maxVal
}

// hourAxis renders the label line under the grid. A label appears under
// every column whose time-of-day is the top of an hour; the line is padded
// so a wide label never collides with the next one.
func hourAxis(s series.Series) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", yAxisWidth))

	for col, entry := range s {
		if entry.Departure.Minute() != 0 {
			continue
		}
		pos := yAxisWidth + col
		if b.Len() > pos {
			// Previous label ran into this column; keep one space so
			// adjacent hour numbers stay readable.
			b.WriteString(" ")
		} else {
			b.WriteString(strings.Repeat(" ", pos-b.Len()))
		}
		b.WriteString(strconv.Itoa(entry.Departure.Hour()))
	}

	return strings.TrimRight(b.String(), " ")
}
