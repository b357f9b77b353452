// Package series derives the ordered, fully-covered result series and its
// best/worst insights from a batch engine table.
package series

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/drivetime/drivetime/internal/engine"
	"github.com/drivetime/drivetime/internal/maps"
)

// ErrEmptySeries indicates no departure instant had results for both traffic
// models. Callers should report this as a "no data" outcome, not a crash.
var ErrEmptySeries = errors.New("no departure instant has complete data")

// Entry is one fully-covered departure instant.
type Entry struct {
	Departure      time.Time
	OptimisticMin  float64
	PessimisticMin float64
	AverageMin     float64
}

// Series is the time-ordered set of complete entries.
type Series []Entry

// Insight summarizes the extremes of a series by average drive time.
type Insight struct {
	Best          Entry
	Worst         Entry
	DifferenceMin float64
}

// Assemble filters the table down to instants where both traffic models
// succeeded, sorted ascending by departure, and computes the best and worst
// entries by average. Instants with partial coverage are silently dropped.
// Averages are rounded to one decimal, half away from zero. Ties on the
// extremes resolve to the earliest instant.
func Assemble(table engine.Table) (Series, *Insight, error) {
	instants := make([]time.Time, 0, len(table))
	for instant := range table {
		instants = append(instants, instant)
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i].Before(instants[j]) })

	series := make(Series, 0, len(instants))
	for _, instant := range instants {
		row := table[instant]
		opt, hasOpt := row[maps.ModelOptimistic]
		pes, hasPes := row[maps.ModelPessimistic]
		if !hasOpt || !hasPes {
			continue
		}
		series = append(series, Entry{
			Departure:      instant,
			OptimisticMin:  opt,
			PessimisticMin: pes,
			AverageMin:     round1((opt + pes) / 2),
		})
	}

	if len(series) == 0 {
		return nil, nil, ErrEmptySeries
	}

	insight := &Insight{Best: series[0], Worst: series[0]}
	for _, entry := range series[1:] {
		if entry.AverageMin < insight.Best.AverageMin {
			insight.Best = entry
		}
		if entry.AverageMin > insight.Worst.AverageMin {
			insight.Worst = entry
		}
	}
	insight.DifferenceMin = round1(insight.Worst.AverageMin - insight.Best.AverageMin)

	return series, insight, nil
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
