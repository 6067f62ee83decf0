// Package report turns loaded sessions into human-readable output: per-column
// statistics blocks written as text or workbooks, and per-animal multi-session
// comparison figures.
package report

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sgtlab/sessqc/internal/session"
)

// Logger is the logging surface reporting operations write through.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogProgress(completed, total int)
}

// noopLogger discards reporting output when the caller passes no logger.
type noopLogger struct{}

func (noopLogger) LogDebug(message string)          {}
func (noopLogger) LogInfo(message string)           {}
func (noopLogger) LogWarn(message string)           {}
func (noopLogger) LogProgress(completed, total int) {}

// Statistic names, as rendered in summary blocks and figure panel titles.
const (
	StatMean     = "mean"
	StatStd      = "std"
	StatMin      = "min"
	StatMax      = "max"
	StatNaNCount = "nan_count"
)

// textStats orders the columns of a rendered summary block.
var textStats = []string{StatMean, StatStd, StatMin, StatMax, StatNaNCount}

// plotStats orders the panel columns of a comparison figure.
var plotStats = []string{StatMean, StatMax, StatMin, StatStd, StatNaNCount}

// Row holds the descriptive statistics of one source column. The four
// moments exclude NaN samples; NaNCount reports how many were excluded. A
// column with no finite samples carries NaN moments.
type Row struct {
	Name     string
	Mean     float64
	Std      float64
	Min      float64
	Max      float64
	NaNCount int
}

// Stat returns the named statistic. NaNCount is widened to float64 so the
// five statistics can be handled uniformly.
func (r Row) Stat(name string) float64 {
	switch name {
	case StatMean:
		return r.Mean
	case StatStd:
		return r.Std
	case StatMin:
		return r.Min
	case StatMax:
		return r.Max
	case StatNaNCount:
		return float64(r.NaNCount)
	}
	return math.NaN()
}

// Summary is the per-column statistics table derived from one data product.
// Row order preserves the source table's column order.
type Summary struct {
	rows  []Row
	index map[string]int
}

// Rows returns the summary rows in source column order. The slice is shared;
// callers must not modify it.
func (s *Summary) Rows() []Row {
	return s.rows
}

// Row returns the row for the named source column and whether it exists.
func (s *Summary) Row(name string) (Row, bool) {
	i, ok := s.index[name]
	if !ok {
		return Row{}, false
	}
	return s.rows[i], true
}

// Summarize computes per-column statistics for a table. Bool columns count
// as 0/1 and int columns as their numeric values, so every channel of an
// acquisition table is reported. Std is the sample standard deviation and is
// NaN for columns with fewer than two finite samples.
func Summarize(tab *session.Table) *Summary {
	sum := &Summary{index: make(map[string]int, tab.NumCols())}

	for _, col := range tab.Columns() {
		vals := col.Floats()
		clean := make([]float64, 0, len(vals))
		nan := 0
		for _, v := range vals {
			if math.IsNaN(v) {
				nan++
				continue
			}
			clean = append(clean, v)
		}

		row := Row{
			Name:     col.Name,
			Mean:     math.NaN(),
			Std:      math.NaN(),
			Min:      math.NaN(),
			Max:      math.NaN(),
			NaNCount: nan,
		}
		if len(clean) > 0 {
			row.Mean = stat.Mean(clean, nil)
			row.Std = stat.StdDev(clean, nil)
			row.Min = floats.Min(clean)
			row.Max = floats.Max(clean)
		}

		sum.index[row.Name] = len(sum.rows)
		sum.rows = append(sum.rows, row)
	}

	return sum
}

// StatSummary resolves the named field on the session and summarizes it.
// Fields the session does not carry are reported at warn level and yield
// nil, not an error.
func StatSummary(sess *session.Session, field string, log Logger) *Summary {
	if log == nil {
		log = noopLogger{}
	}

	tab, ok := sess.Table(field)
	if !ok {
		log.LogWarn(fmt.Sprintf("no %s found in %s", field, sess.Path))
		return nil
	}
	return Summarize(tab)
}
