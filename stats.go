package textmetrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldSummary describes the distribution of one metric over a batch.
type FieldSummary struct {
	Field  string  `json:"field"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // Sample standard deviation; 0 for fewer than two values
	Min    float64 `json:"min"`
	Median float64 `json:"median"` // Empirical 0.5 quantile
	Max    float64 `json:"max"`
}

// Summarize returns one FieldSummary per metric column, in column order.
// It returns nil when vectors is empty.
func Summarize(vectors []FeatureVector) []FieldSummary {
	if len(vectors) == 0 {
		return nil
	}

	columns := MetricColumns()
	values := make([][]float64, len(columns))
	for _, fv := range vectors {
		for i, v := range fv.Values() {
			values[i] = append(values[i], v)
		}
	}

	out := make([]FieldSummary, len(columns))
	for i, x := range values {
		out[i] = summarizeColumn(columns[i], x)
	}
	return out
}

// SummarizeRows summarizes the rows that were scored successfully.
func SummarizeRows(rows []Row) []FieldSummary {
	vectors := make([]FeatureVector, 0, len(rows))
	for _, r := range rows {
		if !r.Failed {
			vectors = append(vectors, r.Features)
		}
	}
	return Summarize(vectors)
}

func summarizeColumn(field string, x []float64) FieldSummary {
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	s := FieldSummary{
		Field:  field,
		Mean:   stat.Mean(x, nil),
		Min:    floats.Min(x),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:    floats.Max(x),
	}
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	if math.IsNaN(s.StdDev) {
		s.StdDev = 0
	}
	return s
}
