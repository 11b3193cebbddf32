package domain

import "math"

// DeviationBucket is a qualitative band for a year's z-score.
type DeviationBucket int

const (
	DeviationMuchCleaner DeviationBucket = iota
	DeviationCleaner
	DeviationTypical
	DeviationWorse
	DeviationMuchWorse
)

// Deviation is the display classification for a z-score.
type Deviation struct {
	Bucket DeviationBucket `json:"bucket"`
	Label  string          `json:"label"`
	Color  string          `json:"color"`
}

// Lower bounds are inclusive; each bucket ends where the next begins.
var deviationTable = []struct {
	lower float64
	label string
	color string
}{
	DeviationMuchCleaner: {math.Inf(-1), "Much cleaner", "#22C55E"},
	DeviationCleaner:     {-1, "Cleaner", "#86EFAC"},
	DeviationTypical:     {-0.3, "Typical", "#FACC15"},
	DeviationWorse:       {0.3, "Worse", "#F97316"},
	DeviationMuchWorse:   {1, "Much worse", "#EF4444"},
}

// ClassifyDeviation buckets a z-score. NaN is treated as typical.
func ClassifyDeviation(z float64) Deviation {
	if math.IsNaN(z) {
		z = 0
	}
	b := DeviationMuchCleaner
	for i := len(deviationTable) - 1; i >= 0; i-- {
		if z >= deviationTable[i].lower {
			b = DeviationBucket(i)
			break
		}
	}
	row := deviationTable[b]
	return Deviation{Bucket: b, Label: row.label, Color: row.color}
}

// Interpretation reproduces the backend's wording for a z-score. It is used
// when a breakdown row arrives without an interpretation.
func Interpretation(z float64) string {
	switch {
	case math.IsNaN(z):
		return "Near average"
	case z < -1.5:
		return "Well below average"
	case z < -0.5:
		return "Below average"
	case z < 0.5:
		return "Near average"
	case z < 1.5:
		return "Above average"
	default:
		return "Well above average"
	}
}
