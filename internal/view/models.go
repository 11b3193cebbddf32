package view

import (
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
)

// The types below are presentation projections. They are rebuilt from the
// raw loader and simulation state on every read.

// InsightsView is the current-conditions view.
type InsightsView struct {
	State    State[domain.AirQualityReading] `json:"state"`
	Category *domain.Category                `json:"category,omitempty"`
	Advisory *domain.Advisory                `json:"advisory,omitempty"`
}

// ForecastDay is one forecast point with its display gradient.
type ForecastDay struct {
	domain.ForecastPoint
	Gradient      domain.Gradient `json:"gradient"`
	SeverityWidth float64         `json:"severity_width"`
}

// ForecastView is the forecast view with its summary.
type ForecastView struct {
	State   State[[]domain.ForecastPoint] `json:"state"`
	Days    []ForecastDay                 `json:"days,omitempty"`
	Summary *ForecastSummaryView          `json:"summary,omitempty"`
}

// ForecastSummaryView flattens domain.ForecastSummary for display.
type ForecastSummaryView struct {
	Days      int          `json:"days"`
	SafeDays  int          `json:"safe_days"`
	PeakDay   string       `json:"peak_day"`
	PeakAQI   float64      `json:"peak_aqi"`
	PeakLabel string       `json:"peak_label"`
	Trend     domain.Trend `json:"trend"`
}

// BreakdownRow decorates a yearly row with its deviation classification.
type BreakdownRow struct {
	domain.YearBreakdownRow
	Deviation domain.Deviation `json:"deviation_class"`
}

// PredictionView is the historical-anchor prediction view.
type PredictionView struct {
	State         State[domain.AnchorPrediction] `json:"state"`
	Gradient      *domain.Gradient               `json:"gradient,omitempty"`
	SeverityWidth float64                        `json:"severity_width,omitempty"`
	FirstYear     int                            `json:"first_year,omitempty"`
	LastYear      int                            `json:"last_year,omitempty"`
	Rows          []BreakdownRow                 `json:"rows,omitempty"`
}

// SimulationView is every derived figure of a simulation snapshot.
type SimulationView struct {
	InitialAQI     float64           `json:"initial_aqi"`
	CurrentAQI     float64           `json:"current_aqi"`
	Units          []domain.Position `json:"units"`
	UnitCount      int               `json:"unit_count"`
	Required       int               `json:"required"`
	Remaining      int               `json:"remaining"`
	TargetAchieved bool              `json:"target_achieved"`
	Impact         float64           `json:"impact"`
	Progress       float64           `json:"progress"`
	CO2RemovedKg   int               `json:"co2_removed_kg"`
	TreeEquivalent int               `json:"tree_equivalent"`
	Category       domain.Category   `json:"category"`
	Color          string            `json:"color"`
	SmogTint       string            `json:"smog_tint"`
	SmogOpacity    float64           `json:"smog_opacity"`
	HazeOpacity    float64           `json:"haze_opacity"`
}

// NewInsightsView projects an insights loader state.
func NewInsightsView(st State[domain.AirQualityReading]) InsightsView {
	v := InsightsView{State: st}
	if st.Data != nil {
		c := domain.Classify(st.Data.AQI)
		a := domain.AdviseFor(st.Data.AQI)
		v.Category = &c
		v.Advisory = &a
	}
	return v
}

// NewForecastView projects a forecast loader state.
func NewForecastView(st State[[]domain.ForecastPoint]) ForecastView {
	v := ForecastView{State: st}
	if st.Data == nil {
		return v
	}
	points := *st.Data
	v.Days = make([]ForecastDay, len(points))
	for i, p := range points {
		v.Days[i] = ForecastDay{
			ForecastPoint: p,
			Gradient:      domain.GradientFor(p.AQI),
			SeverityWidth: domain.SeverityWidth(p.AQI),
		}
	}
	if sum, ok := domain.AnalyzeForecast(points); ok {
		v.Summary = &ForecastSummaryView{
			Days:      sum.Days,
			SafeDays:  sum.SafeDays,
			PeakDay:   sum.Peak.Day,
			PeakAQI:   sum.Peak.AQI,
			PeakLabel: sum.PeakLabel(),
			Trend:     sum.Trend,
		}
	}
	return v
}

// NewPredictionView projects a prediction loader state. Rows without an
// interpretation get one derived from their z-score.
func NewPredictionView(st State[domain.AnchorPrediction]) PredictionView {
	v := PredictionView{State: st}
	if st.Data == nil {
		return v
	}
	res := st.Data
	if value, ok := res.Prediction.PrimaryValue(); ok {
		g := domain.GradientFor(value)
		v.Gradient = &g
		v.SeverityWidth = domain.SeverityWidth(value)
	}
	if first, last, ok := res.Evaluation.DataQuality.YearSpan(); ok {
		v.FirstYear, v.LastYear = first, last
	}
	v.Rows = make([]BreakdownRow, len(res.YearlyBreakdown))
	for i, row := range res.YearlyBreakdown {
		if row.Interpretation == "" {
			row.Interpretation = domain.Interpretation(row.ZScore)
		}
		v.Rows[i] = BreakdownRow{YearBreakdownRow: row, Deviation: domain.ClassifyDeviation(row.ZScore)}
	}
	return v
}

// NewSimulationView projects a simulation snapshot.
func NewSimulationView(sim domain.Simulation) SimulationView {
	current := sim.CurrentAQI()
	return SimulationView{
		InitialAQI:     sim.InitialAQI(),
		CurrentAQI:     current,
		Units:          sim.Units(),
		UnitCount:      sim.UnitCount(),
		Required:       sim.Required(),
		Remaining:      sim.Remaining(),
		TargetAchieved: sim.TargetAchieved(),
		Impact:         sim.Impact(),
		Progress:       sim.Progress(),
		CO2RemovedKg:   sim.CO2RemovedKg(),
		TreeEquivalent: sim.TreeEquivalent(),
		Category:       domain.Classify(current),
		Color:          domain.SimulationColor(current),
		SmogTint:       domain.SmogTint(current),
		SmogOpacity:    domain.SmogOpacity(current),
		HazeOpacity:    domain.HazeOpacity(current),
	}
}
