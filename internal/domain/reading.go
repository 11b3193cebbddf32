package domain

// AirQualityReading is a live snapshot for a single city as returned by /current.
type AirQualityReading struct {
	Location  string  `json:"location"`
	AQI       float64 `json:"aqi"`
	PM25      float64 `json:"pm25"`
	PM10      float64 `json:"pm10"`
	NO2       float64 `json:"no2"`
	Temp      float64 `json:"temp"`
	Condition string  `json:"condition"`
	Humidity  float64 `json:"humidity"`
	WindSpeed float64 `json:"windSpeed"`
}

// ForecastPoint is one day of the /forecast series.
type ForecastPoint struct {
	Day  string  `json:"day"`
	AQI  float64 `json:"aqi"`
	Type string  `json:"type,omitempty"`
}

// Bounds is a lower/upper pair used for confidence intervals and likely ranges.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// SeriesStats are the server-side statistics for one pollutant series.
type SeriesStats struct {
	Mean        float64   `json:"mean"`
	Median      float64   `json:"median"`
	StdDev      float64   `json:"std_dev"`
	SampleSize  int       `json:"sample_size"`
	CI95        []float64 `json:"ci_95,omitempty"`
	LikelyRange []float64 `json:"likely_range,omitempty"`
}

// PredictionResult is the "prediction" block of a /predict-anchor response.
// Pointer fields are null when the backend has no data for that series.
type PredictionResult struct {
	Date               string       `json:"date"`
	City               string       `json:"city"`
	DisplayDate        string       `json:"display_date"`
	PrimaryMetric      string       `json:"primary_metric"`
	PredictedAQI       *float64     `json:"predicted_aqi"`
	MedianAQI          *float64     `json:"median_aqi"`
	PredictedPM25      *float64     `json:"predicted_pm25"`
	MedianPM25         *float64     `json:"median_pm25"`
	Category           string       `json:"category"`
	CategoryColor      string       `json:"category_color"`
	Severity           string       `json:"severity"`
	ConfidenceInterval Bounds       `json:"confidence_interval"`
	LikelyRange        Bounds       `json:"likely_range"`
	StdDev             float64      `json:"std_dev"`
	AQIStats           *SeriesStats `json:"aqi_stats"`
	PM25Stats          *SeriesStats `json:"pm25_stats"`
}

// PrimaryValue returns the headline predicted value: AQI when available,
// otherwise PM2.5. ok is false when neither series has data.
func (p PredictionResult) PrimaryValue() (value float64, ok bool) {
	if p.PredictedAQI != nil {
		return *p.PredictedAQI, true
	}
	if p.PredictedPM25 != nil {
		return *p.PredictedPM25, true
	}
	return 0, false
}

// YearBreakdownRow compares one historical year's reading on the target day
// against that year's mean.
type YearBreakdownRow struct {
	Year           int      `json:"year"`
	ExactDate      string   `json:"exact_date"`
	DayAQI         *float64 `json:"day_aqi"`
	DayPM25        *float64 `json:"day_pm25"`
	YearAQIMean    *float64 `json:"year_aqi_mean"`
	YearPM25Mean   float64  `json:"year_pm25_mean"`
	YearTotalDays  int      `json:"year_total_days"`
	Deviation      float64  `json:"deviation"`
	DeviationPct   float64  `json:"deviation_pct"`
	ZScore         float64  `json:"z_score"`
	Interpretation string   `json:"interpretation"`
}

// EvaluationStep is one line of the method explanation.
type EvaluationStep struct {
	Step   int    `json:"step"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// DataQuality describes the sample behind a prediction.
type DataQuality struct {
	SampleSize   int   `json:"sample_size"`
	YearsCovered []int `json:"years_covered"`
	WindowDays   int   `json:"window_days"`
}

// YearSpan returns the first and last year covered. ok is false when no years
// are listed.
func (d DataQuality) YearSpan() (first, last int, ok bool) {
	if len(d.YearsCovered) == 0 {
		return 0, 0, false
	}
	first, last = d.YearsCovered[0], d.YearsCovered[0]
	for _, y := range d.YearsCovered[1:] {
		first = min(first, y)
		last = max(last, y)
	}
	return first, last, true
}

// Evaluation explains how a prediction was produced.
type Evaluation struct {
	Method      string           `json:"method"`
	Description string           `json:"description"`
	Steps       []EvaluationStep `json:"steps"`
	DataQuality DataQuality      `json:"data_quality"`
}

// MethodStatus is a placeholder block for prediction methods not yet live.
type MethodStatus struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

// AnchorPrediction is the full /predict-anchor response.
type AnchorPrediction struct {
	Prediction      PredictionResult   `json:"prediction"`
	YearlyBreakdown []YearBreakdownRow `json:"yearly_breakdown"`
	Evaluation      Evaluation         `json:"evaluation"`
	Method2Status   MethodStatus       `json:"method2_status"`
}
