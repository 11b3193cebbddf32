package domain

import (
	"fmt"
	"strings"
	"time"
)

// SafeForecastThreshold is the AQI below which a forecast day counts as safe.
const SafeForecastThreshold = 100

// Trend is the overall direction of a forecast series.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
)

// ForecastSummary is the local analysis shown beside the forecast chart.
type ForecastSummary struct {
	Days     int           `json:"days"`
	SafeDays int           `json:"safe_days"`
	Peak     ForecastPoint `json:"peak"`
	Trend    Trend         `json:"trend"`
}

// PeakLabel formats the peak day the way the dashboard shows it.
func (s ForecastSummary) PeakLabel() string {
	return fmt.Sprintf("%s (AQI %.0f)", s.Peak.Day, s.Peak.AQI)
}

// AnalyzeForecast summarises a forecast series. The trend compares the last
// point with the first; a flat series reads as falling. The last maximum
// wins ties for the peak. ok is false for an empty series.
func AnalyzeForecast(points []ForecastPoint) (ForecastSummary, bool) {
	if len(points) == 0 {
		return ForecastSummary{}, false
	}
	sum := ForecastSummary{Days: len(points), Peak: points[0], Trend: TrendFalling}
	for _, p := range points {
		if p.AQI < SafeForecastThreshold {
			sum.SafeDays++
		}
		if p.AQI >= sum.Peak.AQI {
			sum.Peak = p
		}
	}
	if points[len(points)-1].AQI > points[0].AQI {
		sum.Trend = TrendRising
	}
	return sum, true
}

// DateLayout is the backend's date format.
const DateLayout = "2006-01-02"

// ValidateCity trims a city name and rejects empty input.
func ValidateCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", &ValidationError{Field: "city", Message: "Please enter a city."}
	}
	return city, nil
}

// ValidatePredictionRequest checks a prediction request before it is sent.
func ValidatePredictionRequest(date, city string) (time.Time, string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, "", &ValidationError{Field: "date", Message: "Please select a date."}
	}
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, "", &ValidationError{Field: "date", Message: "Invalid date format. Use YYYY-MM-DD."}
	}
	city, err = ValidateCity(city)
	if err != nil {
		return time.Time{}, "", err
	}
	return parsed, city, nil
}
