// Command mockapi serves deterministic fixtures shaped like the Veridian
// prediction API so the server and CLI can run without the real backend.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :8000
//	VERIDIAN_API_URL=http://localhost:8000 go run ./cmd/veridian current --city Delhi
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
)

var cities = []string{"Delhi", "Mumbai", "Kolkata", "Chennai", "Bengaluru", "Hyderabad", "Lucknow", "Patna"}

// baseAQI is the typical level per city; lookups are case-insensitive.
var baseAQI = map[string]float64{
	"delhi": 210, "mumbai": 120, "kolkata": 160, "chennai": 85,
	"bengaluru": 70, "hyderabad": 95, "lucknow": 190, "patna": 200,
}

var conditions = []string{"Haze", "Smoke", "Clear", "Partly Cloudy", "Mist"}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("mock prediction API listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("mock server failed", "error", err)
		os.Exit(1)
	}
}

func newRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/current", handleCurrent).Methods(http.MethodGet)
	r.HandleFunc("/forecast", handleForecast).Methods(http.MethodGet)
	r.HandleFunc("/predict-anchor", handlePredict).Methods(http.MethodGet)
	r.HandleFunc("/cities", handleCities).Methods(http.MethodGet)
	return r
}

func handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Veridian API is running"})
}

func handleCurrent(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	base, ok := lookup(city)
	if !ok {
		writeDetail(w, http.StatusNotFound, "City not found")
		return
	}
	rng := seeded(city)
	writeJSON(w, http.StatusOK, domain.AirQualityReading{
		Location:  city,
		AQI:       math.Round(base + rng.NormFloat64()*15),
		PM25:      round1(base * 0.55),
		PM10:      round1(base * 0.8),
		NO2:       round1(20 + rng.Float64()*40),
		Temp:      round1(18 + rng.Float64()*14),
		Condition: conditions[rng.IntN(len(conditions))],
		Humidity:  math.Round(40 + rng.Float64()*40),
		WindSpeed: round1(1 + rng.Float64()*6),
	})
}

func handleForecast(w http.ResponseWriter, _ *http.Request) {
	rng := seeded("forecast")
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	points := make([]domain.ForecastPoint, len(days))
	for i, d := range days {
		points[i] = domain.ForecastPoint{Day: d, AQI: math.Round(80 + rng.Float64()*120), Type: "forecast"}
	}
	writeJSON(w, http.StatusOK, points)
}

func handlePredict(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := time.Parse(domain.DateLayout, q.Get("date"))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"query", "date"}, "msg": "Invalid date format. Use YYYY-MM-DD"}},
		})
		return
	}
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		city = "Delhi"
	}
	base, ok := lookup(city)
	if !ok {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("No historical data for %s", city))
		return
	}
	writeJSON(w, http.StatusOK, anchorPrediction(date, city, base))
}

func handleCities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"cities": cities})
}

// anchorPrediction builds a prediction from five synthetic years of the same
// calendar day.
func anchorPrediction(date time.Time, city string, base float64) domain.AnchorPrediction {
	rng := seeded(city + date.Format("01-02"))
	const years = 5

	rows := make([]domain.YearBreakdownRow, 0, years)
	values := make([]float64, 0, years)
	covered := make([]int, 0, years)
	for i := range years {
		year := date.Year() - years + i
		mean := base + rng.NormFloat64()*10
		day := math.Max(5, base+rng.NormFloat64()*60)
		dev := day - mean
		z := dev / 60
		rows = append(rows, domain.YearBreakdownRow{
			Year:          year,
			ExactDate:     time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).Format(domain.DateLayout),
			DayAQI:        ptr(round1(day)),
			DayPM25:       ptr(round1(day * 0.55)),
			YearAQIMean:   ptr(round1(mean)),
			YearPM25Mean:  round1(mean * 0.55),
			YearTotalDays: 365,
			Deviation:     round1(dev),
			DeviationPct:  round1(dev / mean * 100),
			ZScore:        math.Round(z*100) / 100,
		})
		values = append(values, day)
		covered = append(covered, year)
	}

	mean, sd := meanStd(values)
	median := slices.Sorted(slices.Values(values))[years/2]
	margin := 1.96 * sd / math.Sqrt(years)
	cat := domain.Classify(mean)

	return domain.AnchorPrediction{
		Prediction: domain.PredictionResult{
			Date:               date.Format(domain.DateLayout),
			City:               city,
			DisplayDate:        date.Format("January 02, 2006"),
			PrimaryMetric:      "aqi",
			PredictedAQI:       ptr(round1(mean)),
			MedianAQI:          ptr(round1(median)),
			PredictedPM25:      ptr(round1(mean * 0.55)),
			MedianPM25:         ptr(round1(median * 0.55)),
			Category:           cat.Label,
			CategoryColor:      cat.Color,
			Severity:           strings.ToLower(cat.Tier.String()),
			ConfidenceInterval: domain.Bounds{Lower: round1(mean - margin), Upper: round1(mean + margin)},
			LikelyRange:        domain.Bounds{Lower: round1(mean - sd), Upper: round1(mean + sd)},
			StdDev:             round1(sd),
			AQIStats: &domain.SeriesStats{
				Mean: round1(mean), Median: round1(median), StdDev: round1(sd), SampleSize: years,
			},
		},
		YearlyBreakdown: rows,
		Evaluation: domain.Evaluation{
			Method:      "Historical Anchor",
			Description: "Averages readings for the same calendar day across previous years.",
			Steps: []domain.EvaluationStep{
				{Step: 1, Title: "Collect", Detail: "Pull the matching day from each year."},
				{Step: 2, Title: "Aggregate", Detail: "Compute mean, median and spread."},
				{Step: 3, Title: "Bound", Detail: "Derive a 95% confidence interval."},
			},
			DataQuality: domain.DataQuality{SampleSize: years, YearsCovered: covered},
		},
		Method2Status: domain.MethodStatus{
			Name: "Seasonal model", Status: "coming_soon", Description: "Not yet available.",
		},
	}
}

func lookup(city string) (float64, bool) {
	v, ok := baseAQI[strings.ToLower(city)]
	return v, ok
}

// seeded returns a generator whose sequence depends only on key.
func seeded(key string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.ToLower(key)))
	s := h.Sum64()
	return rand.New(rand.NewPCG(s, s>>1))
}

func meanStd(xs []float64) (mean, sd float64) {
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	for _, x := range xs {
		sd += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sd / float64(len(xs)))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func ptr(v float64) *float64 { return &v }

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
