package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, observability.NewMetricsForTesting(), testLogger())
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_Current_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/current", r.URL.Path)
		assert.Equal(t, "New Delhi", r.URL.Query().Get("city"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"location": "New Delhi", "aqi": 182, "pm25": 96.5, "pm10": 140,
			"no2": 41.2, "temp": 24, "condition": "Haze", "humidity": 61, "windSpeed": 3.4,
		})
	}))
	defer srv.Close()

	reading, err := testClient(srv.URL).Current(context.Background(), "New Delhi")
	require.NoError(t, err)

	assert.Equal(t, "New Delhi", reading.Location)
	assert.InDelta(t, 182.0, reading.AQI, 1e-9)
	assert.InDelta(t, 96.5, reading.PM25, 1e-9)
	assert.Equal(t, "Haze", reading.Condition)
	assert.InDelta(t, 3.4, reading.WindSpeed, 1e-9)
}

func TestClient_Current_NotFoundUsesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "not found"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), "Atlantis")
	require.Error(t, err)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.FetchStatus, fe.Kind)
	assert.Equal(t, http.StatusNotFound, fe.Status)
	assert.Equal(t, "not found", domain.UserMessage(err))
}

func TestClient_Current_ErrorWithoutDetailFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Current(context.Background(), "Delhi")
	require.Error(t, err)
	assert.Equal(t, domain.MsgCurrentFailed, domain.UserMessage(err))
}

func TestClient_PredictAnchor_ValidationDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{
				{"loc": []string{"query", "date"}, "msg": "field required"},
			},
		})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PredictAnchor(context.Background(), "", "")
	require.Error(t, err)
	assert.Equal(t, "field required", domain.UserMessage(err))
}

func TestClient_PredictAnchor_Success(t *testing.T) {
	body, err := os.ReadFile("testdata/predict_anchor.json")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict-anchor", r.URL.Path)
		assert.Equal(t, "2026-11-05", r.URL.Query().Get("date"))
		assert.Equal(t, "Delhi", r.URL.Query().Get("city"))
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	got, err := testClient(srv.URL).PredictAnchor(context.Background(), "2026-11-05", "Delhi")
	require.NoError(t, err)

	require.NotNil(t, got.Prediction.PredictedAQI)
	assert.InDelta(t, 312.4, *got.Prediction.PredictedAQI, 1e-9)
	assert.Equal(t, "November 05, 2026", got.Prediction.DisplayDate)
	assert.InDelta(t, 280.1, got.Prediction.ConfidenceInterval.Lower, 1e-9)
	require.NotNil(t, got.Prediction.AQIStats)
	assert.Equal(t, 5, got.Prediction.AQIStats.SampleSize)
	assert.Nil(t, got.Prediction.PM25Stats)

	require.Len(t, got.YearlyBreakdown, 2)
	assert.Nil(t, got.YearlyBreakdown[1].DayAQI)
	assert.Nil(t, got.YearlyBreakdown[1].YearAQIMean)
	assert.Equal(t, []int{2021, 2022, 2023, 2024, 2025}, got.Evaluation.DataQuality.YearsCovered)
	assert.Equal(t, "coming_soon", got.Method2Status.Status)
}

func TestClient_PredictAnchor_OmitsEmptyCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasCity := r.URL.Query()["city"]
		assert.False(t, hasCity)
		writeJSON(t, w, http.StatusOK, map[string]any{})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).PredictAnchor(context.Background(), "2026-01-01", "")
	require.NoError(t, err)
}

func TestClient_Forecast_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		writeJSON(t, w, http.StatusOK, []map[string]any{
			{"day": "Mon", "aqi": 120, "type": "forecast"},
			{"day": "Tue", "aqi": 90, "type": "forecast"},
		})
	}))
	defer srv.Close()

	points, err := testClient(srv.URL).Forecast(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "Mon", points[0].Day)
	assert.InDelta(t, 90.0, points[1].AQI, 1e-9)
}

func TestClient_Cities_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{"cities": []string{"Delhi", "Mumbai"}})
	}))
	defer srv.Close()

	cities, err := testClient(srv.URL).Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Delhi", "Mumbai"}, cities)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Forecast(context.Background())
	require.Error(t, err)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.FetchDecode, fe.Kind)
	assert.Equal(t, domain.MsgMalformedResult, domain.UserMessage(err))
	assert.InDelta(t, 1, counterValue(t, c.metrics.BackendRequests.WithLabelValues("forecast", "decode_error")), 1e-9)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := testClient(url)
	_, err := c.Current(context.Background(), "Delhi")
	require.Error(t, err)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.FetchNetwork, fe.Kind)
	assert.Equal(t, domain.MsgConnectFailed, domain.UserMessage(err))
	assert.InDelta(t, 1, counterValue(t, c.metrics.BackendRequests.WithLabelValues("current", "network_error")), 1e-9)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, observability.NewMetricsForTesting(), testLogger())
	_, err := c.Forecast(context.Background())
	require.Error(t, err)

	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.FetchNetwork, fe.Kind)
}

func TestClient_CheckReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]string{"status": "Veridian API is running"})
	}))
	defer srv.Close()

	c := testClient(srv.URL + "/")
	require.NoError(t, c.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, counterValue(t, c.metrics.BackendRequests.WithLabelValues("status", "success")), 1e-9)
}

func TestExtractDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string detail", `{"detail":" City not found "}`, "City not found"},
		{"list detail", `{"detail":[{"msg":"a"},{"msg":"b"}]}`, "a; b"},
		{"missing detail", `{"error":"x"}`, ""},
		{"not json", `oops`, ""},
		{"object detail", `{"detail":{"code":1}}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractDetail([]byte(tt.body)))
		})
	}
}
