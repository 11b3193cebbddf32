package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// maxErrorBody caps how much of a failed response is read for its detail.
const maxErrorBody = 64 << 10

// Client implements domain.Backend against the Veridian prediction API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a prediction API client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// Current fetches the live reading for a city.
func (c *Client) Current(ctx context.Context, city string) (domain.AirQualityReading, error) {
	var out domain.AirQualityReading
	err := c.get(ctx, "/current", url.Values{"city": {city}}, domain.MsgCurrentFailed, &out)
	return out, err
}

// Forecast fetches the daily forecast series.
func (c *Client) Forecast(ctx context.Context) ([]domain.ForecastPoint, error) {
	var out []domain.ForecastPoint
	err := c.get(ctx, "/forecast", nil, domain.MsgForecastFailed, &out)
	return out, err
}

// PredictAnchor fetches the historical-anchor prediction for a date and city.
func (c *Client) PredictAnchor(ctx context.Context, date, city string) (domain.AnchorPrediction, error) {
	var out domain.AnchorPrediction
	params := url.Values{"date": {date}}
	if city != "" {
		params.Set("city", city)
	}
	err := c.get(ctx, "/predict-anchor", params, domain.MsgPredictFailed, &out)
	return out, err
}

// Cities fetches the list of cities supported by PredictAnchor.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	var out struct {
		Cities []string `json:"cities"`
	}
	err := c.get(ctx, "/cities", nil, domain.MsgCitiesFailed, &out)
	return out.Cities, err
}

// CheckReadiness probes the API root. It satisfies the HTTP server's
// readiness contract.
func (c *Client) CheckReadiness(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.get(ctx, "/", nil, "prediction API unavailable", &out)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, fallback string, out any) error {
	label := endpointLabel(endpoint)
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.BackendDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.BackendRequests.WithLabelValues(label, "network_error").Inc()
		c.logger.Warn("backend request failed", "endpoint", endpoint, "error", err)
		return &domain.FetchError{Kind: domain.FetchNetwork, Endpoint: endpoint, Message: domain.MsgConnectFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := extractDetail(body)
		if msg == "" {
			msg = fallback
		}
		c.metrics.BackendRequests.WithLabelValues(label, "status_error").Inc()
		c.logger.Warn("backend returned error status",
			"endpoint", endpoint,
			"status", resp.StatusCode,
			"detail", msg,
		)
		return &domain.FetchError{Kind: domain.FetchStatus, Endpoint: endpoint, Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.BackendRequests.WithLabelValues(label, "decode_error").Inc()
		return &domain.FetchError{Kind: domain.FetchDecode, Endpoint: endpoint, Status: resp.StatusCode, Message: domain.MsgMalformedResult, Err: err}
	}

	c.metrics.BackendRequests.WithLabelValues(label, "success").Inc()
	c.logger.Debug("backend request", "endpoint", endpoint, "duration", time.Since(start))
	return nil
}

// extractDetail pulls a human-readable message from an error body. The API
// sends {"detail": "..."} for handled errors and {"detail": [{"msg": ...}]}
// for request validation failures.
func extractDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func endpointLabel(endpoint string) string {
	switch endpoint {
	case "/":
		return "status"
	case "/predict-anchor":
		return "predict_anchor"
	default:
		return strings.TrimPrefix(endpoint, "/")
	}
}
