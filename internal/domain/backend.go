package domain

import (
	"context"
	"errors"
	"fmt"
)

// Backend reads air-quality data from the prediction API.
type Backend interface {
	// Current returns the live reading for a city.
	Current(ctx context.Context, city string) (AirQualityReading, error)

	// Forecast returns the daily forecast series in date order.
	Forecast(ctx context.Context) ([]ForecastPoint, error)

	// PredictAnchor returns the historical-anchor prediction for a YYYY-MM-DD date.
	PredictAnchor(ctx context.Context, date, city string) (AnchorPrediction, error)

	// Cities lists the cities the prediction endpoint supports.
	Cities(ctx context.Context) ([]string, error)
}

// User-facing messages for fetch failures.
const (
	MsgConnectFailed   = "Could not connect to the air-quality service. Is the API running?"
	MsgCurrentFailed   = "Could not fetch data. City not found?"
	MsgForecastFailed  = "Could not load the forecast."
	MsgPredictFailed   = "Prediction failed."
	MsgCitiesFailed    = "Could not load the city list."
	MsgMalformedResult = "The air-quality service returned an unreadable response."
)

// FetchErrorKind classifies a failed backend request.
type FetchErrorKind string

const (
	FetchNetwork FetchErrorKind = "network" // connection refused, timeout, DNS
	FetchStatus  FetchErrorKind = "status"  // non-2xx response
	FetchDecode  FetchErrorKind = "decode"  // 2xx with a body we could not parse
)

// FetchError is returned by Backend implementations. Message is always safe to
// show to a user.
type FetchError struct {
	Kind     FetchErrorKind
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchStatus:
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError reports input rejected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UserMessage extracts the text a view should display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return MsgConnectFailed
	}
	return err.Error()
}
