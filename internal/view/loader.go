package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// Status is the lifecycle of one view's remote data.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// Policy decides which response is shown when requests overlap.
type Policy int

const (
	// LatestRequestWins shows only the response to the most recently issued
	// request; earlier responses are discarded on arrival.
	LatestRequestWins Policy = iota

	// LastArrivalWins shows whichever response arrives last, regardless of
	// issue order.
	LastArrivalWins
)

// State is a snapshot of a loader. Exactly one of Error or Data is set when
// Status is error or success respectively; neither is set otherwise.
type State[T any] struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   *T     `json:"data,omitempty"`
	Seq    uint64 `json:"seq"`
}

// Ticket identifies one issued request.
type Ticket struct {
	Seq  uint64
	done chan struct{}
}

// Done is closed once the request has settled, whether or not its result was applied.
func (t Ticket) Done() <-chan struct{} { return t.done }

// Loader tracks the fetch state of one view. It is safe for concurrent use.
type Loader[T any] struct {
	name    string
	policy  Policy
	metrics *observability.Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	seq   uint64
	state State[T]
}

// NewLoader creates an idle loader. name labels metrics and logs.
func NewLoader[T any](name string, policy Policy, metrics *observability.Metrics, logger *slog.Logger) *Loader[T] {
	return &Loader[T]{
		name:    name,
		policy:  policy,
		metrics: metrics,
		logger:  logger,
		state:   State[T]{Status: StatusIdle},
	}
}

// Start issues a request. The loader enters loading, clearing any previous
// data or error, and fetch runs in its own goroutine. The fetch context keeps
// ctx's values but not its cancellation, so a caller that stops waiting does
// not abort the request.
func (l *Loader[T]) Start(ctx context.Context, fetch func(context.Context) (T, error)) Ticket {
	seq := l.begin()
	t := Ticket{Seq: seq, done: make(chan struct{})}
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(t.done)
		v, err := fetch(fetchCtx)
		l.settle(seq, v, err)
	}()
	return t
}

// Reject records a request that failed local validation. It supersedes any
// request in flight and is never dispatched.
func (l *Loader[T]) Reject(err error) Ticket {
	seq := l.begin()
	var zero T
	l.settle(seq, zero, err)
	t := Ticket{Seq: seq, done: make(chan struct{})}
	close(t.done)
	return t
}

// State returns the current snapshot.
func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Wait blocks until t settles or ctx is done, then returns the current state.
func (l *Loader[T]) Wait(ctx context.Context, t Ticket) State[T] {
	select {
	case <-t.done:
	case <-ctx.Done():
	}
	return l.State()
}

func (l *Loader[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.state = State[T]{Status: StatusLoading, Seq: l.seq}
	return l.seq
}

// settle applies a response. It reports whether the response was applied.
func (l *Loader[T]) settle(seq uint64, v T, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.policy == LatestRequestWins && seq != l.seq {
		l.metrics.StaleResponsesDiscarded.WithLabelValues(l.name).Inc()
		l.logger.Debug("discarding stale response", "view", l.name, "seq", seq, "latest", l.seq)
		return false
	}

	if err != nil {
		l.state = State[T]{Status: StatusError, Error: domain.UserMessage(err), Seq: seq}
		return true
	}
	l.state = State[T]{Status: StatusSuccess, Data: &v, Seq: seq}
	return true
}
