package view

import (
	"log/slog"
	"sync"
	"time"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// Session is one user's set of views: the three remote-data loaders and the
// mitigation simulation.
type Session struct {
	ID        string
	CreatedAt time.Time

	Insights   *Loader[domain.AirQualityReading]
	Forecast   *Loader[[]domain.ForecastPoint]
	Prediction *Loader[domain.AnchorPrediction]

	// transitions orders a simulation change together with its event.
	transitions sync.Mutex

	mu       sync.Mutex
	lastSeen time.Time
	sim      domain.Simulation
}

func newSession(id string, now time.Time, policy Policy, metrics *observability.Metrics, logger *slog.Logger) *Session {
	logger = logger.With("session", id)
	return &Session{
		ID:         id,
		CreatedAt:  now,
		Insights:   NewLoader[domain.AirQualityReading]("insights", policy, metrics, logger),
		Forecast:   NewLoader[[]domain.ForecastPoint]("forecast", policy, metrics, logger),
		Prediction: NewLoader[domain.AnchorPrediction]("prediction", policy, metrics, logger),
		lastSeen:   now,
		sim:        domain.NewSimulation(domain.DefaultInitialAQI),
	}
}

// Simulation returns the current simulation snapshot.
func (s *Session) Simulation() domain.Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sim
}

// updateSimulation applies fn atomically and returns the new snapshot.
func (s *Session) updateSimulation(fn func(domain.Simulation) domain.Simulation) domain.Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sim = fn(s.sim)
	return s.sim
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen reports when the session was last accessed.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
