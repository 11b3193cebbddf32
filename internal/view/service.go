package view

import (
	"context"
	"log/slog"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// Service drives the views of a session against the prediction API.
type Service struct {
	backend     domain.Backend
	publisher   domain.EventPublisher
	store       *Store
	defaultCity string
	anchor      domain.Position
	rand        domain.Float64Source
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sends simulation transitions to p.
func WithPublisher(p domain.EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithAnchor sets the auto-deploy centre.
func WithAnchor(p domain.Position) Option {
	return func(s *Service) { s.anchor = p }
}

// WithRand sets the jitter source for auto-deploy.
func WithRand(src domain.Float64Source) Option {
	return func(s *Service) { s.rand = src }
}

// WithDefaultCity sets the city loaded when a session opens.
func WithDefaultCity(city string) Option {
	return func(s *Service) { s.defaultCity = city }
}

// NewService creates a view service.
func NewService(backend domain.Backend, store *Store, metrics *observability.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		backend:     backend,
		store:       store,
		defaultCity: "Delhi",
		anchor:      domain.DefaultAnchor,
		metrics:     metrics,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session looks up a live session.
func (s *Service) Session(id string) (*Session, error) {
	return s.store.Get(id)
}

// Open creates a session and starts its initial loads: current conditions
// for the default city and the forecast.
func (s *Service) Open(ctx context.Context) *Session {
	sess := s.store.Create()
	s.SearchInsights(ctx, sess, s.defaultCity)
	s.LoadForecast(ctx, sess)
	return sess
}

// SearchInsights fetches current conditions for city. An empty city is
// rejected without contacting the backend.
func (s *Service) SearchInsights(ctx context.Context, sess *Session, city string) Ticket {
	city, err := domain.ValidateCity(city)
	if err != nil {
		return sess.Insights.Reject(err)
	}
	return sess.Insights.Start(ctx, func(ctx context.Context) (domain.AirQualityReading, error) {
		return s.backend.Current(ctx, city)
	})
}

// LoadForecast fetches the forecast series.
func (s *Service) LoadForecast(ctx context.Context, sess *Session) Ticket {
	return sess.Forecast.Start(ctx, s.backend.Forecast)
}

// Predict fetches the historical-anchor prediction. Missing or malformed
// input is rejected without contacting the backend.
func (s *Service) Predict(ctx context.Context, sess *Session, date, city string) Ticket {
	parsed, city, err := domain.ValidatePredictionRequest(date, city)
	if err != nil {
		return sess.Prediction.Reject(err)
	}
	day := parsed.Format(domain.DateLayout)
	return sess.Prediction.Start(ctx, func(ctx context.Context) (domain.AnchorPrediction, error) {
		return s.backend.PredictAnchor(ctx, day, city)
	})
}

// Cities lists the cities available for prediction.
func (s *Service) Cities(ctx context.Context) ([]string, error) {
	return s.backend.Cities(ctx)
}

// ResetSimulation starts the session's simulation over from raw, the
// unparsed initial AQI.
func (s *Service) ResetSimulation(ctx context.Context, sess *Session, raw string) SimulationView {
	sess.transitions.Lock()
	defer sess.transitions.Unlock()

	initial := domain.ParseInitialAQI(raw)
	sim := sess.updateSimulation(func(domain.Simulation) domain.Simulation {
		return domain.NewSimulation(initial)
	})
	s.publish(ctx, domain.NewSimulationEvent(sess.ID, domain.SimulationReset, sim, nil))
	return NewSimulationView(sim)
}

// PlaceUnit adds one unit at p.
func (s *Service) PlaceUnit(ctx context.Context, sess *Session, p domain.Position) SimulationView {
	sess.transitions.Lock()
	defer sess.transitions.Unlock()

	sim := sess.updateSimulation(func(cur domain.Simulation) domain.Simulation {
		return cur.PlaceUnit(p)
	})
	s.metrics.SimulationUnitsPlaced.Inc()
	s.publish(ctx, domain.NewSimulationEvent(sess.ID, domain.SimulationUnitPlaced, sim, []domain.Position{p}))
	return NewSimulationView(sim)
}

// AutoDeploy places every unit still required as one transition. Nothing is
// placed or published when the target is already met.
func (s *Service) AutoDeploy(ctx context.Context, sess *Session) SimulationView {
	sess.transitions.Lock()
	defer sess.transitions.Unlock()

	var added []domain.Position
	sim := sess.updateSimulation(func(cur domain.Simulation) domain.Simulation {
		var next domain.Simulation
		next, added = cur.AutoDeployRemaining(s.anchor, s.rand)
		return next
	})
	if len(added) == 0 {
		return NewSimulationView(sim)
	}
	s.metrics.SimulationUnitsPlaced.Add(float64(len(added)))
	s.publish(ctx, domain.NewSimulationEvent(sess.ID, domain.SimulationUnitsDeployed, sim, added))
	return NewSimulationView(sim)
}

// publish is best effort: a failed publish is logged and never rolls back
// the simulation. Callers hold the session's transitions lock so a session's
// events are published in the order its state changed.
func (s *Service) publish(ctx context.Context, event domain.SimulationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("simulation event not published",
			"session", event.SessionID,
			"kind", event.Kind,
			"error", err,
		)
	}
}
