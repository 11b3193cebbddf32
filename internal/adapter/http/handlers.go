package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/research"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/view"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 16

// API serves the view sessions and the researcher area.
type API struct {
	views       *view.Service
	gate        *research.Gate
	waitTimeout time.Duration
	logger      *slog.Logger
}

// NewAPI creates the view API. gate may be nil, in which case researcher
// routes answer 503. waitTimeout bounds how long a POST waits for its fetch
// before returning the loading state.
func NewAPI(views *view.Service, gate *research.Gate, waitTimeout time.Duration, logger *slog.Logger) *API {
	return &API{views: views, gate: gate, waitTimeout: waitTimeout, logger: logger}
}

// Register mounts the API routes on r.
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/sessions", a.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", a.withSession(a.handleGetSession)).Methods(http.MethodGet)

	r.HandleFunc("/sessions/{id}/insights", a.withSession(a.handleSearchInsights)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/insights", a.withSession(a.handleGetInsights)).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/forecast", a.withSession(a.handleLoadForecast)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/forecast", a.withSession(a.handleGetForecast)).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/prediction", a.withSession(a.handlePredict)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/prediction", a.withSession(a.handleGetPrediction)).Methods(http.MethodGet)

	r.HandleFunc("/sessions/{id}/simulation", a.withSession(a.handleResetSimulation)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/simulation", a.withSession(a.handleGetSimulation)).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/simulation/units", a.withSession(a.handlePlaceUnit)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/simulation/auto-deploy", a.withSession(a.handleAutoDeploy)).Methods(http.MethodPost)

	r.HandleFunc("/cities", a.handleCities).Methods(http.MethodGet)

	r.HandleFunc("/research/login", a.handleResearchLogin).Methods(http.MethodPost)
	r.Handle("/research/projects", requireCapability(a.gate)(http.HandlerFunc(a.handleProjects))).Methods(http.MethodGet)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *view.Session)

func (a *API) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.views.Session(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r, sess)
	}
}

// waitContext bounds a handler's wait for an in-flight fetch.
func (a *API) waitContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), a.waitTimeout)
}

type sessionResponse struct {
	ID         string              `json:"id"`
	CreatedAt  time.Time           `json:"created_at"`
	Insights   view.InsightsView   `json:"insights"`
	Forecast   view.ForecastView   `json:"forecast"`
	Prediction view.PredictionView `json:"prediction"`
	Simulation view.SimulationView `json:"simulation"`
}

func newSessionResponse(sess *view.Session) sessionResponse {
	return sessionResponse{
		ID:         sess.ID,
		CreatedAt:  sess.CreatedAt,
		Insights:   view.NewInsightsView(sess.Insights.State()),
		Forecast:   view.NewForecastView(sess.Forecast.State()),
		Prediction: view.NewPredictionView(sess.Prediction.State()),
		Simulation: view.NewSimulationView(sess.Simulation()),
	}
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := a.views.Open(r.Context())
	writeJSON(w, http.StatusCreated, newSessionResponse(sess))
}

func (a *API) handleGetSession(w http.ResponseWriter, _ *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, newSessionResponse(sess))
}

func (a *API) handleSearchInsights(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	tk := a.views.SearchInsights(r.Context(), sess, r.URL.Query().Get("city"))
	ctx, cancel := a.waitContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, view.NewInsightsView(sess.Insights.Wait(ctx, tk)))
}

func (a *API) handleGetInsights(w http.ResponseWriter, _ *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, view.NewInsightsView(sess.Insights.State()))
}

func (a *API) handleLoadForecast(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	tk := a.views.LoadForecast(r.Context(), sess)
	ctx, cancel := a.waitContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, view.NewForecastView(sess.Forecast.Wait(ctx, tk)))
}

func (a *API) handleGetForecast(w http.ResponseWriter, _ *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, view.NewForecastView(sess.Forecast.State()))
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	q := r.URL.Query()
	tk := a.views.Predict(r.Context(), sess, q.Get("date"), q.Get("city"))
	ctx, cancel := a.waitContext(r)
	defer cancel()
	writeJSON(w, http.StatusOK, view.NewPredictionView(sess.Prediction.Wait(ctx, tk)))
}

func (a *API) handleGetPrediction(w http.ResponseWriter, _ *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, view.NewPredictionView(sess.Prediction.State()))
}

func (a *API) handleResetSimulation(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, a.views.ResetSimulation(r.Context(), sess, r.URL.Query().Get("aqi")))
}

func (a *API) handleGetSimulation(w http.ResponseWriter, _ *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, view.NewSimulationView(sess.Simulation()))
}

func (a *API) handlePlaceUnit(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	var pos domain.Position
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pos); err != nil {
		writeError(w, http.StatusBadRequest, "body must be {\"lat\": number, \"lng\": number}")
		return
	}
	writeJSON(w, http.StatusOK, a.views.PlaceUnit(r.Context(), sess, pos))
}

func (a *API) handleAutoDeploy(w http.ResponseWriter, r *http.Request, sess *view.Session) {
	writeJSON(w, http.StatusOK, a.views.AutoDeploy(r.Context(), sess))
}

func (a *API) handleCities(w http.ResponseWriter, r *http.Request) {
	cities, err := a.views.Cities(r.Context())
	if err != nil {
		a.logger.Warn("list cities failed", "error", err)
		writeError(w, http.StatusBadGateway, domain.UserMessage(err))
		return
	}
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cities": cities})
}

type loginRequest struct {
	Passcode string `json:"passcode"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleResearchLogin(w http.ResponseWriter, r *http.Request) {
	if a.gate == nil {
		writeError(w, http.StatusServiceUnavailable, "research access is not configured")
		return
	}
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, expiresAt, err := a.gate.Login(req.Passcode)
	switch {
	case errors.Is(err, research.ErrInvalidPasscode):
		writeError(w, http.StatusUnauthorized, "Invalid Access Code")
		return
	case err != nil:
		a.logger.Error("issue research token", "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

func (a *API) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := research.Projects(research.FromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]research.Project{"projects": projects})
}
