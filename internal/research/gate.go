package research

import (
	"log/slog"
	"time"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
)

// defaultSubject identifies tokens issued through the shared passcode.
const defaultSubject = "researcher"

// Gate exchanges a passcode for a signed token and turns tokens back into
// capabilities.
type Gate struct {
	verifier Verifier
	issuer   *Issuer
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewGate creates a researcher gate.
func NewGate(verifier Verifier, issuer *Issuer, metrics *observability.Metrics, logger *slog.Logger) *Gate {
	return &Gate{verifier: verifier, issuer: issuer, metrics: metrics, logger: logger}
}

// Login verifies passcode and issues a token.
func (g *Gate) Login(passcode string) (string, time.Time, error) {
	if err := g.verifier.Verify(passcode); err != nil {
		g.metrics.ResearchLogins.WithLabelValues("denied").Inc()
		g.logger.Info("research login denied")
		return "", time.Time{}, err
	}
	token, expiresAt, err := g.issuer.Issue(defaultSubject)
	if err != nil {
		return "", time.Time{}, err
	}
	g.metrics.ResearchLogins.WithLabelValues("granted").Inc()
	g.logger.Info("research login granted", "expires_at", expiresAt)
	return token, expiresAt, nil
}

// Authorize validates a bearer token.
func (g *Gate) Authorize(token string) (Capability, error) {
	return g.issuer.Validate(token)
}
