// Command veridian is a terminal client for the air-quality views: current
// conditions, forecast, historical-anchor predictions, the mitigation
// simulator, and researcher access.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/adapter/backend"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/config"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/domain"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/observability"
	"github.com/dharmeshpriyadarshi/Veridian-and-Direction/internal/view"
)

var (
	apiURL     string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "veridian",
	Short: "Veridian - air-quality insights from the terminal",
	Long: `Veridian queries the air-quality prediction API and renders the same
views as the web dashboard: live conditions, the forecast, historical-anchor
predictions, and the mitigation simulator.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "prediction API base URL (overrides VERIDIAN_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print raw JSON instead of text")
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// app bundles what the subcommands need.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	views   *view.Service
	store   *view.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.BackendURL = apiURL
	}

	logger := cliLogger(cfg)
	metrics := observability.NewUnregisteredMetrics()
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout, metrics, logger)
	store := view.NewStore(time.Hour, metrics, logger)
	svc := view.NewService(client, store, metrics, logger,
		view.WithDefaultCity(cfg.DefaultCity),
		view.WithAnchor(domain.Position{Lat: cfg.AnchorLat, Lng: cfg.AnchorLng}),
	)
	return &app{cfg: cfg, logger: logger, metrics: metrics, views: svc, store: store}, nil
}

// cliLogger logs to the same stdout as command output, so only errors are
// shown unless LOG_LEVEL asks for more.
func cliLogger(cfg *config.Config) *slog.Logger {
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "error"
	}
	return observability.NewLogger(cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// failed turns an error view state into a command error.
func failed[T any](st view.State[T]) error {
	if st.Status == view.StatusError {
		return errors.New(st.Error)
	}
	if st.Status != view.StatusSuccess {
		return errors.New("request did not complete")
	}
	return nil
}
