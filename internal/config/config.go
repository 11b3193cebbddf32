package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Prediction API.
	BackendURL       string
	BackendTimeout   time.Duration
	BackendCacheSize int
	BackendCacheTTL  time.Duration

	// Optional shared response cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// View defaults.
	DefaultCity string
	AnchorLat   float64
	AnchorLng   float64
	SessionTTL  time.Duration

	// Simulation change events.
	KafkaBrokers     []string
	SimEventsTopic   string
	SimEventsEnabled bool

	// Researcher access.
	ResearchPasscodeHash string
	ResearchTokenSecret  string
	ResearchTokenTTL     time.Duration
}

// ResearchEnabled reports whether the researcher area can grant access.
func (c *Config) ResearchEnabled() bool {
	return c.ResearchPasscodeHash != "" && c.ResearchTokenSecret != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	backendTimeout, err := parsePositiveDuration("BACKEND_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("BACKEND_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	sessionTTL, err := parsePositiveDuration("SESSION_TTL", "2h")
	if err != nil {
		return nil, err
	}
	tokenTTL, err := parsePositiveDuration("RESEARCH_TOKEN_TTL", "12h")
	if err != nil {
		return nil, err
	}

	anchorLat, err := parseFloat("SIM_ANCHOR_LAT", "28.6139")
	if err != nil {
		return nil, err
	}
	anchorLng, err := parseFloat("SIM_ANCHOR_LNG", "77.2090")
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	simEventsEnabled := len(brokers) > 0
	if v := os.Getenv("SIM_EVENTS_ENABLED"); v != "" {
		simEventsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		BackendURL:       sharedcfg.EnvOrDefault("VERIDIAN_API_URL", "http://127.0.0.1:8000"),
		BackendTimeout:   backendTimeout,
		BackendCacheSize: parseCacheSize(),
		BackendCacheTTL:  cacheTTL,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		DefaultCity: sharedcfg.EnvOrDefault("DEFAULT_CITY", "Delhi"),
		AnchorLat:   anchorLat,
		AnchorLng:   anchorLng,
		SessionTTL:  sessionTTL,

		KafkaBrokers:     brokers,
		SimEventsTopic:   sharedcfg.EnvOrDefault("SIM_EVENTS_TOPIC", "simulation-events"),
		SimEventsEnabled: simEventsEnabled,

		ResearchPasscodeHash: os.Getenv("RESEARCH_PASSCODE_HASH"),
		ResearchTokenSecret:  os.Getenv("RESEARCH_TOKEN_SECRET"),
		ResearchTokenTTL:     tokenTTL,
	}

	u, err := url.Parse(cfg.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid VERIDIAN_API_URL")
	}
	if cfg.AnchorLat < -90 || cfg.AnchorLat > 90 {
		return nil, errors.New("SIM_ANCHOR_LAT must be within [-90, 90]")
	}
	if cfg.AnchorLng < -180 || cfg.AnchorLng > 180 {
		return nil, errors.New("SIM_ANCHOR_LNG must be within [-180, 180]")
	}
	if cfg.SimEventsEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("SIM_EVENTS_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.SimEventsEnabled && cfg.SimEventsTopic == "" {
		return nil, errors.New("SIM_EVENTS_TOPIC is required")
	}
	if (cfg.ResearchPasscodeHash == "") != (cfg.ResearchTokenSecret == "") {
		return nil, errors.New("RESEARCH_PASSCODE_HASH and RESEARCH_TOKEN_SECRET must be set together")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, def string) (float64, error) {
	v, err := strconv.ParseFloat(sharedcfg.EnvOrDefault(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return v, nil
}

func parseCacheSize() int {
	if s := os.Getenv("BACKEND_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
