package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DataDir holds the network fixture consumed by the posfile loader.
	DataDir string
	// DetectInterval is the re-detection period; daily solutions arrive once
	// a day, so the default is 24h. Zero or negative means run once and exit.
	DetectInterval time.Duration

	// Detection parameters.
	WindowHalfWidth     int
	PropThresh          float64
	NeighborDistanceKm  float64
	MinStations         int
	ScoreSign           float64
	MinDurationDays     int
	CorroborationFrac   float64
	ReverseNeighborFrac float64
	ReverseNeighborMode string // off, exclude, inherit
	Component           string // east or north
}

// Load reads configuration from environment variables, applying defaults where
// unset. Invalid detection parameters fail here, before any per-station work.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	if shutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	detectInterval, err := parseDuration("DETECT_INTERVAL", "24h")
	if err != nil {
		return nil, err
	}

	halfWidth, err := parseInt("WINDOW_HALF_WIDTH", "5")
	if err != nil {
		return nil, err
	}
	propThresh, err := parseFloat("PROP_THRESH", "0.02")
	if err != nil {
		return nil, err
	}
	neighborKm, err := parseFloat("NEIGHBOR_DISTANCE_KM", "100")
	if err != nil {
		return nil, err
	}
	minStations, err := parseInt("MIN_STATIONS", "10")
	if err != nil {
		return nil, err
	}
	scoreSign, err := parseFloat("SCORE_SIGN", "1")
	if err != nil {
		return nil, err
	}
	minDuration, err := parseInt("MIN_DURATION_DAYS", "10")
	if err != nil {
		return nil, err
	}
	corrFrac, err := parseFloat("CORROBORATION_FRAC", "0.1")
	if err != nil {
		return nil, err
	}
	revFrac, err := parseFloat("REVERSE_NEIGHBOR_FRAC", "0.3333")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "slowslip-catalog"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		DataDir:         envOrDefault("DATA_DIR", "data"),
		DetectInterval:  detectInterval,

		WindowHalfWidth:     halfWidth,
		PropThresh:          propThresh,
		NeighborDistanceKm:  neighborKm,
		MinStations:         minStations,
		ScoreSign:           scoreSign,
		MinDurationDays:     minDuration,
		CorroborationFrac:   corrFrac,
		ReverseNeighborFrac: revFrac,
		ReverseNeighborMode: envOrDefault("REVERSE_NEIGHBOR_MODE", "off"),
		Component:           envOrDefault("COMPONENT", "east"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	switch cfg.ReverseNeighborMode {
	case "off", "exclude", "inherit":
	default:
		return nil, fmt.Errorf("invalid REVERSE_NEIGHBOR_MODE %q", cfg.ReverseNeighborMode)
	}
	switch cfg.Component {
	case "east", "north":
	default:
		return nil, fmt.Errorf("invalid COMPONENT %q", cfg.Component)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key, fallback string) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseFloat(key, fallback string) (float64, error) {
	v, err := strconv.ParseFloat(envOrDefault(key, fallback), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
