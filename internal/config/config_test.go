package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "slowslip-catalog", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 24*time.Hour, cfg.DetectInterval)

	assert.Equal(t, 5, cfg.WindowHalfWidth)
	assert.Equal(t, 0.02, cfg.PropThresh)
	assert.Equal(t, 100.0, cfg.NeighborDistanceKm)
	assert.Equal(t, 10, cfg.MinStations)
	assert.Equal(t, 1.0, cfg.ScoreSign)
	assert.Equal(t, 10, cfg.MinDurationDays)
	assert.Equal(t, 0.1, cfg.CorroborationFrac)
	assert.Equal(t, "off", cfg.ReverseNeighborMode)
	assert.Equal(t, "east", cfg.Component)
}

func TestLoad_CustomEnvironment(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "cascadia-catalog")
	t.Setenv("WINDOW_HALF_WIDTH", "7")
	t.Setenv("PROP_THRESH", "0.05")
	t.Setenv("SCORE_SIGN", "-1")
	t.Setenv("REVERSE_NEIGHBOR_MODE", "inherit")
	t.Setenv("COMPONENT", "north")
	t.Setenv("DETECT_INTERVAL", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "cascadia-catalog", cfg.KafkaSinkTopic)
	assert.Equal(t, 7, cfg.WindowHalfWidth)
	assert.Equal(t, 0.05, cfg.PropThresh)
	assert.Equal(t, -1.0, cfg.ScoreSign)
	assert.Equal(t, "inherit", cfg.ReverseNeighborMode)
	assert.Equal(t, "north", cfg.Component)
	assert.Equal(t, time.Duration(0), cfg.DetectInterval)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric half-width", "WINDOW_HALF_WIDTH", "five"},
		{"non-numeric threshold", "PROP_THRESH", "two percent"},
		{"bad interval", "DETECT_INTERVAL", "daily"},
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon"},
		{"negative shutdown timeout", "SHUTDOWN_TIMEOUT", "-1s"},
		{"unknown inference mode", "REVERSE_NEIGHBOR_MODE", "maybe"},
		{"unknown component", "COMPONENT", "vertical"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, parseBrokers("a:9092,b:9092"))
	assert.Equal(t, []string{"a:9092"}, parseBrokers(" a:9092 , "))
	assert.Nil(t, parseBrokers(","))
}
