//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodesylab/slowslip/internal/adapter/kafka"
	"github.com/geodesylab/slowslip/internal/adapter/posfile"
	"github.com/geodesylab/slowslip/internal/config"
	"github.com/geodesylab/slowslip/internal/detect"
	"github.com/geodesylab/slowslip/internal/domain"
	"github.com/geodesylab/slowslip/internal/observability"
	"github.com/geodesylab/slowslip/internal/pipeline"
)

const testCatalogTopic = "test-catalog"

// writeRampFixture builds a three-station network fixture: two stations on
// southern Vancouver Island with a -6 mm transient a few days out of phase,
// and one distant quiet station. Noise-free, so the detection outcome is exact.
func writeRampFixture(t *testing.T) string {
	t.Helper()

	const days = 300
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	file := posfile.NetworkFile{Epochs: make([]time.Time, days)}
	for d := range file.Epochs {
		file.Epochs[d] = epoch.AddDate(0, 0, d)
	}

	type site struct {
		name     string
		lat, lon float64
		onset    int
	}
	sites := []site{
		{"ALBH", 48.39, -123.49, 100},
		{"SC04", 48.39, -123.39, 103}, // about 7 km east of ALBH
		{"FARB", 45.00, -110.00, -1},  // far outside the network
	}

	for _, s := range sites {
		sf := posfile.StationFile{
			Name:       s.name,
			Lat:        s.lat,
			Lon:        s.lon,
			Observed:   make([]bool, days),
			East:       make([]float64, days),
			EastSigma:  make([]float64, days),
			North:      make([]float64, days),
			NorthSigma: make([]float64, days),
		}
		for d := 0; d < days; d++ {
			sf.Observed[d] = true
			sf.EastSigma[d] = 1.5
			sf.NorthSigma[d] = 1.5
			if s.onset >= 0 {
				switch {
				case d >= s.onset+30:
					sf.East[d] = -6.0
				case d >= s.onset:
					sf.East[d] = -0.2 * float64(d-s.onset)
				}
			}
		}
		file.Stations = append(file.Stations, sf)
	}

	dir := t.TempDir()
	data, err := json.Marshal(file)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "network.json"), data, 0o644))
	return dir
}

// TestCatalogPublishing runs the full load-detect-publish cycle against real
// Kafka and verifies the published catalog event, then re-runs and checks that
// redelivery carries the same deterministic key.
func TestCatalogPublishing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testCatalogTopic)

	cfg := &config.Config{
		KafkaBrokers:   []string{broker},
		KafkaSinkTopic: testCatalogTopic,
	}

	params := detect.DefaultParams(5, 0.1)
	params.MinStations = 2
	detector, err := detect.New(params, detect.NewScoreCache(), discardLogger())
	require.NoError(t, err)

	loader := posfile.NewLoader(writeRampFixture(t), discardLogger())
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(loader, detector, writer, discardLogger(), metrics, 0)

	require.NoError(t, p.Run(ctx))
	require.NoError(t, p.CheckReadiness(ctx))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testCatalogTopic,
		GroupID:     fmt.Sprintf("test-catalog-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	msg, err := consumer.ReadMessage(readCtx)
	readCancel()
	require.NoError(t, err, "read from catalog topic")

	var event domain.CatalogEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, event.ID, string(msg.Key))
	assert.Regexp(t, `^sse-[0-9a-f]{16}$`, event.ID)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")
	assert.Equal(t, "1", headers["stations"])

	// The transient spans mid-April: both transient stations overlap from day
	// 108, and only SC04's own detection starts inside the spike.
	require.Len(t, event.Stations, 1)
	est := event.Stations[0]
	assert.Equal(t, "SC04", est.Station)
	assert.Equal(t, 21, est.DurationDays)
	require.NotNil(t, est.East)
	assert.InDelta(t, -4.0, est.East.DisplacementMM, 1e-6)

	// Second cycle over the same input: same span, same stations, same key.
	require.NoError(t, p.Run(ctx))
	readCtx, readCancel = context.WithTimeout(ctx, 30*time.Second)
	again, err := consumer.ReadMessage(readCtx)
	readCancel()
	require.NoError(t, err, "read redelivered catalog event")
	assert.Equal(t, msg.Key, again.Key, "deterministic IDs must survive re-detection")
}
