package pulse

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsneelabh/pulse/config"
	"github.com/itsneelabh/pulse/metric"
)

func TestNewWithDefaults(t *testing.T) {
	p, err := New(context.Background(), config.UseProfile(config.ProfileDevelopment))
	require.NoError(t, err)
	defer p.Stop(context.Background())

	c, err := p.Registry.Counter("requests", metric.UnitNone)
	require.NoError(t, err)
	c.Add(2)

	sn := p.Registry.Snapshot()
	require.Len(t, sn.Counters, 1)
	assert.Equal(t, int64(2), sn.Counters[0].Value)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.UseProfile(config.ProfileDevelopment)
	cfg.Exporters.Redis.Enabled = true // no addr

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestPrometheusExporterWiring(t *testing.T) {
	cfg := config.UseProfile(config.ProfileDevelopment)
	cfg.Exporters.Prometheus.Enabled = true
	cfg.Exporters.Prometheus.Namespace = "wiring_test"

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer p.Stop(context.Background())

	require.NotNil(t, p.Prometheus)
}

// spyRegisterer tracks collector registrations so tests can verify
// cleanup on failed assembly.
type spyRegisterer struct {
	registered map[prometheus.Collector]bool
}

func (s *spyRegisterer) Register(c prometheus.Collector) error {
	s.registered[c] = true
	return nil
}

func (s *spyRegisterer) MustRegister(cs ...prometheus.Collector) {
	for _, c := range cs {
		s.registered[c] = true
	}
}

func (s *spyRegisterer) Unregister(c prometheus.Collector) bool {
	if !s.registered[c] {
		return false
	}
	delete(s.registered, c)
	return true
}

func TestFailedNewUnregistersPrometheusCollector(t *testing.T) {
	spy := &spyRegisterer{registered: make(map[prometheus.Collector]bool)}
	orig := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = spy
	defer func() { prometheus.DefaultRegisterer = orig }()

	cfg := config.UseProfile(config.ProfileDevelopment)
	cfg.Exporters.Prometheus.Enabled = true
	cfg.Exporters.Redis.Enabled = true
	cfg.Exporters.Redis.Addr = "127.0.0.1:1" // nothing listening

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := New(ctx, cfg)
	require.Error(t, err)

	assert.Empty(t, spy.registered, "failed assembly left a collector registered")
}

func TestRedisExporterEndToEnd(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := config.UseProfile(config.ProfileDevelopment)
	cfg.Exporters.Redis.Enabled = true
	cfg.Exporters.Redis.Addr = mr.Addr()

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)

	c, err := p.Registry.Counter("orders", metric.UnitNone)
	require.NoError(t, err)
	c.Add(7)

	// Stop flushes a final snapshot through every reporter.
	require.NoError(t, p.Stop(context.Background()))

	raw, err := mr.Get("pulse:snapshot:latest")
	require.NoError(t, err)

	var sn metric.Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &sn))
	require.Len(t, sn.Counters, 1)
	assert.Equal(t, int64(7), sn.Counters[0].Value)
}

func TestReconfigureReachesRegistry(t *testing.T) {
	p, err := New(context.Background(), config.UseProfile(config.ProfileDevelopment))
	require.NoError(t, err)
	defer p.Stop(context.Background())

	h, err := p.Registry.Histogram("latency", metric.UnitMilliseconds, nil)
	require.NoError(t, err)

	cfg := config.UseProfile(config.ProfileDevelopment)
	cfg.Registry.HistogramRange = config.RangeConfig{
		LowestDiscernible: 1,
		HighestTrackable:  1000,
		SignificantDigits: 3,
	}
	require.NoError(t, p.Reconfigure(cfg))

	// The new ceiling applies from the next period.
	p.Registry.Snapshot()
	h.Record(100_000)
	sn := p.Registry.Snapshot()
	require.Len(t, sn.Histograms, 1)
	assert.Equal(t, int64(1000), sn.Histograms[0].Distribution.Max)
}

func TestStartAndStopLifecycle(t *testing.T) {
	cfg := config.UseProfile(config.ProfileDevelopment)
	cfg.Reporting.Interval = config.Duration(10 * time.Millisecond)

	p, err := New(context.Background(), cfg)
	require.NoError(t, err)

	p.Start()
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, p.Stop(context.Background()))
}
