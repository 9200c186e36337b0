package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_ReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, err := NewClient(reg)
	require.NoError(t, err)
	b, err := NewClient(reg)
	require.NoError(t, err)

	a.Attempt("/extract", "ok")
	b.Attempt("/extract", "ok")

	assert.InDelta(t, 2, testutil.ToFloat64(a.attempts.WithLabelValues("/extract", "ok")), 0)
}

func TestNewClient_IncompatibleCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	clash := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "talkingdb",
		Subsystem: "client",
		Name:      "operations_total",
		Help:      "Total client operations by type and status.",
	}, []string{"operation", "status"})
	require.NoError(t, reg.Register(clash))

	_, err := NewClient(reg)
	assert.Error(t, err)
}

func TestClient_Records(t *testing.T) {
	m, err := NewClient(prometheus.NewRegistry())
	require.NoError(t, err)

	m.Operation("match_node", 10*time.Millisecond, nil)
	m.Operation("match_node", 10*time.Millisecond, errors.New("boom"))
	m.Retry("/extract")

	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues("match_node", "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.operations.WithLabelValues("match_node", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.retries.WithLabelValues("/extract")), 0)
}

func TestClient_NilIsNoop(t *testing.T) {
	var m *Client
	assert.NotPanics(t, func() {
		m.Operation("index_document", time.Second, nil)
		m.Attempt("/extract", "ok")
		m.Retry("/extract")
	})
}
