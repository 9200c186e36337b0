package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Client holds the prometheus collectors of one SDK client.
// A nil *Client is valid and records nothing.
type Client struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	attempts   *prometheus.CounterVec
	retries    *prometheus.CounterVec
}

// NewClient registers the SDK collectors on reg. Collectors already
// registered by another client on the same registerer are reused.
func NewClient(reg prometheus.Registerer) (*Client, error) {
	m := &Client{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talkingdb",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Total client operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "talkingdb",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds, retries included.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talkingdb",
			Subsystem: "client",
			Name:      "http_attempts_total",
			Help:      "HTTP attempts by route and outcome (ok, transport, server, client, decode).",
		}, []string{"route", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "talkingdb",
			Subsystem: "client",
			Name:      "retries_total",
			Help:      "Retries scheduled after a transient failure, by route.",
		}, []string{"route"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.attempts); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.retries); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("talkingdb: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("talkingdb: register metric: %w", err)
	}
	return nil
}

// Operation records one finished public operation.
func (m *Client) Operation(op string, dur time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(dur.Seconds())
}

// Attempt records one HTTP attempt. outcome is "ok" or an error kind name.
func (m *Client) Attempt(route, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(route, outcome).Inc()
}

// Retry records one scheduled retry.
func (m *Client) Retry(route string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(route).Inc()
}
