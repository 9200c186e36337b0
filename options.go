package talkingdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/talkingdb/internal/retry"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	timeout time.Duration
	policy  retry.Policy
	pool    *Pool

	header map[string]string

	rateLimit float64
	rateBurst int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithTimeout bounds each HTTP attempt. Default: 30s.
// A call that is retried may block for several timeouts plus backoff.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithRetryPolicy replaces the retry policy. A nil Retryable keeps the
// default predicate (transport failures and 5xx responses).
func WithRetryPolicy(p RetryPolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy = p
	})
}

// WithMaxAttempts sets the total number of attempts per request. Default: 5.
func WithMaxAttempts(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy.MaxAttempts = n
	})
}

// WithBackoff sets the base and maximum wait between attempts.
// Defaults: 1s doubling up to 10s.
func WithBackoff(base, maxDelay time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.policy.BaseDelay = base
		c.policy.MaxDelay = maxDelay
	})
}

// WithPool makes the client use an existing connection pool, e.g. one
// shared by several clients. The client does not close an injected pool.
func WithPool(p *Pool) Option {
	return optionFunc(func(c *clientConfig) {
		c.pool = p
	})
}

// WithHeader sets a header sent on every request, e.g. an auth token.
// It configures the client's own pool and cannot be combined with WithPool.
func WithHeader(key, value string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.header == nil {
			c.header = make(map[string]string)
		}
		c.header[key] = value
	})
}

// WithRateLimit throttles HTTP attempts of this client to rps per second
// with the given burst. Disabled by default. A wait that cannot finish
// before the context deadline fails with ErrTransport.
func WithRateLimit(rps float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rateLimit = rps
		c.rateBurst = burst
	})
}

// WithLogger enables structured logging of retries and failed operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operations, attempts, retries)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
