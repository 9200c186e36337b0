// Package jsonhttp sends JSON POST requests to the graph service through
// per-worker pooled connections, retrying transient failures.
package jsonhttp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/talkingdb/internal/domain"
	"github.com/kailas-cloud/talkingdb/internal/metrics"
	"github.com/kailas-cloud/talkingdb/internal/pool"
	"github.com/kailas-cloud/talkingdb/internal/retry"
)

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 30 * time.Second

// HeaderRequestID carries an id shared by every attempt of one logical request.
const HeaderRequestID = "X-Request-ID"

// Config holds the executor dependencies.
type Config struct {
	Pool    *pool.Pool
	Policy  retry.Policy
	Timeout time.Duration   // per attempt; DefaultTimeout if zero
	Limiter *rate.Limiter   // optional, waited on before every attempt
	Logger  *zap.Logger     // optional
	Metrics *metrics.Client // optional
}

// Executor issues one logical request as a series of attempts.
type Executor struct {
	pool    *pool.Pool
	policy  retry.Policy
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.Client
}

// New creates an Executor. A nil Pool gets a fresh one; a nil
// Policy.Retryable is replaced by domain.IsRetryable.
func New(cfg Config) *Executor {
	e := &Executor{
		pool:    cfg.Pool,
		policy:  cfg.Policy,
		timeout: cfg.Timeout,
		limiter: cfg.Limiter,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	if e.pool == nil {
		e.pool = pool.New()
	}
	if e.policy.Retryable == nil {
		e.policy.Retryable = domain.IsRetryable
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Pool returns the connection pool used by the executor.
func (e *Executor) Pool() *pool.Pool { return e.pool }

// Send POSTs payload to url using the connection of workerID and decodes
// the JSON response into out. route labels logs and metrics.
//
// Failures are *domain.RequestError values. Transport and 5xx failures
// are retried under the policy; the last one is returned unchanged.
func (e *Executor) Send(ctx context.Context, workerID, route, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", route, err)
	}

	reqID := uuid.NewString()
	log := e.logger.With(
		zap.String("route", route),
		zap.String("worker", workerID),
		zap.String("request_id", reqID),
	)

	policy := e.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		e.metrics.Retry(route)
		log.Debug("retrying request",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if e.policy.OnRetry != nil {
			e.policy.OnRetry(attempt, delay, err)
		}
	}

	_, err = retry.Do(ctx, policy, func(ctx context.Context, _ int) (struct{}, error) {
		err := e.attempt(ctx, workerID, url, reqID, body, out)
		e.metrics.Attempt(route, outcome(err))
		return struct{}{}, err
	})
	return err
}

// attempt runs one POST: connection lookup, status check and decode.
func (e *Executor) attempt(ctx context.Context, workerID, url, reqID string, body []byte, out any) error {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return &domain.RequestError{
				Kind:   domain.KindTransport,
				Method: http.MethodPost,
				URL:    url,
				Err:    fmt.Errorf("rate limit: %w", err),
			}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	conn := e.pool.Get(workerID)
	extra := http.Header{}
	extra.Set(HeaderRequestID, reqID)

	resp, err := conn.Post(ctx, url, body, extra)
	if err != nil {
		return &domain.RequestError{Kind: domain.KindTransport, Method: http.MethodPost, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RequestError{
			Kind:       domain.KindTransport,
			Method:     http.MethodPost,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("read body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := domain.KindClient
		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			kind = domain.KindServer
		}
		return &domain.RequestError{
			Kind:       kind,
			Method:     http.MethodPost,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       data,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.RequestError{
			Kind:       domain.KindDecode,
			Method:     http.MethodPost,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       data,
			Err:        err,
		}
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var re *domain.RequestError
	if errors.As(err, &re) {
		return re.Kind.String()
	}
	return "other"
}
