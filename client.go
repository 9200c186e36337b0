package talkingdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/talkingdb/internal/metrics"
	"github.com/kailas-cloud/talkingdb/internal/pool"
	"github.com/kailas-cloud/talkingdb/internal/retry"
	"github.com/kailas-cloud/talkingdb/internal/transport/jsonhttp"
)

// DefaultWorker is the worker id used by the Client's own methods.
const DefaultWorker = "default"

// DefaultTimeout bounds each HTTP attempt unless WithTimeout is given.
const DefaultTimeout = jsonhttp.DefaultTimeout

// Client is the talkingdb SDK entry point. It is safe for concurrent use;
// goroutines that want their own connection should call Worker.
type Client struct {
	endpoint string
	pool     *pool.Pool
	ownsPool bool
	exec     *jsonhttp.Executor
	obs      *observer
}

// New creates a Client bound to endpoint (e.g. "http://localhost:8000").
// Trailing slashes are stripped. No connection is opened until the first call.
func New(endpoint string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout: DefaultTimeout,
		policy:  retry.DefaultPolicy(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	base, err := normalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if err := cfg.policy.Validate(); err != nil {
		return nil, fmt.Errorf("talkingdb: %w", err)
	}
	if cfg.pool != nil && len(cfg.header) > 0 {
		return nil, errors.New("talkingdb: WithHeader cannot be combined with WithPool")
	}
	if cfg.timeout <= 0 {
		return nil, fmt.Errorf("talkingdb: timeout must be positive, got %s", cfg.timeout)
	}

	var m *metrics.Client
	if cfg.metricsReg != nil {
		m, err = metrics.NewClient(cfg.metricsReg)
		if err != nil {
			return nil, err
		}
	}

	var limiter *rate.Limiter
	if cfg.rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.rateLimit), max(cfg.rateBurst, 1))
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	p, owns := cfg.pool, false
	if p == nil {
		popts := make([]pool.Option, 0, len(cfg.header))
		for k, v := range cfg.header {
			popts = append(popts, pool.WithHeader(k, v))
		}
		p, owns = pool.New(popts...), true
	}

	return &Client{
		endpoint: base,
		pool:     p,
		ownsPool: owns,
		exec: jsonhttp.New(jsonhttp.Config{
			Pool:    p,
			Policy:  cfg.policy,
			Timeout: cfg.timeout,
			Limiter: limiter,
			Logger:  logger,
			Metrics: m,
		}),
		obs: &observer{logger: cfg.logger, metrics: m},
	}, nil
}

func normalizeEndpoint(endpoint string) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if base == "" {
		return "", errors.New("talkingdb: endpoint required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("talkingdb: invalid endpoint %q: %w", endpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("talkingdb: endpoint %q must be an absolute http(s) URL", endpoint)
	}
	return base, nil
}

// Endpoint returns the normalized base address.
func (c *Client) Endpoint() string { return c.endpoint }

// Close releases idle connections of a pool created by New.
// An injected pool (WithPool) is left to its owner.
func (c *Client) Close() {
	if c.ownsPool {
		c.pool.Close()
	}
}

// Worker returns a handle whose calls go through the connection owned by id.
// Handles are cheap; the connection is created on the first call.
func (c *Client) Worker(id string) *Worker {
	return &Worker{id: id, client: c}
}

// IndexDocument submits a document for indexing using the default worker.
// See Worker.IndexDocument.
func (c *Client) IndexDocument(
	ctx context.Context, document Document, fileIndex FileIndex, metadata Metadata,
) (GraphHandle, bool, error) {
	return c.Worker(DefaultWorker).IndexDocument(ctx, document, fileIndex, metadata)
}

// MatchNode queries graphs for elements matching query using the default
// worker. See Worker.MatchNode.
func (c *Client) MatchNode(
	ctx context.Context, graphs []GraphHandle, query string, metadata Metadata,
) ([]Element, error) {
	return c.Worker(DefaultWorker).MatchNode(ctx, graphs, query, metadata)
}

func (c *Client) url(route string) string { return c.endpoint + route }
