// Package pool keeps one persistent HTTP connection handle per worker.
//
// Go has no thread-local storage, so workers are identified by an explicit
// string id. Each id owns a Conn with its own transport (and therefore its
// own keep-alive sockets); conns are never shared between ids.
package pool

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
)

// Option configures a Pool.
type Option func(*Pool)

// WithTransport overrides how each Conn's round tripper is built.
// The factory is called once per worker id.
func WithTransport(newTransport func() http.RoundTripper) Option {
	return func(p *Pool) {
		p.newTransport = newTransport
	}
}

// WithHeader adds a default header sent by every Conn of the pool.
func WithHeader(key, value string) Option {
	return func(p *Pool) {
		p.header.Set(key, value)
	}
}

// Pool lazily creates and caches one Conn per worker id.
type Pool struct {
	mu           sync.Mutex
	conns        map[string]*Conn
	header       http.Header
	newTransport func() http.RoundTripper
}

// New creates an empty pool. No sockets are opened until the first Get.
func New(opts ...Option) *Pool {
	p := &Pool{
		conns:        make(map[string]*Conn),
		header:       http.Header{"Content-Type": []string{"application/json"}},
		newTransport: defaultTransport,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func defaultTransport() http.RoundTripper {
	if t, ok := http.DefaultTransport.(*http.Transport); ok {
		return t.Clone()
	}
	return http.DefaultTransport
}

// Get returns the Conn owned by workerID, creating it on first use.
func (p *Pool) Get(workerID string) *Conn {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.conns[workerID]; ok {
		return c
	}
	c := &Conn{
		worker: workerID,
		client: &http.Client{Transport: p.newTransport()},
		header: p.header.Clone(),
	}
	p.conns[workerID] = c
	return c
}

// Len returns the number of live conns.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// Close drops every conn and closes their idle sockets.
// The pool stays usable; the next Get creates a fresh Conn.
func (p *Pool) Close() {
	p.mu.Lock()
	conns := p.conns
	p.conns = make(map[string]*Conn)
	p.mu.Unlock()

	for _, c := range conns {
		c.client.CloseIdleConnections()
	}
}

// Conn is the connection handle of one worker.
type Conn struct {
	worker string
	client *http.Client
	header http.Header
}

// Worker returns the id of the owning worker.
func (c *Conn) Worker() string { return c.worker }

// Header returns a copy of the default headers sent with every request.
func (c *Conn) Header() http.Header { return c.header.Clone() }

// Post sends body to url with the conn's default headers plus extra.
// The caller owns the returned response body.
func (c *Conn) Post(ctx context.Context, url string, body []byte, extra http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.header {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range extra {
		req.Header[k] = append([]string(nil), vs...)
	}
	return c.client.Do(req)
}
