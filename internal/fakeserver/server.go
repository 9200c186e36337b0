// Package fakeserver is an in-memory stand-in for the graph service,
// used by tests to script responses and inspect what the client sent.
package fakeserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/talkingdb/internal/domain"
)

// Request is one request received by the server.
type Request struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// failure is a scripted response served instead of normal handling.
type failure struct {
	status int
	body   string
}

// Server serves /index/document/elements and /extract from scripted state.
type Server struct {
	router chi.Router

	mu       sync.Mutex
	graphs   map[string][]domain.Element
	indexRaw string // verbatim body for the index route; empty uses nextID
	nextID   int
	failures map[string][]failure
	requests []Request
}

// New creates a server with no graphs.
func New() *Server {
	s := &Server{
		graphs:   make(map[string][]domain.Element),
		failures: make(map[string][]failure),
	}
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(s.record)
	r.Post(domain.RouteIndexDocument, s.handleIndex)
	r.Post(domain.RouteExtract, s.handleExtract)
	s.router = r
	return s
}

// Start serves the router on a local httptest server. Callers must Close it.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.router)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// AddGraph registers the elements returned by /extract for graphID.
func (s *Server) AddGraph(graphID string, elements ...domain.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[graphID] = elements
}

// SetIndexBody makes the index route answer 200 with body verbatim.
func (s *Server) SetIndexBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indexRaw = body
}

// FailNext makes the next n requests to path answer status with body.
func (s *Server) FailNext(path string, n, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for range n {
		s.failures[path] = append(s.failures[path], failure{status: status, body: body})
	}
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns the number of requests received on path.
func (s *Server) Count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// record captures the request and serves a scripted failure if one is queued.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		s.mu.Lock()
		s.requests = append(s.requests, Request{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		var f *failure
		if queue := s.failures[r.URL.Path]; len(queue) > 0 {
			f = &queue[0]
			s.failures[r.URL.Path] = queue[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(raw))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}
	var req domain.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	raw := s.indexRaw
	s.nextID++
	id := fmt.Sprintf("g%d", s.nextID)
	if raw == "" {
		s.graphs[id] = nil
	}
	s.mu.Unlock()

	if raw != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, raw)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"graph_id": id})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Content-Type") != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return
	}
	var req domain.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	elements, ok := s.graphs[string(req.GraphID)]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("graph %q not found", req.GraphID))
		return
	}
	if elements == nil {
		elements = []domain.Element{}
	}
	writeJSON(w, http.StatusOK, domain.ExtractResponse{Elements: elements})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
