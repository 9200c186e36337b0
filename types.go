package talkingdb

import (
	"github.com/kailas-cloud/talkingdb/internal/domain"
	"github.com/kailas-cloud/talkingdb/internal/pool"
	"github.com/kailas-cloud/talkingdb/internal/retry"
)

// Document is an opaque document payload sent verbatim.
type Document = domain.Document

// FileIndex is an opaque file index payload sent verbatim.
type FileIndex = domain.FileIndex

// Metadata is an opaque metadata payload sent verbatim.
type Metadata = domain.Metadata

// GraphHandle identifies a graph indexed by the service.
type GraphHandle = domain.GraphHandle

// Element is one matched unit of content.
type Element = domain.Element

// Pool holds one persistent connection per worker id.
type Pool = pool.Pool

// NewPool creates an empty connection pool for WithPool.
func NewPool() *Pool { return pool.New() }

// RetryPolicy controls attempts and backoff of every request.
type RetryPolicy = retry.Policy

// DefaultRetryPolicy returns 5 attempts, 1s base delay doubling to a 10s
// cap, with up to 1s of jitter.
func DefaultRetryPolicy() RetryPolicy { return retry.DefaultPolicy() }
