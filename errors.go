package talkingdb

import "github.com/kailas-cloud/talkingdb/internal/domain"

// Error is returned for every failed request. Check the Kind field, or use
// errors.Is with the sentinels below.
type Error = domain.RequestError

// ErrorKind classifies a failed request.
type ErrorKind = domain.ErrorKind

// Failure kinds.
const (
	KindTransport = domain.KindTransport // connection refused/reset, DNS, timeout; retried
	KindServer    = domain.KindServer    // HTTP 5xx; retried
	KindClient    = domain.KindClient    // HTTP 4xx; not retried
	KindDecode    = domain.KindDecode    // malformed 2xx body; not retried
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrTransport = domain.ErrTransport
	ErrServer    = domain.ErrServer
	ErrClient    = domain.ErrClient
	ErrDecode    = domain.ErrDecode
)

// IsRetryable reports whether err is a transient failure.
func IsRetryable(err error) bool { return domain.IsRetryable(err) }
