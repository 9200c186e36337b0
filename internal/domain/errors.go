package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTransport signals a connection, DNS or timeout failure.
	ErrTransport = errors.New("transport failure")
	// ErrServer signals a 5xx response.
	ErrServer = errors.New("server failure")
	// ErrClient signals a non-2xx response outside the 5xx range.
	ErrClient = errors.New("client failure")
	// ErrDecode signals a response body that is not the expected JSON.
	ErrDecode = errors.New("decode failure")
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	// KindTransport is a failure before a response was received.
	KindTransport ErrorKind = iota + 1
	// KindServer is an HTTP 500-599 response.
	KindServer
	// KindClient is an HTTP 400-499 response (or any other unexpected non-2xx status).
	KindClient
	// KindDecode is a malformed response body after a successful exchange.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// sentinel maps the kind to its package-level sentinel error.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindServer:
		return ErrServer
	case KindClient:
		return ErrClient
	case KindDecode:
		return ErrDecode
	default:
		return nil
	}
}

// RequestError describes one failed HTTP attempt against the graph service.
// Use errors.Is with ErrTransport/ErrServer/ErrClient/ErrDecode, or errors.As
// to read the status code and body.
type RequestError struct {
	Kind       ErrorKind
	Method     string
	URL        string
	StatusCode int    // zero for transport failures
	Body       []byte // raw response body, if any
	Err        error  // underlying cause, if any
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Kind.sentinel())
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
		if detail := e.Detail(); detail != "" {
			msg += ": " + detail
		} else if snippet := bodySnippet(e.Body); snippet != "" {
			msg += ": " + snippet
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() error { return e.Err }

// Detail extracts the "detail" field from a JSON error body, if any.
func (e *RequestError) Detail() string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(e.Body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}

// Is reports whether target is the sentinel matching the error kind.
func (e *RequestError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Retryable reports whether the failure is transient.
func (e *RequestError) Retryable() bool {
	return e.Kind == KindTransport || e.Kind == KindServer
}

// Timeout reports whether the attempt ran out of time.
func (e *RequestError) Timeout() bool {
	if e.Kind != KindTransport {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsRetryable reports whether err is a transient RequestError.
// Anything that is not a RequestError is treated as permanent.
func IsRetryable(err error) bool {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return false
}

const maxBodySnippet = 256

func bodySnippet(body []byte) string {
	if len(body) > maxBodySnippet {
		return string(body[:maxBodySnippet]) + "..."
	}
	return string(body)
}
