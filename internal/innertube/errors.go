package innertube

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies transport failures.
type Kind int

const (
	NetworkUnavailable Kind = iota + 1
	Timeout
	HTTPStatus
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case NetworkUnavailable:
		return "network unavailable"
	case Timeout:
		return "timeout"
	case HTTPStatus:
		return "unexpected HTTP status"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Error is a failed request. StatusCode is set for HTTPStatus.
type Error struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == HTTPStatus {
		return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// classify maps a failed round trip or body read onto a Kind.
func classify(url string, err error) *Error {
	kind := NetworkUnavailable
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		kind = Cancelled
	case errors.Is(err, context.DeadlineExceeded):
		kind = Timeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = Timeout
	}
	return &Error{Kind: kind, URL: url, Err: err}
}
