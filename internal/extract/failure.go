package extract

import (
	"context"
	"errors"
	"fmt"

	"ytresolve/internal/format"
	"ytresolve/internal/httputil"
	"ytresolve/internal/innertube"
	"ytresolve/internal/playability"
	"ytresolve/internal/response"
	"ytresolve/internal/signature"
)

// Stage is the pipeline step a failure originated in.
type Stage int

const (
	StageRequest Stage = iota + 1
	StageFetch
	StageDecode
	StageEvaluate
	StageSelect
	StageResolve
)

func (s Stage) String() string {
	switch s {
	case StageRequest:
		return "request"
	case StageFetch:
		return "fetch"
	case StageDecode:
		return "decode"
	case StageEvaluate:
		return "evaluate"
	case StageSelect:
		return "select"
	case StageResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// Kind is the specific failure.
type Kind int

const (
	NetworkUnavailable Kind = iota + 1
	Timeout
	HTTPStatus
	MalformedResponse
	LoginRequired
	Unplayable
	LiveOffline
	PlatformError
	InconsistentOK
	UnknownStatus
	NoSuitableFormat
	PlayerScriptUnavailable
	TransformNotFound
	CipherMalformed
	Cancelled
	InvalidRequest
)

var kindNames = map[Kind]string{
	NetworkUnavailable:      "network unavailable",
	Timeout:                 "timeout",
	HTTPStatus:              "http status",
	MalformedResponse:       "malformed response",
	LoginRequired:           "login required",
	Unplayable:              "unplayable",
	LiveOffline:             "live stream offline",
	PlatformError:           "platform error",
	InconsistentOK:          "inconsistent ok",
	UnknownStatus:           "unknown status",
	NoSuitableFormat:        "no suitable format",
	PlayerScriptUnavailable: "player script unavailable",
	TransformNotFound:       "transform not found",
	CipherMalformed:         "cipher malformed",
	Cancelled:               "cancelled",
	InvalidRequest:          "invalid request",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Category groups kinds the way callers present them.
type Category int

const (
	CategoryTransport Category = iota + 1
	CategoryDecode
	CategoryBlocked
	CategoryNoSuitableFormat
	CategoryResolve
	CategoryCancelled
	CategoryInvalidRequest
)

func (c Category) String() string {
	switch c {
	case CategoryTransport:
		return "transport"
	case CategoryDecode:
		return "decode"
	case CategoryBlocked:
		return "blocked"
	case CategoryNoSuitableFormat:
		return "no-suitable-format"
	case CategoryResolve:
		return "resolve"
	case CategoryCancelled:
		return "cancelled"
	case CategoryInvalidRequest:
		return "invalid-request"
	default:
		return "unknown"
	}
}

// Category returns the group k belongs to.
func (k Kind) Category() Category {
	switch k {
	case NetworkUnavailable, Timeout, HTTPStatus:
		return CategoryTransport
	case MalformedResponse:
		return CategoryDecode
	case LoginRequired, Unplayable, LiveOffline, PlatformError, InconsistentOK, UnknownStatus:
		return CategoryBlocked
	case NoSuitableFormat:
		return CategoryNoSuitableFormat
	case PlayerScriptUnavailable, TransformNotFound, CipherMalformed:
		return CategoryResolve
	case Cancelled:
		return CategoryCancelled
	default:
		return CategoryInvalidRequest
	}
}

// Failure is the single error type Extract returns.
type Failure struct {
	Stage      Stage
	Kind       Kind
	StatusCode int // HTTPStatus only
	Err        error
}

func (f *Failure) Error() string {
	if f.namedByErr() {
		return fmt.Sprintf("%s: %v", f.Stage, f.Err)
	}
	if f.Kind == HTTPStatus {
		return fmt.Sprintf("%s: %s %d: %v", f.Stage, f.Kind, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("%s: %s: %v", f.Stage, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// namedByErr reports whether the wrapped stage error already prints f.Kind.
func (f *Failure) namedByErr() bool {
	var (
		se *signature.Error
		te *innertube.Error
	)
	switch {
	case errors.As(f.Err, &se):
		return resolveKinds[se.Kind] == f.Kind
	case errors.As(f.Err, &te):
		return transportKinds[te.Kind] == f.Kind
	}
	return false
}

// KindOf reports the Kind of err if it is a *Failure.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}

var blockedKinds = map[playability.Reason]Kind{
	playability.LoginRequired:  LoginRequired,
	playability.Unplayable:     Unplayable,
	playability.LiveOffline:    LiveOffline,
	playability.PlatformError:  PlatformError,
	playability.InconsistentOK: InconsistentOK,
	playability.UnknownStatus:  UnknownStatus,
}

var resolveKinds = map[signature.Kind]Kind{
	signature.PlayerScriptUnavailable: PlayerScriptUnavailable,
	signature.TransformNotFound:       TransformNotFound,
	signature.CipherMalformed:         CipherMalformed,
}

var transportKinds = map[innertube.Kind]Kind{
	innertube.NetworkUnavailable: NetworkUnavailable,
	innertube.Timeout:            Timeout,
	innertube.HTTPStatus:         HTTPStatus,
	innertube.Cancelled:          Cancelled,
}

// timedOut reports whether err came from a deadline, either the per-call
// timeout or a transport timeout, at any network boundary.
func timedOut(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te *innertube.Error
	return errors.As(err, &te) && te.Kind == innertube.Timeout
}

// fail wraps a stage error. Caller cancellation wins over whatever the
// stage reported.
func fail(ctx context.Context, stage Stage, err error) *Failure {
	f := &Failure{Stage: stage, Err: err}

	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		f.Kind = Cancelled
		return f
	}

	var (
		te *innertube.Error
		se *signature.Error
		be *playability.Blocked
	)
	switch {
	case errors.Is(err, response.ErrMalformedResponse):
		f.Kind = MalformedResponse
	case errors.Is(err, format.ErrNoSuitableFormat):
		f.Kind = NoSuitableFormat
	case timedOut(err):
		f.Kind = Timeout
	case errors.As(err, &se):
		f.Kind = resolveKinds[se.Kind]
	case errors.As(err, &be):
		f.Kind = blockedKinds[be.Reason]
	case errors.As(err, &te):
		f.Kind = transportKinds[te.Kind]
		f.StatusCode = te.StatusCode
	case errors.Is(err, httputil.ErrBodyTooLarge):
		f.Kind = MalformedResponse
	default:
		f.Kind = InvalidRequest
	}
	return f
}
