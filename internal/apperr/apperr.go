package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failure for callers and for HTTP status mapping.
type Kind string

const (
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	KindInvalidTicker       Kind = "InvalidTicker"
	KindInvalidInput        Kind = "InvalidInput"
	KindModelInference      Kind = "ModelInference"
	KindInternal            Kind = "Internal"
)

// Error is the error type surfaced by every pipeline stage.
// Stage names the pipeline step (price, predict, news, sentiment, summary, explanation, scoring, search, history)
// and Upstream names the external dependency, when there is one.
type Error struct {
	Kind     Kind
	Stage    string
	Upstream string
	Msg      string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Upstream != "" {
		return fmt.Sprintf("%s: %s (%s): %s", e.Kind, e.Stage, e.Upstream, msg)
	}
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Stage, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Upstream(stage, upstream string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Stage: stage, Upstream: upstream, Msg: "upstream unavailable", Err: err}
}

func InvalidTicker(stage, ticker string, err error) *Error {
	return &Error{Kind: KindInvalidTicker, Stage: stage, Msg: fmt.Sprintf("unknown ticker %q", ticker), Err: err}
}

func InvalidInput(stage, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Stage: stage, Msg: fmt.Sprintf(format, args...)}
}

func ModelInference(stage, upstream string, err error) *Error {
	return &Error{Kind: KindModelInference, Stage: stage, Upstream: upstream, Msg: "malformed model output", Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case KindInvalidTicker:
		return http.StatusNotFound
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindModelInference:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type statusCoder interface {
	HTTPStatusCode() int
}

// StatusCode extracts an upstream HTTP status from err, if one is recorded in the chain.
func StatusCode(err error) (int, bool) {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode(), true
	}
	return 0, false
}

// FromTransport classifies a failed call to an external dependency.
// Errors that already carry a kind pass through unchanged; an upstream 404 becomes InvalidTicker
// when ticker is set, and everything else is UpstreamUnavailable.
func FromTransport(stage, upstream, ticker string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if code, ok := StatusCode(err); ok && code == http.StatusNotFound && ticker != "" {
		return InvalidTicker(stage, ticker, err)
	}
	e := Upstream(stage, upstream, err)
	if Timeout(err) {
		e.Msg = "upstream timed out"
	}
	return e
}

// WithStage re-attributes err to stage. Shared clients report a generic stage and
// callers rename it to the pipeline step they serve. Unclassified errors become UpstreamUnavailable.
func WithStage(err error, stage string) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		cp := *e
		cp.Stage = stage
		return &cp
	}
	return Upstream(stage, "", err)
}

// Timeout reports whether err is a deadline or network timeout.
func Timeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
