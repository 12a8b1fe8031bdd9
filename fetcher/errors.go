package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrFetchFailed wraps every failure returned by a Fetcher. Callers treat all
// failures alike; the Kind of the cause is only used for logs and metrics.
var ErrFetchFailed = errors.New("fetch failed")

// ErrEmptyBody is the cause when a page answers 2xx with no content.
var ErrEmptyBody = errors.New("empty response body")

// Kind labels why a page could not be fetched.
type Kind string

const (
	KindTimeout     Kind = "timeout"
	KindConnection  Kind = "connection"
	KindForbidden   Kind = "forbidden"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindStatus      Kind = "status"
	KindEmptyBody   Kind = "empty_body"
	KindCanceled    Kind = "canceled"
	KindOther       Kind = "other"
)

// Error is the classified cause of a failed fetch. Status is the HTTP status
// when a response arrived, 0 otherwise.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s (http %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: http status %d", e.Kind, e.Status)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorType returns the Kind label carried by err, "unknown" for nil.
func ErrorType(err error) string {
	if err == nil {
		return "unknown"
	}
	var fe *Error
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	if errors.Is(err, context.Canceled) {
		return string(KindCanceled)
	}
	return string(KindOther)
}

var statusKinds = map[int]Kind{
	http.StatusForbidden:       KindForbidden,
	http.StatusNotFound:        KindNotFound,
	http.StatusTooManyRequests: KindRateLimited,
}

// classifyError maps a transport error and/or HTTP status to an *Error.
// It returns nil when there is nothing to classify.
func classifyError(err error, statusCode int) *Error {
	if err == nil && statusCode == 0 {
		return nil
	}

	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, ErrEmptyBody):
		return &Error{Kind: KindEmptyBody, Status: statusCode, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Err: err}
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	case errors.As(err, &opErr):
		return &Error{Kind: KindConnection, Err: err}
	}

	if statusCode != 0 && (statusCode < 200 || statusCode >= 300) {
		kind, ok := statusKinds[statusCode]
		if !ok {
			kind = KindStatus
		}
		return &Error{Kind: kind, Status: statusCode, Err: err}
	}

	return &Error{Kind: KindOther, Status: statusCode, Err: err}
}
