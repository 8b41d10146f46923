package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorKind labels a classified fetch failure.
type ErrorKind string

const (
	KindTimeout     ErrorKind = "timeout"
	KindConnection  ErrorKind = "connection"
	KindForbidden   ErrorKind = "forbidden"
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindHTTPStatus  ErrorKind = "http_status"
	KindOther       ErrorKind = "other"
)

// FetchError is a classified failure to fetch a source page.
type FetchError struct {
	Kind   ErrorKind
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return fmt.Errorf("%s: %w", e.Kind, e.Err).Error()
	}
	return fmt.Errorf("%s %s: %w", e.Source, e.Kind, e.Err).Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func errorTypeLabel(err error) string {
	if err == nil {
		return "unknown"
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return string(fetchErr.Kind)
	}
	return string(KindOther)
}

func classifyError(err error, statusCode int) *FetchError {
	if err == nil && statusCode == 0 {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("http status %d", statusCode)
	}
	fetchErr := &FetchError{Kind: KindOther, Status: statusCode, Err: err}

	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fetchErr.Kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		fetchErr.Kind = KindTimeout
	case errors.As(err, &opErr):
		fetchErr.Kind = KindConnection
	case statusCode == http.StatusForbidden:
		fetchErr.Kind = KindForbidden
	case statusCode == http.StatusNotFound:
		fetchErr.Kind = KindNotFound
	case statusCode == http.StatusTooManyRequests:
		fetchErr.Kind = KindRateLimited
	case statusCode >= http.StatusMultipleChoices:
		fetchErr.Kind = KindHTTPStatus
	}
	return fetchErr
}
