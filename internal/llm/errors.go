package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"syscall"
)

// ErrorKind classifies a provider failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindRateLimited
	KindNetworkUnreachable
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindNetworkUnreachable:
		return "network_unreachable"
	default:
		return "other"
	}
}

// APIError is a classified failure from a generation backend.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a classified error, and false for errors that
// did not come through a backend.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return KindOther, false
}

// KindForStatus maps an HTTP status code to an error kind.
func KindForStatus(code int) ErrorKind {
	switch code {
	case 401:
		return KindUnauthorized
	case 403:
		return KindForbidden
	case 404:
		return KindNotFound
	case 429:
		return KindRateLimited
	default:
		return KindOther
	}
}

// newStatusError builds an APIError from an HTTP status returned by a provider SDK.
func newStatusError(code int, message string, cause error) *APIError {
	return &APIError{Kind: KindForStatus(code), StatusCode: code, Message: message, Err: cause}
}

// statusSignatures is checked in order; the first code found in the text wins.
var statusSignatures = []int{401, 403, 404, 429}

// classify turns an SDK error that carries no typed status into an APIError.
// Network failures are detected by type; status codes and network words
// embedded in the message text are used as a last resort.
func classify(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if isNetworkError(err) {
		return &APIError{Kind: KindNetworkUnreachable, Message: err.Error(), Err: err}
	}
	msg := err.Error()
	for _, code := range statusSignatures {
		if strings.Contains(msg, strconv.Itoa(code)) {
			return newStatusError(code, msg, err)
		}
	}
	if strings.Contains(msg, "network") || strings.Contains(msg, "connect") {
		return &APIError{Kind: KindNetworkUnreachable, Message: msg, Err: err}
	}
	return &APIError{Kind: KindOther, Message: err.Error(), Err: err}
}

func isNetworkError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ENETUNREACH) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host")
}
