package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/sayar/internal/llm"
	"github.com/raphaelgruber/sayar/internal/models"
)

var (
	// ErrBusy is returned when a submit is already in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrMissingCredential is returned when the active provider has no credential configured.
	ErrMissingCredential = errors.New("missing credential")
)

// ErrorKind categorizes a failed submit.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindConfiguration
	KindBusy
	KindInvalidCredential
	KindAccessDenied
	KindEndpointNotFound
	KindRateLimited
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindBusy:
		return "busy"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindAccessDenied:
		return "access_denied"
	case KindEndpointNotFound:
		return "endpoint_not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindNetwork:
		return "network"
	default:
		return "generic"
	}
}

// Error is a submit failure carrying a message suitable for display.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a chat error, and false for any other error.
func KindOf(err error) (ErrorKind, bool) {
	var chatErr *Error
	if errors.As(err, &chatErr) {
		return chatErr.Kind, true
	}
	return KindGeneric, false
}

func missingCredentialError(provider models.AIProvider) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf("Please configure your %s API key in Settings", provider.DisplayName()),
		Err:     ErrMissingCredential,
	}
}

func busyError() *Error {
	return &Error{Kind: KindBusy, Message: "Please wait for the current response to finish.", Err: ErrBusy}
}

var kindForAPI = map[llm.ErrorKind]ErrorKind{
	llm.KindUnauthorized:       KindInvalidCredential,
	llm.KindForbidden:          KindAccessDenied,
	llm.KindNotFound:           KindEndpointNotFound,
	llm.KindRateLimited:        KindRateLimited,
	llm.KindNetworkUnreachable: KindNetwork,
}

// textSignatures is checked in order against untyped error text; first match wins.
var textSignatures = []struct {
	needles []string
	kind    ErrorKind
}{
	{[]string{"401"}, KindInvalidCredential},
	{[]string{"403"}, KindAccessDenied},
	{[]string{"404"}, KindEndpointNotFound},
	{[]string{"429"}, KindRateLimited},
	{[]string{"network", "connect"}, KindNetwork},
}

// classifyFailure maps a generator failure to a user-facing error.
func classifyFailure(err error, provider models.AIProvider) *Error {
	kind := KindGeneric
	original := err.Error()

	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		kind = kindForAPI[apiErr.Kind]
		original = apiErr.Message
	}
	if kind == KindGeneric {
		kind = matchSignatures(err.Error())
	}

	return &Error{Kind: kind, Message: failureMessage(kind, provider, original), Err: err}
}

func failureMessage(kind ErrorKind, provider models.AIProvider, original string) string {
	switch kind {
	case KindInvalidCredential:
		return fmt.Sprintf("Invalid API key. Please check your %s API key in Settings.", provider.DisplayName())
	case KindAccessDenied:
		return "API key doesn't have access. Enable Generative Language API in Google Cloud Console."
	case KindEndpointNotFound:
		return "API endpoint not found. Please update the app or check API configuration."
	case KindRateLimited:
		return "Rate limit exceeded. Please wait and try again."
	case KindNetwork:
		return "Network error. Please check your internet connection."
	}
	if original == "" {
		original = "Unknown error occurred"
	}
	return "Error: " + original
}

func matchSignatures(text string) ErrorKind {
	for _, sig := range textSignatures {
		if containsAny(text, sig.needles) {
			return sig.kind
		}
	}
	return KindGeneric
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
