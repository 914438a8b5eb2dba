package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes returned by Client.Score. Callers match them with errors.Is.
var (
	// ErrMissingCredential means no API key is configured. No request is made.
	ErrMissingCredential = errors.New("llm: api credential not configured")

	// ErrRateLimited is returned after the provider answered 429 and the
	// cooldown has elapsed.
	ErrRateLimited = errors.New("llm: rate limited")

	// ErrAccount signals a billing or authorization problem (402/403) that
	// needs operator action.
	ErrAccount = errors.New("llm: account error")

	// ErrTransport covers network failures, timeouts, other non-2xx answers
	// and malformed response envelopes.
	ErrTransport = errors.New("llm: transport error")

	// ErrParse means the reply text contained no recoverable score.
	ErrParse = errors.New("llm: could not parse model response")
)

// StatusError carries the HTTP status of a failed provider call.
// It unwraps to the failure class chosen by classifyStatus.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	return classifyStatus(e.StatusCode)
}

// classifyStatus maps an HTTP status to a failure class.
func classifyStatus(code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusPaymentRequired, http.StatusForbidden:
		return ErrAccount
	default:
		return ErrTransport
	}
}

// FailureClass returns a short label for err, used in logs and metrics.
func FailureClass(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrMissingCredential):
		return "config"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrAccount):
		return "account"
	case errors.Is(err, ErrParse):
		return "parse"
	default:
		return "transport"
	}
}

func transportError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrTransport, provider, err)
}
