package genai

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a generation failure so callers can branch without
// inspecting message text.
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindMissingCredential Kind = "missing_credential"
	KindInvalidCredential Kind = "invalid_credential"
	KindHTTP              Kind = "http"
	KindSafetyBlocked     Kind = "safety_blocked"
	KindParse             Kind = "parse"
	KindNoImage           Kind = "no_image"
	KindTransport         Kind = "transport"
)

// Error is the tagged failure returned by every Client operation.
type Error struct {
	Kind        Kind
	Status      int
	Message     string
	BlockReason string
	// Text carries the model's reply when an image was expected but only text came back.
	Text string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP, KindInvalidCredential:
		if e.Status > 0 {
			if e.Message != "" {
				return fmt.Sprintf("gemini status %d: %s", e.Status, e.Message)
			}
			return fmt.Sprintf("gemini status %d", e.Status)
		}
	case KindSafetyBlocked:
		return "content blocked: " + e.BlockReason
	case KindTransport:
		if e.Err != nil {
			return "gemini request failed: " + e.Err.Error()
		}
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return ""
}

// IsCredentialError reports whether err means the user must supply or replace
// the API key.
func IsCredentialError(err error) bool {
	switch KindOf(err) {
	case KindMissingCredential, KindInvalidCredential:
		return true
	}
	return false
}

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func parseFailure(msg string, err error) *Error {
	return &Error{Kind: KindParse, Message: msg, Err: err}
}

func transportFailure(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// statusError classifies a non-2xx response. Gemini reports a bad key as 400
// INVALID_ARGUMENT with an "API key" message, or as 401/403.
func statusError(status int, message string) *Error {
	kind := KindHTTP
	switch status {
	case 401, 403:
		kind = KindInvalidCredential
	case 400:
		lower := strings.ToLower(message)
		if strings.Contains(lower, "api key") || strings.Contains(lower, "api_key") {
			kind = KindInvalidCredential
		}
	}
	return &Error{Kind: kind, Status: status, Message: strings.TrimSpace(message)}
}
