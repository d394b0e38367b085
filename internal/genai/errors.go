package genai

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// ErrorKind is the normalized failure taxonomy for remote generation calls.
type ErrorKind string

const (
	KindInvalidCredentials   ErrorKind = "invalid_credentials"
	KindContentPolicyBlocked ErrorKind = "content_policy_blocked"
	KindNetworkFailure       ErrorKind = "network_failure"
	KindMalformedRequest     ErrorKind = "malformed_request"
	KindNoImageReturned      ErrorKind = "no_image_returned"
	KindUnknown              ErrorKind = "unknown"
)

// GenerationError wraps a provider failure with its normalized kind. The
// original error is preserved for logging.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "genai: " + string(e.Kind)
	}
	return "genai: " + string(e.Kind) + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// classifyKeywords maps lower-cased message fragments to kinds. Order matters:
// the first matching set wins, so overlapping keywords resolve predictably.
// The provider returns no structured error code, so this mapping is heuristic
// and best-effort.
var classifyKeywords = []struct {
	kind     ErrorKind
	keywords []string
}{
	{KindInvalidCredentials, []string{"api key", "permission denied", "api_key"}},
	{KindContentPolicyBlocked, []string{"safety", "blocked"}},
	{KindNetworkFailure, []string{"network", "fetch failed"}},
	{KindMalformedRequest, []string{"malformed"}},
}

// classify normalizes an arbitrary provider failure into a GenerationError.
// Transport-level failures short-circuit to KindNetworkFailure; everything
// else is matched against the keyword table.
func classify(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &GenerationError{Kind: KindNetworkFailure, Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, entry := range classifyKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(msg, keyword) {
				return &GenerationError{Kind: entry.kind, Err: err}
			}
		}
	}
	return &GenerationError{Kind: KindUnknown, Err: err}
}
