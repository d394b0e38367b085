package genai

import (
	"errors"
	"fmt"
	"net/url"
	"testing"
)

func TestClassifyKeywords(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want ErrorKind
	}{
		{"api key", "status 400: API key not valid. Please pass a valid API key.", KindInvalidCredentials},
		{"permission denied", "status 403: PERMISSION DENIED for consumer", KindInvalidCredentials},
		{"safety", "candidate was blocked due to SAFETY", KindContentPolicyBlocked},
		{"blocked", "prompt blocked by policy", KindContentPolicyBlocked},
		{"network", "network timeout reaching host", KindNetworkFailure},
		{"fetch failed", "TypeError: fetch failed", KindNetworkFailure},
		{"malformed", "status 400: request contains malformed content", KindMalformedRequest},
		{"unknown", "something inexplicable happened", KindUnknown},
		// overlapping keywords resolve to the earliest set
		{"overlap credentials wins", "api key request blocked", KindInvalidCredentials},
		{"overlap safety before network", "network call blocked for safety", KindContentPolicyBlocked},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(fmt.Errorf("%s", tc.msg))
			if got.Kind != tc.want {
				t.Fatalf("classify(%q) = %s, want %s", tc.msg, got.Kind, tc.want)
			}
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	err := &url.Error{Op: "Post", URL: "https://example.invalid", Err: errors.New("dial tcp: no such host")}
	got := classify(err)
	if got.Kind != KindNetworkFailure {
		t.Fatalf("kind = %s, want %s", got.Kind, KindNetworkFailure)
	}
	if !errors.Is(got, err) {
		t.Fatal("original error must be preserved in the chain")
	}
}

func TestClassifyPassesThroughGenerationError(t *testing.T) {
	original := &GenerationError{Kind: KindNoImageReturned, Err: errors.New("no image part")}
	if got := classify(original); got != original {
		t.Fatalf("classify rewrapped an already-classified error: %v", got)
	}
}
