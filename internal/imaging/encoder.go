package imaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Encoder turns image sources into ImagePayloads. Each method makes a single
// attempt; no retry logic lives at this layer.
type Encoder struct {
	httpClient *http.Client
}

// NewEncoder builds an encoder. A nil client gets a reusable default with a
// transfer timeout.
func NewEncoder(client *http.Client) *Encoder {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Encoder{httpClient: client}
}

// EncodeFile reads a local file and returns its base64 payload. The MIME type
// is sniffed from the file contents rather than trusted from the extension.
func (e *Encoder) EncodeFile(path string) (ImagePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImagePayload{}, &DecodeError{Err: fmt.Errorf("read %s: %w", path, err)}
	}
	return e.EncodeBytes(data, "")
}

// EncodeBytes wraps already-read bytes, validating that they look like an
// image before encoding.
func (e *Encoder) EncodeBytes(data []byte, declaredMIME string) (ImagePayload, error) {
	if len(data) == 0 {
		return ImagePayload{}, &DecodeError{Err: errors.New("empty image data")}
	}
	if !strings.HasPrefix(declaredMIME, "image/") {
		// Browsers and proxies sometimes report octet-stream; trust the bytes.
		declaredMIME = ""
	}
	payload := FromBytes(data, declaredMIME)
	if !strings.HasPrefix(payload.MIMEType, "image/") {
		return ImagePayload{}, &DecodeError{Err: fmt.Errorf("unsupported content type %q", payload.MIMEType)}
	}
	return payload, nil
}

// EncodeRemote fetches a URL and returns its base64 payload with the MIME
// type reported by the transfer. Transport failures yield NetworkError,
// non-2xx statuses FetchError, and unusable bodies DecodeError.
func (e *Encoder) EncodeRemote(ctx context.Context, url string) (ImagePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ImagePayload{}, &DecodeError{Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return ImagePayload{}, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ImagePayload{}, &FetchError{URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ImagePayload{}, &NetworkError{URL: url, Err: err}
	}
	return e.EncodeBytes(data, resp.Header.Get("Content-Type"))
}
