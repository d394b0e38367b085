// Package imaging converts local files and remote URLs into the base64
// payloads consumed by the generation client, and handles data URIs for the
// final artifacts.
package imaging

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// ImagePayload pairs raw base64 image bytes with their MIME type. Data is
// never prefixed with a data-URI scheme; use DataURI when a self-describing
// string is needed.
type ImagePayload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// FromBytes builds a payload from raw bytes. When declaredMIME is empty the
// type is sniffed from the leading bytes.
func FromBytes(data []byte, declaredMIME string) ImagePayload {
	mime := strings.TrimSpace(declaredMIME)
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return ImagePayload{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: mime,
	}
}

// Bytes decodes the base64 payload back into raw image bytes.
func (p ImagePayload) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("decode base64 payload: %w", err)}
	}
	return data, nil
}

// DataURI renders the payload as a data:<mime>;base64,<bytes> string.
func (p ImagePayload) DataURI() string {
	return "data:" + p.MIMEType + ";base64," + p.Data
}

// ParseDataURI splits a data URI back into an ImagePayload. Plain base64
// strings without a scheme are accepted as PNG for convenience.
func ParseDataURI(s string) (ImagePayload, error) {
	if !strings.HasPrefix(s, "data:") {
		return ImagePayload{Data: s, MIMEType: "image/png"}, nil
	}
	rest := strings.TrimPrefix(s, "data:")
	meta, data, ok := strings.Cut(rest, ",")
	if !ok {
		return ImagePayload{}, &DecodeError{Err: fmt.Errorf("malformed data URI")}
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if mime == "" {
		mime = "image/png"
	}
	return ImagePayload{Data: data, MIMEType: mime}, nil
}
