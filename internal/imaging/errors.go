package imaging

import "fmt"

// NetworkError reports a transport-level failure (DNS, connection refused)
// while fetching a remote image. It is distinct from FetchError so callers can
// surface an actionable message for what is in practice the most common
// failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("imaging: network failure fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// FetchError reports a non-successful HTTP status when fetching a remote
// image.
type FetchError struct {
	URL    string
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("imaging: fetch %s: http %d", e.URL, e.Status)
}

// DecodeError reports bytes that could not be read or are not a usable image.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("imaging: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
