// Package common defines shared sentinel errors used across notepress
// components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnconfigured means the upload target is missing one of
	// access key, secret key, endpoint or bucket. Fatal to any
	// upload attempt; surfaced once, never per-reference.
	ErrUnconfigured = errors.New("uploader not configured")

	// ErrNetwork wraps transport-level failures (DNS, TLS, reset,
	// timeout). Not retried by the core.
	ErrNetwork = errors.New("network error")

	// ErrNotFound means a referenced local file is absent after all
	// fallback resolution strategies.
	ErrNotFound = errors.New("file not found")

	// ErrResponseShape means the store accepted the bytes but no public
	// URL could be derived from the destination. Treated as a failure
	// since the caller needs a URL.
	ErrResponseShape = errors.New("unexpected response shape")

	// ErrSizeLimit rejects an external download exceeding the configured
	// ceiling, whether declared via Content-Length or accumulated.
	ErrSizeLimit = errors.New("size limit exceeded")

	// ErrNoContext means relative resolution was requested but no
	// referencing document is known.
	ErrNoContext = errors.New("no referencing document")
)

// HTTPStatusError reports a non-2xx response from the object store,
// most commonly a signature mismatch (403).
type HTTPStatusError struct {
	Code int
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("store rejected request: status %d", e.Code)
	}
	return fmt.Sprintf("store rejected request: status %d: %s", e.Code, e.Body)
}
