package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the failure an identity's view is currently in.
// It is a display-level category, not the underlying error itself.
type ErrorKind string

const (
	ErrorKindNone ErrorKind = ""
	// ErrorKindIdentityUnavailable means no identity is configured, so
	// there is nothing to sync.
	ErrorKindIdentityUnavailable ErrorKind = "IDENTITY_UNAVAILABLE"
	// ErrorKindTransientRead means the last live read failed but a stale
	// snapshot is being served from the fallback store.
	ErrorKindTransientRead ErrorKind = "TRANSIENT_READ_FAILURE"
	// ErrorKindReadFailedNoFallback means the live read failed and no
	// snapshot exists to fall back to.
	ErrorKindReadFailedNoFallback ErrorKind = "READ_FAILED_NO_FALLBACK"
)

func (k ErrorKind) String() string {
	return string(k)
}

// NoFallbackError means a live read failed before any snapshot was ever
// captured for the identity, so there is nothing safe to serve.
type NoFallbackError struct {
	Identity string
	Err      error
}

func (e *NoFallbackError) Error() string {
	return fmt.Sprintf("read failed for %s with no fallback snapshot: %v", e.Identity, e.Err)
}

func (e *NoFallbackError) Unwrap() error {
	return e.Err
}

func IsNoFallbackError(err error) bool {
	var target *NoFallbackError
	return errors.As(err, &target)
}
