package database

import (
	"errors"
	"fmt"
	"strings"
)

// Store outcomes surfaced to callers as distinct, typed errors. The
// claim trio (not found / expired / redeemed) must never collapse into
// a generic failure: operator tooling and host agents react to each
// differently.
var (
	ErrClaimNotFound = errors.New("claim not found")
	ErrClaimExpired  = errors.New("claim expired")
	ErrClaimRedeemed = errors.New("claim already redeemed")

	// ErrCodeCollision is returned when a freshly generated code hits
	// the unique index; the issuance service retries generation.
	ErrCodeCollision = errors.New("claim code collision")

	ErrHostNotFound    = errors.New("host not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoteNotFound    = errors.New("admin note not found")

	// ErrStoreUnavailable wraps transient persistence failures. Safe
	// to retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeErr wraps a driver error as a transient store failure.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// isUniqueViolation reports whether err is a unique-constraint
// violation. Both the modernc and mattn sqlite drivers include this
// marker in the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
