package crawler

import (
	"errors"
	"fmt"
)

// ErrLedgerUnavailable marks infrastructure failures (connection refused,
// timeout) talking to a ledger backend. Callers retry with bounded backoff;
// it is never folded into StatusAlreadyClaimed.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

// InvalidURLError reports a candidate URL that could not be normalized.
// Such candidates are dropped and logged, never fatal.
type InvalidURLError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid url %q: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying parse error.
func (e *InvalidURLError) Unwrap() error {
	return e.Err
}
