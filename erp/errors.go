package erp

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// FetchError is a failed call against the ERP schedule service. A
// failed fetch invalidates the whole analysis pass; callers must not
// reconcile against a partial schedule.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("erp %s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// TimeoutError is a fetch failure caused by the transport deadline.
// It is surfaced as its own type so callers can apply a retry policy
// without retrying genuine request errors.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("erp %s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

func wrapFetchError(op string, err error) error {
	if isTimeout(err) {
		return &TimeoutError{Op: op, Err: err}
	}
	return &FetchError{Op: op, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
