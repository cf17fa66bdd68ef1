package appointments

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrNotFound is returned when no appointment exists for the given id
	ErrNotFound = errors.New("appointment not found")

	// ErrBackendUnavailable is returned when the persistence backend cannot
	// be reached. Surfaced as 503; never downgraded to fabricated data.
	ErrBackendUnavailable = errors.New("appointment store unavailable")

	// ErrConflict is returned when a concurrent update lost the race and
	// retries were exhausted
	ErrConflict = errors.New("appointment modified concurrently")
)

// connectivityErr reports whether err looks like the backend being
// unreachable rather than a data problem.
func connectivityErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

// wrapStoreErr annotates repository errors, marking connection-class
// failures with ErrBackendUnavailable so handlers answer 503 instead
// of 500.
func wrapStoreErr(op string, err error) error {
	if connectivityErr(err) {
		return fmt.Errorf("appointments: %s: %w: %v", op, ErrBackendUnavailable, err)
	}
	return fmt.Errorf("appointments: %s: %w", op, err)
}

// ValidationError describes a rejected booking payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// TransitionError is returned when a status mutation violates the
// lifecycle state machine.
type TransitionError struct {
	From         Status
	To           Status
	Actor        Role
	Unauthorized bool
}

func (e *TransitionError) Error() string {
	if e.Unauthorized {
		return fmt.Sprintf("%s may not move appointment from %s to %s", e.Actor, e.From, e.To)
	}
	return fmt.Sprintf("no transition from %s to %s", e.From, e.To)
}
