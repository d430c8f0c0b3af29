package repo

import (
	"context"
	"errors"

	"github.com/hamed0406/ruok/internal/domain"
)

// ErrUnknownService is returned for a service name that was never registered.
var ErrUnknownService = errors.New("unknown service")

// StatusStore is the status table: one reachability entry per registered
// service. Entries exist from construction and are never removed.
type StatusStore interface {
	// Transition atomically compares observed with the stored state of
	// service. When they differ it stores observed and calls onChange with
	// the previous state before the entry is released, so callbacks for one
	// service run in the order the table changed. It reports whether a
	// transition happened.
	Transition(ctx context.Context, service string, observed domain.State, onChange func(prev domain.State)) (bool, error)
	Get(ctx context.Context, service string) (domain.ServiceStatus, error)
	List(ctx context.Context) ([]domain.ServiceStatus, error)
}
