package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/ruok/internal/domain"
	"github.com/hamed0406/ruok/internal/repo"
)

type entry struct {
	mu        sync.Mutex
	state     domain.State
	probes    int64
	checkedAt time.Time
	changedAt time.Time
}

func (e *entry) snapshot(name string) domain.ServiceStatus {
	return domain.ServiceStatus{
		Service:   name,
		State:     e.state,
		Probes:    e.probes,
		CheckedAt: e.checkedAt,
		ChangedAt: e.changedAt,
	}
}

// Store keeps the status table in memory. The set of entries is fixed at
// construction, so the map itself is never written afterwards and only the
// per-service mutex guards an entry.
type Store struct {
	entries map[string]*entry
	now     func() time.Time
}

// New creates one entry per service, each starting Up.
func New(services []string) *Store {
	m := make(map[string]*entry, len(services))
	for _, name := range services {
		m[name] = &entry{state: domain.Up}
	}
	return &Store{entries: m, now: func() time.Time { return time.Now().UTC() }}
}

func (m *Store) Transition(ctx context.Context, service string, observed domain.State, onChange func(prev domain.State)) (bool, error) {
	e, ok := m.entries[service]
	if !ok {
		return false, fmt.Errorf("transition %q: %w", service, repo.ErrUnknownService)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := m.now()
	e.probes++
	e.checkedAt = now
	if e.state == observed {
		return false, nil
	}
	prev := e.state
	e.state = observed
	e.changedAt = now
	if onChange != nil {
		onChange(prev)
	}
	return true, nil
}

func (m *Store) Get(ctx context.Context, service string) (domain.ServiceStatus, error) {
	e, ok := m.entries[service]
	if !ok {
		return domain.ServiceStatus{}, fmt.Errorf("get %q: %w", service, repo.ErrUnknownService)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(service), nil
}

// List returns every entry sorted by service name.
func (m *Store) List(ctx context.Context) ([]domain.ServiceStatus, error) {
	out := make([]domain.ServiceStatus, 0, len(m.entries))
	for name, e := range m.entries {
		e.mu.Lock()
		out = append(out, e.snapshot(name))
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Service < out[j].Service })
	return out, nil
}

var _ repo.StatusStore = (*Store)(nil)
