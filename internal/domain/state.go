package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is the last known reachability of a service.
type State string

const (
	Up   State = "up"
	Down State = "down"
)

// StateOf maps a probe outcome to a State.
func StateOf(success bool) State {
	if success {
		return Up
	}
	return Down
}

// CheckEvent asks the checker to probe a service once.
type CheckEvent struct {
	Service string
}

// NotifyEvent carries a detected transition to the notifier. State is the
// value stored at the moment of the transition.
type NotifyEvent struct {
	ID      uuid.UUID
	Service string
	State   State
}

func NewNotifyEvent(service string, state State) NotifyEvent {
	return NotifyEvent{ID: uuid.New(), Service: service, State: state}
}

// ServiceStatus is a point-in-time copy of one status table entry.
type ServiceStatus struct {
	Service   string    `json:"service"`
	State     State     `json:"state"`
	Probes    int64     `json:"probes"`
	CheckedAt time.Time `json:"checked_at"`
	ChangedAt time.Time `json:"changed_at"`
}
