package order

import (
	"database/sql/driver"

	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
)

// Status is a step of the order lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCancelled Status = "cancelled"
)

// forward lists the single allowed successor of each non-terminal status.
var forward = map[Status]Status{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusServed,
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus returns poserr.ErrInvalidStatus for unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCancelled:
		return Status(s), nil
	default:
		return "", poserr.ErrInvalidStatus
	}
}

// IsTerminal reports whether no further transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// IsActive reports whether an order in s keeps its table occupied.
func (s Status) IsActive() bool {
	return !s.IsTerminal()
}

// CanTransition reports whether the linear lifecycle allows from -> to.
// Setting the current status again is always allowed.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}

	return forward[from] == to
}

// ActiveStatuses returns the statuses that keep a table occupied.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusPreparing, StatusReady}
}
