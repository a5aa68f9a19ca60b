package table

import (
	"database/sql/driver"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
)

// Status is the occupancy state of a table.
type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusReserved  Status = "reserved"
)

// DefaultCapacity is used when a table is created without capacity.
const DefaultCapacity = 4

func (s Status) String() string {
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// ParseStatus returns poserr.ErrInvalidStatus for unknown values.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusAvailable, StatusOccupied, StatusReserved:
		return Status(s), nil
	default:
		return "", poserr.ErrInvalidStatus
	}
}

// Table represents a dining table of a tenant.
type Table struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Number    int       `json:"number"`
	Capacity  int       `json:"capacity"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryTablesModel represents filter parameters for querying tables.
type QueryTablesModel struct {
	ClientID int64
	Statuses []Status
}

// CreateTableModel carries the fields of a new table. Zero capacity and empty
// status fall back to DefaultCapacity and StatusAvailable.
type CreateTableModel struct {
	ClientID int64
	Number   int
	Capacity int
	Status   string
}
