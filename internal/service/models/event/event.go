package event

import (
	"encoding/json"
	"time"

	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
)

// Name is the wire name of an event.
type Name string

const (
	OrderCreated Name = "order:created"
	OrderUpdated Name = "order:updated"
	KitchenReady Name = "kitchen:ready"
	TableUpdated Name = "table:updated"
)

// Event is a single state change pushed to observers.
type Event struct {
	Name Name `json:"event"`
	Data any  `json:"data"`
}

// OrderUpdatedPayload is the body of order:updated.
type OrderUpdatedPayload struct {
	ID     int64        `json:"id"`
	Status order.Status `json:"status"`
}

// KitchenReadyPayload is the body of kitchen:ready.
type KitchenReadyPayload struct {
	OrderID     int64 `json:"orderId"`
	TableNumber int   `json:"tableNumber"`
}

// NewOrderCreated carries the full order including items.
func NewOrderCreated(o order.Order) Event {
	return Event{Name: OrderCreated, Data: o}
}

// NewOrderUpdated carries only the id and the new status.
func NewOrderUpdated(id int64, status order.Status) Event {
	return Event{Name: OrderUpdated, Data: OrderUpdatedPayload{ID: id, Status: status}}
}

// NewKitchenReady tells the bar that the kitchen part of a mixed order is done.
func NewKitchenReady(orderID int64, tableNumber int) Event {
	return Event{Name: KitchenReady, Data: KitchenReadyPayload{OrderID: orderID, TableNumber: tableNumber}}
}

// NewTableUpdated carries the full table.
func NewTableUpdated(t table.Table) Event {
	return Event{Name: TableUpdated, Data: t}
}

// Envelope is the broker representation of an event.
type Envelope struct {
	Event     Name            `json:"event"`
	ClientID  int64           `json:"client_id"`
	Data      json.RawMessage `json:"data"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// NewEnvelope marshals evt for the tenant.
func NewEnvelope(clientID int64, evt Event, now time.Time) (Envelope, error) {
	data, err := json.Marshal(evt.Data)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		Event:     evt.Name,
		ClientID:  clientID,
		Data:      data,
		EmittedAt: now,
	}, nil
}
