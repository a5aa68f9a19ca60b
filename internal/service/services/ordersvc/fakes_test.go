package ordersvc

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/itablerepo"
	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
)

type tableKey struct {
	clientID int64
	number   int
}

type memState struct {
	orders map[int64]order.Order
	items  []orderitem.OrderItem
	tables map[tableKey]table.Table
}

func (s memState) clone() memState {
	c := memState{
		orders: make(map[int64]order.Order, len(s.orders)),
		items:  slices.Clone(s.items),
		tables: make(map[tableKey]table.Table, len(s.tables)),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.tables {
		c.tables[k] = v
	}
	return c
}

// memStore is an in-memory order/item/table database with transaction snapshots.
type memStore struct {
	mu     sync.Mutex
	state  memState
	nextID int64

	failItemInsert  error
	failTableSet    error
	failCountActive error
	failTableLock   error

	calls          []string
	lastOrderQuery order.QueryOrdersModel
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			orders: map[int64]order.Order{},
			tables: map[tableKey]table.Table{},
		},
	}
}

func (s *memStore) addTable(clientID int64, number int, status table.Status) {
	s.state.tables[tableKey{clientID, number}] = table.Table{
		ClientID: clientID,
		Number:   number,
		Capacity: table.DefaultCapacity,
		Status:   status,
	}
}

func (s *memStore) tableStatus(clientID int64, number int) table.Status {
	return s.state.tables[tableKey{clientID, number}].Status
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memUOW struct {
	store     *memStore
	snapshot  *memState
	committed bool
}

func (u *memUOW) Begin(context.Context) error {
	snap := u.store.state.clone()
	u.snapshot = &snap
	return nil
}

func (u *memUOW) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *memUOW) Rollback(context.Context) error {
	if u.snapshot != nil && !u.committed {
		u.store.state = *u.snapshot
		u.snapshot = nil
	}
	return nil
}

func (u *memUOW) OrderRepository() iorderrepo.IOrderRepository {
	return memOrders{u.store}
}

func (u *memUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return memItems{u.store}
}

func (u *memUOW) TableRepository() itablerepo.ITableRepository {
	return memTables{u.store}
}

type memOrders struct{ s *memStore }

func (r memOrders) Insert(_ context.Context, o order.Order) (order.Order, error) {
	o.ID = r.s.id()
	r.s.state.orders[o.ID] = o
	return o, nil
}

func (r memOrders) Query(_ context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	r.s.lastOrderQuery = *filter
	result := []order.Order{}
	for _, o := range r.s.state.orders {
		if o.ClientID != filter.ClientID {
			continue
		}
		if len(filter.Ids) > 0 && !slices.Contains(filter.Ids, o.ID) {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, o.Status) {
			continue
		}
		if len(filter.TableNumbers) > 0 && !slices.Contains(filter.TableNumbers, o.TableNumber) {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	result = result[min(filter.Offset, len(result)):]
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (r memOrders) GetForUpdate(_ context.Context, clientID, id int64) (order.Order, error) {
	o, ok := r.s.state.orders[id]
	if !ok || o.ClientID != clientID {
		return order.Order{}, poserr.ErrOrderNotFound
	}
	return o, nil
}

func (r memOrders) UpdateStatus(_ context.Context, clientID, id int64, status order.Status, updatedAt time.Time) (int, error) {
	o, ok := r.s.state.orders[id]
	if !ok || o.ClientID != clientID {
		return 0, poserr.ErrOrderNotFound
	}
	o.Status = status
	o.UpdatedAt = updatedAt
	r.s.state.orders[id] = o
	return o.TableNumber, nil
}

func (r memOrders) CountActiveByTable(_ context.Context, clientID int64, tableNumber int) (int, error) {
	r.s.calls = append(r.s.calls, fmt.Sprintf("count active %d", tableNumber))
	if r.s.failCountActive != nil {
		return 0, r.s.failCountActive
	}
	n := 0
	for _, o := range r.s.state.orders {
		if o.ClientID == clientID && o.TableNumber == tableNumber && o.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

type memItems struct{ s *memStore }

func (r memItems) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	if r.s.failItemInsert != nil {
		return nil, r.s.failItemInsert
	}
	result := make([]orderitem.OrderItem, len(items))
	for i, item := range items {
		item.ID = r.s.id()
		r.s.state.items = append(r.s.state.items, item)
		result[i] = item
	}
	return result, nil
}

func (r memItems) Query(_ context.Context, filter *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	result := []orderitem.OrderItem{}
	for _, item := range r.s.state.items {
		if item.ClientID != filter.ClientID {
			continue
		}
		if len(filter.OrderIds) > 0 && !slices.Contains(filter.OrderIds, item.OrderID) {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

type memTables struct{ s *memStore }

func (r memTables) Insert(_ context.Context, t table.Table) (table.Table, error) {
	k := tableKey{t.ClientID, t.Number}
	if _, ok := r.s.state.tables[k]; ok {
		return table.Table{}, poserr.ErrTableExists
	}
	r.s.state.tables[k] = t
	return t, nil
}

func (r memTables) Query(_ context.Context, filter *table.QueryTablesModel) ([]table.Table, error) {
	result := []table.Table{}
	for _, t := range r.s.state.tables {
		if t.ClientID == filter.ClientID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r memTables) Get(_ context.Context, clientID int64, number int) (table.Table, error) {
	t, ok := r.s.state.tables[tableKey{clientID, number}]
	if !ok {
		return table.Table{}, poserr.ErrTableNotFound
	}
	return t, nil
}

func (r memTables) LockByNumber(_ context.Context, clientID int64, number int) (bool, error) {
	r.s.calls = append(r.s.calls, fmt.Sprintf("lock table %d", number))
	if r.s.failTableLock != nil {
		return false, r.s.failTableLock
	}
	_, ok := r.s.state.tables[tableKey{clientID, number}]
	return ok, nil
}

func (r memTables) SetStatus(_ context.Context, clientID int64, number int, status table.Status) (bool, error) {
	if r.s.failTableSet != nil {
		return false, r.s.failTableSet
	}
	k := tableKey{clientID, number}
	t, ok := r.s.state.tables[k]
	if !ok {
		return false, nil
	}
	t.Status = status
	r.s.state.tables[k] = t
	return true, nil
}

func (r memTables) Delete(_ context.Context, clientID int64, number int) (bool, error) {
	k := tableKey{clientID, number}
	_, ok := r.s.state.tables[k]
	delete(r.s.state.tables, k)
	return ok, nil
}

type fakeCatalog struct {
	products map[int64]product.Product
}

func (c *fakeCatalog) Resolve(_ context.Context, clientID int64, ids []int64) (map[int64]product.Product, error) {
	result := make(map[int64]product.Product, len(ids))
	for _, id := range ids {
		p, ok := c.products[id]
		if !ok || p.ClientID != clientID {
			return nil, poserr.ErrProductNotFound
		}
		result[id] = p
	}
	return result, nil
}

type sentEvent struct {
	clientID int64
	evt      event.Event
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, clientID int64, evt event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, sentEvent{clientID: clientID, evt: evt})
}

func (b *recordingBroadcaster) named(name event.Name) []sentEvent {
	var result []sentEvent
	for _, e := range b.events {
		if e.evt.Name == name {
			result = append(result, e)
		}
	}
	return result
}
