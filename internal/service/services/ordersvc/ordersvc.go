package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/itablerepo"
	"github.com/corray333/backend-labs/pos/internal/dal/postgres"
	"github.com/corray333/backend-labs/pos/internal/dal/uow"
	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"github.com/corray333/backend-labs/pos/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/corray333/backend-labs/pos/internal/service/models/product"
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// OrderService is a service for managing the order lifecycle.
type OrderService struct {
	newUOW      func() unitOfWork
	catalog     catalog
	broadcaster broadcaster
	strict      bool
	now         func() time.Time
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	TableRepository() itablerepo.ITableRepository
}

type catalog interface {
	Resolve(ctx context.Context, clientID int64, ids []int64) (map[int64]product.Product, error)
}

type broadcaster interface {
	Broadcast(ctx context.Context, clientID int64, evt event.Event)
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: unit of work is not configured")
	}
	if s.catalog == nil {
		panic("ordersvc: catalog is not configured")
	}
	if s.broadcaster == nil {
		panic("ordersvc: broadcaster is not configured")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(pgClient)
		}
	}
}

// WithUnitOfWorkFactory replaces the Postgres unit of work.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory[T unitOfWork](factory func() T) option {
	return func(s *OrderService) {
		s.newUOW = func() unitOfWork {
			return factory()
		}
	}
}

// WithCatalog sets the product catalog used to snapshot prices.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(c catalog) option {
	return func(s *OrderService) {
		s.catalog = c
	}
}

// WithBroadcaster sets the event fan-out.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBroadcaster(b broadcaster) option {
	return func(s *OrderService) {
		s.broadcaster = b
	}
}

// WithStrictTransitions enables the linear lifecycle check on status updates.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithStrictTransitions(strict bool) option {
	return func(s *OrderService) {
		s.strict = strict
	}
}

// CreateOrder places an order with product snapshots and occupies its table.
// Header, items and table status are written in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, model order.CreateOrderModel) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("client_id", model.ClientID),
		attribute.Int("table_number", model.TableNumber),
	)

	if len(model.Items) == 0 {
		return order.Order{}, poserr.ErrEmptyOrder
	}

	ids := make([]int64, 0, len(model.Items))
	seen := make(map[int64]struct{}, len(model.Items))
	for _, item := range model.Items {
		if item.Quantity < 1 {
			return order.Order{}, poserr.ErrInvalidQuantity
		}
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.catalog.Resolve(ctx, model.ClientID, ids)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to resolve products: %w", err)
	}

	now := s.now().UTC()
	total := decimal.Zero
	items := make([]orderitem.OrderItem, 0, len(model.Items))
	for _, item := range model.Items {
		p := products[item.ProductID]
		line := orderitem.OrderItem{
			ClientID:    model.ClientID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    item.Quantity,
			Price:       p.Price,
			Category:    p.Category,
			CreatedAt:   now,
		}
		total = total.Add(line.Subtotal())
		items = append(items, line)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return order.Order{}, err
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	created, err := work.OrderRepository().Insert(ctx, order.Order{
		ClientID:    model.ClientID,
		TableNumber: model.TableNumber,
		Comment:     model.Comment,
		CreatedBy:   model.CreatedBy,
		TotalPrice:  total,
		Status:      order.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = created.ID
	}

	created.Items, err = work.OrderItemRepository().BulkInsert(ctx, items)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order items: %w", err)
	}

	found, err := work.TableRepository().SetStatus(ctx, model.ClientID, model.TableNumber, table.StatusOccupied)
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to occupy table: %w", err)
	}
	if !found {
		slog.Warn("Order placed for unknown table",
			"client_id", model.ClientID,
			"table_number", model.TableNumber,
			"order_id", created.ID,
		)
	}

	if err := work.Commit(ctx); err != nil {
		return order.Order{}, fmt.Errorf("failed to commit order: %w", err)
	}

	slog.Info("Order created",
		"client_id", model.ClientID,
		"order_id", created.ID,
		"table_number", created.TableNumber,
		"total_price", created.TotalPrice.StringFixed(2),
	)

	s.broadcaster.Broadcast(ctx, model.ClientID, event.NewOrderCreated(created))

	return created, nil
}

// UpdateStatus moves an order to a new status.
// Reaching served or cancelled frees the table once no active order remains on it.
// Reaching ready on an order with kitchen and bar items also raises kitchen:ready.
func (s *OrderService) UpdateStatus(ctx context.Context, model order.UpdateStatusModel) error {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.UpdateStatus")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("client_id", model.ClientID),
		attribute.Int64("order_id", model.OrderID),
		attribute.String("status", model.Status),
	)

	status, err := order.ParseStatus(model.Status)
	if err != nil {
		return err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.Error("Failed to rollback transaction", "error", err)
		}
	}()

	orders := work.OrderRepository()

	if s.strict {
		current, err := orders.GetForUpdate(ctx, model.ClientID, model.OrderID)
		if err != nil {
			return err
		}
		if !order.CanTransition(current.Status, status) {
			return fmt.Errorf("%w: %s -> %s", poserr.ErrInvalidTransition, current.Status, status)
		}
	}

	tableNumber, err := orders.UpdateStatus(ctx, model.ClientID, model.OrderID, status, s.now().UTC())
	if err != nil {
		return err
	}

	if status.IsTerminal() {
		if err := s.releaseTable(ctx, work, model.ClientID, tableNumber); err != nil {
			return err
		}
	}

	var mixed bool
	if status == order.StatusReady {
		items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{
			ClientID: model.ClientID,
			OrderIds: []int64{model.OrderID},
		})
		if err != nil {
			return fmt.Errorf("failed to load order items: %w", err)
		}
		mixed = orderitem.IsMixed(items)
	}

	if err := work.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	slog.Info("Order status updated",
		"client_id", model.ClientID,
		"order_id", model.OrderID,
		"status", status,
	)

	s.broadcaster.Broadcast(ctx, model.ClientID, event.NewOrderUpdated(model.OrderID, status))
	if mixed {
		s.broadcaster.Broadcast(ctx, model.ClientID, event.NewKitchenReady(model.OrderID, tableNumber))
	}

	return nil
}

// releaseTable locks the table row before counting so a concurrent release or
// a concurrent CreateOrder on the same table sees this transaction's outcome.
func (s *OrderService) releaseTable(ctx context.Context, work unitOfWork, clientID int64, tableNumber int) error {
	found, err := work.TableRepository().LockByNumber(ctx, clientID, tableNumber)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	active, err := work.OrderRepository().CountActiveByTable(ctx, clientID, tableNumber)
	if err != nil {
		return fmt.Errorf("failed to count active orders: %w", err)
	}
	if active > 0 {
		return nil
	}

	if _, err := work.TableRepository().SetStatus(ctx, clientID, tableNumber, table.StatusAvailable); err != nil {
		return fmt.Errorf("failed to release table: %w", err)
	}

	return nil
}

// ListOrders returns one page of tenant orders newest first with items attached.
// A non-empty category keeps only the items of that category.
func (s *OrderService) ListOrders(ctx context.Context, model order.ListOrdersModel) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	clientID := model.ClientID
	filter := &order.QueryOrdersModel{
		ClientID: clientID,
		Limit:    clampLimit(model.Limit),
		Offset:   max(model.Offset, 0),
	}
	if model.Status != "" {
		st, err := order.ParseStatus(model.Status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []order.Status{st}
	}
	if model.TableNumber > 0 {
		filter.TableNumbers = []int{model.TableNumber}
	}

	var cat product.Category
	if model.Category != "" {
		c, err := product.ParseCategory(model.Category)
		if err != nil {
			return nil, err
		}
		cat = c
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	if err := s.attachItems(ctx, work, clientID, orders); err != nil {
		return nil, err
	}

	if cat != "" {
		for i := range orders {
			orders[i].Items = orderitem.FilterByCategory(orders[i].Items, cat)
		}
	}

	return orders, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}

// GetOrder returns a single order with its items.
func (s *OrderService) GetOrder(ctx context.Context, clientID, id int64) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.GetOrder")
	defer span.End()

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		ClientID: clientID,
		Ids:      []int64{id},
	})
	if err != nil {
		return order.Order{}, err
	}
	if len(orders) == 0 {
		return order.Order{}, poserr.ErrOrderNotFound
	}

	if err := s.attachItems(ctx, work, clientID, orders); err != nil {
		return order.Order{}, err
	}

	return orders[0], nil
}

func (s *OrderService) attachItems(ctx context.Context, work unitOfWork, clientID int64, orders []order.Order) error {
	itemQuery := &orderitem.QueryOrderItemsModel{ClientID: clientID}
	for _, o := range orders {
		itemQuery.OrderIds = append(itemQuery.OrderIds, o.ID)
	}

	items, err := work.OrderItemRepository().Query(ctx, itemQuery)
	if err != nil {
		return err
	}

	byOrder := make(map[int64][]orderitem.OrderItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []orderitem.OrderItem{}
		}
	}

	return nil
}
