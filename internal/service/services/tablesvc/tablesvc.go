package tablesvc

import (
	"context"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/itablerepo"
	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
	"github.com/corray333/backend-labs/pos/internal/service/models/table"
	"go.opentelemetry.io/otel"
)

type broadcaster interface {
	Broadcast(ctx context.Context, clientID int64, evt event.Event)
}

// TableService manages dining tables.
type TableService struct {
	tableRepo   itablerepo.ITableRepository
	broadcaster broadcaster
	now         func() time.Time
}

// option is a function that configures the TableService.
type option func(*TableService)

// MustNewTableService creates a new TableService.
func MustNewTableService(opts ...option) *TableService {
	s := &TableService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.tableRepo == nil {
		panic("tablesvc: table repository is not configured")
	}
	if s.broadcaster == nil {
		panic("tablesvc: broadcaster is not configured")
	}

	return s
}

// WithTableRepository sets the table repository.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithTableRepository(repo itablerepo.ITableRepository) option {
	return func(s *TableService) {
		s.tableRepo = repo
	}
}

// WithBroadcaster sets the event fan-out.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBroadcaster(b broadcaster) option {
	return func(s *TableService) {
		s.broadcaster = b
	}
}

// List returns tenant tables ordered by number.
func (s *TableService) List(ctx context.Context, clientID int64, status string) ([]table.Table, error) {
	ctx, span := otel.Tracer("tablesvc").Start(ctx, "TableService.List")
	defer span.End()

	filter := &table.QueryTablesModel{ClientID: clientID}
	if status != "" {
		st, err := table.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Statuses = []table.Status{st}
	}

	return s.tableRepo.Query(ctx, filter)
}

func (s *TableService) Get(ctx context.Context, clientID int64, number int) (table.Table, error) {
	return s.tableRepo.Get(ctx, clientID, number)
}

// Create adds a table. Numbers are unique per tenant.
func (s *TableService) Create(ctx context.Context, model table.CreateTableModel) (table.Table, error) {
	ctx, span := otel.Tracer("tablesvc").Start(ctx, "TableService.Create")
	defer span.End()

	status := table.StatusAvailable
	if model.Status != "" {
		st, err := table.ParseStatus(model.Status)
		if err != nil {
			return table.Table{}, err
		}
		status = st
	}

	capacity := model.Capacity
	if capacity <= 0 {
		capacity = table.DefaultCapacity
	}

	now := s.now().UTC()

	created, err := s.tableRepo.Insert(ctx, table.Table{
		ClientID:  model.ClientID,
		Number:    model.Number,
		Capacity:  capacity,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return table.Table{}, err
	}

	slog.Info("Table created", "client_id", model.ClientID, "number", created.Number)

	return created, nil
}

// UpdateStatus sets the table status manually and emits table:updated.
func (s *TableService) UpdateStatus(ctx context.Context, clientID int64, number int, status string) (table.Table, error) {
	ctx, span := otel.Tracer("tablesvc").Start(ctx, "TableService.UpdateStatus")
	defer span.End()

	st, err := table.ParseStatus(status)
	if err != nil {
		return table.Table{}, err
	}

	found, err := s.tableRepo.SetStatus(ctx, clientID, number, st)
	if err != nil {
		return table.Table{}, err
	}
	if !found {
		return table.Table{}, poserr.ErrTableNotFound
	}

	updated, err := s.tableRepo.Get(ctx, clientID, number)
	if err != nil {
		return table.Table{}, err
	}

	s.broadcaster.Broadcast(ctx, clientID, event.NewTableUpdated(updated))

	return updated, nil
}

func (s *TableService) Delete(ctx context.Context, clientID int64, number int) error {
	found, err := s.tableRepo.Delete(ctx, clientID, number)
	if err != nil {
		return err
	}
	if !found {
		return poserr.ErrTableNotFound
	}

	slog.Info("Table deleted", "client_id", clientID, "number", number)

	return nil
}
