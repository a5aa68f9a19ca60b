package auditsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/pos/internal/dal/interfaces/iauditrepo"
	"github.com/corray333/backend-labs/pos/internal/service/models/auditlog"
	"github.com/corray333/backend-labs/pos/internal/service/models/event"
	"github.com/corray333/backend-labs/pos/internal/service/models/order"
	"go.opentelemetry.io/otel"
)

// ErrMalformedEvent marks payloads that will never succeed on redelivery.
var ErrMalformedEvent = errors.New("malformed event")

// AuditService records order status history from broker events.
type AuditService struct {
	auditRepo iauditrepo.IAuditRepository
	now       func() time.Time
}

// option is a function that configures the AuditService.
type option func(*AuditService)

// MustNewAuditService creates a new AuditService.
func MustNewAuditService(opts ...option) *AuditService {
	s := &AuditService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.auditRepo == nil {
		panic("auditsvc: audit repository is not configured")
	}

	return s
}

// WithAuditRepository sets the audit repository for the AuditService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAuditRepository(auditRepo iauditrepo.IAuditRepository) option {
	return func(s *AuditService) {
		s.auditRepo = auditRepo
	}
}

// ProcessEvent stores one history row per order:created or order:updated event.
// Other events are ignored.
func (s *AuditService) ProcessEvent(ctx context.Context, env event.Envelope) error {
	ctx, span := otel.Tracer("auditsvc").Start(ctx, "AuditService.ProcessEvent")
	defer span.End()

	entry, ok, err := s.toAuditLog(env)
	if err != nil {
		return err
	}
	if !ok {
		slog.Debug("Skipping event", "event", env.Event)

		return nil
	}

	if err := s.auditRepo.SaveAuditLogs(ctx, []auditlog.AuditLogOrder{entry}); err != nil {
		slog.Error("Failed to save audit log", "error", err)

		return err
	}

	slog.Info("Audit log processed successfully",
		"client_id", entry.ClientID,
		"order_id", entry.OrderID,
		"status", entry.OrderStatus,
	)

	return nil
}

func (s *AuditService) toAuditLog(env event.Envelope) (auditlog.AuditLogOrder, bool, error) {
	var (
		orderID int64
		status  order.Status
	)

	switch env.Event {
	case event.OrderCreated:
		var o order.Order
		if err := json.Unmarshal(env.Data, &o); err != nil {
			return auditlog.AuditLogOrder{}, false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		orderID, status = o.ID, o.Status
	case event.OrderUpdated:
		var p event.OrderUpdatedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return auditlog.AuditLogOrder{}, false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		orderID, status = p.ID, p.Status
	default:
		return auditlog.AuditLogOrder{}, false, nil
	}

	if orderID == 0 {
		return auditlog.AuditLogOrder{}, false, fmt.Errorf("%w: missing order id", ErrMalformedEvent)
	}
	if _, err := order.ParseStatus(status.String()); err != nil {
		return auditlog.AuditLogOrder{}, false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	emittedAt := env.EmittedAt
	if emittedAt.IsZero() {
		emittedAt = s.now().UTC()
	}

	return auditlog.AuditLogOrder{
		ClientID:    env.ClientID,
		OrderID:     orderID,
		OrderStatus: status.String(),
		Event:       string(env.Event),
		EmittedAt:   emittedAt,
		CreatedAt:   s.now().UTC(),
	}, true, nil
}
