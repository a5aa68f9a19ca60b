package iauditrepo

import (
	"context"

	"github.com/corray333/backend-labs/pos/internal/service/models/auditlog"
)

// IAuditRepository is interface for audit repository.
type IAuditRepository interface {
	SaveAuditLogs(ctx context.Context, auditLogs []auditlog.AuditLogOrder) error
}
