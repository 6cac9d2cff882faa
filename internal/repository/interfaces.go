package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mkadlec/ledgersync/internal/domain"
)

// ErrNotFound is returned when a natural-key lookup matches no row.
var ErrNotFound = errors.New("record not found")

// InvoiceRepository persists canonical invoices. Issued and received
// invoices live in structurally near-identical tables split by direction;
// the direction argument selects the table. Rows are unique per
// (company_id, number) and are only ever deleted by an operator or by a
// replace-mode import, never implicitly.
type InvoiceRepository interface {
	FindByNumber(ctx context.Context, direction domain.Direction, companyID int64, number string) (domain.StoredInvoice, error)
	Insert(ctx context.Context, invoice domain.Invoice) (domain.StoredInvoice, error)
	Update(ctx context.Context, id uuid.UUID, invoice domain.Invoice) (domain.StoredInvoice, error)
	DeleteByCompany(ctx context.Context, companyID int64) (int64, error)
	ListByCompany(ctx context.Context, direction domain.Direction, companyID int64, limit, offset int) ([]domain.StoredInvoice, error)
}

// SyncLogRepository appends batch audit rows. The log is append-only; one
// row per batch attempt, written even for batches that fail outright.
type SyncLogRepository interface {
	Append(ctx context.Context, entry domain.SyncLog) error
	List(ctx context.Context, companyID int64, limit, offset int) ([]domain.SyncLog, error)
}
