package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkadlec/ledgersync/internal/domain"
	"github.com/mkadlec/ledgersync/internal/mapping"
	"github.com/mkadlec/ledgersync/internal/repository"
)

// Mode selects the idempotence strategy of an import. Both strategies are
// explicit, named choices.
type Mode string

const (
	// ModeMerge updates rows matched by natural key and inserts the rest.
	ModeMerge Mode = "merge"
	// ModeReplace drops the company's existing rows, then inserts
	// everything fresh.
	ModeReplace Mode = "replace"
)

// ParseMode validates a caller-supplied mode string. Empty means merge.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", fmt.Errorf("unknown import mode %q", raw)
	}
}

// Result is the outcome of one batch: the persisted audit row plus the
// per-outcome counters callers assert on.
type Result struct {
	Log      domain.SyncLog `json:"log"`
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Deleted  int64          `json:"deleted"`
	Errors   []string       `json:"errors,omitempty"`
}

// Service reconciles raw source rows against the canonical store.
//
// The natural key is (company, invoice number), deliberately looser than
// the legacy row id: the legacy numeric id is not stable across full
// re-exports, the human-readable number is the business identity.
//
// Batches for the same company must not overlap; serializing them is the
// caller's responsibility. There is no cancellation inside the loop.
type Service struct {
	invoices repository.InvoiceRepository
	logs     repository.SyncLogRepository
	now      func() time.Time
}

// NewService creates a new reconciliation service.
func NewService(invoices repository.InvoiceRepository, logs repository.SyncLogRepository) *Service {
	return &Service{
		invoices: invoices,
		logs:     logs,
		now:      time.Now,
	}
}

// ImportBatch maps and upserts one batch of raw rows for a company. One bad
// record never aborts the batch: per-record failures are counted, logged
// and skipped. A sync log row is always written, including for batches that
// fail before processing any record.
func (s *Service) ImportBatch(ctx context.Context, companyID int64, records []domain.RawRecord, source domain.SourceType, mode Mode) (Result, error) {
	entry := domain.SyncLog{
		ID:        uuid.New(),
		CompanyID: companyID,
		SyncType:  string(source),
		StartedAt: s.now(),
	}
	result := Result{}

	if mode != ModeMerge && mode != ModeReplace {
		err := fmt.Errorf("unknown import mode %q", mode)
		result.Log = s.finish(ctx, entry, result, err)
		return result, err
	}

	if mode == ModeReplace {
		deleted, err := s.invoices.DeleteByCompany(ctx, companyID)
		if err != nil {
			err = fmt.Errorf("failed to clear existing invoices: %w", err)
			result.Log = s.finish(ctx, entry, result, err)
			return result, err
		}
		result.Deleted = deleted
	}

	for i, raw := range records {
		entry.Processed++

		invoice, err := mapping.Map(raw, source)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", i+1, err))
			continue
		}
		invoice.CompanyID = companyID

		if err := s.reconcile(ctx, invoice, mode, &result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("record %d (%s): %v", i+1, invoice.Number, err))
			continue
		}
		entry.Synced++
	}

	result.Log = s.finish(ctx, entry, result, nil)
	return result, nil
}

// reconcile decides insert vs. update for one canonical record.
func (s *Service) reconcile(ctx context.Context, invoice domain.Invoice, mode Mode, result *Result) error {
	if mode == ModeReplace {
		if _, err := s.invoices.Insert(ctx, invoice); err != nil {
			return err
		}
		result.Inserted++
		return nil
	}

	existing, err := s.invoices.FindByNumber(ctx, invoice.Direction, invoice.CompanyID, invoice.Number)
	switch {
	case err == nil:
		if _, updateErr := s.invoices.Update(ctx, existing.ID, invoice); updateErr != nil {
			return updateErr
		}
		result.Updated++
		return nil
	case errors.Is(err, repository.ErrNotFound):
		if _, insertErr := s.invoices.Insert(ctx, invoice); insertErr != nil {
			return insertErr
		}
		result.Inserted++
		return nil
	default:
		return err
	}
}

// RecordFailure writes the audit row for a batch that failed before any
// record could be processed, e.g. no file located or an unparseable
// container.
func (s *Service) RecordFailure(ctx context.Context, companyID int64, source domain.SourceType, cause error) domain.SyncLog {
	entry := domain.SyncLog{
		ID:        uuid.New(),
		CompanyID: companyID,
		SyncType:  string(source),
		StartedAt: s.now(),
	}
	return s.finish(ctx, entry, Result{}, cause)
}

func (s *Service) finish(ctx context.Context, entry domain.SyncLog, result Result, fatal error) domain.SyncLog {
	entry.CompletedAt = s.now()

	switch {
	case fatal != nil:
		entry.Status = domain.SyncStatusError
		entry.ErrorMessage = fatal.Error()
	case len(result.Errors) == 0:
		entry.Status = domain.SyncStatusSuccess
	case entry.Synced > 0:
		entry.Status = domain.SyncStatusPartial
		entry.ErrorMessage = strings.Join(result.Errors, "; ")
	default:
		entry.Status = domain.SyncStatusError
		entry.ErrorMessage = strings.Join(result.Errors, "; ")
	}

	if err := s.logs.Append(ctx, entry); err != nil {
		log.Printf("failed to append sync log for company %d: %v", entry.CompanyID, err)
	}

	return entry
}
