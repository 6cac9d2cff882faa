package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus is the outcome of one batch attempt.
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusPartial SyncStatus = "partial"
	SyncStatusError   SyncStatus = "error"
)

// SyncLog is one append-only audit row per batch attempt. A row is written
// even when a batch fails before processing its first record.
type SyncLog struct {
	ID           uuid.UUID  `json:"id"`
	CompanyID    int64      `json:"company_id"`
	SyncType     string     `json:"sync_type"`
	Status       SyncStatus `json:"status"`
	Processed    int        `json:"records_processed"`
	Synced       int        `json:"records_synced"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  time.Time  `json:"completed_at"`
}
