package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkadlec/ledgersync/internal/domain"
)

type syncLogRepository struct {
	pool *pgxpool.Pool
}

// NewSyncLogRepository wires a repository backed by pgxpool.
func NewSyncLogRepository(pool *pgxpool.Pool) SyncLogRepository {
	return &syncLogRepository{pool: pool}
}

func (r *syncLogRepository) Append(ctx context.Context, entry domain.SyncLog) error {
	if r.pool == nil {
		return fmt.Errorf("sync log repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`INSERT INTO sync_logs (id, company_id, sync_type, status, records_processed, records_synced, error_message, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID,
		entry.CompanyID,
		entry.SyncType,
		string(entry.Status),
		entry.Processed,
		entry.Synced,
		entry.ErrorMessage,
		entry.StartedAt,
		entry.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}

	return nil
}

func (r *syncLogRepository) List(ctx context.Context, companyID int64, limit, offset int) ([]domain.SyncLog, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("sync log repository not initialized")
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, company_id, sync_type, status, records_processed, records_synced, error_message, started_at, completed_at
		 FROM sync_logs
		 WHERE company_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2 OFFSET $3`,
		companyID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.SyncLog{}
	for rows.Next() {
		var (
			entry       domain.SyncLog
			status      string
			startedAt   pgtype.Timestamptz
			completedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.CompanyID,
			&entry.SyncType,
			&status,
			&entry.Processed,
			&entry.Synced,
			&entry.ErrorMessage,
			&startedAt,
			&completedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", scanErr)
		}

		entry.Status = domain.SyncStatus(status)
		if startedAt.Valid {
			entry.StartedAt = startedAt.Time
		}
		if completedAt.Valid {
			entry.CompletedAt = completedAt.Time
		}

		logs = append(logs, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate sync logs: %w", rowsErr)
	}

	return logs, nil
}
