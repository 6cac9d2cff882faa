package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkadlec/ledgersync/internal/domain"
)

// invoiceRepository implements InvoiceRepository backed by pgxpool.
type invoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new invoice repository.
func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepository{pool: pool}
}

// tableFor maps a direction to its table. The set is fixed; table names are
// never taken from input.
func tableFor(direction domain.Direction) (string, error) {
	switch direction {
	case domain.DirectionIssued:
		return "issued_invoices", nil
	case domain.DirectionReceived:
		return "received_invoices", nil
	default:
		return "", fmt.Errorf("unknown invoice direction %q", direction)
	}
}

const invoiceColumns = `id, company_id, number, partner_name, partner_tax_id, partner_vat_id,
	partner_address, issue_date, due_date,
	base_0, vat_0, base_1, vat_1, base_2, vat_2, base_3, vat_3,
	total, liquidated, outstanding, source_id, source_type, created_at, updated_at`

func (r *invoiceRepository) FindByNumber(ctx context.Context, direction domain.Direction, companyID int64, number string) (domain.StoredInvoice, error) {
	table, err := tableFor(direction)
	if err != nil {
		return domain.StoredInvoice{}, err
	}

	row := r.pool.QueryRow(
		ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE company_id = $1 AND number = $2`, invoiceColumns, table),
		companyID,
		number,
	)

	stored, err := scanInvoice(row, direction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoredInvoice{}, fmt.Errorf("%w: invoice %s for company %d", ErrNotFound, number, companyID)
		}
		return domain.StoredInvoice{}, fmt.Errorf("failed to find invoice: %w", err)
	}
	return stored, nil
}

func (r *invoiceRepository) Insert(ctx context.Context, invoice domain.Invoice) (domain.StoredInvoice, error) {
	table, err := tableFor(invoice.Direction)
	if err != nil {
		return domain.StoredInvoice{}, err
	}

	id := uuid.New()
	now := time.Now()

	_, err = r.pool.Exec(
		ctx,
		fmt.Sprintf(`INSERT INTO %s (%s)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`, table, invoiceColumns),
		id,
		invoice.CompanyID,
		invoice.Number,
		invoice.PartnerName,
		invoice.PartnerTaxID,
		invoice.PartnerVATID,
		invoice.PartnerAddress,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Bands[0].Base, invoice.Bands[0].VAT,
		invoice.Bands[1].Base, invoice.Bands[1].VAT,
		invoice.Bands[2].Base, invoice.Bands[2].VAT,
		invoice.Bands[3].Base, invoice.Bands[3].VAT,
		invoice.Total,
		invoice.Liquidated,
		invoice.Outstanding,
		invoice.SourceID,
		string(invoice.SourceType),
		now,
		now,
	)
	if err != nil {
		return domain.StoredInvoice{}, fmt.Errorf("failed to insert invoice: %w", err)
	}

	return domain.StoredInvoice{ID: id, Invoice: invoice, CreatedAt: now, UpdatedAt: now}, nil
}

func (r *invoiceRepository) Update(ctx context.Context, id uuid.UUID, invoice domain.Invoice) (domain.StoredInvoice, error) {
	table, err := tableFor(invoice.Direction)
	if err != nil {
		return domain.StoredInvoice{}, err
	}

	now := time.Now()

	tag, err := r.pool.Exec(
		ctx,
		fmt.Sprintf(`UPDATE %s SET
			partner_name = $2, partner_tax_id = $3, partner_vat_id = $4, partner_address = $5,
			issue_date = $6, due_date = $7,
			base_0 = $8, vat_0 = $9, base_1 = $10, vat_1 = $11,
			base_2 = $12, vat_2 = $13, base_3 = $14, vat_3 = $15,
			total = $16, liquidated = $17, outstanding = $18,
			source_id = $19, source_type = $20, updated_at = $21
		 WHERE id = $1`, table),
		id,
		invoice.PartnerName,
		invoice.PartnerTaxID,
		invoice.PartnerVATID,
		invoice.PartnerAddress,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Bands[0].Base, invoice.Bands[0].VAT,
		invoice.Bands[1].Base, invoice.Bands[1].VAT,
		invoice.Bands[2].Base, invoice.Bands[2].VAT,
		invoice.Bands[3].Base, invoice.Bands[3].VAT,
		invoice.Total,
		invoice.Liquidated,
		invoice.Outstanding,
		invoice.SourceID,
		string(invoice.SourceType),
		now,
	)
	if err != nil {
		return domain.StoredInvoice{}, fmt.Errorf("failed to update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.StoredInvoice{}, fmt.Errorf("%w: invoice %s", ErrNotFound, id)
	}

	return domain.StoredInvoice{ID: id, Invoice: invoice, UpdatedAt: now}, nil
}

// DeleteByCompany removes the company's rows from both direction tables and
// returns the number of rows dropped. Used by replace-mode imports only.
func (r *invoiceRepository) DeleteByCompany(ctx context.Context, companyID int64) (int64, error) {
	var deleted int64
	for _, direction := range []domain.Direction{domain.DirectionIssued, domain.DirectionReceived} {
		table, err := tableFor(direction)
		if err != nil {
			return deleted, err
		}
		tag, err := r.pool.Exec(
			ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE company_id = $1`, table),
			companyID,
		)
		if err != nil {
			return deleted, fmt.Errorf("failed to delete %s invoices: %w", direction, err)
		}
		deleted += tag.RowsAffected()
	}
	return deleted, nil
}

func (r *invoiceRepository) ListByCompany(ctx context.Context, direction domain.Direction, companyID int64, limit, offset int) ([]domain.StoredInvoice, error) {
	table, err := tableFor(direction)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(
		ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE company_id = $1 ORDER BY number LIMIT $2 OFFSET $3`, invoiceColumns, table),
		companyID,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.StoredInvoice{}
	for rows.Next() {
		stored, scanErr := scanInvoice(rows, direction)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", scanErr)
		}
		invoices = append(invoices, stored)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate invoices: %w", rowsErr)
	}

	return invoices, nil
}

func scanInvoice(row pgx.Row, direction domain.Direction) (domain.StoredInvoice, error) {
	var (
		stored     domain.StoredInvoice
		issueDate  pgtype.Date
		dueDate    pgtype.Date
		sourceType string
	)

	err := row.Scan(
		&stored.ID,
		&stored.Invoice.CompanyID,
		&stored.Invoice.Number,
		&stored.Invoice.PartnerName,
		&stored.Invoice.PartnerTaxID,
		&stored.Invoice.PartnerVATID,
		&stored.Invoice.PartnerAddress,
		&issueDate,
		&dueDate,
		&stored.Invoice.Bands[0].Base, &stored.Invoice.Bands[0].VAT,
		&stored.Invoice.Bands[1].Base, &stored.Invoice.Bands[1].VAT,
		&stored.Invoice.Bands[2].Base, &stored.Invoice.Bands[2].VAT,
		&stored.Invoice.Bands[3].Base, &stored.Invoice.Bands[3].VAT,
		&stored.Invoice.Total,
		&stored.Invoice.Liquidated,
		&stored.Invoice.Outstanding,
		&stored.Invoice.SourceID,
		&sourceType,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return domain.StoredInvoice{}, err
	}

	stored.Invoice.Direction = direction
	stored.Invoice.SourceType = domain.SourceType(sourceType)
	if issueDate.Valid {
		t := issueDate.Time
		stored.Invoice.IssueDate = &t
	}
	if dueDate.Valid {
		t := dueDate.Time
		stored.Invoice.DueDate = &t
	}

	return stored, nil
}
