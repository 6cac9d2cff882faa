package domain

import (
	"time"

	"github.com/google/uuid"
)

// Direction tells which side of the books an invoice belongs to.
type Direction string

const (
	DirectionIssued   Direction = "issued"
	DirectionReceived Direction = "received"
)

// SourceType identifies the feed a record came from.
type SourceType string

const (
	// SourceLegacyStore is the desktop product's database container.
	SourceLegacyStore SourceType = "mdb"
	// SourceInterchange is the XML invoice-batch interchange document.
	SourceInterchange SourceType = "xml"
	// SourceWorkbook is a manually uploaded spreadsheet batch.
	SourceWorkbook SourceType = "xlsx"
)

// VATBand is one (base, VAT) amount pair on an invoice. Up to four bands
// apply, one per tax rate.
type VATBand struct {
	Base float64 `json:"base"`
	VAT  float64 `json:"vat"`
}

// Invoice is the canonical, source-independent invoice representation.
// Total should approximate the sum of the band amounts; violations are
// persisted as-is, never rejected.
type Invoice struct {
	CompanyID      int64      `json:"company_id"`
	Number         string     `json:"number"`
	Direction      Direction  `json:"direction"`
	PartnerName    string     `json:"partner_name"`
	PartnerTaxID   string     `json:"partner_tax_id"`
	PartnerVATID   string     `json:"partner_vat_id"`
	PartnerAddress string     `json:"partner_address"`
	IssueDate      *time.Time `json:"issue_date,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Bands          [4]VATBand `json:"bands"`
	Total          float64    `json:"total"`
	Liquidated     float64    `json:"liquidated"`
	Outstanding    float64    `json:"outstanding"`
	SourceID       string     `json:"source_id"`
	SourceType     SourceType `json:"source_type"`
}

// StoredInvoice is an Invoice as persisted, with its surrogate key.
// Rows are unique per (company_id, number) within a direction table.
type StoredInvoice struct {
	ID        uuid.UUID `json:"id"`
	Invoice   Invoice   `json:"invoice"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
