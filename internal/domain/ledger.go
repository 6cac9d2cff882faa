package domain

import "time"

// LedgerLine is one journal row read out of the legacy store. Source owned,
// read-only; the pipeline never writes these back.
type LedgerLine struct {
	Date          *time.Time `json:"date,omitempty"`
	DebitAccount  string     `json:"debit_account"`
	CreditAccount string     `json:"credit_account"`
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
}

// Account is a chart-of-accounts entry. A missing entry for a ledger code
// never fails aggregation; callers substitute a placeholder name.
type Account struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
