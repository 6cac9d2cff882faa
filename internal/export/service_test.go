package export

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mkadlec/ledgersync/internal/ledger"
)

func TestWriteLedgerSummary(t *testing.T) {
	service := NewService(t.TempDir())

	summary := ledger.Summary{
		Total: 150,
		Accounts: []ledger.AccountTotal{
			{Code: "512001", Name: "Cestovné", Total: 100},
			{Code: "518002", Name: "518002 (name not found)", Total: 50},
		},
	}

	path, err := service.WriteLedgerSummary("acme", 2024, ledger.SideExpense, summary)
	if err != nil {
		t.Fatalf("export returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Summary")
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header, two accounts and a total row, got %d rows", len(rows))
	}
	if rows[1][0] != "512001" || rows[1][1] != "Cestovné" {
		t.Fatalf("unexpected first account row: %v", rows[1])
	}
	if rows[3][0] != "Total" {
		t.Fatalf("expected total row last, got %v", rows[3])
	}
}
