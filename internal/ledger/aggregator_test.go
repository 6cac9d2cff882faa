package ledger

import (
	"math"
	"testing"
	"time"

	"github.com/mkadlec/ledgersync/internal/domain"
)

func day(value string) *time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return &t
}

func testChart() []domain.Account {
	return []domain.Account{
		{Code: "512001", Name: "Cestovné"},
		{Code: "602001", Name: "Tržby ze služeb"},
	}
}

func TestAggregateEmptyLedger(t *testing.T) {
	summary := aggregateLines(nil, nil, "5", SideExpense, nil)

	if summary.Total != 0 {
		t.Fatalf("expected zero total, got %v", summary.Total)
	}
	if len(summary.Accounts) != 0 {
		t.Fatalf("expected no account groups, got %d", len(summary.Accounts))
	}
	if summary.Accounts == nil {
		t.Fatalf("expected empty slice, not nil")
	}
}

func TestAggregateExpenseWithDateRange(t *testing.T) {
	lines := []domain.LedgerLine{
		{Date: day("2024-01-10"), DebitAccount: "512001", CreditAccount: "221001", Amount: 100},
		{Date: day("2024-02-01"), DebitAccount: "518002", CreditAccount: "221001", Amount: 50},
	}

	ranged := aggregateLines(lines, testChart(), "5", SideExpense, &DateRange{
		From: *day("2024-01-01"),
		To:   *day("2024-01-31"),
	})
	if ranged.Total != 100 {
		t.Fatalf("expected ranged total 100, got %v", ranged.Total)
	}
	if len(ranged.Accounts) != 1 {
		t.Fatalf("expected one account group, got %d", len(ranged.Accounts))
	}
	if ranged.Accounts[0].Code != "512001" || ranged.Accounts[0].Name != "Cestovné" {
		t.Fatalf("unexpected account group: %+v", ranged.Accounts[0])
	}

	unfiltered := aggregateLines(lines, testChart(), "5", SideExpense, nil)
	if unfiltered.Total != 150 {
		t.Fatalf("expected unfiltered total 150, got %v", unfiltered.Total)
	}
	if len(unfiltered.Accounts) != 2 {
		t.Fatalf("expected two account groups, got %d", len(unfiltered.Accounts))
	}
}

func TestAggregateExcludingRangeThenWidening(t *testing.T) {
	lines := []domain.LedgerLine{
		{Date: day("2024-03-05"), DebitAccount: "501001", Amount: 10},
		{Date: day("2024-03-20"), DebitAccount: "501001", Amount: 20},
	}

	excluded := aggregateLines(lines, nil, "5", SideExpense, &DateRange{
		From: *day("2023-01-01"),
		To:   *day("2023-12-31"),
	})
	if excluded.Total != 0 || len(excluded.Accounts) != 0 {
		t.Fatalf("expected empty result for excluding range, got %+v", excluded)
	}

	widened := aggregateLines(lines, nil, "5", SideExpense, &DateRange{
		From: *day("2024-01-01"),
		To:   *day("2024-12-31"),
	})
	unfiltered := aggregateLines(lines, nil, "5", SideExpense, nil)
	if widened.Total != unfiltered.Total {
		t.Fatalf("widened range %v should reproduce unfiltered total %v", widened.Total, unfiltered.Total)
	}
}

func TestAggregateRevenueFiltersCreditSide(t *testing.T) {
	lines := []domain.LedgerLine{
		{Date: day("2024-01-10"), DebitAccount: "311001", CreditAccount: "602001", Amount: 900},
		{Date: day("2024-01-12"), DebitAccount: "602001", CreditAccount: "311001", Amount: 5},
	}

	summary := aggregateLines(lines, testChart(), "6", SideRevenue, nil)
	if summary.Total != 900 {
		t.Fatalf("expected revenue total 900 from credit side only, got %v", summary.Total)
	}
	if len(summary.Accounts) != 1 || summary.Accounts[0].Code != "602001" {
		t.Fatalf("unexpected account groups: %+v", summary.Accounts)
	}
}

func TestAggregateMissingChartNameGetsPlaceholder(t *testing.T) {
	lines := []domain.LedgerLine{
		{Date: day("2024-01-10"), DebitAccount: "549999", Amount: 42},
	}

	summary := aggregateLines(lines, testChart(), "5", SideExpense, nil)
	if len(summary.Accounts) != 1 {
		t.Fatalf("expected one account group, got %d", len(summary.Accounts))
	}
	if summary.Accounts[0].Name != "549999 (name not found)" {
		t.Fatalf("unexpected placeholder name %q", summary.Accounts[0].Name)
	}
}

func TestAggregateSkipsUndatedLinesWhenRanged(t *testing.T) {
	lines := []domain.LedgerLine{
		{Date: nil, DebitAccount: "501001", Amount: 10},
		{Date: day("2024-03-05"), DebitAccount: "501001", Amount: 20},
	}

	ranged := aggregateLines(lines, nil, "5", SideExpense, &DateRange{
		From: *day("2024-01-01"),
		To:   *day("2024-12-31"),
	})
	if ranged.Total != 20 {
		t.Fatalf("expected undated line excluded under range, got %v", ranged.Total)
	}

	unfiltered := aggregateLines(lines, nil, "5", SideExpense, nil)
	if unfiltered.Total != 30 {
		t.Fatalf("expected undated line included without range, got %v", unfiltered.Total)
	}
}

func TestMapLinesCastsTextDates(t *testing.T) {
	rows := []domain.RawRecord{
		{"Datum": "2024-01-09", "UcMD": "512001", "UcD": "221001", "Kc": "100,50", "SText": "služební cesta"},
		{"Datum": "leden", "UcMD": "518002", "UcD": "221001", "Kc": "50", "SText": ""},
	}

	lines := mapLines(rows)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Date == nil || lines[0].Date.Format("2006-01-02") != "2024-01-09" {
		t.Fatalf("unexpected date %v", lines[0].Date)
	}
	if math.Abs(lines[0].Amount-100.5) > 1e-6 {
		t.Fatalf("unexpected amount %v", lines[0].Amount)
	}
	// Unparseable text dates come back nil, never compared as text.
	if lines[1].Date != nil {
		t.Fatalf("expected nil date for unparseable text, got %v", lines[1].Date)
	}
}

func TestParseSide(t *testing.T) {
	if side, err := ParseSide("expense"); err != nil || side != SideExpense {
		t.Fatalf("unexpected result %s (%v)", side, err)
	}
	if side, err := ParseSide("Revenue"); err != nil || side != SideRevenue {
		t.Fatalf("unexpected result %s (%v)", side, err)
	}
	if _, err := ParseSide("profit"); err == nil {
		t.Fatalf("expected error for unknown side")
	}
}
