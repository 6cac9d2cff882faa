package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkadlec/ledgersync/internal/domain"
	"github.com/mkadlec/ledgersync/internal/legacystore"
	"github.com/mkadlec/ledgersync/internal/mapping"
)

// Side selects which column of a ledger line is matched against the account
// prefix. The source schema names the two columns asymmetrically: expense
// aggregation filters the debit column, revenue aggregation the credit
// column. By convention prefix 5 covers expense accounts and prefix 6
// revenue accounts.
type Side string

const (
	SideExpense Side = "expense"
	SideRevenue Side = "revenue"
)

// ParseSide validates a caller-supplied side string.
func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(raw))) {
	case SideExpense:
		return SideExpense, nil
	case SideRevenue:
		return SideRevenue, nil
	default:
		return "", fmt.Errorf("unknown ledger side %q", raw)
	}
}

// DateRange is an inclusive date filter.
type DateRange struct {
	From time.Time
	To   time.Time
}

// AccountTotal is one account group of an aggregation.
type AccountTotal struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// Summary holds one one-sided total. A signed profit figure
// (revenue - expense) is the caller's arithmetic, not this package's.
type Summary struct {
	Total    float64        `json:"total"`
	Accounts []AccountTotal `json:"accounts"`
}

// Aggregate computes a prefix-filtered, date-ranged sum directly over the
// ledger table of the legacy file at path, grouped by account code and
// enriched with chart-of-accounts names. Read-only and side-effect-free.
func Aggregate(path string, accountPrefix string, side Side, dateRange *DateRange) (Summary, error) {
	handle, err := legacystore.Open(path)
	if err != nil {
		return Summary{}, err
	}

	lineRows, err := handle.ReadAll(legacystore.LedgerTable)
	if err != nil {
		return Summary{}, err
	}

	// A missing or empty chart never fails aggregation; names just fall
	// back to the placeholder.
	var accounts []domain.Account
	if accountRows, accErr := handle.ReadAll(legacystore.AccountsTable); accErr == nil {
		accounts = mapAccounts(accountRows)
	}

	return aggregateLines(mapLines(lineRows), accounts, accountPrefix, side, dateRange), nil
}

// Ledger table mnemonics: Datum, UcMD (debit account), UcD (credit
// account), Kc, SText.
func mapLines(rows []domain.RawRecord) []domain.LedgerLine {
	lines := make([]domain.LedgerLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, domain.LedgerLine{
			Date:          mapping.Date(row["Datum"]),
			DebitAccount:  mapping.Text(row["UcMD"]),
			CreditAccount: mapping.Text(row["UcD"]),
			Amount:        mapping.Amount(row["Kc"]),
			Description:   mapping.Text(row["SText"]),
		})
	}
	return lines
}

// Chart table mnemonics: Ucet, Nazev.
func mapAccounts(rows []domain.RawRecord) []domain.Account {
	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, domain.Account{
			Code: mapping.Text(row["Ucet"]),
			Name: mapping.Text(row["Nazev"]),
		})
	}
	return accounts
}

func aggregateLines(lines []domain.LedgerLine, accounts []domain.Account, accountPrefix string, side Side, dateRange *DateRange) Summary {
	names := make(map[string]string, len(accounts))
	for _, account := range accounts {
		if account.Code == "" {
			continue
		}
		if _, exists := names[account.Code]; !exists {
			names[account.Code] = account.Name
		}
	}

	perAccount := make(map[string]decimal.Decimal)
	for _, line := range lines {
		code := line.DebitAccount
		if side == SideRevenue {
			code = line.CreditAccount
		}
		if !strings.HasPrefix(code, accountPrefix) {
			continue
		}
		// Dates are compared as parsed dates. Source dates may be stored
		// as text; comparing that text lexicographically silently yields
		// wrong results on non-zero-padded values.
		if dateRange != nil {
			if line.Date == nil {
				continue
			}
			if line.Date.Before(dateRange.From) || line.Date.After(dateRange.To) {
				continue
			}
		}
		perAccount[code] = perAccount[code].Add(decimal.NewFromFloat(line.Amount))
	}

	codes := make([]string, 0, len(perAccount))
	for code := range perAccount {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	summary := Summary{Accounts: []AccountTotal{}}
	total := decimal.Zero
	for _, code := range codes {
		name, ok := names[code]
		if !ok || name == "" {
			name = fmt.Sprintf("%s (name not found)", code)
		}
		amount, _ := perAccount[code].Float64()
		summary.Accounts = append(summary.Accounts, AccountTotal{Code: code, Name: name, Total: amount})
		total = total.Add(perAccount[code])
	}
	summary.Total, _ = total.Float64()

	return summary
}
