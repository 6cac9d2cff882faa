package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkadlec/ledgersync/internal/ledger"
)

const sheetName = "Summary"

// Service writes downloadable report files into a local export directory.
type Service struct {
	dir string
}

// NewService creates an export service rooted at dir.
func NewService(dir string) *Service {
	return &Service{dir: filepath.Clean(dir)}
}

// WriteLedgerSummary renders one aggregation result as a workbook and
// returns the written file's path.
func (s *Service) WriteLedgerSummary(companyKey string, year int, side ledger.Side, summary ledger.Summary) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	defaultSheet := f.GetSheetName(0)
	if defaultSheet != sheetName {
		if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
			return "", fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	header := []any{"Account", "Name", "Amount"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	rowIdx := 2
	for _, account := range summary.Accounts {
		row := []any{account.Code, account.Name, account.Total}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return "", fmt.Errorf("failed to address row %d: %w", rowIdx, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", rowIdx, err)
		}
		rowIdx++
	}

	totalCell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return "", fmt.Errorf("failed to address total row: %w", err)
	}
	totalRow := []any{"Total", "", summary.Total}
	if err := f.SetSheetRow(sheetName, totalCell, &totalRow); err != nil {
		return "", fmt.Errorf("failed to write total row: %w", err)
	}

	name := fmt.Sprintf("ledger_%s_%d_%s_%d.xlsx",
		sanitize(companyKey), year, side, time.Now().Unix())
	path := filepath.Join(s.dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	return path, nil
}

func sanitize(value string) string {
	value = strings.TrimSpace(value)
	replacer := strings.NewReplacer("/", "_", "\\", "_", "..", "_", " ", "_")
	return replacer.Replace(value)
}
