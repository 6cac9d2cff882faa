package interchange

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mkadlec/ledgersync/internal/domain"
)

// ParseWorkbook reads a manually uploaded spreadsheet batch. The upload
// template mirrors the desktop product's column mnemonics, so the first
// sheet's header row names the same fields the binary container uses and
// the rows feed the same mapping table.
func ParseWorkbook(payload []byte) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}
	if len(rows) == 0 {
		return []domain.RawRecord{}, nil
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]domain.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		record := make(domain.RawRecord, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(row) {
				record[column] = strings.TrimSpace(row[i])
			} else {
				record[column] = nil
			}
		}
		records = append(records, record)
	}

	return records, nil
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
