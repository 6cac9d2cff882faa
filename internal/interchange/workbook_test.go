package interchange

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbookFixture(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	payload := workbookFixture(t, [][]any{
		{"Cislo", "RelTpFak", "KcCelkem", "Firma"},
		{"F001", "1", "250,00", "Novák a syn"},
		{"F002", "11", "99,90", "ABC s.r.o."},
	})

	records, err := ParseWorkbook(payload)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["Cislo"] != "F001" || records[0]["KcCelkem"] != "250,00" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1]["RelTpFak"] != "11" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestParseWorkbookSkipsEmptyRows(t *testing.T) {
	payload := workbookFixture(t, [][]any{
		{"Cislo", "RelTpFak"},
		{"F001", "1"},
		{"", ""},
		{"F003", "1"},
	})

	records, err := ParseWorkbook(payload)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected empty rows to be skipped, got %d records", len(records))
	}
}

func TestParseWorkbookRejectsGarbage(t *testing.T) {
	if _, err := ParseWorkbook([]byte("not a workbook")); err == nil {
		t.Fatalf("expected error for invalid workbook payload")
	}
}
