package mapping

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mkadlec/ledgersync/internal/domain"
)

func TestMapLegacyIssuedInvoice(t *testing.T) {
	raw := domain.RawRecord{
		"Cislo":    "F001",
		"KcCelkem": "250,00",
		"RelTpFak": 1,
	}

	invoice, err := Map(raw, domain.SourceLegacyStore)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if invoice.Number != "F001" {
		t.Fatalf("expected number F001, got %q", invoice.Number)
	}
	if invoice.Direction != domain.DirectionIssued {
		t.Fatalf("expected issued direction, got %s", invoice.Direction)
	}
	if invoice.Total != 250.0 {
		t.Fatalf("expected total 250.0, got %v", invoice.Total)
	}
	if invoice.SourceType != domain.SourceLegacyStore {
		t.Fatalf("unexpected source type %s", invoice.SourceType)
	}
}

func TestMapLegacyFullRecord(t *testing.T) {
	raw := domain.RawRecord{
		"ID":       "42",
		"RelTpFak": "11",
		"Cislo":    "P2024001",
		"Datum":    "2024-03-05",
		"DatSplat": "2024-03-19",
		"Firma":    "Novák a syn",
		"ICO":      "12345678",
		"DIC":      "CZ12345678",
		"Ulice":    "Dlouhá 12",
		"PSC":      "110 00",
		"Obec":     "Praha",
		"Kc1":      "1000,00",
		"KcDPH1":   "150,00",
		"Kc3":      "500,50",
		"KcDPH3":   "105,11",
		"KcCelkem": "1755,61",
		"KcLikv":   "1000,00",
		"KcZbyv":   "755,61",
	}

	invoice, err := Map(raw, domain.SourceLegacyStore)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if invoice.Direction != domain.DirectionReceived {
		t.Fatalf("expected received direction, got %s", invoice.Direction)
	}
	if invoice.PartnerName != "Novák a syn" {
		t.Fatalf("unexpected partner name %q", invoice.PartnerName)
	}
	if invoice.PartnerAddress != "Dlouhá 12, 110 00 Praha" {
		t.Fatalf("unexpected address %q", invoice.PartnerAddress)
	}
	if invoice.IssueDate == nil || invoice.IssueDate.Format("2006-01-02") != "2024-03-05" {
		t.Fatalf("unexpected issue date %v", invoice.IssueDate)
	}
	if invoice.DueDate == nil || invoice.DueDate.Format("2006-01-02") != "2024-03-19" {
		t.Fatalf("unexpected due date %v", invoice.DueDate)
	}
	if invoice.Bands[1].Base != 1000.0 || invoice.Bands[1].VAT != 150.0 {
		t.Fatalf("unexpected band 1: %+v", invoice.Bands[1])
	}
	if invoice.Bands[3].Base != 500.5 || invoice.Bands[3].VAT != 105.11 {
		t.Fatalf("unexpected band 3: %+v", invoice.Bands[3])
	}
	if invoice.Liquidated != 1000.0 || invoice.Outstanding != 755.61 {
		t.Fatalf("unexpected settlement amounts: %v / %v", invoice.Liquidated, invoice.Outstanding)
	}
	if invoice.SourceID != "42" {
		t.Fatalf("unexpected source id %q", invoice.SourceID)
	}
}

func TestMapAmountRoundTrip(t *testing.T) {
	values := map[string]float64{
		"0":          0,
		"250,00":     250.0,
		"1234,56":    1234.56,
		"1 234,56":   1234.56,
		"-99,99":     -99.99,
		"0,01":       0.01,
		"1000000,07": 1000000.07,
	}

	for text, want := range values {
		raw := domain.RawRecord{"Cislo": "X", "RelTpFak": "1", "KcCelkem": text}
		invoice, err := Map(raw, domain.SourceLegacyStore)
		if err != nil {
			t.Fatalf("map %q returned error: %v", text, err)
		}
		if math.Abs(invoice.Total-want) > 1e-6 {
			t.Fatalf("total for %q: expected %v, got %v", text, want, invoice.Total)
		}
	}
}

func TestMapCoercesMissingAmountsToZero(t *testing.T) {
	raw := domain.RawRecord{
		"Cislo":    "F002",
		"RelTpFak": "1",
		"KcCelkem": "not a number",
	}

	invoice, err := Map(raw, domain.SourceLegacyStore)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if invoice.Total != 0.0 {
		t.Fatalf("expected non-numeric total to coerce to 0.0, got %v", invoice.Total)
	}
	for i, band := range invoice.Bands {
		if band.Base != 0.0 || band.VAT != 0.0 {
			t.Fatalf("expected absent band %d to be zero, got %+v", i, band)
		}
	}
}

func TestMapKeepsUnparseableDatesNil(t *testing.T) {
	raw := domain.RawRecord{
		"Cislo":    "F003",
		"RelTpFak": "1",
		"Datum":    "kveten",
		"DatSplat": "",
	}

	invoice, err := Map(raw, domain.SourceLegacyStore)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if invoice.IssueDate != nil {
		t.Fatalf("expected nil issue date, got %v", invoice.IssueDate)
	}
	if invoice.DueDate != nil {
		t.Fatalf("expected nil due date, got %v", invoice.DueDate)
	}
}

func TestMapRejectsUnknownTypeCode(t *testing.T) {
	raw := domain.RawRecord{
		"Cislo":    "F004",
		"RelTpFak": "7",
	}

	_, err := Map(raw, domain.SourceLegacyStore)
	if err == nil {
		t.Fatalf("expected an error for unknown type code")
	}

	var recordErr *RecordError
	if !errors.As(err, &recordErr) {
		t.Fatalf("expected RecordError, got %T: %v", err, err)
	}
	if recordErr.Number != "F004" {
		t.Fatalf("expected record number in error, got %q", recordErr.Number)
	}
}

func TestMapInterchangeRecord(t *testing.T) {
	raw := domain.RawRecord{
		"invoiceType":  "issuedInvoice",
		"number":       "240100007",
		"symVar":       "240100007",
		"date":         "2024-01-15",
		"dateDue":      "2024-01-29",
		"company":      "ABC s.r.o.",
		"ico":          "87654321",
		"dic":          "CZ87654321",
		"address":      "Krátká 3, 602 00 Brno",
		"priceLow":     "100,00",
		"priceLowVAT":  "15,00",
		"priceHigh":    "200,00",
		"priceHighVAT": "42,00",
		"sourceId":     "item-1",
	}

	invoice, err := Map(raw, domain.SourceInterchange)
	if err != nil {
		t.Fatalf("map returned error: %v", err)
	}

	if invoice.Direction != domain.DirectionIssued {
		t.Fatalf("expected issued direction, got %s", invoice.Direction)
	}
	if invoice.Bands[1].Base != 100.0 || invoice.Bands[1].VAT != 15.0 {
		t.Fatalf("unexpected low band: %+v", invoice.Bands[1])
	}
	if invoice.Bands[2].Base != 200.0 || invoice.Bands[2].VAT != 42.0 {
		t.Fatalf("unexpected high band: %+v", invoice.Bands[2])
	}
	// The interchange summary has no explicit total; it is derived from
	// the bands.
	if math.Abs(invoice.Total-357.0) > 1e-6 {
		t.Fatalf("expected derived total 357.0, got %v", invoice.Total)
	}
	if invoice.PartnerAddress != "Krátká 3, 602 00 Brno" {
		t.Fatalf("unexpected address %q", invoice.PartnerAddress)
	}
}

func TestDateAcceptsNativeValues(t *testing.T) {
	native := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := Date(native)
	if got == nil || !got.Equal(native) {
		t.Fatalf("expected native time to pass through, got %v", got)
	}
	if Date(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
	if Date(time.Time{}) != nil {
		t.Fatalf("expected nil for zero time")
	}
}
