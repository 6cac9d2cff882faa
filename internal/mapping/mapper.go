package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkadlec/ledgersync/internal/domain"
)

// RecordError marks a single record that could not be mapped. It is
// recovered locally by the batch loop, never a batch abort.
type RecordError struct {
	Number string
	Reason string
}

func (e *RecordError) Error() string {
	if e.Number == "" {
		return fmt.Sprintf("record rejected: %s", e.Reason)
	}
	return fmt.Sprintf("record %s rejected: %s", e.Number, e.Reason)
}

// invoiceKeys binds one source's column or tag names to the canonical
// record. All mnemonic knowledge lives in these tables; nothing downstream
// ever sees source-specific names.
type invoiceKeys struct {
	typeCode    string
	number      string
	altNumber   string
	issueDate   string
	dueDate     string
	partner     string
	taxID       string
	vatID       string
	address     string
	street      string
	zip         string
	city        string
	bands       [4][2]string
	total       string
	liquidated  string
	outstanding string
	sourceID    string
	directions  map[string]domain.Direction
}

// The desktop product's invoice table. Type code 1 is an issued invoice,
// 11 a received one.
var legacyKeys = invoiceKeys{
	typeCode:  "RelTpFak",
	number:    "Cislo",
	altNumber: "VarSym",
	issueDate: "Datum",
	dueDate:   "DatSplat",
	partner:   "Firma",
	taxID:     "ICO",
	vatID:     "DIC",
	street:    "Ulice",
	zip:       "PSC",
	city:      "Obec",
	bands: [4][2]string{
		{"Kc0", "KcDPH0"},
		{"Kc1", "KcDPH1"},
		{"Kc2", "KcDPH2"},
		{"Kc3", "KcDPH3"},
	},
	total:       "KcCelkem",
	liquidated:  "KcLikv",
	outstanding: "KcZbyv",
	sourceID:    "ID",
	directions: map[string]domain.Direction{
		"1":  domain.DirectionIssued,
		"11": domain.DirectionReceived,
	},
}

// The XML interchange document, flattened by the interchange parser.
var interchangeKeys = invoiceKeys{
	typeCode:  "invoiceType",
	number:    "number",
	altNumber: "symVar",
	issueDate: "date",
	dueDate:   "dateDue",
	partner:   "company",
	taxID:     "ico",
	vatID:     "dic",
	address:   "address",
	bands: [4][2]string{
		{"priceNone", ""},
		{"priceLow", "priceLowVAT"},
		{"priceHigh", "priceHighVAT"},
		{"price3", "price3VAT"},
	},
	total:    "total",
	sourceID: "sourceId",
	directions: map[string]domain.Direction{
		"issuedInvoice":   domain.DirectionIssued,
		"receivedInvoice": domain.DirectionReceived,
	},
}

var sourceKeys = map[domain.SourceType]invoiceKeys{
	domain.SourceLegacyStore: legacyKeys,
	// Upload templates mirror the desktop columns.
	domain.SourceWorkbook:    legacyKeys,
	domain.SourceInterchange: interchangeKeys,
}

// Map narrows one untyped source row into a canonical invoice. Numeric
// fields coerce to 0.0 when absent or non-numeric so downstream sums never
// see nulls; dates stay nil when unparseable. An unrecognized direction
// code rejects the record with a RecordError.
func Map(raw domain.RawRecord, source domain.SourceType) (domain.Invoice, error) {
	keys, ok := sourceKeys[source]
	if !ok {
		return domain.Invoice{}, fmt.Errorf("unknown source type %q", source)
	}

	number := Text(raw[keys.number])
	if number == "" && keys.altNumber != "" {
		number = Text(raw[keys.altNumber])
	}

	code := Text(raw[keys.typeCode])
	direction, ok := keys.directions[code]
	if !ok {
		return domain.Invoice{}, &RecordError{
			Number: number,
			Reason: fmt.Sprintf("unrecognized invoice type code %q", code),
		}
	}

	invoice := domain.Invoice{
		Number:         number,
		Direction:      direction,
		PartnerName:    Text(raw[keys.partner]),
		PartnerTaxID:   Text(raw[keys.taxID]),
		PartnerVATID:   Text(raw[keys.vatID]),
		PartnerAddress: mapAddress(raw, keys),
		IssueDate:      Date(raw[keys.issueDate]),
		DueDate:        Date(raw[keys.dueDate]),
		Liquidated:     Amount(raw[keys.liquidated]),
		Outstanding:    Amount(raw[keys.outstanding]),
		SourceID:       Text(raw[keys.sourceID]),
		SourceType:     source,
	}

	var bandSum decimal.Decimal
	for i, band := range keys.bands {
		base := Amount(raw[band[0]])
		vat := 0.0
		if band[1] != "" {
			vat = Amount(raw[band[1]])
		}
		invoice.Bands[i] = domain.VATBand{Base: base, VAT: vat}
		bandSum = bandSum.Add(decimal.NewFromFloat(base)).Add(decimal.NewFromFloat(vat))
	}

	invoice.Total = Amount(raw[keys.total])
	if invoice.Total == 0 && source == domain.SourceInterchange {
		// The interchange summary states no explicit total; it is the sum
		// of the home-currency bands.
		invoice.Total, _ = bandSum.Float64()
	}

	return invoice, nil
}

func mapAddress(raw domain.RawRecord, keys invoiceKeys) string {
	if keys.address != "" {
		return Text(raw[keys.address])
	}

	street := Text(raw[keys.street])
	locality := strings.TrimSpace(Text(raw[keys.zip]) + " " + Text(raw[keys.city]))
	joined := strings.TrimSpace(street + ", " + locality)
	joined = strings.TrimPrefix(joined, ", ")
	return strings.TrimSuffix(joined, ",")
}

// Amount parses a scalar as a decimal amount. Absent or non-numeric values
// coerce to 0.0, never to null.
func Amount(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		// Legacy exports use decimal commas and non-breaking thousand
		// separators.
		s = strings.ReplaceAll(s, "\u00a0", "")
		s = strings.ReplaceAll(s, " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0
		}
		f, _ := d.Float64()
		return f
	default:
		return 0
	}
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02.01.2006",
	time.RFC3339,
}

// Date parses a scalar as a calendar date. Unparseable or absent values are
// carried as nil without failing the record.
func Date(value any) *time.Time {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		t := v
		return &t
	case *time.Time:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
		return nil
	default:
		return nil
	}
}

// Text renders a scalar as a trimmed string.
func Text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		d := decimal.NewFromFloat(v)
		return d.String()
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
