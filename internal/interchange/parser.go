package interchange

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mkadlec/ledgersync/internal/domain"
)

// ErrMalformedDocument is returned when the root interchange wrapper is
// missing. Fatal for the batch.
var ErrMalformedDocument = errors.New("malformed interchange document")

type dataPack struct {
	XMLName     xml.Name       `xml:"dataPack"`
	ICO         string         `xml:"ico,attr"`
	Application string         `xml:"application,attr"`
	Items       []dataPackItem `xml:"dataPackItem"`
}

type dataPackItem struct {
	ID      string       `xml:"id,attr"`
	Invoice *invoiceItem `xml:"invoice"`
}

type invoiceItem struct {
	Header  invoiceHeader  `xml:"invoiceHeader"`
	Summary invoiceSummary `xml:"invoiceSummary"`
}

type invoiceHeader struct {
	InvoiceType string `xml:"invoiceType"`
	Number      struct {
		NumberRequested string `xml:"numberRequested"`
	} `xml:"number"`
	SymVar          string          `xml:"symVar"`
	Date            string          `xml:"date"`
	DateDue         string          `xml:"dateDue"`
	Text            string          `xml:"text"`
	PartnerIdentity partnerIdentity `xml:"partnerIdentity"`
}

type partnerIdentity struct {
	Address partnerAddress `xml:"address"`
}

type partnerAddress struct {
	Company string `xml:"company"`
	Street  string `xml:"street"`
	Zip     string `xml:"zip"`
	City    string `xml:"city"`
	ICO     string `xml:"ico"`
	DIC     string `xml:"dic"`
}

type invoiceSummary struct {
	HomeCurrency homeCurrency `xml:"homeCurrency"`
}

// Per-VAT-band amounts in the document's home currency.
type homeCurrency struct {
	PriceNone    string `xml:"priceNone"`
	PriceLow     string `xml:"priceLow"`
	PriceLowVAT  string `xml:"priceLowVAT"`
	PriceHigh    string `xml:"priceHigh"`
	PriceHighVAT string `xml:"priceHighVAT"`
	Price3       string `xml:"price3"`
	Price3VAT    string `xml:"price3VAT"`
}

// Parse flattens an already-decoded interchange document into one raw record
// per invoice item, header and summary fields together.
//
// Tolerances:
//   - the invoice number comes from number/numberRequested, else symVar,
//     first non-empty wins; with neither present a fallback identifier is
//     synthesized so the record is never silently dropped;
//   - the partner address joins street, postal code and city, normalizing
//     the leading separator when the street part is empty.
func Parse(text string) ([]domain.RawRecord, error) {
	decoder := xml.NewDecoder(strings.NewReader(text))
	// The byte-level decode already happened; accept whatever code page the
	// XML declaration still names.
	decoder.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var pack dataPack
	if err := decoder.Decode(&pack); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	records := make([]domain.RawRecord, 0, len(pack.Items))
	for _, item := range pack.Items {
		if item.Invoice == nil {
			continue
		}

		header := item.Invoice.Header
		summary := item.Invoice.Summary.HomeCurrency
		address := header.PartnerIdentity.Address

		records = append(records, domain.RawRecord{
			"invoiceType":  header.InvoiceType,
			"number":       invoiceNumber(header),
			"symVar":       header.SymVar,
			"date":         header.Date,
			"dateDue":      header.DateDue,
			"text":         header.Text,
			"company":      address.Company,
			"ico":          address.ICO,
			"dic":          address.DIC,
			"address":      joinAddress(address.Street, address.Zip, address.City),
			"priceNone":    summary.PriceNone,
			"priceLow":     summary.PriceLow,
			"priceLowVAT":  summary.PriceLowVAT,
			"priceHigh":    summary.PriceHigh,
			"priceHighVAT": summary.PriceHighVAT,
			"price3":       summary.Price3,
			"price3VAT":    summary.Price3VAT,
			"sourceId":     item.ID,
		})
	}

	return records, nil
}

// invoiceNumber picks the first non-empty of the two alternate number tags,
// falling back to a synthesized identifier.
func invoiceNumber(header invoiceHeader) string {
	if number := strings.TrimSpace(header.Number.NumberRequested); number != "" {
		return number
	}
	if number := strings.TrimSpace(header.SymVar); number != "" {
		return number
	}

	suffix := make([]byte, 2)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("XML-%d-%s", time.Now().UnixNano(), hex.EncodeToString(suffix))
}

func joinAddress(street, zip, city string) string {
	locality := strings.TrimSpace(strings.TrimSpace(zip) + " " + strings.TrimSpace(city))
	joined := strings.TrimSpace(street) + ", " + locality
	joined = strings.TrimSpace(joined)
	joined = strings.TrimPrefix(joined, ", ")
	return strings.TrimSuffix(joined, ",")
}
