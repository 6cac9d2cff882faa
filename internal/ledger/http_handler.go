package ledger

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkadlec/ledgersync/internal/legacystore"
)

// SummaryExporter turns an aggregation result into a downloadable file and
// returns its path.
type SummaryExporter interface {
	WriteLedgerSummary(companyKey string, year int, side Side, summary Summary) (string, error)
}

// Handler exposes read-only ledger aggregation over HTTP.
type Handler struct {
	locator  *legacystore.Locator
	exporter SummaryExporter
}

// NewHTTPHandler wires the aggregation endpoint.
func NewHTTPHandler(locator *legacystore.Locator, exporter SummaryExporter) *Handler {
	return &Handler{locator: locator, exporter: exporter}
}

// Summary answers GET /ledger/summary. Query parameters: companyKey, year,
// prefix, side, from, to (inclusive, 2006-01-02), format (json|xlsx).
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	companyKey := strings.TrimSpace(query.Get("companyKey"))
	if companyKey == "" {
		http.Error(w, "companyKey is required", http.StatusBadRequest)
		return
	}

	year := 0
	if rawYear := strings.TrimSpace(query.Get("year")); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid year: %v", err), http.StatusBadRequest)
			return
		}
		year = parsed
	}

	prefix := strings.TrimSpace(query.Get("prefix"))
	if prefix == "" {
		http.Error(w, "prefix is required", http.StatusBadRequest)
		return
	}

	side, err := ParseSide(query.Get("side"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dateRange, err := parseRange(query.Get("from"), query.Get("to"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	path, err := h.locator.Locate(companyKey, year)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	summary, err := Aggregate(path, prefix, side, dateRange)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if strings.EqualFold(query.Get("format"), "xlsx") && h.exporter != nil {
		file, exportErr := h.exporter.WriteLedgerSummary(companyKey, year, side, summary)
		if exportErr != nil {
			http.Error(w, exportErr.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		http.ServeFile(w, r, file)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(summary)
}

// parseRange builds the inclusive filter; both bounds are required when
// either is present.
func parseRange(fromRaw, toRaw string) (*DateRange, error) {
	fromRaw = strings.TrimSpace(fromRaw)
	toRaw = strings.TrimSpace(toRaw)
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}
	if fromRaw == "" || toRaw == "" {
		return nil, fmt.Errorf("from and to must be provided together")
	}

	from, err := time.Parse("2006-01-02", fromRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := time.Parse("2006-01-02", toRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid to date: %w", err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("to date precedes from date")
	}

	return &DateRange{From: from, To: to}, nil
}
