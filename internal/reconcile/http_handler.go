package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mkadlec/ledgersync/internal/domain"
	"github.com/mkadlec/ledgersync/internal/interchange"
	"github.com/mkadlec/ledgersync/internal/legacystore"
)

// Handler exposes the import pipeline as HTTP trigger endpoints.
type Handler struct {
	locator *legacystore.Locator
	service *Service
}

// NewHTTPHandler wires the trigger endpoints.
func NewHTTPHandler(locator *legacystore.Locator, service *Service) *Handler {
	return &Handler{locator: locator, service: service}
}

// SyncLegacy imports the invoices table of the company's legacy database
// file. Form fields: companyId, companyKey, year (optional), mode.
func (h *Handler) SyncLegacy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	companyID, mode, ok := h.batchParams(w, r)
	if !ok {
		return
	}

	companyKey := strings.TrimSpace(r.FormValue("companyKey"))
	if companyKey == "" {
		http.Error(w, "companyKey is required", http.StatusBadRequest)
		return
	}

	year := 0
	if rawYear := strings.TrimSpace(r.FormValue("year")); rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid year: %v", err), http.StatusBadRequest)
			return
		}
		year = parsed
	}

	path, err := h.locator.Locate(companyKey, year)
	if err != nil {
		h.failBatch(w, r, companyID, domain.SourceLegacyStore, err)
		return
	}

	handle, err := legacystore.Open(path)
	if err != nil {
		h.failBatch(w, r, companyID, domain.SourceLegacyStore, err)
		return
	}

	records, err := handle.ReadAll(legacystore.InvoiceTable)
	if err != nil {
		h.failBatch(w, r, companyID, domain.SourceLegacyStore, err)
		return
	}

	result, err := h.service.ImportBatch(r.Context(), companyID, records, domain.SourceLegacyStore, mode)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SyncInterchange imports an uploaded XML interchange document. Multipart
// fields: file, companyId, mode, codePage (optional).
func (h *Handler) SyncInterchange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, companyID, mode, ok := h.uploadParams(w, r)
	if !ok {
		return
	}

	codePage := strings.TrimSpace(r.FormValue("codePage"))
	if codePage == "" {
		codePage = interchange.DefaultCodePage
	}

	text, err := interchange.Decode(payload, codePage)
	if err != nil {
		h.failBatch(w, r, companyID, domain.SourceInterchange, err)
		return
	}

	records, err := interchange.Parse(text)
	if err != nil {
		h.failBatch(w, r, companyID, domain.SourceInterchange, err)
		return
	}

	result, err := h.service.ImportBatch(r.Context(), companyID, records, domain.SourceInterchange, mode)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SyncWorkbook imports a manually uploaded spreadsheet batch. Multipart
// fields: file, companyId, mode.
func (h *Handler) SyncWorkbook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, companyID, mode, ok := h.uploadParams(w, r)
	if !ok {
		return
	}

	records, err := interchange.ParseWorkbook(payload)
	if err != nil {
		h.failBatch(w, r, companyID, domain.SourceWorkbook, err)
		return
	}

	result, err := h.service.ImportBatch(r.Context(), companyID, records, domain.SourceWorkbook, mode)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) batchParams(w http.ResponseWriter, r *http.Request) (int64, Mode, bool) {
	companyID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("companyId")), 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid company id: %v", err), http.StatusBadRequest)
		return 0, "", false
	}

	mode, err := ParseMode(r.FormValue("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, "", false
	}

	return companyID, mode, true
}

func (h *Handler) uploadParams(w http.ResponseWriter, r *http.Request) ([]byte, int64, Mode, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return nil, 0, "", false
	}

	companyID, mode, ok := h.batchParams(w, r)
	if !ok {
		return nil, 0, "", false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return nil, 0, "", false
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return nil, 0, "", false
	}

	return payload, companyID, mode, true
}

// failBatch records the audit row for a batch that died before its first
// record and reports it to the caller.
func (h *Handler) failBatch(w http.ResponseWriter, r *http.Request, companyID int64, source domain.SourceType, err error) {
	entry := h.service.RecordFailure(r.Context(), companyID, source, err)
	writeJSON(w, http.StatusUnprocessableEntity, Result{Log: entry})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
