package legacystore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/mkadlec/ledgersync/internal/domain"
)

// Table names inside the legacy container. Short, non-English mnemonics
// fixed by the desktop product.
const (
	InvoiceTable  = "FA"
	LedgerTable   = "UD"
	AccountsTable = "OS"
)

var (
	// ErrFormat is returned when a file is not a recognizable container.
	// Fatal for the batch.
	ErrFormat = errors.New("unrecognized legacy container format")
	// ErrTableNotFound is returned when a requested table is absent under
	// any casing.
	ErrTableNotFound = errors.New("table not found in legacy container")
)

// Handle is a fully buffered snapshot of one legacy container. The whole
// file is read once on Open; table reads replay the buffered rows, so a
// handle stays valid after the underlying file changes on disk.
type Handle struct {
	path string
	// names in container enumeration order. Lookup is case-insensitive and
	// first listed wins; that precedence is the contract, not an accident
	// of map ordering.
	order  []string
	tables map[string][]domain.RawRecord
}

// Open reads the container at path and buffers every table stream.
func Open(path string) (*Handle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy store: %w", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFormat, path, err)
	}

	h := &Handle{
		path:   path,
		tables: make(map[string][]domain.RawRecord),
	}

	for entry, nextErr := doc.Next(); nextErr == nil; entry, nextErr = doc.Next() {
		if entry.Size == 0 {
			// Storage node without a stream payload.
			continue
		}
		payload, readErr := io.ReadAll(entry)
		if readErr != nil {
			return nil, fmt.Errorf("%w: stream %s: %v", ErrFormat, entry.Name, readErr)
		}
		rows, decErr := decodeTableStream(payload)
		if decErr != nil {
			return nil, fmt.Errorf("%w: stream %s: %v", ErrFormat, entry.Name, decErr)
		}
		h.order = append(h.order, entry.Name)
		h.tables[entry.Name] = rows
	}

	return h, nil
}

// Path returns the file the handle was opened from.
func (h *Handle) Path() string {
	return h.path
}

// Tables returns the table names in container enumeration order.
func (h *Handle) Tables() []string {
	return append([]string(nil), h.order...)
}

// ReadAll returns every row of the named table. The lookup ignores case;
// when multiple casings exist the first listed table wins.
func (h *Handle) ReadAll(name string) ([]domain.RawRecord, error) {
	want := strings.ToLower(name)
	for _, candidate := range h.order {
		if strings.ToLower(candidate) == want {
			return append([]domain.RawRecord(nil), h.tables[candidate]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
}

// decodeTableStream parses one table stream: windows-1250 text, one
// semicolon-separated record per line, first line naming the column
// mnemonics. Values stay strings; coercion belongs to the mapping layer.
func decodeTableStream(payload []byte) ([]domain.RawRecord, error) {
	decoded, _, err := transform.Bytes(charmap.Windows1250.NewDecoder(), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode table stream: %w", err)
	}

	reader := csv.NewReader(strings.NewReader(string(decoded)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse table stream: %w", err)
	}
	if len(lines) == 0 {
		return []domain.RawRecord{}, nil
	}

	header := lines[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	records := make([]domain.RawRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		record := make(domain.RawRecord, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(line) {
				record[column] = line[i]
			} else {
				record[column] = nil
			}
		}
		records = append(records, record)
	}

	return records, nil
}
