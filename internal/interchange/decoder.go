package interchange

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Interchange documents are exported in a single-byte legacy code page, so
// the raw bytes are not valid text in this process's default encoding.
// Decoding must happen before parsing. A wrong code-page assumption is not
// detectable here; it silently corrupts accented text.
var codePages = map[string]*charmap.Charmap{
	"windows-1250": charmap.Windows1250,
	"cp1250":       charmap.Windows1250,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

// DefaultCodePage is what the desktop product writes.
const DefaultCodePage = "windows-1250"

// Decode converts a legacy code-page byte buffer into UTF-8 text.
func Decode(raw []byte, codePage string) (string, error) {
	cm, ok := codePages[strings.ToLower(strings.TrimSpace(codePage))]
	if !ok {
		return "", fmt.Errorf("unsupported code page %q", codePage)
	}

	decoded, _, err := transform.Bytes(cm.NewDecoder(), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s document: %w", codePage, err)
	}
	return string(decoded), nil
}
