package dict

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// Format is an entry file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for unsupported entry file formats.
var ErrUnknownFormat = errors.New("unknown entry format")

// ParseFormat parses a format name. The empty name is JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: no extension on %s", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// ReadEntries decodes entries from r. The result is raw: importer defaults are
// applied by Prepare.
func ReadEntries(r io.Reader, format Format, layout FormatSpec) ([]lexicon.Entry, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatCSV:
		return readCSV(r, layout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteEntries encodes entries to w in a form ReadEntries reads back.
func WriteEntries(w io.Writer, format Format, entries []*lexicon.Entry, layout FormatSpec) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, entries)
	case FormatCSV:
		return writeCSV(w, entries, layout)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
