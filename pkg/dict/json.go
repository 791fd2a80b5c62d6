package dict

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// jsonEntry accepts the legacy "word" key as a headword.
type jsonEntry struct {
	lexicon.Entry
	Word string `json:"word"`
}

// readJSON decodes either a bare array of entries or {"entries": [...]}.
func readJSON(r io.Reader) ([]lexicon.Entry, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read json: %w", err)
	}

	var raw []jsonEntry
	dec := json.NewDecoder(br)
	switch first {
	case '[':
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode entries array: %w", err)
		}
	case '{':
		var wrapper struct {
			Entries []jsonEntry `json:"entries"`
		}
		if err := dec.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("decode entries object: %w", err)
		}
		raw = wrapper.Entries
	default:
		return nil, fmt.Errorf("decode entries: unexpected %q, want array or object", first)
	}

	entries := make([]lexicon.Entry, len(raw))
	for i, je := range raw {
		e := je.Entry
		if e.Headword == "" {
			e.Headword = je.Word
		}
		entries[i] = e
	}
	return entries, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		// Skip whitespace and a UTF-8 byte order mark.
		if bytes.IndexByte([]byte(" \t\r\n"), b) >= 0 {
			continue
		}
		if b == 0xEF {
			if bom, _ := br.Peek(2); bytes.Equal(bom, []byte{0xBB, 0xBF}) {
				br.Discard(2)
				continue
			}
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

func writeJSON(w io.Writer, entries []*lexicon.Entry) error {
	if entries == nil {
		entries = []*lexicon.Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return nil
}
