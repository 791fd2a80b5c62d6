package dict

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// GobFile is the name of the entry cache inside a dataset directory.
const GobFile = "data.gob"

// loadGob deserializes entries from a gob-encoded file.
func loadGob(path string) ([]lexicon.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gob file: %w", err)
	}
	defer f.Close()

	var entries []lexicon.Entry
	if err := gob.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode gob: %w", err)
	}
	return entries, nil
}

// SaveGob serializes entries to a gob-encoded file at path.
func SaveGob(entries []lexicon.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gob file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(entries); err != nil {
		return fmt.Errorf("encode gob: %w", err)
	}
	return nil
}
