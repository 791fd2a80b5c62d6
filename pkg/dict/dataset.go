package dict

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// ManifestFile is the name of the manifest inside a dataset directory.
const ManifestFile = "manifest.yaml"

// Dataset is one loaded dataset: its manifest and prepared entries.
type Dataset struct {
	Manifest *Manifest
	Entries  []lexicon.Entry
}

// LoadDataset reads a dataset directory. A data.gob cache is used when it is
// newer than the data file named in the manifest or that file is missing;
// otherwise the data file is read, its format following its extension.
// Importer defaults are applied and IDs must be unique within the dataset.
func LoadDataset(dir string) (*Dataset, error) {
	m, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	entries, err := readDatasetEntries(dir, m)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.ID, err)
	}
	Prepare(entries, m.ID, m.Dialect)
	if err := CheckUnique(entries); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", m.ID, err)
	}
	if n := countMissingHeadwords(entries); n > 0 {
		slog.Warn("entries without headword", "dataset", m.ID, "count", n)
	}
	return &Dataset{Manifest: m, Entries: entries}, nil
}

func readDatasetEntries(dir string, m *Manifest) ([]lexicon.Entry, error) {
	gobPath := filepath.Join(dir, GobFile)
	dataPath := filepath.Join(dir, m.DataFile)
	if gobFresh(gobPath, dataPath) {
		return loadGob(gobPath)
	}
	return ReadSourceFile(dataPath, m.Format)
}

// gobFresh reports whether the cache at gobPath may stand in for the data
// file. A cache with the same modification time as the data file is stale.
func gobFresh(gobPath, dataPath string) bool {
	gi, err := os.Stat(gobPath)
	if err != nil {
		return false
	}
	di, err := os.Stat(dataPath)
	if err != nil {
		return errors.Is(err, fs.ErrNotExist)
	}
	return gi.ModTime().After(di.ModTime())
}

// ReadSourceFile reads raw entries from a JSON or CSV file chosen by extension.
func ReadSourceFile(path string, layout FormatSpec) ([]lexicon.Entry, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	return ReadEntries(f, format, layout)
}

// Compile reads a dataset from its source data file and writes the data.gob
// cache next to the manifest. It returns the number of entries written.
func Compile(dir string) (int, error) {
	m, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return 0, err
	}
	entries, err := ReadSourceFile(filepath.Join(dir, m.DataFile), m.Format)
	if err != nil {
		return 0, fmt.Errorf("dataset %s: %w", m.ID, err)
	}
	Prepare(entries, m.ID, m.Dialect)
	if err := CheckUnique(entries); err != nil {
		return 0, fmt.Errorf("dataset %s: %w", m.ID, err)
	}
	if err := SaveGob(entries, filepath.Join(dir, GobFile)); err != nil {
		return 0, fmt.Errorf("dataset %s: %w", m.ID, err)
	}
	return len(entries), nil
}
