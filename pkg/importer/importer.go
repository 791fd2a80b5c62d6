// Package importer reads entry files from local paths or URLs and installs
// them as datasets.
package importer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// Source is an entry file to import.
type Source struct {
	// Location is a local path or an http(s) URL. URLs and paths ending in
	// .zip are unpacked to their first .json or .csv member.
	Location string
	// Format overrides the format inferred from the file extension.
	Format string
	// Spec describes the CSV layout.
	Spec dict.FormatSpec
}

// Read returns the raw entries of src. Importer defaults are not applied.
func Read(ctx context.Context, src Source) ([]lexicon.Entry, error) {
	tmp, err := os.MkdirTemp("", "fangyan-import-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	local, err := localize(ctx, src.Location, tmp)
	if err != nil {
		return nil, err
	}

	format, err := dict.FormatFromPath(local)
	if src.Format != "" {
		format, err = dict.ParseFormat(src.Format)
	}
	if err != nil {
		return nil, err
	}

	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", local, err)
	}
	defer f.Close()

	entries, err := dict.ReadEntries(f, format, src.Spec)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Location, err)
	}
	return entries, nil
}

// localize downloads a URL into tmp and unpacks ZIP archives. It returns the
// path of the entry file.
func localize(ctx context.Context, location, tmp string) (string, error) {
	local := location
	if isURL(location) {
		name := path.Base(strings.SplitN(location, "?", 2)[0])
		if name == "" || name == "/" || name == "." {
			name = "download"
		}
		local = filepath.Join(tmp, name)
		if err := downloadFile(ctx, location, local); err != nil {
			return "", err
		}
	}
	if strings.EqualFold(filepath.Ext(local), ".zip") {
		return unzipEntryFile(local, tmp)
	}
	return local, nil
}

// Install reads src and writes it as a dataset under dictsDir/<m.ID>: the
// manifest plus entries.json and its data.gob cache. It returns the number of
// entries written.
func Install(ctx context.Context, src Source, dictsDir string, m *dict.Manifest) (int, error) {
	if m.ID == "" {
		return 0, fmt.Errorf("install: manifest has no id")
	}
	entries, err := Read(ctx, src)
	if err != nil {
		return 0, err
	}
	dict.Prepare(entries, m.ID, m.Dialect)
	if err := dict.CheckUnique(entries); err != nil {
		return 0, fmt.Errorf("install %s: %w", m.ID, err)
	}

	dir := filepath.Join(dictsDir, m.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create dataset dir: %w", err)
	}

	installed := *m
	installed.DataFile = "entries.json"
	installed.Format = dict.FormatSpec{}
	if installed.SourceURL == "" && isURL(src.Location) {
		installed.SourceURL = src.Location
	}

	out, err := os.Create(filepath.Join(dir, installed.DataFile))
	if err != nil {
		return 0, fmt.Errorf("create data file: %w", err)
	}
	ptrs := make([]*lexicon.Entry, len(entries))
	for i := range entries {
		ptrs[i] = &entries[i]
	}
	writeErr := dict.WriteEntries(out, dict.FormatJSON, ptrs, dict.FormatSpec{})
	if err := out.Close(); err != nil && writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		return 0, fmt.Errorf("write data file: %w", writeErr)
	}

	if err := dict.SaveGob(entries, filepath.Join(dir, dict.GobFile)); err != nil {
		return 0, err
	}
	if err := dict.WriteManifest(filepath.Join(dir, dict.ManifestFile), &installed); err != nil {
		return 0, err
	}
	return len(entries), nil
}
