package dict

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

// ErrEmptyImport is returned when an import carries no entries.
var ErrEmptyImport = errors.New("import has no entries")

// loadConcurrency bounds the datasets read in parallel by Load.
const loadConcurrency = 4

// importPrefix prefixes synthesized IDs of imported entries.
const importPrefix = "imported"

// EntryStore persists the imported entry set between restarts.
type EntryStore interface {
	// LoadImported returns the stored set. ok is false when none is stored.
	LoadImported(ctx context.Context) (entries []lexicon.Entry, ok bool, err error)
	SaveImported(ctx context.Context, entries []lexicon.Entry, source string) error
	ClearImported(ctx context.Context) error
}

// Registry holds the loaded datasets, the optional imported set and the index
// over the working set. The working set is the imported set when one exists,
// otherwise the concatenation of all datasets in ID order.
//
// writeMu serializes Load, Import and Reset across their store I/O so the
// persisted imported set always matches memory. mu guards the fields and is
// only held for the swap.
type Registry struct {
	writeMu  sync.Mutex
	mu       sync.RWMutex
	datasets []*Dataset
	base     []lexicon.Entry
	imported []lexicon.Entry
	index    *lexicon.Index
	derive   lexicon.Deriver

	dictsDir string
	store    EntryStore
	logger   *slog.Logger
}

// NewRegistry creates an empty registry for the given directory. A nil store
// keeps imports in memory only.
func NewRegistry(dictsDir string, store EntryStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		dictsDir: dictsDir,
		store:    store,
		logger:   logger,
		index:    lexicon.NewIndex(nil),
	}
}

// Load scans the dicts directory, loads every dataset and restores the stored
// imported set. The new state replaces the old one only if everything loads.
func (r *Registry) Load(ctx context.Context) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	dirs, err := os.ReadDir(r.dictsDir)
	if err != nil {
		return fmt.Errorf("read dicts dir %s: %w", r.dictsDir, err)
	}

	var names []string
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.dictsDir, d.Name(), ManifestFile)); err != nil {
			continue
		}
		names = append(names, d.Name())
	}

	datasets := make([]*Dataset, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := LoadDataset(filepath.Join(r.dictsDir, name))
			if err != nil {
				return fmt.Errorf("load dataset %s: %w", name, err)
			}
			datasets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slices.SortFunc(datasets, func(a, b *Dataset) int {
		return strings.Compare(a.Manifest.ID, b.Manifest.ID)
	})

	var base []lexicon.Entry
	pinyinDialects := map[string]bool{}
	for _, ds := range datasets {
		base = append(base, ds.Entries...)
		if ds.Manifest.MandarinPinyin {
			if ds.Manifest.Dialect != "" {
				pinyinDialects[ds.Manifest.Dialect] = true
			}
			for i := range ds.Entries {
				if d := ds.Entries[i].Dialect; d != "" {
					pinyinDialects[d] = true
				}
			}
		}
	}
	if err := CheckUnique(base); err != nil {
		return fmt.Errorf("merge datasets: %w", err)
	}

	var imported []lexicon.Entry
	if r.store != nil {
		stored, ok, err := r.store.LoadImported(ctx)
		if err != nil {
			return fmt.Errorf("load imported entries: %w", err)
		}
		if ok {
			imported = stored
		}
	} else {
		r.mu.RLock()
		imported = r.imported
		r.mu.RUnlock()
	}

	derive := pinyinDeriver(pinyinDialects)

	r.mu.Lock()
	r.datasets = datasets
	r.base = base
	r.imported = imported
	r.derive = derive
	r.rebuildLocked()
	n := r.index.Len()
	r.mu.Unlock()

	r.logger.Info("registry loaded",
		"datasets", len(datasets), "entries", n, "imported", imported != nil)
	return nil
}

// Reload reloads all datasets from disk (hot reload).
func (r *Registry) Reload(ctx context.Context) error {
	return r.Load(ctx)
}

func (r *Registry) rebuildLocked() {
	working := r.base
	if r.imported != nil {
		working = r.imported
	}
	var opts []lexicon.IndexOption
	if r.derive != nil {
		opts = append(opts, lexicon.WithDeriver(r.derive))
	}
	r.index = lexicon.NewIndex(working, opts...)
}

// Index returns the current index snapshot. It stays valid after a reload or
// import swaps in a new one.
func (r *Registry) Index() *lexicon.Index {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index
}

// NormalizedQuery holds the three normalized forms of a query.
type NormalizedQuery struct {
	Plain        string `json:"plain"`
	Romanization string `json:"romanization"`
	IPA          string `json:"ipa"`
}

// SearchResult is the response for a search.
type SearchResult struct {
	Query      string           `json:"query"`
	Normalized NormalizedQuery  `json:"normalized"`
	Filters    lexicon.Filters  `json:"filters"`
	Total      int              `json:"total"`
	Results    []lexicon.Result `json:"results"`
}

// Search ranks the working set. Total counts every match; Results holds at
// most limit of them, or all when limit is zero or negative.
func (r *Registry) Search(f lexicon.Filters, query string, limit int) *SearchResult {
	ranked := r.Index().Rank(f, query)

	res := &SearchResult{
		Query: query,
		Normalized: NormalizedQuery{
			Plain:        lexicon.NormalizePlain(query),
			Romanization: lexicon.NormalizeRomanization(query),
			IPA:          lexicon.NormalizeIPA(query),
		},
		Filters: f,
		Total:   len(ranked),
		Results: ranked,
	}
	if limit > 0 && len(ranked) > limit {
		res.Results = ranked[:limit]
	}
	if res.Results == nil {
		res.Results = []lexicon.Result{}
	}
	return res
}

// Entry returns the working-set entry with the given ID.
func (r *Registry) Entry(id string) (*lexicon.Entry, bool) {
	return r.Index().Lookup(id)
}

// Facets returns the dialects and parts of speech of the working set.
func (r *Registry) Facets() lexicon.Facets {
	return r.Index().Facets()
}

// DatasetInfo is the public metadata for a loaded dataset.
type DatasetInfo struct {
	ID             string `json:"id"`
	Version        string `json:"version"`
	Dialect        string `json:"dialect,omitempty"`
	Source         string `json:"source"`
	SourceURL      string `json:"source_url,omitempty"`
	License        string `json:"license"`
	MandarinPinyin bool   `json:"mandarin_pinyin,omitempty"`
	Entries        int    `json:"entries"`
}

// ListDatasets returns metadata for all loaded datasets, sorted by ID.
func (r *Registry) ListDatasets() []DatasetInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]DatasetInfo, 0, len(r.datasets))
	for _, ds := range r.datasets {
		m := ds.Manifest
		infos = append(infos, DatasetInfo{
			ID:             m.ID,
			Version:        m.Version,
			Dialect:        m.Dialect,
			Source:         m.Source,
			SourceURL:      m.SourceURL,
			License:        m.License,
			MandarinPinyin: m.MandarinPinyin,
			Entries:        len(ds.Entries),
		})
	}
	return infos
}

// DatasetCount returns the number of loaded datasets.
func (r *Registry) DatasetCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.datasets)
}

// EntryCount returns the size of the working set.
func (r *Registry) EntryCount() int {
	return r.Index().Len()
}

// Imported reports whether the working set is an imported set.
func (r *Registry) Imported() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.imported != nil
}

// Import replaces the working set with entries. Importer defaults are applied
// in place, IDs must be unique, and the set is persisted before it becomes
// visible to readers. It returns the number of entries imported.
func (r *Registry) Import(ctx context.Context, entries []lexicon.Entry, source string) (int, error) {
	if len(entries) == 0 {
		return 0, ErrEmptyImport
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	Prepare(entries, importPrefix, "")
	if err := CheckUnique(entries); err != nil {
		return 0, err
	}
	if n := countMissingHeadwords(entries); n > 0 {
		r.logger.Warn("imported entries without headword", "source", source, "count", n)
	}

	if r.store != nil {
		if err := r.store.SaveImported(ctx, entries, source); err != nil {
			return 0, fmt.Errorf("save imported entries: %w", err)
		}
	}

	r.mu.Lock()
	r.imported = entries
	r.rebuildLocked()
	r.mu.Unlock()

	r.logger.Info("entries imported", "source", source, "entries", len(entries))
	return len(entries), nil
}

// Reset discards the imported set and restores the base datasets as the
// working set. It returns the new working-set size.
func (r *Registry) Reset(ctx context.Context) (int, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.store != nil {
		if err := r.store.ClearImported(ctx); err != nil {
			return 0, fmt.Errorf("clear imported entries: %w", err)
		}
	}

	r.mu.Lock()
	r.imported = nil
	r.rebuildLocked()
	n := r.index.Len()
	r.mu.Unlock()

	r.logger.Info("imported entries cleared", "entries", n)
	return n, nil
}

// Export writes the working set in a form Import reads back.
func (r *Registry) Export(w io.Writer, format Format) error {
	return WriteEntries(w, format, r.Index().Entries(), FormatSpec{})
}
