package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hazyhaar/fangyan/pkg/dict"
	"github.com/hazyhaar/fangyan/pkg/lexicon"
)

var _ dict.EntryStore = (*Store)(nil)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "fangyan.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	keys, err := s.Keys(context.Background())
	if err != nil {
		t.Fatalf("Keys on empty db: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("keys = %v, want none", keys)
	}
}

func TestPutGetDelete(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing err = %v, want ErrNotFound", err)
	}

	if err := s.Put(ctx, "b", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "b", []byte("two")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	if err := s.Put(ctx, "a", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "b")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "two" {
		t.Errorf("Get(b) = %q, want two", got)
	}

	keys, err := s.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "b"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if _, err := s.Get(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get deleted err = %v, want ErrNotFound", err)
	}
}

func TestImportedRoundTrip(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	if _, ok, err := s.LoadImported(ctx); err != nil || ok {
		t.Fatalf("LoadImported on empty store = %v, %v", ok, err)
	}

	entries := []lexicon.Entry{
		{
			ID: "a", Headword: "侬", Dialect: "fuzhou",
			Pronunciation: &lexicon.Pronunciation{Romanization: "nung2", AlternateRomanizations: []string{"nöng"}},
			Examples:      []lexicon.Example{{Sentence: "侬好", Note: "hello"}},
		},
		{ID: "b", Headword: "伊"},
	}
	if err := s.SaveImported(ctx, entries, "upload.json"); err != nil {
		t.Fatalf("SaveImported: %v", err)
	}

	got, ok, err := s.LoadImported(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadImported = %v, %v", ok, err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Errorf("imported mismatch (-want +got):\n%s", diff)
	}

	if err := s.ClearImported(ctx); err != nil {
		t.Fatalf("ClearImported: %v", err)
	}
	if _, ok, err := s.LoadImported(ctx); err != nil || ok {
		t.Errorf("LoadImported after clear = %v, %v", ok, err)
	}
}

func TestImportLedger(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	clock := time.Unix(1700000000, 0)
	s.now = func() time.Time { return clock }

	if err := s.SaveImported(ctx, []lexicon.Entry{{ID: "a"}}, "first.csv"); err != nil {
		t.Fatalf("SaveImported: %v", err)
	}
	clock = clock.Add(time.Hour)
	if err := s.SaveImported(ctx, []lexicon.Entry{{ID: "a"}, {ID: "b"}}, "second.json"); err != nil {
		t.Fatalf("SaveImported: %v", err)
	}

	imports, err := s.ListImports(ctx)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if len(imports) != 2 {
		t.Fatalf("imports = %d, want 2", len(imports))
	}
	latest, first := imports[0], imports[1]
	if latest.Source != "second.json" || latest.Entries != 2 || latest.ClearedAt != nil {
		t.Errorf("latest = %+v", latest)
	}
	if first.Source != "first.csv" || first.ClearedAt == nil || *first.ClearedAt != clock.Unix() {
		t.Errorf("first = %+v, want cleared at %d", first, clock.Unix())
	}

	clock = clock.Add(time.Hour)
	if err := s.ClearImported(ctx); err != nil {
		t.Fatalf("ClearImported: %v", err)
	}
	imports, err = s.ListImports(ctx)
	if err != nil {
		t.Fatalf("ListImports: %v", err)
	}
	if imports[0].ClearedAt == nil || *imports[0].ClearedAt != clock.Unix() {
		t.Errorf("latest after clear = %+v", imports[0])
	}

	id, err := s.RecordImport(ctx, "manual", 7)
	if err != nil {
		t.Fatalf("RecordImport: %v", err)
	}
	if id != 3 {
		t.Errorf("RecordImport id = %d, want 3", id)
	}
}

func TestRegistryWithStore(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "wu")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, dict.ManifestFile), []byte("id: wu\ndialect: shanghai\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "entries.json"), []byte(`[{"headword": "侬"}]`), 0o644)

	dbPath := filepath.Join(root, "fangyan.db")
	ctx := context.Background()

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	reg := dict.NewRegistry(root, s, nil)
	if err := reg.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := reg.Import(ctx, []lexicon.Entry{{Headword: "伊"}, {Headword: "汝"}}, "test"); err != nil {
		t.Fatalf("Import: %v", err)
	}
	s.Close()

	// A fresh process sees the persisted imported set.
	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	reg = dict.NewRegistry(root, s, nil)
	if err := reg.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reg.Imported() || reg.EntryCount() != 2 {
		t.Errorf("after restart: imported=%v count=%d, want true/2", reg.Imported(), reg.EntryCount())
	}
	if _, ok := reg.Entry("imported-2"); !ok {
		t.Error("imported-2 not restored")
	}
}
