package dict

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRegistryWatch(t *testing.T) {
	root := t.TempDir()
	dir := writeTestDataset(t, root, "wu", "", "entries.json", `[{"headword": "侬"}]`)

	reg := NewRegistry(root, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := reg.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- reg.Watch(ctx, 20*time.Millisecond) }()
	// Give the watcher time to register before changing files.
	time.Sleep(100 * time.Millisecond)

	os.WriteFile(filepath.Join(dir, "entries.json"), []byte(`[{"headword": "侬"}, {"headword": "伊"}]`), 0o644)
	waitFor(t, "reload after edit", func() bool { return reg.EntryCount() == 2 })

	staged := writeTestDataset(t, t.TempDir(), "yue", "", "entries.json", `[{"headword": "你"}]`)
	if err := os.Rename(staged, filepath.Join(root, "yue")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "reload after new dataset", func() bool { return reg.DatasetCount() == 2 && reg.EntryCount() == 3 })

	// A broken edit keeps the previous state.
	os.WriteFile(filepath.Join(dir, "entries.json"), []byte(`[{`), 0o644)
	time.Sleep(200 * time.Millisecond)
	if reg.EntryCount() != 3 {
		t.Errorf("EntryCount = %d after broken edit, want 3", reg.EntryCount())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}
