package mapping_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"deskstate/internal/mapping"
	"deskstate/internal/models"
)

func newTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "deskstate-mapping-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestJSONStore_LoadMissingFile_ReturnsEmpty(t *testing.T) {
	store := mapping.NewJSONStore(newTempDir(t))
	table := store.Load()
	if table == nil {
		t.Fatal("Load() returned nil table")
	}
	if len(table) != 0 {
		t.Errorf("Load() on missing file = %v, want empty", table)
	}
}

func TestJSONStore_LoadCorruptFile_ReturnsEmpty(t *testing.T) {
	dir := newTempDir(t)
	store := mapping.NewJSONStore(dir)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := store.Load()
	if len(table) != 0 {
		t.Errorf("Load() on corrupt file = %v, want empty", table)
	}
}

func TestJSONStore_SetLoadRoundTrip(t *testing.T) {
	store := mapping.NewJSONStore(newTempDir(t))
	fp := models.NewFingerprint("DEL", "A0C4", "5H2T1", "d")

	returned := store.Set(fp, 3)
	if returned[fp] != 3 {
		t.Errorf("Set() returned table %v, want %s → 3", returned, fp)
	}

	loaded := store.Load()
	if loaded[fp] != 3 {
		t.Errorf("Load() after Set = %v, want %s → 3", loaded, fp)
	}
}

func TestJSONStore_SetPreservesUnrelatedEntries(t *testing.T) {
	store := mapping.NewJSONStore(newTempDir(t))
	fpA := models.NewFingerprint("DEL", "A0C4", "1", "a")
	fpB := models.NewFingerprint("GSM", "5B09", "2", "b")

	store.Set(fpA, 7)
	table := store.Set(fpB, 2)

	if table[fpA] != 7 || table[fpB] != 2 {
		t.Errorf("table after two Sets = %v, want both entries", table)
	}
	loaded := store.Load()
	if loaded[fpA] != 7 || loaded[fpB] != 2 {
		t.Errorf("durable table = %v, want both entries", loaded)
	}
}

func TestJSONStore_SetPicksUpExternalEdit(t *testing.T) {
	dir := newTempDir(t)
	store := mapping.NewJSONStore(dir)
	fpA := models.NewFingerprint("DEL", "A0C4", "1", "a")
	fpB := models.NewFingerprint("GSM", "5B09", "2", "b")

	store.Set(fpA, 7)

	// Simulate a manual edit outside the process.
	edited := []byte(`{"` + string(fpA) + `": 7, "` + string(fpB) + `": 4}`)
	if err := os.WriteFile(store.Path(), edited, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := store.Set(fpA, 5)
	if table[fpB] != 4 {
		t.Errorf("Set dropped externally added entry: %v", table)
	}
	if table[fpA] != 5 {
		t.Errorf("Set did not apply its own entry: %v", table)
	}
}

func TestJSONStore_ConcurrentSets_NoLostEntries(t *testing.T) {
	store := mapping.NewJSONStore(newTempDir(t))

	fps := make([]models.Fingerprint, 8)
	for i := range fps {
		fps[i] = models.NewFingerprint("VEN", "PRD", string(rune('a'+i)), "m")
	}

	var wg sync.WaitGroup
	for i, fp := range fps {
		wg.Add(1)
		go func(fp models.Fingerprint, idx int) {
			defer wg.Done()
			store.Set(fp, idx)
		}(fp, i+1)
	}
	wg.Wait()

	loaded := store.Load()
	for i, fp := range fps {
		if loaded[fp] != i+1 {
			t.Errorf("entry %s = %d, want %d (lost update)", fp, loaded[fp], i+1)
		}
	}
}

func TestJSONStore_NoPartialFileAfterSet(t *testing.T) {
	store := mapping.NewJSONStore(newTempDir(t))
	store.Set(models.NewFingerprint("DEL", "A0C4", "1", "a"), 1)

	// The temp file must not linger after a successful rename.
	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after Set")
	}
}

func TestWatch_FiresOnExternalWrite(t *testing.T) {
	dir := newTempDir(t)
	path := filepath.Join(dir, "monitors.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	go func() {
		_ = mapping.Watch(ctx, path, func() {
			select {
			case fired <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not fire on external write")
	}
}
