package mapping

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"deskstate/internal/models"
)

const mappingFileName = "monitors.json"

// JSONStore is an atomic JSON file store for the mapping table. Writes go
// through a temp file + rename so a partial failure leaves the previous
// contents intact, and Set holds an exclusive flock for its read-modify-write
// so concurrent writers (including other processes) cannot drop entries.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a store under the given state directory.
func NewJSONStore(stateDir string) *JSONStore {
	return &JSONStore{
		path: filepath.Join(stateDir, mappingFileName),
	}
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

// Load reads the table from disk. A missing or corrupt file yields an empty
// table; deleting the file is the supported way to reset all mappings.
func (s *JSONStore) Load() models.MappingTable {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("mapping: unreadable file, using empty table", "path", s.path, "err", err)
		}
		return models.MappingTable{}
	}

	var table models.MappingTable
	if err := json.Unmarshal(data, &table); err != nil {
		slog.Warn("mapping: corrupt JSON, using empty table", "path", s.path, "err", err)
		return models.MappingTable{}
	}
	if table == nil {
		table = models.MappingTable{}
	}
	return table
}

// Set merges fp → targetIndex into the table currently on disk and persists
// the result. Re-reading under the lock means manual edits made outside the
// process between refreshes are preserved rather than silently overwritten.
func (s *JSONStore) Set(fp models.Fingerprint, targetIndex int) models.MappingTable {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock := s.flock()
	defer unlock()

	table := s.Load()
	table[fp] = targetIndex
	if err := s.writeAtomic(table); err != nil {
		slog.Error("mapping: failed to persist table", "path", s.path, "err", err)
	}
	return table
}

// flock takes an exclusive advisory lock on a sidecar lock file. Returns a
// release func. Lock failure is non-fatal: the atomic rename still protects
// readers, only cross-process read-modify-write atomicity degrades.
func (s *JSONStore) flock() func() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return func() {}
	}
	f, err := os.OpenFile(s.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		slog.Warn("mapping: cannot open lock file", "err", err)
		return func() {}
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		slog.Warn("mapping: flock failed", "err", err)
		f.Close()
		return func() {}
	}
	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}
}

func (s *JSONStore) writeAtomic(table models.MappingTable) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}
