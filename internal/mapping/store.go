// Package mapping persists the monitor fingerprint → target index table.
package mapping

import "deskstate/internal/models"

// Store is the interface for persisting the mapping table.
type Store interface {
	// Load reads the current table. Missing or corrupt storage yields an
	// empty table, never an error.
	Load() models.MappingTable

	// Set merges one entry into the freshest durable table, persists the
	// result, and returns the merged table for immediate use.
	Set(fp models.Fingerprint, targetIndex int) models.MappingTable

	// Path returns the file path used by this store.
	Path() string
}
