// Package backend selects a database.Manager by name.
package backend

import (
	"fmt"

	"github.com/LeJamon/goswapd/internal/storage/database"
	"github.com/LeJamon/goswapd/internal/storage/database/leveldb"
	"github.com/LeJamon/goswapd/internal/storage/database/memory"
	"github.com/LeJamon/goswapd/internal/storage/database/pebble"
)

// Supported backend names.
const (
	Memory  = "memory"
	Pebble  = "pebble"
	LevelDB = "leveldb"
)

// Names lists every supported backend.
var Names = []string{Memory, Pebble, LevelDB}

// Open returns a manager for backend rooted at path. path is ignored by
// the memory backend.
func Open(backend, path string) (database.Manager, error) {
	switch backend {
	case Memory:
		return memory.NewManager(), nil
	case Pebble:
		return pebble.NewManager(path), nil
	case LevelDB:
		return leveldb.NewManager(path), nil
	default:
		return nil, fmt.Errorf("%w: %q", database.ErrUnknownBackend, backend)
	}
}
