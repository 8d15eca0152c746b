// Package sqlite opens the event journal on an embedded SQLite file.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	_ "modernc.org/sqlite" // SQLite driver
)

// Open opens (creating if needed) the journal at config.Database.
func Open(ctx context.Context, config *relationaldb.Config, logger *slog.Logger) (*relationaldb.SQLStore, error) {
	return relationaldb.Open(ctx, relationaldb.SQLite, config, logger)
}
