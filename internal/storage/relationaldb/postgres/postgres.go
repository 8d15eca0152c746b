// Package postgres opens the event journal on a PostgreSQL server.
package postgres

import (
	"context"
	"log/slog"

	"github.com/LeJamon/goswapd/internal/storage/relationaldb"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// Open connects to the server described by config and creates the
// journal tables if they are missing.
func Open(ctx context.Context, config *relationaldb.Config, logger *slog.Logger) (*relationaldb.SQLStore, error) {
	return relationaldb.Open(ctx, relationaldb.Postgres, config, logger)
}
