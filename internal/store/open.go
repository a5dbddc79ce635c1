package store

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Open connects to the configured backend. It does not migrate.
func Open(ctx context.Context, driver, databaseURL string, poolCfg *PoolConfig) (Store, error) {
	switch driver {
	case "sqlite":
		zap.L().Debug("store: opening sqlite", zap.String("path", databaseURL))
		return NewSQLite(databaseURL)
	case "postgres":
		zap.L().Debug("store: opening postgres")
		return NewPostgres(ctx, databaseURL, poolCfg)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}
