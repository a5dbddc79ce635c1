package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/flowaudit/audit-engine/internal/store"
)

// initStore opens and migrates the evaluation archive.
func initStore(ctx context.Context) (store.Store, error) {
	if err := cfg.Validate("archive"); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, &store.PoolConfig{
		MaxConns: cfg.Store.MaxConns,
		MinConns: cfg.Store.MinConns,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	zap.L().Debug("archive ready", zap.String("driver", cfg.Store.Driver))
	return st, nil
}
