package storage

import (
	"context"
	"fmt"

	"costar-map/config"
)

// NewSource builds the listing source selected by cfg.DataSource.
func NewSource(ctx context.Context, cfg *config.Config) (ListingSource, error) {
	switch cfg.DataSource {
	case "csv":
		return NewCSVReader(cfg.CSVPath), nil
	case "postgres", "oracle", "sqlite":
		return NewSQLReader(ctx, cfg.DataSource, cfg.DSN(), cfg.ListingsTable)
	default:
		return nil, fmt.Errorf("storage: unknown data source %q", cfg.DataSource)
	}
}
