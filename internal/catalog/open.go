package catalog

import (
	"context"
	"io"

	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/megastore-search/pkg/sqlite"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenSource builds the Source named by cfg.Catalog. The returned closer
// releases any database connection. A "" source yields (nil, closer, nil):
// the index starts empty.
func OpenSource(ctx context.Context, cfg *config.Config) (Source, io.Closer, error) {
	switch cfg.Catalog.Source {
	case config.SourceNone:
		return nil, nopCloser{}, nil
	case config.SourceFile:
		return JSONFileSource{Path: cfg.Catalog.Path}, nopCloser{}, nil
	case config.SourceSQLite:
		db, err := sqlite.Open(ctx, cfg.Catalog.Path)
		if err != nil {
			return nil, nil, err
		}
		return SQLSource{DB: db, Label: "sqlite:" + cfg.Catalog.Path}, db, nil
	case config.SourcePostgres:
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		label := "postgres:" + cfg.Postgres.Host + "/" + cfg.Postgres.Database
		return SQLSource{DB: client.DB, Label: label}, client, nil
	default:
		return nil, nil, apperrors.Newf(apperrors.ErrUnknownSource, "%q", cfg.Catalog.Source)
	}
}
