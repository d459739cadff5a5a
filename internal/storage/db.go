// Package storage opens the local game database, applies migrations, and
// bundles the per-type repositories.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/lifeisskill/lisk-go/internal/migrations"
	"github.com/lifeisskill/lisk-go/internal/repositories/categories"
	"github.com/lifeisskill/lisk-go/internal/repositories/genericpoints"
	"github.com/lifeisskill/lisk-go/internal/repositories/metadata"
	"github.com/lifeisskill/lisk-go/internal/repositories/rankings"
	"github.com/lifeisskill/lisk-go/internal/repositories/scans"
	"github.com/lifeisskill/lisk-go/internal/repositories/userpoints"
)

// Repositories is the bundle handed to managers. DB is exposed for
// transactional writes via dbx.WithTx.
type Repositories struct {
	DB            *sql.DB
	Metadata      metadata.Repository
	UserPoints    userpoints.Repository
	GenericPoints genericpoints.Repository
	Rankings      rankings.Repository
	Categories    categories.Repository
	Scans         scans.Repository
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (creating if needed) the sqlite database at dsn,
// migrates it, and returns the repository bundle.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		DB:            db,
		Metadata:      metadata.NewSQLiteRepository(db),
		UserPoints:    userpoints.NewSQLiteRepository(db),
		GenericPoints: genericpoints.NewSQLiteRepository(db),
		Rankings:      rankings.NewSQLiteRepository(db),
		Categories:    categories.NewSQLiteRepository(db),
		Scans:         scans.NewSQLiteRepository(db),
	}, nil
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}
