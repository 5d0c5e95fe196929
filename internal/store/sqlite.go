// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"

	"github.com/javajoker/ip-licensing-portal/internal/models"
)

// SQLiteBackend keeps entries in a single table of an embedded SQLite
// database. It needs no cgo and suits single-node deployments.
type SQLiteBackend struct {
	db    *bun.DB
	table string
}

func NewSQLiteBackend(ctx context.Context, dsn, table string) (*SQLiteBackend, error) {
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under load.
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	_, err = db.NewCreateTable().
		Model((*models.StorageEntry)(nil)).
		ModelTableExpr("?", bun.Ident(table)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}

	return &SQLiteBackend{db: db, table: table}, nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := b.db.NewRaw(`SELECT "value" FROM ? WHERE "key" = ?`, bun.Ident(b.table), key).Scan(ctx, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, key string, value []byte) error {
	_, err := b.db.NewRaw(
		`INSERT INTO ? ("key", "value", "updated_at") VALUES (?, ?, ?)
		ON CONFLICT ("key") DO UPDATE SET "value" = excluded."value", "updated_at" = excluded."updated_at"`,
		bun.Ident(b.table), key, string(value), time.Now().UTC(),
	).Exec(ctx)
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
