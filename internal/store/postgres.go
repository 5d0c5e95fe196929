// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/javajoker/ip-licensing-portal/internal/database"
	"github.com/javajoker/ip-licensing-portal/internal/models"
)

// PostgresBackend keeps entries in a PostgreSQL table through GORM.
type PostgresBackend struct {
	db    *gorm.DB
	table string
}

func NewPostgresBackend(db *gorm.DB, table string) (*PostgresBackend, error) {
	if err := database.RunMigrations(db, table); err != nil {
		return nil, err
	}
	return &PostgresBackend{db: db, table: table}, nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.StorageEntry
	err := b.db.WithContext(ctx).Table(b.table).Where(`"key" = ?`, key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("database error: %w", err)
	}
	return []byte(entry.Value), true, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	stmt := fmt.Sprintf(
		`INSERT INTO %s ("key", "value", "updated_at") VALUES (?, ?, ?)
		ON CONFLICT ("key") DO UPDATE SET "value" = EXCLUDED."value", "updated_at" = EXCLUDED."updated_at"`,
		pq.QuoteIdentifier(b.table),
	)
	if err := b.db.WithContext(ctx).Exec(stmt, key, string(value), time.Now().UTC()).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	database.Close(b.db)
	return nil
}
