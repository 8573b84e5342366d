package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLBackend stores documents in the documents table created by the
// core/database migrations. It works with both postgres and sqlite3 because
// queries are rebound to the driver's placeholder style.
type SQLBackend struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLBackend wraps an open connection.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db, now: time.Now}
}

type documentRow struct {
	Name      string    `db:"name"`
	Body      string    `db:"body"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Load selects the document body.
func (b *SQLBackend) Load(ctx context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var row documentRow
	query := b.db.Rebind(`SELECT name, body, updated_at FROM documents WHERE name = ?`)
	if err := b.db.GetContext(ctx, &row, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select document %s: %w", name, err)
	}
	return []byte(row.Body), nil
}

// Save upserts the document body.
func (b *SQLBackend) Save(ctx context.Context, name string, body []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	row := documentRow{Name: name, Body: string(body), UpdatedAt: b.now().UTC()}
	query := `INSERT INTO documents (name, body, updated_at) VALUES (:name, :body, :updated_at)
ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	if _, err := b.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert document %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}
