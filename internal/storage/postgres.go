// internal/storage/postgres.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"loanflow/internal/common/logger"
)

// postgresBackend keeps the state blob in a single keyed row so the layout
// stays byte-compatible with the other backends.
type postgresBackend struct {
	db        *sql.DB
	namespace string
}

// NewPostgresStore returns a Store persisting into the loanflow_state table
// under the namespace key. Call EnsureSchema once at startup.
func NewPostgresStore(db *sql.DB, namespace string, log logger.Logger) Store {
	return newBlobStore(&postgresBackend{
		db:        db,
		namespace: namespace,
	}, log.WithFields(map[string]interface{}{"store": "postgres", "namespace": namespace}))
}

// EnsureSchema creates the blob table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS loanflow_state (
			key        TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create loanflow_state table: %w", err)
	}
	return nil
}

func (b *postgresBackend) load(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM loanflow_state WHERE key = $1`, b.namespace).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

func (b *postgresBackend) save(ctx context.Context, data []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO loanflow_state (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		b.namespace, data)
	return err
}

func (b *postgresBackend) clear(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx,
		`DELETE FROM loanflow_state WHERE key = $1`, b.namespace)
	return err
}
