package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/cabinet/internal/model"
)

var _ model.MetaStore = (*MetaRepository)(nil)

// MetaRepository keeps the single vault_meta row.
type MetaRepository struct {
	db *Connection
}

func NewMetaRepository(db *Connection) *MetaRepository {
	return &MetaRepository{
		db: db,
	}
}

// GetKeyFingerprint returns model.ErrNotFound when no fingerprint was recorded.
func (r *MetaRepository) GetKeyFingerprint(ctx context.Context) ([]byte, error) {
	const query = `SELECT key_fingerprint FROM vault_meta WHERE id = 1`

	var fp []byte
	if err := r.db.QueryRow(ctx, query).Scan(&fp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if len(fp) == 0 {
		return nil, model.ErrNotFound
	}

	return fp, nil
}

func (r *MetaRepository) SetKeyFingerprint(ctx context.Context, fingerprint []byte) error {
	const query = `
		INSERT INTO vault_meta (id, key_fingerprint, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET key_fingerprint = EXCLUDED.key_fingerprint, updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, fingerprint)
	return err
}

func (r *MetaRepository) ClearKeyFingerprint(ctx context.Context) error {
	const query = `UPDATE vault_meta SET key_fingerprint = NULL, updated_at = NOW() WHERE id = 1`

	_, err := r.db.Exec(ctx, query)
	return err
}
