package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/cabinet/internal/model"
)

var _ model.PairStore = (*PairRepository)(nil)

const pairColumns = `p.id, p.key, p.icon, p.is_favorite, p.is_hidden, p.notes, p.encrypted_value,
	p.last_used_at, p.created_at, p.updated_at,
	ARRAY(SELECT pd.drawer_id::text FROM pair_drawers pd WHERE pd.pair_id = p.id ORDER BY pd.drawer_id) AS drawers`

type PairRepository struct {
	db *Connection
}

func NewPairRepository(db *Connection) *PairRepository {
	return &PairRepository{
		db: db,
	}
}

func (r *PairRepository) Create(ctx context.Context, pair model.Pair) (model.Pair, error) {
	const query = `
		INSERT INTO pairs (id, key, icon, is_favorite, is_hidden, notes, encrypted_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			pair.ID, pair.Key, pair.Icon, pair.IsFavorite, pair.IsHidden, pair.Notes, pair.EncryptedValue,
		)
		if err != nil {
			return err
		}
		return replaceDrawers(ctx, tx, pair.ID, pair.Drawers)
	})
	if err != nil {
		return model.Pair{}, err
	}

	return r.GetByID(ctx, pair.ID)
}

func (r *PairRepository) Update(ctx context.Context, pair model.Pair) (model.Pair, error) {
	const query = `
		UPDATE pairs
		SET key = $2, icon = $3, is_favorite = $4, is_hidden = $5, notes = $6, encrypted_value = $7, updated_at = NOW()
		WHERE id = $1`

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, query,
			pair.ID, pair.Key, pair.Icon, pair.IsFavorite, pair.IsHidden, pair.Notes, pair.EncryptedValue,
		)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return model.ErrNotFound
		}
		return replaceDrawers(ctx, tx, pair.ID, pair.Drawers)
	})
	if err != nil {
		return model.Pair{}, err
	}

	return r.GetByID(ctx, pair.ID)
}

// Upsert writes pair as-is, timestamps included. Used when restoring backups.
func (r *PairRepository) Upsert(ctx context.Context, pair model.Pair) error {
	const query = `
		INSERT INTO pairs (id, key, icon, is_favorite, is_hidden, notes, encrypted_value, last_used_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			key = EXCLUDED.key,
			icon = EXCLUDED.icon,
			is_favorite = EXCLUDED.is_favorite,
			is_hidden = EXCLUDED.is_hidden,
			notes = EXCLUDED.notes,
			encrypted_value = EXCLUDED.encrypted_value,
			last_used_at = EXCLUDED.last_used_at,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			pair.ID, pair.Key, pair.Icon, pair.IsFavorite, pair.IsHidden, pair.Notes, pair.EncryptedValue,
			pair.LastUsedAt, pair.CreatedAt, pair.UpdatedAt,
		)
		if err != nil {
			return err
		}
		return replaceDrawers(ctx, tx, pair.ID, pair.Drawers)
	})
}

func (r *PairRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs p WHERE p.id = $1`

	pair, err := scanPair(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Pair{}, model.ErrNotFound
		}
		return model.Pair{}, err
	}

	return pair, nil
}

func (r *PairRepository) GetByKey(ctx context.Context, key string) ([]model.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs p WHERE p.key = $1 ORDER BY p.created_at ASC`

	rows, err := r.db.Query(ctx, query, key)
	if err != nil {
		return nil, err
	}
	return collectPairs(rows)
}

func (r *PairRepository) List(ctx context.Context, q model.ListQuery) ([]model.Pair, error) {
	query, args := listQuery(q)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectPairs(rows)
}

func (r *PairRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pairs`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PairRepository) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE pairs SET last_used_at = $2 WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PairRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM pairs WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *PairRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `DELETE FROM pairs`)
	return err
}

func listQuery(q model.ListQuery) (string, []any) {
	var (
		where []string
		args  []any
	)

	order := "p.created_at DESC"
	switch q.Filter {
	case model.FilterFavorites:
		where = append(where, "p.is_favorite")
	case model.FilterRecents:
		where = append(where, "p.last_used_at IS NOT NULL")
		order = "p.last_used_at DESC"
	}

	if q.Drawer != nil {
		args = append(args, *q.Drawer)
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM pair_drawers pd WHERE pd.pair_id = p.id AND pd.drawer_id = $%d)", len(args)))
	}

	query := `SELECT ` + pairColumns + ` FROM pairs p`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY ` + order

	return query, args
}

func replaceDrawers(ctx context.Context, tx pgx.Tx, pairID uuid.UUID, drawers []uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM pair_drawers WHERE pair_id = $1`, pairID); err != nil {
		return err
	}
	if len(drawers) == 0 {
		return nil
	}

	const query = `
		INSERT INTO pair_drawers (pair_id, drawer_id)
		SELECT $1, d::uuid FROM unnest($2::text[]) AS d
		ON CONFLICT DO NOTHING`
	if _, err := tx.Exec(ctx, query, pairID, uuidStrings(drawers)); err != nil {
		return fmt.Errorf("failed to link drawers: %w", err)
	}
	return nil
}

func scanPair(row pgx.Row) (model.Pair, error) {
	var (
		pair    model.Pair
		drawers []string
	)
	err := row.Scan(
		&pair.ID, &pair.Key, &pair.Icon, &pair.IsFavorite, &pair.IsHidden, &pair.Notes, &pair.EncryptedValue,
		&pair.LastUsedAt, &pair.CreatedAt, &pair.UpdatedAt, &drawers,
	)
	if err != nil {
		return model.Pair{}, err
	}

	pair.Drawers, err = parseUUIDs(drawers)
	if err != nil {
		return model.Pair{}, err
	}
	return pair, nil
}

func collectPairs(rows pgx.Rows) ([]model.Pair, error) {
	defer rows.Close()

	var pairs []model.Pair
	for rows.Next() {
		pair, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return pairs, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(ss []string) ([]uuid.UUID, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, len(ss))
	for i, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid drawer id %q: %w", s, err)
		}
		out[i] = id
	}
	return out, nil
}
