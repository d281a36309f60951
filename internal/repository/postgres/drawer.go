package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtroode/cabinet/internal/model"
)

var _ model.DrawerStore = (*DrawerRepository)(nil)

type DrawerRepository struct {
	db *Connection
}

func NewDrawerRepository(db *Connection) *DrawerRepository {
	return &DrawerRepository{
		db: db,
	}
}

func (r *DrawerRepository) Create(ctx context.Context, drawer model.Drawer) (model.Drawer, error) {
	const query = `
		INSERT INTO drawers (id, name, icon, purpose)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, icon, purpose, created_at`

	var d model.Drawer
	err := r.db.QueryRow(ctx, query, drawer.ID, drawer.Name, drawer.Icon, drawer.Purpose).
		Scan(&d.ID, &d.Name, &d.Icon, &d.Purpose, &d.CreatedAt)
	if err != nil {
		return model.Drawer{}, err
	}

	return d, nil
}

func (r *DrawerRepository) Update(ctx context.Context, drawer model.Drawer) (model.Drawer, error) {
	const query = `
		UPDATE drawers SET name = $2, icon = $3, purpose = $4
		WHERE id = $1
		RETURNING id, name, icon, purpose, created_at`

	var d model.Drawer
	err := r.db.QueryRow(ctx, query, drawer.ID, drawer.Name, drawer.Icon, drawer.Purpose).
		Scan(&d.ID, &d.Name, &d.Icon, &d.Purpose, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Drawer{}, model.ErrNotFound
		}
		return model.Drawer{}, err
	}

	return d, nil
}

// Upsert writes drawer as-is, creation time included.
func (r *DrawerRepository) Upsert(ctx context.Context, drawer model.Drawer) error {
	const query = `
		INSERT INTO drawers (id, name, icon, purpose, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			icon = EXCLUDED.icon,
			purpose = EXCLUDED.purpose,
			created_at = EXCLUDED.created_at`

	_, err := r.db.Exec(ctx, query, drawer.ID, drawer.Name, drawer.Icon, drawer.Purpose, drawer.CreatedAt)
	return err
}

func (r *DrawerRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Drawer, error) {
	const query = `SELECT id, name, icon, purpose, created_at FROM drawers WHERE id = $1`

	var d model.Drawer
	err := r.db.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Icon, &d.Purpose, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Drawer{}, model.ErrNotFound
		}
		return model.Drawer{}, err
	}

	return d, nil
}

func (r *DrawerRepository) List(ctx context.Context) ([]model.Drawer, error) {
	const query = `SELECT id, name, icon, purpose, created_at FROM drawers ORDER BY name ASC, created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drawers []model.Drawer
	for rows.Next() {
		var d model.Drawer
		if err := rows.Scan(&d.ID, &d.Name, &d.Icon, &d.Purpose, &d.CreatedAt); err != nil {
			return nil, err
		}
		drawers = append(drawers, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return drawers, nil
}

// Delete removes the drawer and its memberships. Pairs are kept.
func (r *DrawerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM drawers WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
