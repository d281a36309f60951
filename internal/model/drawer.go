package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DrawerStore defines persistence operations for drawers.
type DrawerStore interface {
	Create(ctx context.Context, drawer Drawer) (Drawer, error)
	Update(ctx context.Context, drawer Drawer) (Drawer, error)
	Upsert(ctx context.Context, drawer Drawer) error
	GetByID(ctx context.Context, id uuid.UUID) (Drawer, error)
	List(ctx context.Context) ([]Drawer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Drawer groups pairs. Deleting a drawer never deletes its pairs.
type Drawer struct {
	ID        uuid.UUID
	Name      string
	Icon      string
	Purpose   string
	CreatedAt time.Time
}

// DefaultDrawerIcon is used when a drawer is created without an icon.
const DefaultDrawerIcon = "archivebox"

// CreateDrawerParams contains parameters to create a drawer.
type CreateDrawerParams struct {
	Name    string
	Icon    string
	Purpose string
}

// UpdateDrawerParams contains optional drawer changes. Nil fields are left untouched.
type UpdateDrawerParams struct {
	Name    *string
	Icon    *string
	Purpose *string
}
