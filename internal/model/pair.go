package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PairStore defines persistence operations for pairs.
type PairStore interface {
	Create(ctx context.Context, pair Pair) (Pair, error)
	Update(ctx context.Context, pair Pair) (Pair, error)
	Upsert(ctx context.Context, pair Pair) error
	GetByID(ctx context.Context, id uuid.UUID) (Pair, error)
	GetByKey(ctx context.Context, key string) ([]Pair, error)
	List(ctx context.Context, query ListQuery) ([]Pair, error)
	Count(ctx context.Context) (int, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}

// Pair is a named secret. Only EncryptedValue is persisted for the secret itself.
type Pair struct {
	ID             uuid.UUID
	Key            string
	Icon           string
	IsFavorite     bool
	IsHidden       bool
	Drawers        []uuid.UUID
	Notes          string
	LastUsedAt     *time.Time
	EncryptedValue []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DefaultPairIcon is used when a pair is created without an icon.
const DefaultPairIcon = "text.document"

// Filter narrows pair listings.
type Filter string

const (
	// FilterAll lists every pair.
	FilterAll Filter = "all"
	// FilterFavorites lists favorite pairs.
	FilterFavorites Filter = "favorites"
	// FilterRecents lists pairs that were used, newest first.
	FilterRecents Filter = "recents"
)

// Valid reports whether f is a known filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterFavorites, FilterRecents:
		return true
	}
	return false
}

// ListQuery selects pairs for listing.
type ListQuery struct {
	Filter Filter
	Drawer *uuid.UUID
}

// CreatePairParams contains parameters to create a pair.
type CreatePairParams struct {
	Key        string
	Icon       string
	Value      string
	IsFavorite bool
	IsHidden   bool
	Drawers    []uuid.UUID
	Notes      string
}

// UpdatePairParams contains optional metadata changes. Nil fields are left untouched.
type UpdatePairParams struct {
	Key        *string
	Icon       *string
	IsFavorite *bool
	IsHidden   *bool
	Drawers    *[]uuid.UUID
	Notes      *string
}
