package model

import (
	"context"
	"io"
	"time"
)

// Storage keeps backup snapshots.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KeyVault is the platform protected keystore, addressed by namespace.
// Get returns ErrNotFound when nothing is stored under the namespace.
type KeyVault interface {
	Put(namespace string, data []byte) error
	Get(namespace string) ([]byte, error)
	Delete(namespace string) error
}

// MetaStore keeps installation-wide metadata alongside the records.
type MetaStore interface {
	GetKeyFingerprint(ctx context.Context) ([]byte, error)
	SetKeyFingerprint(ctx context.Context, fingerprint []byte) error
	ClearKeyFingerprint(ctx context.Context) error
}

// Authenticator is the identity check gate run before a confidential value is revealed.
// It returns nil, ErrAuthenticationFailed or ErrAuthenticationUnavailable.
type Authenticator interface {
	Authenticate(ctx context.Context, reason string) error
}

// Clipboard receives revealed values on copy.
type Clipboard interface {
	WriteAll(text string) error
}

// Snapshot is a backup of the record store. Values are ciphertext only.
// KeyFingerprint identifies the master key the values are sealed with.
type Snapshot struct {
	Version        int              `json:"version"`
	CreatedAt      time.Time        `json:"created_at"`
	KeyFingerprint []byte           `json:"key_fingerprint"`
	Pairs          []SnapshotPair   `json:"pairs"`
	Drawers        []SnapshotDrawer `json:"drawers"`
}

// SnapshotPair is a pair as written to a backup.
type SnapshotPair struct {
	ID             string     `json:"id"`
	Key            string     `json:"key"`
	Icon           string     `json:"icon"`
	IsFavorite     bool       `json:"is_favorite"`
	IsHidden       bool       `json:"is_hidden"`
	Drawers        []string   `json:"drawers"`
	Notes          string     `json:"notes"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	EncryptedValue []byte     `json:"encrypted_value"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SnapshotDrawer is a drawer as written to a backup.
type SnapshotDrawer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Purpose   string    `json:"purpose"`
	CreatedAt time.Time `json:"created_at"`
}
