package service

import (
	"context"
	"crypto/hmac"
	"errors"
	"fmt"

	"github.com/dtroode/cabinet/internal/crypto"
	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
)

// KeyDeleter removes the master key from the protected keystore.
type KeyDeleter interface {
	Delete(ctx context.Context) error
}

// Vault tracks which master key sealed the stored values.
type Vault struct {
	keys   KeyDeleter
	cipher *crypto.Cipher
	meta   model.MetaStore
	pairs  model.PairStore
	logger *logger.Logger
}

func NewVault(
	keys KeyDeleter,
	cipher *crypto.Cipher,
	meta model.MetaStore,
	pairs model.PairStore,
	logger *logger.Logger,
) *Vault {
	return &Vault{
		keys:   keys,
		cipher: cipher,
		meta:   meta,
		pairs:  pairs,
		logger: logger,
	}
}

// CheckKey loads the master key, creating it if needed, and compares it with the
// fingerprint recorded in the store. The first key seen is recorded. A different
// key returns model.ErrKeyMismatch.
func (s *Vault) CheckKey(ctx context.Context) error {
	current, err := s.cipher.Fingerprint(ctx)
	if err != nil {
		return fmt.Errorf("failed to load master key: %w", err)
	}

	stored, err := s.meta.GetKeyFingerprint(ctx)
	if errors.Is(err, model.ErrNotFound) {
		if err := s.meta.SetKeyFingerprint(ctx, current); err != nil {
			return fmt.Errorf("failed to record key fingerprint: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get key fingerprint: %w", err)
	}

	if hmac.Equal(stored, current) {
		return nil
	}

	affected, err := s.pairs.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count pairs", "error", err)
	}
	s.logger.Error("master key was regenerated, stored values cannot be decrypted", "pairs", affected)
	return model.ErrKeyMismatch
}

// ResetKey deletes the master key and forgets its fingerprint. With purge all pairs
// are deleted first. A new key is created on next use.
func (s *Vault) ResetKey(ctx context.Context, purge bool) error {
	if purge {
		if err := s.pairs.DeleteAll(ctx); err != nil {
			return fmt.Errorf("failed to delete pairs: %w", err)
		}
	} else if n, err := s.pairs.Count(ctx); err == nil && n > 0 {
		s.logger.Warn("resetting master key leaves pairs unreadable", "pairs", n)
	}

	if err := s.keys.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete master key: %w", err)
	}
	if err := s.meta.ClearKeyFingerprint(ctx); err != nil {
		return fmt.Errorf("failed to clear key fingerprint: %w", err)
	}
	return nil
}
