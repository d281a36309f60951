// Package keystore owns the installation master key.
//
// The key lives in a protected platform keystore (model.KeyVault) under a fixed
// namespace. It is created on first use and cached in a memguard enclave so the
// plaintext key is only unsealed for the duration of a single cipher operation.
package keystore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/awnumar/memguard"
	"golang.org/x/sync/singleflight"

	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
)

// KeySize is the master key length in bytes (AES-256).
const KeySize = 32

// MasterKey is the sealed in-memory copy of the installation key.
type MasterKey struct {
	enclave *memguard.Enclave
}

// Open unseals the key. The caller must Destroy the returned buffer.
func (k *MasterKey) Open() (*memguard.LockedBuffer, error) {
	if k == nil || k.enclave == nil {
		return nil, model.ErrKeyUnavailable
	}
	buf, err := k.enclave.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrKeyUnavailable, err)
	}
	return buf, nil
}

// Equal reports whether both keys hold the same bytes.
func (k *MasterKey) Equal(other *MasterKey) bool {
	a, err := k.Open()
	if err != nil {
		return false
	}
	defer a.Destroy()
	b, err := other.Open()
	if err != nil {
		return false
	}
	defer b.Destroy()
	return bytes.Equal(a.Bytes(), b.Bytes())
}

// lockRetryDelay is how often a blocked LoadOrCreate retries the generation lock.
const lockRetryDelay = 20 * time.Millisecond

// Locker serializes key generation between processes sharing one keystore.
// *flock.Flock satisfies it.
type Locker interface {
	TryLockContext(ctx context.Context, retryDelay time.Duration) (bool, error)
	Unlock() error
}

// Option configures a KeyStore.
type Option func(*KeyStore)

// WithLocker guards first-time key generation with l. Every process that may
// create the key must use a locker over the same resource.
func WithLocker(l Locker) Option {
	return func(s *KeyStore) {
		s.locker = l
	}
}

// KeyStore loads the master key from the protected keystore or creates it.
type KeyStore struct {
	vault     model.KeyVault
	namespace string
	logger    *logger.Logger
	locker    Locker

	mu     sync.RWMutex
	cached *MasterKey
	gen    uint64
	group  singleflight.Group
}

// New creates a KeyStore bound to one keystore namespace.
func New(vault model.KeyVault, namespace string, logger *logger.Logger, opts ...Option) *KeyStore {
	s := &KeyStore{
		vault:     vault,
		namespace: namespace,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadOrCreate returns the installation key, generating and persisting it on first use.
// Concurrent first calls share a single generation. Across processes the
// generation is serialized by the Locker, if one is set.
func (s *KeyStore) LoadOrCreate(ctx context.Context) (*MasterKey, error) {
	if key := s.current(); key != nil {
		return key, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do(s.namespace, func() (any, error) {
		s.mu.RLock()
		key, gen := s.cached, s.gen
		s.mu.RUnlock()
		if key != nil {
			return key, nil
		}

		key, err := s.loadOrCreate(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		// A Delete that ran during the load invalidates what we read.
		if s.gen == gen {
			s.cached = key
		}
		s.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*MasterKey), nil
}

// Delete removes the key from the protected keystore. Every value sealed with it
// becomes permanently unreadable; the next LoadOrCreate generates a fresh key.
func (s *KeyStore) Delete(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.vault.Delete(s.namespace); err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: failed to delete key: %w", model.ErrKeyStoreUnavailable, err)
	}
	s.cached = nil
	s.gen++
	s.group.Forget(s.namespace)
	s.logger.Warn("master key deleted", "namespace", s.namespace)
	return nil
}

func (s *KeyStore) current() *MasterKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cached
}

func (s *KeyStore) loadOrCreate(ctx context.Context) (*MasterKey, error) {
	key, err := s.load()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	unlock, err := s.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The lock holder before us may have created the key.
	key, err = s.load()
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	buf := memguard.NewBufferRandom(KeySize)
	if err := s.vault.Put(s.namespace, buf.Bytes()); err != nil {
		buf.Destroy()
		return nil, fmt.Errorf("%w: failed to store key: %w", model.ErrKeyStoreUnavailable, err)
	}
	buf.Destroy()

	key, err = s.load()
	if err != nil {
		return nil, err
	}
	s.logger.Warn("generated new master key", "namespace", s.namespace)
	return key, nil
}

func (s *KeyStore) lock(ctx context.Context) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	ok, err := s.locker.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: failed to lock keystore: %w", model.ErrKeyStoreUnavailable, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: keystore lock is held", model.ErrKeyStoreUnavailable)
	}

	return func() {
		if err := s.locker.Unlock(); err != nil {
			s.logger.Error("failed to unlock keystore", "namespace", s.namespace, "error", err)
		}
	}, nil
}

func (s *KeyStore) load() (*MasterKey, error) {
	data, err := s.vault.Get(s.namespace)
	if errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read key: %w", model.ErrKeyStoreUnavailable, err)
	}
	if len(data) != KeySize {
		memguard.WipeBytes(data)
		return nil, fmt.Errorf("%w: stored key has %d bytes", model.ErrKeyUnavailable, len(data))
	}
	// NewEnclave wipes data.
	return &MasterKey{enclave: memguard.NewEnclave(data)}, nil
}
