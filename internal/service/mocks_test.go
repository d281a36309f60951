package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/cabinet/internal/model"
)

// MockPairStore mocks the PairStore interface
type MockPairStore struct {
	mock.Mock
}

func (m *MockPairStore) Create(ctx context.Context, pair model.Pair) (model.Pair, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(model.Pair), args.Error(1)
}

func (m *MockPairStore) Update(ctx context.Context, pair model.Pair) (model.Pair, error) {
	args := m.Called(ctx, pair)
	return args.Get(0).(model.Pair), args.Error(1)
}

func (m *MockPairStore) Upsert(ctx context.Context, pair model.Pair) error {
	args := m.Called(ctx, pair)
	return args.Error(0)
}

func (m *MockPairStore) GetByID(ctx context.Context, id uuid.UUID) (model.Pair, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Pair), args.Error(1)
}

func (m *MockPairStore) GetByKey(ctx context.Context, key string) ([]model.Pair, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]model.Pair), args.Error(1)
}

func (m *MockPairStore) List(ctx context.Context, query model.ListQuery) ([]model.Pair, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.Pair), args.Error(1)
}

func (m *MockPairStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockPairStore) TouchLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockPairStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPairStore) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockDrawerStore mocks the DrawerStore interface
type MockDrawerStore struct {
	mock.Mock
}

func (m *MockDrawerStore) Create(ctx context.Context, drawer model.Drawer) (model.Drawer, error) {
	args := m.Called(ctx, drawer)
	return args.Get(0).(model.Drawer), args.Error(1)
}

func (m *MockDrawerStore) Update(ctx context.Context, drawer model.Drawer) (model.Drawer, error) {
	args := m.Called(ctx, drawer)
	return args.Get(0).(model.Drawer), args.Error(1)
}

func (m *MockDrawerStore) Upsert(ctx context.Context, drawer model.Drawer) error {
	args := m.Called(ctx, drawer)
	return args.Error(0)
}

func (m *MockDrawerStore) GetByID(ctx context.Context, id uuid.UUID) (model.Drawer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Drawer), args.Error(1)
}

func (m *MockDrawerStore) List(ctx context.Context) ([]model.Drawer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Drawer), args.Error(1)
}

func (m *MockDrawerStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMetaStore mocks the MetaStore interface
type MockMetaStore struct {
	mock.Mock
}

func (m *MockMetaStore) GetKeyFingerprint(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockMetaStore) SetKeyFingerprint(ctx context.Context, fingerprint []byte) error {
	args := m.Called(ctx, fingerprint)
	return args.Error(0)
}

func (m *MockMetaStore) ClearKeyFingerprint(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAuthenticator mocks the Authenticator interface
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, reason string) error {
	args := m.Called(ctx, reason)
	return args.Error(0)
}

// MockClipboard mocks the Clipboard interface
type MockClipboard struct {
	mock.Mock
}

func (m *MockClipboard) WriteAll(text string) error {
	args := m.Called(text)
	return args.Error(0)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// memMeta is an in-memory MetaStore.
type memMeta struct {
	fingerprint []byte
}

func (m *memMeta) GetKeyFingerprint(context.Context) ([]byte, error) {
	if m.fingerprint == nil {
		return nil, model.ErrNotFound
	}
	return m.fingerprint, nil
}

func (m *memMeta) SetKeyFingerprint(_ context.Context, fingerprint []byte) error {
	m.fingerprint = append([]byte(nil), fingerprint...)
	return nil
}

func (m *memMeta) ClearKeyFingerprint(context.Context) error {
	m.fingerprint = nil
	return nil
}
