//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/cabinet/internal/model"
	repo "github.com/dtroode/cabinet/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "cabinet_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/cabinet_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)

	pairs := repo.NewPairRepository(conn)
	drawers := repo.NewDrawerRepository(conn)
	require.NoError(t, pairs.DeleteAll(ctx))

	work, err := drawers.Create(ctx, model.Drawer{ID: uuid.New(), Name: "Work", Icon: model.DefaultDrawerIcon, Purpose: "office"})
	require.NoError(t, err)
	assert.False(t, work.CreatedAt.IsZero())

	blob := []byte{0x01, 0x02, 0x03}
	p := model.Pair{
		ID:             uuid.New(),
		Key:            "Passport",
		Icon:           model.DefaultPairIcon,
		IsHidden:       true,
		Drawers:        []uuid.UUID{work.ID},
		Notes:          "renew in 2030",
		EncryptedValue: blob,
	}
	saved, err := pairs.Create(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, blob, saved.EncryptedValue)
	assert.Equal(t, []uuid.UUID{work.ID}, saved.Drawers)
	assert.Nil(t, saved.LastUsedAt)

	byKey, err := pairs.GetByKey(ctx, "Passport")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, p.ID, byKey[0].ID)

	saved.IsFavorite = true
	saved.Drawers = nil
	updated, err := pairs.Update(ctx, saved)
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)
	assert.Empty(t, updated.Drawers)

	_, err = pairs.Update(ctx, model.Pair{ID: uuid.New(), EncryptedValue: blob})
	assert.ErrorIs(t, err, model.ErrNotFound)

	n, err := pairs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, pairs.Delete(ctx, p.ID))
	assert.ErrorIs(t, pairs.Delete(ctx, p.ID), model.ErrNotFound)

	_, err = pairs.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPairRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)

	pairs := repo.NewPairRepository(conn)
	drawers := repo.NewDrawerRepository(conn)
	require.NoError(t, pairs.DeleteAll(ctx))

	home, err := drawers.Create(ctx, model.Drawer{ID: uuid.New(), Name: "Home", Icon: model.DefaultDrawerIcon})
	require.NoError(t, err)

	plain, err := pairs.Create(ctx, model.Pair{ID: uuid.New(), Key: "plain", Icon: model.DefaultPairIcon, EncryptedValue: []byte{1}})
	require.NoError(t, err)
	fav, err := pairs.Create(ctx, model.Pair{ID: uuid.New(), Key: "fav", Icon: model.DefaultPairIcon, IsFavorite: true, Drawers: []uuid.UUID{home.ID}, EncryptedValue: []byte{2}})
	require.NoError(t, err)
	used, err := pairs.Create(ctx, model.Pair{ID: uuid.New(), Key: "used", Icon: model.DefaultPairIcon, Drawers: []uuid.UUID{home.ID}, EncryptedValue: []byte{3}})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, pairs.TouchLastUsed(ctx, plain.ID, now.Add(-time.Hour)))
	require.NoError(t, pairs.TouchLastUsed(ctx, used.ID, now))
	assert.ErrorIs(t, pairs.TouchLastUsed(ctx, uuid.New(), now), model.ErrNotFound)

	all, err := pairs.List(ctx, model.ListQuery{Filter: model.FilterAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	favorites, err := pairs.List(ctx, model.ListQuery{Filter: model.FilterFavorites})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, fav.ID, favorites[0].ID)

	recents, err := pairs.List(ctx, model.ListQuery{Filter: model.FilterRecents})
	require.NoError(t, err)
	require.Len(t, recents, 2)
	assert.Equal(t, used.ID, recents[0].ID)
	assert.Equal(t, plain.ID, recents[1].ID)

	inHome, err := pairs.List(ctx, model.ListQuery{Filter: model.FilterAll, Drawer: &home.ID})
	require.NoError(t, err)
	assert.Len(t, inHome, 2)

	// Deleting a drawer keeps its pairs.
	require.NoError(t, drawers.Delete(ctx, home.ID))
	all, err = pairs.List(ctx, model.ListQuery{Filter: model.FilterAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, p := range all {
		assert.Empty(t, p.Drawers)
	}
}

func TestRepositories_Upsert(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)

	pairs := repo.NewPairRepository(conn)
	drawers := repo.NewDrawerRepository(conn)
	require.NoError(t, pairs.DeleteAll(ctx))

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := model.Drawer{ID: uuid.New(), Name: "Restored", Icon: "tray", CreatedAt: created}
	require.NoError(t, drawers.Upsert(ctx, d))
	require.NoError(t, drawers.Upsert(ctx, d))

	p := model.Pair{
		ID:             uuid.New(),
		Key:            "restored",
		Icon:           model.DefaultPairIcon,
		Drawers:        []uuid.UUID{d.ID},
		EncryptedValue: []byte{9, 9},
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	require.NoError(t, pairs.Upsert(ctx, p))
	p.Notes = "second"
	require.NoError(t, pairs.Upsert(ctx, p))

	got, err := pairs.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Notes)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, []uuid.UUID{d.ID}, got.Drawers)
}

func TestMetaRepository_Fingerprint(t *testing.T) {
	ctx := context.Background()
	meta := repo.NewMetaRepository(connect(t))

	require.NoError(t, meta.ClearKeyFingerprint(ctx))
	_, err := meta.GetKeyFingerprint(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	fp := []byte("0123456789abcdef")
	require.NoError(t, meta.SetKeyFingerprint(ctx, fp))
	got, err := meta.GetKeyFingerprint(ctx)
	require.NoError(t, err)
	assert.Equal(t, fp, got)

	require.NoError(t, meta.ClearKeyFingerprint(ctx))
	_, err = meta.GetKeyFingerprint(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
