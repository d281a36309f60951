package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cabinet/internal/crypto"
	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
)

const snapshotVersion = 1

// ImportResult counts restored entries.
type ImportResult struct {
	Pairs   int
	Drawers int
}

// Backup exports and restores snapshots of the record store. Snapshots carry
// ciphertext only and are imported only under the master key that sealed them.
type Backup struct {
	pairs   model.PairStore
	drawers model.DrawerStore
	cipher  *crypto.Cipher
	storage model.Storage
	logger  *logger.Logger
	now     func() time.Time
}

// NewBackup returns a Backup. A nil storage disables backups.
func NewBackup(
	pairs model.PairStore,
	drawers model.DrawerStore,
	cipher *crypto.Cipher,
	storage model.Storage,
	logger *logger.Logger,
) *Backup {
	return &Backup{
		pairs:   pairs,
		drawers: drawers,
		cipher:  cipher,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Export uploads a snapshot and returns its name.
func (s *Backup) Export(ctx context.Context) (string, error) {
	if s.storage == nil {
		return "", model.ErrStorageDisabled
	}

	fingerprint, err := s.cipher.Fingerprint(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load master key: %w", err)
	}

	pairs, err := s.pairs.List(ctx, model.ListQuery{Filter: model.FilterAll})
	if err != nil {
		return "", fmt.Errorf("failed to list pairs: %w", err)
	}
	drawers, err := s.drawers.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list drawers: %w", err)
	}

	created := s.now().UTC()
	snapshot := model.Snapshot{
		Version:        snapshotVersion,
		CreatedAt:      created,
		KeyFingerprint: fingerprint,
		Pairs:          make([]model.SnapshotPair, 0, len(pairs)),
		Drawers:        make([]model.SnapshotDrawer, 0, len(drawers)),
	}
	for _, d := range drawers {
		snapshot.Drawers = append(snapshot.Drawers, model.SnapshotDrawer{
			ID:        d.ID.String(),
			Name:      d.Name,
			Icon:      d.Icon,
			Purpose:   d.Purpose,
			CreatedAt: d.CreatedAt,
		})
	}
	for _, p := range pairs {
		drawerIDs := make([]string, len(p.Drawers))
		for i, id := range p.Drawers {
			drawerIDs[i] = id.String()
		}
		snapshot.Pairs = append(snapshot.Pairs, model.SnapshotPair{
			ID:             p.ID.String(),
			Key:            p.Key,
			Icon:           p.Icon,
			IsFavorite:     p.IsFavorite,
			IsHidden:       p.IsHidden,
			Drawers:        drawerIDs,
			Notes:          p.Notes,
			LastUsedAt:     p.LastUsedAt,
			EncryptedValue: p.EncryptedValue,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		})
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(snapshot); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	name := created.Format("20060102T150405Z")
	if err := s.storage.Upload(ctx, name, &buf); err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	s.logger.Info("snapshot exported", "snapshot", name, "pairs", len(pairs), "drawers", len(drawers))
	return name, nil
}

// Import restores the named snapshot. Entries are upserted by id. A snapshot
// sealed with another master key returns model.ErrKeyMismatch and restores nothing.
func (s *Backup) Import(ctx context.Context, name string) (ImportResult, error) {
	if s.storage == nil {
		return ImportResult{}, model.ErrStorageDisabled
	}

	rc, err := s.storage.Download(ctx, name)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to download snapshot: %w", err)
	}
	defer rc.Close()

	var snapshot model.Snapshot
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return ImportResult{}, fmt.Errorf("%w: failed to decode snapshot: %w", model.ErrInvalidInput, err)
	}
	if snapshot.Version != snapshotVersion {
		return ImportResult{}, fmt.Errorf("%w: unsupported snapshot version %d", model.ErrInvalidInput, snapshot.Version)
	}
	if len(snapshot.KeyFingerprint) == 0 {
		return ImportResult{}, fmt.Errorf("%w: snapshot has no key fingerprint", model.ErrInvalidInput)
	}

	current, err := s.cipher.Fingerprint(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to load master key: %w", err)
	}
	if !hmac.Equal(snapshot.KeyFingerprint, current) {
		s.logger.Error("snapshot was sealed with another master key", "snapshot", name, "pairs", len(snapshot.Pairs))
		return ImportResult{}, model.ErrKeyMismatch
	}

	drawers := make([]model.Drawer, 0, len(snapshot.Drawers))
	known := make(map[uuid.UUID]struct{}, len(snapshot.Drawers))
	for _, d := range snapshot.Drawers {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: drawer id %q", model.ErrInvalidInput, d.ID)
		}
		known[id] = struct{}{}
		drawers = append(drawers, model.Drawer{ID: id, Name: d.Name, Icon: d.Icon, Purpose: d.Purpose, CreatedAt: d.CreatedAt})
	}

	pairs := make([]model.Pair, 0, len(snapshot.Pairs))
	for _, p := range snapshot.Pairs {
		id, err := uuid.Parse(p.ID)
		if err != nil {
			return ImportResult{}, fmt.Errorf("%w: pair id %q", model.ErrInvalidInput, p.ID)
		}
		var drawerIDs []uuid.UUID
		for _, ref := range p.Drawers {
			did, err := uuid.Parse(ref)
			if err != nil {
				return ImportResult{}, fmt.Errorf("%w: drawer id %q", model.ErrInvalidInput, ref)
			}
			if _, ok := known[did]; !ok {
				s.logger.Warn("skipping unknown drawer in snapshot", "pair_id", id, "drawer_id", did)
				continue
			}
			drawerIDs = append(drawerIDs, did)
		}
		pairs = append(pairs, model.Pair{
			ID:             id,
			Key:            p.Key,
			Icon:           p.Icon,
			IsFavorite:     p.IsFavorite,
			IsHidden:       p.IsHidden,
			Drawers:        drawerIDs,
			Notes:          p.Notes,
			LastUsedAt:     p.LastUsedAt,
			EncryptedValue: p.EncryptedValue,
			CreatedAt:      p.CreatedAt,
			UpdatedAt:      p.UpdatedAt,
		})
	}

	for _, d := range drawers {
		if err := s.drawers.Upsert(ctx, d); err != nil {
			return ImportResult{}, fmt.Errorf("failed to restore drawer %s: %w", d.ID, err)
		}
	}
	for _, p := range pairs {
		if err := s.pairs.Upsert(ctx, p); err != nil {
			return ImportResult{}, fmt.Errorf("failed to restore pair %s: %w", p.ID, err)
		}
	}

	s.logger.Info("snapshot imported", "snapshot", name, "pairs", len(pairs), "drawers", len(drawers))
	return ImportResult{Pairs: len(pairs), Drawers: len(drawers)}, nil
}
