package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/cabinet/internal/crypto"
	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
)

// Pairs manages pairs. Values are sealed before they reach the store and are only
// opened by Reveal and Copy.
type Pairs struct {
	store     model.PairStore
	drawers   model.DrawerStore
	cipher    *crypto.Cipher
	auth      model.Authenticator
	clipboard model.Clipboard
	reason    string
	logger    *logger.Logger
	now       func() time.Time
}

func NewPairs(
	store model.PairStore,
	drawers model.DrawerStore,
	cipher *crypto.Cipher,
	auth model.Authenticator,
	clipboard model.Clipboard,
	reason string,
	logger *logger.Logger,
) *Pairs {
	return &Pairs{
		store:     store,
		drawers:   drawers,
		cipher:    cipher,
		auth:      auth,
		clipboard: clipboard,
		reason:    reason,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Pairs) Create(ctx context.Context, params model.CreatePairParams) (model.Pair, error) {
	key := strings.TrimSpace(params.Key)
	if key == "" {
		return model.Pair{}, fmt.Errorf("%w: pair key is empty", model.ErrInvalidInput)
	}
	if err := s.checkDrawers(ctx, params.Drawers); err != nil {
		return model.Pair{}, err
	}

	icon := params.Icon
	if icon == "" {
		icon = model.DefaultPairIcon
	}

	pair := model.Pair{
		ID:         uuid.New(),
		Key:        key,
		Icon:       icon,
		IsFavorite: params.IsFavorite,
		IsHidden:   params.IsHidden,
		Drawers:    params.Drawers,
		Notes:      params.Notes,
	}

	if err := crypto.NewField(s.cipher, &pair.EncryptedValue).Set(ctx, params.Value); err != nil {
		return model.Pair{}, fmt.Errorf("failed to seal value: %w", err)
	}

	pair, err := s.store.Create(ctx, pair)
	if err != nil {
		return model.Pair{}, fmt.Errorf("failed to save pair: %w", err)
	}

	s.logger.Info("pair created", "pair_id", pair.ID, "name", pair.Key)
	return pair, nil
}

func (s *Pairs) Get(ctx context.Context, id uuid.UUID) (model.Pair, error) {
	pair, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Pair{}, fmt.Errorf("failed to get pair by id: %w", err)
	}
	return pair, nil
}

// Resolve finds a pair by id or by exact key.
func (s *Pairs) Resolve(ctx context.Context, ref string) (model.Pair, error) {
	if id, err := uuid.Parse(ref); err == nil {
		pair, err := s.store.GetByID(ctx, id)
		if err == nil {
			return pair, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			return model.Pair{}, fmt.Errorf("failed to get pair by id: %w", err)
		}
	}

	pairs, err := s.store.GetByKey(ctx, ref)
	if err != nil {
		return model.Pair{}, fmt.Errorf("failed to get pair by key: %w", err)
	}

	switch len(pairs) {
	case 0:
		return model.Pair{}, fmt.Errorf("pair %q: %w", ref, model.ErrNotFound)
	case 1:
		return pairs[0], nil
	default:
		return model.Pair{}, fmt.Errorf("pair %q: %w", ref, model.ErrAmbiguous)
	}
}

// List returns pair metadata. Values stay sealed.
func (s *Pairs) List(ctx context.Context, query model.ListQuery) ([]model.Pair, error) {
	if query.Filter == "" {
		query.Filter = model.FilterAll
	}
	if !query.Filter.Valid() {
		return nil, fmt.Errorf("%w: unknown filter %q", model.ErrInvalidInput, query.Filter)
	}
	if query.Drawer != nil {
		if _, err := s.drawers.GetByID(ctx, *query.Drawer); err != nil {
			return nil, fmt.Errorf("failed to get drawer: %w", err)
		}
	}

	pairs, err := s.store.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pairs: %w", err)
	}
	return pairs, nil
}

// Reveal returns the plaintext value. Hidden pairs require the identity check first.
// A pair that cannot be decrypted is reported and left as stored.
func (s *Pairs) Reveal(ctx context.Context, id uuid.UUID) (string, error) {
	pair, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return s.reveal(ctx, pair)
}

// Copy reveals the value into the clipboard and marks the pair as recently used.
func (s *Pairs) Copy(ctx context.Context, id uuid.UUID) error {
	pair, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	value, err := s.reveal(ctx, pair)
	if err != nil {
		return err
	}

	if err := s.clipboard.WriteAll(value); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}

	if err := s.store.TouchLastUsed(ctx, pair.ID, s.now()); err != nil {
		return fmt.Errorf("failed to mark pair as used: %w", err)
	}
	return nil
}

// SetValue seals a new value for the pair.
func (s *Pairs) SetValue(ctx context.Context, id uuid.UUID, value string) (model.Pair, error) {
	pair, err := s.Get(ctx, id)
	if err != nil {
		return model.Pair{}, err
	}

	if err := crypto.NewField(s.cipher, &pair.EncryptedValue).Set(ctx, value); err != nil {
		return model.Pair{}, fmt.Errorf("failed to seal value: %w", err)
	}

	pair, err = s.store.Update(ctx, pair)
	if err != nil {
		return model.Pair{}, fmt.Errorf("failed to save pair: %w", err)
	}

	s.logger.Info("pair value changed", "pair_id", pair.ID)
	return pair, nil
}

// Update changes pair metadata. The sealed value is carried over unchanged.
// Un-hiding a hidden pair requires the identity check.
func (s *Pairs) Update(ctx context.Context, id uuid.UUID, params model.UpdatePairParams) (model.Pair, error) {
	pair, err := s.Get(ctx, id)
	if err != nil {
		return model.Pair{}, err
	}

	if params.Key != nil {
		key := strings.TrimSpace(*params.Key)
		if key == "" {
			return model.Pair{}, fmt.Errorf("%w: pair key is empty", model.ErrInvalidInput)
		}
		pair.Key = key
	}
	if params.Icon != nil {
		pair.Icon = *params.Icon
		if pair.Icon == "" {
			pair.Icon = model.DefaultPairIcon
		}
	}
	if params.IsFavorite != nil {
		pair.IsFavorite = *params.IsFavorite
	}
	if params.IsHidden != nil {
		if pair.IsHidden && !*params.IsHidden {
			if err := s.auth.Authenticate(ctx, s.reason); err != nil {
				s.logger.Warn("identity check did not pass", "pair_id", pair.ID, "error", err)
				return model.Pair{}, fmt.Errorf("failed to unhide pair: %w", err)
			}
		}
		pair.IsHidden = *params.IsHidden
	}
	if params.Notes != nil {
		pair.Notes = *params.Notes
	}
	if params.Drawers != nil {
		if err := s.checkDrawers(ctx, *params.Drawers); err != nil {
			return model.Pair{}, err
		}
		pair.Drawers = *params.Drawers
	}

	pair, err = s.store.Update(ctx, pair)
	if err != nil {
		return model.Pair{}, fmt.Errorf("failed to save pair: %w", err)
	}
	return pair, nil
}

func (s *Pairs) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete pair: %w", err)
	}
	s.logger.Info("pair deleted", "pair_id", id)
	return nil
}

func (s *Pairs) reveal(ctx context.Context, pair model.Pair) (string, error) {
	if pair.IsHidden {
		if err := s.auth.Authenticate(ctx, s.reason); err != nil {
			s.logger.Warn("identity check did not pass", "pair_id", pair.ID, "error", err)
			return "", fmt.Errorf("failed to reveal pair: %w", err)
		}
	}

	value, err := crypto.NewField(s.cipher, &pair.EncryptedValue).Get(ctx)
	if err != nil {
		s.logger.Error("failed to decrypt pair", "pair_id", pair.ID, "kind", crypto.Classify(err).String(), "error", err)
		return "", fmt.Errorf("failed to decrypt pair: %w", err)
	}
	return value, nil
}

func (s *Pairs) checkDrawers(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if _, err := s.drawers.GetByID(ctx, id); err != nil {
			return fmt.Errorf("drawer %s: %w", id, err)
		}
	}
	return nil
}
