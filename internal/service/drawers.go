package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
)

type Drawers struct {
	store  model.DrawerStore
	logger *logger.Logger
}

func NewDrawers(store model.DrawerStore, logger *logger.Logger) *Drawers {
	return &Drawers{
		store:  store,
		logger: logger,
	}
}

func (s *Drawers) Create(ctx context.Context, params model.CreateDrawerParams) (model.Drawer, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return model.Drawer{}, fmt.Errorf("%w: drawer name is empty", model.ErrInvalidInput)
	}

	icon := params.Icon
	if icon == "" {
		icon = model.DefaultDrawerIcon
	}

	drawer, err := s.store.Create(ctx, model.Drawer{
		ID:      uuid.New(),
		Name:    name,
		Icon:    icon,
		Purpose: params.Purpose,
	})
	if err != nil {
		return model.Drawer{}, fmt.Errorf("failed to save drawer: %w", err)
	}

	s.logger.Info("drawer created", "drawer_id", drawer.ID)
	return drawer, nil
}

func (s *Drawers) List(ctx context.Context) ([]model.Drawer, error) {
	drawers, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawers: %w", err)
	}
	return drawers, nil
}

// Resolve finds a drawer by id or by exact name.
func (s *Drawers) Resolve(ctx context.Context, ref string) (model.Drawer, error) {
	if id, err := uuid.Parse(ref); err == nil {
		drawer, err := s.store.GetByID(ctx, id)
		if err != nil {
			return model.Drawer{}, fmt.Errorf("failed to get drawer by id: %w", err)
		}
		return drawer, nil
	}

	drawers, err := s.List(ctx)
	if err != nil {
		return model.Drawer{}, err
	}

	var found []model.Drawer
	for _, d := range drawers {
		if d.Name == ref {
			found = append(found, d)
		}
	}

	switch len(found) {
	case 0:
		return model.Drawer{}, fmt.Errorf("drawer %q: %w", ref, model.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.Drawer{}, fmt.Errorf("drawer %q: %w", ref, model.ErrAmbiguous)
	}
}

func (s *Drawers) Update(ctx context.Context, id uuid.UUID, params model.UpdateDrawerParams) (model.Drawer, error) {
	drawer, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Drawer{}, fmt.Errorf("failed to get drawer by id: %w", err)
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return model.Drawer{}, fmt.Errorf("%w: drawer name is empty", model.ErrInvalidInput)
		}
		drawer.Name = name
	}
	if params.Icon != nil {
		drawer.Icon = *params.Icon
		if drawer.Icon == "" {
			drawer.Icon = model.DefaultDrawerIcon
		}
	}
	if params.Purpose != nil {
		drawer.Purpose = *params.Purpose
	}

	drawer, err = s.store.Update(ctx, drawer)
	if err != nil {
		return model.Drawer{}, fmt.Errorf("failed to save drawer: %w", err)
	}
	return drawer, nil
}

// Delete removes the drawer. Its pairs are kept.
func (s *Drawers) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete drawer: %w", err)
	}
	s.logger.Info("drawer deleted", "drawer_id", id)
	return nil
}
