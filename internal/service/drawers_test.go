package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/cabinet/internal/model"
	"github.com/dtroode/cabinet/internal/testutil"
)

func TestDrawers_Create(t *testing.T) {
	tests := []struct {
		name     string
		params   model.CreateDrawerParams
		setup    func(*MockDrawerStore)
		wantIcon string
		wantErr  error
	}{
		{
			name:   "default icon",
			params: model.CreateDrawerParams{Name: "Work"},
			setup: func(s *MockDrawerStore) {
				s.On("Create", mock.Anything, mock.MatchedBy(func(d model.Drawer) bool {
					return d.Name == "Work" && d.Icon == model.DefaultDrawerIcon && d.ID != uuid.Nil
				})).Return(model.Drawer{Name: "Work", Icon: model.DefaultDrawerIcon}, nil)
			},
			wantIcon: model.DefaultDrawerIcon,
		},
		{
			name:   "custom icon",
			params: model.CreateDrawerParams{Name: "Home", Icon: "house", Purpose: "family"},
			setup: func(s *MockDrawerStore) {
				s.On("Create", mock.Anything, mock.MatchedBy(func(d model.Drawer) bool {
					return d.Icon == "house" && d.Purpose == "family"
				})).Return(model.Drawer{Name: "Home", Icon: "house"}, nil)
			},
			wantIcon: "house",
		},
		{
			name:    "empty name",
			params:  model.CreateDrawerParams{Name: ""},
			setup:   func(*MockDrawerStore) {},
			wantErr: model.ErrInvalidInput,
		},
		{
			name:   "store error",
			params: model.CreateDrawerParams{Name: "Work"},
			setup: func(s *MockDrawerStore) {
				s.On("Create", mock.Anything, mock.Anything).Return(model.Drawer{}, errors.New("database error"))
			},
			wantErr: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockDrawerStore{}
			tt.setup(store)
			svc := NewDrawers(store, testutil.MakeNoopLogger())

			got, err := svc.Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorContains(t, err, tt.wantErr.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantIcon, got.Icon)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestDrawers_Resolve(t *testing.T) {
	ctx := context.Background()
	work := model.Drawer{ID: uuid.New(), Name: "Work"}
	home := model.Drawer{ID: uuid.New(), Name: "Home"}

	store := &MockDrawerStore{}
	store.On("GetByID", mock.Anything, work.ID).Return(work, nil)
	store.On("List", mock.Anything).Return([]model.Drawer{work, home, {ID: uuid.New(), Name: "Home"}}, nil)
	svc := NewDrawers(store, testutil.MakeNoopLogger())

	got, err := svc.Resolve(ctx, work.ID.String())
	require.NoError(t, err)
	assert.Equal(t, work, got)

	got, err = svc.Resolve(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, work.ID, got.ID)

	_, err = svc.Resolve(ctx, "Home")
	assert.ErrorIs(t, err, model.ErrAmbiguous)

	_, err = svc.Resolve(ctx, "Garage")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDrawers_Update(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	store := &MockDrawerStore{}
	store.On("GetByID", mock.Anything, id).Return(model.Drawer{ID: id, Name: "Work", Icon: "briefcase", Purpose: "office"}, nil)
	store.On("Update", mock.Anything, model.Drawer{ID: id, Name: "Job", Icon: "briefcase", Purpose: "office"}).
		Return(model.Drawer{ID: id, Name: "Job"}, nil)
	svc := NewDrawers(store, testutil.MakeNoopLogger())

	name := "Job"
	got, err := svc.Update(ctx, id, model.UpdateDrawerParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Job", got.Name)
	store.AssertExpectations(t)

	empty := ""
	_, err = svc.Update(ctx, id, model.UpdateDrawerParams{Name: &empty})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestDrawers_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	store := &MockDrawerStore{}
	store.On("Delete", mock.Anything, id).Return(nil).Once()
	store.On("Delete", mock.Anything, id).Return(model.ErrNotFound).Once()
	svc := NewDrawers(store, testutil.MakeNoopLogger())

	require.NoError(t, svc.Delete(ctx, id))
	assert.ErrorIs(t, svc.Delete(ctx, id), model.ErrNotFound)
	store.AssertExpectations(t)
}
