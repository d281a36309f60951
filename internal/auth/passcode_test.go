package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/dtroode/cabinet/internal/keystore/keyring"
	"github.com/dtroode/cabinet/internal/model"
	"github.com/dtroode/cabinet/internal/testutil"
)

// MockPrompter mocks the Prompter interface
type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Prompt(ctx context.Context, reason string) (string, error) {
	args := m.Called(ctx, reason)
	return args.String(0), args.Error(1)
}

// blockingPrompter waits until the context ends, like a user who never answers.
type blockingPrompter struct{}

func (blockingPrompter) Prompt(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func newGate(t *testing.T, prompter Prompter, timeout time.Duration) *Passcode {
	t.Helper()
	gokeyring.MockInit()
	p, err := NewPasscode(keyring.New("dev.test.Cabinet"), "passcode", prompter, timeout, testutil.MakeNoopLogger())
	require.NoError(t, err)
	return p
}

func TestPasscode_Authenticate(t *testing.T) {
	const reason = "We need to unlock your data."

	tests := []struct {
		name    string
		enroll  string
		setup   func(*MockPrompter)
		wantErr error
	}{
		{
			name:   "correct passcode",
			enroll: "2468",
			setup: func(p *MockPrompter) {
				p.On("Prompt", mock.Anything, reason).Return("2468", nil)
			},
		},
		{
			name:   "wrong passcode",
			enroll: "2468",
			setup: func(p *MockPrompter) {
				p.On("Prompt", mock.Anything, reason).Return("1357", nil)
			},
			wantErr: model.ErrAuthenticationFailed,
		},
		{
			name:   "prompt cancelled by user",
			enroll: "2468",
			setup: func(p *MockPrompter) {
				p.On("Prompt", mock.Anything, reason).Return("", errors.New("interrupted"))
			},
			wantErr: model.ErrAuthenticationFailed,
		},
		{
			name:   "prompt unavailable",
			enroll: "2468",
			setup: func(p *MockPrompter) {
				p.On("Prompt", mock.Anything, reason).Return("", model.ErrAuthenticationUnavailable)
			},
			wantErr: model.ErrAuthenticationUnavailable,
		},
		{
			name:    "no passcode enrolled",
			setup:   func(*MockPrompter) {},
			wantErr: model.ErrAuthenticationUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompter := &MockPrompter{}
			tt.setup(prompter)
			gate := newGate(t, prompter, 0)
			if tt.enroll != "" {
				require.NoError(t, gate.Enroll(context.Background(), tt.enroll))
			}

			err := gate.Authenticate(context.Background(), reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			prompter.AssertExpectations(t)
		})
	}
}

func TestPasscode_CancellationFails(t *testing.T) {
	gate := newGate(t, blockingPrompter{}, 0)
	require.NoError(t, gate.Enroll(context.Background(), "2468"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := gate.Authenticate(ctx, "reveal")
	assert.ErrorIs(t, err, model.ErrAuthenticationFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPasscode_TimeoutFails(t *testing.T) {
	gate := newGate(t, blockingPrompter{}, 20*time.Millisecond)
	require.NoError(t, gate.Enroll(context.Background(), "2468"))

	err := gate.Authenticate(context.Background(), "reveal")
	assert.ErrorIs(t, err, model.ErrAuthenticationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPasscode_Enroll(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t, &MockPrompter{}, 0)

	enrolled, err := gate.Enrolled(ctx)
	require.NoError(t, err)
	assert.False(t, enrolled)

	assert.ErrorIs(t, gate.Enroll(ctx, "123"), ErrPasscodeTooShort)

	require.NoError(t, gate.Enroll(ctx, "1234"))
	enrolled, err = gate.Enrolled(ctx)
	require.NoError(t, err)
	assert.True(t, enrolled)

	stored, err := gate.vault.Get("passcode")
	require.NoError(t, err)
	assert.NotContains(t, string(stored), "1234")
}

func TestPasscode_KeystoreErrors(t *testing.T) {
	ctx := context.Background()
	gate := newGate(t, &MockPrompter{}, 0)
	gokeyring.MockInitWithError(errors.New("denied"))
	t.Cleanup(gokeyring.MockInit)

	err := gate.Authenticate(ctx, "reveal")
	assert.ErrorIs(t, err, model.ErrAuthenticationUnavailable)

	_, err = gate.Enrolled(ctx)
	assert.ErrorIs(t, err, model.ErrKeyStoreUnavailable)

	err = gate.Enroll(ctx, "2468")
	assert.ErrorIs(t, err, model.ErrKeyStoreUnavailable)
}

func TestTerminalPrompter_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewTerminalPrompter(f, os.Stderr).Prompt(context.Background(), "reveal")
	assert.ErrorIs(t, err, model.ErrAuthenticationUnavailable)
}
