// Package auth implements the identity check run before a hidden pair is revealed.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allisson/go-pwdhash"

	"github.com/dtroode/cabinet/internal/logger"
	"github.com/dtroode/cabinet/internal/model"
)

// MinPasscodeLength is the shortest passcode Enroll accepts.
const MinPasscodeLength = 4

var ErrPasscodeTooShort = fmt.Errorf("passcode must have at least %d characters", MinPasscodeLength)

// Prompter asks the user for their passcode.
//
// Passcode.Authenticate stops waiting when ctx is done or the timeout passes, but
// it cannot interrupt Prompt. A prompter that ignores ctx, like TerminalPrompter
// blocked in term.ReadPassword, keeps its goroutine until a line is read or the
// process exits.
type Prompter interface {
	Prompt(ctx context.Context, reason string) (string, error)
}

var _ model.Authenticator = (*Passcode)(nil)

// Passcode verifies a device passcode whose Argon2id hash is kept in the protected keystore.
type Passcode struct {
	vault    model.KeyVault
	account  string
	prompter Prompter
	hasher   *pwdhash.PasswordHasher
	timeout  time.Duration
	logger   *logger.Logger
}

// NewPasscode creates a passcode gate. A zero timeout waits for the user indefinitely.
func NewPasscode(
	vault model.KeyVault,
	account string,
	prompter Prompter,
	timeout time.Duration,
	logger *logger.Logger,
) (*Passcode, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		return nil, fmt.Errorf("failed to create passcode hasher: %w", err)
	}

	return &Passcode{
		vault:    vault,
		account:  account,
		prompter: prompter,
		hasher:   hasher,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

// Enroll stores the hash of passcode, replacing any previous one.
func (p *Passcode) Enroll(_ context.Context, passcode string) error {
	if len([]rune(passcode)) < MinPasscodeLength {
		return ErrPasscodeTooShort
	}

	hash, err := p.hasher.Hash([]byte(passcode))
	if err != nil {
		return fmt.Errorf("failed to hash passcode: %w", err)
	}
	if err := p.vault.Put(p.account, []byte(hash)); err != nil {
		return fmt.Errorf("%w: failed to store passcode: %w", model.ErrKeyStoreUnavailable, err)
	}

	p.logger.Info("passcode enrolled")
	return nil
}

// Enrolled reports whether a passcode has been set.
func (p *Passcode) Enrolled(_ context.Context) (bool, error) {
	_, err := p.vault.Get(p.account)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", model.ErrKeyStoreUnavailable, err)
	}
	return true, nil
}

// Authenticate prompts for the passcode and verifies it.
// Cancellation, timeout and prompt errors are failures; they never pass the gate.
func (p *Passcode) Authenticate(ctx context.Context, reason string) error {
	hash, err := p.vault.Get(p.account)
	if errors.Is(err, model.ErrNotFound) {
		p.logger.Error("authentication not available", "reason", "no passcode enrolled")
		return model.ErrAuthenticationUnavailable
	}
	if err != nil {
		p.logger.Error("authentication not available", "error", err)
		return fmt.Errorf("%w: %w", model.ErrAuthenticationUnavailable, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	type answer struct {
		passcode string
		err      error
	}
	answers := make(chan answer, 1)
	go func() {
		passcode, err := p.prompter.Prompt(ctx, reason)
		answers <- answer{passcode: passcode, err: err}
	}()

	var a answer
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", model.ErrAuthenticationFailed, ctx.Err())
	case a = <-answers:
	}
	if a.err != nil {
		if errors.Is(a.err, model.ErrAuthenticationUnavailable) {
			return a.err
		}
		return fmt.Errorf("%w: %w", model.ErrAuthenticationFailed, a.err)
	}

	ok, err := p.hasher.Verify([]byte(a.passcode), string(hash))
	if err != nil || !ok {
		p.logger.Warn("authentication failed")
		return model.ErrAuthenticationFailed
	}
	return nil
}
