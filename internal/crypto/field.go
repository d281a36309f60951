package crypto

import (
	"context"
	"errors"

	"github.com/dtroode/cabinet/internal/model"
)

// Field is a plaintext view over a persisted ciphertext field.
// The sealed bytes it points at are the only persisted representation;
// Set is the only path that mutates them.
type Field struct {
	cipher *Cipher
	sealed *[]byte
}

// NewField binds a Field to the ciphertext slot of a record.
func NewField(c *Cipher, sealed *[]byte) *Field {
	return &Field{cipher: c, sealed: sealed}
}

// Get decrypts the stored value. Failures are returned, never collapsed into "".
// The stored ciphertext is left untouched on failure.
func (f *Field) Get(ctx context.Context) (string, error) {
	return f.cipher.Decrypt(ctx, *f.sealed)
}

// Set seals plaintext and replaces the stored ciphertext. On error the
// previous ciphertext is kept.
func (f *Field) Set(ctx context.Context, plaintext string) error {
	blob, err := f.cipher.Encrypt(ctx, plaintext)
	if err != nil {
		return err
	}
	*f.sealed = blob
	return nil
}

// FailureKind tells a caller which distinct "could not reveal" state to show.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureKey
	FailureCiphertext
	FailureDecoding
	FailureAuthentication
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureKey:
		return "key unavailable"
	case FailureCiphertext:
		return "could not decrypt"
	case FailureDecoding:
		return "corrupted value"
	case FailureAuthentication:
		return "authentication required"
	default:
		return "error"
	}
}

// Classify maps an error from Field, Cipher or the identity gate to a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, model.ErrAuthenticationFailed), errors.Is(err, model.ErrAuthenticationUnavailable):
		return FailureAuthentication
	case errors.Is(err, model.ErrKeyUnavailable), errors.Is(err, model.ErrKeyStoreUnavailable):
		return FailureKey
	case errors.Is(err, model.ErrInvalidCiphertext), errors.Is(err, model.ErrKeyMismatch):
		return FailureCiphertext
	case errors.Is(err, model.ErrDecoding), errors.Is(err, model.ErrEncoding):
		return FailureDecoding
	default:
		return FailureOther
	}
}
