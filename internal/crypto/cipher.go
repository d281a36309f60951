// Package crypto seals secret values with the installation master key.
//
// A sealed value is a single self-contained blob:
//
//	nonce (12 bytes) || ciphertext || GCM tag (16 bytes)
//
// AES-256-GCM is used with a fresh random nonce per call, so the same plaintext
// never produces the same blob twice. Any change to the blob fails authentication.
package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"unicode/utf8"

	"github.com/dtroode/cabinet/internal/keystore"
	"github.com/dtroode/cabinet/internal/model"
)

const (
	NonceSize = 12
	TagSize   = 16
	// Overhead is the number of bytes a sealed blob adds to its plaintext.
	Overhead = NonceSize + TagSize
)

// KeyProvider supplies the master key for each operation.
type KeyProvider interface {
	LoadOrCreate(ctx context.Context) (*keystore.MasterKey, error)
}

// Cipher encrypts and decrypts secret strings. It holds no key material itself.
type Cipher struct {
	keys KeyProvider
}

// New creates a Cipher fetching its key from keys.
func New(keys KeyProvider) *Cipher {
	return &Cipher{keys: keys}
}

// Encrypt seals plaintext into nonce||ciphertext||tag.
func (c *Cipher) Encrypt(ctx context.Context, plaintext string) ([]byte, error) {
	if !utf8.ValidString(plaintext) {
		return nil, model.ErrEncoding
	}

	aead, err := c.aead(ctx)
	if err != nil {
		return nil, err
	}
	return seal(aead, []byte(plaintext))
}

// Decrypt opens a blob produced by Encrypt. It never returns unauthenticated plaintext.
func (c *Cipher) Decrypt(ctx context.Context, blob []byte) (string, error) {
	aead, err := c.aead(ctx)
	if err != nil {
		return "", err
	}

	plaintext, err := open(aead, blob)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(plaintext) {
		return "", model.ErrDecoding
	}
	return string(plaintext), nil
}

func (c *Cipher) aead(ctx context.Context) (cipher.AEAD, error) {
	key, err := c.keys.LoadOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrKeyUnavailable, err)
	}
	buf, err := key.Open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	return newAEAD(buf.Bytes())
}

// Seal encrypts plaintext under a raw 32-byte key.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return seal(aead, plaintext)
}

// Open decrypts a blob under a raw 32-byte key.
func Open(key, blob []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return open(aead, blob)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != keystore.KeySize {
		return nil, fmt.Errorf("%w: key must be %d bytes", model.ErrKeyUnavailable, keystore.KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

func seal(aead cipher.AEAD, plaintext []byte) ([]byte, error) {
	blob := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := rand.Read(blob); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return aead.Seal(blob, blob[:NonceSize], plaintext, nil), nil
}

func open(aead cipher.AEAD, blob []byte) ([]byte, error) {
	if len(blob) < Overhead {
		return nil, fmt.Errorf("%w: blob is %d bytes, need at least %d", model.ErrInvalidCiphertext, len(blob), Overhead)
	}
	plaintext, err := aead.Open(nil, blob[:NonceSize], blob[NonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidCiphertext, err)
	}
	return plaintext, nil
}
