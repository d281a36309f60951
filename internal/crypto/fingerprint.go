package crypto

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/dtroode/cabinet/internal/model"
)

const (
	fingerprintLabel = "cabinet/master-key-check/v1"
	FingerprintSize  = 16
)

// Fingerprint returns a key check value that identifies the master key without
// revealing it. It is safe to store next to the sealed values.
func (c *Cipher) Fingerprint(ctx context.Context) ([]byte, error) {
	key, err := c.keys.LoadOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrKeyUnavailable, err)
	}
	buf, err := key.Open()
	if err != nil {
		return nil, err
	}
	defer buf.Destroy()

	return Fingerprint(buf.Bytes()), nil
}

// Fingerprint computes the key check value of a raw key.
func Fingerprint(key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(fingerprintLabel))
	return mac.Sum(nil)[:FingerprintSize]
}
