package model

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrAmbiguous    = errors.New("reference matches more than one pair")
	ErrInvalidInput = errors.New("invalid input")
)

// Key lifecycle errors.
var (
	// ErrKeyStoreUnavailable means the protected keystore could not be read or written.
	ErrKeyStoreUnavailable = errors.New("protected keystore unavailable")
	// ErrKeyUnavailable means the master key could not be loaded or created.
	ErrKeyUnavailable = errors.New("master key unavailable")
	// ErrKeyMismatch means values in the record store were sealed with a different master key.
	ErrKeyMismatch = errors.New("master key does not match stored secrets")
)

// Cipher errors.
var (
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
	ErrEncoding          = errors.New("plaintext is not valid UTF-8")
	ErrDecoding          = errors.New("decrypted value is not valid UTF-8")
)

// Identity check errors.
var (
	ErrAuthenticationFailed      = errors.New("authentication failed")
	ErrAuthenticationUnavailable = errors.New("authentication is not available on this device")
)

var ErrStorageDisabled = errors.New("backup storage is disabled")
