// Package keyring stores key material in the OS credential store
// (macOS Keychain, Secret Service on Linux, Windows Credential Manager).
package keyring

import (
	"encoding/base64"
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/dtroode/cabinet/internal/model"
)

var _ model.KeyVault = (*Vault)(nil)

// Vault keeps binary values as base64 generic passwords under one service name.
// The namespace is used as the account.
type Vault struct {
	service string
}

// New creates a Vault for the given service name.
func New(service string) *Vault {
	return &Vault{service: service}
}

// Put stores data under namespace, replacing any previous value.
func (v *Vault) Put(namespace string, data []byte) error {
	if err := gokeyring.Set(v.service, namespace, base64.StdEncoding.EncodeToString(data)); err != nil {
		return fmt.Errorf("keyring set %s/%s: %w", v.service, namespace, err)
	}
	return nil
}

// Get returns the value stored under namespace or model.ErrNotFound.
func (v *Vault) Get(namespace string) ([]byte, error) {
	secret, err := gokeyring.Get(v.service, namespace)
	if errors.Is(err, gokeyring.ErrNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keyring get %s/%s: %w", v.service, namespace, err)
	}

	data, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("keyring item %s/%s is not base64: %w", v.service, namespace, err)
	}
	return data, nil
}

// Delete removes namespace. A missing item is not an error.
func (v *Vault) Delete(namespace string) error {
	err := gokeyring.Delete(v.service, namespace)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("keyring delete %s/%s: %w", v.service, namespace, err)
	}
	return nil
}
