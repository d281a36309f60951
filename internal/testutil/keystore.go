package testutil

import (
	"sync"

	"github.com/google/uuid"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/dtroode/cabinet/internal/keystore"
	"github.com/dtroode/cabinet/internal/keystore/keyring"
)

const keyringService = "dev.test.Cabinet"

var mockKeyring sync.Once

// MakeKeyStore returns a KeyStore backed by the in-memory go-keyring mock.
// Every call uses a fresh namespace, so two stores hold different keys.
func MakeKeyStore() *keystore.KeyStore {
	return OpenKeyStore(uuid.NewString())
}

// OpenKeyStore returns a KeyStore over namespace in the go-keyring mock.
// Opening the same namespace twice simulates an application restart.
func OpenKeyStore(namespace string) *keystore.KeyStore {
	mockKeyring.Do(gokeyring.MockInit)
	return keystore.New(keyring.New(keyringService), namespace, MakeNoopLogger())
}
