package session

import (
	"errors"
	"fmt"

	"code.meridianbank.io/meridian-go/crypto"
	"code.meridianbank.io/meridian-go/store"
)

// EnsureKeyPair returns the device key pair, generating and persisting one on
// first use. Corrupt persisted material fails with ErrCorruptedDeviceKey and
// leaves the decision to the caller: regenerating silently would orphan the
// trust the platform put in the previous key.
func EnsureKeyPair(st *Store, size int) (*crypto.KeyPair, error) {
	keyPair, err := st.DeviceKey()
	if err == nil {
		return keyPair, nil
	}
	if !errors.Is(err, store.ErrEntryNotFound) {
		return nil, err
	}

	keyPair, err = crypto.GenerateKeyPair(size)
	if err != nil {
		return nil, fmt.Errorf("couldn't generate the device key pair: %w", err)
	}
	if err := st.SaveDeviceKey(keyPair); err != nil {
		return nil, err
	}
	return keyPair, nil
}
