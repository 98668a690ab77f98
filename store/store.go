package store

import "errors"

// ErrEntryNotFound is returned when the requested entry has never been set,
// or has been removed.
var ErrEntryNotFound = errors.New("the entry does not exist in the store")

// KV persists the small named payloads the session machinery needs across
// restarts: the device key pair, the registration tokens, and the OAuth
// token. Each entry is addressable on its own so a partial state can be
// detected and rebuilt.
//
// Get returns ErrEntryNotFound for an absent entry. Remove is idempotent,
// removing an absent entry is not an error.
type KV interface {
	Get(name string) ([]byte, error)
	Set(name string, data []byte) error
	Remove(name string) error
}
