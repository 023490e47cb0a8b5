package store

import (
  "errors"

  "github.com/minikern/usermgr/users"
)

// ErrCorrupt reports that a persisted store exists but cannot be parsed
// into well-formed records. The caller may recover by discarding the
// store and re-running initial setup.
var ErrCorrupt = errors.New("account store is corrupt")

// The Store interface is used by the layers that need to load and save
// the account records.
//
// Load returns all records in their persisted order. A store that has
// never been written loads as an empty sequence: that is the
// "uninitialized" signal, not an error.
//
// Save replaces the persisted content with the full sequence, keeping
// the order (the root account stays at position 0). If Save returns an
// error the previous persisted content is untouched and the caller must
// not consider the mutation committed.
//
// Discard removes the persisted form entirely, for recovery after
// Load reports ErrCorrupt.
type Store interface {
  Load() (*users.Users, error)
  Save(*users.Users) error
  Discard() error
}
