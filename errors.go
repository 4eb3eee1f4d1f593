package yoda

import (
	"errors"

	"github.com/sharedcode/yoda/container"
)

// ErrStoreTerminated is the failure a Transaction (and every wrapper
// built on it) resolves with when it is submitted after Close has moved
// the Store to Draining or Stopped. Commands already in the mailbox
// when Close begins still run to completion.
var ErrStoreTerminated = errors.New("yoda: store terminated")

// The six container-level failure kinds are defined in package
// container, next to the Accessor/Mutator types that raise them. The
// IsXxx helpers below are re-exported here so callers working only
// against the Store API do not need a second import for error
// checks.

// IsKeyNotFound reports whether err is a KeyNotFoundError.
func IsKeyNotFound(err error) bool { return container.IsKeyNotFound(err) }

// IsKeyAlreadyExists reports whether err is a KeyAlreadyExistsError.
func IsKeyAlreadyExists(err error) bool { return container.IsKeyAlreadyExists(err) }

// IsCellNotFound reports whether err is a CellNotFoundError.
func IsCellNotFound(err error) bool { return container.IsCellNotFound(err) }

// IsCellAlreadyExists reports whether err is a CellAlreadyExistsError.
func IsCellAlreadyExists(err error) bool { return container.IsCellAlreadyExists(err) }

// IsSubscript reports whether err is a SubscriptError.
func IsSubscript(err error) bool { return container.IsSubscript(err) }

// ErrNonexistentEntryAccessed is returned by EntryWrapper.Entry when
// dereferenced while absent.
var ErrNonexistentEntryAccessed = container.ErrNonexistentEntryAccessed
