package container

import (
	"errors"
	"fmt"
)

// KeyNotFoundError is returned by a Dictionary's throwing Get when the
// requested key has no stored entry.
type KeyNotFoundError[K any] struct {
	Key K
}

func (e *KeyNotFoundError[K]) Error() string {
	return fmt.Sprintf("key not found: %v", e.Key)
}

func (e *KeyNotFoundError[K]) isKeyNotFound() {}

type keyNotFoundCover interface{ isKeyNotFound() }

// IsKeyNotFound reports whether err (or any error it wraps) is a
// KeyNotFoundError, regardless of its key type.
func IsKeyNotFound(err error) bool {
	var cover keyNotFoundCover
	return errors.As(err, &cover)
}

// KeyAlreadyExistsError is returned by a Dictionary's Insert when the
// requested key already has a stored entry.
type KeyAlreadyExistsError[E any] struct {
	Entry E
}

func (e *KeyAlreadyExistsError[E]) Error() string {
	return fmt.Sprintf("key already exists: %v", e.Entry)
}

func (e *KeyAlreadyExistsError[E]) isKeyAlreadyExists() {}

type keyAlreadyExistsCover interface{ isKeyAlreadyExists() }

// IsKeyAlreadyExists reports whether err (or any error it wraps) is a
// KeyAlreadyExistsError, regardless of its entry type.
func IsKeyAlreadyExists(err error) bool {
	var cover keyAlreadyExistsCover
	return errors.As(err, &cover)
}

// CellNotFoundError is returned by a Matrix's throwing Get when the
// requested (row, col) cell has no stored entry.
type CellNotFoundError[R, C any] struct {
	Row R
	Col C
}

func (e *CellNotFoundError[R, C]) Error() string {
	return fmt.Sprintf("cell not found: (%v, %v)", e.Row, e.Col)
}

func (e *CellNotFoundError[R, C]) isCellNotFound() {}

type cellNotFoundCover interface{ isCellNotFound() }

// IsCellNotFound reports whether err (or any error it wraps) is a
// CellNotFoundError, regardless of its row/col types.
func IsCellNotFound(err error) bool {
	var cover cellNotFoundCover
	return errors.As(err, &cover)
}

// CellAlreadyExistsError is returned by a Matrix's Insert when the
// requested cell already has a stored entry.
type CellAlreadyExistsError[E any] struct {
	Entry E
}

func (e *CellAlreadyExistsError[E]) Error() string {
	return fmt.Sprintf("cell already exists: %v", e.Entry)
}

func (e *CellAlreadyExistsError[E]) isCellAlreadyExists() {}

type cellAlreadyExistsCover interface{ isCellAlreadyExists() }

// IsCellAlreadyExists reports whether err (or any error it wraps) is a
// CellAlreadyExistsError, regardless of its entry type.
func IsCellAlreadyExists(err error) bool {
	var cover cellAlreadyExistsCover
	return errors.As(err, &cover)
}

// SubscriptError is returned by a row- or column-view when subscripted
// with a key that has no entries.
type SubscriptError[T any] struct {
	Key T
}

func (e *SubscriptError[T]) Error() string {
	return fmt.Sprintf("subscript not found: %v", e.Key)
}

func (e *SubscriptError[T]) isSubscript() {}

type subscriptCover interface{ isSubscript() }

// IsSubscript reports whether err (or any error it wraps) is a
// SubscriptError, regardless of its key type.
func IsSubscript(err error) bool {
	var cover subscriptCover
	return errors.As(err, &cover)
}

// ErrNonexistentEntryAccessed is returned by EntryWrapper.Entry when the
// wrapper carries no entry.
var ErrNonexistentEntryAccessed = errors.New("nonexistent entry accessed")
