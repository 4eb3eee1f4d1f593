// Package container implements the in-memory indexed families that sit
// underneath a yoda Store: Dictionary (key -> entry) and Matrix
// (row, col -> entry, with forward and transposed views). Containers are
// leaf data structures; they carry no concurrency control of their own
// because the store's transaction engine guarantees they are only ever
// touched by its single worker goroutine.
package container
