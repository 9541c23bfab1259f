package finder

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when the backend has no further pages for the
	// current criteria. No request is made.
	ErrExhausted = errors.New("finder: results exhausted")
	// ErrNoCriteria is returned when fetching before SetCriteria.
	ErrNoCriteria = errors.New("finder: no search criteria")
	// ErrStaleResponse marks a reply for criteria that were replaced while the
	// request was in flight. The reply is dropped.
	ErrStaleResponse = errors.New("finder: stale response discarded")
)

// FetchError wraps a transport or backend failure. The session keeps its
// results and page position; the caller decides whether to retry.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string { return fmt.Sprintf("finder: fetch page %d: %v", e.Page, e.Err) }
func (e *FetchError) Unwrap() error { return e.Err }

// StorageError reports a persistence failure. It is never fatal: reads are
// treated as cache misses and writes are skipped.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("finder: storage %s %q: %v", e.Op, e.Key, e.Err)
}
func (e *StorageError) Unwrap() error { return e.Err }
