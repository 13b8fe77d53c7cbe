// Package storage holds the contracts shared by every physical storage
// organization: the error taxonomy and the page access permissions.
package storage

import "github.com/juju/errors"

// Storage error taxonomy. Call sites annotate these with context via
// errors.Annotatef; classification goes through errors.Cause so the
// sentinel survives annotation.
var (
	// ErrOutOfRange marks an invalid field, slot, or page index. This is a
	// programmer error and is surfaced rather than retried.
	ErrOutOfRange = errors.New("index out of range")

	// ErrCorruptPage marks a page byte block of the wrong size or with
	// slot contents that do not decode under the owning schema.
	ErrCorruptPage = errors.New("corrupt page")

	// ErrIO marks a failed or truncated raw page read or write.
	ErrIO = errors.New("i/o failure")

	// ErrSchemaMismatch marks a tuple whose schema is incompatible with
	// the file or page it was offered to. Rejected before any mutation.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrPageFull marks an insert into a page with no free slot.
	ErrPageFull = errors.New("page full")

	// ErrRecordNotFound marks a delete whose tuple carries no locator or
	// whose locator does not resolve to an occupied slot.
	ErrRecordNotFound = errors.New("record not found")

	// ErrWrongPage marks a page-level delete of a tuple located on a
	// different page.
	ErrWrongPage = errors.New("wrong page")
)

func IsOutOfRange(err error) bool     { return errors.Cause(err) == ErrOutOfRange }
func IsCorruptPage(err error) bool    { return errors.Cause(err) == ErrCorruptPage }
func IsIO(err error) bool             { return errors.Cause(err) == ErrIO }
func IsSchemaMismatch(err error) bool { return errors.Cause(err) == ErrSchemaMismatch }
func IsPageFull(err error) bool       { return errors.Cause(err) == ErrPageFull }
func IsRecordNotFound(err error) bool { return errors.Cause(err) == ErrRecordNotFound }
func IsWrongPage(err error) bool      { return errors.Cause(err) == ErrWrongPage }
