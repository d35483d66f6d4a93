package sessions

import "errors"

// Injection errors
var (
	// ErrAlreadyInjected indicates the target already holds a metadata
	// region; a document carries at most one session.
	ErrAlreadyInjected = errors.New("target already holds an embedded session")
)

// Paging errors
var (
	// ErrNotFound indicates no metadata region exists in the target.
	ErrNotFound = errors.New("no embedded session found")

	// ErrPageOutOfRange indicates a page index outside [0, total pages).
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrMissingCompanion indicates the durable novel copy beside the
	// target is gone, so pages cannot be regenerated.
	ErrMissingCompanion = errors.New("companion novel copy not found")
)
