package core

import "errors"

// Error taxonomy shared across the service. Handlers map these onto HTTP
// status codes; everything else is treated as an internal error.
var (
	// ErrNotFound: row absent, or present but owned by a different user.
	ErrNotFound = errors.New("expense record not found")

	// ErrExtractionFailed: the language model was unreachable or returned
	// output that could not be turned into a record. Nothing is persisted.
	ErrExtractionFailed = errors.New("expense extraction failed")

	// ErrTimeRangeUnresolved: a time expression in an analytics query could
	// not be resolved. Callers recover with a default range and flag the
	// response as approximate.
	ErrTimeRangeUnresolved = errors.New("time range unresolved")

	// ErrStoreUnavailable: the row store could not be reached.
	ErrStoreUnavailable = errors.New("row store unavailable")

	ErrEmptyQuery         = errors.New("empty query")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyUserID        = errors.New("empty user id")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
	ErrZeroTimestamp      = errors.New("timestamp cannot be zero")
)
