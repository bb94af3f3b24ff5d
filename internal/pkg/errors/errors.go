package errors

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalid      = errors.New("invalid")
	ErrTooMany      = errors.New("too many requests")
	ErrInternal     = errors.New("internal")
	// ErrRetrieval is a vector-store/search failure. Distinct from an
	// empty result set, which is a successful outcome.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrStale marks a suggestion request superseded by a newer
	// sequence number from the same session.
	ErrStale = errors.New("stale request")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsStale(err error) bool {
	return errors.Is(err, ErrStale)
}
