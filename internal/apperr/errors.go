package apperr

import "errors"

var (
	// ErrIndexNotFound signals that no index exists at the configured path.
	// Callers should tell the user to run a full build first.
	ErrIndexNotFound = errors.New("index not found")

	// ErrDuplicatePath signals that more than one document shares a path.
	// This is an invariant violation, not a recoverable condition.
	ErrDuplicatePath = errors.New("duplicate document path")
)
