package domain

import "errors"

var (
	// ErrNotFound means no schedule with the requested name exists.
	ErrNotFound = errors.New("schedule not found")
	// ErrDuplicateName means a create collided with an existing schedule.
	ErrDuplicateName = errors.New("schedule name already exists")
	// ErrInvalidInterval means an interval was non-numeric or below one minute.
	ErrInvalidInterval = errors.New("invalid interval")
	// ErrStorageCorrupt means persisted state exists but cannot be parsed.
	// It is fatal at startup; the state file is never overwritten in response.
	ErrStorageCorrupt = errors.New("storage corrupt")
)
