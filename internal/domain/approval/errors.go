package approval

import "errors"

var (
	// ErrNotFound: no booking request with that id.
	ErrNotFound = errors.New("booking request not found")
	// ErrAlreadyProcessed: the request was approved or rejected before this
	// attempt; nothing was changed.
	ErrAlreadyProcessed = errors.New("booking request already processed")
	// ErrInvalidSpecialist: the requested specialist does not exist or is
	// not active.
	ErrInvalidSpecialist = errors.New("invalid specialist")
	// ErrPersistence wraps storage failures. Any error carrying this marker
	// means the transaction rolled back and no records were created.
	ErrPersistence = errors.New("persistence failure")
)
