package listing

import "errors"

var (
	// ErrImmutable is returned when deleting a listing that is not a user
	// upload. Seed listings can only be hidden as a set.
	ErrImmutable = errors.New("cannot delete seed listing: only uploaded listings can be deleted")

	// ErrPersistence wraps failures of the underlying key-value store on
	// write paths.
	ErrPersistence = errors.New("listing storage failure")
)
