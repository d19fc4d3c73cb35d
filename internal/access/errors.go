package access

import "errors"

// Domain errors for the access workflow.
var (
	ErrMissingUsernames = errors.New("requesting username and accepting username are required")
	ErrSelfRequest      = errors.New("cannot request access from yourself")
	ErrAcceptorNotFound = errors.New("accepting user not found")
	ErrMissingAcceptor  = errors.New("accepting username is required")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrNotFound         = errors.New("access request not found")

	// ErrAlreadyResolved is returned when a request is no longer pending.
	ErrAlreadyResolved = errors.New("access request already resolved")
)
