package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserChecker reports whether a username is registered.
// *auth.Service satisfies it.
type UserChecker interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// Service enforces the access request rules on top of a Repository.
type Service struct {
	repo  Repository
	users UserChecker
}

// NewService creates an access workflow service.
func NewService(repo Repository, users UserChecker) *Service {
	return &Service{repo: repo, users: users}
}

// Create files a pending request from requestedBy to acceptedBy.
//
// Parameters:
//   - requestedBy: user asking for access
//   - acceptedBy: user who will accept or decline
//
// Returns:
//   - *Request: the stored request
//   - error: ErrMissingUsernames, ErrSelfRequest, ErrAcceptorNotFound, or a store error
func (s *Service) Create(ctx context.Context, requestedBy, acceptedBy string) (*Request, error) {
	if blank(requestedBy) || blank(acceptedBy) {
		return nil, ErrMissingUsernames
	}
	if requestedBy == acceptedBy {
		return nil, ErrSelfRequest
	}

	exists, err := s.users.Exists(ctx, acceptedBy)
	if err != nil {
		return nil, fmt.Errorf("checking accepting user: %w", err)
	}
	if !exists {
		return nil, ErrAcceptorNotFound
	}

	req := &Request{RequestedBy: requestedBy, AcceptedBy: acceptedBy}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Transition resolves request id to status on behalf of acceptedBy.
//
// A request addressed to another user is reported as ErrNotFound and left
// untouched. A request that is no longer pending yields ErrAlreadyResolved.
func (s *Service) Transition(ctx context.Context, id int64, status Status, acceptedBy string) error {
	if blank(acceptedBy) {
		return ErrMissingAcceptor
	}
	if !status.Resolved() {
		return ErrInvalidStatus
	}

	current, err := s.repo.Get(ctx, id, acceptedBy)
	if err != nil {
		return err
	}
	if current.Status != StatusPending {
		return ErrAlreadyResolved
	}

	if err := s.repo.Resolve(ctx, id, acceptedBy, status); err != nil {
		if errors.Is(err, ErrAlreadyResolved) {
			return err
		}
		return fmt.Errorf("resolving access request %d: %w", id, err)
	}
	return nil
}

// List returns the requests addressed to acceptedBy.
func (s *Service) List(ctx context.Context, acceptedBy string) ([]Request, error) {
	if blank(acceptedBy) {
		return nil, ErrMissingAcceptor
	}
	return s.repo.ListByAcceptor(ctx, acceptedBy)
}

// blank reports whether a username is empty or whitespace. Non-blank names
// are used exactly as given.
func blank(username string) bool {
	return strings.TrimSpace(username) == ""
}
