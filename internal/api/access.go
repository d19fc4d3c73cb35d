package api

import (
	"errors"
	"net/http"

	"github.com/akuaponik-iot/gateway/internal/access"
)

// requestAccessRequest is the body of POST /request-access.
type requestAccessRequest struct {
	RequestedBy string `json:"Username_req"`
	AcceptedBy  string `json:"Username_acc"`
}

// updateAccessRequest is the body of PUT /update-access/{idaccess}.
type updateAccessRequest struct {
	Status     string `json:"new_status"`
	AcceptedBy string `json:"Username_acc"`
}

// handleRequestAccess files a pending access request.
func (s *Server) handleRequestAccess(w http.ResponseWriter, r *http.Request) {
	var req requestAccessRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	_, err := s.access.Create(r.Context(), req.RequestedBy, req.AcceptedBy)
	switch {
	case err == nil:
		writeText(w, http.StatusCreated, "Access request sent successfully")
	case errors.Is(err, access.ErrMissingUsernames):
		writeBadRequest(w, "Requesting username and accepting username are required")
	case errors.Is(err, access.ErrSelfRequest):
		writeBadRequest(w, "You cannot request access from yourself")
	case errors.Is(err, access.ErrAcceptorNotFound):
		writeNotFound(w, "Accepting user not found")
	default:
		s.logger.Error("requesting access failed",
			"username_req", req.RequestedBy,
			"username_acc", req.AcceptedBy,
			"error", err,
		)
		writeInternalError(w, "Error requesting access")
	}
}

// handleUpdateAccess accepts or declines a pending request on behalf of
// the user it was addressed to.
func (s *Server) handleUpdateAccess(w http.ResponseWriter, r *http.Request) {
	var req updateAccessRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	// A non-numeric id matches no row; field validation still runs first.
	id, _ := pathID(r, "idaccess")

	err := s.access.Transition(r.Context(), id, access.Status(req.Status), req.AcceptedBy)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "Access status updated successfully")
	case errors.Is(err, access.ErrMissingAcceptor):
		writeBadRequest(w, "Username_acc is required")
	case errors.Is(err, access.ErrInvalidStatus):
		writeBadRequest(w, "Invalid status")
	case errors.Is(err, access.ErrNotFound):
		writeNotFound(w, "Access not found")
	case errors.Is(err, access.ErrAlreadyResolved):
		writeConflict(w, "Access request already resolved")
	default:
		s.logger.Error("updating access failed", "idaccess", id, "error", err)
		writeInternalError(w, "Error updating access status")
	}
}

// handleListAccessRequests returns the requests addressed to a user.
func (s *Server) handleListAccessRequests(w http.ResponseWriter, r *http.Request) {
	acceptedBy := r.URL.Query().Get("Username_acc")

	requests, err := s.access.List(r.Context(), acceptedBy)
	if err != nil {
		if errors.Is(err, access.ErrMissingAcceptor) {
			writeBadRequest(w, "Username_acc is required")
			return
		}
		s.logger.Error("listing access requests failed", "username_acc", acceptedBy, "error", err)
		writeInternalError(w, "Error retrieving access requests")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
