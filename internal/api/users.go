package api

import (
	"errors"
	"net/http"

	"github.com/akuaponik-iot/gateway/internal/auth"
)

// credentialsRequest is the body of /register and /login.
type credentialsRequest struct {
	Username string `json:"idusername"`
	Password string `json:"password"`
}

// handleRegister creates an account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if err := s.accounts.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrMissingCredentials) {
			writeBadRequest(w, "Username and password are required")
			return
		}
		s.logger.Error("registering user failed", "username", req.Username, "error", err)
		writeInternalError(w, "Error registering user")
		return
	}

	writeText(w, http.StatusOK, "User registered successfully")
}

// handleLogin checks credentials. No session or token is issued.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	err := s.accounts.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "Login successful")
	case errors.Is(err, auth.ErrMissingCredentials):
		writeBadRequest(w, "Username and password are required")
	case errors.Is(err, auth.ErrUserNotFound):
		writeNotFound(w, "User not found")
	case errors.Is(err, auth.ErrInvalidPassword):
		writeUnauthorized(w, "Invalid password")
	default:
		s.logger.Error("login failed", "username", req.Username, "error", err)
		writeInternalError(w, "Error during login")
	}
}

// handleListUsers returns every registered username.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	names, err := s.accounts.Usernames(r.Context())
	if err != nil {
		s.logger.Error("listing usernames failed", "error", err)
		writeInternalError(w, "Error retrieving usernames")
		return
	}
	writeJSON(w, http.StatusOK, names)
}
