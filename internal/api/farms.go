package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akuaponik-iot/gateway/internal/farm"
)

// createFarmRequest is the body of POST /akuaponik.
type createFarmRequest struct {
	Name     string `json:"nama_farm"`
	Username string `json:"Username"`
}

// updateFarmRequest is the body of PUT /akuaponik/{idakuaponik}.
type updateFarmRequest struct {
	Name string `json:"nama_farm"`
}

// createPondRequest is the body of POST /kolam. idakuaponik may be a
// number or a numeric string.
type createPondRequest struct {
	FarmID json.Number `json:"idakuaponik"`
	Name   string      `json:"nama_kolam"`
}

// handleListFarms returns the farms owned by a user.
func (s *Server) handleListFarms(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	farms, err := s.farms.ListFarmsByUsername(r.Context(), username)
	if err != nil {
		s.logger.Error("listing farms failed", "username", username, "error", err)
		writeInternalError(w, "Error retrieving data")
		return
	}
	writeJSON(w, http.StatusOK, farms)
}

// handleGetFarm returns one farm.
func (s *Server) handleGetFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "idakuaponik")
	if !ok {
		writeBadRequest(w, "Invalid idakuaponik")
		return
	}

	f, err := s.farms.GetFarm(r.Context(), id)
	if err != nil {
		if errors.Is(err, farm.ErrFarmNotFound) {
			writeNotFound(w, "Akuaponik not found")
			return
		}
		s.logger.Error("getting farm failed", "idakuaponik", id, "error", err)
		writeInternalError(w, "Error retrieving akuaponik data")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleCreateFarm creates a farm for an existing user.
func (s *Server) handleCreateFarm(w http.ResponseWriter, r *http.Request) {
	var req createFarmRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Username) == "" {
		writeBadRequest(w, "Nama farm dan ID Username harus diisi")
		return
	}

	exists, err := s.accounts.Exists(r.Context(), req.Username)
	if err != nil {
		s.logger.Error("checking farm owner failed", "username", req.Username, "error", err)
		writeInternalError(w, "Error checking username existence")
		return
	}
	if !exists {
		writeNotFound(w, "ID Username tidak ditemukan")
		return
	}

	f := &farm.Farm{Name: req.Name, Username: req.Username}
	if err := s.farms.CreateFarm(r.Context(), f); err != nil {
		s.logger.Error("creating farm failed", "nama_farm", req.Name, "error", err)
		writeInternalError(w, "Error adding akuaponik data")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// handleUpdateFarm renames a farm.
func (s *Server) handleUpdateFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "idakuaponik")
	if !ok {
		writeBadRequest(w, "Invalid idakuaponik")
		return
	}

	var req updateFarmRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeBadRequest(w, "Nama farm harus diisi")
		return
	}

	if err := s.farms.UpdateFarmName(r.Context(), id, req.Name); err != nil {
		if errors.Is(err, farm.ErrFarmNotFound) {
			writeNotFound(w, "Akuaponik not found")
			return
		}
		s.logger.Error("updating farm failed", "idakuaponik", id, "error", err)
		writeInternalError(w, "Error updating akuaponik data")
		return
	}
	writeText(w, http.StatusOK, "Akuaponik data updated successfully")
}

// handleDeleteFarm deletes one farm by ID.
func (s *Server) handleDeleteFarm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "idakuaponik")
	if !ok {
		writeBadRequest(w, "Invalid idakuaponik")
		return
	}

	if err := s.farms.DeleteFarm(r.Context(), id); err != nil {
		if errors.Is(err, farm.ErrFarmNotFound) {
			writeNotFound(w, "Akuaponik not found")
			return
		}
		s.logger.Error("deleting farm failed", "idakuaponik", id, "error", err)
		writeInternalError(w, "Error deleting akuaponik data")
		return
	}
	writeText(w, http.StatusOK, "Akuaponik data deleted successfully")
}

// handleDeleteFarmsByName deletes every farm with the given name and their
// ponds in a single transaction.
func (s *Server) handleDeleteFarmsByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "nama_farm")

	n, err := s.farms.DeleteFarmsByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, farm.ErrFarmNotFound) {
			writeNotFound(w, "Akuaponik not found")
			return
		}
		s.logger.Error("deleting farms by name failed", "nama_farm", name, "error", err)
		writeInternalError(w, "Error deleting akuaponik data")
		return
	}

	s.logger.Info("farms deleted by name", "nama_farm", name, "count", n)
	writeText(w, http.StatusOK, "Akuaponik data and related records deleted successfully")
}

// handleListPonds returns the ponds of a farm.
func (s *Server) handleListPonds(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "idakuaponik")
	if !ok {
		writeBadRequest(w, "Invalid idakuaponik")
		return
	}

	ponds, err := s.farms.ListPonds(r.Context(), id)
	if err != nil {
		s.logger.Error("listing ponds failed", "idakuaponik", id, "error", err)
		writeInternalError(w, "Error retrieving kolam data")
		return
	}
	writeJSON(w, http.StatusOK, ponds)
}

// handleCreatePond adds a pond to a farm.
func (s *Server) handleCreatePond(w http.ResponseWriter, r *http.Request) {
	var req createPondRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Data kolam harus disertakan")
		return
	}
	farmID, err := req.FarmID.Int64()
	if err != nil || farmID == 0 || strings.TrimSpace(req.Name) == "" {
		writeBadRequest(w, "Data kolam harus disertakan")
		return
	}

	p := &farm.Pond{FarmID: farmID, Name: req.Name}
	if err := s.farms.CreatePond(r.Context(), p); err != nil {
		s.logger.Error("creating pond failed", "idakuaponik", farmID, "error", err)
		writeInternalError(w, "Error adding kolam data")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"addedKolamId": p.ID})
}
