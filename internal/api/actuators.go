package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akuaponik-iot/gateway/internal/actuator"
)

// actuatorCommandRequest is the body of POST /solenoid|aerator/{idkolam}.
type actuatorCommandRequest struct {
	Value *bool `json:"value"`
}

// handleActuatorHistory returns the stored events of kind for a pond.
func (s *Server) handleActuatorHistory(kind actuator.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "idkolam")
		if !ok {
			writeBadRequest(w, "Invalid idkolam")
			return
		}

		events, err := s.actuators.History(r.Context(), kind, id)
		if err != nil {
			if errors.Is(err, actuator.ErrNoEvents) {
				writeNotFound(w, "No "+string(kind)+" data found for the specified idkolam")
				return
			}
			s.logger.Error("listing actuator events failed", "kind", string(kind), "idkolam", id, "error", err)
			writeInternalError(w, "Error fetching "+string(kind)+" data")
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

// handleActuatorCommand records an on/off command and announces it to the
// field devices. The response echoes idkolam exactly as it appeared in the path.
func (s *Server) handleActuatorCommand(kind actuator.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "idkolam")
		if !ok {
			writeBadRequest(w, "Invalid idkolam")
			return
		}

		var req actuatorCommandRequest
		if err := decodeBody(r, &req); err != nil || req.Value == nil {
			writeBadRequest(w, "Value must be a boolean")
			return
		}

		e, err := s.actuators.Record(r.Context(), kind, id, *req.Value)
		if err != nil {
			s.logger.Error("recording actuator command failed", "kind", string(kind), "idkolam", id, "error", err)
			writeInternalError(w, "Error adding "+string(kind)+" data")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			kind.CreatedIDField(): e.ID,
			"idkolam":             chi.URLParam(r, "idkolam"),
			"Date":                e.Date,
			"boolean":             e.State,
		})
	}
}
