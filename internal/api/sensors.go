package api

import "net/http"

// handleListReadings returns the stored readings of a pond.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "idkolam")
	if !ok {
		writeBadRequest(w, "Invalid idkolam")
		return
	}

	readings, err := s.readings.ListByPond(r.Context(), id)
	if err != nil {
		s.logger.Error("listing readings failed", "idkolam", id, "error", err)
		writeInternalError(w, "Error retrieving sensor data")
		return
	}
	writeJSON(w, http.StatusOK, readings)
}
