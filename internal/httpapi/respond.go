package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"lecture-rag/internal/auth"
	"lecture-rag/internal/db"
	"lecture-rag/internal/lecture"
	"lecture-rag/internal/rag"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps typed service errors onto HTTP statuses; anything
// unrecognized is a 500 with the error text.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		s.writeError(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, auth.ErrUnknownUser), errors.Is(err, auth.ErrInvalidCredentials):
		s.writeError(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, auth.ErrInvalidSession):
		s.writeError(w, http.StatusUnauthorized, "invalid session id")
	case errors.Is(err, lecture.ErrNoSource):
		s.writeError(w, http.StatusBadRequest, lecture.ErrNoSource.Error())
	case errors.Is(err, lecture.ErrLectureNotFound):
		s.writeError(w, http.StatusNotFound, "lecture summary not found")
	case errors.Is(err, rag.ErrNoRelevantContent):
		s.writeError(w, http.StatusNotFound, "no relevant content found")
	case errors.Is(err, db.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.Error().Err(err).Msg("request failed")
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
