package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"lecture-rag/internal/lecture"
)

const maxUploadMemory = 32 << 20 // 32 MiB before multipart spills to disk

// handleLectureSummary accepts either a "video_url" form field or a
// "video_file" upload. The URL (or uploaded filename) is the ledger's
// unique name: the first call runs the full ingestion pipeline, later
// calls return the cached summary.
func (s *Server) handleLectureSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var src lecture.Source
	var uniqueName string

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		file, header, err := r.FormFile("video_file")
		switch {
		case err == nil:
			defer file.Close()
			src.Upload = file
			src.UploadName = header.Filename
			uniqueName = header.Filename
		case errors.Is(err, http.ErrMissingFile):
			// fall through to video_url
		default:
			s.writeError(w, http.StatusBadRequest, "invalid video_file upload")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid form body")
			return
		}
	}

	if videoURL := strings.TrimSpace(r.FormValue("video_url")); videoURL != "" {
		src.VideoURL = videoURL
		uniqueName = videoURL
	}
	if uniqueName == "" {
		s.writeError(w, http.StatusBadRequest, "video_url or video_file is required")
		return
	}

	result, err := s.lectures.Summarize(r.Context(), uniqueName, src)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

type lectureQARequest struct {
	UniqueName string `json:"unique_name"`
	Question   string `json:"question"`
}

func (s *Server) handleLectureQA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req lectureQARequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UniqueName == "" || req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "unique_name and question are required")
		return
	}
	answer, err := s.lectures.Answer(r.Context(), req.UniqueName, req.Question)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}
