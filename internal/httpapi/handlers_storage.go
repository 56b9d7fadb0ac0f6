package httpapi

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"os"
)

// handleReadCSV returns the configured announcements CSV as JSON rows.
func (s *Server) handleReadCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	file, err := os.Open(s.csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.writeError(w, http.StatusNotFound, "CSV file not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"data":    rows,
		"message": "CSV file read successfully",
	})
}

type webhookRequest struct {
	Topic string `json:"topic"`
}

// handleWebhook relays the topic to the configured automation endpoint and
// proxies its response back.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req webhookRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Topic == "" {
		s.writeError(w, http.StatusBadRequest, "topic is required")
		return
	}

	payload, err := json.Marshal(map[string]string{"topic": req.Topic})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp, err := s.relayClient.Post(s.webhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if resp.StatusCode != http.StatusOK {
		s.writeJSON(w, resp.StatusCode, map[string]string{
			"error":   "webhook relay failed",
			"details": string(body),
		})
		return
	}

	var relayed json.RawMessage
	if err := json.Unmarshal(body, &relayed); err != nil {
		s.writeError(w, http.StatusInternalServerError, "invalid webhook response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(relayed)
}
