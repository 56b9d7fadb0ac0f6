package httpapi

import (
	"context"
	"fmt"
	"net/http"
)

type qnaRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleQnA(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req qnaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" || req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "question and session_id are required")
		return
	}
	answer, err := s.qna.Answer(r.Context(), req.SessionID, req.Question)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// handleQnAStream is the server-sent-event variant: model output chunks
// are flushed to the client as they arrive, one-way, no backpressure.
func (s *Server) handleQnAStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req qnaRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Question == "" || req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "question and session_id are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	err := s.qna.Stream(r.Context(), req.SessionID, req.Question, func(ctx context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", chunk); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// headers are already out; report the failure in-stream
		fmt.Fprintf(w, "data: error: %s\n\n", err.Error())
		flusher.Flush()
	}
}

type saveChatRequest struct {
	SessionID    string `json:"session_id"`
	UserInput    string `json:"user_input"`
	ChatbotReply string `json:"chatbot_reply"`
}

func (s *Server) handleSaveChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req saveChatRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.UserInput == "" || req.ChatbotReply == "" {
		s.writeError(w, http.StatusBadRequest, "session_id, user_input and chatbot_reply are required")
		return
	}
	if err := s.qna.SaveChat(r.Context(), req.SessionID, req.UserInput, req.ChatbotReply); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"message": "chat saved"})
}

type chatHistoryRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req chatHistoryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	history, err := s.qna.History(r.Context(), req.SessionID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": history})
}
