package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"lecture-rag/internal/lecture"
	"lecture-rag/internal/qna"
)

// AuthService is the account surface the handlers need.
type AuthService interface {
	Signup(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) (string, error)
}

// LectureService is the ingestion/RAG surface for lecture endpoints.
type LectureService interface {
	Summarize(ctx context.Context, uniqueName string, src lecture.Source) (*lecture.SummaryResult, error)
	Answer(ctx context.Context, uniqueName, question string) (string, error)
}

// QnAService is the announcements Q&A surface.
type QnAService interface {
	Answer(ctx context.Context, sessionKey, question string) (string, error)
	Stream(ctx context.Context, sessionKey, question string, fn func(ctx context.Context, chunk []byte) error) error
	SaveChat(ctx context.Context, sessionKey, userInput, chatbotReply string) error
	History(ctx context.Context, sessionKey string) ([]qna.Message, error)
}

// Server is the JSON HTTP front for the whole backend. Request handling is
// synchronous: ingestion and LLM calls block the handling goroutine for
// their full duration, so no write timeout is set.
type Server struct {
	bind        string
	logger      zerolog.Logger
	auth        AuthService
	lectures    LectureService
	qna         QnAService
	csvPath     string
	webhookURL  string
	corsOrigins []string
	relayClient *http.Client

	listener net.Listener
	server   *http.Server
}

type Options struct {
	Bind        string
	CORSOrigins []string
	CSVPath     string
	WebhookURL  string
}

func NewServer(opts Options, auth AuthService, lectures LectureService, qnaSvc QnAService, logger zerolog.Logger) *Server {
	s := &Server{
		bind:        opts.Bind,
		logger:      logger,
		auth:        auth,
		lectures:    lectures,
		qna:         qnaSvc,
		csvPath:     opts.CSVPath,
		webhookURL:  opts.WebhookURL,
		corsOrigins: opts.CORSOrigins,
		relayClient: &http.Client{Timeout: 30 * time.Second},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/accounts/signup", s.handleSignup)
	mux.HandleFunc("/accounts/login", s.handleLogin)
	mux.HandleFunc("/lecture/summary", s.handleLectureSummary)
	mux.HandleFunc("/lecture/qa", s.handleLectureQA)
	mux.HandleFunc("/qna/", s.handleQnA)
	mux.HandleFunc("/qna/save_chat", s.handleSaveChat)
	mux.HandleFunc("/qna/get_chat_history", s.handleChatHistory)
	mux.HandleFunc("/qna/stream", s.handleQnAStream)
	mux.HandleFunc("/storage/read-csv", s.handleReadCSV)
	mux.HandleFunc("/storage/webhook", s.handleWebhook)

	s.server = &http.Server{
		Handler:           s.cors(mux),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("http server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Str("address", listener.Addr().String()).Msg("http server listening")
	return nil
}

func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}
