package qna

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"lecture-rag/internal/db"
	"lecture-rag/internal/rag"
)

// Sessions validates the caller-supplied session id.
type Sessions interface {
	ValidateSession(ctx context.Context, sessionKey string) (*db.User, error)
}

// ChatStore persists and reads the per-user chat log.
type ChatStore interface {
	SaveChatLog(ctx context.Context, entry *db.ChatLog) error
	ChatHistory(ctx context.Context, userID int64) ([]db.ChatLog, error)
}

// Engine is the slice of the RAG engine the announcements Q&A uses.
type Engine interface {
	AnswerAnnouncements(ctx context.Context, r rag.Retriever, question string) (string, error)
	StreamAnnouncements(ctx context.Context, r rag.Retriever, question string, fn func(ctx context.Context, chunk []byte) error) error
}

// Service answers questions over the crawled announcements corpus. Answers
// are cached by question text for a fixed window to avoid redundant LLM
// calls, and successful answers are appended to the caller's chat log.
type Service struct {
	sessions  Sessions
	chats     ChatStore
	engine    Engine
	retriever rag.Retriever
	cache     AnswerCache
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

func NewService(
	sessions Sessions,
	chats ChatStore,
	engine Engine,
	retriever rag.Retriever,
	cache AnswerCache,
	cacheTTL time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		chats:     chats,
		engine:    engine,
		retriever: retriever,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Answer validates the session, serves from the answer cache when
// possible, and otherwise runs retrieval-augmented generation. Cache hits
// skip the chat log on purpose.
func (s *Service) Answer(ctx context.Context, sessionKey, question string) (string, error) {
	user, err := s.sessions.ValidateSession(ctx, sessionKey)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, question)
		if err != nil {
			s.logger.Warn().Err(err).Msg("answer cache unavailable")
		} else if ok {
			s.logger.Info().Str("question", question).Msg("serving cached answer")
			return cached, nil
		}
	}

	answer, err := s.engine.AnswerAnnouncements(ctx, s.retriever, question)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, question, answer, s.cacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("answer cache write failed")
		}
	}

	if err := s.chats.SaveChatLog(ctx, &db.ChatLog{
		UserID:       user.ID,
		UserInput:    question,
		ChatbotReply: answer,
	}); err != nil {
		return "", err
	}
	return answer, nil
}

// Stream validates the session and forwards model output chunks to fn as
// they arrive. Streamed answers are not cached and not logged.
func (s *Service) Stream(ctx context.Context, sessionKey, question string, fn func(ctx context.Context, chunk []byte) error) error {
	if _, err := s.sessions.ValidateSession(ctx, sessionKey); err != nil {
		return err
	}
	return s.engine.StreamAnnouncements(ctx, s.retriever, question, fn)
}

// SaveChat appends one exchange to the caller's chat log.
func (s *Service) SaveChat(ctx context.Context, sessionKey, userInput, chatbotReply string) error {
	user, err := s.sessions.ValidateSession(ctx, sessionKey)
	if err != nil {
		return err
	}
	return s.chats.SaveChatLog(ctx, &db.ChatLog{
		UserID:       user.ID,
		UserInput:    userInput,
		ChatbotReply: chatbotReply,
	})
}

// Message is one side of an exchange in the rendered history.
type Message struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// History returns the caller's chat log as alternating user/bot messages
// in insertion order.
func (s *Service) History(ctx context.Context, sessionKey string) ([]Message, error) {
	user, err := s.sessions.ValidateSession(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	logs, err := s.chats.ChatHistory(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	history := make([]Message, 0, len(logs)*2)
	for _, entry := range logs {
		history = append(history,
			Message{Sender: "user", Message: entry.UserInput},
			Message{Sender: "bot", Message: entry.ChatbotReply},
		)
	}
	return history, nil
}
