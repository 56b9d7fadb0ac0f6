package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"lecture-rag/internal/db"
)

var (
	// ErrUserExists means the username is already taken.
	ErrUserExists = errors.New("auth: user already exists")
	// ErrUnknownUser means no account exists for the username.
	ErrUnknownUser = errors.New("auth: unknown user")
	// ErrInvalidCredentials means the password check failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidSession means the session id is unknown or expired.
	ErrInvalidSession = errors.New("auth: invalid session")
)

// Store is the slice of the relational store the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, user *db.User) error
	FindUserByUsername(ctx context.Context, username string) (*db.User, error)
	FindUserByID(ctx context.Context, id int64) (*db.User, error)
	CreateSession(ctx context.Context, session *db.Session) error
	FindSession(ctx context.Context, sessionKey string) (*db.Session, error)
}

// Service implements username/password signup, login, and server-side
// session validation.
type Service struct {
	store      Store
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(store Store, sessionTTL time.Duration) *Service {
	return &Service{store: store, sessionTTL: sessionTTL, now: time.Now}
}

func (s *Service) Signup(ctx context.Context, username, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	err = s.store.CreateUser(ctx, &db.User{Username: username, Password: string(hashed)})
	if errors.Is(err, db.ErrDuplicate) {
		return ErrUserExists
	}
	return err
}

// Login checks the password and, when it matches, creates a session row
// and returns its key.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.store.FindUserByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	session := &db.Session{
		SessionKey: uuid.NewString(),
		UserID:     user.ID,
		ExpiresAt:  s.now().Add(s.sessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", err
	}
	return session.SessionKey, nil
}

// ValidateSession resolves a session key to its user. Unknown or expired
// sessions return ErrInvalidSession; a session whose user row vanished
// returns db.ErrNotFound so callers can answer 404.
func (s *Service) ValidateSession(ctx context.Context, sessionKey string) (*db.User, error) {
	session, err := s.store.FindSession(ctx, sessionKey)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	if s.now().After(session.ExpiresAt) {
		return nil, ErrInvalidSession
	}
	return s.store.FindUserByID(ctx, session.UserID)
}
