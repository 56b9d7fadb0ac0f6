package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Store exposes the relational operations the services need. It wraps the
// shared bun handle; all methods are safe for concurrent use.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// FindLecture looks up the ledger entry for a unique name. Returns
// ErrNotFound when the media has never been ingested.
func (s *Store) FindLecture(ctx context.Context, uniqueName string) (*LectureRecord, error) {
	rec := new(LectureRecord)
	err := s.db.NewSelect().
		Model(rec).
		Where("unique_name = ?", uniqueName).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err)
	}
	return rec, nil
}

// CreateLecture records a completed ingestion. A concurrent ingestion of
// the same unique name loses here with ErrDuplicate; that race is resolved
// by the unique constraint, not by any locking.
func (s *Store) CreateLecture(ctx context.Context, rec *LectureRecord) error {
	_, err := s.db.NewInsert().Model(rec).Exec(ctx)
	return wrapInsertErr(err)
}

func (s *Store) CreateUser(ctx context.Context, user *User) error {
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return wrapInsertErr(err)
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().
		Model(user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err)
	}
	return user, nil
}

func (s *Store) FindUserByID(ctx context.Context, id int64) (*User, error) {
	user := new(User)
	err := s.db.NewSelect().
		Model(user).
		Where("u.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err)
	}
	return user, nil
}

func (s *Store) CreateSession(ctx context.Context, session *Session) error {
	_, err := s.db.NewInsert().Model(session).Exec(ctx)
	return wrapInsertErr(err)
}

func (s *Store) FindSession(ctx context.Context, sessionKey string) (*Session, error) {
	session := new(Session)
	err := s.db.NewSelect().
		Model(session).
		Where("session_key = ?", sessionKey).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, wrapSelectErr(err)
	}
	return session, nil
}

func (s *Store) SaveChatLog(ctx context.Context, entry *ChatLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := s.db.NewInsert().Model(entry).Exec(ctx)
	return wrapInsertErr(err)
}

// ChatHistory returns a user's chat log rows in insertion order.
func (s *Store) ChatHistory(ctx context.Context, userID int64) ([]ChatLog, error) {
	var logs []ChatLog
	err := s.db.NewSelect().
		Model(&logs).
		Where("user_id = ?", userID).
		Order("timestamp ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
