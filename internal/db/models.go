package db

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Username string `bun:"username,notnull,unique"`
	Password string `bun:"password,notnull"`
}

// Session is a server-side session row; the session key is handed to the
// client at login and sent back with each authenticated request.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID         int64     `bun:"id,pk,autoincrement"`
	SessionKey string    `bun:"session_key,notnull,unique"`
	UserID     int64     `bun:"user_id,notnull"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type ChatLog struct {
	bun.BaseModel `bun:"table:chat_logs,alias:cl"`

	ID           int64     `bun:"id,pk,autoincrement"`
	UserID       int64     `bun:"user_id,notnull"`
	UserInput    string    `bun:"user_input,notnull"`
	ChatbotReply string    `bun:"chatbot_reply,notnull"`
	Timestamp    time.Time `bun:"timestamp,nullzero,notnull,default:current_timestamp"`
}

// LectureRecord is the ledger entry mapping a caller-supplied unique name
// (video URL or uploaded filename) to the processed artifacts. Its presence
// means ingestion completed and the summary is safe to reuse.
type LectureRecord struct {
	bun.BaseModel `bun:"table:lecture_records,alias:lr"`

	ID             int64     `bun:"id,pk,autoincrement"`
	UniqueName     string    `bun:"unique_name,notnull,unique"`
	CollectionName string    `bun:"collection_name,unique,nullzero"`
	StoragePath    string    `bun:"storage_path"`
	Summary        string    `bun:"summary"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
