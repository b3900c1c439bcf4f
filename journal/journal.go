package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one recognized utterance and the command it was matched to.
type Entry struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	Transcript string
	Command    string
	CreatedAt  time.Time
}

// Store keeps a history of recognized utterances in SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS utterances (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	transcript TEXT NOT NULL,
	command    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS utterances_session ON utterances (session_id, created_at);
`

// Open opens or creates the journal database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// the assistant is single-threaded
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e, filling in a missing ID or timestamp.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO utterances (id, session_id, transcript, command, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID.String(), e.SessionID.String(), e.Transcript, e.Command, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert utterance: %w", err)
	}

	return nil
}

// Entries returns a session's utterances, oldest first.
func (s *Store) Entries(ctx context.Context, sessionID uuid.UUID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, transcript, command, created_at
		FROM utterances
		WHERE session_id = ?
		ORDER BY created_at ASC
	`, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("query utterances: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e              Entry
			id, session    string
			createdAtNanos int64
		)

		if err := rows.Scan(&id, &session, &e.Transcript, &e.Command, &createdAtNanos); err != nil {
			return nil, fmt.Errorf("scan utterance: %w", err)
		}

		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse utterance id: %w", err)
		}

		if e.SessionID, err = uuid.Parse(session); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}

		e.CreatedAt = time.Unix(0, createdAtNanos)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
