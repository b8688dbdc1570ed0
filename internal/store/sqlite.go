package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/lorekeep/lorekeep/internal/log"
	"github.com/lorekeep/lorekeep/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Debug("opened store at %s", dbPath)
	return s, nil
}

// NewID returns a fresh ulid.
func (s *SQLiteStore) NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id              TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		seq             INTEGER NOT NULL,
		role            TEXT NOT NULL DEFAULT 'user',
		content         TEXT NOT NULL,
		created_at      TEXT NOT NULL,
		PRIMARY KEY (conversation_id, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_messages_id ON messages(id);

	CREATE TABLE IF NOT EXISTS documents (
		conversation_id TEXT PRIMARY KEY,
		doc             TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	);

	CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
		content,
		content=messages,
		content_rowid=rowid
	);
	`
	_, err := s.db.Exec(schema)
	if err != nil {
		return err
	}

	// FTS5 triggers for automatic sync
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
		INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
	END`)
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
		INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
	END`)
	s.db.Exec(`CREATE TRIGGER IF NOT EXISTS messages_au AFTER UPDATE ON messages BEGIN
		INSERT INTO messages_fts(messages_fts, rowid, content) VALUES('delete', old.rowid, old.content);
		INSERT INTO messages_fts(rowid, content) VALUES (new.rowid, new.content);
	END`)

	// Backfill FTS for any existing messages not yet indexed
	s.db.Exec(`INSERT OR IGNORE INTO messages_fts(rowid, content) SELECT rowid, content FROM messages`)

	return nil
}

// AppendMessage appends a message at the next free sequence number.
func (s *SQLiteStore) AppendMessage(ctx context.Context, p AppendParams) (*model.Message, error) {
	if p.Conversation == "" {
		return nil, fmt.Errorf("conversation is required")
	}
	role := p.Role
	if role == "" {
		role = "user"
	}

	now := time.Now().UTC()
	id := s.NewID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq)+1, 0) FROM messages WHERE conversation_id = ?`,
		p.Conversation).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, p.Conversation, seq, role, p.Content, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Message{
		ID:             id,
		ConversationID: p.Conversation,
		Seq:            seq,
		Role:           role,
		Content:        p.Content,
		CreatedAt:      now,
	}, nil
}

// TranscriptLength returns the number of messages in the conversation.
func (s *SQLiteStore) TranscriptLength(ctx context.Context, conversation string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq)+1, 0) FROM messages WHERE conversation_id = ?`,
		conversation).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("transcript length: %w", err)
	}
	return n, nil
}

// Truncate removes every message at index length and beyond.
func (s *SQLiteStore) Truncate(ctx context.Context, conversation string, length int) (int, error) {
	if length < 0 {
		return 0, fmt.Errorf("length must be non-negative, got %d", length)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM messages WHERE conversation_id = ? AND seq >= ?`,
		conversation, length)
	if err != nil {
		return 0, fmt.Errorf("truncate: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Debug("truncated %d message(s) from %s", n, conversation)
	}
	return int(n), nil
}

// Document loads the conversation's memory document, returning an empty
// default when none exists yet.
func (s *SQLiteStore) Document(ctx context.Context, conversation string) (*model.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM documents WHERE conversation_id = ?`, conversation).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// SaveDocument persists the memory document as JSON.
func (s *SQLiteStore) SaveDocument(ctx context.Context, conversation string, doc *model.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (conversation_id, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		conversation, string(b), now)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// Conversations lists known conversations with message counts.
func (s *SQLiteStore) Conversations(ctx context.Context) ([]ConversationInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id,
		       COALESCE((SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id), 0),
		       EXISTS(SELECT 1 FROM documents d WHERE d.conversation_id = c.id)
		FROM (
			SELECT conversation_id AS id FROM messages
			UNION
			SELECT conversation_id FROM documents
		) c
		ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []ConversationInfo
	for rows.Next() {
		var info ConversationInfo
		if err := rows.Scan(&info.ID, &info.Messages, &info.HasDocument); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMessage(row scanner) (model.Message, error) {
	var m model.Message
	var createdAt string

	err := row.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Content, &createdAt)
	if err != nil {
		return m, err
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return m, nil
}
