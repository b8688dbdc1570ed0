package store

import (
	"context"
	"fmt"
	"time"

	"github.com/lorekeep/lorekeep/internal/model"
)

// Snapshot is a full conversation export: transcript plus memory document.
type Snapshot struct {
	Conversation string          `json:"conversation"`
	Messages     []model.Message `json:"messages"`
	Document     *model.Document `json:"document"`
}

// Export returns a snapshot of the conversation.
func (s *SQLiteStore) Export(ctx context.Context, conversation string) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, conversation_id, seq, role, content, created_at
		 FROM messages WHERE conversation_id = ? ORDER BY seq`, conversation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := &Snapshot{Conversation: conversation}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		snap.Messages = append(snap.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	doc, err := s.Document(ctx, conversation)
	if err != nil {
		return nil, err
	}
	snap.Document = doc
	return snap, nil
}

// Import restores a snapshot. The target conversation must not already have
// messages; existing documents are overwritten.
func (s *SQLiteStore) Import(ctx context.Context, snap *Snapshot) (int, error) {
	if snap.Conversation == "" {
		return 0, fmt.Errorf("snapshot has no conversation id")
	}

	existing, err := s.TranscriptLength(ctx, snap.Conversation)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, fmt.Errorf("conversation %q already has %d message(s)", snap.Conversation, existing)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, m := range snap.Messages {
		id := m.ID
		if id == "" {
			id = s.NewID()
		}
		created := m.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, seq, role, content, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			id, snap.Conversation, m.Seq, m.Role, m.Content, created.Format(time.RFC3339))
		if err != nil {
			return imported, fmt.Errorf("insert message %d: %w", m.Seq, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return imported, err
	}

	if snap.Document != nil {
		if err := s.SaveDocument(ctx, snap.Conversation, snap.Document); err != nil {
			return imported, err
		}
	}
	return imported, nil
}
