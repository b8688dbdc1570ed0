package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string              `json:"db_path"`
	DBSizeBytes   int64               `json:"db_size_bytes"`
	Conversations int                 `json:"conversations"`
	TotalMessages int                 `json:"total_messages"`
	Documents     int                 `json:"documents"`
	PerConv       []ConversationStats `json:"per_conversation,omitempty"`
}

// ConversationStats holds per-conversation counts.
type ConversationStats struct {
	ID            string `json:"id"`
	Messages      int    `json:"messages"`
	Memories      int    `json:"memories"`
	Characters    int    `json:"characters"`
	Relationships int    `json:"relationships"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&st.TotalMessages)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&st.Documents)

	infos, err := s.Conversations(ctx)
	if err != nil {
		return st, err
	}
	st.Conversations = len(infos)

	for _, info := range infos {
		cs := ConversationStats{ID: info.ID, Messages: info.Messages}
		if info.HasDocument {
			doc, err := s.Document(ctx, info.ID)
			if err != nil {
				return st, err
			}
			cs.Memories = len(doc.Memories)
			cs.Characters = len(doc.Characters)
			cs.Relationships = len(doc.Relationships)
		}
		st.PerConv = append(st.PerConv, cs)
	}

	return st, nil
}
