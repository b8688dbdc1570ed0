package store

import (
	"context"
	"strings"

	"github.com/lorekeep/lorekeep/internal/model"
)

// SearchMessages finds transcript messages matching the query via FTS,
// scoped to a single conversation when one is given.
func (s *SQLiteStore) SearchMessages(ctx context.Context, p SearchParams) ([]model.Message, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"f.content MATCH ?"}
	args := []interface{}{ftsQuote(p.Query)}

	if p.Conversation != "" {
		where = append(where, "m.conversation_id = ?")
		args = append(args, p.Conversation)
	}

	query := `
		SELECT m.id, m.conversation_id, m.seq, m.role, m.content, m.created_at
		FROM messages m
		JOIN messages_fts f ON f.rowid = m.rowid
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY m.conversation_id, m.seq
		LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// ftsQuote wraps the query as an FTS5 phrase so user input is never parsed
// as match syntax.
func ftsQuote(q string) string {
	return `"` + strings.ReplaceAll(q, `"`, `""`) + `"`
}
