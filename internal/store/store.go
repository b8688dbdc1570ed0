// Package store provides conversation persistence: transcripts, memory
// documents, and the SQLite implementation behind both.
package store

import (
	"context"

	"github.com/lorekeep/lorekeep/internal/model"
)

// AppendParams holds parameters for appending a transcript message.
type AppendParams struct {
	Conversation string
	Role         string
	Content      string
}

// SearchParams holds parameters for searching transcript messages.
type SearchParams struct {
	Conversation string
	Query        string
	Limit        int
}

// ConversationInfo summarizes one conversation.
type ConversationInfo struct {
	ID          string `json:"id"`
	Messages    int    `json:"messages"`
	HasDocument bool   `json:"has_document"`
}

// Store defines transcript and memory-document access.
type Store interface {
	// AppendMessage appends a message at the next sequence number.
	AppendMessage(ctx context.Context, p AppendParams) (*model.Message, error)

	// TranscriptLength returns the number of messages in the conversation's
	// active branch.
	TranscriptLength(ctx context.Context, conversation string) (int, error)

	// Truncate drops every message at index length and beyond, returning how
	// many were removed. This is the branch-rewind mutation; callers are
	// expected to reconcile the document afterwards.
	Truncate(ctx context.Context, conversation string, length int) (int, error)

	// Document loads the conversation's memory document, creating an empty
	// default when none has been saved yet.
	Document(ctx context.Context, conversation string) (*model.Document, error)

	// SaveDocument persists the memory document.
	SaveDocument(ctx context.Context, conversation string, doc *model.Document) error

	// SearchMessages finds transcript messages matching the query.
	SearchMessages(ctx context.Context, p SearchParams) ([]model.Message, error)

	// Conversations lists known conversations.
	Conversations(ctx context.Context) ([]ConversationInfo, error)

	// NewID returns a fresh unique id for messages and memories.
	NewID() string

	// Close closes the store.
	Close() error
}
