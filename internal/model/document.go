// Package model defines the conversation memory document types.
package model

import "time"

// Message is one entry in a conversation transcript. Seq is the 0-based
// message index; the transcript length is always MaxSeq+1.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Seq            int       `json:"seq"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Memory is a stored summary of a span of the conversation, anchored to one
// or more message indices. A memory stays valid only while every index in
// MessageIDs is inside the active transcript.
type Memory struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	MessageIDs []int  `json:"message_ids"`
}

// EmotionRange is a message-index window an emotion was inferred from.
type EmotionRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CharacterState holds per-character derived knowledge: which memories the
// character is aware of and an optional emotion-inference window.
type CharacterState struct {
	KnownEvents []string      `json:"known_events,omitempty"`
	Emotion     *EmotionRange `json:"emotion_from_messages,omitempty"`
}

// HistoryEntry is one relationship history record. MessageID is nil for
// entries not anchored to a transcript position; such entries survive any
// rewind.
type HistoryEntry struct {
	MessageID *int   `json:"message_id,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Relationship is derived pairwise state between characters.
type Relationship struct {
	LastUpdatedMessageID *int           `json:"last_updated_message_id,omitempty"`
	History              []HistoryEntry `json:"history,omitempty"`
}

// Document is the per-conversation memory document. LastProcessed is the
// index of the last message the extraction pipeline has seen, -1 when
// nothing has been processed yet.
type Document struct {
	Memories      []Memory                   `json:"memories"`
	Characters    map[string]*CharacterState `json:"characters,omitempty"`
	Relationships map[string]*Relationship   `json:"relationships,omitempty"`
	LastProcessed int                        `json:"last_processed"`
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{LastProcessed: -1}
}

// Character returns the named character state, creating it if absent.
func (d *Document) Character(name string) *CharacterState {
	if d.Characters == nil {
		d.Characters = map[string]*CharacterState{}
	}
	c := d.Characters[name]
	if c == nil {
		c = &CharacterState{}
		d.Characters[name] = c
	}
	return c
}

// Relationship returns the state for the given relationship key, creating it
// if absent.
func (d *Document) Relationship(key string) *Relationship {
	if d.Relationships == nil {
		d.Relationships = map[string]*Relationship{}
	}
	r := d.Relationships[key]
	if r == nil {
		r = &Relationship{}
		d.Relationships[key] = r
	}
	return r
}

// ValidRoles are the allowed message roles.
var ValidRoles = map[string]bool{
	"user":      true,
	"assistant": true,
	"system":    true,
}
