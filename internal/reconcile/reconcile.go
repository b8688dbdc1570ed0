// Package reconcile keeps a conversation's memory document consistent with
// its transcript after a branch switch or rewind. Memories, character states
// and relationships all anchor to message indices; when the transcript
// shrinks, anything pointing past the end is removed or clamped.
package reconcile

import "github.com/lorekeep/lorekeep/internal/model"

// Report counts what a reconciliation pass removed or reset.
type Report struct {
	PrunedMemories        int `json:"pruned_memories"`
	PrunedCharacterEvents int `json:"pruned_character_events"`
	PrunedRelationships   int `json:"pruned_relationships"`
}

// Zero reports whether the pass changed nothing.
func (r Report) Zero() bool {
	return r == Report{}
}

// Reconcile removes or clamps every part of doc that references a message
// index at or beyond transcriptLen, mutating doc in place. Valid indices are
// 0..transcriptLen-1. The pass never fails and is idempotent: a second run
// with the same length reports all zeros.
//
// A zero transcript length, or a document with no memories, short-circuits
// to an untouched document: a store that has not seen a transcript yet is
// not treated as stale.
func Reconcile(doc *model.Document, transcriptLen int) Report {
	var rep Report
	if transcriptLen <= 0 || len(doc.Memories) == 0 {
		return rep
	}

	valid, invalid := pruneMemories(doc.Memories, transcriptLen)
	rep.PrunedMemories = len(doc.Memories) - len(valid)
	if rep.PrunedMemories > 0 {
		doc.Memories = valid
	}

	for _, c := range doc.Characters {
		rep.PrunedCharacterEvents += pruneCharacterEvents(c, invalid, transcriptLen)
	}

	for _, r := range doc.Relationships {
		if reconcileRelationship(r, transcriptLen) {
			rep.PrunedRelationships++
		}
	}

	doc.LastProcessed = clampCursor(doc.LastProcessed, transcriptLen)
	return rep
}

// pruneMemories splits memories into the ones that survive at the given
// transcript length and the id set of the ones that do not. Validity is
// conjunctive: a single out-of-range index invalidates the whole memory.
// Relative order of survivors is preserved.
func pruneMemories(memories []model.Memory, transcriptLen int) ([]model.Memory, map[string]bool) {
	valid := make([]model.Memory, 0, len(memories))
	invalid := map[string]bool{}
	for _, m := range memories {
		if memoryValid(m, transcriptLen) {
			valid = append(valid, m)
		} else {
			invalid[m.ID] = true
		}
	}
	return valid, invalid
}

func memoryValid(m model.Memory, transcriptLen int) bool {
	for _, id := range m.MessageIDs {
		if id >= transcriptLen {
			return false
		}
	}
	return true
}

// pruneCharacterEvents drops known events whose memory was invalidated and
// returns how many were dropped. The emotion window gets a two-tier rule:
// fully out of range deletes the field, partial overlap clamps max to the
// last valid index and keeps min untouched.
func pruneCharacterEvents(c *model.CharacterState, invalid map[string]bool, transcriptLen int) int {
	removed := 0
	if len(c.KnownEvents) > 0 && len(invalid) > 0 {
		kept := make([]string, 0, len(c.KnownEvents))
		for _, id := range c.KnownEvents {
			if invalid[id] {
				removed++
				continue
			}
			kept = append(kept, id)
		}
		if removed > 0 {
			c.KnownEvents = kept
		}
	}

	if c.Emotion != nil && c.Emotion.Max >= transcriptLen {
		if c.Emotion.Min >= transcriptLen {
			c.Emotion = nil
		} else {
			c.Emotion.Max = transcriptLen - 1
		}
	}

	return removed
}

// reconcileRelationship clamps the relationship's last-update cursor and
// filters its history, reporting whether the cursor was touched. History
// entries without a message anchor are always kept; history filtering alone
// does not count as touching the relationship.
func reconcileRelationship(r *model.Relationship, transcriptLen int) bool {
	touched := false
	if r.LastUpdatedMessageID != nil && *r.LastUpdatedMessageID >= transcriptLen {
		reset := clampCursor(*r.LastUpdatedMessageID, transcriptLen)
		r.LastUpdatedMessageID = &reset
		touched = true
	}

	if len(r.History) > 0 {
		kept := make([]model.HistoryEntry, 0, len(r.History))
		dropped := false
		for _, h := range r.History {
			if h.MessageID != nil && *h.MessageID >= transcriptLen {
				dropped = true
				continue
			}
			kept = append(kept, h)
		}
		if dropped {
			r.History = kept
		}
	}

	return touched
}

// clampCursor resets an out-of-range cursor to the last valid index, or -1
// when the transcript is empty. In-range cursors pass through unchanged.
func clampCursor(cur, transcriptLen int) int {
	if cur < transcriptLen {
		return cur
	}
	if transcriptLen > 0 {
		return transcriptLen - 1
	}
	return -1
}
