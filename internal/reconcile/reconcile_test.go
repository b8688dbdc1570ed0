package reconcile

import (
	"reflect"
	"testing"

	"github.com/lorekeep/lorekeep/internal/model"
)

func intPtr(v int) *int { return &v }

func TestInvalidatesMemoryWhenAnyIndexOutOfRange(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{
			{ID: "m1", Summary: "intro", MessageIDs: []int{0, 5}},
			{ID: "m2", Summary: "aside", MessageIDs: []int{1, 2}},
		},
		LastProcessed: -1,
	}

	rep := Reconcile(doc, 5)
	if rep.PrunedMemories != 1 {
		t.Fatalf("expected 1 pruned memory, got %d", rep.PrunedMemories)
	}
	if len(doc.Memories) != 1 || doc.Memories[0].ID != "m2" {
		t.Errorf("expected only m2 to survive, got %+v", doc.Memories)
	}
}

func TestMemoryWithAllIndicesInRangeSurvives(t *testing.T) {
	doc := &model.Document{
		Memories:      []model.Memory{{ID: "m1", MessageIDs: []int{0, 1, 2}}},
		LastProcessed: 2,
	}

	rep := Reconcile(doc, 3)
	if !rep.Zero() {
		t.Errorf("expected zero report, got %+v", rep)
	}
	if len(doc.Memories) != 1 {
		t.Errorf("expected memory to survive, got %+v", doc.Memories)
	}
}

func TestCascadesIntoCharacterKnownEvents(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{
			{ID: "a", MessageIDs: []int{0}},
			{ID: "b", MessageIDs: []int{7}},
		},
		Characters: map[string]*model.CharacterState{
			"Alice": {KnownEvents: []string{"a", "b"}},
			"Bob":   {KnownEvents: []string{"b"}},
		},
		LastProcessed: -1,
	}

	rep := Reconcile(doc, 3)
	if rep.PrunedMemories != 1 {
		t.Fatalf("expected 1 pruned memory, got %d", rep.PrunedMemories)
	}
	if rep.PrunedCharacterEvents != 2 {
		t.Errorf("expected 2 pruned character events across characters, got %d", rep.PrunedCharacterEvents)
	}
	if got := doc.Characters["Alice"].KnownEvents; !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Alice known events = %v, want [a]", got)
	}
	if got := doc.Characters["Bob"].KnownEvents; len(got) != 0 {
		t.Errorf("Bob known events = %v, want empty", got)
	}
}

func TestEmotionRangeClampedOnPartialOverlap(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{{ID: "m", MessageIDs: []int{0}}},
		Characters: map[string]*model.CharacterState{
			"Alice": {Emotion: &model.EmotionRange{Min: 3, Max: 7}},
		},
		LastProcessed: -1,
	}

	Reconcile(doc, 5)
	e := doc.Characters["Alice"].Emotion
	if e == nil || e.Min != 3 || e.Max != 4 {
		t.Errorf("expected emotion clamped to {3 4}, got %+v", e)
	}
}

func TestEmotionRangeDeletedWhenFullyOutOfRange(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{{ID: "m", MessageIDs: []int{0}}},
		Characters: map[string]*model.CharacterState{
			"Alice": {Emotion: &model.EmotionRange{Min: 6, Max: 7}},
		},
		LastProcessed: -1,
	}

	Reconcile(doc, 5)
	if doc.Characters["Alice"].Emotion != nil {
		t.Errorf("expected emotion field deleted, got %+v", doc.Characters["Alice"].Emotion)
	}
}

func TestRelationshipCursorResetCountedOncePerRelationship(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{{ID: "m", MessageIDs: []int{0}}},
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {
				LastUpdatedMessageID: intPtr(9),
				History: []model.HistoryEntry{
					{MessageID: intPtr(1), Note: "met"},
					{MessageID: intPtr(9), Note: "argued"},
				},
			},
		},
		LastProcessed: -1,
	}

	rep := Reconcile(doc, 4)
	if rep.PrunedRelationships != 1 {
		t.Errorf("expected 1 pruned relationship, got %d", rep.PrunedRelationships)
	}
	r := doc.Relationships["Alice-Bob"]
	if r.LastUpdatedMessageID == nil || *r.LastUpdatedMessageID != 3 {
		t.Errorf("expected cursor reset to 3, got %v", r.LastUpdatedMessageID)
	}
	if len(r.History) != 1 || r.History[0].Note != "met" {
		t.Errorf("expected only the in-range history entry, got %+v", r.History)
	}
}

func TestHistoryFilteringAloneDoesNotCountRelationship(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{{ID: "m", MessageIDs: []int{0}}},
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {
				LastUpdatedMessageID: intPtr(1),
				History:              []model.HistoryEntry{{MessageID: intPtr(9)}},
			},
		},
		LastProcessed: -1,
	}

	rep := Reconcile(doc, 4)
	if rep.PrunedRelationships != 0 {
		t.Errorf("expected 0 pruned relationships, got %d", rep.PrunedRelationships)
	}
	if len(doc.Relationships["Alice-Bob"].History) != 0 {
		t.Errorf("expected stale history entry dropped")
	}
}

func TestHistoryEntriesWithoutMessageIDAlwaysKept(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{{ID: "m", MessageIDs: []int{0}}},
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {History: []model.HistoryEntry{
				{Note: "imported from card"},
				{MessageID: intPtr(50), Note: "stale"},
			}},
		},
		LastProcessed: -1,
	}

	Reconcile(doc, 2)
	h := doc.Relationships["Alice-Bob"].History
	if len(h) != 1 || h[0].Note != "imported from card" {
		t.Errorf("expected unanchored entry kept, got %+v", h)
	}
}

func TestLastProcessedCursorClamped(t *testing.T) {
	doc := &model.Document{
		Memories:      []model.Memory{{ID: "m", MessageIDs: []int{0}}},
		LastProcessed: 10,
	}

	Reconcile(doc, 4)
	if doc.LastProcessed != 3 {
		t.Errorf("expected cursor 3, got %d", doc.LastProcessed)
	}
}

func TestClampCursor(t *testing.T) {
	cases := []struct {
		cur, length, want int
	}{
		{10, 4, 3},
		{10, 0, -1},
		{3, 4, 3},
		{-1, 4, -1},
		{0, 1, 0},
	}
	for _, c := range cases {
		if got := clampCursor(c.cur, c.length); got != c.want {
			t.Errorf("clampCursor(%d, %d) = %d, want %d", c.cur, c.length, got, c.want)
		}
	}
}

func TestEmptyTranscriptLeavesStoreUntouched(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{{ID: "m", MessageIDs: []int{0, 1}}},
		Characters: map[string]*model.CharacterState{
			"Alice": {KnownEvents: []string{"m"}, Emotion: &model.EmotionRange{Min: 0, Max: 9}},
		},
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {LastUpdatedMessageID: intPtr(9)},
		},
		LastProcessed: 9,
	}
	before := snapshot(t, doc)

	rep := Reconcile(doc, 0)
	if !rep.Zero() {
		t.Errorf("expected zero report, got %+v", rep)
	}
	if !reflect.DeepEqual(before, snapshot(t, doc)) {
		t.Error("expected document untouched at transcript length 0")
	}
}

func TestEmptyMemoryListShortCircuits(t *testing.T) {
	doc := &model.Document{
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {LastUpdatedMessageID: intPtr(9)},
		},
		LastProcessed: 9,
	}

	rep := Reconcile(doc, 3)
	if !rep.Zero() {
		t.Errorf("expected zero report, got %+v", rep)
	}
	if *doc.Relationships["Alice-Bob"].LastUpdatedMessageID != 9 {
		t.Error("expected relationship untouched when no memories exist")
	}
}

func TestIdempotent(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{
			{ID: "a", MessageIDs: []int{0, 1}},
			{ID: "b", MessageIDs: []int{2, 9}},
		},
		Characters: map[string]*model.CharacterState{
			"Alice": {KnownEvents: []string{"a", "b"}, Emotion: &model.EmotionRange{Min: 1, Max: 8}},
		},
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {
				LastUpdatedMessageID: intPtr(9),
				History:              []model.HistoryEntry{{MessageID: intPtr(2)}, {MessageID: intPtr(8)}},
			},
		},
		LastProcessed: 9,
	}

	first := Reconcile(doc, 3)
	if first.Zero() {
		t.Fatal("expected first pass to prune")
	}
	after := snapshot(t, doc)

	second := Reconcile(doc, 3)
	if !second.Zero() {
		t.Errorf("expected second pass to be a no-op, got %+v", second)
	}
	if !reflect.DeepEqual(after, snapshot(t, doc)) {
		t.Error("expected document unchanged by second pass")
	}
}

func TestEndToEndScenario(t *testing.T) {
	doc := &model.Document{
		Memories: []model.Memory{
			{ID: "a", MessageIDs: []int{0, 1}},
			{ID: "b", MessageIDs: []int{2, 9}},
		},
		Characters: map[string]*model.CharacterState{
			"Alice": {KnownEvents: []string{"a", "b"}},
		},
		Relationships: map[string]*model.Relationship{
			"Alice-Bob": {LastUpdatedMessageID: intPtr(9)},
		},
		LastProcessed: 9,
	}

	rep := Reconcile(doc, 3)
	want := Report{PrunedMemories: 1, PrunedCharacterEvents: 1, PrunedRelationships: 1}
	if rep != want {
		t.Fatalf("report = %+v, want %+v", rep, want)
	}
	if len(doc.Memories) != 1 || doc.Memories[0].ID != "a" {
		t.Errorf("expected only memory a, got %+v", doc.Memories)
	}
	if got := doc.Characters["Alice"].KnownEvents; !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Alice known events = %v, want [a]", got)
	}
	if got := doc.Relationships["Alice-Bob"].LastUpdatedMessageID; got == nil || *got != 2 {
		t.Errorf("relationship cursor = %v, want 2", got)
	}
	if doc.LastProcessed != 2 {
		t.Errorf("lastProcessed = %d, want 2", doc.LastProcessed)
	}
}

// snapshot returns a deep copy of doc for before/after comparisons.
func snapshot(t *testing.T, doc *model.Document) model.Document {
	t.Helper()
	cp := *doc
	cp.Memories = append([]model.Memory(nil), doc.Memories...)
	cp.Characters = map[string]*model.CharacterState{}
	for k, v := range doc.Characters {
		c := *v
		c.KnownEvents = append([]string(nil), v.KnownEvents...)
		if v.Emotion != nil {
			e := *v.Emotion
			c.Emotion = &e
		}
		cp.Characters[k] = &c
	}
	cp.Relationships = map[string]*model.Relationship{}
	for k, v := range doc.Relationships {
		r := *v
		r.History = append([]model.HistoryEntry(nil), v.History...)
		if v.LastUpdatedMessageID != nil {
			id := *v.LastUpdatedMessageID
			r.LastUpdatedMessageID = &id
		}
		cp.Relationships[k] = &r
	}
	return cp
}
