package entities

import (
	"time"

	"github.com/google/uuid"
)

// TopicMethod identifies the strategy that produced a KeyTopic
type TopicMethod string

const (
	TopicMethodEmbeddingRank TopicMethod = "embedding-rank"
	TopicMethodTopicModel    TopicMethod = "statistical-topic-model"
	TopicMethodGraphRank     TopicMethod = "graph-rank"
)

// KeyTopic is a ranked topic candidate. Topics from different methods may
// share a label; nothing deduplicates them implicitly, callers select by
// score.
type KeyTopic struct {
	Label  string      `json:"label"`
	Score  float64     `json:"score"`
	Method TopicMethod `json:"method"`
}

// EntityKind classifies a named entity
type EntityKind string

const (
	EntityKindPerson       EntityKind = "person"
	EntityKindOrganization EntityKind = "organization"
	EntityKindDate         EntityKind = "date"
	EntityKindOther        EntityKind = "other"
)

// Entity is a named entity with its character span in the normalized text
type Entity struct {
	Text  string     `json:"text"`
	Kind  EntityKind `json:"kind"`
	Start int        `json:"start"`
	End   int        `json:"end"`
}

// ItemSource identifies which extraction pass produced an action item
type ItemSource string

const (
	ItemSourceRule       ItemSource = "rule"
	ItemSourceGeneration ItemSource = "generation"
)

// ActionItem is a task extracted from the meeting. Created during
// extraction, merged within a single pipeline run, never mutated after
// assembly; downstream consumers own later lifecycle changes.
type ActionItem struct {
	ID         uuid.UUID  `json:"id"`
	Text       string     `json:"text"`
	Assignee   string     `json:"assignee,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Confidence float64    `json:"confidence"`
	Source     ItemSource `json:"source"`
}

// NewActionItem creates an ActionItem with a fresh identity
func NewActionItem(text string, source ItemSource, confidence float64) ActionItem {
	return ActionItem{
		ID:         uuid.New(),
		Text:       text,
		Source:     source,
		Confidence: confidence,
	}
}

// SummaryMethod records which summarization state produced the result, so
// callers can distinguish degraded from full-quality output
type SummaryMethod string

const (
	SummaryMethodGenerative SummaryMethod = "generative"
	SummaryMethodExtractive SummaryMethod = "extractive"
	SummaryMethodTruncated  SummaryMethod = "truncated"
)

// SummaryLength is the caller-requested summary size
type SummaryLength string

const (
	SummaryLengthShort  SummaryLength = "short"
	SummaryLengthMedium SummaryLength = "medium"
	SummaryLengthLong   SummaryLength = "long"
)

// Summary is the meeting summary together with how it was obtained
type Summary struct {
	Text            string        `json:"text"`
	Method          SummaryMethod `json:"method"`
	RequestedLength SummaryLength `json:"requested_length"`
}

// MeetingInsights is the aggregate result of one pipeline invocation.
// Assembled once, immutable, returned by value; every field is
// independently optional-safe, a failed stage leaves its field empty.
type MeetingInsights struct {
	ID                   uuid.UUID           `json:"id"`
	Summary              Summary             `json:"summary"`
	Topics               []KeyTopic          `json:"topics"`
	Entities             []Entity            `json:"entities"`
	ActionItems          []ActionItem        `json:"action_items"`
	ProcessedSegments    []TranscriptSegment `json:"processed_segments"`
	SpeakerContributions map[string]float64  `json:"speaker_contributions"`
	WordCount            int                 `json:"word_count"`
	DegradedStages       []string            `json:"degraded_stages,omitempty"`
	GeneratedAt          time.Time           `json:"generated_at"`
}

// NewMeetingInsights creates an empty aggregate for one pipeline run
func NewMeetingInsights() MeetingInsights {
	return MeetingInsights{
		ID:                   uuid.New(),
		Topics:               make([]KeyTopic, 0),
		Entities:             make([]Entity, 0),
		ActionItems:          make([]ActionItem, 0),
		ProcessedSegments:    make([]TranscriptSegment, 0),
		SpeakerContributions: make(map[string]float64),
		GeneratedAt:          time.Now(),
	}
}
