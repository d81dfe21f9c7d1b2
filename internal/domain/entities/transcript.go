package entities

// TranscriptSegment is a single speaker-attributed, time-bounded span of
// transcript text, produced by the external transcription collaborator.
// Immutable once created; batches are ordered by StartTS.
type TranscriptSegment struct {
	SpeakerID string  `json:"speaker_id" validate:"required"`
	StartTS   float64 `json:"start_ts" validate:"gte=0"`
	EndTS     float64 `json:"end_ts" validate:"gtefield=StartTS"`
	Text      string  `json:"text" validate:"required"`
}

// Duration returns the segment span in seconds
func (s TranscriptSegment) Duration() float64 {
	return s.EndTS - s.StartTS
}

// Sentence is a sentence-level unit produced by normalization. Sentences may
// not align 1:1 with segment boundaries; SegmentIndex points back to the
// segment the sentence originated from for attribution.
type Sentence struct {
	Text         string `json:"text"`
	SegmentIndex int    `json:"segment_index"`
}

// NormalizedTranscript is the cleaned, re-segmented form of a transcript.
// Derived per request, never persisted.
type NormalizedTranscript struct {
	Segments  []TranscriptSegment `json:"segments"`
	Sentences []Sentence          `json:"sentences"`
	FullText  string              `json:"full_text"`
}
