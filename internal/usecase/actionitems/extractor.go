package actionitems

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/dates"
)

// Generator is the slice of the model gateway the generation pass needs
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, out any) error
}

const (
	confidenceBase    = 0.2
	confidencePerCue  = 0.2
	generationBase    = 0.7
	generationBonus   = 0.1
	generationCeiling = 0.95
)

var (
	commitmentRe  = regexp.MustCompile(`(?i)\b(?:will|'ll|going to|gonna)\b|负责|会在`)
	imperativeRe  = regexp.MustCompile(`(?i)\b(?:need(?:s)? to|should|must|have to|let's|take care of|follow(?:s)? up on|action item:?|todo:?)\b|需要|必须`)
	nameTaskRe    = regexp.MustCompile(`^([A-Z][a-z]+)(?:,.*|\s+(?:will|should|can you|to)\b.*)$`)
	firstPersonRe = regexp.MustCompile(`(?i)^(?:i|we)\b`)

	leadInRe = regexp.MustCompile(`(?i)^(?:(?:[A-Z][a-z]+|i|we|you|he|she|they)[,:]?\s+)?(?:will|'ll|should|must|needs? to|have to|(?:is|are|am) going to|going to|let's|can you)\s+`)

	// capitalized sentence leads that are never assignees
	notAssignees = map[string]bool{
		"The": true, "This": true, "That": true, "These": true, "Those": true,
		"We": true, "They": true, "He": true, "She": true, "It": true,
		"You": true, "Someone": true, "Somebody": true, "Everyone": true,
		"Anyone": true, "Nobody": true, "Let": true, "Please": true,
		"Our": true, "Their": true, "Team": true, "There": true,
	}

	dueDateRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:by|before|due|on)\s+((?:next |this )?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)|tomorrow|next week|next month|end of (?:the )?month|\d{4}-\d{1,2}-\d{1,2})\b`),
		regexp.MustCompile(`(?i)\bin ((?:a|an|one|two|three|four|five|six|seven|eight|nine|ten|\d+) (?:days?|weeks?|months?|hours?))\b`),
		regexp.MustCompile(`(?i)\b(tomorrow|next week|next month)\b`),
		regexp.MustCompile(`\b((?:next |this )?(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday))\b`),
	}
)

// Extractor finds action items through two independent passes, a rule-based
// one over sentences and a generation-backed one through the model gateway,
// then merges, deduplicates, and confidence-filters the union. The
// generation pass degrading never hides rule results.
type Extractor struct {
	gen                 Generator
	minConfidence       float64
	similarityThreshold float64
	logger              *zap.Logger
}

func New(gen Generator, minConfidence, similarityThreshold float64, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if similarityThreshold <= 0 || similarityThreshold > 1 {
		similarityThreshold = 0.6
	}
	return &Extractor{
		gen:                 gen,
		minConfidence:       minConfidence,
		similarityThreshold: similarityThreshold,
		logger:              logger,
	}
}

// Extract runs both passes and returns the merged, filtered item list.
// Relative due dates resolve against ref.
func (e *Extractor) Extract(ctx context.Context, nt entities.NormalizedTranscript, language string, ref time.Time) []entities.ActionItem {
	items := e.rulePass(nt, ref)

	generated := e.generationPass(ctx, nt, language, ref)
	items = append(items, generated...)

	items = e.dedupe(items)

	filtered := items[:0]
	for _, it := range items {
		if it.Confidence >= e.minConfidence {
			filtered = append(filtered, it)
		}
	}
	return filtered
}

// rulePass scans each sentence for commitment, assignment, and deadline
// cues. Confidence grows with the number of distinct cue types matched.
func (e *Extractor) rulePass(nt entities.NormalizedTranscript, ref time.Time) []entities.ActionItem {
	var items []entities.ActionItem

	for _, sentence := range nt.Sentences {
		text := strings.TrimRight(sentence.Text, ".!?。！？;； ")
		if text == "" {
			continue
		}

		hasCommitment := commitmentRe.MatchString(text)
		hasImperative := imperativeRe.MatchString(text)
		nameMatch := nameTaskRe.FindStringSubmatch(text)
		if nameMatch != nil && notAssignees[nameMatch[1]] {
			nameMatch = nil
		}

		if !hasCommitment && !hasImperative && nameMatch == nil {
			continue
		}

		assignee := ""
		hasAssignment := false
		switch {
		case nameMatch != nil:
			assignee = nameMatch[1]
			hasAssignment = true
		case firstPersonRe.MatchString(text):
			if sentence.SegmentIndex >= 0 && sentence.SegmentIndex < len(nt.Segments) {
				assignee = nt.Segments[sentence.SegmentIndex].SpeakerID
				hasAssignment = true
			}
		}

		dueDate, dueText := findDueDate(text, ref)
		hasDeadline := dueText != ""

		cueTypes := 0
		for _, matched := range []bool{hasCommitment, hasImperative, hasAssignment, hasDeadline} {
			if matched {
				cueTypes++
			}
		}
		confidence := confidenceBase + confidencePerCue*float64(cueTypes)
		if confidence > 1.0 {
			confidence = 1.0
		}

		item := entities.NewActionItem(taskPhrase(text), entities.ItemSourceRule, confidence)
		item.Assignee = assignee
		item.DueDate = dueDate
		items = append(items, item)
	}
	return items
}

type generatedItem struct {
	Text     string `json:"text"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"due_date"`
}

// generationPass asks the gateway for a structured item list. Any gateway
// error makes this pass contribute nothing; the rule pass is unaffected.
func (e *Extractor) generationPass(ctx context.Context, nt entities.NormalizedTranscript, language string, ref time.Time) []entities.ActionItem {
	if e.gen == nil || strings.TrimSpace(nt.FullText) == "" {
		return nil
	}

	var raw []generatedItem
	if err := e.gen.GenerateJSON(ctx, buildExtractionPrompt(nt.FullText, language), &raw); err != nil {
		e.logger.Warn("generation pass degraded, keeping rule results only", zap.Error(err))
		return nil
	}

	items := make([]entities.ActionItem, 0, len(raw))
	for _, g := range raw {
		text := strings.TrimSpace(g.Text)
		if text == "" {
			continue
		}
		confidence := generationBase
		item := entities.NewActionItem(text, entities.ItemSourceGeneration, 0)
		if a := strings.TrimSpace(g.Assignee); a != "" && !strings.EqualFold(a, "null") {
			item.Assignee = a
			confidence += generationBonus
		}
		if d := strings.TrimSpace(g.DueDate); d != "" && !strings.EqualFold(d, "null") {
			if t, ok := dates.Resolve(d, ref); ok {
				item.DueDate = &t
				confidence += generationBonus
			}
		}
		if confidence > generationCeiling {
			confidence = generationCeiling
		}
		item.Confidence = confidence
		items = append(items, item)
	}
	return items
}

// dedupe collapses items whose normalized texts overlap at or above the
// similarity threshold, keeping the higher-confidence item. The survivor
// picks up an assignee or due date from the discarded duplicate when it
// lacks its own.
func (e *Extractor) dedupe(items []entities.ActionItem) []entities.ActionItem {
	var kept []entities.ActionItem

	for _, item := range items {
		merged := false
		for i := range kept {
			if tokenOverlap(item.Text, kept[i].Text) < e.similarityThreshold {
				continue
			}
			winner, loser := kept[i], item
			if item.Confidence > kept[i].Confidence {
				winner, loser = item, kept[i]
			}
			if winner.Assignee == "" {
				winner.Assignee = loser.Assignee
			}
			if winner.DueDate == nil {
				winner.DueDate = loser.DueDate
			}
			kept[i] = winner
			merged = true
			break
		}
		if !merged {
			kept = append(kept, item)
		}
	}
	return kept
}

// tokenOverlap is the share of shared tokens relative to the larger item
func tokenOverlap(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if tb[t] {
			shared++
		}
	}
	larger := len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	return float64(shared) / float64(larger)
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f != "" {
			set[f] = true
		}
	}
	return set
}

// taskPhrase strips the committing lead-in ("I will", "Sarah should") so the
// stored text is the task itself.
func taskPhrase(sentence string) string {
	stripped := leadInRe.ReplaceAllString(sentence, "")
	stripped = strings.TrimSpace(stripped)
	if len(stripped) < 3 {
		return sentence
	}
	return stripped
}

func findDueDate(text string, ref time.Time) (*time.Time, string) {
	for _, re := range dueDateRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		mention := m[len(m)-1]
		if t, ok := dates.Resolve(mention, ref); ok {
			return &t, mention
		}
		return nil, mention
	}
	return nil, ""
}

func buildExtractionPrompt(fullText, language string) string {
	var b strings.Builder
	b.WriteString("Extract every action item from this meeting transcript.\n")
	b.WriteString(`Respond with a JSON array of objects shaped {"text": string, "assignee": string or null, "due_date": string or null}.`)
	b.WriteByte('\n')
	b.WriteString("Use null for unknown fields. Respond with the JSON array only.\n")
	if language != "" && language != "auto" {
		fmt.Fprintf(&b, "Keep item text in the transcript language (%s).\n", language)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(fullText)
	return b.String()
}
