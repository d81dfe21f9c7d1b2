package summarizer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// Generator is the slice of the model gateway the summarizer needs
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const (
	// generative output shorter than this is degenerate and falls back
	minGenerativeLength = 20
	truncatedLimit      = 100
)

var lengthInstructions = map[entities.SummaryLength]string{
	entities.SummaryLengthShort:  "Write a one or two sentence summary.",
	entities.SummaryLengthMedium: "Write a concise single-paragraph summary.",
	entities.SummaryLengthLong:   "Write a detailed summary covering every discussion point, decisions made, and follow-ups.",
}

// Summarizer produces a meeting summary through a strict fallback chain:
// generative, then extractive, then truncated. The chain stops at the first
// state that succeeds, and the resulting Summary records which state that
// was.
type Summarizer struct {
	gen             Generator
	extractiveRatio float64
	logger          *zap.Logger
}

func New(gen Generator, extractiveRatio float64, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if extractiveRatio <= 0 || extractiveRatio > 1 {
		extractiveRatio = 0.33
	}
	return &Summarizer{gen: gen, extractiveRatio: extractiveRatio, logger: logger}
}

// Summarize never fails: every degradation path ends in a Summary
func (s *Summarizer) Summarize(ctx context.Context, nt entities.NormalizedTranscript, length entities.SummaryLength, language string) entities.Summary {
	if _, ok := lengthInstructions[length]; !ok {
		length = entities.SummaryLengthMedium
	}

	if text, ok := s.generative(ctx, nt.FullText, length, language); ok {
		return entities.Summary{Text: text, Method: entities.SummaryMethodGenerative, RequestedLength: length}
	}
	if text, ok := s.extractive(nt.Sentences); ok {
		return entities.Summary{Text: text, Method: entities.SummaryMethodExtractive, RequestedLength: length}
	}
	return entities.Summary{Text: truncate(nt.FullText), Method: entities.SummaryMethodTruncated, RequestedLength: length}
}

func (s *Summarizer) generative(ctx context.Context, fullText string, length entities.SummaryLength, language string) (string, bool) {
	if s.gen == nil || strings.TrimSpace(fullText) == "" {
		return "", false
	}

	prompt := buildPrompt(fullText, length, language)
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn("generative summary failed, falling back to extractive", zap.Error(err))
		return "", false
	}
	out = strings.TrimSpace(out)
	if len(out) < minGenerativeLength {
		s.logger.Warn("generative summary degenerate, falling back to extractive",
			zap.Int("length", len(out)),
		)
		return "", false
	}
	return out, true
}

// extractive selects the leading ceil(ratio*N) sentences in input order
func (s *Summarizer) extractive(sentences []entities.Sentence) (string, bool) {
	if len(sentences) == 0 {
		return "", false
	}
	n := int(math.Ceil(s.extractiveRatio * float64(len(sentences))))
	if n < 1 {
		n = 1
	}
	if n > len(sentences) {
		n = len(sentences)
	}

	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = sentences[i].Text
	}
	return strings.Join(parts, " "), true
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) > truncatedLimit {
		runes = runes[:truncatedLimit]
	}
	return string(runes) + "..."
}

func buildPrompt(fullText string, length entities.SummaryLength, language string) string {
	var b strings.Builder
	b.WriteString("You are summarizing a meeting transcript.\n")
	b.WriteString(lengthInstructions[length])
	b.WriteByte('\n')
	if language != "" && language != "auto" {
		fmt.Fprintf(&b, "Respond in the language with code %q.\n", language)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(fullText)
	return b.String()
}
