package entity

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/dates"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
	regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December) \d{1,2}(?:st|nd|rd|th)?(?:,? \d{4})?\b`),
	regexp.MustCompile(`\b(?:next |this |last )?(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\b`),
	regexp.MustCompile(`(?i)\b(?:today|tomorrow|yesterday)\b`),
	regexp.MustCompile(`(?i)\bin (?:a|an|one|two|three|four|five|six|seven|eight|nine|ten|\d+) (?:days?|weeks?|months?|hours?)\b`),
	regexp.MustCompile(`(?i)\b(?:next week|next month|end of (?:the )?month)\b`),
	regexp.MustCompile(`\bQ[1-4]\b`),
	regexp.MustCompile(`\d{4}年\d{1,2}月\d{1,2}日`),
	regexp.MustCompile(`\d{1,2}月\d{1,2}日`),
	regexp.MustCompile(`[本下]周[一二三四五六日]`),
	regexp.MustCompile(`下个月|月底`),
}

var orgPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:[A-Z][A-Za-z0-9&]*\s)*[A-Z][A-Za-z0-9&]*\s(?:Inc\.?|Corp\.?|Ltd\.?|LLC|Co\.|Company|Team|Department|Dept\.?|Group|Labs)\b`),
	regexp.MustCompile(`\p{Han}+(?:公司|部门|团队|小组)`),
}

var personPattern = regexp.MustCompile(`\b[A-Z][a-z]+(?: [A-Z][a-z]+){0,2}\b`)

// notNames are capitalized words that start sentences or name calendar
// units, never people.
var notNames = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"We": true, "They": true, "He": true, "She": true, "It": true, "I": true,
	"And": true, "But": true, "So": true, "If": true, "Then": true, "Also": true,
	"Yes": true, "No": true, "Ok": true, "Okay": true, "Please": true,
	"Let": true, "Our": true, "Your": true, "My": true, "His": true, "Her": true,
	"What": true, "When": true, "Where": true, "Why": true, "How": true,
	"Who": true, "Can": true, "Could": true, "Will": true, "Would": true,
	"Should": true, "Did": true, "Does": true, "Do": true, "Is": true,
	"Are": true, "Was": true, "Were": true, "Has": true, "Have": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
	"January": true, "February": true, "March": true, "April": true,
	"May": true, "June": true, "July": true, "August": true,
	"September": true, "October": true, "November": true, "December": true,
}

type candidate struct {
	text     string
	kind     entities.EntityKind
	start    int
	end      int
	priority int
}

// Extractor finds people, organizations, and dates in normalized text using
// pattern heuristics, resolving relative date expressions against a
// reference timestamp.
type Extractor struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract returns the entities found in text, ordered by character span.
// Date expressions that cannot be resolved against ref are kept as raw text
// with kind "other" rather than dropped. The language hint is advisory; both
// English and Han-script patterns always run.
func (e *Extractor) Extract(text, language string, ref time.Time) []entities.Entity {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var cands []candidate

	for _, p := range datePatterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			raw := text[loc[0]:loc[1]]
			kind := entities.EntityKindDate
			if _, ok := dates.Resolve(raw, ref); !ok {
				kind = entities.EntityKindOther
			}
			cands = append(cands, candidate{raw, kind, loc[0], loc[1], 0})
		}
	}
	for _, p := range orgPatterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			cands = append(cands, candidate{text[loc[0]:loc[1]], entities.EntityKindOrganization, loc[0], loc[1], 1})
		}
	}
	for _, loc := range personPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if !plausiblePersonName(text, raw, loc[0]) {
			continue
		}
		cands = append(cands, candidate{raw, entities.EntityKindPerson, loc[0], loc[1], 2})
	}

	accepted := resolveOverlaps(cands)

	out := make([]entities.Entity, 0, len(accepted))
	for _, c := range accepted {
		out = append(out, entities.Entity{Text: c.text, Kind: c.kind, Start: c.start, End: c.end})
	}
	e.logger.Debug("entities extracted",
		zap.String("language", language),
		zap.Int("count", len(out)),
	)
	return out
}

// plausiblePersonName filters capitalized matches that are sentence starts
// or function words rather than names.
func plausiblePersonName(text, match string, start int) bool {
	words := strings.Fields(match)
	if notNames[words[0]] {
		// "This Friday" style matches start with a function word
		return false
	}
	for _, w := range words[1:] {
		if notNames[w] {
			return false
		}
	}
	// a lone capitalized word at a sentence start is usually just
	// capitalization, not a name
	if len(words) == 1 && atSentenceStart(text, start) {
		return false
	}
	return true
}

func atSentenceStart(text string, pos int) bool {
	for i := pos - 1; i >= 0; i-- {
		c := text[i]
		if c == ' ' || c == '\n' || c == '"' {
			continue
		}
		return c == '.' || c == '!' || c == '?' || c == ';'
	}
	return true
}

// resolveOverlaps keeps at most one candidate per text span: dates beat
// organizations beat persons, longer spans beat shorter ones.
func resolveOverlaps(cands []candidate) []candidate {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].priority != cands[j].priority {
			return cands[i].priority < cands[j].priority
		}
		li, lj := cands[i].end-cands[i].start, cands[j].end-cands[j].start
		if li != lj {
			return li > lj
		}
		return cands[i].start < cands[j].start
	})

	var accepted []candidate
	for _, c := range cands {
		overlaps := false
		for _, a := range accepted {
			if c.start < a.end && a.start < c.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })
	return accepted
}
