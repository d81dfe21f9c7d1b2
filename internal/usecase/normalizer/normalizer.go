package normalizer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/johnquangdev/meeting-insights/errors"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/pkg/validator"
)

// englishFillers are removed as standalone words, longest phrase first so
// "you know" goes before "know" would ever match.
var englishFillers = []string{
	"you know", "i mean", "sort of", "kind of",
	"um", "uh", "uhh", "erm", "hmm", "mhm",
}

// chineseFillers are removed by plain substring replacement; CJK text has no
// word boundaries to anchor on.
var chineseFillers = []string{
	"呃", "嗯嗯", "嗯", "啊", "哎", "唔",
	"这个这个", "那个那个", "就是说",
}

var englishQuestionLeads = map[string]bool{
	"what": true, "who": true, "whom": true, "whose": true, "where": true,
	"when": true, "why": true, "how": true, "which": true,
	"is": true, "are": true, "was": true, "were": true, "am": true,
	"do": true, "does": true, "did": true,
	"can": true, "could": true, "will": true, "would": true,
	"should": true, "shall": true, "have": true, "has": true,
}

var chineseQuestionParticles = []string{"吗", "呢", "吧", "什么", "怎么", "如何", "是否", "多少"}

const sentenceTerminators = ".!?;。！？；…"

var (
	fillerPatterns   []*regexp.Regexp
	whitespaceRun    = regexp.MustCompile(`\s+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([,.!?;:])`)
	danglingComma    = regexp.MustCompile(`^[\s,，]+`)
)

const collapsiblePunct = ",.!?;。，！？；"

func init() {
	for _, f := range englishFillers {
		fillerPatterns = append(fillerPatterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(f)+`\b[,，]?`))
	}
}

// TextNormalizer cleans raw transcript segments and re-splits them into
// sentence units. Normalization is deterministic and idempotent: it never
// consults the network or any random source, and running it on its own
// output changes nothing.
type TextNormalizer struct {
	validator *validator.SegmentValidator
	logger    *zap.Logger
}

func New(logger *zap.Logger) *TextNormalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextNormalizer{
		validator: validator.New(),
		logger:    logger,
	}
}

// Normalize validates the batch, cleans each segment's text, and produces
// the sentence-level view used by the analysis stages. The only failure mode
// is malformed input; content never causes an error.
func (n *TextNormalizer) Normalize(segments []entities.TranscriptSegment) (entities.NormalizedTranscript, error) {
	if err := n.validator.ValidateBatch(segments); err != nil {
		return entities.NormalizedTranscript{}, apperrors.ErrMalformedTranscript(err)
	}

	cleaned := make([]entities.TranscriptSegment, 0, len(segments))
	var sentences []entities.Sentence
	var full strings.Builder

	for _, seg := range segments {
		text := CleanText(seg.Text)
		if text == "" {
			continue
		}

		out := seg
		out.Text = text
		idx := len(cleaned)
		cleaned = append(cleaned, out)

		for _, s := range splitSentences(text) {
			sentences = append(sentences, entities.Sentence{Text: s, SegmentIndex: idx})
		}

		if full.Len() > 0 {
			full.WriteByte(' ')
		}
		full.WriteString(text)
	}

	n.logger.Debug("transcript normalized",
		zap.Int("segments_in", len(segments)),
		zap.Int("segments_out", len(cleaned)),
		zap.Int("sentences", len(sentences)),
	)

	return entities.NormalizedTranscript{
		Segments:  cleaned,
		Sentences: sentences,
		FullText:  full.String(),
	}, nil
}

// CleanText strips filler tokens, repairs spacing and punctuation, and
// guarantees a terminal punctuation mark. Punctuation repair only adds
// characters; content words are never dropped beyond the filler stoplist.
func CleanText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	for _, p := range fillerPatterns {
		text = p.ReplaceAllString(text, "")
	}
	for _, f := range chineseFillers {
		text = strings.ReplaceAll(text, f, "")
	}

	text = whitespaceRun.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = collapseRepeatedPunct(text)
	text = danglingComma.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if text == "" || text == "," || text == "，" {
		return ""
	}

	if !endsWithTerminator(text) {
		if looksLikeQuestion(text) {
			text += "?"
		} else {
			text += "."
		}
	}
	return text
}

// collapseRepeatedPunct reduces a run of the same punctuation rune to a
// single occurrence, so "done!!!" becomes "done!".
func collapseRepeatedPunct(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var prev rune
	for _, r := range text {
		if r == prev && strings.ContainsRune(collapsiblePunct, r) {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func endsWithTerminator(text string) bool {
	runes := []rune(text)
	last := runes[len(runes)-1]
	return strings.ContainsRune(sentenceTerminators, last)
}

// looksLikeQuestion applies the trailing-particle and leading-word
// heuristics: CJK question particles anywhere near the end, or an English
// interrogative lead word.
func looksLikeQuestion(text string) bool {
	for _, p := range chineseQuestionParticles {
		if strings.Contains(text, p) {
			return true
		}
	}
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return false
	}
	return englishQuestionLeads[strings.Trim(fields[0], ",.'\"")]
}

// splitSentences cuts cleaned text at terminal punctuation, keeping the
// terminator attached to its sentence.
func splitSentences(text string) []string {
	var out []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if strings.ContainsRune(sentenceTerminators, r) {
			s := strings.TrimSpace(current.String())
			if s != "" && !isPunctOnly(s) {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" && !isPunctOnly(s) {
		out = append(out, s)
	}
	return out
}

func isPunctOnly(s string) bool {
	return strings.Trim(s, sentenceTerminators+",， ") == ""
}
