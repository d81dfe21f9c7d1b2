package topics

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"if": true, "then": true, "so": true, "of": true, "to": true, "in": true,
	"on": true, "at": true, "for": true, "with": true, "from": true, "by": true,
	"about": true, "as": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "being": true, "am": true, "do": true, "does": true,
	"did": true, "have": true, "has": true, "had": true, "will": true, "would": true,
	"can": true, "could": true, "should": true, "shall": true, "may": true,
	"might": true, "must": true, "i": true, "you": true, "he": true, "she": true,
	"it": true, "we": true, "they": true, "me": true, "him": true, "her": true,
	"us": true, "them": true, "my": true, "your": true, "his": true, "its": true,
	"our": true, "their": true, "this": true, "that": true, "these": true,
	"those": true, "there": true, "here": true, "what": true, "who": true,
	"when": true, "where": true, "why": true, "how": true, "not": true,
	"no": true, "yes": true, "all": true, "any": true, "some": true, "just": true,
	"very": true, "really": true, "also": true, "too": true, "more": true,
	"most": true, "other": true, "into": true, "than": true, "up": true,
	"down": true, "out": true, "over": true, "let": true, "lets": true,
	"okay": true, "ok": true, "yeah": true, "right": true, "well": true,
	"的": true, "了": true, "是": true, "我": true, "你": true, "他": true,
	"她": true, "我们": true, "和": true, "在": true, "有": true, "也": true,
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r)
}

// tokenize lowercases and splits text into content tokens, dropping
// stopwords and punctuation. Latin words split on non-alphanumeric runs;
// contiguous Han runs are kept as single tokens since there are no word
// boundaries to split on.
func tokenize(text string) []string {
	var tokens []string
	var word strings.Builder
	var han strings.Builder

	flushWord := func() {
		if word.Len() > 0 {
			t := strings.ToLower(word.String())
			if len(t) > 1 && !stopwords[t] {
				tokens = append(tokens, t)
			}
			word.Reset()
		}
	}
	flushHan := func() {
		if han.Len() > 0 {
			t := han.String()
			if !stopwords[t] {
				tokens = append(tokens, t)
			}
			han.Reset()
		}
	}

	for _, r := range text {
		switch {
		case isCJK(r):
			flushWord()
			han.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			flushHan()
			word.WriteRune(r)
		default:
			flushWord()
			flushHan()
		}
	}
	flushWord()
	flushHan()
	return tokens
}

// candidateNGrams produces unigram and bigram candidates from a token
// sequence, in first-appearance order.
func candidateNGrams(tokens []string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for i, t := range tokens {
		add(t)
		if i+1 < len(tokens) {
			add(t + " " + tokens[i+1])
		}
	}
	return out
}
