package topics

import (
	"math"
	"sort"
	"strings"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// embeddingRank scores candidate n-grams against the whole document in
// bag-of-words space: each candidate is represented by the aggregated term
// profile of the sentences it appears in, and ranked by cosine similarity
// to the document's own term profile. Candidates that echo the document's
// dominant vocabulary rank highest.
func embeddingRank(sentenceTokens [][]string, docTokens []string, k int) []entities.KeyTopic {
	if len(docTokens) == 0 {
		return nil
	}

	docVec := termFrequencies(docTokens)
	candidates := candidateNGrams(docTokens)

	scores := make(map[string]float64, len(candidates))
	for _, cand := range candidates {
		profile := candidateProfile(cand, sentenceTokens)
		if len(profile) == 0 {
			continue
		}
		if s := cosine(profile, docVec); s > 0 {
			scores[cand] = s
		}
	}
	return rankAndTruncate(scores, k, entities.TopicMethodEmbeddingRank)
}

// candidateProfile sums the term frequencies of every sentence containing
// the candidate. Bigram candidates require the two tokens adjacent in the
// sentence.
func candidateProfile(cand string, sentenceTokens [][]string) map[string]float64 {
	profile := make(map[string]float64)
	for _, toks := range sentenceTokens {
		if !containsCandidate(toks, cand) {
			continue
		}
		for _, t := range toks {
			profile[t]++
		}
	}
	return profile
}

func containsCandidate(tokens []string, cand string) bool {
	first, rest, isBigram := strings.Cut(cand, " ")
	for i, t := range tokens {
		if t != first {
			continue
		}
		if !isBigram {
			return true
		}
		if i+1 < len(tokens) && tokens[i+1] == rest {
			return true
		}
	}
	return false
}

func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// cosine similarity of two sparse non-negative vectors; result is in [0,1].
// Terms are visited in sorted order so the floating-point accumulation, and
// therefore the score, is identical across runs.
func cosine(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for _, t := range sortedTerms(a) {
		va := a[t]
		na += va * va
		if vb, ok := b[t]; ok {
			dot += va * vb
		}
	}
	for _, t := range sortedTerms(b) {
		nb += b[t] * b[t]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func sortedTerms(v map[string]float64) []string {
	terms := make([]string, 0, len(v))
	for t := range v {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
