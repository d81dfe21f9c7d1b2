package topics

import (
	"sort"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// AllMethods is the default method selection: run every strategy and union
// the results. No cross-method deduplication happens here; callers merge by
// label if they want to.
var AllMethods = []entities.TopicMethod{
	entities.TopicMethodEmbeddingRank,
	entities.TopicMethodTopicModel,
	entities.TopicMethodGraphRank,
}

// Extractor produces ranked topic candidates using interchangeable
// strategies. All strategies are deterministic; identical input yields
// identical output.
type Extractor struct {
	topicCount int
	logger     *zap.Logger
}

func New(topicCount int, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topicCount < 1 {
		topicCount = 5
	}
	return &Extractor{topicCount: topicCount, logger: logger}
}

// Extract runs the selected strategies over the normalized transcript and
// returns up to topicCount topics per method. A strategy that cannot run
// (too little data for the topic model) contributes nothing; it never aborts
// the other strategies.
func (e *Extractor) Extract(nt entities.NormalizedTranscript, methods ...entities.TopicMethod) []entities.KeyTopic {
	if len(methods) == 0 {
		methods = AllMethods
	}

	sentenceTokens := make([][]string, 0, len(nt.Sentences))
	for _, s := range nt.Sentences {
		if toks := tokenize(s.Text); len(toks) > 0 {
			sentenceTokens = append(sentenceTokens, toks)
		}
	}
	docTokens := tokenize(nt.FullText)

	out := make([]entities.KeyTopic, 0, e.topicCount*len(methods))
	for _, m := range methods {
		var topics []entities.KeyTopic
		switch m {
		case entities.TopicMethodEmbeddingRank:
			topics = embeddingRank(sentenceTokens, docTokens, e.topicCount)
		case entities.TopicMethodTopicModel:
			var err error
			topics, err = topicModel(sentenceTokens, e.topicCount)
			if err != nil {
				e.logger.Warn("topic model skipped",
					zap.Int("sentences", len(sentenceTokens)),
					zap.Error(err),
				)
				continue
			}
		case entities.TopicMethodGraphRank:
			topics = graphRank(docTokens, e.topicCount)
		default:
			e.logger.Warn("unknown topic method requested", zap.String("method", string(m)))
			continue
		}
		out = append(out, topics...)
	}
	return out
}

// rankAndTruncate orders label/score pairs by score descending, breaking
// ties by label for determinism, and keeps the top k.
func rankAndTruncate(scores map[string]float64, k int, method entities.TopicMethod) []entities.KeyTopic {
	topics := make([]entities.KeyTopic, 0, len(scores))
	for label, score := range scores {
		topics = append(topics, entities.KeyTopic{Label: label, Score: score, Method: method})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Score != topics[j].Score {
			return topics[i].Score > topics[j].Score
		}
		return topics[i].Label < topics[j].Label
	})
	if len(topics) > k {
		topics = topics[:k]
	}
	return topics
}
