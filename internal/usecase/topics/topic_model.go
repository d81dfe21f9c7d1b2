package topics

import (
	"fmt"
	"sort"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

const topicModelIterations = 10

// topicModel fits a simple statistical topic model over the sentence set:
// sentences are clustered in term-frequency space (farthest-first seeding,
// then fixed-round reassignment, fully deterministic), and each cluster
// surfaces its highest-weight term as a topic. It needs enough sentences to
// form clusters; short inputs return an error so the caller can skip this
// strategy without touching the others.
func topicModel(sentenceTokens [][]string, k int) ([]entities.KeyTopic, error) {
	if len(sentenceTokens) < 2 {
		return nil, fmt.Errorf("insufficient data: %d sentences", len(sentenceTokens))
	}
	clusters := k
	if clusters > len(sentenceTokens) {
		clusters = len(sentenceTokens)
	}

	vecs := make([]map[string]float64, len(sentenceTokens))
	for i, toks := range sentenceTokens {
		vecs[i] = termFrequencies(toks)
	}

	centroids := seedCentroids(vecs, clusters)
	assignment := make([]int, len(vecs))

	for iter := 0; iter < topicModelIterations; iter++ {
		changed := false
		for i, v := range vecs {
			best, bestSim := 0, -1.0
			for c, centroid := range centroids {
				if sim := cosine(v, centroid); sim > bestSim {
					best, bestSim = c, sim
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}
		centroids = recomputeCentroids(vecs, assignment, clusters)
	}

	scores := make(map[string]float64, clusters)
	for c := 0; c < clusters; c++ {
		label, weight := topTerm(centroids[c])
		if label == "" {
			continue
		}
		var total float64
		for _, w := range centroids[c] {
			total += w
		}
		score := weight / total
		if prev, ok := scores[label]; !ok || score > prev {
			scores[label] = score
		}
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("no topic terms surfaced")
	}
	return rankAndTruncate(scores, k, entities.TopicMethodTopicModel), nil
}

// seedCentroids picks initial centroids farthest-first: the longest sentence
// starts, then each next seed maximizes its minimum distance to the seeds
// chosen so far. Ties resolve to the lowest index.
func seedCentroids(vecs []map[string]float64, k int) []map[string]float64 {
	first, firstLen := 0, -1
	for i, v := range vecs {
		if l := len(v); l > firstLen {
			first, firstLen = i, l
		}
	}

	chosen := []int{first}
	for len(chosen) < k {
		next, nextDist := -1, -1.0
		for i, v := range vecs {
			if containsInt(chosen, i) {
				continue
			}
			minDist := 2.0
			for _, c := range chosen {
				if d := 1 - cosine(v, vecs[c]); d < minDist {
					minDist = d
				}
			}
			if minDist > nextDist {
				next, nextDist = i, minDist
			}
		}
		if next == -1 {
			break
		}
		chosen = append(chosen, next)
	}

	centroids := make([]map[string]float64, len(chosen))
	for i, idx := range chosen {
		centroids[i] = copyVec(vecs[idx])
	}
	return centroids
}

func recomputeCentroids(vecs []map[string]float64, assignment []int, k int) []map[string]float64 {
	centroids := make([]map[string]float64, k)
	for c := range centroids {
		centroids[c] = make(map[string]float64)
	}
	for i, v := range vecs {
		c := centroids[assignment[i]]
		for t, w := range v {
			c[t] += w
		}
	}
	return centroids
}

func topTerm(centroid map[string]float64) (string, float64) {
	terms := make([]string, 0, len(centroid))
	for t := range centroid {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	var best string
	var bestW float64
	for _, t := range terms {
		if centroid[t] > bestW {
			best, bestW = t, centroid[t]
		}
	}
	return best, bestW
}

func containsInt(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func copyVec(v map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(v))
	for t, w := range v {
		out[t] = w
	}
	return out
}
