package topics

import (
	"sort"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

const (
	graphWindow     = 4
	graphDamping    = 0.85
	graphIterations = 30
)

// graphRank builds a co-occurrence graph over document tokens (edges between
// terms appearing within a small sliding window) and ranks terms by
// PageRank-style centrality. Scores are normalized so the most central term
// scores 1.
func graphRank(docTokens []string, k int) []entities.KeyTopic {
	if len(docTokens) == 0 {
		return nil
	}

	// weighted undirected adjacency
	edges := make(map[string]map[string]float64)
	addEdge := func(a, b string) {
		if a == b {
			return
		}
		if edges[a] == nil {
			edges[a] = make(map[string]float64)
		}
		edges[a][b]++
	}
	for i, t := range docTokens {
		for j := i + 1; j < len(docTokens) && j < i+graphWindow; j++ {
			addEdge(t, docTokens[j])
			addEdge(docTokens[j], t)
		}
	}
	if len(edges) == 0 {
		// single distinct token, no co-occurrence structure
		return rankAndTruncate(map[string]float64{docTokens[0]: 1}, k, entities.TopicMethodGraphRank)
	}

	// Fixed node and neighbor order keeps the floating-point sums, and so
	// the final scores, identical across runs.
	nodes := make([]string, 0, len(edges))
	for node := range edges {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	neighbors := make(map[string][]string, len(edges))
	for node, nbrs := range edges {
		ns := make([]string, 0, len(nbrs))
		for nbr := range nbrs {
			ns = append(ns, nbr)
		}
		sort.Strings(ns)
		neighbors[node] = ns
	}

	outWeight := make(map[string]float64, len(edges))
	for _, node := range nodes {
		for _, nbr := range neighbors[node] {
			outWeight[node] += edges[node][nbr]
		}
	}

	rank := make(map[string]float64, len(edges))
	for _, node := range nodes {
		rank[node] = 1.0
	}
	for iter := 0; iter < graphIterations; iter++ {
		next := make(map[string]float64, len(rank))
		for _, node := range nodes {
			var sum float64
			for _, nbr := range neighbors[node] {
				sum += edges[node][nbr] / outWeight[nbr] * rank[nbr]
			}
			next[node] = (1 - graphDamping) + graphDamping*sum
		}
		rank = next
	}

	var max float64
	for _, node := range nodes {
		if r := rank[node]; r > max {
			max = r
		}
	}
	scores := make(map[string]float64, len(rank))
	for node, r := range rank {
		scores[node] = r / max
	}
	return rankAndTruncate(scores, k, entities.TopicMethodGraphRank)
}
