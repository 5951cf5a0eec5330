// Package ranker scores candidate vectors against a query vector by cosine
// similarity and returns the best candidates in descending order.
package ranker

import (
	"math"
	"sort"
)

// Hit is a candidate index with its similarity to the query.
type Hit struct {
	Index int
	Score float64
}

// Cosine returns dot(a,b)/(|a||b|). It is 0 when either vector has zero norm
// or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank returns the top min(k, len(candidates)) candidates ordered by
// descending similarity. Equal scores keep candidate order. k <= 0 yields nil.
func Rank(query []float32, candidates [][]float32, k int) []Hit {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	hits := make([]Hit, len(candidates))
	for i := range candidates {
		hits[i] = Hit{Index: i, Score: Cosine(query, candidates[i])}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}
