package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 4}

	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-3, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 5}), 1e-9)
}

func TestCosine_ZeroNorm(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, 0.0, Cosine(zero, []float32{1, 2, 3}))
	assert.Equal(t, 0.0, Cosine([]float32{1, 2, 3}, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
	assert.Equal(t, 0.0, Cosine(nil, nil))
}

func TestCosine_LengthMismatch(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{1, 2}, []float32{1, 2, 3}))
}

func TestRank_OrdersByDescendingSimilarity(t *testing.T) {
	q := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},   // 0.0
		{1, 0},   // 1.0
		{1, 1},   // ~0.707
		{-1, 0},  // -1.0
	}

	hits := Rank(q, candidates, 3)
	require.Len(t, hits, 3)
	assert.Equal(t, []int{1, 2, 0}, indices(hits))
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestRank_Count(t *testing.T) {
	q := []float32{1, 2}
	candidates := [][]float32{{1, 2}, {2, 1}, {0, 1}, {1, 0}, {3, 3}}

	tests := []struct {
		name string
		k    int
		want int
	}{
		{name: "k below n", k: 2, want: 2},
		{name: "k equals n", k: 5, want: 5},
		{name: "k above n", k: 50, want: 5},
		{name: "k zero", k: 0, want: 0},
		{name: "k negative", k: -3, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := Rank(q, candidates, tt.k)
			require.Len(t, hits, tt.want)
			seen := map[int]bool{}
			for _, h := range hits {
				assert.GreaterOrEqual(t, h.Index, 0)
				assert.Less(t, h.Index, len(candidates))
				assert.False(t, seen[h.Index], "duplicate index %d", h.Index)
				seen[h.Index] = true
			}
		})
	}
}

func TestRank_EmptyCandidates(t *testing.T) {
	assert.Empty(t, Rank([]float32{1}, nil, 3))
}

func TestRank_TiesKeepCandidateOrder(t *testing.T) {
	q := []float32{1, 0}
	candidates := [][]float32{
		{0, 1},
		{2, 0},
		{0, 0},
		{5, 0},
		{0, 3},
	}

	hits := Rank(q, candidates, 5)
	assert.Equal(t, []int{1, 3, 0, 2, 4}, indices(hits))
}

func TestRank_Deterministic(t *testing.T) {
	q := []float32{0.3, -0.2, 0.9}
	candidates := [][]float32{{0.1, 0.1, 0.1}, {0.3, -0.2, 0.9}, {0, 0, 0}, {0.1, 0.1, 0.1}, {-1, 0, 0}}

	first := Rank(q, candidates, 4)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Rank(q, candidates, 4))
	}
}

func indices(hits []Hit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Index
	}
	return out
}
