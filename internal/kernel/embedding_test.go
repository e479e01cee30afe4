package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmbedPageContextStableAndUnit(t *testing.T) {
	ctx := PageContext{
		URL:                "https://example.gov/items/42?x=1",
		Domain:              "example.gov",
		PageType:            PageTypeDetail,
		HasForm:             true,
		HasTable:            true,
		ContentLength:       1200,
		AvailableSelectors:  []string{"table.results", "form#search"},
		Language:            "en",
	}

	a := EmbedPageContext(ctx)
	b := EmbedPageContext(ctx)
	require.Equal(t, a, b, "embedding must be byte-identical across runs")
	require.Len(t, a, Dim)

	var sumSq float64
	for _, x := range a {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	require.InDelta(t, 1.0, norm, 1e-6)
}

func TestEmbedPageContextZeroInputYieldsZeroVector(t *testing.T) {
	v := EmbedPageContext(PageContext{})
	for _, x := range v {
		require.Zero(t, x)
	}
}

func TestEmbedPageContextMalformedURLFallsBack(t *testing.T) {
	v := EmbedPageContext(PageContext{URL: "://not a url", Domain: "example.com"})
	require.Len(t, v, Dim)
	// Domain slots still populate even though URL structure slots stay zero.
	require.NotZero(t, v[2])
}

func TestCosineSimilaritySafety(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	require.Equal(t, 0.0, CosineSimilarity(a, b))

	zero := []float32{0, 0, 0}
	require.Equal(t, 0.0, CosineSimilarity(zero, a))
	require.Equal(t, 0.0, CosineSimilarity(a, zero))

	same := CosineSimilarity(a, a)
	require.InDelta(t, 1.0, same, 1e-9)

	mismatched := CosineSimilarity(a, []float32{1, 0})
	require.Equal(t, 0.0, mismatched)
}

func TestFindTopKOrdersBySimilarityDescending(t *testing.T) {
	query := []float32{1, 0}
	corpus := [][]float32{
		{0, 1},    // orthogonal -> 0
		{1, 0},    // identical -> 1
		{0.7, 0.7}, // 45 degrees -> ~0.707
	}

	results := FindTopK(query, corpus, 2)
	require.Len(t, results, 2)
	require.Equal(t, 1, results[0].Index)
	require.InDelta(t, 1.0, results[0].Similarity, 1e-9)
	require.Equal(t, 2, results[1].Index)
}

func TestEmbedSkillStable(t *testing.T) {
	shape := SkillShape{
		DomainPatterns:    []string{"example.com"},
		URLPatterns:       []string{"https://example.com/items/[0-9]+"},
		PageType:          PageTypeDetail,
		RequiredSelectors: []string{"table", "#next"},
		Language:          "en",
		Actions: []ActionFeature{
			{Type: ActionNavigate, Success: true},
			{Type: ActionClick, Success: true},
			{Type: ActionExtract, Success: true},
		},
	}
	a := EmbedSkill(shape)
	b := EmbedSkill(shape)
	require.Equal(t, a, b)
	require.Len(t, a, Dim)
}

func TestStringHashDeterministic(t *testing.T) {
	require.Equal(t, stringHash("hello"), stringHash("hello"))
	require.NotEqual(t, stringHash("hello"), stringHash("world"))
}
