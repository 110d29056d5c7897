package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/tracelink/internal/config"
	"github.com/standardbeagle/tracelink/internal/confidence"
	tlerrors "github.com/standardbeagle/tracelink/internal/errors"
	"github.com/standardbeagle/tracelink/internal/logging"
	"github.com/standardbeagle/tracelink/internal/similarity"
	"github.com/standardbeagle/tracelink/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(t *testing.T) *similarity.Engine {
	t.Helper()
	e, err := similarity.NewEngine(config.Default().Similarity, similarity.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return e
}

func newRecommender(t *testing.T) *Recommender {
	t.Helper()
	cfg := config.Default().Recommendation
	cfg.Workers = 4
	r, err := New(newEngine(t), cfg, confidence.Max, WithLogger(logging.Discard()))
	require.NoError(t, err)
	return r
}

func phrase(id types.PhraseID, sentence int, words ...string) types.Phrase {
	return types.Phrase{ID: id, Sentence: sentence, Words: words}
}

func fixtureDocument() *types.Document {
	return &types.Document{
		Sentences: []types.Sentence{
			{Number: 1, Text: "The WebUI component sends requests to the Cache interface."},
			{Number: 2, Text: "The logging component writes to disk medium."},
			{Number: 3, Text: "The webui component renders pages."},
		},
		NamePhrases: []types.Phrase{
			phrase(1, 1, "WebUI"),
			phrase(2, 1, "Cache"),
			phrase(3, 2, "logging", "component"),
			phrase(4, 3, "webui"),
			phrase(5, 2, "disk"),
		},
		TypePhrases: []types.Phrase{
			phrase(10, 1, "component"),
			phrase(11, 1, "interface"),
			phrase(12, 3, "component"),
			phrase(13, 2, "medium"),
		},
		Pairings: []types.Pairing{
			{Name: 1, Type: 10},
			{Name: 2, Type: 11},
			{Name: 4, Type: 12},
			{Name: 5, Type: 13},
		},
	}
}

func TestCandidateMergeUnionsClaimants(t *testing.T) {
	c := NewCollection(confidence.Median)
	upper := c.Add(Proposal{Name: "Cache", Type: "component", Claimant: ClaimantNameType, Score: 0.9,
		Evidence: Evidence{Sentence: 1, NamePhrase: 1, TypePhrase: 10}})
	lower := c.Add(Proposal{Name: "cache", Type: "component", Claimant: ClaimantNameType, Score: 0.7,
		Evidence: Evidence{Sentence: 2, NamePhrase: 2, TypePhrase: 11}})
	c.Add(Proposal{Name: "cache", Type: "component", Claimant: ClaimantEmbeddedType, Score: 1.0,
		Evidence: Evidence{Sentence: 2, NamePhrase: 3, TypePhrase: NoPhrase}})
	require.NotEqual(t, upper.ID, lower.ID)
	require.Equal(t, 2, c.Len())

	merges := c.Consolidate(newEngine(t), 0.9)
	assert.Equal(t, 1, merges)
	require.Equal(t, 1, c.Len())

	merged := c.Candidates()[0]
	assert.Equal(t, upper.ID, merged.ID, "lower id survives")
	assert.Equal(t, []confidence.Claimant{ClaimantEmbeddedType, ClaimantNameType}, merged.Claimants())
	assert.Equal(t, []confidence.Claim{
		{Claimant: ClaimantEmbeddedType, Score: 1.0},
		{Claimant: ClaimantNameType, Score: 0.9},
	}, merged.Claims())
	assert.Equal(t, []string{"Cache", "cache"}, merged.Names())
	assert.Equal(t, []int{1, 2}, merged.Sentences())
	assert.Len(t, merged.Evidence(), 3)
	assert.InDelta(t, 0.95, merged.Confidence(), 1e-9)

	_, ok := c.Get(lower.ID)
	assert.False(t, ok)
}

func TestCandidateStrictClaim(t *testing.T) {
	cand := NewCandidate(7, "Cache", "interface", confidence.Max)
	require.NoError(t, cand.AddClaim(ClaimantNameType, 0.8))

	err := cand.AddClaim(ClaimantNameType, 0.9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tlerrors.ErrDuplicateEvidence))
	assert.Contains(t, err.Error(), "candidate 7 (Cache/interface)")
	assert.Equal(t, 0.8, cand.Confidence())
}

func TestMergeableOnName(t *testing.T) {
	e := newEngine(t)
	a := NewCandidate(1, "Cache", "interface", confidence.Max)
	b := NewCandidate(2, "cache", "component", confidence.Max)
	untyped := NewCandidate(3, "CACHE", "", confidence.Max)
	other := NewCandidate(4, "Logger", "interface", confidence.Max)

	assert.True(t, Mergeable(e, a, b, 0.9), "types do not block a name match")
	assert.True(t, Mergeable(e, a, untyped, 0.9))
	assert.False(t, Mergeable(e, a, other, 0.9), "same type alone is not enough")
}

func TestConsolidateAcrossTypes(t *testing.T) {
	c := NewCollection(confidence.Max)
	first := c.Add(Proposal{Name: "Cache", Type: "interface", Claimant: ClaimantNameType, Score: 0.9,
		Evidence: Evidence{Sentence: 1, NamePhrase: 1, TypePhrase: 10}})
	c.Add(Proposal{Name: "cache", Type: "component", Claimant: ClaimantEmbeddedType, Score: 1.0,
		Evidence: Evidence{Sentence: 2, NamePhrase: 2, TypePhrase: NoPhrase}})
	c.Add(Proposal{Name: "Logger", Type: "component", Claimant: ClaimantNameType, Score: 1.0,
		Evidence: Evidence{Sentence: 3, NamePhrase: 3, TypePhrase: 11}})

	assert.Equal(t, 1, c.Consolidate(newEngine(t), 0.9))
	require.Equal(t, 2, c.Len())

	merged, ok := c.Get(first.ID)
	require.True(t, ok)
	assert.Equal(t, []confidence.Claimant{ClaimantEmbeddedType, ClaimantNameType}, merged.Claimants())
	assert.Equal(t, []string{"interface", "component"}, merged.Types())
	assert.Equal(t, []int{1, 2}, merged.Sentences())

	// Adding the absorbed key again extends the survivor
	again := c.Add(Proposal{Name: "cache", Type: "component", Claimant: ClaimantNameType, Score: 0.5,
		Evidence: Evidence{Sentence: 4, NamePhrase: 4, TypePhrase: 12}})
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, c.Len())
}

func TestConsolidateSinglePass(t *testing.T) {
	c := NewCollection(confidence.Max)
	for i, name := range []string{"Cache", "Logger", "cache", "CACHE", "logger"} {
		c.Add(Proposal{Name: name, Type: "component", Claimant: ClaimantNameType, Score: 1.0,
			Evidence: Evidence{Sentence: i + 1, NamePhrase: types.PhraseID(i + 1), TypePhrase: NoPhrase}})
	}

	assert.Equal(t, 3, c.Consolidate(newEngine(t), 0.9))
	got := c.Candidates()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Cache", "cache", "CACHE"}, got[0].Names())
	assert.Equal(t, []string{"Logger", "logger"}, got[1].Names())
	assert.Equal(t, 0, c.Consolidate(newEngine(t), 0.9), "already consolidated")
}

func TestRecommend(t *testing.T) {
	r := newRecommender(t)
	vocabulary := []string{"component", "interface"}

	collection, err := r.Recommend(context.Background(), fixtureDocument(), vocabulary)
	require.NoError(t, err)

	got := map[string]*Candidate{}
	for _, c := range collection.Candidates() {
		got[c.Name+"/"+c.Type] = c
	}
	require.Len(t, got, 3, "candidates: %v", collection.Candidates())

	webui := got["WebUI/component"]
	require.NotNil(t, webui)
	assert.Equal(t, []string{"WebUI", "webui"}, webui.Names())
	assert.Equal(t, []int{1, 3}, webui.Sentences())
	assert.Equal(t, []confidence.Claimant{ClaimantNameType}, webui.Claimants())
	assert.Equal(t, 1.0, webui.Confidence())

	cache := got["Cache/interface"]
	require.NotNil(t, cache)
	assert.Equal(t, []Evidence{{Sentence: 1, NamePhrase: 2, TypePhrase: 11}}, cache.Evidence())

	logging := got["logging/component"]
	require.NotNil(t, logging)
	assert.Equal(t, []confidence.Claimant{ClaimantEmbeddedType}, logging.Claimants())
	assert.Equal(t, []Evidence{{Sentence: 2, NamePhrase: 3, TypePhrase: NoPhrase}}, logging.Evidence())

	_, hasDisk := got["disk/medium"]
	assert.False(t, hasDisk, "type below threshold yields no candidate")
}

func TestRecommendIsDeterministic(t *testing.T) {
	r := newRecommender(t)
	first, err := r.Recommend(context.Background(), fixtureDocument(), []string{"component", "interface"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := r.Recommend(context.Background(), fixtureDocument(), []string{"component", "interface"})
		require.NoError(t, err)
		require.Equal(t, len(first.Candidates()), len(again.Candidates()))
		for j, c := range again.Candidates() {
			assert.Equal(t, first.Candidates()[j].String(), c.String())
		}
	}
}

func TestMatchTypeUsesVocabularyHead(t *testing.T) {
	r := newRecommender(t)

	m, ok := r.matchType("components", []string{"interface", "basic component"})
	require.True(t, ok)
	assert.Equal(t, "basic component", m.vocab)
	assert.Equal(t, 1.0, m.score)

	_, ok = r.matchType("medium", []string{"interface", "basic component"})
	assert.False(t, ok)
}

func TestRecommendRejectsBadInput(t *testing.T) {
	r := newRecommender(t)

	_, err := r.Recommend(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, tlerrors.ErrMissingInput))

	doc := fixtureDocument()
	doc.Pairings = append(doc.Pairings, types.Pairing{Name: 99, Type: 10})
	_, err = r.Recommend(context.Background(), doc, []string{"component"})
	var inputErr *tlerrors.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, "document", inputErr.Input)
}

func TestRecommendHonoursCancellation(t *testing.T) {
	r := newRecommender(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Recommend(ctx, fixtureDocument(), []string{"component"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewRejectsThresholds(t *testing.T) {
	cfg := config.Default().Recommendation
	cfg.MergeThreshold = 1.2
	_, err := New(newEngine(t), cfg, confidence.Max)
	var cfgErr *tlerrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "recommendation.merge_threshold", cfgErr.Field)
}
