package nlp

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider returns canned vectors per text.
type fakeProvider struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.vectors[text]
	if !ok {
		return nil, errors.New("no vector for text")
	}
	return v, nil
}

func newPartition(t *testing.T, faqs ...model.FAQ) store.Partition {
	t.Helper()
	ms := store.NewMemoryStore()
	p, err := ms.Partition("test")
	require.NoError(t, err)
	for i := range faqs {
		require.NoError(t, p.CreateFAQ(context.Background(), &faqs[i]))
	}
	return p
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score 1", func(t *testing.T) {
		assert.Equal(t, 1.0, CosineSimilarity([]float32{3, 4}, []float32{3, 4}))
	})

	t.Run("orthogonal vectors score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}))
	})

	t.Run("opposite vectors score -1", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 2}, []float32{-1, -2}), 1e-9)
	})

	t.Run("mismatched lengths score 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	})

	t.Run("zero vector scores 0", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	})
}

func TestFindBestMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("exact embedding match is selected with similarity 1", func(t *testing.T) {
		provider := &fakeProvider{vectors: map[string][]float32{
			"how do returns work": {3, 4},
		}}
		p := newPartition(t,
			model.FAQ{Question: "Do you ship abroad?", Answer: "Yes.", QuestionVector: model.Vector{0, 1}},
			model.FAQ{Question: "What is your return policy?", Answer: "30 days.", QuestionVector: model.Vector{3, 4}},
		)

		m := NewMatcher(provider, 0.5, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "how do returns work")
		require.NoError(t, err)
		require.NotNil(t, best)
		assert.Equal(t, "What is your return policy?", best.Question)
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		question := []float32{1, 0}
		candidate := model.Vector{1, 1}
		score := CosineSimilarity(question, candidate)

		provider := &fakeProvider{vectors: map[string][]float32{"q": question}}
		p := newPartition(t, model.FAQ{Question: "c", Answer: "a", QuestionVector: candidate})

		// Exactly at the threshold: accepted.
		m := NewMatcher(provider, score, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		assert.NotNil(t, best)

		// Just above it: rejected.
		m = NewMatcher(provider, math.Nextafter(score, 1), zap.NewNop())
		best, err = m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		assert.Nil(t, best)
	})

	t.Run("below threshold returns no match", func(t *testing.T) {
		provider := &fakeProvider{vectors: map[string][]float32{"q": {1, 0}}}
		// cos([1,0],[1,3]) = 1/sqrt(10), well below 0.5.
		p := newPartition(t, model.FAQ{Question: "c", Answer: "a", QuestionVector: model.Vector{1, 3}})

		m := NewMatcher(provider, 0.5, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		assert.Nil(t, best)
	})

	t.Run("ties break to the lowest FAQ ID", func(t *testing.T) {
		provider := &fakeProvider{vectors: map[string][]float32{"q": {1, 0}}}
		p := newPartition(t,
			model.FAQ{Question: "first", Answer: "a", QuestionVector: model.Vector{1, 0}},
			model.FAQ{Question: "second", Answer: "b", QuestionVector: model.Vector{1, 0}},
		)

		m := NewMatcher(provider, 0.5, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		require.NotNil(t, best)
		assert.Equal(t, "first", best.Question)
	})

	t.Run("FAQs without a vector are excluded", func(t *testing.T) {
		provider := &fakeProvider{vectors: map[string][]float32{"q": {1, 0}}}
		p := newPartition(t,
			model.FAQ{Question: "no vector", Answer: "a"},
			model.FAQ{Question: "weak match", Answer: "b", QuestionVector: model.Vector{1, 1}},
		)

		m := NewMatcher(provider, 0.5, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		require.NotNil(t, best)
		assert.Equal(t, "weak match", best.Question)
	})

	t.Run("empty partition returns no match", func(t *testing.T) {
		provider := &fakeProvider{vectors: map[string][]float32{"q": {1, 0}}}
		p := newPartition(t)

		m := NewMatcher(provider, 0.5, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		assert.Nil(t, best)
	})

	t.Run("provider failure degrades to no match", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("service down")}
		p := newPartition(t, model.FAQ{Question: "c", Answer: "a", QuestionVector: model.Vector{1, 0}})

		m := NewMatcher(provider, 0.5, zap.NewNop())
		best, err := m.FindBestMatch(ctx, p, "q")
		require.NoError(t, err)
		assert.Nil(t, best)
	})
}
