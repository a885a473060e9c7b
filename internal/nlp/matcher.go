// Package nlp implements the semantic FAQ matching engine: nearest stored
// question by cosine similarity over precomputed embeddings, gated by a
// confidence threshold.
package nlp

import (
	"context"
	"math"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"go.uber.org/zap"
)

// Matcher finds the best-matching FAQ for a user question within one
// tenant partition. A linear scan is fine at per-tenant FAQ counts; the
// store.Partition seam is where an ANN index would slot in if that stops
// being true.
type Matcher struct {
	provider  Provider
	threshold float64
	log       *zap.Logger
}

// Provider is the embedding capability the matcher needs.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// NewMatcher creates a matcher. threshold is the minimum cosine similarity,
// inclusive, on a [-1, 1] scale.
func NewMatcher(provider Provider, threshold float64, log *zap.Logger) *Matcher {
	return &Matcher{provider: provider, threshold: threshold, log: log}
}

// FindBestMatch returns the partition FAQ most similar to the question, or
// nil when there is no confident match. An unavailable embedding provider
// degrades to "no match" rather than failing the request; only storage
// errors propagate.
func (m *Matcher) FindBestMatch(ctx context.Context, partition store.Partition, question string) (*model.FAQ, error) {
	vector, err := m.provider.Embed(ctx, question)
	if err != nil {
		m.log.Warn("embedding provider unavailable, skipping match", zap.Error(err))
		return nil, nil
	}

	faqs, err := partition.ListFAQs(ctx)
	if err != nil {
		return nil, err
	}

	var best *model.FAQ
	bestScore := math.Inf(-1)
	// FAQs arrive in ID order, and only a strictly better score replaces the
	// current best, so ties go to the lowest ID.
	for i := range faqs {
		if faqs[i].QuestionVector == nil {
			continue
		}
		score := CosineSimilarity(vector, faqs[i].QuestionVector)
		if score > bestScore {
			bestScore = score
			best = &faqs[i]
		}
	}

	if best == nil || bestScore < m.threshold {
		return nil, nil
	}

	m.log.Debug("faq matched",
		zap.Uint("faq_id", best.ID),
		zap.Float64("similarity", bestScore))
	return best, nil
}

// CosineSimilarity computes the normalized dot product of two vectors.
// Mismatched lengths or zero-magnitude vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
