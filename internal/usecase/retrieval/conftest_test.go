package retrieval

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/candidate"
	"github.com/helio-cloud/groundex/internal/domain/intent"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
	"github.com/helio-cloud/groundex/internal/domain/profile"
)

// mockRepo implements Repository for tests.
type mockRepo struct {
	searchSimilarFn func(ctx context.Context, vector []float32, minContentLength, topK int) ([]candidate.Candidate, error)
	searchKeywordsFn func(ctx context.Context, keywords []string, minContentLength, limit int) ([]dompas.Passage, error)
}

func (m *mockRepo) SearchSimilar(
	ctx context.Context, vector []float32, minContentLength, topK int,
) ([]candidate.Candidate, error) {
	if m.searchSimilarFn != nil {
		return m.searchSimilarFn(ctx, vector, minContentLength, topK)
	}
	return nil, nil
}

func (m *mockRepo) SearchKeywords(
	ctx context.Context, keywords []string, minContentLength, limit int,
) ([]dompas.Passage, error) {
	if m.searchKeywordsFn != nil {
		return m.searchKeywordsFn(ctx, keywords, minContentLength, limit)
	}
	return nil, nil
}

// mockEmbedder implements Embedder for tests.
type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

// mockModerator implements Moderator for tests.
type mockModerator struct {
	result domain.ModerationResult
	err    error
}

func (m *mockModerator) Moderate(_ context.Context, _ string) (domain.ModerationResult, error) {
	if m.err != nil {
		return domain.ModerationResult{}, m.err
	}
	return m.result, nil
}

func testProfiles() map[string]profile.Profile {
	return map[string]profile.Profile{
		"product": profile.Product(),
		"legal":   profile.Legal(),
	}
}

func newTestService(t *testing.T, repo *mockRepo, emb *mockEmbedder, mod Moderator) *Service {
	t.Helper()
	var m Moderator
	if mod != nil {
		m = mod
	}
	return New(Options{
		Repo:           repo,
		Embedder:       emb,
		Moderator:      m,
		Classifier:     intent.Default(),
		Ranker:         NewRanker(testAliasGroups()),
		Profiles:       testProfiles(),
		DefaultProfile: "product",
		Logger:         zap.NewNop(),
	})
}

func testAliasGroups() []AliasGroup {
	return []AliasGroup{
		{Name: "Business Source License", Aliases: []string{"bsl", "business source"}},
		{Name: "Master Services Agreement", Aliases: []string{"msa", "master services agreement"}},
	}
}

func testEmbedding() domain.EmbeddingResult {
	return domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3, 0.4},
		TotalTokens: 8,
	}
}

// mkCandidate builds a vector candidate with the given score.
func mkCandidate(id, docName string, similarity float64, tokens int) candidate.Candidate {
	p := dompas.Reconstruct(
		id, "doc_"+id, docName, "",
		"Relevant contract language for passage "+id+" with enough length to matter.",
		nil, tokens,
	)
	return candidate.New(p, similarity, candidate.SourceVector)
}

// mkPassage builds a keyword-rescued passage.
func mkPassage(id, docName, content string, tokens int) dompas.Passage {
	return dompas.Reconstruct(id, "doc_"+id, docName, "", content, nil, tokens)
}
