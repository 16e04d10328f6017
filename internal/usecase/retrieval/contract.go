package retrieval

import (
	"context"

	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/candidate"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

// Repository defines the storage contract for retrieval.
type Repository interface {
	// SearchSimilar returns vector-scored candidates ordered by similarity
	// descending, pre-filtered on minimum content length.
	SearchSimilar(
		ctx context.Context, vector []float32, minContentLength, topK int,
	) ([]candidate.Candidate, error)

	// SearchKeywords returns passages containing one of the given phrases.
	SearchKeywords(
		ctx context.Context, keywords []string, minContentLength, limit int,
	) ([]dompas.Passage, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Moderator screens query text before it reaches the store.
type Moderator interface {
	Moderate(ctx context.Context, text string) (domain.ModerationResult, error)
}
