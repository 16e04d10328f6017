package answer

import (
	"context"

	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/usecase/retrieval"
)

// Retriever produces packed grounding context for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query, profileName string) (*retrieval.Result, error)
}

// Generator streams a completion grounded on the given context.
type Generator interface {
	Stream(ctx context.Context, instructions, contextText, query string) (<-chan domain.Chunk, error)
}
