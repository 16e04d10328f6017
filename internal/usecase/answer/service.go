package answer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/candidate"
)

const noContextInstructions = "No grounding information was found for this question. " +
	"Say so explicitly and do not invent details from the document corpus."

// Service answers a query by retrieving grounding context and streaming a
// generated completion over it.
type Service struct {
	retriever    Retriever
	generator    Generator
	instructions string
	logger       *zap.Logger
}

// New creates an answer service. instructions is the base system prompt.
func New(retriever Retriever, generator Generator, instructions string, logger *zap.Logger) *Service {
	return &Service{
		retriever:    retriever,
		generator:    generator,
		instructions: instructions,
		logger:       logger,
	}
}

// Answer is a streamed reply with the sources it was grounded on.
type Answer struct {
	Chunks  <-chan domain.Chunk
	Sources []candidate.Candidate
	Profile string
}

// Answer retrieves grounding context for the query and opens a generation
// stream over it. An empty retrieval is not an error: the model is told
// explicitly that no grounding was found.
func (s *Service) Answer(ctx context.Context, query, profileName string) (*Answer, error) {
	res, err := s.retriever.Retrieve(ctx, query, profileName)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	instructions := s.instructions
	if res.ContextText == "" {
		instructions = instructions + "\n\n" + noContextInstructions
		s.logger.Info("Answering without grounding context",
			zap.String("profile", res.Profile.Name))
	}

	chunks, err := s.generator.Stream(ctx, instructions, res.ContextText, query)
	if err != nil {
		return nil, fmt.Errorf("open generation stream: %w", err)
	}

	return &Answer{
		Chunks:  chunks,
		Sources: res.Sources,
		Profile: res.Profile.Name,
	}, nil
}
