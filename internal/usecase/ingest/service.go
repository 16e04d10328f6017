package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
	domdoc "github.com/helio-cloud/groundex/internal/domain/document"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

// Service registers documents with their pre-embedded passages.
// The producer embeds and chunks upstream; this side validates its
// guarantees and persists.
type Service struct {
	passages   PassageWriter
	documents  DocumentStore
	dimensions int
	logger     *zap.Logger
}

// New creates an ingest service. dimensions is the system embedding
// dimensionality every passage vector must match.
func New(passages PassageWriter, documents DocumentStore, dimensions int, logger *zap.Logger) *Service {
	return &Service{
		passages:   passages,
		documents:  documents,
		dimensions: dimensions,
		logger:     logger,
	}
}

// DocumentInput is the document metadata supplied by the producer.
type DocumentInput struct {
	ID          string
	Name        string
	Description string
}

// PassageInput is one pre-embedded passage supplied by the producer.
// TokenCount may be zero; it is then estimated from content length.
type PassageInput struct {
	ID           string
	SectionTitle string
	Content      string
	Embedding    []float32
	TokenCount   int
}

// Ingest registers a document and its passages. Re-ingestion of an existing
// document deletes its previous passages first: passages are immutable, so
// replace is the only update path. Returns the number of passages stored.
func (s *Service) Ingest(ctx context.Context, doc DocumentInput, inputs []PassageInput) (int, error) {
	d, err := domdoc.New(doc.ID, doc.Name, doc.Description)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}
	if len(inputs) == 0 {
		return 0, fmt.Errorf("%w: at least one passage is required", domain.ErrInvalidDocument)
	}

	built := make([]dompas.Passage, 0, len(inputs))
	for i, in := range inputs {
		if len(in.Embedding) != s.dimensions {
			return 0, fmt.Errorf(
				"passage %q: embedding has %d dimensions, index expects %d: %w",
				in.ID, len(in.Embedding), s.dimensions, domain.ErrVectorDimMismatch,
			)
		}

		p, err := dompas.New(in.ID, d.ID(), d.Name(), in.SectionTitle, in.Content, in.Embedding, in.TokenCount)
		if err != nil {
			return 0, fmt.Errorf("%w: passage %d: %w", domain.ErrInvalidDocument, i, err)
		}
		built = append(built, p)
	}

	removed, err := s.passages.DeleteByDocument(ctx, d.ID())
	if err != nil {
		return 0, fmt.Errorf("remove previous passages: %w", err)
	}
	if removed > 0 {
		s.logger.Info("Replacing document passages",
			zap.String("document_id", d.ID()), zap.Int("removed", removed))
	}

	if err := s.passages.UpsertPassages(ctx, built); err != nil {
		return 0, fmt.Errorf("store passages: %w", err)
	}

	if err := s.documents.Save(ctx, &d); err != nil {
		return 0, fmt.Errorf("save document: %w", err)
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", d.ID()), zap.Int("passages", len(built)))
	return len(built), nil
}

// Delete removes a document and cascades to its passages. Returns the
// number of passages removed.
func (s *Service) Delete(ctx context.Context, documentID string) (int, error) {
	if err := s.documents.Delete(ctx, documentID); err != nil {
		return 0, fmt.Errorf("delete document: %w", err)
	}

	removed, err := s.passages.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("delete passages: %w", err)
	}

	s.logger.Info("Document deleted",
		zap.String("document_id", documentID), zap.Int("passages", removed))
	return removed, nil
}
