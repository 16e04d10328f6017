package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyQuery signals a blank retrieval query.
	ErrEmptyQuery = errors.New("query is empty")
	// ErrContentFlagged signals that the moderation pre-check rejected the query.
	ErrContentFlagged = errors.New("content flagged by moderation")
	// ErrInvalidDocument signals a malformed document or passage at ingestion.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVectorDimMismatch signals an embedding dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrModerationProviderError signals a moderation provider failure.
	ErrModerationProviderError = errors.New("moderation provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
)

// ContentFlaggedError wraps ErrContentFlagged with the categories the
// moderation provider reported.
type ContentFlaggedError struct {
	Categories []string
}

func (e *ContentFlaggedError) Error() string {
	if len(e.Categories) == 0 {
		return ErrContentFlagged.Error()
	}
	return fmt.Sprintf("%s: %s", ErrContentFlagged.Error(), strings.Join(e.Categories, ", "))
}

func (e *ContentFlaggedError) Unwrap() error { return ErrContentFlagged }

// NewContentFlagged creates a moderation rejection error.
func NewContentFlagged(categories []string) error {
	return &ContentFlaggedError{Categories: categories}
}
