package passage

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxContentSize is the maximum passage content size in bytes.
const MaxContentSize = 163840 // 160KB

// Passage is the atomic retrievable unit (immutable value object).
// Passages are created once at ingestion and never mutated in place;
// re-ingestion of a document deletes and recreates them.
type Passage struct {
	id           string
	documentID   string
	documentName string
	sectionTitle string
	content      string
	embedding    []float32
	tokenCount   int
}

// New validates and creates a Passage.
// IDs: ^[a-zA-Z0-9_-]+$, 1-256 chars. Content: non-empty, max 160KB.
// The embedding is required; its dimensionality is validated by the
// ingestion service against the system constant.
func New(
	id, documentID, documentName, sectionTitle, content string,
	embedding []float32, tokenCount int,
) (Passage, error) {
	if id == "" {
		return Passage{}, fmt.Errorf("passage ID is required")
	}
	if len(id) > 256 {
		return Passage{}, fmt.Errorf("passage ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Passage{}, fmt.Errorf("passage ID must be alphanumeric with underscores and hyphens")
	}
	if documentID == "" {
		return Passage{}, fmt.Errorf("document ID is required")
	}
	if !idRegex.MatchString(documentID) {
		return Passage{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if strings.TrimSpace(content) == "" {
		return Passage{}, fmt.Errorf("content is required")
	}
	if len(content) > MaxContentSize {
		return Passage{}, fmt.Errorf("content too large (max %d bytes)", MaxContentSize)
	}
	if len(embedding) == 0 {
		return Passage{}, fmt.Errorf("embedding is required")
	}
	if tokenCount < 0 {
		return Passage{}, fmt.Errorf("token count must not be negative")
	}
	if tokenCount == 0 {
		tokenCount = EstimateTokens(content)
	}

	return Passage{
		id:           id,
		documentID:   documentID,
		documentName: documentName,
		sectionTitle: sectionTitle,
		content:      content,
		embedding:    embedding,
		tokenCount:   tokenCount,
	}, nil
}

// Reconstruct creates a Passage without validation (storage hydration).
func Reconstruct(
	id, documentID, documentName, sectionTitle, content string,
	embedding []float32, tokenCount int,
) Passage {
	return Passage{
		id:           id,
		documentID:   documentID,
		documentName: documentName,
		sectionTitle: sectionTitle,
		content:      content,
		embedding:    embedding,
		tokenCount:   tokenCount,
	}
}

// ID returns the passage identifier.
func (p *Passage) ID() string { return p.id }

// DocumentID returns the owning document identifier.
func (p *Passage) DocumentID() string { return p.documentID }

// DocumentName returns the owning document display name.
func (p *Passage) DocumentName() string { return p.documentName }

// SectionTitle returns the optional section heading.
func (p *Passage) SectionTitle() string { return p.sectionTitle }

// Content returns the passage text.
func (p *Passage) Content() string { return p.content }

// Embedding returns the embedding vector.
func (p *Passage) Embedding() []float32 { return p.embedding }

// TokenCount returns the precomputed tokenizer length of Content.
func (p *Passage) TokenCount() int { return p.tokenCount }

// EstimateTokens approximates the tokenizer length of text when the producer
// did not supply one: ~4 characters per token, rounded up. Good enough for
// budget packing, which only needs a consistent upper-ish bound.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
