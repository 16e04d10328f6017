package candidate

import "github.com/helio-cloud/groundex/internal/domain/passage"

// Source tells which search path produced a candidate.
type Source string

const (
	// SourceVector marks a candidate scored by vector similarity.
	SourceVector Source = "vector"
	// SourceKeyword marks a candidate rescued by exact keyword matching,
	// carrying a synthetic similarity instead of a measured one.
	SourceKeyword Source = "keyword"
)

// Candidate is a passage paired with its retrieval similarity.
type Candidate struct {
	passage    passage.Passage
	similarity float64
	source     Source
}

// New creates a candidate.
func New(p passage.Passage, similarity float64, source Source) Candidate {
	return Candidate{passage: p, similarity: similarity, source: source}
}

// Passage returns the underlying passage.
func (c *Candidate) Passage() passage.Passage { return c.passage }

// Similarity returns the relevance score in [0, 1].
func (c *Candidate) Similarity() float64 { return c.similarity }

// Source returns the search path that produced the candidate.
func (c *Candidate) Source() Source { return c.source }

// WithSimilarity returns a copy with an adjusted similarity (used by boosting).
func (c Candidate) WithSimilarity(s float64) Candidate {
	c.similarity = s
	return c
}
