// Package profile holds per-domain retrieval tuning.
//
// Every threshold, cap and boost factor of the retrieval pipeline lives here
// rather than inline in the ranking code: these values are empirically chosen
// and must be swappable per deployment without code changes.
package profile

import "fmt"

// Default tuning values (product profile baseline).
const (
	DefaultSimilarityThreshold = 0.78
	DefaultMaxResults          = 10
	DefaultMinContentLength    = 50
	DefaultTokenBudget         = 1500
	DefaultKeywordSimilarity   = 0.85
	DefaultKeywordResultCap    = 10
	DefaultOverflowAllowance   = 5

	// Document-name boost tiers by matched alias length. A longer alias is a
	// more specific signal, so it earns a larger boost.
	DefaultBoostShort  = 1.15 // alias <= 5 chars
	DefaultBoostMedium = 1.20 // alias 6-10 chars
	DefaultBoostLong   = 1.25 // alias > 10 chars
)

// Profile is the tuning surface for one retrieval domain.
type Profile struct {
	Name string

	// SimilarityThreshold is strict: only candidates with similarity
	// strictly greater than it are kept.
	SimilarityThreshold float64
	// MaxResults caps the vector candidate list before merging.
	MaxResults int
	// MinContentLength excludes noise fragments at search time.
	MinContentLength int
	// TokenBudget bounds the packed context length.
	TokenBudget int
	// KeywordSimilarity is the synthetic score assigned to keyword-rescued
	// candidates. A flat constant, not a derived confidence: it slots
	// rescues above weak vector matches without fabricating precision.
	KeywordSimilarity float64
	// KeywordResultCap bounds the keyword rescue list.
	KeywordResultCap int
	// OverflowAllowance lets keyword rescues surface past MaxResults.
	OverflowAllowance int

	BoostShort  float64
	BoostMedium float64
	BoostLong   float64
}

// Product is the generic product-search profile.
func Product() Profile {
	p := Profile{Name: "product"}
	p.ApplyDefaults()
	return p
}

// Legal is the compliance/legal profile: looser threshold and larger budget,
// because recall matters more than precision for legal obligations.
func Legal() Profile {
	p := Profile{
		Name:                "legal",
		SimilarityThreshold: 0.70,
		MaxResults:          15,
		TokenBudget:         2000,
	}
	p.ApplyDefaults()
	return p
}

// GTM is the go-to-market profile (legal-grade recall settings).
func GTM() Profile {
	p := Profile{
		Name:                "gtm",
		SimilarityThreshold: 0.70,
		MaxResults:          15,
		TokenBudget:         2000,
	}
	p.ApplyDefaults()
	return p
}

// ApplyDefaults fills zero fields with baseline values.
func (p *Profile) ApplyDefaults() {
	if p.SimilarityThreshold <= 0 {
		p.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if p.MaxResults <= 0 {
		p.MaxResults = DefaultMaxResults
	}
	if p.MinContentLength <= 0 {
		p.MinContentLength = DefaultMinContentLength
	}
	if p.TokenBudget <= 0 {
		p.TokenBudget = DefaultTokenBudget
	}
	if p.KeywordSimilarity <= 0 {
		p.KeywordSimilarity = DefaultKeywordSimilarity
	}
	if p.KeywordResultCap <= 0 {
		p.KeywordResultCap = DefaultKeywordResultCap
	}
	if p.OverflowAllowance <= 0 {
		p.OverflowAllowance = DefaultOverflowAllowance
	}
	if p.BoostShort <= 0 {
		p.BoostShort = DefaultBoostShort
	}
	if p.BoostMedium <= 0 {
		p.BoostMedium = DefaultBoostMedium
	}
	if p.BoostLong <= 0 {
		p.BoostLong = DefaultBoostLong
	}
}

// Validate checks the profile for correctness.
func (p *Profile) Validate() error {
	if p.SimilarityThreshold < 0 || p.SimilarityThreshold >= 1 {
		return fmt.Errorf("similarity threshold must be in [0, 1), got %g", p.SimilarityThreshold)
	}
	if p.KeywordSimilarity <= p.SimilarityThreshold || p.KeywordSimilarity > 1 {
		return fmt.Errorf(
			"keyword similarity must be in (%g, 1], got %g",
			p.SimilarityThreshold, p.KeywordSimilarity,
		)
	}
	if p.BoostShort < 1 || p.BoostMedium < p.BoostShort || p.BoostLong < p.BoostMedium {
		return fmt.Errorf("boost tiers must satisfy 1 <= short <= medium <= long")
	}
	return nil
}

// BoostFor returns the boost factor for a matched alias of the given length.
func (p *Profile) BoostFor(aliasLen int) float64 {
	switch {
	case aliasLen > 10:
		return p.BoostLong
	case aliasLen > 5:
		return p.BoostMedium
	default:
		return p.BoostShort
	}
}
