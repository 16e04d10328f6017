package retrieval

import (
	"fmt"
	"math"
	"strings"

	"github.com/helio-cloud/groundex/internal/domain/candidate"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

const blockDelimiter = "\n\n---\n\n"

// Packed is the result of context packing.
type Packed struct {
	ContextText string
	Used        []candidate.Candidate
	TokenCount  int
}

// PackContext greedily packs ranked candidates into the token budget.
// Packing stops before the first passage whose tokens would reach or exceed
// the budget, so Used is always an exact prefix of the input and the total
// stays strictly under budget. No candidates yields an empty context.
func PackContext(cands []candidate.Candidate, budget int) Packed {
	var blocks []string
	var used []candidate.Candidate
	total := 0

	for i := range cands {
		p := cands[i].Passage()
		tokens := p.TokenCount()
		if tokens == 0 {
			tokens = dompas.EstimateTokens(p.Content())
		}

		if total+tokens >= budget {
			break
		}

		total += tokens
		blocks = append(blocks, formatBlock(&cands[i]))
		used = append(used, cands[i])
	}

	return Packed{
		ContextText: strings.Join(blocks, blockDelimiter),
		Used:        used,
		TokenCount:  total,
	}
}

// formatBlock renders one passage with its provenance header.
func formatBlock(c *candidate.Candidate) string {
	p := c.Passage()
	pct := int(math.Round(c.Similarity() * 100))

	header := fmt.Sprintf("[Document: %s | Relevance: %d%%", p.DocumentName(), pct)
	if title := p.SectionTitle(); title != "" {
		header += " | Section: " + title
	}
	header += "]"

	return header + "\n" + strings.TrimSpace(p.Content())
}
