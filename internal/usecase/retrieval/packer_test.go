package retrieval

import (
	"strings"
	"testing"

	"github.com/helio-cloud/groundex/internal/domain/candidate"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

func TestPackContextRespectsBudget(t *testing.T) {
	cands := []candidate.Candidate{
		mkCandidate("a", "Doc A", 0.95, 400),
		mkCandidate("b", "Doc B", 0.90, 400),
		mkCandidate("c", "Doc C", 0.85, 400),
	}

	// Budget 1000: a(400) + b(400) = 800; c would make it 1200 >= 1000.
	packed := PackContext(cands, 1000)

	if len(packed.Used) != 2 {
		t.Fatalf("used %d passages, want 2", len(packed.Used))
	}
	if packed.TokenCount != 800 {
		t.Errorf("token count = %d, want 800", packed.TokenCount)
	}
	if packed.TokenCount >= 1000 {
		t.Errorf("packed tokens %d reached budget", packed.TokenCount)
	}
}

func TestPackContextBreaksAtExactBudget(t *testing.T) {
	cands := []candidate.Candidate{
		mkCandidate("a", "Doc A", 0.95, 500),
		mkCandidate("b", "Doc B", 0.90, 500),
	}

	// 500 + 500 = 1000 reaches the budget exactly: b is excluded.
	packed := PackContext(cands, 1000)
	if len(packed.Used) != 1 {
		t.Fatalf("used %d passages, want 1 (reach counts as exceed)", len(packed.Used))
	}
}

func TestPackContextPrefixProperty(t *testing.T) {
	// A small passage after the break point must not be packed: Used is
	// always an exact prefix of the ranked input.
	cands := []candidate.Candidate{
		mkCandidate("a", "Doc A", 0.95, 600),
		mkCandidate("b", "Doc B", 0.90, 600), // breaks here
		mkCandidate("c", "Doc C", 0.85, 10),  // would fit, must be skipped
	}

	packed := PackContext(cands, 1000)

	if len(packed.Used) != 1 {
		t.Fatalf("used %d passages, want 1", len(packed.Used))
	}
	if p := packed.Used[0].Passage(); p.ID() != "a" {
		t.Errorf("used = %q, want prefix [a]", p.ID())
	}
}

func TestPackContextEmptyInput(t *testing.T) {
	packed := PackContext(nil, 1500)
	if packed.ContextText != "" || packed.Used != nil || packed.TokenCount != 0 {
		t.Errorf("expected empty pack, got %+v", packed)
	}
}

func TestPackContextBlockFormat(t *testing.T) {
	p := dompas.Reconstruct(
		"bsl_4", "bsl", "BSL License", "Additional Use Grant",
		"  Production use is permitted for up to three nodes.  ", nil, 20,
	)
	cands := []candidate.Candidate{candidate.New(p, 0.876, candidate.SourceVector)}

	packed := PackContext(cands, 1500)

	want := "[Document: BSL License | Relevance: 88% | Section: Additional Use Grant]\n" +
		"Production use is permitted for up to three nodes."
	if packed.ContextText != want {
		t.Errorf("context = %q, want %q", packed.ContextText, want)
	}
}

func TestPackContextOmitsEmptySection(t *testing.T) {
	p := dompas.Reconstruct("p1", "doc", "Pricing Guide", "", "Volume discounts apply.", nil, 10)
	cands := []candidate.Candidate{candidate.New(p, 0.9, candidate.SourceVector)}

	packed := PackContext(cands, 1500)

	if strings.Contains(packed.ContextText, "Section:") {
		t.Errorf("context should omit empty section: %q", packed.ContextText)
	}
	if !strings.HasPrefix(packed.ContextText, "[Document: Pricing Guide | Relevance: 90%]") {
		t.Errorf("unexpected header: %q", packed.ContextText)
	}
}

func TestPackContextDelimiter(t *testing.T) {
	cands := []candidate.Candidate{
		mkCandidate("a", "Doc A", 0.95, 40),
		mkCandidate("b", "Doc B", 0.90, 40),
	}

	packed := PackContext(cands, 1500)

	if got := strings.Count(packed.ContextText, "\n\n---\n\n"); got != 1 {
		t.Errorf("delimiter count = %d, want 1", got)
	}
}

func TestPackContextEstimatesMissingTokenCount(t *testing.T) {
	// 40 runes → estimate (40+3)/4 = 10 tokens.
	content := strings.Repeat("abcd", 10)
	p := dompas.Reconstruct("p1", "doc", "Doc", "", content, nil, 0)
	cands := []candidate.Candidate{candidate.New(p, 0.9, candidate.SourceVector)}

	packed := PackContext(cands, 1500)
	if packed.TokenCount != 10 {
		t.Errorf("token count = %d, want estimated 10", packed.TokenCount)
	}
}
