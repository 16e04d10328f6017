package retrieval

import (
	"sort"
	"strings"

	"github.com/helio-cloud/groundex/internal/domain/candidate"
	"github.com/helio-cloud/groundex/internal/domain/profile"
)

// AliasGroup maps a canonical document topic to the aliases it is known by
// in queries and document names. Group order is significant: the first
// matching alias decides the boost.
type AliasGroup struct {
	Name    string
	Aliases []string
}

// Ranker applies document-name boosting and merges the two candidate streams.
type Ranker struct {
	groups []AliasGroup
}

// NewRanker creates a ranker over an ordered alias group list.
func NewRanker(groups []AliasGroup) *Ranker {
	return &Ranker{groups: groups}
}

// Boost raises the similarity of vector candidates whose document name
// matches an alias the query mentions. A candidate gets at most one boost
// (first matching alias, no stacking) and the result is clamped to 1.0.
// The list is re-sorted descending with a stable sort so equal scores keep
// their store order.
func (r *Ranker) Boost(
	query string, cands []candidate.Candidate, prof *profile.Profile,
) []candidate.Candidate {
	active := r.activeGroups(strings.ToLower(query))

	out := make([]candidate.Candidate, len(cands))
	for i := range cands {
		out[i] = cands[i]
		if len(active) == 0 {
			continue
		}

		p := cands[i].Passage()
		docName := strings.ToLower(p.DocumentName())
		if alias, ok := firstMatchingAlias(docName, active); ok {
			boosted := cands[i].Similarity() * prof.BoostFor(len(alias))
			if boosted > 1.0 {
				boosted = 1.0
			}
			out[i] = cands[i].WithSimilarity(boosted)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity() > out[j].Similarity()
	})
	return out
}

// Merge combines keyword rescues with boosted vector candidates:
// keyword-only candidates first in discovery order, then vector candidates
// in descending similarity. Duplicates (same passage ID) keep the vector
// candidate, whose similarity is measured rather than synthetic. The result
// is truncated to maxResults plus the overflow allowance.
func (r *Ranker) Merge(
	vector, keyword []candidate.Candidate, prof *profile.Profile,
) []candidate.Candidate {
	inVector := make(map[string]bool, len(vector))
	for i := range vector {
		p := vector[i].Passage()
		inVector[p.ID()] = true
	}

	out := make([]candidate.Candidate, 0, len(keyword)+len(vector))
	seen := make(map[string]bool, len(keyword))
	for i := range keyword {
		p := keyword[i].Passage()
		if inVector[p.ID()] || seen[p.ID()] {
			continue
		}
		seen[p.ID()] = true
		out = append(out, keyword[i])
	}

	out = append(out, vector...)

	limit := prof.MaxResults + prof.OverflowAllowance
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// activeGroups returns the groups whose aliases appear in the query.
func (r *Ranker) activeGroups(query string) []AliasGroup {
	var active []AliasGroup
	for _, g := range r.groups {
		for _, a := range g.Aliases {
			if strings.Contains(query, strings.ToLower(a)) {
				active = append(active, g)
				break
			}
		}
	}
	return active
}

// firstMatchingAlias returns the first alias (group order, then alias order)
// contained in the document name.
func firstMatchingAlias(docName string, groups []AliasGroup) (string, bool) {
	for _, g := range groups {
		for _, a := range g.Aliases {
			if strings.Contains(docName, strings.ToLower(a)) {
				return a, true
			}
		}
	}
	return "", false
}
