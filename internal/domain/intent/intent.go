// Package intent classifies query text into coarse tags that decide whether
// the keyword augmentation path runs, and which keyword lists it searches.
// The rule set is data, not control flow: swapping rules never touches the
// ranking algorithm.
package intent

import "regexp"

// Tag is a coarse query intent class.
type Tag string

const (
	// Licensing covers questions about license terms and grants.
	Licensing Tag = "licensing"
	// Compliance covers contractual/regulatory obligation questions.
	Compliance Tag = "compliance"
	// Reporting covers notification and disclosure obligations.
	Reporting Tag = "reporting"
	// Drafting covers requests to draft a communication.
	Drafting Tag = "drafting"
)

// Rule maps a pattern to a tag.
type Rule struct {
	Tag     Tag
	Pattern *regexp.Regexp
}

// Classifier evaluates rules in order against query text.
type Classifier struct {
	rules    []Rule
	keywords map[Tag][]string
}

// NewClassifier creates a classifier from rule and keyword data.
func NewClassifier(rules []Rule, keywords map[Tag][]string) *Classifier {
	return &Classifier{rules: rules, keywords: keywords}
}

// Default returns the built-in rule set tuned for legal/compliance corpora.
func Default() *Classifier {
	return NewClassifier(defaultRules(), defaultKeywords())
}

// Classify returns the tags whose patterns match the query, in rule order,
// without duplicates. An empty result means the keyword path is skipped.
func (c *Classifier) Classify(query string) []Tag {
	var tags []Tag
	seen := make(map[Tag]bool, len(c.rules))
	for _, r := range c.rules {
		if seen[r.Tag] {
			continue
		}
		if r.Pattern.MatchString(query) {
			tags = append(tags, r.Tag)
			seen[r.Tag] = true
		}
	}
	return tags
}

// Keywords returns the deduplicated keyword lists for the given tags,
// preserving tag order then list order.
func (c *Classifier) Keywords(tags []Tag) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tags {
		for _, kw := range c.keywords[t] {
			if seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

func defaultRules() []Rule {
	return []Rule{
		{Licensing, regexp.MustCompile(`(?i)\blicen[cs](e|es|ing|or|ee)\b|\b(bsl|agpl|gpl|apache)\b`)},
		{Compliance, regexp.MustCompile(`(?i)\b(complian\w*|obligat\w*|regulat\w*|required to|are we allowed)\b`)},
		{Reporting, regexp.MustCompile(`(?i)\b(notif\w+|disclos\w+|report(ing)?\s+(obligation|requirement)s?)\b`)},
		{Drafting, regexp.MustCompile(`(?i)\b(draft|write|compose|prepare)\b.{0,40}\b(email|letter|memo|notice|response|communication)\b`)},
	}
}

func defaultKeywords() map[Tag][]string {
	return map[Tag][]string{
		Licensing: {
			"license grant",
			"change license",
			"additional use grant",
			"production use",
		},
		Compliance: {
			"must promptly notify",
			"material breach",
			"audit rights",
			"governing law",
		},
		Reporting: {
			"must promptly notify",
			"written notice",
			"reporting obligations",
			"notification period",
		},
		Drafting: {
			"termination",
			"renewal",
			"effective date",
		},
	}
}
