package intent

import (
	"reflect"
	"testing"
)

func TestClassifyDefaultRules(t *testing.T) {
	c := Default()

	tests := []struct {
		query string
		want  []Tag
	}{
		{"what does the BSL license allow", []Tag{Licensing}},
		{"what are our notification obligations", []Tag{Compliance, Reporting}},
		{"are we required to disclose the breach", []Tag{Compliance, Reporting}},
		{"draft an email about the termination notice", []Tag{Drafting}},
		{"how fast is the search endpoint", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Classify(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Classify(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestClassifyNoDuplicateTags(t *testing.T) {
	c := Default()

	tags := c.Classify("license licensing licensor obligations compliance")
	seen := make(map[Tag]bool)
	for _, tag := range tags {
		if seen[tag] {
			t.Fatalf("duplicate tag %s in %v", tag, tags)
		}
		seen[tag] = true
	}
}

func TestKeywordsDeduplicateAcrossTags(t *testing.T) {
	c := Default()

	// Compliance and Reporting both list "must promptly notify".
	kws := c.Keywords([]Tag{Compliance, Reporting})
	count := 0
	for _, kw := range kws {
		if kw == "must promptly notify" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("keyword duplicated %d times", count)
	}
}

func TestKeywordsPreserveTagOrder(t *testing.T) {
	c := NewClassifier(nil, map[Tag][]string{
		Licensing:  {"license grant", "production use"},
		Compliance: {"audit rights"},
	})

	got := c.Keywords([]Tag{Licensing, Compliance})
	want := []string{"license grant", "production use", "audit rights"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}
}

func TestKeywordsEmptyTags(t *testing.T) {
	if got := Default().Keywords(nil); got != nil {
		t.Errorf("Keywords(nil) = %v, want nil", got)
	}
}
