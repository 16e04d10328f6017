package profile

import "testing"

func TestApplyDefaultsFillsZeroFields(t *testing.T) {
	p := Profile{Name: "custom"}
	p.ApplyDefaults()

	if p.SimilarityThreshold != DefaultSimilarityThreshold {
		t.Errorf("SimilarityThreshold = %g", p.SimilarityThreshold)
	}
	if p.MaxResults != DefaultMaxResults {
		t.Errorf("MaxResults = %d", p.MaxResults)
	}
	if p.TokenBudget != DefaultTokenBudget {
		t.Errorf("TokenBudget = %d", p.TokenBudget)
	}
	if p.KeywordSimilarity != DefaultKeywordSimilarity {
		t.Errorf("KeywordSimilarity = %g", p.KeywordSimilarity)
	}
	if p.BoostShort != DefaultBoostShort || p.BoostMedium != DefaultBoostMedium || p.BoostLong != DefaultBoostLong {
		t.Errorf("boost tiers = %g/%g/%g", p.BoostShort, p.BoostMedium, p.BoostLong)
	}
}

func TestApplyDefaultsKeepsOverrides(t *testing.T) {
	p := Profile{Name: "legal", SimilarityThreshold: 0.70, MaxResults: 15, TokenBudget: 2000}
	p.ApplyDefaults()

	if p.SimilarityThreshold != 0.70 || p.MaxResults != 15 || p.TokenBudget != 2000 {
		t.Errorf("overrides lost: %g/%d/%d", p.SimilarityThreshold, p.MaxResults, p.TokenBudget)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Profile)
		wantErr bool
	}{
		{"defaults are valid", func(*Profile) {}, false},
		{"threshold at one", func(p *Profile) { p.SimilarityThreshold = 1.0 }, true},
		{"negative threshold", func(p *Profile) { p.SimilarityThreshold = -0.1 }, true},
		{"keyword similarity below threshold", func(p *Profile) { p.KeywordSimilarity = 0.5 }, true},
		{"keyword similarity above one", func(p *Profile) { p.KeywordSimilarity = 1.5 }, true},
		{"boost below one", func(p *Profile) { p.BoostShort = 0.9 }, true},
		{"unordered boost tiers", func(p *Profile) { p.BoostMedium = 1.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product()
			tt.mutate(&p)
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBoostFor(t *testing.T) {
	p := Product()

	tests := []struct {
		aliasLen int
		want     float64
	}{
		{3, DefaultBoostShort},
		{5, DefaultBoostShort},
		{6, DefaultBoostMedium},
		{10, DefaultBoostMedium},
		{11, DefaultBoostLong},
		{20, DefaultBoostLong},
	}

	for _, tt := range tests {
		if got := p.BoostFor(tt.aliasLen); got != tt.want {
			t.Errorf("BoostFor(%d) = %g, want %g", tt.aliasLen, got, tt.want)
		}
	}
}

func TestBuiltinProfilesAreValid(t *testing.T) {
	for _, p := range []Profile{Product(), Legal(), GTM()} {
		if err := p.Validate(); err != nil {
			t.Errorf("%s: %v", p.Name, err)
		}
	}
}
