package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/candidate"
	"github.com/helio-cloud/groundex/internal/domain/intent"
	"github.com/helio-cloud/groundex/internal/domain/profile"
	"github.com/helio-cloud/groundex/internal/metrics"
)

// Service runs the retrieval pipeline: normalize, moderate + embed, vector
// search, keyword augmentation, rank, pack.
type Service struct {
	repo       Repository
	embed      Embedder
	moderate   Moderator // nil disables moderation
	classifier *intent.Classifier
	ranker     *Ranker

	profiles       map[string]profile.Profile
	defaultProfile string

	logger *zap.Logger
}

// Options configures the retrieval service.
type Options struct {
	Repo       Repository
	Embedder   Embedder
	Moderator  Moderator
	Classifier *intent.Classifier
	Ranker     *Ranker

	Profiles       map[string]profile.Profile
	DefaultProfile string

	Logger *zap.Logger
}

// New creates a retrieval service.
func New(opts Options) *Service {
	return &Service{
		repo:           opts.Repo,
		embed:          opts.Embedder,
		moderate:       opts.Moderator,
		classifier:     opts.Classifier,
		ranker:         opts.Ranker,
		profiles:       opts.Profiles,
		defaultProfile: opts.DefaultProfile,
		logger:         opts.Logger,
	}
}

// Result is the outcome of one retrieval.
type Result struct {
	ContextText string
	Sources     []candidate.Candidate
	TokenCount  int
	Profile     profile.Profile
}

type moderationOutcome struct {
	result domain.ModerationResult
	err    error
}

// Retrieve turns a user query into packed grounding context.
//
// Moderation and embedding run concurrently; both must finish before any
// store access, and a moderation rejection wins over an embedding failure.
// A keyword-augmentation failure degrades to vector-only results; an
// embedding or vector search failure fails the whole request. Empty results
// are a valid outcome, not an error.
func (s *Service) Retrieve(ctx context.Context, query, profileName string) (*Result, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, domain.ErrEmptyQuery
	}

	tags := s.classifier.Classify(trimmed)
	prof := s.resolveProfile(profileName, tags)

	res, err := s.search(ctx, trimmed, tags, &prof)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(prof.Name, "error").Inc()
		return nil, err
	}

	metrics.RetrievalRequestsTotal.WithLabelValues(prof.Name, "success").Inc()
	if len(res.Sources) == 0 {
		metrics.RetrievalEmptyTotal.WithLabelValues(prof.Name).Inc()
	}
	metrics.PackedTokensHistogram.WithLabelValues(prof.Name).Observe(float64(res.TokenCount))

	return res, nil
}

func (s *Service) search(
	ctx context.Context, query string, tags []intent.Tag, prof *profile.Profile,
) (*Result, error) {
	modCh := make(chan moderationOutcome, 1)
	if s.moderate != nil {
		go func() {
			r, err := s.moderate.Moderate(ctx, query)
			modCh <- moderationOutcome{result: r, err: err}
		}()
	} else {
		modCh <- moderationOutcome{}
	}

	embRes, embErr := s.embed.Embed(ctx, normalizeForEmbedding(query))

	mod := <-modCh
	if mod.err != nil {
		return nil, fmt.Errorf("moderate query: %w", mod.err)
	}
	if mod.result.Flagged {
		s.logger.Warn("Query rejected by moderation", zap.Strings("categories", mod.result.Categories))
		return nil, domain.NewContentFlagged(mod.result.Categories)
	}
	if embErr != nil {
		return nil, fmt.Errorf("embed query: %w", embErr)
	}

	vector, err := s.vectorSearch(ctx, embRes.Embedding, prof)
	if err != nil {
		return nil, err
	}

	keyword := s.keywordSearch(ctx, tags, vector, prof)

	boosted := s.ranker.Boost(query, vector, prof)
	merged := s.ranker.Merge(boosted, keyword, prof)

	packed := PackContext(merged, prof.TokenBudget)
	return &Result{
		ContextText: packed.ContextText,
		Sources:     packed.Used,
		TokenCount:  packed.TokenCount,
		Profile:     *prof,
	}, nil
}

// vectorSearch fetches KNN candidates and applies the strict threshold and
// the maxResults cap.
func (s *Service) vectorSearch(
	ctx context.Context, vector []float32, prof *profile.Profile,
) ([]candidate.Candidate, error) {
	cands, err := s.repo.SearchSimilar(ctx, vector, prof.MinContentLength, prof.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	kept := cands[:0:0]
	for i := range cands {
		if cands[i].Similarity() > prof.SimilarityThreshold {
			kept = append(kept, cands[i])
		}
	}
	if len(kept) > prof.MaxResults {
		kept = kept[:prof.MaxResults]
	}
	return kept, nil
}

// keywordSearch runs the augmentation path when the query carries a tagged
// intent. It never fails the request: a store error here degrades to
// vector-only results.
func (s *Service) keywordSearch(
	ctx context.Context, tags []intent.Tag, vector []candidate.Candidate, prof *profile.Profile,
) []candidate.Candidate {
	if len(tags) == 0 {
		metrics.KeywordAugmentationTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	keywords := s.classifier.Keywords(tags)
	if len(keywords) == 0 {
		metrics.KeywordAugmentationTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	passages, err := s.repo.SearchKeywords(ctx, keywords, prof.MinContentLength, prof.KeywordResultCap)
	if err != nil {
		s.logger.Warn("Keyword augmentation failed, continuing with vector results",
			zap.Error(err), zap.Int("vector_candidates", len(vector)))
		metrics.KeywordAugmentationTotal.WithLabelValues("error").Inc()
		return nil
	}
	if len(passages) == 0 {
		metrics.KeywordAugmentationTotal.WithLabelValues("empty").Inc()
		return nil
	}

	metrics.KeywordAugmentationTotal.WithLabelValues("hit").Inc()

	out := make([]candidate.Candidate, 0, len(passages))
	for _, p := range passages {
		out = append(out, candidate.New(p, prof.KeywordSimilarity, candidate.SourceKeyword))
	}
	return out
}

// resolveProfile picks the retrieval profile: explicit request, else the
// legal profile for compliance-class intents, else the configured default.
func (s *Service) resolveProfile(name string, tags []intent.Tag) profile.Profile {
	if name != "" {
		if p, ok := s.profiles[name]; ok {
			return p
		}
		s.logger.Warn("Unknown retrieval profile, falling back", zap.String("profile", name))
	}

	for _, t := range tags {
		if t == intent.Compliance || t == intent.Reporting {
			if p, ok := s.profiles["legal"]; ok {
				return p
			}
			break
		}
	}

	if p, ok := s.profiles[s.defaultProfile]; ok {
		return p
	}
	return profile.Product()
}

// normalizeForEmbedding collapses all whitespace runs (including newlines)
// into single spaces.
func normalizeForEmbedding(q string) string {
	return strings.Join(strings.Fields(q), " ")
}
