package passage

import (
	"context"
	"fmt"
	"strings"

	"github.com/helio-cloud/groundex/internal/db"
	"github.com/helio-cloud/groundex/internal/domain"
	"github.com/helio-cloud/groundex/internal/domain/candidate"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

// store is the consumer interface for passages (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	DelMulti(ctx context.Context, keys []string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchPhrase(ctx context.Context, q *db.PhraseQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// IndexOptions tunes the HNSW vector index.
type IndexOptions struct {
	Dimensions     int
	HNSWM          int
	EFConstruction int
}

// Repo implements passage persistence and search over a single FT index.
type Repo struct {
	store store
}

// New creates a passage repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// searchReturnFields excludes __vector: search paths never need the raw
// embedding, and skipping it keeps result payloads small.
var searchReturnFields = []string{
	fieldContent, fieldDocumentID, fieldDocumentName,
	fieldSectionTitle, fieldTokenCount, "__vector_score",
}

// EnsureIndex creates the passage index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, opts IndexOptions) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     indexName(),
		Prefixes: []string{keyPrefix()},
		Fields: []db.IndexField{
			{Name: fieldDocumentID, Type: db.IndexFieldTag},
			{Name: fieldSectionTitle, Type: db.IndexFieldText},
			{Name: fieldContent, Type: db.IndexFieldText},
			{Name: fieldContentLen, Type: db.IndexFieldNumeric},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         opts.Dimensions,
				VectorDistance:    db.DistanceCosine,
				VectorM:           opts.HNSWM,
				VectorEFConstruct: opts.EFConstruction,
			},
		},
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// SearchSimilar runs a KNN search and returns vector-scored candidates in
// descending similarity order. Passages shorter than minContentLength
// characters are filtered inside the store.
func (r *Repo) SearchSimilar(
	ctx context.Context, vector []float32, minContentLength, topK int,
) ([]candidate.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:     indexName(),
		Vector:        vector,
		K:             topK,
		MinContentLen: minContentLength,
		ReturnFields:  searchReturnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	candidates := make([]candidate.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p := parseHashFields(passageID(entry.Key), entry.Fields)
		candidates = append(candidates, candidate.New(p, entry.Score, candidate.SourceVector))
	}
	return candidates, nil
}

// SearchKeywords returns passages whose content or section title contains
// one of the given phrases, up to limit.
func (r *Repo) SearchKeywords(
	ctx context.Context, keywords []string, minContentLength, limit int,
) ([]dompas.Passage, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	q := &db.PhraseQuery{
		IndexName:     indexName(),
		Phrases:       keywords,
		Fields:        []string{fieldContent, fieldSectionTitle},
		MinContentLen: minContentLength,
		Limit:         limit,
		ReturnFields:  searchReturnFields,
	}

	sr, err := r.store.SearchPhrase(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search keywords: %w", err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	passages := make([]dompas.Passage, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		passages = append(passages, parseHashFields(passageID(entry.Key), entry.Fields))
	}
	return passages, nil
}

// UpsertPassages writes all passages in a single pipelined round-trip.
func (r *Repo) UpsertPassages(ctx context.Context, passages []dompas.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(passages))
	for i := range passages {
		items[i] = db.HashSetItem{
			Key:    passageKey(passages[i].ID()),
			Fields: buildHashFields(&passages[i]),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert passages: %w", err)
	}
	return nil
}

// DeleteByDocument removes every passage belonging to documentID and
// returns the number deleted.
func (r *Repo) DeleteByDocument(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldDocumentID, tagEscaper.Replace(documentID))

	total, err := r.store.SearchCount(ctx, indexName(), query)
	if err != nil {
		return 0, fmt.Errorf("count passages for %s: %w", documentID, err)
	}
	if total == 0 {
		return 0, nil
	}

	sr, err := r.store.SearchList(ctx, indexName(), query, 0, total, []string{fieldDocumentID})
	if err != nil {
		return 0, fmt.Errorf("list passages for %s: %w", documentID, err)
	}

	keys := make([]string, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		keys = append(keys, entry.Key)
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return 0, fmt.Errorf("delete passages for %s: %w", documentID, err)
	}
	return len(keys), nil
}

// CountByDocument returns the number of stored passages for a document.
func (r *Repo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	query := fmt.Sprintf("@%s:{%s}", fieldDocumentID, tagEscaper.Replace(documentID))
	n, err := r.store.SearchCount(ctx, indexName(), query)
	if err != nil {
		return 0, fmt.Errorf("count passages for %s: %w", documentID, err)
	}
	return n, nil
}

func keyPrefix() string {
	return domain.KeyPrefix + "passage:"
}

func passageKey(id string) string {
	return keyPrefix() + id
}

func passageID(key string) string {
	return strings.TrimPrefix(key, keyPrefix())
}

func indexName() string {
	return domain.KeyPrefix + "passages:idx"
}

// tagEscaper escapes TAG query syntax. Passage document IDs are already
// restricted to [a-zA-Z0-9_-], but hyphens still need escaping in TAG queries.
var tagEscaper = strings.NewReplacer(
	"-", "\\-",
	"_", "\\_",
)
