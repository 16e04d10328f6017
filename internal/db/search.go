package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName string
	Vector    []float32
	K         int
	// MinContentLen pre-filters on the indexed content_len numeric field
	// (0 disables the filter).
	MinContentLen int
	ReturnFields  []string
}

// PhraseQuery is the input for exact-phrase text search.
// Each phrase is matched against every field in Fields; phrases are
// OR-combined.
type PhraseQuery struct {
	IndexName     string
	Phrases       []string
	Fields        []string
	MinContentLen int
	Limit         int
	ReturnFields  []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
