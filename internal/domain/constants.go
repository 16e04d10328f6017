package domain

// KeyPrefix namespaces all groundex keys and indexes in the store.
const KeyPrefix = "groundex:"

// DefaultEmbeddingDim is the system embedding dimensionality. Changing the
// embedding model requires re-embedding the whole passage collection, so the
// dimension is a single system constant, not a per-call parameter.
const DefaultEmbeddingDim = 1536
