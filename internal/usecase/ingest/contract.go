package ingest

import (
	"context"

	domdoc "github.com/helio-cloud/groundex/internal/domain/document"
	dompas "github.com/helio-cloud/groundex/internal/domain/passage"
)

// PassageWriter writes and removes passage hashes.
type PassageWriter interface {
	UpsertPassages(ctx context.Context, passages []dompas.Passage) error
	DeleteByDocument(ctx context.Context, documentID string) (int, error)
}

// DocumentStore persists document metadata.
type DocumentStore interface {
	Save(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}
