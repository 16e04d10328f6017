package document

import (
	"context"
	"fmt"
	"time"

	"github.com/helio-cloud/groundex/internal/domain"
	domdoc "github.com/helio-cloud/groundex/internal/domain/document"
)

// store is the consumer interface for document metadata (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements document metadata persistence.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save creates or replaces document metadata.
func (r *Repo) Save(ctx context.Context, doc *domdoc.Document) error {
	fields := map[string]string{
		"name":        doc.Name(),
		"description": doc.Description(),
		"created_at":  doc.CreatedAt().Format(time.RFC3339),
	}
	if err := r.store.HSet(ctx, docKey(doc.ID()), fields); err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID(), err)
	}
	return nil
}

// Get returns document metadata by ID.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, docKey(id))
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if len(m) == 0 {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}

	createdAt, _ := time.Parse(time.RFC3339, m["created_at"])
	return domdoc.Reconstruct(id, m["name"], m["description"], createdAt), nil
}

// Exists reports whether a document record is present.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return ok, nil
}

// Delete removes document metadata.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, docKey(id))
	if err != nil {
		return fmt.Errorf("check document %s: %w", id, err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}

	if err := r.store.Del(ctx, docKey(id)); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

func docKey(id string) string {
	return domain.KeyPrefix + "document:" + id
}
