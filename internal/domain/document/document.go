// Package document holds the source document metadata that passages are
// grouped under. The document record carries display metadata only; the
// retrievable text lives in passages.
package document

import (
	"fmt"
	"regexp"
	"time"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Document is a source document's metadata (immutable value object).
type Document struct {
	id          string
	name        string
	description string
	createdAt   time.Time
}

// New validates and creates a Document.
func New(id, name, description string) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	if name == "" {
		return Document{}, fmt.Errorf("document name is required")
	}

	return Document{
		id:          id,
		name:        name,
		description: description,
		createdAt:   time.Now().UTC(),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(id, name, description string, createdAt time.Time) Document {
	return Document{id: id, name: name, description: description, createdAt: createdAt}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Name returns the display name used in packed context headers.
func (d *Document) Name() string { return d.name }

// Description returns the optional description.
func (d *Document) Description() string { return d.description }

// CreatedAt returns the ingestion timestamp.
func (d *Document) CreatedAt() time.Time { return d.createdAt }
