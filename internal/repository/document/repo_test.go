package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/helio-cloud/groundex/internal/domain"
)

// --- Save ---

func TestSave_WritesFields(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	doc := testDocument(t)

	var gotKey string
	var gotFields map[string]string
	ms.hSetFn = func(_ context.Context, key string, fields map[string]string) error {
		gotKey = key
		gotFields = fields
		return nil
	}

	if err := repo.Save(ctx, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "groundex:document:bsl" {
		t.Errorf("unexpected key: %s", gotKey)
	}
	if gotFields["name"] != "BSL License" {
		t.Errorf("unexpected name: %s", gotFields["name"])
	}
	if gotFields["description"] != "Business Source License 1.1" {
		t.Errorf("unexpected description: %s", gotFields["description"])
	}
	if _, err := time.Parse(time.RFC3339, gotFields["created_at"]); err != nil {
		t.Errorf("created_at not RFC3339: %q", gotFields["created_at"])
	}
}

func TestSave_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	doc := testDocument(t)

	ms.hSetFn = func(_ context.Context, _ string, _ map[string]string) error {
		return errors.New("OOM")
	}

	if err := repo.Save(context.Background(), &doc); err == nil {
		t.Fatal("expected error on HSET failure")
	}
}

// --- Get ---

func TestGet_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	ms.hGetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "groundex:document:bsl" {
			t.Errorf("unexpected key: %s", key)
		}
		return map[string]string{
			"name":        "BSL License",
			"description": "Business Source License 1.1",
			"created_at":  testCreatedAt().Format(time.RFC3339),
		}, nil
	}

	doc, err := repo.Get(ctx, "bsl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "bsl" {
		t.Errorf("expected ID bsl, got %s", doc.ID())
	}
	if doc.Name() != "BSL License" {
		t.Errorf("unexpected name: %s", doc.Name())
	}
	if !doc.CreatedAt().Equal(testCreatedAt()) {
		t.Errorf("unexpected created_at: %v", doc.CreatedAt())
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hGetAllFn = func(_ context.Context, _ string) (map[string]string, error) {
		return map[string]string{}, nil
	}

	_, err := repo.Get(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDelete_HappyPath(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	var deleted string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}

	if err := repo.Delete(context.Background(), "bsl"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "groundex:document:bsl" {
		t.Errorf("unexpected key: %s", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return false, nil }

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

// --- Exists ---

func TestExists(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.existsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }

	ok, err := repo.Exists(context.Background(), "bsl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected exists=true")
	}
}
