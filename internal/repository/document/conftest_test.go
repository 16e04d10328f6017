package document

import (
	"context"
	"testing"
	"time"

	domdoc "github.com/helio-cloud/groundex/internal/domain/document"
)

// mockStore implements the store interface with overridable functions.
type mockStore struct {
	hSetFn    func(ctx context.Context, key string, fields map[string]string) error
	hGetAllFn func(ctx context.Context, key string) (map[string]string, error)
	delFn     func(ctx context.Context, key string) error
	existsFn  func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hSetFn != nil {
		return m.hSetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hGetAllFn != nil {
		return m.hGetAllFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDocument(t *testing.T) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("bsl", "BSL License", "Business Source License 1.1")
	if err != nil {
		t.Fatalf("create test document: %v", err)
	}
	return doc
}

func testCreatedAt() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}
