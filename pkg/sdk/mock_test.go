package vocabsearch

import (
	"context"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/usecase/catalog"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	buildFn   func(ctx context.Context, docs []document.Document) error
	rebuildFn func(ctx context.Context) (int, error)
	getFn     func(id string) (document.Document, error)
	queryFn   func(ctx context.Context, req *request.Request) (searchuc.Page, error)
}

func (m *mockSearchUC) BuildIndex(ctx context.Context, docs []document.Document) error {
	return m.buildFn(ctx, docs)
}

func (m *mockSearchUC) Rebuild(ctx context.Context) (int, error) {
	return m.rebuildFn(ctx)
}

func (m *mockSearchUC) Get(id string) (document.Document, error) {
	return m.getFn(id)
}

func (m *mockSearchUC) Query(ctx context.Context, req *request.Request) (searchuc.Page, error) {
	return m.queryFn(ctx, req)
}

// --- selectionUseCase mock ---

type mockSelectionUC struct {
	getFn    func(ctx context.Context, key string) ([]string, error)
	toggleFn func(ctx context.Context, key, value string) ([]string, bool, error)
	resetFn  func(ctx context.Context, key string) error
	keysFn   func(ctx context.Context) ([]string, error)
}

func (m *mockSelectionUC) Get(ctx context.Context, key string) ([]string, error) {
	return m.getFn(ctx, key)
}

func (m *mockSelectionUC) Toggle(ctx context.Context, key, value string) ([]string, bool, error) {
	return m.toggleFn(ctx, key, value)
}

func (m *mockSelectionUC) Reset(ctx context.Context, key string) error {
	return m.resetFn(ctx, key)
}

func (m *mockSelectionUC) Keys(ctx context.Context) ([]string, error) {
	return m.keysFn(ctx)
}

// --- filterUseCase mock ---

type mockFilterUC struct {
	opts catalog.Options
}

func (m *mockFilterUC) Options() catalog.Options { return m.opts }
