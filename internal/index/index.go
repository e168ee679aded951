// Package index bundles the document store, field index and tag index built from one dataset load.
package index

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/index/docstore"
	"github.com/kailas-cloud/vocabsearch/internal/index/field"
	"github.com/kailas-cloud/vocabsearch/internal/index/tag"
	"github.com/kailas-cloud/vocabsearch/internal/index/tokenizer"
)

// Config describes how a dataset is indexed.
type Config struct {
	Locale           language.Tag
	Charset          tokenizer.Charset
	Mode             tokenizer.Mode
	SearchableFields []string // priority order
	Workers          int      // tokenization workers; <= 0 means NumCPU
}

// DefaultConfig returns German full-mode indexing over title and description.
func DefaultConfig() Config {
	return Config{
		Locale:           language.German,
		Charset:          tokenizer.CharsetDefault,
		Mode:             tokenizer.ModeFull,
		SearchableFields: []string{document.FieldTitle, document.FieldDescription},
	}
}

// Index is an immutable snapshot once Build returns. It is safe for concurrent reads.
type Index struct {
	cfg    Config
	enc    tokenizer.Encoder
	docs   *docstore.Store
	fields *field.Index
	tags   *tag.Index
}

// Build indexes docs. Tokenization fans out over an ants pool; insertion is
// sequential in input order so the result is deterministic. Records sharing an
// ID are resolved last-wins. Any record without an ID fails the whole build.
func Build(ctx context.Context, cfg Config, docs []document.Document) (*Index, error) {
	for i := range docs {
		if docs[i].ID() == "" {
			return nil, domain.NewBuildError(i, "", document.ErrMissingID)
		}
	}

	enc := tokenizer.New(cfg.Locale, tokenizer.WithCharset(cfg.Charset), tokenizer.WithMode(cfg.Mode))
	fx, err := field.New(enc, cfg.SearchableFields)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuild, err)
	}

	analyses, err := analyze(ctx, fx, docs, cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuild, err)
	}

	x := &Index{
		cfg:    cfg,
		enc:    enc,
		docs:   docstore.New(),
		fields: fx,
		tags:   tag.New(),
	}
	for i := range docs {
		ord, _ := x.docs.Put(docs[i])
		x.fields.Insert(ord, docs[i].ID(), analyses[i])
		x.tags.Index(ord, &docs[i])
	}
	return x, nil
}

func analyze(ctx context.Context, fx *field.Index, docs []document.Document, workers int) ([]field.Analysis, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create tokenizer pool: %w", err)
	}
	defer pool.Release()

	out := make([]field.Analysis, len(docs))
	var wg sync.WaitGroup
	for i := range docs {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			out[i] = fx.Analyze(&docs[i])
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit tokenization: %w", err)
		}
	}
	wg.Wait()
	return out, nil
}

// Config returns the build configuration.
func (x *Index) Config() Config { return x.cfg }

// Encoder returns the tokenizer used for the field index.
func (x *Index) Encoder() tokenizer.Encoder { return x.enc }

// Len returns the number of distinct documents.
func (x *Index) Len() int { return x.docs.Len() }

// All returns every document in load order.
func (x *Index) All() []document.Document { return x.docs.All() }

// Get returns the document with id.
func (x *Index) Get(id string) (document.Document, bool) { return x.docs.Get(id) }

// Fields exposes the field index for read-only queries.
func (x *Index) Fields() *field.Index { return x.fields }

// Tags exposes the tag index for read-only queries.
func (x *Index) Tags() *tag.Index { return x.tags }

// Resolve maps ordinals to documents in ascending ordinal (load) order.
func (x *Index) Resolve(ords *roaring.Bitmap) []document.Document {
	out := make([]document.Document, 0, ords.GetCardinality())
	it := ords.Iterator()
	for it.HasNext() {
		if d, ok := x.docs.At(it.Next()); ok {
			out = append(out, d)
		}
	}
	return out
}
