package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/page"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/result"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
	"github.com/kailas-cloud/vocabsearch/internal/index"
	"github.com/kailas-cloud/vocabsearch/internal/index/field"
	"github.com/kailas-cloud/vocabsearch/internal/index/tag"
	"github.com/kailas-cloud/vocabsearch/internal/metrics"
)

// Options configures the query engine.
type Options struct {
	Index     index.Config
	FacetMode tag.Mode
}

// Page is one projected page of a query.
type Page struct {
	Items     []document.Document
	Total     int
	PageIndex int
	PageSize  int
	PageCount int
}

// Service is the query engine. The active index is replaced atomically on a
// successful build; queries always run against one consistent snapshot.
type Service struct {
	opts      Options
	loader    Loader
	observers []BuildObserver
	logger    *zap.Logger

	buildMu sync.Mutex
	current atomic.Pointer[index.Index]
}

// New creates a query engine. loader may be nil when the index is only built from BuildIndex.
func New(opts Options, loader Loader, logger *zap.Logger, observers ...BuildObserver) *Service {
	if opts.FacetMode == "" {
		opts.FacetMode = tag.ModeAny
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{opts: opts, loader: loader, observers: observers, logger: logger}
}

// BuildIndex indexes docs and activates the result. On failure the previous
// index, if any, stays active.
func (s *Service) BuildIndex(ctx context.Context, docs []document.Document) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.build(ctx, docs)
}

// Rebuild loads the collection through the loader and rebuilds the index.
// It returns the number of indexed documents.
func (s *Service) Rebuild(ctx context.Context) (int, error) {
	if s.loader == nil {
		return 0, fmt.Errorf("%w: no document source configured", domain.ErrBuild)
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	docs, err := s.loader.Load(ctx)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues(metrics.BuildFailed).Inc()
		s.logger.Error("Document load failed, keeping previous index", zap.Error(err))
		if errors.Is(err, domain.ErrBuild) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: load documents: %w", domain.ErrBuild, err)
	}
	if err := s.build(ctx, docs); err != nil {
		return 0, err
	}
	return s.current.Load().Len(), nil
}

func (s *Service) build(ctx context.Context, docs []document.Document) error {
	start := time.Now()
	s.logger.Info("Index build started", zap.Int("records", len(docs)))

	x, err := index.Build(ctx, s.opts.Index, docs)
	duration := time.Since(start)
	metrics.IndexBuildDuration.Observe(duration.Seconds())
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues(metrics.BuildFailed).Inc()
		s.logger.Error("Index build rejected, keeping previous index",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("build index: %w", err)
	}

	s.current.Store(x)
	metrics.IndexBuildsTotal.WithLabelValues(metrics.BuildOK).Inc()
	metrics.IndexDocuments.Set(float64(x.Len()))
	s.logger.Info("Index build finished",
		zap.Int("documents", x.Len()),
		zap.Duration("duration", duration),
	)

	if len(s.observers) > 0 {
		all := x.All()
		for _, o := range s.observers {
			o.IndexBuilt(all)
		}
	}
	return nil
}

// Ready reports whether an index has been built.
func (s *Service) Ready() bool { return s.current.Load() != nil }

// Documents returns every indexed document in load order.
func (s *Service) Documents() []document.Document {
	x := s.current.Load()
	if x == nil {
		return []document.Document{}
	}
	return x.All()
}

// Get returns the document with id.
func (s *Service) Get(id string) (document.Document, error) {
	x := s.current.Load()
	if x == nil {
		return document.Document{}, domain.ErrIndexNotReady
	}
	d, ok := x.Get(id)
	if !ok {
		return document.Document{}, fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

// FillAll returns every vocabulary document in load order without consulting
// the field or tag index.
func (s *Service) FillAll() []document.Document {
	return fillAll(s.current.Load())
}

func fillAll(x *index.Index) []document.Document {
	out := []document.Document{}
	if x == nil {
		return out
	}
	metrics.QueriesTotal.WithLabelValues(metrics.QueryFillAll).Inc()
	for _, d := range x.All() {
		if d.IsVocabulary() {
			out = append(out, d)
		}
	}
	return out
}

// Search evaluates term under the selected facet values. It never fails: a term
// without words and an empty selection is an unfiltered fetch, and a selection
// that matches nothing yields an empty list rather than a wider result.
func (s *Service) Search(term string, selected document.Facets) []document.Document {
	return s.search(s.current.Load(), term, selected)
}

func (s *Service) search(x *index.Index, term string, selected document.Facets) []document.Document {
	if x == nil {
		return []document.Document{}
	}
	hasTerm := len(x.Encoder().Words(term)) > 0
	if !hasTerm && selected.IsEmpty() {
		return fillAll(x)
	}

	metrics.QueriesTotal.WithLabelValues(metrics.QuerySearch).Inc()

	var filter *roaring.Bitmap
	if !selected.IsEmpty() {
		filter = x.Tags().Filter(selected, s.opts.FacetMode)
	}
	if !hasTerm {
		return x.Resolve(filter)
	}

	groups, err := x.Fields().Search(term, field.SearchOptions{Filter: filter})
	if err != nil {
		// Unreachable for a term with words; treat as no match.
		s.logger.Warn("Field search failed", zap.String("term", term), zap.Error(err))
		return []document.Document{}
	}

	hits := result.Flatten(groups)
	out := make([]document.Document, 0, len(hits))
	for i := range hits {
		if d, ok := x.Get(hits[i].ID()); ok {
			out = append(out, d)
		}
	}
	return out
}

// Query evaluates req and projects the sorted page it asks for.
func (s *Service) Query(_ context.Context, req *request.Request) (Page, error) {
	x := s.current.Load()
	if x == nil {
		return Page{}, domain.ErrIndexNotReady
	}

	docs := s.search(x, req.Term(), req.Selection())
	docs = sorting.Sort(docs, req.Sort(), x.Config().Locale)

	w := page.Window{Index: req.PageIndex(), Size: req.PageSize(), Total: len(docs)}
	return Page{
		Items:     page.Paginate(docs, w.Index, w.Size),
		Total:     w.Total,
		PageIndex: w.Index,
		PageSize:  w.Size,
		PageCount: w.Count(),
	}, nil
}

// Sort orders docs with the locale of the active index.
func (s *Service) Sort(docs []document.Document, spec sorting.Spec) []document.Document {
	locale := s.opts.Index.Locale
	if x := s.current.Load(); x != nil {
		locale = x.Config().Locale
	}
	return sorting.Sort(docs, spec, locale)
}
