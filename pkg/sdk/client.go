package vocabsearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/vocabsearch/internal/db"
	dbBadger "github.com/kailas-cloud/vocabsearch/internal/db/badger"
	dbRedis "github.com/kailas-cloud/vocabsearch/internal/db/redis"
	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/index"
	"github.com/kailas-cloud/vocabsearch/internal/index/tag"
	"github.com/kailas-cloud/vocabsearch/internal/index/tokenizer"
	"github.com/kailas-cloud/vocabsearch/internal/loader"
	selectionrepo "github.com/kailas-cloud/vocabsearch/internal/repository/selection"
	"github.com/kailas-cloud/vocabsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/vocabsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
	selectionuc "github.com/kailas-cloud/vocabsearch/internal/usecase/selection"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	BuildIndex(ctx context.Context, docs []document.Document) error
	Rebuild(ctx context.Context) (int, error)
	Get(id string) (document.Document, error)
	Query(ctx context.Context, req *request.Request) (searchuc.Page, error)
}

type selectionUseCase interface {
	Get(ctx context.Context, key string) ([]string, error)
	Toggle(ctx context.Context, key, value string) ([]string, bool, error)
	Reset(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

type filterUseCase interface {
	Options() catalog.Options
}

// Client is the embedded vocabsearch engine.
type Client struct {
	store     db.Store
	engine    *searchuc.Service
	searchSvc searchUseCase
	selSvc    selectionUseCase
	filterSvc filterUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and opens the selection storage. The index is empty
// until Rebuild or Index succeeds. The provided context is used for the
// storage readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		namespace: selectionrepo.DefaultNamespace,
		locale:    language.German,
		facetMode: FacetModeAny,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New(
			"vocabsearch: storage required (use WithBadger, WithInMemoryStorage, WithValkey or WithRedis)",
		)
	}
	if !tag.Mode(cfg.facetMode).IsValid() {
		return nil, fmt.Errorf("vocabsearch: unknown facet mode %q", cfg.facetMode)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("vocabsearch: storage not ready: %w", err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "badger":
		s, err := dbBadger.Open(dbBadger.Config{Path: cfg.badgerPath, InMemory: cfg.inMemory}, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("vocabsearch: open badger store: %w", err)
		}
		return s, nil
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("vocabsearch: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("vocabsearch: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	idxCfg := index.DefaultConfig()
	idxCfg.Locale = cfg.locale
	idxCfg.Workers = cfg.workers
	if cfg.simpleCharset {
		idxCfg.Charset = tokenizer.CharsetSimple
	}
	if len(cfg.fields) > 0 {
		idxCfg.SearchableFields = cfg.fields
	}

	// A nil *loader.Loader must not end up in the interface.
	var ldr searchuc.Loader
	if cfg.source != "" {
		l, err := loader.New(cfg.source,
			loader.WithFormat(loader.Format(cfg.format)),
			loader.WithTimeout(cfg.fetchTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("vocabsearch: %w", err)
		}
		ldr = l
	}

	filters := catalog.New(nil, idxCfg.Locale)
	engine := searchuc.New(searchuc.Options{
		Index:     idxCfg,
		FacetMode: tag.Mode(cfg.facetMode),
	}, ldr, nil, filters)
	selSvc := selectionuc.New(selectionrepo.New(store, cfg.namespace), nil)

	return &Client{
		store:     store,
		engine:    engine,
		searchSvc: engine,
		selSvc:    selSvc,
		filterSvc: filters,
		healthSvc: healthuc.New(store, engine),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks storage connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Rebuild reloads the configured source and replaces the index. On failure
// the previous index stays active. It returns the number of indexed documents.
func (c *Client) Rebuild(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.rebuild", start, err) }()

	n, err = c.searchSvc.Rebuild(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild: %w", err)
	}
	return n, nil
}

// Index replaces the index with docs. Documents sharing an ID are resolved
// last-wins; a document without an ID fails the whole call.
func (c *Client) Index(ctx context.Context, docs []Document) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.build", start, err) }()

	domDocs := make([]document.Document, len(docs))
	for i, d := range docs {
		dd, convErr := documentToDomain(d)
		if convErr != nil {
			return domain.NewBuildError(i, d.ID, convErr)
		}
		domDocs[i] = dd
	}
	if err = c.searchSvc.BuildIndex(ctx, domDocs); err != nil {
		return fmt.Errorf("index: %w", err)
	}
	return nil
}

// Document returns the indexed document with id.
func (c *Client) Document(id string) (doc Document, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document.get", start, err) }()

	d, err := c.searchSvc.Get(id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return documentFromDomain(&d), nil
}

// Filters returns the selectable values of every facet key.
func (c *Client) Filters() Filters {
	opts := c.filterSvc.Options()
	out := make(Filters, len(opts))
	for k, v := range opts {
		out[FacetKey(k)] = v
	}
	return out
}

// Search starts a query.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{c: c}
}

// Selection returns the persisted selection set stored under key.
func (c *Client) Selection(key string) *SelectionService {
	return &SelectionService{key: key, svc: c.selSvc, obs: c.obs}
}

// SelectionKeys lists every known selection key.
func (c *Client) SelectionKeys(ctx context.Context) (keys []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("selection.keys", start, err) }()

	keys, err = c.selSvc.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("selection keys: %w", err)
	}
	return keys, nil
}

// NewSession starts an interactive query session over the current index.
// pageSize <= 0 uses the default page size.
func (c *Client) NewSession(pageSize int) *Session {
	return &Session{s: searchuc.NewSession(c.engine, pageSize)}
}
