package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
	"github.com/kailas-cloud/vocabsearch/internal/index"
	"github.com/kailas-cloud/vocabsearch/internal/index/tag"
	"github.com/kailas-cloud/vocabsearch/internal/index/tokenizer"
	"github.com/kailas-cloud/vocabsearch/internal/loader"
	logpkg "github.com/kailas-cloud/vocabsearch/internal/logger"
	"github.com/kailas-cloud/vocabsearch/internal/usecase/catalog"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
)

type pageOutput struct {
	Total     int          `json:"total"`
	Page      int          `json:"page"`
	Size      int          `json:"size"`
	PageCount int          `json:"page_count"`
	Items     []itemOutput `json:"items"`
}

type itemOutput struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Facets      document.Facets `json:"facets"`
}

// searchCommand loads the dataset, builds an index and prints one page.
func searchCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	logger, err := logpkg.NewLogger(logpkg.EnvCLI, c.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	selection, err := parseFacets(c.StringSlice("facet"))
	if err != nil {
		return err
	}
	mode := tag.Mode(c.String("facet-mode"))
	if !mode.IsValid() {
		return fmt.Errorf("facet-mode must be %q or %q", tag.ModeAny, tag.ModeAllKeys)
	}
	spec, err := sorting.NewSpec(c.String("sort"), sorting.Order(c.String("order")))
	if err != nil {
		return err
	}
	req, err := request.New(c.String("q"), selection, spec, c.Int("page"), c.Int("size"))
	if err != nil {
		return err
	}

	cfg, err := cliIndexConfig(c)
	if err != nil {
		return err
	}
	docs, err := loadSource(ctx, c, logger)
	if err != nil {
		return err
	}

	svc := searchuc.New(searchuc.Options{Index: cfg, FacetMode: mode}, nil, logger)
	if err := svc.BuildIndex(ctx, docs); err != nil {
		return err
	}
	page, err := svc.Query(ctx, &req)
	if err != nil {
		return err
	}

	out := pageOutput{
		Total:     page.Total,
		Page:      page.PageIndex,
		Size:      page.PageSize,
		PageCount: page.PageCount,
		Items:     make([]itemOutput, len(page.Items)),
	}
	for i := range page.Items {
		d := &page.Items[i]
		out.Items[i] = itemOutput{ID: d.ID(), Title: d.Title(), Description: d.Description(), Facets: d.Facets()}
	}
	return printJSON(c, out)
}

// filtersCommand loads the dataset and prints the filter option catalog.
func filtersCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	logger, err := logpkg.NewLogger(logpkg.EnvCLI, c.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := cliIndexConfig(c)
	if err != nil {
		return err
	}
	docs, err := loadSource(ctx, c, logger)
	if err != nil {
		return err
	}
	return printJSON(c, catalog.BuildFilterOptions(docs, document.FacetKeys, cfg.Locale))
}

func cliIndexConfig(c *cli.Context) (index.Config, error) {
	locale, err := language.Parse(c.String("locale"))
	if err != nil {
		return index.Config{}, fmt.Errorf("locale %q: %w", c.String("locale"), err)
	}
	cfg := index.DefaultConfig()
	cfg.Locale = locale
	if c.Bool("simple-charset") {
		cfg.Charset = tokenizer.CharsetSimple
	}
	return cfg, nil
}

func loadSource(ctx context.Context, c *cli.Context, logger *zap.Logger) ([]document.Document, error) {
	ldr, err := loader.New(c.String("source"),
		loader.WithFormat(loader.Format(c.String("format"))),
		loader.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return ldr.Load(ctx)
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
