package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/vocabsearch/internal/config"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/index"
	"github.com/kailas-cloud/vocabsearch/internal/index/tokenizer"
	"github.com/kailas-cloud/vocabsearch/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "vocabsearch:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "vocabsearch",
		Usage:   "Faceted full-text search over vocabulary descriptions",
		Version: fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override the log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Build the index from the configured source and serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "env",
						Usage:   "Environment; selects config/<env>.yaml and the log format",
						EnvVars: []string{"ENV"},
						Value:   "local",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a config file (overrides --env lookup)",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Query a dataset once and print one page of results as JSON",
				Action: searchCommand,
				Flags: append(sourceFlags(),
					&cli.StringFlag{Name: "q", Usage: "Free-text search term"},
					&cli.StringSliceFlag{Name: "facet", Aliases: []string{"f"}, Usage: "Selected facet value as key=value (repeatable)"},
					&cli.StringFlag{Name: "facet-mode", Usage: "How facet keys combine: any or all_keys", Value: "any"},
					&cli.StringFlag{Name: "sort", Usage: "Sort key, e.g. title"},
					&cli.StringFlag{Name: "order", Usage: "Sort order: asc or desc"},
					&cli.IntFlag{Name: "page", Usage: "Zero-based page index"},
					&cli.IntFlag{Name: "size", Usage: "Page size", Value: 20},
				),
			},
			{
				Name:   "filters",
				Usage:  "Print the selectable values of every facet key as JSON",
				Action: filtersCommand,
				Flags:  sourceFlags(),
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "source",
			Aliases:  []string{"s"},
			Usage:    "Dataset file or http(s) URL",
			Required: true,
		},
		&cli.StringFlag{Name: "format", Usage: "Dataset format: json, jsonl or yaml (default: detect)"},
		&cli.StringFlag{Name: "locale", Usage: "Locale for case folding and collation", Value: "de"},
		&cli.BoolFlag{Name: "simple-charset", Usage: "Strip diacritics when matching"},
	}
}

// indexConfig converts the index section of the configuration.
func indexConfig(c config.IndexConfig) index.Config {
	cfg := index.DefaultConfig()
	cfg.Locale = c.LocaleTag()
	if c.Charset == "simple" {
		cfg.Charset = tokenizer.CharsetSimple
	}
	if len(c.SearchableFields) > 0 {
		cfg.SearchableFields = c.SearchableFields
	}
	cfg.Workers = c.BuildWorkers
	return cfg
}

// parseFacets turns key=value pairs into a selection.
func parseFacets(pairs []string) (document.Facets, error) {
	var sel document.Facets
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(v) == "" {
			return document.Facets{}, fmt.Errorf("facet %q: expected key=value", p)
		}
		key, err := document.ParseFacetKey(strings.TrimSpace(k))
		if err != nil {
			return document.Facets{}, err
		}
		sel.Set(key, append(sel.Values(key), strings.TrimSpace(v)))
	}
	return sel, nil
}
