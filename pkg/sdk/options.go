package vocabsearch

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver     string // "badger", "valkey" or "redis"
	addrs      []string
	password   string
	badgerPath string
	inMemory   bool
	namespace  string

	source       string
	format       string
	fetchTimeout time.Duration

	locale        language.Tag
	simpleCharset bool
	facetMode     FacetMode
	fields        []string
	workers       int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithBadger stores selections in an embedded BadgerDB at path.
func WithBadger(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerPath = path
		c.inMemory = false
	})
}

// WithInMemoryStorage keeps selections in an in-memory BadgerDB. Nothing
// survives Close; useful for tests and one-shot tools.
func WithInMemoryStorage() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.inMemory = true
	})
}

// WithValkey stores selections in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores selections in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithNamespace prefixes every stored selection key. Default: "vocabsearch".
func WithNamespace(ns string) Option {
	return optionFunc(func(c *clientConfig) {
		c.namespace = ns
	})
}

// WithSource sets the dataset Rebuild loads: a file path or an http(s) URL.
func WithSource(source string) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = source
	})
}

// WithFormat forces the dataset format: "json", "jsonl" or "yaml".
// By default the format is detected.
func WithFormat(format string) Option {
	return optionFunc(func(c *clientConfig) {
		c.format = format
	})
}

// WithFetchTimeout bounds one HTTP dataset fetch. Default: 30s.
func WithFetchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.fetchTimeout = d
	})
}

// WithLocale sets the locale for case folding and sorting. Default: German.
func WithLocale(tag language.Tag) Option {
	return optionFunc(func(c *clientConfig) {
		c.locale = tag
	})
}

// WithSimpleCharset strips diacritics so "Übung" matches "ubung".
func WithSimpleCharset() Option {
	return optionFunc(func(c *clientConfig) {
		c.simpleCharset = true
	})
}

// WithFacetMode selects how selected facet values combine. Default: FacetModeAny.
func WithFacetMode(m FacetMode) Option {
	return optionFunc(func(c *clientConfig) {
		c.facetMode = m
	})
}

// WithSearchableFields sets the text fields in priority order.
// Default: title, description.
func WithSearchableFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = fields
	})
}

// WithBuildWorkers sets the number of tokenization workers. Default: NumCPU.
func WithBuildWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
