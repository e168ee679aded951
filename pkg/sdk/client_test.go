package vocabsearch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"
)

const dataset = `[
  {"id": "v1", "title": "Schulfächer", "about": "Schule", "educationalLevel": ["Primarstufe"],
   "type": "http://www.wikidata.org/entity/Q1469824"},
  {"id": "v2", "title": "Bildungsstufe", "description": "Stufen der Bildung",
   "about": ["Bildung"], "educationalLevel": ["Sekundarstufe", "Primarstufe"],
   "type": ["http://www.wikidata.org/entity/Q1469824"]},
  {"id": "c1", "title": "Bildungsplan", "about": "Bildung"}
]`

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocabs.json")
	if err := os.WriteFile(path, []byte(dataset), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	opts = append([]Option{WithInMemoryStorage(), WithSource(path)}, opts...)
	c, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_NoStorage(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no storage configured")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNew_UnknownFacetMode(t *testing.T) {
	_, err := New(context.Background(), WithInMemoryStorage(), WithFacetMode("some"))
	if err == nil {
		t.Fatal("expected error for unknown facet mode")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" {
		t.Errorf("driver = %q, want valkey", cfg.driver)
	}
	if cfg.addrs[0] != "localhost:6379" {
		t.Errorf("addr = %q, want localhost:6379", cfg.addrs[0])
	}
	if cfg.password != "secret" {
		t.Errorf("password = %q, want secret", cfg.password)
	}

	cfg2 := &clientConfig{}
	WithRedis("localhost:6380", "pass").apply(cfg2)
	if cfg2.driver != "redis" {
		t.Errorf("driver = %q, want redis", cfg2.driver)
	}

	cfg3 := &clientConfig{}
	WithBadger("/tmp/sel").apply(cfg3)
	if cfg3.driver != "badger" || cfg3.badgerPath != "/tmp/sel" || cfg3.inMemory {
		t.Errorf("badger = (%q, %q, %v)", cfg3.driver, cfg3.badgerPath, cfg3.inMemory)
	}
	WithInMemoryStorage().apply(cfg3)
	if !cfg3.inMemory {
		t.Error("expected in-memory storage")
	}

	WithLocale(language.English).apply(cfg3)
	WithSimpleCharset().apply(cfg3)
	WithSearchableFields("title").apply(cfg3)
	WithBuildWorkers(2).apply(cfg3)
	WithFacetMode(FacetModeAllKeys).apply(cfg3)
	WithFetchTimeout(5 * time.Second).apply(cfg3)
	if cfg3.locale != language.English || !cfg3.simpleCharset || cfg3.workers != 2 {
		t.Errorf("index options not applied: %+v", cfg3)
	}
	if len(cfg3.fields) != 1 || cfg3.facetMode != FacetModeAllKeys || cfg3.fetchTimeout != 5*time.Second {
		t.Errorf("query options not applied: %+v", cfg3)
	}

	cfg4 := &clientConfig{}
	logger := slog.Default()
	WithLogger(logger).apply(cfg4)
	if cfg4.logger != logger {
		t.Error("expected logger to be set")
	}

	cfg5 := &clientConfig{}
	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg5)
	if cfg5.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestClient_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	if _, err := c.Search().Do(ctx); !errors.Is(err, ErrIndexNotReady) {
		t.Fatalf("search before build: err = %v, want ErrIndexNotReady", err)
	}

	n, err := c.Rebuild(ctx)
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if n != 3 {
		t.Errorf("indexed = %d, want 3", n)
	}

	p, err := c.Search().Do(ctx)
	if err != nil {
		t.Fatalf("unfiltered search: %v", err)
	}
	if p.Total != 2 || p.Items[0].ID != "v1" || p.Items[1].ID != "v2" {
		t.Errorf("unfiltered = %+v, want vocabularies v1, v2", p)
	}

	p, err = c.Search().Term("bild").Facet(FacetAbout, "Bildung").SortBy("title", Asc).Do(ctx)
	if err != nil {
		t.Fatalf("filtered search: %v", err)
	}
	if p.Total != 2 || p.Items[0].ID != "c1" || p.Items[1].ID != "v2" {
		t.Errorf("filtered = %+v, want c1, v2", p)
	}

	doc, err := c.Document("v2")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Title != "Bildungsstufe" {
		t.Errorf("title = %q", doc.Title)
	}
	if _, err := c.Document("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing document: err = %v, want ErrNotFound", err)
	}

	about := c.Filters()[FacetAbout]
	if len(about) != 2 || about[0] != "Bildung" || about[1] != "Schule" {
		t.Errorf("about filters = %v", about)
	}

	if h := c.Health(ctx); h.Status != "ok" {
		t.Errorf("health = %+v, want ok", h)
	}
}

func TestClient_Index(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	err := c.Index(ctx, []Document{
		{ID: "a", Title: "Fächer", Types: []string{VocabularyType}},
		{ID: "a", Title: "Schulfächer", Types: []string{VocabularyType}},
	})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	doc, err := c.Document("a")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Title != "Schulfächer" {
		t.Errorf("title = %q, want last duplicate to win", doc.Title)
	}

	err = c.Index(ctx, []Document{{Title: "no id"}})
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
	if _, err := c.Document("a"); err != nil {
		t.Errorf("previous index lost: %v", err)
	}
}

func TestClient_Selections(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	sel := c.Selection("favourites")

	selected, err := sel.Toggle(ctx, "v1")
	if err != nil || !selected {
		t.Fatalf("toggle on = (%v, %v)", selected, err)
	}
	if _, err := sel.Toggle(ctx, "v2"); err != nil {
		t.Fatalf("toggle v2: %v", err)
	}
	selected, err = sel.Toggle(ctx, "v1")
	if err != nil || selected {
		t.Fatalf("toggle off = (%v, %v)", selected, err)
	}

	values, err := sel.Values(ctx)
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if len(values) != 1 || values[0] != "v2" {
		t.Errorf("values = %v, want [v2]", values)
	}

	keys, err := c.SelectionKeys(ctx)
	if err != nil {
		t.Fatalf("SelectionKeys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "favourites" {
		t.Errorf("keys = %v", keys)
	}

	if err := sel.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	values, _ = sel.Values(ctx)
	if len(values) != 0 {
		t.Errorf("values after reset = %v", values)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("document.get", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("document.get", time.Now(), errors.New("fail"))
	obs.observe("document.get", time.Now(), ErrPersistence)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, f := range families {
		if f.GetName() == "vocabsearch_sdk_operations_total" {
			found = true
			if len(f.GetMetric()) != 3 {
				t.Errorf("expected 3 metric samples (ok, error, warning), got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("vocabsearch_sdk_operations_total not found")
	}

	// A second observer on the same registry reuses the collectors.
	if _, err := newObserver(nil, reg); err != nil {
		t.Errorf("second observer: %v", err)
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
}
