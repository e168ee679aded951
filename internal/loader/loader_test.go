package loader

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

const jsonArray = `[
  {"id": "1", "title": "Bildung", "type": ["http://www.wikidata.org/entity/Q1469824"], "about": "Pädagogik"},
  {"id": "2", "title": "Schule", "description": "<p>Schul<b>formen</b> &amp; Stufen</p>",
   "educationalLevel": ["Grundschule", "Sekundarstufe"], "numerics": {"concepts": 12}}
]`

const jsonLines = `{"id": "1", "title": "Bildung"}

{"id": "2", "title": "Schule"}
`

const yamlList = `
- id: "1"
  title: Bildung
  about: [Pädagogik, Didaktik]
- id: "2"
  title: Schule
  tag: ~
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func load(t *testing.T, source string, opts ...Option) []document.Document {
	t.Helper()
	l, err := New(source, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	docs, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return docs
}

func TestLoad_JSONFile(t *testing.T) {
	docs := load(t, writeFile(t, "data.json", jsonArray))
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if !docs[0].IsVocabulary() {
		t.Error("first record should be a vocabulary")
	}
	facets := docs[0].Facets()
	if len(facets.About) != 1 || facets.About[0] != "Pädagogik" {
		t.Errorf("single string facet not accepted: %v", facets.About)
	}
	if got := docs[1].Description(); got != "Schul formen & Stufen" {
		t.Errorf("Description() = %q, want markup stripped", got)
	}
	if docs[1].Numerics()["concepts"] != 12 {
		t.Errorf("numerics not loaded: %v", docs[1].Numerics())
	}
}

func TestLoad_JSONLinesFile(t *testing.T) {
	for _, name := range []string{"data.jsonl", "data.json"} {
		docs := load(t, writeFile(t, name, jsonLines))
		if len(docs) != 2 || docs[1].ID() != "2" {
			t.Errorf("%s: unexpected documents %d", name, len(docs))
		}
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	docs := load(t, writeFile(t, "data.yaml", yamlList))
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	facets := docs[0].Facets()
	if len(facets.About) != 2 {
		t.Errorf("About = %v", facets.About)
	}
	f2 := docs[1].Facets()
	if len(f2.Tag) != 0 {
		t.Errorf("null tag should be empty, got %v", f2.Tag)
	}
}

func TestLoad_MissingIDFailsWholeLoad(t *testing.T) {
	path := writeFile(t, "data.json", `[{"id": "1"}, {"title": "ohne id"}]`)
	l, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	docs, err := l.Load(context.Background())
	if docs != nil {
		t.Errorf("partial result returned: %d documents", len(docs))
	}
	var be *domain.BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if be.Position != 1 || !errors.Is(err, document.ErrMissingID) {
		t.Errorf("unexpected build error: %v", be)
	}
}

func TestLoad_MalformedPayload(t *testing.T) {
	l, _ := New(writeFile(t, "data.json", `[{"id": 1}]`))
	_, err := l.Load(context.Background())
	if !errors.Is(err, domain.ErrBuild) {
		t.Fatalf("expected ErrBuild, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	l, _ := New(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_HTTP(t *testing.T) {
	var accept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write([]byte(yamlList))
	}))
	defer srv.Close()

	docs := load(t, srv.URL+"/dataset", WithHTTPClient(srv.Client()))
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if accept != acceptHeader {
		t.Errorf("Accept = %q, want %q", accept, acceptHeader)
	}
}

func TestLoad_HTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	l, _ := New(srv.URL, WithHTTPClient(srv.Client()))
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestLoad_HTTPTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	l, _ := New(srv.URL, WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
	_, err := l.Load(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("expected error for empty source")
	}
	if _, err := New("x.json", WithFormat("xml")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParse_Sniff(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"array", jsonArray, 2},
		{"lines", jsonLines, 2},
		{"yaml", yamlList, 2},
		{"empty", "", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := Parse([]byte(tc.data), FormatAuto)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if len(docs) != tc.want {
				t.Errorf("got %d documents, want %d", len(docs), tc.want)
			}
		})
	}
}

func TestHTMLCleaner(t *testing.T) {
	var c htmlCleaner
	tests := []struct {
		in, want string
	}{
		{"  plain   text ", "plain text"},
		{"<p>Hallo <em>Welt</em></p><script>alert(1)</script>", "Hallo Welt"},
		{"Bildung &amp; Schule", "Bildung & Schule"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := c.Clean(tc.in); got != tc.want {
			t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
