// Package loader reads the vocabulary dataset from a file or an HTTP URL.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
)

// Format is a dataset serialization.
type Format string

const (
	// FormatAuto detects the format from the file extension, the content type or the payload.
	FormatAuto Format = ""
	// FormatJSON is a JSON array of records.
	FormatJSON Format = "json"
	// FormatJSONLines is one JSON record per line.
	FormatJSONLines Format = "jsonl"
	// FormatYAML is a YAML sequence of records.
	FormatYAML Format = "yaml"
)

const (
	// DefaultTimeout bounds one HTTP fetch.
	DefaultTimeout = 30 * time.Second
	// MaxPayloadSize is the largest accepted dataset.
	MaxPayloadSize = 256 << 20

	acceptHeader = "application/json, application/x-ndjson;q=0.9, application/yaml;q=0.8"
)

// Loader loads the complete dataset on every call. Any malformed record fails
// the whole load.
type Loader struct {
	source  string
	format  Format
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFormat forces the dataset format.
func WithFormat(f Format) Option { return func(l *Loader) { l.format = f } }

// WithHTTPClient replaces the HTTP client used for URL sources.
func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// WithTimeout bounds one fetch. Zero keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option { return func(l *Loader) { l.logger = logger } }

// New creates a Loader for source, a file path or an http(s) URL.
func New(source string, opts ...Option) (*Loader, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("dataset source is required")
	}
	l := &Loader{
		source:  source,
		client:  http.DefaultClient,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	switch l.format {
	case FormatAuto, FormatJSON, FormatJSONLines, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown dataset format %q", l.format)
	}
	return l, nil
}

// Source returns the configured source.
func (l *Loader) Source() string { return l.source }

// Load reads and parses the dataset.
func (l *Loader) Load(ctx context.Context) ([]document.Document, error) {
	start := time.Now()

	data, format, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.source, err)
	}

	l.logger.Info("Dataset loaded",
		zap.String("source", l.source),
		zap.Int("records", len(docs)),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return docs, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, Format, error) {
	if isURL(l.source) {
		return l.fetch(ctx)
	}

	f, err := os.Open(l.source)
	if err != nil {
		return nil, "", fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", l.source, err)
	}
	format := l.format
	if format == FormatAuto {
		format = formatFromExt(filepath.Ext(l.source))
	}
	return data, format, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, Format, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", l.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %s", l.source, resp.Status)
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", l.source, err)
	}

	format := l.format
	if format == FormatAuto {
		format = formatFromContentType(resp.Header.Get("Content-Type"))
	}
	if format == FormatAuto {
		format = formatFromExt(filepath.Ext(req.URL.Path))
	}
	return data, format, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPayloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPayloadSize {
		return nil, fmt.Errorf("dataset larger than %d bytes", MaxPayloadSize)
	}
	return data, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func formatFromExt(ext string) Format {
	switch strings.ToLower(ext) {
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONLines
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

func formatFromContentType(ct string) Format {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return FormatAuto
	}
	switch mt {
	case "application/json":
		return FormatJSON
	case "application/x-ndjson", "application/jsonl", "application/x-jsonlines":
		return FormatJSONLines
	case "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML
	}
	return FormatAuto
}

// sniff guesses the format of data when nothing else identified it.
func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	switch {
	case len(trimmed) == 0:
		return FormatJSON
	case trimmed[0] == '[':
		return FormatJSON
	case trimmed[0] == '{':
		return FormatJSONLines
	}
	return FormatYAML
}

// Parse decodes data into documents. Every record must carry an ID; the first
// invalid record fails the whole parse with a *domain.BuildError.
func Parse(data []byte, format Format) ([]document.Document, error) {
	if format == FormatAuto {
		format = sniff(data)
	}
	// A JSON file may hold either an array or one record per line.
	if format == FormatJSON && sniff(data) == FormatJSONLines {
		format = FormatJSONLines
	}

	var (
		records []record
		err     error
	)
	switch format {
	case FormatJSON:
		records, err = decodeJSON(data)
	case FormatJSONLines:
		records, err = decodeJSONLines(data)
	case FormatYAML:
		records, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBuild, err)
	}

	var cleaner htmlCleaner
	docs := make([]document.Document, len(records))
	for i := range records {
		d, err := records[i].toDocument(cleaner)
		if err != nil {
			return nil, domain.NewBuildError(i, records[i].ID, err)
		}
		docs[i] = d
	}
	return docs, nil
}

func decodeJSON(data []byte) ([]record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []record{}, nil
	}
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return records, nil
}

func decodeJSONLines(data []byte) ([]record, error) {
	var records []record
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), MaxPayloadSize)
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode json line %d: %w", line, err)
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan json lines: %w", err)
	}
	return records, nil
}

func decodeYAML(data []byte) ([]record, error) {
	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return records, nil
}
