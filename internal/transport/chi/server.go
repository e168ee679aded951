// Package chi exposes the search engine and selection state over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vocabsearch/internal/domain"
	"github.com/kailas-cloud/vocabsearch/internal/domain/document"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/request"
	"github.com/kailas-cloud/vocabsearch/internal/domain/search/sorting"
	"github.com/kailas-cloud/vocabsearch/internal/metrics"
	"github.com/kailas-cloud/vocabsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/vocabsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
	selectionuc "github.com/kailas-cloud/vocabsearch/internal/usecase/selection"
)

const maxToggleBodyBytes = 64 << 10

// Options configures request defaults and authentication.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	APIKeys         []string
}

// Server serves the HTTP API.
type Server struct {
	search     *searchuc.Service
	catalog    *catalog.Service
	selections *selectionuc.Service
	health     *healthuc.Service
	logger     *zap.Logger
	opts       Options
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	filters *catalog.Service,
	selections *selectionuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	opts Options,
) *Server {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = request.DefaultPageSize
	}
	if opts.MaxPageSize <= 0 || opts.MaxPageSize > request.MaxPageSize {
		opts.MaxPageSize = request.MaxPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:     search,
		catalog:    filters,
		selections: selections,
		health:     health,
		logger:     logger,
		opts:       opts,
	}
}

// Handler builds the router with the middleware chain.
func (s *Server) Handler() http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.opts.APIKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/search", s.Search)
	r.Get("/documents/{id}", s.GetDocument)
	r.Get("/filters", s.Filters)
	r.Post("/index/rebuild", s.Rebuild)
	r.Get("/selections", s.ListSelections)
	r.Get("/selections/{key}", s.GetSelection)
	r.Post("/selections/{key}/toggle", s.ToggleSelection)
	r.Delete("/selections/{key}", s.ResetSelection)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

// searchParams are the query parameters of GET /search.
type searchParams struct {
	Q                *string
	About            []string
	EducationalLevel []string
	Identifier       []string
	Tag              []string
	Sort             *string
	Order            *string
	Page             *int
	Size             *int
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	query := r.URL.Query()
	binds := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{string(document.FacetAbout), &p.About},
		{string(document.FacetEducationalLevel), &p.EducationalLevel},
		{string(document.FacetIdentifier), &p.Identifier},
		{string(document.FacetTag), &p.Tag},
		{"sort", &p.Sort},
		{"order", &p.Order},
		{"page", &p.Page},
		{"size", &p.Size},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return searchParams{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
	}
	return p, nil
}

func (s *Server) searchRequest(p searchParams) (request.Request, error) {
	var selection document.Facets
	selection.Set(document.FacetAbout, p.About)
	selection.Set(document.FacetEducationalLevel, p.EducationalLevel)
	selection.Set(document.FacetIdentifier, p.Identifier)
	selection.Set(document.FacetTag, p.Tag)

	spec, err := sorting.NewSpec(deref(p.Sort), sorting.Order(deref(p.Order)))
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	size := s.opts.DefaultPageSize
	if p.Size != nil {
		if *p.Size <= 0 {
			return request.Request{}, fmt.Errorf("%w: size must be positive", domain.ErrInvalidRequest)
		}
		size = min(*p.Size, s.opts.MaxPageSize)
	}
	pageIndex := 0
	if p.Page != nil {
		pageIndex = *p.Page
	}

	req, err := request.New(deref(p.Q), selection, spec, pageIndex, size)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	return req, nil
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	req, err := s.searchRequest(params)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}

	page, err := s.search.Query(r.Context(), &req)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// GetDocument handles GET /documents/{id}. IDs are usually URIs and must be path-escaped.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", gochi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid document id")
		return
	}

	doc, err := s.search.Get(id)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// Filters handles GET /filters.
func (s *Server) Filters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Options())
}

// Rebuild handles POST /index/rebuild.
func (s *Server) Rebuild(w http.ResponseWriter, r *http.Request) {
	n, err := s.search.Rebuild(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{Documents: n})
}

// ListSelections handles GET /selections.
func (s *Server) ListSelections(w http.ResponseWriter, r *http.Request) {
	keys, err := s.selections.Keys(r.Context())
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionKeysResponse{Keys: nonNil(keys)})
}

// GetSelection handles GET /selections/{key}.
func (s *Server) GetSelection(w http.ResponseWriter, r *http.Request) {
	key := gochi.URLParam(r, "key")
	values, err := s.selections.Get(r.Context(), key)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionResponse{Key: key, Values: nonNil(values)})
}

// ToggleSelection handles POST /selections/{key}/toggle.
func (s *Server) ToggleSelection(w http.ResponseWriter, r *http.Request) {
	var body ToggleRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToggleBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	key := gochi.URLParam(r, "key")
	values, selected, err := s.selections.Toggle(r.Context(), key, body.Value)
	resp := SelectionResponse{Key: key, Values: nonNil(values), Selected: &selected}
	if err != nil && !s.warn(w, &resp, err) {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetSelection handles DELETE /selections/{key}.
func (s *Server) ResetSelection(w http.ResponseWriter, r *http.Request) {
	key := gochi.URLParam(r, "key")
	err := s.selections.Reset(r.Context(), key)
	resp := SelectionResponse{Key: key, Values: []string{}}
	if err != nil && !s.warn(w, &resp, err) {
		handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// warn attaches a persistence warning to resp. It reports false if err is not a warning.
func (s *Server) warn(w http.ResponseWriter, resp *SelectionResponse, err error) bool {
	var pw *domain.PersistenceWarning
	if !errors.As(err, &pw) {
		return false
	}
	resp.Warning = domain.ErrPersistence.Error()
	w.Header().Set(persistenceWarningHeader, pw.Key)
	return true
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
