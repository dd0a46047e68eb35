// Package api serves the projection HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"duck-projection/internal/domain"
	"duck-projection/internal/engine"
	"duck-projection/internal/schema"
	svc "duck-projection/internal/service/projection"
)

// ProjectionService is the business logic behind the handlers.
type ProjectionService interface {
	Create(ctx context.Context, req svc.CreateRequest) (*domain.Projection, error)
	Get(ctx context.Context, name string) (*domain.Projection, error)
	List(ctx context.Context, page domain.PageRequest) ([]domain.Projection, int64, error)
	Delete(ctx context.Context, name string) error
	Build(name string, fields []domain.FieldSpec) (*svc.BuildResult, error)
	BuildStored(ctx context.Context, name string, columns ...string) (*svc.BuildResult, error)
	Scan(ctx context.Context, name string, req svc.ScanRequest) (*engine.Result, error)
	Infer(ctx context.Context, src engine.Source) ([]domain.FieldSpec, error)
}

// Handler implements the HTTP endpoints.
type Handler struct {
	projections ProjectionService
	logger      *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(projections ProjectionService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{projections: projections, logger: logger.With("component", "api")}
}

// Routes mounts the /v1 endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/schemas/build", h.buildSchema)
	r.Post("/sources/describe", h.describeSource)

	r.Route("/projections", func(r chi.Router) {
		r.Get("/", h.listProjections)
		r.Post("/", h.createProjection)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.getProjection)
			r.Delete("/", h.deleteProjection)
			r.Get("/schema", h.projectionSchema)
			r.Post("/scan", h.scanProjection)
		})
	})
}

// SchemaResponse is a built schema with the fields it left out.
type SchemaResponse struct {
	Schema  *schema.Schema     `json:"schema"`
	Display string             `json:"display"`
	Skipped []domain.FieldSpec `json:"skipped"`
}

func schemaResponse(res *svc.BuildResult) SchemaResponse {
	return SchemaResponse{Schema: res.Schema, Display: res.Schema.String(), Skipped: res.Skipped}
}

// BuildSchemaRequest carries inline fields to build without storing them.
type BuildSchemaRequest struct {
	Name   string             `json:"name,omitempty"`
	Fields []domain.FieldSpec `json:"fields"`
}

func (h *Handler) buildSchema(w http.ResponseWriter, r *http.Request) {
	var req BuildSchemaRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Name == "" {
		req.Name = "inline"
	}
	res, err := h.projections.Build(req.Name, req.Fields)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse(res))
}

// DescribeSourceRequest names a source to describe.
type DescribeSourceRequest struct {
	Source engine.Source `json:"source"`
}

// DescribeSourceResponse lists the columns of a source.
type DescribeSourceResponse struct {
	Fields []domain.FieldSpec `json:"fields"`
}

func (h *Handler) describeSource(w http.ResponseWriter, r *http.Request) {
	var req DescribeSourceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	fields, err := h.projections.Infer(r.Context(), req.Source)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if fields == nil {
		fields = []domain.FieldSpec{}
	}
	writeJSON(w, http.StatusOK, DescribeSourceResponse{Fields: fields})
}

// ListProjectionsResponse is one page of stored projections.
type ListProjectionsResponse struct {
	Projections   []domain.Projection `json:"projections"`
	NextPageToken string              `json:"next_page_token,omitempty"`
	Total         int64               `json:"total"`
}

func (h *Handler) listProjections(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items, total, err := h.projections.List(r.Context(), page)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListProjectionsResponse{
		Projections:   items,
		NextPageToken: domain.NextPageToken(page.Offset(), page.Limit(), total),
		Total:         total,
	})
}

func (h *Handler) createProjection(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.projections.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) getProjection(w http.ResponseWriter, r *http.Request) {
	p, err := h.projections.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deleteProjection(w http.ResponseWriter, r *http.Request) {
	if err := h.projections.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) projectionSchema(w http.ResponseWriter, r *http.Request) {
	var columns []string
	if v := r.URL.Query().Get("columns"); v != "" {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}
	res, err := h.projections.BuildStored(r.Context(), chi.URLParam(r, "name"), columns...)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schemaResponse(res))
}

func (h *Handler) scanProjection(w http.ResponseWriter, r *http.Request) {
	var req svc.ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.projections.Scan(r.Context(), chi.URLParam(r, "name"), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// pageFromQuery extracts a PageRequest from optional max_results/page_token params.
func pageFromQuery(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	p := domain.PageRequest{PageToken: q.Get("page_token")}
	if v := q.Get("max_results"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, domain.ErrValidation("max_results must be a non-negative integer")
		}
		p.MaxResults = n
	}
	return p, nil
}
