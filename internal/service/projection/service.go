// Package projection provides business logic for stored column projections:
// validating and persisting definitions, building kernel schemas from them and
// scanning sources through them.
package projection

import (
	"context"
	"fmt"
	"log/slog"

	"duck-projection/internal/ddl"
	"duck-projection/internal/domain"
	"duck-projection/internal/engine"
	desc "duck-projection/internal/projection"
	"duck-projection/internal/schema"
)

// Scanner reads projected columns from a source.
type Scanner interface {
	Describe(ctx context.Context, src engine.Source) ([]domain.FieldSpec, error)
	Scan(ctx context.Context, req engine.ScanRequest) (*engine.Result, error)
}

// Service provides business logic for projection management.
type Service struct {
	projections domain.ProjectionRepository
	scanner     Scanner
	logger      *slog.Logger
}

// NewService creates a new projection Service. scanner may be nil when no
// DuckDB connection is configured; Scan and Infer then fail.
func NewService(projections domain.ProjectionRepository, scanner Scanner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		projections: projections,
		scanner:     scanner,
		logger:      logger.With("component", "projection-service"),
	}
}

// CreateRequest holds the fields for a new stored projection.
type CreateRequest struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Fields      []domain.FieldSpec `json:"fields"`
}

// Validate checks the name and field names. Duplicate field names are
// rejected so stored projections always build a usable schema.
func (r CreateRequest) Validate() error {
	if err := ddl.ValidateIdentifier(r.Name); err != nil {
		return domain.ErrValidation("invalid projection name: %s", err.Error())
	}
	seen := make(map[string]struct{}, len(r.Fields))
	for i, f := range r.Fields {
		if f.Name == "" {
			return domain.ErrValidation("field %d has no name", i)
		}
		if _, dup := seen[f.Name]; dup {
			return domain.ErrValidation("duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// BuildResult is a built schema plus the fields left out of it.
type BuildResult struct {
	Schema  *schema.Schema     `json:"schema"`
	Skipped []domain.FieldSpec `json:"skipped"`
}

// Create validates and stores a new projection.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Projection, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := s.projections.Create(ctx, &domain.Projection{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("projection created", "name", p.Name, "fields", len(p.Fields))
	return p, nil
}

// Get retrieves a projection by name.
func (s *Service) Get(ctx context.Context, name string) (*domain.Projection, error) {
	return s.projections.GetByName(ctx, name)
}

// List returns a paginated list of projections.
func (s *Service) List(ctx context.Context, page domain.PageRequest) ([]domain.Projection, int64, error) {
	return s.projections.List(ctx, page)
}

// Delete removes a projection.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := s.projections.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("projection deleted", "name", name)
	return nil
}

// Build turns inline fields into a kernel schema.
func (s *Service) Build(name string, fields []domain.FieldSpec) (*BuildResult, error) {
	d := desc.New(name, fields, s.logger)
	sch, err := schema.TryBuild(d)
	if err != nil {
		return nil, fmt.Errorf("build schema for %q: %w", name, err)
	}
	skipped := desc.Unsupported(fields)
	if skipped == nil {
		skipped = []domain.FieldSpec{}
	}
	return &BuildResult{Schema: sch, Skipped: skipped}, nil
}

// BuildStored builds the schema of a stored projection, optionally narrowed
// to the given columns.
func (s *Service) BuildStored(ctx context.Context, name string, columns ...string) (*BuildResult, error) {
	p, err := s.projections.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	fields, err := desc.Select(p.Fields, columns...)
	if err != nil {
		return nil, err
	}
	return s.Build(p.Name, fields)
}

// ScanRequest is a scan of a source through a stored projection.
type ScanRequest struct {
	Source  engine.Source `json:"source"`
	Columns []string      `json:"columns,omitempty"`
	Where   string        `json:"where,omitempty"`
	Limit   int           `json:"limit,omitempty"`
}

// Scan reads src through the stored projection name.
func (s *Service) Scan(ctx context.Context, name string, req ScanRequest) (*engine.Result, error) {
	if s.scanner == nil {
		return nil, domain.ErrValidation("scanning is not configured")
	}
	built, err := s.BuildStored(ctx, name, req.Columns...)
	if err != nil {
		return nil, err
	}
	if len(built.Skipped) > 0 {
		s.logger.Debug("scan skips unsupported fields", "projection", name, "skipped", len(built.Skipped))
	}
	return s.scanner.Scan(ctx, engine.ScanRequest{
		Source: req.Source,
		Schema: built.Schema,
		Where:  req.Where,
		Limit:  req.Limit,
	})
}

// Infer describes src so its columns can be saved as a projection.
func (s *Service) Infer(ctx context.Context, src engine.Source) ([]domain.FieldSpec, error) {
	if s.scanner == nil {
		return nil, domain.ErrValidation("scanning is not configured")
	}
	return s.scanner.Describe(ctx, src)
}
