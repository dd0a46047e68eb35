package domain

import (
	"context"
	"time"
)

// FieldSpec is the engine's own description of one wanted column. Type is
// free text (e.g. "long", "decimal(10,2)", "STRUCT(a INTEGER)"); the kernel
// decides whether it maps to a supported kind.
type FieldSpec struct {
	Name     string            `json:"name" yaml:"name"`
	Type     string            `json:"type" yaml:"type"`
	Nullable bool              `json:"nullable" yaml:"nullable"`
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Projection is a named, persisted column projection.
type Projection struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Fields      []FieldSpec `json:"fields"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ProjectionRepository persists named projections.
type ProjectionRepository interface {
	Create(ctx context.Context, p *Projection) (*Projection, error)
	GetByName(ctx context.Context, name string) (*Projection, error)
	List(ctx context.Context, page PageRequest) ([]Projection, int64, error)
	Delete(ctx context.Context, name string) error
}
