package app

import (
	"context"
	"fmt"

	"duck-projection/internal/domain"
	"duck-projection/internal/service/projection"
)

// exampleProjection mirrors the three-column projection used throughout the
// docs: a required id, an optional name and a required flag.
var exampleProjection = projection.CreateRequest{
	Name:        "example_events",
	Description: "example projection: id, name, active",
	Fields: []domain.FieldSpec{
		{Name: "id", Type: "long", Nullable: false},
		{Name: "name", Type: "string", Nullable: true},
		{Name: "active", Type: "boolean", Nullable: false},
	},
}

// seedProjections stores the example projection when the store is empty.
// Idempotent.
func seedProjections(ctx context.Context, svc *projection.Service) error {
	_, total, err := svc.List(ctx, domain.PageRequest{MaxResults: 1})
	if err != nil {
		return fmt.Errorf("list projections: %w", err)
	}
	if total > 0 {
		return nil // already seeded
	}
	if _, err := svc.Create(ctx, exampleProjection); err != nil {
		return fmt.Errorf("create %s: %w", exampleProjection.Name, err)
	}
	return nil
}
