package projection

import (
	"context"

	"duck-projection/internal/domain"
	"duck-projection/internal/engine"
)

// === Projection Repository Mock ===

type mockProjectionRepo struct {
	createFn    func(ctx context.Context, p *domain.Projection) (*domain.Projection, error)
	getByNameFn func(ctx context.Context, name string) (*domain.Projection, error)
	listFn      func(ctx context.Context, page domain.PageRequest) ([]domain.Projection, int64, error)
	deleteFn    func(ctx context.Context, name string) error
}

func (m *mockProjectionRepo) Create(ctx context.Context, p *domain.Projection) (*domain.Projection, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	panic("unexpected call to mockProjectionRepo.Create")
}

func (m *mockProjectionRepo) GetByName(ctx context.Context, name string) (*domain.Projection, error) {
	if m.getByNameFn != nil {
		return m.getByNameFn(ctx, name)
	}
	panic("unexpected call to mockProjectionRepo.GetByName")
}

func (m *mockProjectionRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Projection, int64, error) {
	if m.listFn != nil {
		return m.listFn(ctx, page)
	}
	panic("unexpected call to mockProjectionRepo.List")
}

func (m *mockProjectionRepo) Delete(ctx context.Context, name string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	panic("unexpected call to mockProjectionRepo.Delete")
}

// === Scanner Mock ===

type mockScanner struct {
	describeFn func(ctx context.Context, src engine.Source) ([]domain.FieldSpec, error)
	scanFn     func(ctx context.Context, req engine.ScanRequest) (*engine.Result, error)
}

func (m *mockScanner) Describe(ctx context.Context, src engine.Source) ([]domain.FieldSpec, error) {
	if m.describeFn != nil {
		return m.describeFn(ctx, src)
	}
	panic("unexpected call to mockScanner.Describe")
}

func (m *mockScanner) Scan(ctx context.Context, req engine.ScanRequest) (*engine.Result, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, req)
	}
	panic("unexpected call to mockScanner.Scan")
}
