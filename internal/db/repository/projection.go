package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"duck-projection/internal/domain"
)

// ProjectionRepo implements domain.ProjectionRepository. Writes go through
// the single-connection write pool, reads through the read pool.
type ProjectionRepo struct {
	write *sql.DB
	read  *sql.DB
}

// NewProjectionRepo creates a new ProjectionRepo. readDB may be nil, in
// which case writeDB serves reads too.
func NewProjectionRepo(writeDB, readDB *sql.DB) *ProjectionRepo {
	if readDB == nil {
		readDB = writeDB
	}
	return &ProjectionRepo{write: writeDB, read: readDB}
}

var _ domain.ProjectionRepository = (*ProjectionRepo)(nil)

// Create inserts a new projection. The ID and timestamps are assigned here.
func (r *ProjectionRepo) Create(ctx context.Context, p *domain.Projection) (*domain.Projection, error) {
	fields := p.Fields
	if fields == nil {
		fields = []domain.FieldSpec{}
	}
	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	out := *p
	out.ID = domain.NewID()
	out.Fields = fields
	out.CreatedAt = now
	out.UpdatedAt = now

	_, err = r.write.ExecContext(ctx, `
		INSERT INTO projections (id, name, description, fields_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		out.ID, out.Name, out.Description, string(fieldsJSON), formatTime(now), formatTime(now))
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(mapDBError(err), &conflict) {
			return nil, domain.ErrConflict("projection %q already exists", p.Name)
		}
		return nil, fmt.Errorf("insert projection: %w", err)
	}
	return &out, nil
}

// GetByName returns the projection with the given name.
func (r *ProjectionRepo) GetByName(ctx context.Context, name string) (*domain.Projection, error) {
	row := r.read.QueryRowContext(ctx, `
		SELECT id, name, description, fields_json, created_at, updated_at
		FROM projections WHERE name = ?`, name)
	p, err := scanProjection(row)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(mapDBError(err), &notFound) {
			return nil, domain.ErrNotFound("projection %q not found", name)
		}
		return nil, fmt.Errorf("get projection: %w", err)
	}
	return p, nil
}

// List returns a page of projections ordered by name, plus the total count.
func (r *ProjectionRepo) List(ctx context.Context, page domain.PageRequest) ([]domain.Projection, int64, error) {
	var total int64
	if err := r.read.QueryRowContext(ctx, `SELECT count(*) FROM projections`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projections: %w", err)
	}

	rows, err := r.read.QueryContext(ctx, `
		SELECT id, name, description, fields_json, created_at, updated_at
		FROM projections ORDER BY name LIMIT ? OFFSET ?`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list projections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []domain.Projection{}
	for rows.Next() {
		p, err := scanProjection(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list projections: %w", err)
	}
	return out, total, nil
}

// Delete removes the projection with the given name.
func (r *ProjectionRepo) Delete(ctx context.Context, name string) error {
	res, err := r.write.ExecContext(ctx, `DELETE FROM projections WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete projection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete projection: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound("projection %q not found", name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProjection(row rowScanner) (*domain.Projection, error) {
	var (
		p                    domain.Projection
		fieldsJSON           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &fieldsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &p.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of projection %q: %w", p.Name, err)
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
