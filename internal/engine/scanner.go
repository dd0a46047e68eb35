package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

const (
	// DefaultScanLimit applies when a scan request sets no limit.
	DefaultScanLimit = 1000
	// MaxScanLimit caps the rows a single scan may return.
	MaxScanLimit = 100000
)

// ScanRequest is a projected read of a source.
type ScanRequest struct {
	Source Source
	Schema *schema.Schema
	Where  string
	Limit  int
}

// Result holds the rows of a scan.
type Result struct {
	SQL      string          `json:"sql"`
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

// Scanner runs projected reads against a DuckDB connection.
type Scanner struct {
	db     *sql.DB
	logger *slog.Logger
	policy *SourcePolicy
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(db *sql.DB, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scanner{db: db, logger: logger.With("component", "scanner")}
}

// DB returns the underlying connection.
func (s *Scanner) DB() *sql.DB { return s.db }

// Restrict makes the scanner reject sources outside p. It returns s.
func (s *Scanner) Restrict(p *SourcePolicy) *Scanner {
	s.policy = p
	return s
}

// Describe reports the columns of src.
func (s *Scanner) Describe(ctx context.Context, src Source) ([]domain.FieldSpec, error) {
	if err := s.policy.Check(src); err != nil {
		return nil, err
	}
	return Describe(ctx, s.db, src)
}

// Scan describes the source, builds the projected SELECT and runs it.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*Result, error) {
	if err := s.policy.Check(req.Source); err != nil {
		return nil, err
	}
	limit := req.Limit
	switch {
	case limit == 0:
		limit = DefaultScanLimit
	case limit > MaxScanLimit:
		limit = MaxScanLimit
	}

	q := Query{Source: req.Source, Schema: req.Schema, Where: req.Where, Limit: limit}
	if req.Schema != nil {
		cols, err := Describe(ctx, s.db, req.Source)
		if err != nil {
			return nil, err
		}
		q.Columns = cols
	}

	stmt, err := BuildSelect(q)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("running scan", "source", req.Source.String(), "sql", stmt)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("execute scan: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result, err := scanRows(rows, limit)
	if err != nil {
		return nil, fmt.Errorf("scan results: %w", err)
	}
	result.SQL = stmt

	s.logger.Info("scan complete",
		"source", req.Source.String(),
		"columns", len(result.Columns),
		"rows", result.RowCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// scanRows reads at most limit rows; limit <= 0 reads all of them.
func scanRows(rows *sql.Rows, limit int) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := [][]interface{}{}
	for (limit <= 0 || len(resultRows) < limit) && rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		resultRows = append(resultRows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Result{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
