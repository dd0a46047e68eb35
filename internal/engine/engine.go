// Package engine reads projected columns from DuckDB sources.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver

	"duck-projection/internal/ddl"
	"duck-projection/internal/domain"
)

// Open opens a DuckDB database. An empty path opens an in-memory database.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}

// Source identifies what a scan reads from: either a file path (local, glob
// or s3://) or a table reference. Snapshot pins a table to a version.
type Source struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	Snapshot *int64 `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
}

// ParseSource interprets a command-line source argument. Arguments that look
// like paths or URLs become file sources; anything else is a table reference.
func ParseSource(arg string) Source {
	if strings.ContainsAny(arg, "/*?") || hasFileExtension(arg) {
		return Source{Path: arg}
	}
	return Source{Table: arg}
}

func hasFileExtension(p string) bool {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(strings.ToLower(p), ".gz"))) {
	case ".parquet", ".csv", ".tsv", ".json", ".jsonl", ".ndjson":
		return true
	}
	return false
}

// Validate checks that exactly one of Path and Table is set.
func (s Source) Validate() error {
	switch {
	case s.Path == "" && s.Table == "":
		return domain.ErrValidation("source requires a path or a table")
	case s.Path != "" && s.Table != "":
		return domain.ErrValidation("source cannot have both a path and a table")
	case s.Snapshot != nil && s.Table == "":
		return domain.ErrValidation("snapshot is only supported for table sources")
	case s.Snapshot != nil && *s.Snapshot < 0:
		return domain.ErrValidation("snapshot must be non-negative")
	}
	return nil
}

// String renders the source for logs.
func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	if s.Snapshot != nil {
		return fmt.Sprintf("%s@v%d", s.Table, *s.Snapshot)
	}
	return s.Table
}

// FromClause returns the relation expression used after FROM.
func (s Source) FromClause() (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if s.Path != "" {
		format := s.Format
		if format == "" {
			format = ddl.FileFormatFromPath(s.Path)
		}
		from, err := ddl.ReadFunction(s.Path, format)
		if err != nil {
			return "", domain.ErrValidation("%s", err.Error())
		}
		return from, nil
	}

	table, err := ddl.QualifiedName(s.Table)
	if err != nil {
		return "", domain.ErrValidation("%s", err.Error())
	}
	if s.Snapshot != nil {
		table += fmt.Sprintf(" AT (VERSION => %d)", *s.Snapshot)
	}
	return table, nil
}
