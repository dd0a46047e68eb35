package engine

import (
	"context"
	"database/sql"
	"fmt"

	"duck-projection/internal/ddl"
)

// S3Config holds credentials for reading s3:// sources through httpfs.
type S3Config struct {
	KeyID    string
	Secret   string
	Endpoint string
	Region   string
	URLStyle string
}

// Configured reports whether enough settings are present to create a secret.
func (c S3Config) Configured() bool {
	return c.KeyID != "" && c.Secret != ""
}

// CreateS3Secret creates (or replaces) a DuckDB S3 secret.
func CreateS3Secret(ctx context.Context, db *sql.DB, name string, cfg S3Config) error {
	secretSQL, err := ddl.CreateS3Secret(name, cfg.KeyID, cfg.Secret, cfg.Endpoint, cfg.Region, cfg.URLStyle)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	for _, stmt := range []string{"INSTALL httpfs", "LOAD httpfs"} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	if _, err := db.ExecContext(ctx, secretSQL); err != nil {
		return fmt.Errorf("create S3 secret %q: %w", name, err)
	}
	return nil
}

// DropSecret removes a named DuckDB secret.
func DropSecret(ctx context.Context, db *sql.DB, name string) error {
	dropSQL, err := ddl.DropSecret(name)
	if err != nil {
		return fmt.Errorf("build DDL: %w", err)
	}
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop secret %q: %w", name, err)
	}
	return nil
}
