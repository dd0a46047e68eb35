package engine

import (
	"context"
	"database/sql"
	"fmt"

	"duck-projection/internal/domain"
)

// Describe reports the columns of src as engine-side field specs, in source
// order. Types are translated with KernelTypeName.
func Describe(ctx context.Context, db *sql.DB, src Source) ([]domain.FieldSpec, error) {
	stmt, err := describeSQL(src)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", src, err)
	}
	defer func() { _ = rows.Close() }()

	var fields []domain.FieldSpec
	for rows.Next() {
		var (
			name, colType, null string
			key, dflt, extra    sql.NullString
		)
		if err := rows.Scan(&name, &colType, &null, &key, &dflt, &extra); err != nil {
			return nil, fmt.Errorf("scan describe row: %w", err)
		}
		fields = append(fields, domain.FieldSpec{
			Name:     name,
			Type:     KernelTypeName(colType),
			Nullable: null != "NO",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describe %s: %w", src, err)
	}
	return fields, nil
}

// describeSQL describes tables directly so NOT NULL constraints are reported;
// file reads and pinned snapshots go through a query.
func describeSQL(src Source) (string, error) {
	from, err := src.FromClause()
	if err != nil {
		return "", err
	}
	if src.Table != "" && src.Snapshot == nil {
		return "DESCRIBE " + from, nil
	}
	return "DESCRIBE SELECT * FROM " + from, nil
}
