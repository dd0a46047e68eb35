package engine

import (
	"fmt"
	"strings"

	"duck-projection/internal/ddl"
	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

// Query describes a projected read.
type Query struct {
	Source Source
	// Schema selects and types the output columns. Nil selects every column.
	Schema *schema.Schema
	// Columns, when set, are the source columns as reported by Describe.
	// They are used to reject unknown columns and to decide where a CAST
	// is needed.
	Columns []domain.FieldSpec
	Where   string
	Limit   int
}

// BuildSelect renders q as a DuckDB SELECT statement.
func BuildSelect(q Query) (string, error) {
	from, err := q.Source.FromClause()
	if err != nil {
		return "", err
	}

	projection, err := selectList(q.Schema, q.Columns)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(projection)
	b.WriteString(" FROM ")
	b.WriteString(from)
	if where := strings.TrimSpace(q.Where); where != "" {
		if err := validateFilter(where); err != nil {
			return "", err
		}
		b.WriteString(" WHERE (")
		b.WriteString(where)
		b.WriteString(")")
	}
	if q.Limit < 0 {
		return "", domain.ErrValidation("limit must be non-negative")
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), nil
}

// validateFilter keeps a filter inside its WHERE parentheses: outside quoted
// text it may not contain statement separators or comments, and its
// parentheses must balance without ever closing the enclosing one.
func validateFilter(where string) error {
	var (
		quote rune
		depth int
		prev  rune
	)
	for _, r := range where {
		if quote != 0 {
			if r == quote {
				quote = 0
			}
			prev = r
			continue
		}
		switch {
		case r == '\'' || r == '"':
			quote = r
		case r == ';':
			return domain.ErrValidation("filter must be a single expression")
		case r == '-' && prev == '-', r == '*' && prev == '/':
			return domain.ErrValidation("filter may not contain comments")
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return domain.ErrValidation("filter has an unmatched closing parenthesis")
			}
		}
		prev = r
	}
	if quote != 0 {
		return domain.ErrValidation("filter has an unterminated quote")
	}
	if depth != 0 {
		return domain.ErrValidation("filter has an unclosed parenthesis")
	}
	return nil
}

func selectList(s *schema.Schema, columns []domain.FieldSpec) (string, error) {
	if s == nil {
		return "*", nil
	}
	if s.Len() == 0 {
		return "", domain.ErrValidation("projection selects no columns")
	}
	if err := s.Validate(); err != nil {
		return "", err
	}

	var stored map[string]string
	if columns != nil {
		stored = make(map[string]string, len(columns))
		for _, c := range columns {
			stored[c.Name] = c.Type
		}
	}

	exprs := make([]string, 0, s.Len())
	for _, f := range s.All() {
		col := ddl.QuoteIdentifier(f.Name)
		if stored == nil {
			exprs = append(exprs, col)
			continue
		}
		typ, ok := stored[f.Name]
		if !ok {
			return "", domain.ErrNotFound("column %q not found in source", f.Name)
		}
		if typ == f.TypeName() {
			exprs = append(exprs, col)
			continue
		}
		exprs = append(exprs, fmt.Sprintf("CAST(%s AS %s) AS %s", col, DuckDBType(f), col))
	}
	return strings.Join(exprs, ", "), nil
}
