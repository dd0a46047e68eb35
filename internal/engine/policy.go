package engine

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"duck-projection/internal/ddl"
	"duck-projection/internal/domain"
)

// SourcePolicy limits which files a scanner may read. Roots are local
// directories or remote prefixes such as "s3://bucket/raw/". Table sources
// are always allowed. A policy with no roots allows tables only.
type SourcePolicy struct {
	local  []string
	remote []string
}

// NewSourcePolicy resolves roots. Local roots are made absolute and have
// their symlinks resolved, so they must exist.
func NewSourcePolicy(roots []string) (*SourcePolicy, error) {
	p := &SourcePolicy{}
	for _, r := range roots {
		r = strings.TrimSpace(r)
		switch {
		case r == "":
			continue
		case isRemotePath(r):
			if !strings.HasSuffix(r, "/") {
				r += "/"
			}
			p.remote = append(p.remote, r)
		default:
			abs, err := filepath.Abs(r)
			if err != nil {
				return nil, fmt.Errorf("resolve source root %q: %w", r, err)
			}
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, fmt.Errorf("resolve source root %q: %w", r, err)
			}
			p.local = append(p.local, resolved)
		}
	}
	return p, nil
}

// Roots returns the resolved roots, local first.
func (p *SourcePolicy) Roots() []string {
	if p == nil {
		return nil
	}
	return append(slices.Clone(p.local), p.remote...)
}

// Check reports a ValidationError when src reads outside the roots.
func (p *SourcePolicy) Check(src Source) error {
	if p == nil || src.Path == "" {
		return nil
	}
	path := src.Path
	if slices.Contains(strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }), "..") {
		return domain.ErrValidation("source path %q may not contain '..'", path)
	}

	if isRemotePath(path) {
		for _, root := range p.remote {
			if strings.HasPrefix(path, root) {
				return nil
			}
		}
		return domain.ErrValidation("source path %q is outside the allowed roots", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.ErrValidation("invalid source path %q", path)
	}
	// Resolve the part before any glob so a symlinked directory cannot
	// point out of a root.
	base := abs
	if i := strings.IndexAny(abs, "*?[{"); i >= 0 {
		base = filepath.Dir(abs[:i] + "_")
	}
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}
	for _, root := range p.local {
		if within(root, base) {
			return nil
		}
	}
	return domain.ErrValidation("source path %q is outside the allowed roots", path)
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func isRemotePath(p string) bool {
	return strings.Contains(p, "://")
}

// Apply locks db to the policy: only the roots remain readable, for any
// query, and external access cannot be re-enabled. Applying to an already
// locked database is a no-op.
func (p *SourcePolicy) Apply(ctx context.Context, db *sql.DB) error {
	var enabled bool
	if err := db.QueryRowContext(ctx, "SELECT current_setting('enable_external_access')").Scan(&enabled); err != nil {
		return fmt.Errorf("read external access setting: %w", err)
	}
	if !enabled {
		return nil
	}

	var stmts []string
	if p != nil && len(p.remote) > 0 {
		stmts = append(stmts, "INSTALL httpfs", "LOAD httpfs")
	}
	if roots := p.Roots(); len(roots) > 0 {
		quoted := make([]string, len(roots))
		for i, r := range roots {
			if !strings.HasSuffix(r, "/") {
				r += "/"
			}
			quoted[i] = ddl.QuoteLiteral(r)
		}
		stmts = append(stmts, "SET GLOBAL allowed_directories = ["+strings.Join(quoted, ", ")+"]")
	}
	stmts = append(stmts, "SET GLOBAL enable_external_access = false")

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply source policy: %w", err)
		}
	}
	return nil
}
