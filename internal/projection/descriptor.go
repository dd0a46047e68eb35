// Package projection holds engine-side descriptors: column lists described in
// the engine's own terms that translate themselves into FieldVisitor calls.
package projection

import (
	"log/slog"

	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

// Compile-time check.
var _ schema.Projection = (*Descriptor)(nil)

// Descriptor is a named list of wanted columns. Fields whose type the kernel
// does not support are skipped, never aborting the projection.
type Descriptor struct {
	Name        string
	Description string
	Fields      []domain.FieldSpec
	Logger      *slog.Logger
}

// New returns a descriptor over fields. The slice is not copied.
func New(name string, fields []domain.FieldSpec, logger *slog.Logger) *Descriptor {
	return &Descriptor{Name: name, Fields: fields, Logger: logger}
}

// Describe announces each supported field in order.
func (d *Descriptor) Describe(v schema.FieldVisitor) {
	for _, f := range d.Fields {
		if !visitField(v, f) {
			d.logger().Debug("skipping field with unsupported type",
				"projection", d.Name, "field", f.Name, "type", f.Type)
		}
	}
}

// Build is shorthand for schema.Build(d).
func (d *Descriptor) Build() *schema.Schema {
	return schema.Build(d)
}

func (d *Descriptor) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

func visitField(v schema.FieldVisitor, f domain.FieldSpec) bool {
	kind, dt, err := schema.ParseType(f.Type)
	if err != nil {
		return false
	}
	var opts []schema.FieldOption
	if len(f.Metadata) > 0 {
		opts = append(opts, schema.WithMetadata(f.Metadata))
	}

	switch kind {
	case schema.KindLong:
		v.AddLong(f.Name, f.Nullable, opts...)
	case schema.KindString:
		v.AddString(f.Name, f.Nullable, opts...)
	case schema.KindInteger:
		v.AddInteger(f.Name, f.Nullable, opts...)
	case schema.KindBoolean:
		v.AddBoolean(f.Name, f.Nullable, opts...)
	case schema.KindDouble:
		v.AddDouble(f.Name, f.Nullable, opts...)
	case schema.KindShort:
		v.AddShort(f.Name, f.Nullable, opts...)
	case schema.KindByte:
		v.AddByte(f.Name, f.Nullable, opts...)
	case schema.KindFloat:
		v.AddFloat(f.Name, f.Nullable, opts...)
	case schema.KindBinary:
		v.AddBinary(f.Name, f.Nullable, opts...)
	case schema.KindDate:
		v.AddDate(f.Name, f.Nullable, opts...)
	case schema.KindTimestamp:
		v.AddTimestamp(f.Name, f.Nullable, opts...)
	case schema.KindTimestampNtz:
		v.AddTimestampNtz(f.Name, f.Nullable, opts...)
	case schema.KindDecimal:
		v.AddDecimal(f.Name, dt, f.Nullable, opts...)
	default:
		return false
	}
	return true
}

// Supported reports whether f would be announced by Describe.
func Supported(f domain.FieldSpec) bool {
	_, _, err := schema.ParseType(f.Type)
	return err == nil
}

// Unsupported returns the fields Describe would skip, in order.
func Unsupported(fields []domain.FieldSpec) []domain.FieldSpec {
	var out []domain.FieldSpec
	for _, f := range fields {
		if !Supported(f) {
			out = append(out, f)
		}
	}
	return out
}

// Select returns the named columns from fields in the requested order. With
// no columns it returns a copy of fields.
func Select(fields []domain.FieldSpec, columns ...string) ([]domain.FieldSpec, error) {
	if len(columns) == 0 {
		return append([]domain.FieldSpec(nil), fields...), nil
	}
	byName := make(map[string]domain.FieldSpec, len(fields))
	for _, f := range fields {
		if _, ok := byName[f.Name]; !ok {
			byName[f.Name] = f
		}
	}
	out := make([]domain.FieldSpec, 0, len(columns))
	picked := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		f, ok := byName[c]
		if !ok {
			return nil, domain.ErrNotFound("column %q not found", c)
		}
		if _, dup := picked[c]; dup {
			return nil, domain.ErrValidation("column %q selected more than once", c)
		}
		picked[c] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}
