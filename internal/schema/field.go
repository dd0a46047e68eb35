package schema

import (
	"maps"
)

// Field is one column of a Schema.
type Field struct {
	Name     string
	Kind     Kind
	Nullable bool
	Decimal  DecimalType // only meaningful when Kind is KindDecimal
	Metadata map[string]string
}

// TypeName returns the kernel type name, e.g. "long" or "decimal(10,2)".
func (f Field) TypeName() string {
	if f.Kind == KindDecimal {
		return f.Decimal.String()
	}
	return f.Kind.String()
}

func (f Field) String() string {
	s := f.Name + ": " + f.TypeName()
	if !f.Nullable {
		s += " not null"
	}
	return s
}

func (f Field) clone() Field {
	f.Metadata = maps.Clone(f.Metadata)
	return f
}

// FieldOption decorates a field as it is added. Options only carry
// annotations; name, kind and nullability come from the add operation.
type FieldOption struct {
	apply func(*fieldOpts)
}

type fieldOpts struct {
	metadata map[string]string
}

// WithMetadata attaches column metadata. The map is copied; later options
// override earlier keys.
func WithMetadata(md map[string]string) FieldOption {
	return FieldOption{apply: func(o *fieldOpts) {
		for k, v := range md {
			if o.metadata == nil {
				o.metadata = make(map[string]string, len(md))
			}
			o.metadata[k] = v
		}
	}}
}
