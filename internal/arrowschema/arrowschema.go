// Package arrowschema converts between kernel schemas and Apache Arrow
// schemas in both directions: Arrow schemas can act as engine-side
// projections, and finalized kernel schemas can be handed to Arrow readers.
package arrowschema

import (
	"slices"

	"github.com/apache/arrow-go/v18/arrow"

	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

// FromSchema returns the Arrow schema for a finalized kernel schema.
// Timestamps use microsecond precision; "timestamp" is UTC-adjusted,
// "timestamp_ntz" carries no zone.
func FromSchema(s *schema.Schema) *arrow.Schema {
	fields := make([]arrow.Field, 0, s.Len())
	for _, f := range s.All() {
		fields = append(fields, arrow.Field{
			Name:     f.Name,
			Type:     arrowType(f),
			Nullable: f.Nullable,
			Metadata: arrowMetadata(f.Metadata),
		})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(f schema.Field) arrow.DataType {
	switch f.Kind {
	case schema.KindLong:
		return arrow.PrimitiveTypes.Int64
	case schema.KindString:
		return arrow.BinaryTypes.String
	case schema.KindInteger:
		return arrow.PrimitiveTypes.Int32
	case schema.KindBoolean:
		return arrow.FixedWidthTypes.Boolean
	case schema.KindDouble:
		return arrow.PrimitiveTypes.Float64
	case schema.KindShort:
		return arrow.PrimitiveTypes.Int16
	case schema.KindByte:
		return arrow.PrimitiveTypes.Int8
	case schema.KindFloat:
		return arrow.PrimitiveTypes.Float32
	case schema.KindBinary:
		return arrow.BinaryTypes.Binary
	case schema.KindDate:
		return arrow.FixedWidthTypes.Date32
	case schema.KindTimestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}
	case schema.KindTimestampNtz:
		return &arrow.TimestampType{Unit: arrow.Microsecond}
	case schema.KindDecimal:
		return &arrow.Decimal128Type{Precision: int32(f.Decimal.Precision()), Scale: int32(f.Decimal.Scale())}
	default:
		// Finalized schemas only hold primitive kinds.
		return arrow.Null
	}
}

func arrowMetadata(md map[string]string) arrow.Metadata {
	if len(md) == 0 {
		return arrow.Metadata{}
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = md[k]
	}
	return arrow.NewMetadata(keys, values)
}

// NewProjection returns an engine-side projection over an Arrow schema.
// With no columns every field is described in schema order; otherwise the
// named columns are described in the given order. Nested and other types
// without a kernel kind are skipped.
func NewProjection(s *arrow.Schema, columns ...string) (schema.Projection, error) {
	var selected []arrow.Field
	if len(columns) == 0 {
		selected = s.Fields()
	} else {
		selected = make([]arrow.Field, 0, len(columns))
		for _, c := range columns {
			idx := s.FieldIndices(c)
			if len(idx) == 0 {
				return nil, domain.ErrNotFound("column %q not found in arrow schema", c)
			}
			selected = append(selected, s.Field(idx[0]))
		}
	}
	return schema.ProjectionFunc(func(v schema.FieldVisitor) {
		for _, f := range selected {
			visitArrowField(v, f)
		}
	}), nil
}

func visitArrowField(v schema.FieldVisitor, f arrow.Field) {
	var opts []schema.FieldOption
	if f.Metadata.Len() > 0 {
		md := make(map[string]string, f.Metadata.Len())
		for i, k := range f.Metadata.Keys() {
			md[k] = f.Metadata.Values()[i]
		}
		opts = append(opts, schema.WithMetadata(md))
	}

	switch f.Type.ID() {
	case arrow.INT64:
		v.AddLong(f.Name, f.Nullable, opts...)
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		v.AddString(f.Name, f.Nullable, opts...)
	case arrow.INT32:
		v.AddInteger(f.Name, f.Nullable, opts...)
	case arrow.BOOL:
		v.AddBoolean(f.Name, f.Nullable, opts...)
	case arrow.FLOAT64:
		v.AddDouble(f.Name, f.Nullable, opts...)
	case arrow.INT16:
		v.AddShort(f.Name, f.Nullable, opts...)
	case arrow.INT8:
		v.AddByte(f.Name, f.Nullable, opts...)
	case arrow.FLOAT32:
		v.AddFloat(f.Name, f.Nullable, opts...)
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.BINARY_VIEW:
		v.AddBinary(f.Name, f.Nullable, opts...)
	case arrow.DATE32, arrow.DATE64:
		v.AddDate(f.Name, f.Nullable, opts...)
	case arrow.TIMESTAMP:
		if f.Type.(*arrow.TimestampType).TimeZone != "" {
			v.AddTimestamp(f.Name, f.Nullable, opts...)
		} else {
			v.AddTimestampNtz(f.Name, f.Nullable, opts...)
		}
	case arrow.DECIMAL128:
		dt := f.Type.(*arrow.Decimal128Type)
		if d, err := schema.NewDecimalType(uint8(dt.Precision), uint8(dt.Scale)); err == nil {
			v.AddDecimal(f.Name, d, f.Nullable, opts...)
		}
	}
}
