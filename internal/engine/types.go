package engine

import (
	"fmt"
	"strings"

	"duck-projection/internal/schema"
)

// duckToKernel maps DuckDB column types onto kernel type names.
var duckToKernel = map[string]string{
	"BIGINT":                   "long",
	"INT8":                     "long",
	"VARCHAR":                  "string",
	"INTEGER":                  "integer",
	"INT4":                     "integer",
	"BOOLEAN":                  "boolean",
	"DOUBLE":                   "double",
	"FLOAT8":                   "double",
	"SMALLINT":                 "short",
	"INT2":                     "short",
	"TINYINT":                  "byte",
	"INT1":                     "byte",
	"FLOAT":                    "float",
	"REAL":                     "float",
	"FLOAT4":                   "float",
	"BLOB":                     "binary",
	"DATE":                     "date",
	"TIMESTAMP WITH TIME ZONE": "timestamp",
	"TIMESTAMPTZ":              "timestamp",
	"TIMESTAMP":                "timestamp_ntz",
}

// KernelTypeName converts a DuckDB column type as reported by DESCRIBE into
// a kernel type name. Types without a kernel equivalent (nested types,
// HUGEINT, UUID, INTERVAL, ...) come back lower-cased and unchanged, so a
// descriptor built from them skips the column.
func KernelTypeName(duckType string) string {
	t := strings.ToUpper(strings.TrimSpace(duckType))
	if name, ok := duckToKernel[t]; ok {
		return name
	}
	if strings.HasPrefix(t, "DECIMAL(") && strings.HasSuffix(t, ")") {
		return strings.ToLower(t)
	}
	return strings.ToLower(strings.TrimSpace(duckType))
}

// DuckDBType returns the DuckDB type used to CAST a column to the field's kind.
func DuckDBType(f schema.Field) string {
	switch f.Kind {
	case schema.KindLong:
		return "BIGINT"
	case schema.KindString:
		return "VARCHAR"
	case schema.KindInteger:
		return "INTEGER"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindDouble:
		return "DOUBLE"
	case schema.KindShort:
		return "SMALLINT"
	case schema.KindByte:
		return "TINYINT"
	case schema.KindFloat:
		return "FLOAT"
	case schema.KindBinary:
		return "BLOB"
	case schema.KindDate:
		return "DATE"
	case schema.KindTimestamp:
		return "TIMESTAMPTZ"
	case schema.KindTimestampNtz:
		return "TIMESTAMP"
	case schema.KindDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", f.Decimal.Precision(), f.Decimal.Scale())
	default:
		return ""
	}
}
