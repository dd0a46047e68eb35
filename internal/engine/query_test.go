package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

func isNotFound(err error) bool {
	var target *domain.NotFoundError
	return errors.As(err, &target)
}

func isValidation(err error) bool {
	var target *domain.ValidationError
	return errors.As(err, &target)
}

func exampleSchema() *schema.Schema {
	return schema.Build(schema.ProjectionFunc(func(v schema.FieldVisitor) {
		v.AddLong("id", false)
		v.AddString("name", true)
		v.AddBoolean("active", false)
	}))
}

func TestBuildSelect(t *testing.T) {
	snap := int64(3)
	dup := schema.Build(schema.ProjectionFunc(func(v schema.FieldVisitor) {
		v.AddLong("id", false)
		v.AddLong("id", true)
	}))
	empty := schema.Build(schema.ProjectionFunc(func(schema.FieldVisitor) {}))

	tests := []struct {
		name    string
		query   Query
		want    string
		wantErr func(error) bool
	}{
		{
			name:  "nil schema selects everything",
			query: Query{Source: Source{Table: "events"}},
			want:  `SELECT * FROM "events"`,
		},
		{
			name:  "projection in order",
			query: Query{Source: Source{Path: "/data/events.parquet"}, Schema: exampleSchema()},
			want:  `SELECT "id", "name", "active" FROM read_parquet('/data/events.parquet')`,
		},
		{
			name: "where and limit",
			query: Query{
				Source: Source{Path: "/data/e.csv"},
				Schema: exampleSchema(),
				Where:  "active",
				Limit:  10,
			},
			want: `SELECT "id", "name", "active" FROM read_csv_auto('/data/e.csv') WHERE (active) LIMIT 10`,
		},
		{
			name:  "snapshot",
			query: Query{Source: Source{Table: "lake.main.events", Snapshot: &snap}},
			want:  `SELECT * FROM "lake"."main"."events" AT (VERSION => 3)`,
		},
		{
			name: "cast when stored kind differs",
			query: Query{
				Source: Source{Table: "events"},
				Schema: exampleSchema(),
				Columns: []domain.FieldSpec{
					{Name: "active", Type: "boolean"},
					{Name: "id", Type: "integer"},
					{Name: "name", Type: "string"},
				},
			},
			want: `SELECT CAST("id" AS BIGINT) AS "id", "name", "active" FROM "events"`,
		},
		{
			name: "unknown column",
			query: Query{
				Source:  Source{Table: "events"},
				Schema:  exampleSchema(),
				Columns: []domain.FieldSpec{{Name: "id", Type: "long"}},
			},
			wantErr: isNotFound,
		},
		{
			name:    "empty schema",
			query:   Query{Source: Source{Table: "events"}, Schema: empty},
			wantErr: isValidation,
		},
		{
			name:    "duplicate names",
			query:   Query{Source: Source{Table: "events"}, Schema: dup},
			wantErr: isValidation,
		},
		{
			name:    "missing source",
			query:   Query{Schema: exampleSchema()},
			wantErr: isValidation,
		},
		{
			name:    "multiple statements",
			query:   Query{Source: Source{Table: "events"}, Where: "1=1; DROP TABLE events"},
			wantErr: isValidation,
		},
		{
			name:  "filter with quoted separators and nested parentheses",
			query: Query{Source: Source{Table: "events"}, Where: "name = 'a--b; (x' AND (id > 1 OR (active))"},
			want:  `SELECT * FROM "events" WHERE (name = 'a--b; (x' AND (id > 1 OR (active)))`,
		},
		{
			name:    "line comment hides limit",
			query:   Query{Source: Source{Table: "events"}, Where: "1=1) --", Limit: 5},
			wantErr: isValidation,
		},
		{
			name:    "block comment",
			query:   Query{Source: Source{Table: "events"}, Where: "1=1 /* x */", Limit: 5},
			wantErr: isValidation,
		},
		{
			name:    "union escapes the projection",
			query:   Query{Source: Source{Table: "events"}, Schema: exampleSchema(), Where: `1=1) UNION ALL SELECT "secret", 1, true FROM other WHERE (1=1`},
			wantErr: isValidation,
		},
		{
			name:    "unclosed parenthesis",
			query:   Query{Source: Source{Table: "events"}, Where: "(id > 1"},
			wantErr: isValidation,
		},
		{
			name:    "unterminated quote",
			query:   Query{Source: Source{Table: "events"}, Where: "name = 'abc"},
			wantErr: isValidation,
		},
		{
			name:    "negative limit",
			query:   Query{Source: Source{Table: "events"}, Limit: -1},
			wantErr: isValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildSelect(tt.query)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error type: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource_Validate(t *testing.T) {
	snap := int64(1)
	neg := int64(-1)
	assert.NoError(t, Source{Path: "x.parquet"}.Validate())
	assert.NoError(t, Source{Table: "t", Snapshot: &snap}.Validate())
	assert.Error(t, Source{}.Validate())
	assert.Error(t, Source{Path: "x", Table: "t"}.Validate())
	assert.Error(t, Source{Path: "x", Snapshot: &snap}.Validate())
	assert.Error(t, Source{Table: "t", Snapshot: &neg}.Validate())
}

func TestParseSource(t *testing.T) {
	assert.Equal(t, Source{Table: "events"}, ParseSource("events"))
	assert.Equal(t, Source{Table: "main.events"}, ParseSource("main.events"))
	assert.Equal(t, Source{Path: "events.parquet"}, ParseSource("events.parquet"))
	assert.Equal(t, Source{Path: "data.csv.gz"}, ParseSource("data.csv.gz"))
	assert.Equal(t, Source{Path: "s3://bucket/x"}, ParseSource("s3://bucket/x"))
	assert.Equal(t, Source{Path: "data/*"}, ParseSource("data/*"))
}

func TestKernelTypeName(t *testing.T) {
	tests := map[string]string{
		"BIGINT":                   "long",
		"VARCHAR":                  "string",
		"INTEGER":                  "integer",
		"BOOLEAN":                  "boolean",
		"DOUBLE":                   "double",
		"SMALLINT":                 "short",
		"TINYINT":                  "byte",
		"FLOAT":                    "float",
		"BLOB":                     "binary",
		"DATE":                     "date",
		"TIMESTAMP WITH TIME ZONE": "timestamp",
		"TIMESTAMP":                "timestamp_ntz",
		"DECIMAL(18,3)":            "decimal(18,3)",
		"INTEGER[]":                "integer[]",
		"STRUCT(a INTEGER)":        "struct(a integer)",
		"UUID":                     "uuid",
	}
	for in, want := range tests {
		assert.Equal(t, want, KernelTypeName(in), in)
	}
}

func TestDuckDBType_RoundTrip(t *testing.T) {
	s := schema.Build(schema.ProjectionFunc(func(v schema.FieldVisitor) {
		v.AddLong("a", true)
		v.AddShort("b", true)
		v.AddTimestamp("c", true)
		v.AddTimestampNtz("d", true)
		dt, _ := schema.NewDecimalType(12, 2)
		v.AddDecimal("e", dt, true)
	}))
	for _, f := range s.All() {
		assert.Equal(t, f.TypeName(), KernelTypeName(DuckDBType(f)), f.Name)
	}
}

func TestScanRows_StopsAtLimit(t *testing.T) {
	db, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.QueryContext(t.Context(), "SELECT range AS n FROM range(50)")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	res, err := scanRows(rows, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, res.RowCount)
	assert.Equal(t, []string{"n"}, res.Columns)
}
