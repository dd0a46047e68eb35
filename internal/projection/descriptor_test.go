package projection

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

func TestDescriptor_ExampleProjection(t *testing.T) {
	d := New("users", []domain.FieldSpec{
		{Name: "id", Type: "long", Nullable: false},
		{Name: "name", Type: "string", Nullable: true},
		{Name: "active", Type: "boolean", Nullable: false},
	}, nil)

	s := d.Build()
	assert.Equal(t, []schema.Field{
		{Name: "id", Kind: schema.KindLong},
		{Name: "name", Kind: schema.KindString, Nullable: true},
		{Name: "active", Kind: schema.KindBoolean},
	}, s.Fields())
}

func TestDescriptor_SkipsUnsupportedAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	d := New("events", []domain.FieldSpec{
		{Name: "id", Type: "long"},
		{Name: "payload", Type: "STRUCT(a INTEGER)", Nullable: true},
		{Name: "score", Type: "double", Nullable: true},
	}, logger)

	s := d.Build()
	assert.Equal(t, []string{"id", "score"}, s.Names())
	assert.Contains(t, buf.String(), "field=payload")

	skipped := Unsupported(d.Fields)
	require.Len(t, skipped, 1)
	assert.Equal(t, "payload", skipped[0].Name)
}

func TestDescriptor_AllKernelTypes(t *testing.T) {
	fields := []domain.FieldSpec{
		{Name: "a", Type: "long"},
		{Name: "b", Type: "string"},
		{Name: "c", Type: "integer"},
		{Name: "d", Type: "boolean"},
		{Name: "e", Type: "double"},
		{Name: "f", Type: "short"},
		{Name: "g", Type: "byte"},
		{Name: "h", Type: "float"},
		{Name: "i", Type: "binary"},
		{Name: "j", Type: "date"},
		{Name: "k", Type: "timestamp"},
		{Name: "l", Type: "timestamp_ntz"},
		{Name: "m", Type: "decimal(9,3)"},
	}
	s := New("all", fields, nil).Build()
	require.Equal(t, len(fields), s.Len())
	for i, f := range s.All() {
		assert.Equal(t, fields[i].Type, f.TypeName())
	}
}

func TestDescriptor_Metadata(t *testing.T) {
	s := New("m", []domain.FieldSpec{
		{Name: "id", Type: "long", Metadata: map[string]string{"comment": "pk"}},
	}, nil).Build()
	assert.Equal(t, map[string]string{"comment": "pk"}, s.At(0).Metadata)
}

func TestSelect(t *testing.T) {
	fields := []domain.FieldSpec{
		{Name: "id", Type: "long"},
		{Name: "name", Type: "string"},
		{Name: "age", Type: "integer"},
		{Name: "active", Type: "boolean"},
	}

	t.Run("reorders", func(t *testing.T) {
		got, err := Select(fields, "active", "id")
		require.NoError(t, err)
		assert.Equal(t, []domain.FieldSpec{fields[3], fields[0]}, got)
	})

	t.Run("all when empty", func(t *testing.T) {
		got, err := Select(fields)
		require.NoError(t, err)
		assert.Equal(t, fields, got)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := Select(fields, "nope")
		var nf *domain.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := Select(fields, "id", "id")
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
	})
}
