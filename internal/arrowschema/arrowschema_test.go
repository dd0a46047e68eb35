package arrowschema

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-projection/internal/domain"
	"duck-projection/internal/schema"
)

func kernelSchema(t *testing.T) *schema.Schema {
	t.Helper()
	dt, err := schema.NewDecimalType(18, 2)
	require.NoError(t, err)

	b := schema.NewBuilder()
	b.AddLong("id", false, schema.WithMetadata(map[string]string{"comment": "pk"}))
	b.AddString("name", true)
	b.AddInteger("age", true)
	b.AddBoolean("active", false)
	b.AddDouble("score", true)
	b.AddShort("rank", true)
	b.AddByte("flags", true)
	b.AddFloat("ratio", true)
	b.AddBinary("blob", true)
	b.AddDate("born", true)
	b.AddTimestamp("created_at", false)
	b.AddTimestampNtz("local_time", true)
	b.AddDecimal("balance", dt, true)
	return b.Finalize()
}

func TestFromSchema(t *testing.T) {
	as := FromSchema(kernelSchema(t))
	require.Equal(t, 13, as.NumFields())

	id := as.Field(0)
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, arrow.INT64, id.Type.ID())
	assert.False(t, id.Nullable)
	i := id.Metadata.FindKey("comment")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "pk", id.Metadata.Values()[i])

	ts := as.Field(10).Type.(*arrow.TimestampType)
	assert.Equal(t, "UTC", ts.TimeZone)
	assert.Equal(t, arrow.Microsecond, ts.Unit)

	ntz := as.Field(11).Type.(*arrow.TimestampType)
	assert.Empty(t, ntz.TimeZone)

	dec := as.Field(12).Type.(*arrow.Decimal128Type)
	assert.Equal(t, int32(18), dec.Precision)
	assert.Equal(t, int32(2), dec.Scale)
}

func TestRoundTrip(t *testing.T) {
	original := kernelSchema(t)

	p, err := NewProjection(FromSchema(original))
	require.NoError(t, err)

	assert.True(t, original.Equal(schema.Build(p)))
}

func TestNewProjection_SelectsAndSkipsNested(t *testing.T) {
	as := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "tags", Type: arrow.ListOf(arrow.BinaryTypes.String), Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.LargeString, Nullable: true},
		{Name: "address", Type: arrow.StructOf(arrow.Field{Name: "city", Type: arrow.BinaryTypes.String}), Nullable: true},
		{Name: "day", Type: arrow.FixedWidthTypes.Date64, Nullable: true},
	}, nil)

	all, err := NewProjection(as)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "day"}, schema.Build(all).Names())

	some, err := NewProjection(as, "name", "tags", "id")
	require.NoError(t, err)
	s := schema.Build(some)
	assert.Equal(t, []string{"name", "id"}, s.Names())
	assert.Equal(t, schema.KindString, s.At(0).Kind)
}

func TestNewProjection_MissingColumn(t *testing.T) {
	as := arrow.NewSchema([]arrow.Field{{Name: "id", Type: arrow.PrimitiveTypes.Int64}}, nil)
	_, err := NewProjection(as, "nope")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}
