package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireViolation(t *testing.T, op string, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a contract violation")
		cv, ok := r.(*ContractViolation)
		require.True(t, ok, "panic value %T is not *ContractViolation", r)
		assert.Equal(t, op, cv.Op)
	}()
	fn()
}

func TestBuilder_PreservesCountAndOrder(t *testing.T) {
	adders := []struct {
		kind Kind
		add  func(b *Builder, name string, nullable bool)
	}{
		{KindLong, func(b *Builder, n string, null bool) { b.AddLong(n, null) }},
		{KindString, func(b *Builder, n string, null bool) { b.AddString(n, null) }},
		{KindInteger, func(b *Builder, n string, null bool) { b.AddInteger(n, null) }},
		{KindBoolean, func(b *Builder, n string, null bool) { b.AddBoolean(n, null) }},
		{KindDouble, func(b *Builder, n string, null bool) { b.AddDouble(n, null) }},
		{KindShort, func(b *Builder, n string, null bool) { b.AddShort(n, null) }},
		{KindByte, func(b *Builder, n string, null bool) { b.AddByte(n, null) }},
		{KindFloat, func(b *Builder, n string, null bool) { b.AddFloat(n, null) }},
		{KindBinary, func(b *Builder, n string, null bool) { b.AddBinary(n, null) }},
		{KindDate, func(b *Builder, n string, null bool) { b.AddDate(n, null) }},
		{KindTimestamp, func(b *Builder, n string, null bool) { b.AddTimestamp(n, null) }},
		{KindTimestampNtz, func(b *Builder, n string, null bool) { b.AddTimestampNtz(n, null) }},
	}

	for n := 0; n <= 40; n += 7 {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			b := NewBuilder()
			for i := 0; i < n; i++ {
				a := adders[i%len(adders)]
				a.add(b, fmt.Sprintf("c%d", i), i%2 == 0)
			}
			s := b.Finalize()

			require.Equal(t, n, s.Len())
			for i := 0; i < n; i++ {
				f := s.At(i)
				assert.Equal(t, fmt.Sprintf("c%d", i), f.Name)
				assert.Equal(t, adders[i%len(adders)].kind, f.Kind)
				assert.Equal(t, i%2 == 0, f.Nullable)
			}
		})
	}
}

func TestBuilder_EmptyFinalizesToEmptySchema(t *testing.T) {
	s := NewBuilder().Finalize()
	require.NotNil(t, s)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Fields())
	assert.Equal(t, "struct<>", s.String())
}

func TestBuilder_ZeroValueIsUsable(t *testing.T) {
	var b Builder
	b.AddLong("id", false)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []string{"id"}, b.Finalize().Names())
}

func TestBuilder_DoesNotDeduplicate(t *testing.T) {
	b := NewBuilder()
	b.AddLong("id", false)
	b.AddString("id", true)
	s := b.Finalize()

	require.Equal(t, 2, s.Len())
	assert.Equal(t, KindLong, s.At(0).Kind)
	assert.Equal(t, KindString, s.At(1).Kind)

	f, ok := s.Lookup("id")
	require.True(t, ok)
	assert.Equal(t, KindLong, f.Kind, "lookup is first-wins")
}

func TestBuilder_Decimal(t *testing.T) {
	dt, err := NewDecimalType(10, 2)
	require.NoError(t, err)

	b := NewBuilder()
	b.AddDecimal("price", dt, true)
	s := b.Finalize()

	f := s.At(0)
	assert.Equal(t, KindDecimal, f.Kind)
	assert.Equal(t, uint8(10), f.Decimal.Precision())
	assert.Equal(t, uint8(2), f.Decimal.Scale())
	assert.Equal(t, "decimal(10,2)", f.TypeName())
}

func TestBuilder_MetadataIsCopied(t *testing.T) {
	md := map[string]string{"comment": "primary key"}
	b := NewBuilder()
	b.AddLong("id", false, WithMetadata(md))
	md["comment"] = "changed"
	s := b.Finalize()

	assert.Equal(t, "primary key", s.At(0).Metadata["comment"])

	got := s.At(0)
	got.Metadata["comment"] = "mutated through accessor"
	assert.Equal(t, "primary key", s.At(0).Metadata["comment"])
}

func TestBuilder_OptionsCannotChangeField(t *testing.T) {
	md := map[string]string{"k": "v"}
	s := Build(ProjectionFunc(func(v FieldVisitor) {
		v.AddLong("id", false, FieldOption{}, WithMetadata(md), WithMetadata(map[string]string{"extra": "1"}))
		v.AddString("name", true, WithMetadata(nil))
	}))
	md["k"] = "mutated"

	require.Equal(t, 2, s.Len())
	id := s.At(0)
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, KindLong, id.Kind)
	assert.False(t, id.Nullable)
	assert.Equal(t, map[string]string{"k": "v", "extra": "1"}, id.Metadata)
	assert.Nil(t, s.At(1).Metadata)
}

func TestBuilder_ContractViolations(t *testing.T) {
	t.Run("add after finalize", func(t *testing.T) {
		b := NewBuilder()
		b.Finalize()
		requireViolation(t, "AddString", func() { b.AddString("late", true) })
	})

	t.Run("finalize twice", func(t *testing.T) {
		b := NewBuilder()
		b.Finalize()
		requireViolation(t, "Finalize", func() { b.Finalize() })
	})

	t.Run("zero decimal", func(t *testing.T) {
		requireViolation(t, "AddDecimal", func() { NewBuilder().AddDecimal("d", DecimalType{}, true) })
	})

	t.Run("generic add of decimal", func(t *testing.T) {
		requireViolation(t, "AddField", func() { NewBuilder().AddField(KindDecimal, "d", true) })
	})

	t.Run("generic add of struct", func(t *testing.T) {
		requireViolation(t, "AddField", func() { NewBuilder().AddField(KindStruct, "s", true) })
	})

	t.Run("nil builder", func(t *testing.T) {
		var b *Builder
		requireViolation(t, "AddLong", func() { b.AddLong("id", false) })
	})
}

func TestBuilder_AddFieldMatchesTypedOps(t *testing.T) {
	typed := NewBuilder()
	typed.AddDate("d", true)
	typed.AddBinary("b", false)

	generic := NewBuilder()
	generic.AddField(KindDate, "d", true)
	generic.AddField(KindBinary, "b", false)

	assert.True(t, typed.Finalize().Equal(generic.Finalize()))
}
