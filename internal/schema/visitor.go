package schema

// FieldVisitor is the capability an engine uses to announce projected fields.
// Each call appends exactly one field, in call order. There is no error
// return: callers pre-filter types they cannot map and skip them.
type FieldVisitor interface {
	AddLong(name string, nullable bool, opts ...FieldOption)
	AddString(name string, nullable bool, opts ...FieldOption)
	AddInteger(name string, nullable bool, opts ...FieldOption)
	AddBoolean(name string, nullable bool, opts ...FieldOption)
	AddDouble(name string, nullable bool, opts ...FieldOption)
	AddShort(name string, nullable bool, opts ...FieldOption)
	AddByte(name string, nullable bool, opts ...FieldOption)
	AddFloat(name string, nullable bool, opts ...FieldOption)
	AddBinary(name string, nullable bool, opts ...FieldOption)
	AddDate(name string, nullable bool, opts ...FieldOption)
	AddTimestamp(name string, nullable bool, opts ...FieldOption)
	AddTimestampNtz(name string, nullable bool, opts ...FieldOption)
	AddDecimal(name string, dt DecimalType, nullable bool, opts ...FieldOption)

	// AddField adds a parameterless primitive kind chosen at runtime.
	// Decimal, Struct and invalid kinds are contract violations.
	AddField(kind Kind, name string, nullable bool, opts ...FieldOption)
}

// Projection is the engine-owned descriptor: it knows how to walk its own
// column list and announce each wanted field to the visitor. Describe is
// called once per Build and must not keep v after returning.
type Projection interface {
	Describe(v FieldVisitor)
}

// ProjectionFunc adapts a function to Projection.
type ProjectionFunc func(v FieldVisitor)

func (f ProjectionFunc) Describe(v FieldVisitor) { f(v) }
