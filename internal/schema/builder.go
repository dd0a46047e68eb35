package schema

// Compile-time check.
var _ FieldVisitor = (*Builder)(nil)

// Builder accumulates fields for one projection and finalizes them into a
// Schema. It moves Open -> Finalized exactly once; any use after that panics
// with a *ContractViolation. A Builder is owned by a single goroutine.
type Builder struct {
	fields    []Field
	finalized bool
}

// NewBuilder returns an open builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) AddLong(name string, nullable bool, opts ...FieldOption) {
	b.add("AddLong", Field{Name: name, Kind: KindLong, Nullable: nullable}, opts)
}

func (b *Builder) AddString(name string, nullable bool, opts ...FieldOption) {
	b.add("AddString", Field{Name: name, Kind: KindString, Nullable: nullable}, opts)
}

func (b *Builder) AddInteger(name string, nullable bool, opts ...FieldOption) {
	b.add("AddInteger", Field{Name: name, Kind: KindInteger, Nullable: nullable}, opts)
}

func (b *Builder) AddBoolean(name string, nullable bool, opts ...FieldOption) {
	b.add("AddBoolean", Field{Name: name, Kind: KindBoolean, Nullable: nullable}, opts)
}

func (b *Builder) AddDouble(name string, nullable bool, opts ...FieldOption) {
	b.add("AddDouble", Field{Name: name, Kind: KindDouble, Nullable: nullable}, opts)
}

func (b *Builder) AddShort(name string, nullable bool, opts ...FieldOption) {
	b.add("AddShort", Field{Name: name, Kind: KindShort, Nullable: nullable}, opts)
}

func (b *Builder) AddByte(name string, nullable bool, opts ...FieldOption) {
	b.add("AddByte", Field{Name: name, Kind: KindByte, Nullable: nullable}, opts)
}

func (b *Builder) AddFloat(name string, nullable bool, opts ...FieldOption) {
	b.add("AddFloat", Field{Name: name, Kind: KindFloat, Nullable: nullable}, opts)
}

func (b *Builder) AddBinary(name string, nullable bool, opts ...FieldOption) {
	b.add("AddBinary", Field{Name: name, Kind: KindBinary, Nullable: nullable}, opts)
}

func (b *Builder) AddDate(name string, nullable bool, opts ...FieldOption) {
	b.add("AddDate", Field{Name: name, Kind: KindDate, Nullable: nullable}, opts)
}

func (b *Builder) AddTimestamp(name string, nullable bool, opts ...FieldOption) {
	b.add("AddTimestamp", Field{Name: name, Kind: KindTimestamp, Nullable: nullable}, opts)
}

func (b *Builder) AddTimestampNtz(name string, nullable bool, opts ...FieldOption) {
	b.add("AddTimestampNtz", Field{Name: name, Kind: KindTimestampNtz, Nullable: nullable}, opts)
}

func (b *Builder) AddDecimal(name string, dt DecimalType, nullable bool, opts ...FieldOption) {
	if !dt.valid() {
		violate("AddDecimal", "field %q: zero DecimalType, construct it with NewDecimalType", name)
	}
	b.add("AddDecimal", Field{Name: name, Kind: KindDecimal, Nullable: nullable, Decimal: dt}, opts)
}

func (b *Builder) AddField(kind Kind, name string, nullable bool, opts ...FieldOption) {
	if !kind.IsPrimitive() || kind == KindDecimal {
		violate("AddField", "field %q: kind %s cannot be added without parameters", name, kind)
	}
	b.add("AddField", Field{Name: name, Kind: kind, Nullable: nullable}, opts)
}

func (b *Builder) add(op string, f Field, opts []FieldOption) {
	if b == nil {
		violate(op, "nil builder")
	}
	if b.finalized {
		violate(op, "field %q added after Finalize", f.Name)
	}
	var o fieldOpts
	for _, opt := range opts {
		if opt.apply != nil {
			opt.apply(&o)
		}
	}
	f.Metadata = o.metadata
	b.fields = append(b.fields, f)
}

// Len returns the number of fields accepted so far.
func (b *Builder) Len() int { return len(b.fields) }

// Finalized reports whether Finalize has been called.
func (b *Builder) Finalized() bool { return b.finalized }

// Finalize consumes the builder and returns the schema in accumulation
// order. An empty builder yields an empty schema.
func (b *Builder) Finalize() *Schema {
	if b == nil {
		violate("Finalize", "nil builder")
	}
	if b.finalized {
		violate("Finalize", "builder already finalized")
	}
	b.finalized = true
	fields := b.fields
	b.fields = nil
	return &Schema{fields: fields}
}
