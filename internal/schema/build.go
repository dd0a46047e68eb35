package schema

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Build runs one projection request: it allocates a fresh Builder, invokes
// p.Describe exactly once with a visitor that can only add fields, and
// finalizes the result. The visitor is revoked when Describe returns, so a
// descriptor that keeps it and calls it later panics instead of mutating a
// finalized schema.
func Build(p Projection) *Schema {
	if p == nil {
		violate("Build", "nil projection")
	}
	b := NewBuilder()
	scope := &scopedVisitor{b: b}
	func() {
		defer scope.revoke()
		p.Describe(scope)
	}()
	return b.Finalize()
}

// TryBuild is Build with contract violations returned as errors. Any other
// panic propagates.
func TryBuild(p Projection) (s *Schema, err error) {
	defer func() {
		if r := recover(); r != nil {
			cv, ok := r.(*ContractViolation)
			if !ok {
				panic(r)
			}
			s, err = nil, cv
		}
	}()
	return Build(p), nil
}

// BuildAll builds independent projections concurrently. Each projection
// gets its own Builder; nothing is shared between them. Results keep the
// input order.
func BuildAll(ctx context.Context, projections ...Projection) ([]*Schema, error) {
	out := make([]*Schema, len(projections))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range projections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := TryBuild(p)
			if err != nil {
				return fmt.Errorf("projection %d: %w", i, err)
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// scopedVisitor forwards to a Builder for the duration of one Describe call.
type scopedVisitor struct {
	b *Builder
}

func (v *scopedVisitor) revoke() { v.b = nil }

func (v *scopedVisitor) target(op string) *Builder {
	if v.b == nil {
		violate(op, "visitor used after Describe returned")
	}
	return v.b
}

func (v *scopedVisitor) AddLong(name string, nullable bool, opts ...FieldOption) {
	v.target("AddLong").AddLong(name, nullable, opts...)
}

func (v *scopedVisitor) AddString(name string, nullable bool, opts ...FieldOption) {
	v.target("AddString").AddString(name, nullable, opts...)
}

func (v *scopedVisitor) AddInteger(name string, nullable bool, opts ...FieldOption) {
	v.target("AddInteger").AddInteger(name, nullable, opts...)
}

func (v *scopedVisitor) AddBoolean(name string, nullable bool, opts ...FieldOption) {
	v.target("AddBoolean").AddBoolean(name, nullable, opts...)
}

func (v *scopedVisitor) AddDouble(name string, nullable bool, opts ...FieldOption) {
	v.target("AddDouble").AddDouble(name, nullable, opts...)
}

func (v *scopedVisitor) AddShort(name string, nullable bool, opts ...FieldOption) {
	v.target("AddShort").AddShort(name, nullable, opts...)
}

func (v *scopedVisitor) AddByte(name string, nullable bool, opts ...FieldOption) {
	v.target("AddByte").AddByte(name, nullable, opts...)
}

func (v *scopedVisitor) AddFloat(name string, nullable bool, opts ...FieldOption) {
	v.target("AddFloat").AddFloat(name, nullable, opts...)
}

func (v *scopedVisitor) AddBinary(name string, nullable bool, opts ...FieldOption) {
	v.target("AddBinary").AddBinary(name, nullable, opts...)
}

func (v *scopedVisitor) AddDate(name string, nullable bool, opts ...FieldOption) {
	v.target("AddDate").AddDate(name, nullable, opts...)
}

func (v *scopedVisitor) AddTimestamp(name string, nullable bool, opts ...FieldOption) {
	v.target("AddTimestamp").AddTimestamp(name, nullable, opts...)
}

func (v *scopedVisitor) AddTimestampNtz(name string, nullable bool, opts ...FieldOption) {
	v.target("AddTimestampNtz").AddTimestampNtz(name, nullable, opts...)
}

func (v *scopedVisitor) AddDecimal(name string, dt DecimalType, nullable bool, opts ...FieldOption) {
	v.target("AddDecimal").AddDecimal(name, dt, nullable, opts...)
}

func (v *scopedVisitor) AddField(kind Kind, name string, nullable bool, opts ...FieldOption) {
	v.target("AddField").AddField(kind, name, nullable, opts...)
}
