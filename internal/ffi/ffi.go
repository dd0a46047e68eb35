// Package ffi is the handle-style boundary for engines that cannot implement
// schema.Projection directly: they hand over an EngineSchema (opaque data plus
// a visitor function) and announce fields through per-kind entry points that
// take a borrowed name view.
package ffi

import (
	"unicode/utf8"

	"duck-projection/internal/schema"
)

// StringSlice is a borrowed, non-owning view of UTF-8 name bytes. It is only
// valid for the duration of the call it is passed to; entry points copy it.
type StringSlice struct {
	b []byte
}

// NewStringSlice wraps b without copying.
func NewStringSlice(b []byte) StringSlice { return StringSlice{b: b} }

// StringSliceFromString returns a view over s.
func StringSliceFromString(s string) StringSlice { return StringSlice{b: []byte(s)} }

// Len returns the view length in bytes.
func (s StringSlice) Len() int { return len(s.b) }

// copyString returns an owned copy of the viewed bytes.
func (s StringSlice) copyString(op string) string {
	if !utf8.Valid(s.b) {
		panic(&schema.ContractViolation{Op: op, Reason: "field name is not valid UTF-8"})
	}
	return string(s.b)
}

// VisitorState is the opaque accumulator handle passed to engine visitors.
type VisitorState struct {
	b *schema.Builder
}

// NewVisitorState returns a fresh, open accumulator handle.
func NewVisitorState() *VisitorState {
	return &VisitorState{b: schema.NewBuilder()}
}

func (s *VisitorState) builder(op string) *schema.Builder {
	if s == nil || s.b == nil {
		panic(&schema.ContractViolation{Op: op, Reason: "nil visitor state"})
	}
	return s.b
}

// VisitorFunc walks the engine's data and calls the VisitSchema* entry
// points against state.
type VisitorFunc func(data any, state *VisitorState)

// EngineSchema pairs engine-owned data with the visitor that describes it.
// The kernel reads Data only through Visitor and never retains either.
type EngineSchema struct {
	Data    any
	Visitor VisitorFunc

	consumed bool
}

func VisitSchemaLong(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaLong"
	state.builder(op).AddLong(name.copyString(op), nullable)
}

func VisitSchemaString(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaString"
	state.builder(op).AddString(name.copyString(op), nullable)
}

func VisitSchemaInteger(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaInteger"
	state.builder(op).AddInteger(name.copyString(op), nullable)
}

func VisitSchemaBoolean(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaBoolean"
	state.builder(op).AddBoolean(name.copyString(op), nullable)
}

func VisitSchemaDouble(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaDouble"
	state.builder(op).AddDouble(name.copyString(op), nullable)
}

func VisitSchemaShort(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaShort"
	state.builder(op).AddShort(name.copyString(op), nullable)
}

func VisitSchemaByte(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaByte"
	state.builder(op).AddByte(name.copyString(op), nullable)
}

func VisitSchemaFloat(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaFloat"
	state.builder(op).AddFloat(name.copyString(op), nullable)
}

func VisitSchemaBinary(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaBinary"
	state.builder(op).AddBinary(name.copyString(op), nullable)
}

func VisitSchemaDate(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaDate"
	state.builder(op).AddDate(name.copyString(op), nullable)
}

func VisitSchemaTimestamp(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaTimestamp"
	state.builder(op).AddTimestamp(name.copyString(op), nullable)
}

func VisitSchemaTimestampNtz(state *VisitorState, name StringSlice, nullable bool) {
	const op = "VisitSchemaTimestampNtz"
	state.builder(op).AddTimestampNtz(name.copyString(op), nullable)
}

// VisitSchemaDecimal adds a decimal field. Precision and scale must already
// be valid (see schema.NewDecimalType); invalid values are a contract
// violation, so engines should check and skip instead.
func VisitSchemaDecimal(state *VisitorState, name StringSlice, precision, scale uint8, nullable bool) {
	const op = "VisitSchemaDecimal"
	dt, err := schema.NewDecimalType(precision, scale)
	if err != nil {
		panic(&schema.ContractViolation{Op: op, Reason: err.Error()})
	}
	state.builder(op).AddDecimal(name.copyString(op), dt, nullable)
}

// FinalizeSchema consumes state and returns the schema in visit order.
func FinalizeSchema(state *VisitorState) *schema.Schema {
	return state.builder("FinalizeSchema").Finalize()
}

// ProjectEngineSchema runs one projection request: a fresh state, exactly
// one visitor call, then finalize. A descriptor can be projected only once.
func ProjectEngineSchema(es *EngineSchema) *schema.Schema {
	const op = "ProjectEngineSchema"
	switch {
	case es == nil:
		panic(&schema.ContractViolation{Op: op, Reason: "nil engine schema"})
	case es.Visitor == nil:
		panic(&schema.ContractViolation{Op: op, Reason: "engine schema has no visitor"})
	case es.consumed:
		panic(&schema.ContractViolation{Op: op, Reason: "engine schema already projected"})
	}
	es.consumed = true

	state := NewVisitorState()
	es.Visitor(es.Data, state)
	return FinalizeSchema(state)
}
