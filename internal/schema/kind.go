// Package schema is the kernel side of the projection protocol: it owns the
// canonical, immutable Schema and the single-use Builder that engines push
// fields into through the FieldVisitor contract.
package schema

import (
	"strconv"
	"strings"

	"duck-projection/internal/domain"
)

// Kind is the closed set of field types the kernel understands.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindLong
	KindString
	KindInteger
	KindBoolean
	KindDouble
	KindShort
	KindByte
	KindFloat
	KindBinary
	KindDate
	KindTimestamp
	KindTimestampNtz
	KindDecimal
	// KindStruct is reserved for nested projection. No visitor operation
	// produces it yet.
	KindStruct
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindLong:         "long",
	KindString:       "string",
	KindInteger:      "integer",
	KindBoolean:      "boolean",
	KindDouble:       "double",
	KindShort:        "short",
	KindByte:         "byte",
	KindFloat:        "float",
	KindBinary:       "binary",
	KindDate:         "date",
	KindTimestamp:    "timestamp",
	KindTimestampNtz: "timestamp_ntz",
	KindDecimal:      "decimal",
	KindStruct:       "struct",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsPrimitive reports whether k is a leaf kind a visitor can add.
func (k Kind) IsPrimitive() bool {
	return k >= KindLong && k <= KindDecimal
}

// MaxDecimalPrecision is the largest decimal precision the kernel accepts.
const MaxDecimalPrecision = 38

// DecimalType carries the precision and scale of a decimal field. The zero
// value is invalid; use NewDecimalType.
type DecimalType struct {
	precision uint8
	scale     uint8
}

// NewDecimalType validates precision (1..38) and scale (0..precision).
func NewDecimalType(precision, scale uint8) (DecimalType, error) {
	if precision == 0 || precision > MaxDecimalPrecision {
		return DecimalType{}, domain.ErrValidation("decimal precision must be between 1 and %d, got %d", MaxDecimalPrecision, precision)
	}
	if scale > precision {
		return DecimalType{}, domain.ErrValidation("decimal scale %d exceeds precision %d", scale, precision)
	}
	return DecimalType{precision: precision, scale: scale}, nil
}

// Precision is the total number of digits.
func (d DecimalType) Precision() uint8 { return d.precision }

// Scale is the number of digits after the decimal point.
func (d DecimalType) Scale() uint8 { return d.scale }

func (d DecimalType) valid() bool { return d.precision > 0 }

func (d DecimalType) String() string {
	return "decimal(" + strconv.Itoa(int(d.precision)) + "," + strconv.Itoa(int(d.scale)) + ")"
}

// ParseType resolves a kernel type name such as "long", "TIMESTAMP_NTZ" or
// "decimal(10,2)". A bare "decimal" means decimal(10,0). Struct and unknown
// names are rejected with a ValidationError; callers that describe
// projections treat that as "skip this field".
func ParseType(s string) (Kind, DecimalType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "decimal") {
		dt, err := parseDecimal(strings.TrimSpace(strings.TrimPrefix(name, "decimal")))
		if err != nil {
			return KindInvalid, DecimalType{}, err
		}
		return KindDecimal, dt, nil
	}
	for k := KindLong; k < KindDecimal; k++ {
		if kindNames[k] == name {
			return k, DecimalType{}, nil
		}
	}
	return KindInvalid, DecimalType{}, domain.ErrValidation("unsupported type %q", s)
}

func parseDecimal(args string) (DecimalType, error) {
	if args == "" {
		return NewDecimalType(10, 0)
	}
	if !strings.HasPrefix(args, "(") || !strings.HasSuffix(args, ")") {
		return DecimalType{}, domain.ErrValidation("malformed decimal type %q", "decimal"+args)
	}
	parts := strings.Split(args[1:len(args)-1], ",")
	if len(parts) > 2 {
		return DecimalType{}, domain.ErrValidation("malformed decimal type %q", "decimal"+args)
	}
	nums := [2]uint64{}
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return DecimalType{}, domain.ErrValidation("malformed decimal type %q", "decimal"+args)
		}
		nums[i] = n
	}
	return NewDecimalType(uint8(nums[0]), uint8(nums[1]))
}
