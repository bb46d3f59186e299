package scanner

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/encoding/unicode"
)

// ValueType is the closed set of value kinds the scanner understands
type ValueType int

const (
	TypeInt32 ValueType = iota + 1
	TypeInt64
	TypeFloat32
	TypeFloat64
	TypeString     // raw byte string
	TypeWideString // UTF-16LE string
)

var valueTypeNames = map[ValueType]string{
	TypeInt32:      "int32",
	TypeInt64:      "int64",
	TypeFloat32:    "float32",
	TypeFloat64:    "float64",
	TypeString:     "string",
	TypeWideString: "wstring",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// ParseValueType accepts the names printed by ValueType.String plus a few aliases
func ParseValueType(s string) (ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int32", "int", "i32", "dword":
		return TypeInt32, nil
	case "int64", "i64", "qword":
		return TypeInt64, nil
	case "float32", "float", "f32":
		return TypeFloat32, nil
	case "float64", "double", "f64":
		return TypeFloat64, nil
	case "string", "str":
		return TypeString, nil
	case "wstring", "wide", "utf16":
		return TypeWideString, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedType, s)
}

// Size is the encoded width of fixed-width types, 0 for strings
func (t ValueType) Size() int {
	switch t {
	case TypeInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeFloat64:
		return 8
	}
	return 0
}

// IsNumeric reports whether t has a fixed width
func (t ValueType) IsNumeric() bool {
	return t.Size() > 0
}

// unit is the width of one character for string types
func (t ValueType) unit() int {
	switch t {
	case TypeString:
		return 1
	case TypeWideString:
		return 2
	}
	return 0
}

// Value is one typed value as it is laid out in target memory: little-endian
// for numbers, raw bytes for strings, UTF-16LE for wide strings. The raw bytes
// are never modified after construction, so Values may share storage.
type Value struct {
	typ ValueType
	raw []byte
}

// Numeric is the set of Go types that map onto a fixed-width ValueType
type Numeric interface {
	constraints.Signed | constraints.Float
}

func NewInt32(v int32) Value {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, uint32(v))
	return Value{typ: TypeInt32, raw: raw}
}

func NewInt64(v int64) Value {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, uint64(v))
	return Value{typ: TypeInt64, raw: raw}
}

func NewFloat32(v float32) Value {
	raw := make([]byte, 4)
	binary.LittleEndian.PutUint32(raw, math.Float32bits(v))
	return Value{typ: TypeFloat32, raw: raw}
}

func NewFloat64(v float64) Value {
	raw := make([]byte, 8)
	binary.LittleEndian.PutUint64(raw, math.Float64bits(v))
	return Value{typ: TypeFloat64, raw: raw}
}

// NewString searches for the bytes of s as-is
func NewString(s string) Value {
	return Value{typ: TypeString, raw: []byte(s)}
}

// NewWideString encodes s as UTF-16LE without a byte order mark
func NewWideString(s string) (Value, error) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().String(s)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return Value{typ: TypeWideString, raw: []byte(encoded)}, nil
}

// ValueOf wraps a Go number in the Value variant of the same width and kind
func ValueOf[T Numeric](v T) (Value, error) {
	switch x := any(v).(type) {
	case int32:
		return NewInt32(x), nil
	case int64:
		return NewInt64(x), nil
	case float32:
		return NewFloat32(x), nil
	case float64:
		return NewFloat64(x), nil
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

// DecodeValue copies a window of target memory into a Value of type t
func DecodeValue(t ValueType, window []byte) Value {
	raw := make([]byte, len(window))
	copy(raw, window)
	return Value{typ: t, raw: raw}
}

// ParseValue reads the textual form of a value of type t. Integers accept a
// 0x prefix.
func ParseValue(t ValueType, s string) (Value, error) {
	switch t {
	case TypeInt32:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return NewInt32(int32(n)), nil
	case TypeInt64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return NewInt64(n), nil
	case TypeFloat32:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 32)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return NewFloat32(float32(f)), nil
	case TypeFloat64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		return NewFloat64(f), nil
	case TypeString:
		return NewString(s), nil
	case TypeWideString:
		return NewWideString(s)
	}
	return Value{}, fmt.Errorf("%w: %v", ErrUnsupportedType, t)
}

func (v Value) Type() ValueType {
	return v.typ
}

// Len is the number of bytes the value occupies in target memory
func (v Value) Len() int {
	return len(v.raw)
}

// Bytes returns a copy of the encoded value
func (v Value) Bytes() []byte {
	out := make([]byte, len(v.raw))
	copy(out, v.raw)
	return out
}

// Int64 returns the value of an integer variant
func (v Value) Int64() (int64, bool) {
	switch v.typ {
	case TypeInt32:
		return int64(int32(binary.LittleEndian.Uint32(v.raw))), true
	case TypeInt64:
		return int64(binary.LittleEndian.Uint64(v.raw)), true
	}
	return 0, false
}

// Float64 returns the value of a floating point variant
func (v Value) Float64() (float64, bool) {
	switch v.typ {
	case TypeFloat32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(v.raw))), true
	case TypeFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(v.raw)), true
	}
	return 0, false
}

// Equal compares two values of the same type. Integers and strings compare
// exactly; floats use IEEE equality on the decoded numbers, with no tolerance.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	return v.matches(o.raw)
}

// matches compares v against a raw window of the same type
func (v Value) matches(window []byte) bool {
	if len(window) != len(v.raw) {
		return false
	}

	switch v.typ {
	case TypeFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(v.raw)) ==
			math.Float32frombits(binary.LittleEndian.Uint32(window))
	case TypeFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(v.raw)) ==
			math.Float64frombits(binary.LittleEndian.Uint64(window))
	default:
		return bytes.Equal(v.raw, window)
	}
}

func (v Value) String() string {
	switch v.typ {
	case TypeInt32, TypeInt64:
		n, _ := v.Int64()
		return strconv.FormatInt(n, 10)
	case TypeFloat32:
		f, _ := v.Float64()
		return strconv.FormatFloat(f, 'g', -1, 32)
	case TypeFloat64:
		f, _ := v.Float64()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case TypeString:
		return string(v.raw)
	case TypeWideString:
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(v.raw)
		if err != nil {
			return fmt.Sprintf("%x", v.raw)
		}
		return string(decoded)
	}
	return fmt.Sprintf("%x", v.raw)
}
