package wire

import (
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"
)

// Number is a field number as it appears in a wire tag.
type Number = protowire.Number

// Kind is the schema type of a field.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt32
	KindSInt32
	KindUInt32
	KindFixed32
	KindSFixed32
	KindFloat
	KindInt64
	KindSInt64
	KindUInt64
	KindFixed64
	KindSFixed64
	KindDouble
	KindBool
	KindEnum
	KindString
	KindBytes
	KindMessage
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindInt32:    "int32",
	KindSInt32:   "sint32",
	KindUInt32:   "uint32",
	KindFixed32:  "fixed32",
	KindSFixed32: "sfixed32",
	KindFloat:    "float",
	KindInt64:    "int64",
	KindSInt64:   "sint64",
	KindUInt64:   "uint64",
	KindFixed64:  "fixed64",
	KindSFixed64: "sfixed64",
	KindDouble:   "double",
	KindBool:     "bool",
	KindEnum:     "enum",
	KindString:   "string",
	KindBytes:    "bytes",
	KindMessage:  "message",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a schema type name to its Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// IsScalar reports whether values of this kind are fixed-size numbers
// that can be stored directly in a shadow and packed in repeated fields.
func (k Kind) IsScalar() bool {
	return k >= KindInt32 && k <= KindEnum
}

// WireType returns the wire type used for a single value of this kind.
func (k Kind) WireType() protowire.Type {
	switch k {
	case KindFixed32, KindSFixed32, KindFloat:
		return protowire.Fixed32Type
	case KindFixed64, KindSFixed64, KindDouble:
		return protowire.Fixed64Type
	case KindString, KindBytes, KindMessage:
		return protowire.BytesType
	default:
		return protowire.VarintType
	}
}

// goKind is the reflect.Kind a shadow field must have to hold this kind directly.
func (k Kind) goKind() reflect.Kind {
	switch k {
	case KindInt32, KindSInt32, KindSFixed32, KindEnum:
		return reflect.Int32
	case KindUInt32, KindFixed32:
		return reflect.Uint32
	case KindInt64, KindSInt64, KindSFixed64:
		return reflect.Int64
	case KindUInt64, KindFixed64:
		return reflect.Uint64
	case KindFloat:
		return reflect.Float32
	case KindDouble:
		return reflect.Float64
	case KindBool:
		return reflect.Bool
	default:
		return reflect.Invalid
	}
}
