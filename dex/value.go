package dex

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
)

type ValueType uint8

const (
	ValueByte         ValueType = 0x00
	ValueShort        ValueType = 0x02
	ValueChar         ValueType = 0x03
	ValueInt          ValueType = 0x04
	ValueLong         ValueType = 0x06
	ValueFloat        ValueType = 0x10
	ValueDouble       ValueType = 0x11
	ValueMethodType   ValueType = 0x15
	ValueMethodHandle ValueType = 0x16
	ValueString       ValueType = 0x17
	ValueTypeID       ValueType = 0x18
	ValueField        ValueType = 0x19
	ValueMethod       ValueType = 0x1a
	ValueEnum         ValueType = 0x1b
	ValueArray        ValueType = 0x1c
	ValueAnnotation   ValueType = 0x1d
	ValueNull         ValueType = 0x1e
	ValueBoolean      ValueType = 0x1f
)

var valueTypeNames = map[ValueType]string{
	ValueByte:         "byte",
	ValueShort:        "short",
	ValueChar:         "char",
	ValueInt:          "int",
	ValueLong:         "long",
	ValueFloat:        "float",
	ValueDouble:       "double",
	ValueMethodType:   "method_type",
	ValueMethodHandle: "method_handle",
	ValueString:       "string",
	ValueTypeID:       "type",
	ValueField:        "field",
	ValueMethod:       "method",
	ValueEnum:         "enum",
	ValueArray:        "array",
	ValueAnnotation:   "annotation",
	ValueNull:         "null",
	ValueBoolean:      "boolean",
}

func (t ValueType) String() string {
	if name, ok := valueTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("value_type(%#02x)", uint8(t))
}

// EncodedValue is one of the concrete *Value types below. The set is closed;
// type switches over it only need to handle those types.
type EncodedValue interface {
	Type() ValueType
	String() string
	encodedValue()
}

type (
	ByteValue   int8
	ShortValue  int16
	CharValue   uint16
	IntValue    int32
	LongValue   int64
	FloatValue  float32
	DoubleValue float64

	// Index-valued variants refer into the identifier tables.
	MethodTypeValue   uint32
	MethodHandleValue uint32
	StringValue       uint32
	TypeValue         uint32
	FieldValue        uint32
	MethodValue       uint32
	EnumValue         uint32

	ArrayValue      []EncodedValue
	AnnotationValue EncodedAnnotation
	NullValue       struct{}
	BooleanValue    bool
)

func (ByteValue) Type() ValueType         { return ValueByte }
func (ShortValue) Type() ValueType        { return ValueShort }
func (CharValue) Type() ValueType         { return ValueChar }
func (IntValue) Type() ValueType          { return ValueInt }
func (LongValue) Type() ValueType         { return ValueLong }
func (FloatValue) Type() ValueType        { return ValueFloat }
func (DoubleValue) Type() ValueType       { return ValueDouble }
func (MethodTypeValue) Type() ValueType   { return ValueMethodType }
func (MethodHandleValue) Type() ValueType { return ValueMethodHandle }
func (StringValue) Type() ValueType       { return ValueString }
func (TypeValue) Type() ValueType         { return ValueTypeID }
func (FieldValue) Type() ValueType        { return ValueField }
func (MethodValue) Type() ValueType       { return ValueMethod }
func (EnumValue) Type() ValueType         { return ValueEnum }
func (ArrayValue) Type() ValueType        { return ValueArray }
func (AnnotationValue) Type() ValueType   { return ValueAnnotation }
func (NullValue) Type() ValueType         { return ValueNull }
func (BooleanValue) Type() ValueType      { return ValueBoolean }

func (ByteValue) encodedValue()         {}
func (ShortValue) encodedValue()        {}
func (CharValue) encodedValue()         {}
func (IntValue) encodedValue()          {}
func (LongValue) encodedValue()         {}
func (FloatValue) encodedValue()        {}
func (DoubleValue) encodedValue()       {}
func (MethodTypeValue) encodedValue()   {}
func (MethodHandleValue) encodedValue() {}
func (StringValue) encodedValue()       {}
func (TypeValue) encodedValue()         {}
func (FieldValue) encodedValue()        {}
func (MethodValue) encodedValue()       {}
func (EnumValue) encodedValue()         {}
func (ArrayValue) encodedValue()        {}
func (AnnotationValue) encodedValue()   {}
func (NullValue) encodedValue()         {}
func (BooleanValue) encodedValue()      {}

func (v ByteValue) String() string         { return fmt.Sprintf("%d", int8(v)) }
func (v ShortValue) String() string        { return fmt.Sprintf("%d", int16(v)) }
func (v CharValue) String() string         { return fmt.Sprintf("%q", rune(v)) }
func (v IntValue) String() string          { return fmt.Sprintf("%d", int32(v)) }
func (v LongValue) String() string         { return fmt.Sprintf("%dL", int64(v)) }
func (v FloatValue) String() string        { return fmt.Sprintf("%gf", float32(v)) }
func (v DoubleValue) String() string       { return fmt.Sprintf("%g", float64(v)) }
func (v MethodTypeValue) String() string   { return fmt.Sprintf("proto@%d", uint32(v)) }
func (v MethodHandleValue) String() string { return fmt.Sprintf("method_handle@%d", uint32(v)) }
func (v StringValue) String() string       { return fmt.Sprintf("string@%d", uint32(v)) }
func (v TypeValue) String() string         { return fmt.Sprintf("type@%d", uint32(v)) }
func (v FieldValue) String() string        { return fmt.Sprintf("field@%d", uint32(v)) }
func (v MethodValue) String() string       { return fmt.Sprintf("method@%d", uint32(v)) }
func (v EnumValue) String() string         { return fmt.Sprintf("enum@%d", uint32(v)) }
func (NullValue) String() string           { return "null" }
func (v BooleanValue) String() string      { return fmt.Sprintf("%t", bool(v)) }

func (v ArrayValue) String() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v AnnotationValue) String() string {
	return EncodedAnnotation(v).String()
}

// ZeroValue is the default value of a field with type descriptor desc.
func ZeroValue(desc string) EncodedValue {
	switch desc {
	case "Z":
		return BooleanValue(false)
	case "B":
		return ByteValue(0)
	case "S":
		return ShortValue(0)
	case "C":
		return CharValue(0)
	case "I":
		return IntValue(0)
	case "J":
		return LongValue(0)
	case "F":
		return FloatValue(0)
	case "D":
		return DoubleValue(0)
	default:
		return NullValue{}
	}
}

// maxValueSize is the widest payload each fixed-width type may carry.
var maxValueSize = map[ValueType]int{
	ValueByte:         1,
	ValueShort:        2,
	ValueChar:         2,
	ValueInt:          4,
	ValueLong:         8,
	ValueFloat:        4,
	ValueDouble:       8,
	ValueMethodType:   4,
	ValueMethodHandle: 4,
	ValueString:       4,
	ValueTypeID:       4,
	ValueField:        4,
	ValueMethod:       4,
	ValueEnum:         4,
}

// DecodeEncodedArrayAt decodes the encoded_array_item at a data-section
// offset.
func (d *Decoder) DecodeEncodedArrayAt(off uint32) ([]EncodedValue, error) {
	if off == 0 {
		return nil, invalidArgument(0, "encoded array at offset 0")
	}
	r := d.data(off)
	values := readEncodedArray(r)
	if r.err != nil {
		return nil, r.err
	}
	return values, nil
}

func readEncodedArray(r *reader) []EncodedValue {
	n := r.count(uint64(r.uleb()), 1, "encoded array")
	values := make([]EncodedValue, n)
	for i := range values {
		values[i] = readEncodedValue(r)
		if r.err != nil {
			return nil
		}
	}
	return values
}

func readEncodedValue(r *reader) EncodedValue {
	start := r.off
	lead := r.readU1()
	if r.err != nil {
		return nil
	}
	vt := ValueType(lead & 0x1f)
	arg := int(lead >> 5)

	switch vt {
	case ValueArray:
		return ArrayValue(readEncodedArray(r))
	case ValueAnnotation:
		return AnnotationValue(readEncodedAnnotation(r))
	case ValueNull:
		return NullValue{}
	case ValueBoolean:
		return BooleanValue(arg&1 == 1)
	}

	width, ok := maxValueSize[vt]
	if !ok {
		r.fail(malformed(start, "unknown encoded value type %#02x", uint8(vt)))
		return nil
	}
	size := arg + 1
	if size > width {
		r.fail(mismatch(start, fmt.Sprintf("%s value width", vt), fmt.Sprintf("<= %d bytes", width), size))
		return nil
	}
	b := r.readBytes(size)
	if r.err != nil {
		return nil
	}

	switch vt {
	case ValueByte:
		return ByteValue(signExtend(b, r.order))
	case ValueShort:
		return ShortValue(signExtend(b, r.order))
	case ValueChar:
		return CharValue(zeroExtend(b, r.order))
	case ValueInt:
		return IntValue(signExtend(b, r.order))
	case ValueLong:
		return LongValue(signExtend(b, r.order))
	case ValueFloat:
		// the bytes present are the high-order bytes of the value
		bits := uint32(zeroExtend(b, r.order) << (32 - 8*size))
		return FloatValue(math.Float32frombits(bits))
	case ValueDouble:
		bits := zeroExtend(b, r.order) << (64 - 8*size)
		return DoubleValue(math.Float64frombits(bits))
	case ValueMethodType:
		return MethodTypeValue(zeroExtend(b, r.order))
	case ValueMethodHandle:
		return MethodHandleValue(zeroExtend(b, r.order))
	case ValueString:
		return StringValue(zeroExtend(b, r.order))
	case ValueTypeID:
		return TypeValue(zeroExtend(b, r.order))
	case ValueField:
		return FieldValue(zeroExtend(b, r.order))
	case ValueMethod:
		return MethodValue(zeroExtend(b, r.order))
	case ValueEnum:
		return EnumValue(zeroExtend(b, r.order))
	}
	r.fail(errors.Errorf("unhandled encoded value type %s", vt))
	return nil
}

// zeroExtend assembles up to eight bytes in container byte order.
func zeroExtend(b []byte, order binary.ByteOrder) uint64 {
	var v uint64
	if order == binary.BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

// signExtend assembles b like zeroExtend, then fills the high bytes with the
// sign of the most significant byte present.
func signExtend(b []byte, order binary.ByteOrder) int64 {
	shift := 64 - 8*len(b)
	return int64(zeroExtend(b, order)<<shift) >> shift
}
