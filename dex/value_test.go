package dex

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEncodedValue(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want EncodedValue
	}{
		{"byte negative", []byte{0x00, 0xff}, ByteValue(-1)},
		{"short one byte sign extended", []byte{0x02, 0x80}, ShortValue(-128)},
		{"short two bytes", []byte{0x22, 0x00, 0x80}, ShortValue(-32768)},
		{"char zero extended", []byte{0x03, 0xff}, CharValue(0xff)},
		{"char two bytes", []byte{0x23, 0xff, 0xff}, CharValue(0xffff)},
		{"int three bytes", []byte{0x44, 0x01, 0x00, 0x80}, IntValue(-8388607)},
		{"int positive", []byte{0x24, 0x34, 0x12}, IntValue(0x1234)},
		{"long one byte", []byte{0x06, 0xfe}, LongValue(-2)},
		{"float one byte", []byte{0x10, 0x3f}, FloatValue(0.5)},
		{"float two bytes", []byte{0x30, 0x80, 0x3f}, FloatValue(1)},
		{"double two bytes", []byte{0x31, 0xf0, 0x3f}, DoubleValue(1)},
		{"string index", []byte{0x37, 0x34, 0x12}, StringValue(0x1234)},
		{"type index", []byte{0x18, 0x07}, TypeValue(7)},
		{"field index", []byte{0x19, 0x02}, FieldValue(2)},
		{"method index", []byte{0x1a, 0x03}, MethodValue(3)},
		{"enum index", []byte{0x1b, 0x04}, EnumValue(4)},
		{"method type", []byte{0x15, 0x01}, MethodTypeValue(1)},
		{"method handle", []byte{0x16, 0x01}, MethodHandleValue(1)},
		{"null", []byte{0x1e}, NullValue{}},
		{"true", []byte{0x3f}, BooleanValue(true)},
		{"false", []byte{0x1f}, BooleanValue(false)},
		{"array", []byte{0x1c, 0x02, 0x04, 0x01, 0x1e}, ArrayValue{IntValue(1), NullValue{}}},
		{"annotation", []byte{0x1d, 0x05, 0x01, 0x06, 0x3f}, AnnotationValue{
			TypeIdx:  5,
			Elements: []AnnotationElement{{Name: 6, Value: BooleanValue(true)}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := byteReader(tt.in, binary.LittleEndian)
			got := readEncodedValue(r)
			require.NoError(t, r.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Type(), got.Type())
			assert.Equal(t, int64(len(tt.in)), r.off, "consumed bytes")
		})
	}
}

func TestReadEncodedValueBigEndian(t *testing.T) {
	r := byteReader([]byte{0x24, 0x12, 0x34}, binary.BigEndian)
	assert.Equal(t, IntValue(0x1234), readEncodedValue(r))

	r = byteReader([]byte{0x30, 0x3f, 0x80}, binary.BigEndian)
	assert.Equal(t, FloatValue(1), readEncodedValue(r))
}

func TestReadEncodedValueErrors(t *testing.T) {
	tests := []struct {
		name      string
		in        []byte
		malformed bool
	}{
		{"byte too wide", []byte{0x20, 0x00, 0x00}, true},
		{"int too wide", []byte{0x84, 0, 0, 0, 0, 0}, true},
		{"string index too wide", []byte{0x97, 0, 0, 0, 0, 0}, true},
		{"unknown type", []byte{0x05, 0x00}, true},
		{"truncated payload", []byte{0x24, 0x01}, false},
		{"array count past the end", []byte{0x1c, 0x02, 0x1e}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := byteReader(tt.in, binary.LittleEndian)
			readEncodedValue(r)
			require.Error(t, r.err)
			assert.Equal(t, tt.malformed, isMalformed(r.err))
		})
	}
}

func isMalformed(err error) bool {
	fe, ok := err.(*FormatError)
	return ok && fe.Kind == KindMalformed
}

func TestZeroValue(t *testing.T) {
	assert.Equal(t, BooleanValue(false), ZeroValue("Z"))
	assert.Equal(t, IntValue(0), ZeroValue("I"))
	assert.Equal(t, LongValue(0), ZeroValue("J"))
	assert.Equal(t, DoubleValue(0), ZeroValue("D"))
	assert.Equal(t, NullValue{}, ZeroValue("Ljava/lang/String;"))
	assert.Equal(t, NullValue{}, ZeroValue("[I"))
}

func TestEncodedValueString(t *testing.T) {
	v := ArrayValue{IntValue(1), LongValue(2), StringValue(3), NullValue{}, BooleanValue(true)}
	assert.Equal(t, "{1, 2L, string@3, null, true}", v.String())
	assert.Equal(t, "annotation", ValueAnnotation.String())
}

func TestAnnotationValueKeepsAnnotationType(t *testing.T) {
	v := AnnotationValue{TypeIdx: 7}
	assert.Equal(t, ValueAnnotation, v.Type())
	assert.Equal(t, uint32(7), EncodedAnnotation(v).TypeIdx)
}
