package leb128

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnsignedRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0x7f, 0x80, 0x3fff, 0x4000, 624485, math.MaxUint32, math.MaxUint32 + 1, math.MaxUint64}
	for _, v := range values {
		enc := EncodeU64(v)
		assert.Len(t, enc, SizeU64(v))
		got, err := DecodeU64(bytes.NewReader(enc))
		require.NoError(t, err)
		assert.Equal(t, v, got)

		if v <= math.MaxUint32 {
			got32, err := DecodeU32(bytes.NewReader(EncodeU32(uint32(v))))
			require.NoError(t, err)
			assert.Equal(t, uint32(v), got32)
		}
	}
}

func TestSignedRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, 64, -64, -65, -123456, math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64}
	for _, v := range values {
		got, err := DecodeS64(bytes.NewReader(EncodeS64(v)))
		require.NoError(t, err)
		assert.Equal(t, v, got)

		if v >= math.MinInt32 && v <= math.MaxInt32 {
			got32, err := DecodeS32(bytes.NewReader(EncodeS32(int32(v))))
			require.NoError(t, err)
			assert.Equal(t, int32(v), got32)
		}
	}
}

func TestKnownEncodings(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		u    uint32
		s    int32
	}{
		{"zero", []byte{0x00}, 0, 0},
		{"one", []byte{0x01}, 1, 1},
		{"7f", []byte{0x7f}, 127, -1},
		{"two byte", []byte{0x80, 0x7f}, 16256, -128},
		{"three byte", []byte{0xe5, 0x8e, 0x26}, 624485, 624485},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := DecodeU32(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.u, u)

			s, err := DecodeS32(bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.s, s)
		})
	}
}

func TestDecodeOverflow(t *testing.T) {
	t.Run("six byte u32", func(t *testing.T) {
		_, err := DecodeU32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}))
		assert.ErrorIs(t, err, ErrOverflow)
	})
	t.Run("high bits in fifth byte", func(t *testing.T) {
		_, err := DecodeU32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x1f}))
		assert.ErrorIs(t, err, ErrOverflow)
	})
	t.Run("max u32", func(t *testing.T) {
		v, err := DecodeU32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}))
		require.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), v)
	})
	t.Run("eleven byte u64", func(t *testing.T) {
		data := bytes.Repeat([]byte{0x80}, 10)
		data = append(data, 0x01)
		_, err := DecodeU64(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrOverflow)
	})
	t.Run("six byte s32", func(t *testing.T) {
		_, err := DecodeS32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}))
		assert.ErrorIs(t, err, ErrOverflow)
	})
	t.Run("positive bits past s32 width", func(t *testing.T) {
		_, err := DecodeS32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x0f}))
		assert.ErrorIs(t, err, ErrOverflow)
	})
	t.Run("negative bits past s32 width", func(t *testing.T) {
		_, err := DecodeS32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x77}))
		assert.ErrorIs(t, err, ErrOverflow)
	})
	t.Run("s32 extremes in five bytes", func(t *testing.T) {
		v, err := DecodeS32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x07}))
		require.NoError(t, err)
		assert.Equal(t, int32(math.MaxInt32), v)

		v, err = DecodeS32(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x78}))
		require.NoError(t, err)
		assert.Equal(t, int32(math.MinInt32), v)

		v, err = DecodeS32(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0x7f}))
		require.NoError(t, err)
		assert.Equal(t, int32(-1), v)
	})
	t.Run("bits past s64 width", func(t *testing.T) {
		data := append(bytes.Repeat([]byte{0x80}, 9), 0x02)
		_, err := DecodeS64(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestDecodeTruncated(t *testing.T) {
	_, err := DecodeU32(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)

	_, err = DecodeU32(bytes.NewReader([]byte{0x80, 0x80}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = DecodeS64(bytes.NewReader([]byte{0xff}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestOptional(t *testing.T) {
	assert.Equal(t, []byte{0x00}, EncodeP1(Absent()))

	o, err := DecodeP1(bytes.NewReader([]byte{0x00}))
	require.NoError(t, err)
	assert.False(t, o.IsPresent())
	assert.Equal(t, "absent", o.String())

	o, err = DecodeP1(bytes.NewReader(EncodeP1(Present(5))))
	require.NoError(t, err)
	assert.Equal(t, Present(5), o)
	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, uint32(5), v)

	o, err = DecodeP1(bytes.NewReader(EncodeP1(Present(math.MaxUint32))))
	require.NoError(t, err)
	assert.Equal(t, Present(math.MaxUint32), o)
}
