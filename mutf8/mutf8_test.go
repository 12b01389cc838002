package mutf8

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"ascii", []byte("Ljava/lang/Object;"), "Ljava/lang/Object;"},
		{"encoded nul", []byte{0xc0, 0x80}, "\x00"},
		{"two byte", []byte{0xc3, 0xa9}, "é"},
		{"three byte", []byte{0xe2, 0x82, 0xac}, "€"},
		{"surrogate pair", []byte{0xed, 0xa0, 0xbd, 0xed, 0xb8, 0x80}, "😀"},
		{"mixed", []byte{'a', 0xc0, 0x80, 'b'}, "a\x00b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want error
	}{
		{"raw nul", []byte{0x00}, ErrNulByte},
		{"truncated two byte", []byte{0xc3}, ErrMissingContinuation},
		{"bad continuation", []byte{0xe2, 0x41, 0x41}, ErrMissingContinuation},
		{"lone high surrogate", []byte{0xed, 0xa0, 0xbd}, ErrBadSurrogate},
		{"high then non-surrogate", []byte{0xed, 0xa0, 0xbd, 0xe2, 0x82, 0xac}, ErrBadSurrogate},
		{"high then high", []byte{0xed, 0xa0, 0xbd, 0xed, 0xa0, 0xbd}, ErrBadSurrogate},
		{"lone low surrogate", []byte{0xed, 0xb8, 0x80}, ErrBadSurrogate},
		{"four byte lead", []byte{0xf0, 0x9f, 0x98, 0x80}, ErrFourByteLead},
		{"stray continuation", []byte{0x80}, ErrInvalidByte},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeErrorOffset(t *testing.T) {
	_, err := Decode([]byte{'a', 'b', 0x00})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Offset)
}

func TestRead(t *testing.T) {
	r := bytes.NewReader([]byte{'h', 'i', 0x00, 'x'})
	s, err := Read(r)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, 1, r.Len())

	_, err = Read(bytes.NewReader([]byte{'h', 'i'}))
	assert.ErrorIs(t, err, ErrUnterminated)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, s := range []string{"", "plain", "a\x00b", "é€", "😀 smile", "<init>"} {
		enc := Encode(s)
		assert.NotContains(t, enc, byte(0))
		got, err := Decode(enc)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	assert.Equal(t, 2, UTF16Len("😀"))
	assert.Equal(t, 3, UTF16Len("a€b"))
}
