// Package leb128 encodes and decodes the little-endian base-128 integers used
// throughout dex containers: unsigned (uleb128), signed (sleb128) and the
// "plus one" form (uleb128p1) that reserves zero for an absent value.
//
// Decoders read from an io.ByteReader so they can run directly over a
// bufio.Reader, a bytes.Reader or the dex package's cursor.
package leb128

import (
	"io"

	"github.com/pkg/errors"
)

var ErrOverflow = errors.New("leb128: integer overflows target width")

const (
	continuationBit = 0x80
	payloadMask     = 0x7f
	signBit         = 0x40
)

// DecodeU32 reads a uleb128 value that must fit in 32 bits. At most five
// bytes are consumed and the fifth may only carry the top four bits.
func DecodeU32(r io.ByteReader) (uint32, error) {
	v, err := decodeUnsigned(r, 32)
	return uint32(v), err
}

// DecodeU64 reads a uleb128 value that must fit in 64 bits.
func DecodeU64(r io.ByteReader) (uint64, error) {
	return decodeUnsigned(r, 64)
}

// DecodeS32 reads a sleb128 value that must fit in 32 bits.
func DecodeS32(r io.ByteReader) (int32, error) {
	v, err := decodeSigned(r, 32)
	return int32(v), err
}

// DecodeS64 reads a sleb128 value that must fit in 64 bits.
func DecodeS64(r io.ByteReader) (int64, error) {
	return decodeSigned(r, 64)
}

func decodeUnsigned(r io.ByteReader, width uint) (uint64, error) {
	var res uint64
	var shift uint
	for n := 0; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eofError(err, n)
		}
		if shift >= width {
			return 0, ErrOverflow
		}
		payload := uint64(b & payloadMask)
		if width-shift < 7 && payload>>(width-shift) != 0 {
			return 0, ErrOverflow
		}
		res |= payload << shift
		if b&continuationBit == 0 {
			return res, nil
		}
		shift += 7
	}
}

func decodeSigned(r io.ByteReader, width uint) (int64, error) {
	var res int64
	var shift uint
	for n := 0; ; n++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, eofError(err, n)
		}
		if shift >= width {
			return 0, ErrOverflow
		}
		if rem := width - shift; rem < 7 {
			// bits past the target width must repeat its sign bit
			if top := int64(int8(b<<1)>>1) >> (rem - 1); top != 0 && top != -1 {
				return 0, ErrOverflow
			}
		}
		res |= int64(b&payloadMask) << shift
		shift += 7
		if b&continuationBit == 0 {
			if shift < width && b&signBit != 0 {
				res |= -1 << shift
			}
			if width < 64 {
				// truncate to the target width, keeping the sign
				res = res << (64 - width) >> (64 - width)
			}
			return res, nil
		}
	}
}

func eofError(err error, consumed int) error {
	if err == io.EOF && consumed > 0 {
		return io.ErrUnexpectedEOF
	}
	return err
}

// AppendU64 appends the uleb128 encoding of v to buf.
func AppendU64(buf []byte, v uint64) []byte {
	for {
		b := byte(v & payloadMask)
		v >>= 7
		if v == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|continuationBit)
	}
}

// AppendS64 appends the sleb128 encoding of v to buf.
func AppendS64(buf []byte, v int64) []byte {
	for {
		b := byte(v & payloadMask)
		v >>= 7 // arithmetic shift
		if (v == 0 && b&signBit == 0) || (v == -1 && b&signBit != 0) {
			return append(buf, b)
		}
		buf = append(buf, b|continuationBit)
	}
}

func EncodeU32(v uint32) []byte { return AppendU64(make([]byte, 0, 5), uint64(v)) }
func EncodeU64(v uint64) []byte { return AppendU64(make([]byte, 0, 10), v) }
func EncodeS32(v int32) []byte  { return AppendS64(make([]byte, 0, 5), int64(v)) }
func EncodeS64(v int64) []byte  { return AppendS64(make([]byte, 0, 10), v) }

// SizeU64 reports how many bytes the uleb128 encoding of v occupies.
func SizeU64(v uint64) int {
	n := 1
	for v >>= 7; v != 0; v >>= 7 {
		n++
	}
	return n
}
