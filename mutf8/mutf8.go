// Package mutf8 converts between Go strings and the modified UTF-8 encoding
// used by dex string data.
//
// Modified UTF-8 differs from standard UTF-8 in two ways: the NUL character
// is written as the two bytes 0xC0 0x80 so that a raw 0x00 can terminate the
// string, and supplementary characters are written as a UTF-16 surrogate pair,
// each half encoded as its own three-byte sequence. There is no four-byte
// form.
package mutf8

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	ErrNulByte             = errors.New("raw NUL byte in string data")
	ErrMissingContinuation = errors.New("missing continuation byte")
	ErrBadSurrogate        = errors.New("malformed surrogate pair")
	ErrFourByteLead        = errors.New("four-byte UTF-8 lead byte")
	ErrInvalidByte         = errors.New("invalid lead byte")
	ErrUnterminated        = errors.New("string data is not NUL terminated")
)

// DecodeError records where in the input a decode failed.
type DecodeError struct {
	Err    error
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("mutf8: %v at byte %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode converts b, which must not include the terminating NUL, into a
// string.
func Decode(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))
	i := 0
	for i < len(b) {
		c := b[i]
		switch {
		case c == 0:
			return "", &DecodeError{ErrNulByte, i}

		case c < 0x80:
			sb.WriteByte(c)
			i++

		case c&0xe0 == 0xc0:
			if i+1 >= len(b) || !isContinuation(b[i+1]) {
				return "", &DecodeError{ErrMissingContinuation, i}
			}
			sb.WriteRune(rune(c&0x1f)<<6 | rune(b[i+1]&0x3f))
			i += 2

		case c&0xf0 == 0xe0:
			if i+2 >= len(b) || !isContinuation(b[i+1]) || !isContinuation(b[i+2]) {
				return "", &DecodeError{ErrMissingContinuation, i}
			}
			r := decode3(b[i:])
			switch {
			case isHighSurrogate(r):
				if i+5 >= len(b) || b[i+3] != 0xed || !isContinuation(b[i+4]) || !isContinuation(b[i+5]) {
					return "", &DecodeError{ErrBadSurrogate, i}
				}
				low := decode3(b[i+3:])
				if !isLowSurrogate(low) {
					return "", &DecodeError{ErrBadSurrogate, i + 3}
				}
				sb.WriteRune(0x10000 + (r-0xd800)<<10 + (low - 0xdc00))
				i += 6
			case isLowSurrogate(r):
				return "", &DecodeError{ErrBadSurrogate, i}
			default:
				sb.WriteRune(r)
				i += 3
			}

		case c&0xf8 == 0xf0:
			return "", &DecodeError{ErrFourByteLead, i}

		default:
			return "", &DecodeError{ErrInvalidByte, i}
		}
	}
	return sb.String(), nil
}

// Read consumes bytes from r up to and including the terminating NUL and
// decodes them.
func Read(r io.ByteReader) (string, error) {
	var buf []byte
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return "", &DecodeError{ErrUnterminated, len(buf)}
		}
		if err != nil {
			return "", err
		}
		if c == 0 {
			return Decode(buf)
		}
		buf = append(buf, c)
	}
}

// Encode converts s into modified UTF-8 without a trailing NUL. Invalid
// UTF-8 in s is written as U+FFFD.
func Encode(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xc0, 0x80)
		case r >= 0x10000:
			r -= 0x10000
			out = append3(out, 0xd800+(r>>10))
			out = append3(out, 0xdc00+(r&0x3ff))
		default:
			out = utf8.AppendRune(out, r)
		}
	}
	return out
}

// UTF16Len reports the number of UTF-16 code units in s, the value dex
// stores ahead of each string's bytes.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

func isContinuation(c byte) bool  { return c&0xc0 == 0x80 }
func isHighSurrogate(r rune) bool { return r >= 0xd800 && r <= 0xdbff }
func isLowSurrogate(r rune) bool  { return r >= 0xdc00 && r <= 0xdfff }

func decode3(b []byte) rune {
	return rune(b[0]&0x0f)<<12 | rune(b[1]&0x3f)<<6 | rune(b[2]&0x3f)
}

func append3(out []byte, r rune) []byte {
	return append(out, 0xe0|byte(r>>12), 0x80|byte(r>>6)&0x3f, 0x80|byte(r)&0x3f)
}
