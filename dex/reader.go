package dex

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/dhamidi/dexter/leb128"
	"github.com/dhamidi/dexter/mutf8"
	"github.com/pkg/errors"
)

const windowSize = 4096

// reader is a cursor over a container. Every decode routine gets its own
// reader positioned at the offset it resolves, so a callee never moves its
// caller's position. Errors are sticky: after the first failure every read
// returns zero and err holds the cause.
type reader struct {
	src   io.ReaderAt
	base  int64 // container start within src
	off   int64 // relative to base
	order binary.ByteOrder
	err   error

	window    []byte
	windowOff int64
}

func newReader(src io.ReaderAt, base, off int64, order binary.ByteOrder) *reader {
	return &reader{src: src, base: base, off: off, order: order}
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// fill makes sure the window covers [r.off, r.off+n) and returns that slice.
func (r *reader) fill(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off < 0 {
		r.fail(malformed(r.off, "negative offset"))
		return nil
	}
	if r.off >= r.windowOff && r.off+int64(n) <= r.windowOff+int64(len(r.window)) {
		start := r.off - r.windowOff
		return r.window[start : start+int64(n)]
	}
	size := windowSize
	if n > size {
		size = n
	}
	if cap(r.window) < size {
		r.window = make([]byte, size)
	}
	r.window = r.window[:size]
	got, err := r.src.ReadAt(r.window, r.base+r.off)
	r.window = r.window[:got]
	r.windowOff = r.off
	if got < n {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		r.fail(errors.Wrapf(err, "read %d bytes at offset %#x", n, r.off))
		return nil
	}
	return r.window[:n]
}

func (r *reader) ReadByte() (byte, error) {
	b := r.fill(1)
	if b == nil {
		return 0, r.err
	}
	r.off++
	return b[0], nil
}

func (r *reader) readU1() uint8 {
	b, _ := r.ReadByte()
	return b
}

func (r *reader) readU2() uint16 {
	b := r.fill(2)
	if b == nil {
		return 0
	}
	r.off += 2
	return r.order.Uint16(b)
}

func (r *reader) readU4() uint32 {
	b := r.fill(4)
	if b == nil {
		return 0
	}
	r.off += 4
	return r.order.Uint32(b)
}

func (r *reader) readBytes(n int) []byte {
	b := r.fill(n)
	if b == nil {
		return nil
	}
	r.off += int64(n)
	out := make([]byte, n)
	copy(out, b)
	return out
}

func (r *reader) skip(n int64) {
	r.off += n
}

func (r *reader) uleb() uint32 {
	if r.err != nil {
		return 0
	}
	start := r.off
	v, err := leb128.DecodeU32(r)
	if err != nil {
		r.fail(r.varintError(start, err))
	}
	return v
}

func (r *reader) sleb() int32 {
	if r.err != nil {
		return 0
	}
	start := r.off
	v, err := leb128.DecodeS32(r)
	if err != nil {
		r.fail(r.varintError(start, err))
	}
	return v
}

func (r *reader) ulebp1() leb128.Optional {
	if r.err != nil {
		return leb128.Optional{}
	}
	start := r.off
	v, err := leb128.DecodeP1(r)
	if err != nil {
		r.fail(r.varintError(start, err))
	}
	return v
}

func (r *reader) varintError(start int64, err error) error {
	if r.err != nil {
		return r.err
	}
	if errors.Is(err, leb128.ErrOverflow) {
		return &FormatError{Kind: KindMalformed, Offset: start, What: "leb128 value", Err: err}
	}
	return errors.Wrapf(err, "leb128 value at offset %#x", start)
}

// mutf8String reads a NUL-terminated modified UTF-8 string.
func (r *reader) mutf8String() string {
	if r.err != nil {
		return ""
	}
	start := r.off
	s, err := mutf8.Read(r)
	if err != nil {
		if r.err != nil {
			return ""
		}
		r.fail(&FormatError{Kind: KindMalformed, Offset: start, What: "string data", Err: err})
	}
	return s
}

// count validates a declared item count before it is used to size an
// allocation. minSize is the smallest number of bytes one item occupies.
func (r *reader) count(n uint64, minSize int64, what string) int {
	if r.err != nil {
		return 0
	}
	if n > uint64(math.MaxInt) {
		r.fail(&FormatError{Kind: KindTooManyItems, Offset: r.off, What: what, Found: n})
		return 0
	}
	if minSize > 0 && n > 0 {
		// the last item has to be readable
		last := r.off + int64(n)*minSize - 1
		if _, err := r.src.ReadAt(make([]byte, 1), r.base+last); err != nil {
			r.fail(mismatch(r.off, what+" count exceeds container", "items within container", n))
			return 0
		}
	}
	return int(n)
}
