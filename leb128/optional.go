package leb128

import (
	"fmt"
	"io"
)

// Optional is a non-negative index that may be absent. It is stored on the
// wire as uleb128(value+1), with 0 meaning absent.
type Optional struct {
	Value uint32
	Valid bool
}

func Absent() Optional             { return Optional{} }
func Present(v uint32) Optional    { return Optional{Value: v, Valid: true} }
func (o Optional) IsPresent() bool { return o.Valid }

// Get returns the index and whether it is present.
func (o Optional) Get() (uint32, bool) { return o.Value, o.Valid }

func (o Optional) String() string {
	if !o.Valid {
		return "absent"
	}
	return fmt.Sprintf("%d", o.Value)
}

// DecodeP1 reads a uleb128p1 value.
func DecodeP1(r io.ByteReader) (Optional, error) {
	v, err := DecodeU64(r)
	if err != nil {
		return Optional{}, err
	}
	if v == 0 {
		return Absent(), nil
	}
	if v-1 > 0xffffffff {
		return Optional{}, ErrOverflow
	}
	return Present(uint32(v - 1)), nil
}

// EncodeP1 returns the uleb128p1 encoding of o. Absent encodes as the single
// byte 0x00.
func EncodeP1(o Optional) []byte {
	if !o.Valid {
		return []byte{0}
	}
	return EncodeU64(uint64(o.Value) + 1)
}
