package dex

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/bits"
)

const compactOffsetBlockSize = 16

// CompactOffsetTable maps method ids to debug info offsets in compact
// containers. Indices are grouped into blocks of 16; each block starts with
// a big-endian bitmask of the indices that have an offset, followed by one
// uleb128 delta per set bit. An index's offset is the table minimum plus the
// deltas up to and including its own.
type CompactOffsetTable struct {
	src           io.ReaderAt
	regionStart   int64
	tableOffset   uint32
	minimumOffset uint32
	order         binary.ByteOrder
}

// NewCompactOffsetTable describes a table whose region starts at the absolute
// position regionStart within src. The block pointer table lives tableOffset
// bytes into the region and its pointers are relative to the region start.
func NewCompactOffsetTable(src io.ReaderAt, regionStart int64, tableOffset, minimumOffset uint32, order binary.ByteOrder) *CompactOffsetTable {
	return &CompactOffsetTable{
		src:           src,
		regionStart:   regionStart,
		tableOffset:   tableOffset,
		minimumOffset: minimumOffset,
		order:         order,
	}
}

func (t *CompactOffsetTable) MinimumOffset() uint32 {
	if t == nil {
		return 0
	}
	return t.minimumOffset
}

// load returns a copy of t backed by the bytes of its region, so lookups
// keep working once the source is closed. The blocks precede the pointer
// table, which holds one pointer per 16 methods.
func (t *CompactOffsetTable) load(methods int) (*CompactOffsetTable, error) {
	if t == nil {
		return nil, nil
	}
	blocks := (int64(methods) + compactOffsetBlockSize - 1) / compactOffsetBlockSize
	buf := make([]byte, int64(t.tableOffset)+4*blocks)
	if n, err := t.src.ReadAt(buf, t.regionStart); n < len(buf) {
		if err == nil || err == io.EOF {
			return nil, malformed(t.regionStart, "debug info offset table needs %d bytes, found %d", len(buf), n)
		}
		return nil, err
	}
	return NewCompactOffsetTable(bytes.NewReader(buf), 0, t.tableOffset, t.minimumOffset, t.order), nil
}

// GetOffset returns the offset stored for index, or 0 when the index has
// none.
func (t *CompactOffsetTable) GetOffset(index uint32) (uint32, error) {
	if t == nil {
		return 0, nil
	}
	ptr := newReader(t.src, t.regionStart, int64(t.tableOffset)+4*int64(index/compactOffsetBlockSize), t.order)
	blockOff := ptr.readU4()
	if ptr.err != nil {
		return 0, ptr.err
	}

	r := newReader(t.src, t.regionStart, int64(blockOff), binary.BigEndian)
	mask := r.readU2()
	if r.err != nil {
		return 0, r.err
	}
	bit := index % compactOffsetBlockSize
	if mask&(1<<bit) == 0 {
		return 0, nil
	}
	n := bits.OnesCount16(mask & (1<<(bit+1) - 1))
	if n == 0 {
		return 0, malformed(int64(blockOff), "empty offset block for index %d", index)
	}
	off := t.minimumOffset
	for i := 0; i < n; i++ {
		off += r.uleb()
	}
	if r.err != nil {
		return 0, r.err
	}
	return off, nil
}
