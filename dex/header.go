package dex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Section is a size/offset pair from the header.
type Section struct {
	Size uint32
	Off  uint32
}

// Empty reports whether the section resolves to no items. A zero size or a
// zero offset both mean empty.
func (s Section) Empty() bool { return s.Size == 0 || s.Off == 0 }

type Header struct {
	Magic      [8]byte
	Checksum   uint32
	Signature  [20]byte
	FileSize   uint32
	HeaderSize uint32
	ByteOrder  binary.ByteOrder
	Link       Section
	MapOff     uint32
	StringIDs  Section
	TypeIDs    Section
	ProtoIDs   Section
	FieldIDs   Section
	MethodIDs  Section
	ClassDefs  Section
	Data       Section

	// Compact containers only.
	FeatureFlags                uint32
	DebugInfoOffsetsPos         uint32
	DebugInfoOffsetsTableOffset uint32
	DebugInfoBase               uint32
	OwnedDataBegin              uint32
	OwnedDataEnd                uint32
}

// IsCompact reports whether the header belongs to a compact (cdex) container.
func (h *Header) IsCompact() bool {
	return bytes.Equal(h.Magic[:4], compactMagicPrefix[:])
}

// Version returns the three digit format version from the magic.
func (h *Header) Version() string {
	return string(h.Magic[4:7])
}

func (h *Header) String() string {
	kind := "dex"
	if h.IsCompact() {
		kind = "cdex"
	}
	return fmt.Sprintf("%s %s, %d bytes, %v", kind, h.Version(), h.FileSize, h.ByteOrder)
}

func readHeader(src io.ReaderAt, base int64) (*Header, error) {
	raw := make([]byte, compactHeaderSize)
	n, err := src.ReadAt(raw[:headerSize], base)
	if n < headerSize {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "read header")
	}

	h := &Header{}
	copy(h.Magic[:], raw[0:8])
	if err := checkMagic(h.Magic); err != nil {
		return nil, err
	}

	var tag [4]byte
	copy(tag[:], raw[endianTagOffset:endianTagOffset+4])
	switch tag {
	case endianConstant:
		h.ByteOrder = binary.LittleEndian
	case reverseEndianConstant:
		h.ByteOrder = binary.BigEndian
	default:
		return nil, mismatch(endianTagOffset, "endian tag",
			fmt.Sprintf("% x or % x", endianConstant, reverseEndianConstant), fmt.Sprintf("% x", tag))
	}

	if h.IsCompact() {
		n, err := src.ReadAt(raw[headerSize:], base+headerSize)
		if n < compactHeaderSize-headerSize {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, errors.Wrap(err, "read compact header")
		}
	}

	// Everything is decoded with the detected order, including the fields
	// in front of the endian tag.
	r := &headerFields{b: raw, off: 8, order: h.ByteOrder}
	h.Checksum = r.u4()
	copy(h.Signature[:], raw[12:32])
	r.off = 32
	h.FileSize = r.u4()
	h.HeaderSize = r.u4()
	r.u4() // endian tag
	h.Link = r.section()
	h.MapOff = r.u4()
	h.StringIDs = r.section()
	h.TypeIDs = r.section()
	h.ProtoIDs = r.section()
	h.FieldIDs = r.section()
	h.MethodIDs = r.section()
	h.ClassDefs = r.section()
	h.Data = r.section()
	if h.IsCompact() {
		h.FeatureFlags = r.u4()
		h.DebugInfoOffsetsPos = r.u4()
		h.DebugInfoOffsetsTableOffset = r.u4()
		h.DebugInfoBase = r.u4()
		h.OwnedDataBegin = r.u4()
		h.OwnedDataEnd = r.u4()
	}

	minSize := uint32(headerSize)
	if h.IsCompact() {
		minSize = compactHeaderSize
	}
	if h.HeaderSize < minSize {
		return nil, mismatch(36, "header size", fmt.Sprintf(">= %#x", minSize), fmt.Sprintf("%#x", h.HeaderSize))
	}
	if h.FileSize < h.HeaderSize {
		return nil, mismatch(32, "file size smaller than header", fmt.Sprintf(">= %d", h.HeaderSize), h.FileSize)
	}
	return h, nil
}

func checkMagic(m [8]byte) error {
	prefix := [4]byte(m[:4])
	if prefix != dexMagicPrefix && prefix != compactMagicPrefix {
		return mismatch(0, "magic", fmt.Sprintf("%q or %q", dexMagicPrefix[:], compactMagicPrefix[:]), fmt.Sprintf("%q", m[:4]))
	}
	for _, c := range m[4:7] {
		if c < '0' || c > '9' {
			return mismatch(4, "magic version", "three digits", fmt.Sprintf("%q", m[4:7]))
		}
	}
	if m[7] != 0 {
		return mismatch(7, "magic terminator", 0, m[7])
	}
	return nil
}

type headerFields struct {
	b     []byte
	off   int
	order binary.ByteOrder
}

func (h *headerFields) u4() uint32 {
	v := h.order.Uint32(h.b[h.off:])
	h.off += 4
	return v
}

func (h *headerFields) section() Section {
	size := h.u4()
	return Section{Size: size, Off: h.u4()}
}
