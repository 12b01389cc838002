package dex

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("dexter.dex")

type options struct {
	verifyChecksum  bool
	verifySignature bool
	hiddenAPI       bool
	log             commonlog.Logger
}

type Option func(*options)

// WithVerifyChecksum makes decoding fail when the Adler-32 checksum in the
// header does not match the container bytes.
func WithVerifyChecksum() Option {
	return func(o *options) { o.verifyChecksum = true }
}

// WithVerifySignature makes decoding fail when the SHA-1 signature in the
// header does not match the container bytes.
func WithVerifySignature() Option {
	return func(o *options) { o.verifySignature = true }
}

// WithHiddenAPI controls whether hidden api flags are merged onto class
// data. It is enabled by default.
func WithHiddenAPI(enabled bool) Option {
	return func(o *options) { o.hiddenAPI = enabled }
}

func WithLogger(l commonlog.Logger) Option {
	return func(o *options) { o.log = l }
}

// A Decoder resolves structures of one container. Structures are reached by
// offset; shared ones (type lists, annotation sets, strings) are decoded once
// and cached by the offset they were found at.
type Decoder struct {
	src      io.ReaderAt
	base     int64
	header   *Header
	dataBase int64
	opts     options
	log      commonlog.Logger

	debugInfoOffsets *CompactOffsetTable

	strings        map[uint32]string
	typeLists      map[uint32][]uint16
	annotationSets map[uint32]AnnotationSet
}

// NewDecoder reads and checks the header of the container that starts at
// base within src.
func NewDecoder(src io.ReaderAt, base int64, opts ...Option) (*Decoder, error) {
	d := &Decoder{
		src:            src,
		base:           base,
		opts:           options{hiddenAPI: true, log: log},
		strings:        map[uint32]string{},
		typeLists:      map[uint32][]uint16{},
		annotationSets: map[uint32]AnnotationSet{},
	}
	for _, opt := range opts {
		opt(&d.opts)
	}
	d.log = d.opts.log

	h, err := readHeader(src, base)
	if err != nil {
		return nil, err
	}
	d.header = h
	if h.IsCompact() {
		// data section offsets of compact containers are relative to the
		// start of the data section
		d.dataBase = int64(h.Data.Off)
		d.debugInfoOffsets = NewCompactOffsetTable(src, base+d.dataBase+int64(h.DebugInfoOffsetsPos),
			h.DebugInfoOffsetsTableOffset, h.DebugInfoBase, h.ByteOrder)
	}
	d.log.Debugf("header at %#x: %s", base, h)
	return d, nil
}

func (d *Decoder) Header() *Header { return d.header }

// at returns a reader positioned at a container-relative offset.
func (d *Decoder) at(off uint32) *reader {
	return newReader(d.src, d.base, int64(off), d.header.ByteOrder)
}

// data returns a reader positioned at a data-section offset.
func (d *Decoder) data(off uint32) *reader {
	return newReader(d.src, d.base, d.dataBase+int64(off), d.header.ByteOrder)
}

// Decode resolves the whole container graph. Either a complete File is
// returned or an error; partial graphs are never exposed.
func (d *Decoder) Decode() (*File, error) {
	if d.opts.verifyChecksum {
		if err := d.VerifyChecksum(); err != nil {
			return nil, err
		}
	}
	if d.opts.verifySignature {
		if err := d.VerifySignature(); err != nil {
			return nil, err
		}
	}

	f := &File{Header: *d.header}
	var err error
	if f.Strings, err = d.decodeStrings(); err != nil {
		return nil, errors.Wrap(err, "strings")
	}
	if f.Types, err = d.decodeTypes(); err != nil {
		return nil, errors.Wrap(err, "types")
	}
	if f.Protos, err = d.decodeProtos(); err != nil {
		return nil, errors.Wrap(err, "prototypes")
	}
	if f.Fields, err = d.decodeFields(); err != nil {
		return nil, errors.Wrap(err, "fields")
	}
	if f.Methods, err = d.decodeMethods(); err != nil {
		return nil, errors.Wrap(err, "methods")
	}
	if f.DebugInfoOffsets, err = d.debugInfoOffsets.load(len(f.Methods)); err != nil {
		return nil, errors.Wrap(err, "debug info offsets")
	}
	if f.Classes, err = d.decodeClassDefs(); err != nil {
		return nil, errors.Wrap(err, "class definitions")
	}
	if f.Link, err = d.decodeLink(); err != nil {
		return nil, errors.Wrap(err, "link section")
	}
	if f.MapList, err = d.DecodeMapList(); err != nil {
		return nil, errors.Wrap(err, "map list")
	}

	for _, item := range f.MapList {
		switch item.Type {
		case TypeCallSiteIDItem:
			if f.CallSites, err = d.decodeCallSites(item); err != nil {
				return nil, errors.Wrap(err, "call sites")
			}
		case TypeMethodHandleItem:
			if f.MethodHandles, err = d.decodeMethodHandles(item); err != nil {
				return nil, errors.Wrap(err, "method handles")
			}
		}
	}

	// The overlay mutates class data in place, so it runs last.
	for _, item := range f.MapList {
		if item.Type != TypeHiddenAPIClassDataItem {
			continue
		}
		if item.Size == 0 || item.Off == 0 {
			continue
		}
		if !d.opts.hiddenAPI {
			d.log.Infof("skipping hidden api data at %#x", item.Off)
			continue
		}
		if err := d.applyHiddenAPI(item.Off, f.Classes); err != nil {
			return nil, errors.Wrap(err, "hidden api")
		}
		f.HiddenAPI = true
	}

	d.log.Debugf("decoded %d strings, %d types, %d methods, %d classes",
		len(f.Strings), len(f.Types), len(f.Methods), len(f.Classes))
	return f, nil
}

// ParseAt decodes the container that starts at base within src. Readers of
// outer formats that embed containers call it with the embedded offset.
func ParseAt(src io.ReaderAt, base int64, opts ...Option) (*File, error) {
	d, err := NewDecoder(src, base, opts...)
	if err != nil {
		return nil, err
	}
	return d.Decode()
}

func Parse(src io.ReaderAt, opts ...Option) (*File, error) {
	return ParseAt(src, 0, opts...)
}

func ParseBytes(b []byte, opts ...Option) (*File, error) {
	return Parse(bytes.NewReader(b), opts...)
}

func ParseFile(path string, opts ...Option) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dex file")
	}
	defer f.Close()
	return Parse(f, opts...)
}
