package dex

import (
	"crypto/sha1"
	"encoding/binary"
	"hash/adler32"

	"github.com/dhamidi/dexter/leb128"
	"github.com/dhamidi/dexter/mutf8"
)

// byteOrder is satisfied by binary.LittleEndian and binary.BigEndian.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// image assembles a container byte by byte. Offsets returned by pos are
// container-relative; callers of compact images subtract the data start
// themselves.
type image struct {
	order byteOrder
	buf   []byte
}

func newImage(order byteOrder, headerLen int) *image {
	return &image{order: order, buf: make([]byte, headerLen)}
}

func (b *image) pos() uint32 { return uint32(len(b.buf)) }

func (b *image) u1(v ...byte) { b.buf = append(b.buf, v...) }

func (b *image) u2(v uint16) { b.buf = b.order.AppendUint16(b.buf, v) }

func (b *image) u4(v uint32) { b.buf = b.order.AppendUint32(b.buf, v) }

func (b *image) uleb(v uint32) { b.buf = append(b.buf, leb128.EncodeU32(v)...) }

func (b *image) sleb(v int32) { b.buf = append(b.buf, leb128.EncodeS32(v)...) }

func (b *image) align(n uint32) {
	for len(b.buf)%int(n) != 0 {
		b.buf = append(b.buf, 0)
	}
}

func (b *image) patch4(at, v uint32) { b.order.PutUint32(b.buf[at:], v) }

func (b *image) stringData(s string) uint32 {
	off := b.pos()
	b.uleb(uint32(mutf8.UTF16Len(s)))
	b.u1(mutf8.Encode(s)...)
	b.u1(0)
	return off
}

// Header field offsets.
const (
	hdrMap       = 52
	hdrStringIDs = 56
	hdrTypeIDs   = 64
	hdrProtoIDs  = 72
	hdrFieldIDs  = 80
	hdrMethodIDs = 88
	hdrClassDefs = 96
	hdrData      = 104

	hdrDebugInfoOffsetsPos  = 0x74
	hdrDebugInfoTableOffset = 0x78
	hdrDebugInfoBase        = 0x7c
	hdrOwnedDataBegin       = 0x80
	hdrOwnedDataEnd         = 0x84
)

func (b *image) section(field int, size, off uint32) {
	b.patch4(uint32(field), size)
	b.patch4(uint32(field+4), off)
}

// finish fills in magic, sizes, endian tag, signature and checksum.
func (b *image) finish(compact bool) []byte {
	if compact {
		copy(b.buf, "cdex001\x00")
		b.patch4(36, compactHeaderSize)
	} else {
		copy(b.buf, "dex\n035\x00")
		b.patch4(36, headerSize)
	}
	b.patch4(32, b.pos())
	b.patch4(endianTagOffset, 0x12345678)
	sig := sha1.Sum(b.buf[32:])
	copy(b.buf[12:32], sig[:])
	b.patch4(8, adler32.Checksum(b.buf[12:]))
	return b.buf
}

// Indices of the sample container.
const (
	strSourceFile = iota
	strI
	strJ
	strAnno
	strFoo
	strException
	strObject
	strV
	strShortyVI
	strBig
	strCount
	strRun
	strValue
	strX
	strName
	numStrings
)

const (
	typeI = iota
	typeJ
	typeAnno
	typeFoo
	typeException
	typeObject
	typeV
)

var sampleStrings = []string{
	"Foo.java", "I", "J", "LAnno;", "LFoo;", "Ljava/lang/Exception;",
	"Ljava/lang/Object;", "V", "VI", "big", "count", "run", "value", "x", "name",
}

var sampleTypes = []uint32{strI, strJ, strAnno, strFoo, strException, strObject, strV}

type sampleOptions struct {
	// hiddenAPI, when set, is the flag stream of class 0.
	hiddenAPI []uint32
	order     byteOrder
}

// buildSample builds a standard container holding one class:
//
//	public class Foo extends Object {
//	    static long big = 7;
//	    static final int count;
//	    @Anno(value=3) private Object name;
//	    public void run(int x) { try ... catch (Exception) ... catch-all ... }
//	}
//
// plus one method handle and one call site.
func buildSample(opts sampleOptions) []byte {
	if opts.order == nil {
		opts.order = binary.LittleEndian
	}
	b := newImage(opts.order, headerSize)

	stringIDs := b.pos()
	for range sampleStrings {
		b.u4(0)
	}
	b.section(hdrStringIDs, numStrings, stringIDs)

	typeIDs := b.pos()
	for _, s := range sampleTypes {
		b.u4(s)
	}
	b.section(hdrTypeIDs, uint32(len(sampleTypes)), typeIDs)

	protoIDs := b.pos()
	b.u4(strShortyVI)
	b.u4(typeV)
	protoParams := b.pos()
	b.u4(0)
	b.section(hdrProtoIDs, 1, protoIDs)

	fieldIDs := b.pos()
	for _, f := range [][3]uint32{
		{typeFoo, typeJ, strBig},
		{typeFoo, typeI, strCount},
		{typeFoo, typeObject, strName},
	} {
		b.u2(uint16(f[0]))
		b.u2(uint16(f[1]))
		b.u4(f[2])
	}
	b.section(hdrFieldIDs, 3, fieldIDs)

	methodIDs := b.pos()
	b.u2(typeFoo)
	b.u2(0)
	b.u4(strRun)
	b.section(hdrMethodIDs, 1, methodIDs)

	classDefs := b.pos()
	b.u4(typeFoo)
	b.u4(uint32(AccPublic))
	b.u4(typeObject)
	b.u4(0) // interfaces
	b.u4(strSourceFile)
	classAnnotations := b.pos()
	b.u4(0)
	classData := b.pos()
	b.u4(0)
	staticValues := b.pos()
	b.u4(0)
	b.section(hdrClassDefs, 1, classDefs)

	callSiteIDs := b.pos()
	b.u4(0)
	methodHandles := b.pos()
	b.u2(uint16(MethodHandleStaticPut))
	b.u2(0)
	b.u2(1)
	b.u2(0)

	dataStart := b.pos()
	for i, s := range sampleStrings {
		b.patch4(stringIDs+uint32(4*i), b.stringData(s))
	}

	b.align(4)
	typeList := b.pos()
	b.u4(1)
	b.u2(typeI)
	b.patch4(protoParams, typeList)

	b.align(4)
	debugInfo := b.pos()
	b.uleb(10)       // line_start
	b.uleb(1)        // parameters_size
	b.uleb(strX + 1) // parameter name, uleb128p1
	b.u1(0x07)       // set_prologue_end
	b.u1(0x0e)       // special: addr +0, line +0
	b.u1(0x01)       // advance_pc
	b.uleb(2)
	b.u1(0x0f) // special: addr +0, line +1
	b.u1(0x00) // end_sequence

	b.align(4)
	code := b.pos()
	b.u2(3) // registers
	b.u2(2) // ins
	b.u2(0) // outs
	b.u2(2) // tries
	b.u4(debugInfo)
	b.u4(3)
	b.u2(0x0012)
	b.u2(0x0000)
	b.u2(0x000e)
	b.u2(0) // padding
	b.u4(0)
	b.u2(1)
	b.u2(1) // handler at list offset 1
	b.u4(1)
	b.u2(1)
	b.u2(4) // handler at list offset 4
	b.uleb(2)
	b.sleb(1)
	b.uleb(typeException)
	b.uleb(2)
	b.sleb(0)
	b.uleb(2)

	cd := b.pos()
	b.patch4(classData, cd)
	b.uleb(2) // static fields
	b.uleb(1) // instance fields
	b.uleb(0) // direct methods
	b.uleb(1) // virtual methods
	b.uleb(0)
	b.uleb(uint32(AccStatic))
	b.uleb(1)
	b.uleb(uint32(AccStatic | AccFinal))
	b.uleb(2)
	b.uleb(uint32(AccPrivate))
	b.uleb(0)
	b.uleb(uint32(AccPublic))
	b.uleb(code)

	sv := b.pos()
	b.patch4(staticValues, sv)
	b.uleb(1)
	b.u1(byte(ValueLong), 7)

	callSite := b.pos()
	b.patch4(callSiteIDs, callSite)
	b.uleb(3)
	b.u1(byte(ValueMethodHandle), 0)
	b.u1(byte(ValueString), strRun)
	b.u1(byte(ValueMethodType), 0)

	annotation := b.pos()
	b.u1(byte(VisibilityRuntime))
	b.uleb(typeAnno)
	b.uleb(1)
	b.uleb(strValue)
	b.u1(byte(ValueInt), 3)

	b.align(4)
	set := b.pos()
	b.u4(1)
	b.u4(annotation)

	refList := b.pos()
	b.u4(1)
	b.u4(set)

	dir := b.pos()
	b.patch4(classAnnotations, dir)
	b.u4(set)
	b.u4(1) // fields
	b.u4(0) // methods
	b.u4(1) // parameters
	b.u4(2)
	b.u4(set)
	b.u4(0)
	b.u4(refList)

	var hiddenAPI uint32
	if opts.hiddenAPI != nil {
		hiddenAPI = b.pos()
		sizeAt := b.pos()
		b.u4(0)
		b.u4(8)
		for _, f := range opts.hiddenAPI {
			b.uleb(f)
		}
		b.patch4(sizeAt, b.pos()-hiddenAPI)
	}

	b.align(4)
	mapOff := b.pos()
	items := [][3]uint32{
		{uint32(TypeHeaderItem), 1, 0},
		{uint32(TypeStringIDItem), numStrings, stringIDs},
		{uint32(TypeTypeIDItem), uint32(len(sampleTypes)), typeIDs},
		{uint32(TypeProtoIDItem), 1, protoIDs},
		{uint32(TypeFieldIDItem), 3, fieldIDs},
		{uint32(TypeMethodIDItem), 1, methodIDs},
		{uint32(TypeClassDefItem), 1, classDefs},
		{uint32(TypeCallSiteIDItem), 1, callSiteIDs},
		{uint32(TypeMethodHandleItem), 1, methodHandles},
		{uint32(TypeMapList), 1, mapOff},
	}
	if opts.hiddenAPI != nil {
		items = append(items, [3]uint32{uint32(TypeHiddenAPIClassDataItem), 1, hiddenAPI})
	}
	b.u4(uint32(len(items)))
	for _, it := range items {
		b.u2(uint16(it[0]))
		b.u2(0)
		b.u4(it[1])
		b.u4(it[2])
	}
	b.patch4(hdrMap, mapOff)
	b.section(hdrData, b.pos()-dataStart, dataStart)
	return b.finish(false)
}

// buildEmpty builds a container whose header references no sections.
func buildEmpty(order byteOrder) []byte {
	return newImage(order, headerSize).finish(false)
}

// buildCompact builds a compact container with one class and two direct
// methods. Method 0 has a code item whose register count overflows its
// nibble and debug info found through the offset table; method 1 carries
// its instruction count in the preheader and has a try block.
func buildCompact() []byte {
	b := newImage(binary.LittleEndian, compactHeaderSize)

	classDefs := b.pos()
	b.u4(0)
	b.u4(uint32(AccPublic))
	b.u4(NoIndex)
	b.u4(0)
	b.u4(NoIndex)
	b.u4(0)
	classData := b.pos()
	b.u4(0)
	b.u4(0)
	b.section(hdrClassDefs, 1, classDefs)

	data := b.pos()
	rel := func() uint32 { return b.pos() - data }
	b.u4(0) // keep every structure away from offset 0

	b.u2(19) // preheader: registers
	code0 := rel()
	// ins 1, two insns, registers in the preheader
	b.u2(1 << cdexInsShift)
	b.u2(2<<cdexInsnsShift | cdexPreHeaderRegisters)
	b.u2(0x0000)
	b.u2(0x000e)

	b.u2(0) // preheader: insns high
	b.u2(1) // preheader: insns low
	code1 := rel()
	b.u2(1<<cdexRegistersShift | 1<<cdexOutsShift | 1<<cdexTriesShift)
	b.u2(cdexPreHeaderInsns)
	b.u2(0x000e)
	b.align(4)
	b.u4(0)
	b.u2(1)
	b.u2(1)
	b.uleb(1)
	b.sleb(0)
	b.uleb(0)

	debugInfo := rel()
	b.uleb(5)
	b.uleb(0)
	b.u1(0x0e)
	b.u1(0x00)

	cd := rel()
	b.patch4(classData, cd)
	b.uleb(0)
	b.uleb(0)
	b.uleb(2)
	b.uleb(0)
	b.uleb(0)
	b.uleb(uint32(AccPublic))
	b.uleb(code0)
	b.uleb(1)
	b.uleb(uint32(AccPublic))
	b.uleb(code1)

	// debug info offset table: one block covering methods 0-15, only
	// method 0 present
	b.align(4)
	region := rel()
	b.u1(0x00, 0x01) // big-endian presence mask
	b.uleb(3)        // delta from the minimum
	b.align(4)
	table := rel() - region
	b.u4(0) // block 0 at region start

	b.patch4(hdrDebugInfoOffsetsPos, region)
	b.patch4(hdrDebugInfoTableOffset, table)
	b.patch4(hdrDebugInfoBase, debugInfo-3)
	b.section(hdrData, b.pos()-data, data)
	b.patch4(hdrOwnedDataBegin, 0)
	b.patch4(hdrOwnedDataEnd, b.pos()-data)
	return b.finish(true)
}
