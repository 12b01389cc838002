package dex

import (
	"github.com/pkg/errors"
)

type CodeItem struct {
	RegistersSize uint16
	InsSize       uint16
	OutsSize      uint16
	DebugInfoOff  uint32
	Insns         []uint16
	Tries         []TryBlock
	Handlers      []CatchHandler
	DebugInfo     *DebugInfo
}

// TryBlock covers InsnCount code units starting at StartAddr. Handler is an
// index into the owning CodeItem's Handlers; HandlerOff is the byte offset
// the index was translated from.
type TryBlock struct {
	StartAddr  uint32
	InsnCount  uint16
	HandlerOff uint16
	Handler    int
}

type CatchHandler struct {
	Pairs       []TypeAddrPair
	CatchAll    uint32
	HasCatchAll bool
}

type TypeAddrPair struct {
	Type uint32
	Addr uint32
}

// Compact code item layout.
const (
	cdexRegistersShift = 12
	cdexInsShift       = 8
	cdexOutsShift      = 4
	cdexTriesShift     = 0
	cdexInsnsShift     = 5

	cdexPreHeaderRegisters = 1 << 0
	cdexPreHeaderIns       = 1 << 1
	cdexPreHeaderOuts      = 1 << 2
	cdexPreHeaderTries     = 1 << 3
	cdexPreHeaderInsns     = 1 << 4
)

// DecodeCodeItemAt decodes the code_item at a data-section offset. For
// compact containers method is the method id used to look up debug info;
// standard containers ignore it.
func (d *Decoder) DecodeCodeItemAt(off uint32, method uint32) (*CodeItem, error) {
	if off == 0 {
		return nil, invalidArgument(0, "code item at offset 0")
	}
	return d.decodeCodeItem(off, method)
}

func (d *Decoder) decodeCodeItem(off uint32, method uint32) (*CodeItem, error) {
	var (
		c     *CodeItem
		tries int
		r     *reader
		err   error
	)
	if d.header.IsCompact() {
		c, tries, r, err = d.compactCodeHeader(off)
	} else {
		c, tries, r, err = d.standardCodeHeader(off)
	}
	if err != nil {
		return nil, err
	}

	if tries > 0 {
		if c.Tries, c.Handlers, err = readTries(r, tries); err != nil {
			return nil, err
		}
	}

	debugOff := c.DebugInfoOff
	if d.header.IsCompact() {
		if debugOff, err = d.debugInfoOffsets.GetOffset(method); err != nil {
			return nil, errors.Wrap(err, "debug info offset")
		}
		c.DebugInfoOff = debugOff
	}
	if debugOff != 0 {
		if c.DebugInfo, err = d.DecodeDebugInfoAt(debugOff); err != nil {
			return nil, errors.Wrap(err, "debug info")
		}
	}
	return c, nil
}

// standardCodeHeader reads the fixed header and instructions and returns a
// reader positioned at the try table.
func (d *Decoder) standardCodeHeader(off uint32) (*CodeItem, int, *reader, error) {
	r := d.data(off)
	c := &CodeItem{
		RegistersSize: r.readU2(),
		InsSize:       r.readU2(),
		OutsSize:      r.readU2(),
	}
	tries := r.readU2()
	c.DebugInfoOff = r.readU4()
	insnsSize := r.readU4()
	c.Insns = readInsns(r, r.count(uint64(insnsSize), 2, "insns"))
	if insnsSize%2 == 1 {
		r.skip(2) // padding
	}
	if r.err != nil {
		return nil, 0, nil, r.err
	}
	return c, int(tries), r, nil
}

// compactCodeHeader decodes the packed header of a compact code item. Fields
// that do not fit their nibble are extended by a preheader of 16-bit units
// stored in front of the item and read backwards.
func (d *Decoder) compactCodeHeader(off uint32) (*CodeItem, int, *reader, error) {
	r := d.data(off)
	fields := r.readU2()
	insnsAndFlags := r.readU2()
	if r.err != nil {
		return nil, 0, nil, r.err
	}

	registers := uint32(fields>>cdexRegistersShift) & 0xf
	ins := uint32(fields>>cdexInsShift) & 0xf
	outs := uint32(fields>>cdexOutsShift) & 0xf
	tries := uint32(fields>>cdexTriesShift) & 0xf
	insns := uint32(insnsAndFlags >> cdexInsnsShift)
	flags := insnsAndFlags & (1<<cdexInsnsShift - 1)

	if flags != 0 {
		pre := d.data(off)
		back := func() uint32 {
			pre.off -= 2
			v := uint32(pre.readU2())
			pre.off -= 2
			return v
		}
		if flags&cdexPreHeaderInsns != 0 {
			insns += back()
			insns += back() << 16
		}
		if flags&cdexPreHeaderRegisters != 0 {
			registers += back()
		}
		if flags&cdexPreHeaderIns != 0 {
			ins += back()
		}
		if flags&cdexPreHeaderOuts != 0 {
			outs += back()
		}
		if flags&cdexPreHeaderTries != 0 {
			tries += back()
		}
		if pre.err != nil {
			return nil, 0, nil, errors.Wrap(pre.err, "code item preheader")
		}
	}
	// the packed register count excludes the ins
	registers += ins
	if registers > 0xffff || ins > 0xffff || outs > 0xffff || tries > 0xffff {
		return nil, 0, nil, malformed(d.dataBase+int64(off), "compact code item field exceeds 16 bits")
	}

	c := &CodeItem{
		RegistersSize: uint16(registers),
		InsSize:       uint16(ins),
		OutsSize:      uint16(outs),
	}
	c.Insns = readInsns(r, r.count(uint64(insns), 2, "insns"))
	if tries > 0 && r.off%4 != 0 {
		r.skip(4 - r.off%4)
	}
	if r.err != nil {
		return nil, 0, nil, r.err
	}
	return c, int(tries), r, nil
}

func readInsns(r *reader, n int) []uint16 {
	insns := make([]uint16, n)
	for i := range insns {
		insns[i] = r.readU2()
	}
	return insns
}

// readTries reads the try table and the catch handler list that follows it,
// then translates every try block's handler byte offset into an index.
func readTries(r *reader, n int) ([]TryBlock, []CatchHandler, error) {
	tries := make([]TryBlock, r.count(uint64(n), 8, "tries"))
	for i := range tries {
		tries[i] = TryBlock{
			StartAddr:  r.readU4(),
			InsnCount:  r.readU2(),
			HandlerOff: r.readU2(),
		}
	}

	listStart := r.off
	size := r.count(uint64(r.uleb()), 1, "catch handlers")
	handlers := make([]CatchHandler, size)
	offsets := make([]uint32, size)
	for i := range handlers {
		offsets[i] = uint32(r.off - listStart)
		handlers[i] = readCatchHandler(r)
	}
	if r.err != nil {
		return nil, nil, r.err
	}

	if err := translateHandlers(tries, offsets); err != nil {
		return nil, nil, err
	}
	return tries, handlers, nil
}

func readCatchHandler(r *reader) CatchHandler {
	start := r.off
	size := r.sleb()
	count := size
	if count < 0 {
		count = -count
	}
	h := CatchHandler{Pairs: make([]TypeAddrPair, r.count(uint64(count), 2, "catch handler pairs"))}
	for i := range h.Pairs {
		h.Pairs[i] = TypeAddrPair{Type: r.uleb(), Addr: r.uleb()}
	}
	if size <= 0 {
		h.CatchAll = r.uleb()
		h.HasCatchAll = true
	}
	if len(h.Pairs) == 0 && !h.HasCatchAll {
		r.fail(malformed(start, "catch handler without types or catch-all"))
	}
	return h
}

// translateHandlers replaces each try block's handler byte offset with the
// index of the handler record that starts at that offset. offsets holds the
// start of each record relative to the handler list. Several try blocks may
// share one handler.
func translateHandlers(tries []TryBlock, offsets []uint32) error {
	index := make(map[uint32]int, len(offsets))
	for i, off := range offsets {
		index[off] = i
	}
	for i := range tries {
		h, ok := index[uint32(tries[i].HandlerOff)]
		if !ok {
			return mismatch(int64(tries[i].HandlerOff), "try block handler offset does not start a handler",
				"offset of a handler record", tries[i].HandlerOff)
		}
		tries[i].Handler = h
	}
	return nil
}
