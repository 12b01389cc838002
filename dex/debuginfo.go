package dex

import (
	"fmt"

	"github.com/dhamidi/dexter/leb128"
)

type DebugOpcode uint8

const (
	DbgEndSequence        DebugOpcode = 0x00
	DbgAdvancePC          DebugOpcode = 0x01
	DbgAdvanceLine        DebugOpcode = 0x02
	DbgStartLocal         DebugOpcode = 0x03
	DbgStartLocalExtended DebugOpcode = 0x04
	DbgEndLocal           DebugOpcode = 0x05
	DbgRestartLocal       DebugOpcode = 0x06
	DbgSetPrologueEnd     DebugOpcode = 0x07
	DbgSetEpilogueBegin   DebugOpcode = 0x08
	DbgSetFile            DebugOpcode = 0x09
	DbgFirstSpecial       DebugOpcode = 0x0a
)

const (
	dbgLineBase  = -4
	dbgLineRange = 15
)

var debugOpcodeNames = [...]string{
	"end_sequence", "advance_pc", "advance_line", "start_local", "start_local_extended",
	"end_local", "restart_local", "set_prologue_end", "set_epilogue_begin", "set_file",
}

func (op DebugOpcode) String() string {
	if int(op) < len(debugOpcodeNames) {
		return debugOpcodeNames[op]
	}
	return fmt.Sprintf("special(%#02x)", uint8(op))
}

// DebugInfo is a debug_info_item. Bytecode holds the raw state machine
// program, including the terminating end_sequence opcode; Ops is the same
// program decoded.
type DebugInfo struct {
	LineStart      uint32
	ParameterNames []leb128.Optional
	Bytecode       []byte
	Ops            []DebugOp
}

// DebugOp is one decoded state machine instruction. Only the operands of
// its opcode are set.
type DebugOp struct {
	Opcode    DebugOpcode
	AddrDiff  uint32
	LineDiff  int32
	Register  uint32
	Name      leb128.Optional
	Type      leb128.Optional
	Signature leb128.Optional
}

// PositionEntry maps a code address to a source line.
type PositionEntry struct {
	Addr uint32
	Line uint32
}

// DecodeDebugInfoAt decodes the debug_info_item at a data-section offset.
func (d *Decoder) DecodeDebugInfoAt(off uint32) (*DebugInfo, error) {
	if off == 0 {
		return nil, invalidArgument(0, "debug info at offset 0")
	}
	r := d.data(off)
	di := &DebugInfo{LineStart: r.uleb()}
	params := r.count(uint64(r.uleb()), 1, "debug info parameters")
	di.ParameterNames = make([]leb128.Optional, params)
	for i := range di.ParameterNames {
		di.ParameterNames[i] = r.ulebp1()
	}
	if r.err != nil {
		return nil, r.err
	}

	start := r.off
	for {
		op := DebugOp{Opcode: DebugOpcode(r.readU1())}
		switch op.Opcode {
		case DbgEndSequence, DbgSetPrologueEnd, DbgSetEpilogueBegin:
		case DbgAdvancePC:
			op.AddrDiff = r.uleb()
		case DbgAdvanceLine:
			op.LineDiff = r.sleb()
		case DbgStartLocal:
			op.Register = r.uleb()
			op.Name = r.ulebp1()
			op.Type = r.ulebp1()
		case DbgStartLocalExtended:
			op.Register = r.uleb()
			op.Name = r.ulebp1()
			op.Type = r.ulebp1()
			op.Signature = r.ulebp1()
		case DbgEndLocal, DbgRestartLocal:
			op.Register = r.uleb()
		case DbgSetFile:
			op.Name = r.ulebp1()
		default:
			adjusted := int32(op.Opcode - DbgFirstSpecial)
			op.LineDiff = dbgLineBase + adjusted%dbgLineRange
			op.AddrDiff = uint32(adjusted / dbgLineRange)
		}
		if r.err != nil {
			return nil, r.err
		}
		di.Ops = append(di.Ops, op)
		if op.Opcode == DbgEndSequence {
			break
		}
	}

	raw := newReader(d.src, d.base, start, d.header.ByteOrder)
	di.Bytecode = raw.readBytes(int(r.off - start))
	if raw.err != nil {
		return nil, raw.err
	}
	return di, nil
}

// Positions runs the line number state machine and returns the address to
// line table it describes.
func (di *DebugInfo) Positions() []PositionEntry {
	var out []PositionEntry
	addr := uint32(0)
	line := int64(di.LineStart)
	for _, op := range di.Ops {
		switch {
		case op.Opcode == DbgAdvancePC:
			addr += op.AddrDiff
		case op.Opcode == DbgAdvanceLine:
			line += int64(op.LineDiff)
		case op.Opcode >= DbgFirstSpecial:
			addr += op.AddrDiff
			line += int64(op.LineDiff)
			out = append(out, PositionEntry{Addr: addr, Line: uint32(line)})
		}
	}
	return out
}
