package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/dexter/dex"
)

// TextEncoder prints a readable listing of every class, including code,
// try blocks and line tables.
type TextEncoder struct {
	w    io.Writer
	file *dex.File
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(f *dex.File) error {
	e.file = f
	return write(e.w, e)
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	f := e.file
	if f == nil {
		return nil, nil
	}
	for i := range f.Classes {
		fmt.Fprintf(&sb, "Class #%d\n", i)
		writeClass(&sb, f, &f.Classes[i])
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

// WriteHeader prints the header fields and map list of f.
func WriteHeader(w io.Writer, f *dex.File) error {
	var sb strings.Builder
	h := &f.Header
	field := func(name string, format string, args ...any) {
		fmt.Fprintf(&sb, "%-28s: %s\n", name, fmt.Sprintf(format, args...))
	}
	field("magic", "%q", string(h.Magic[:]))
	field("checksum", "%08x", h.Checksum)
	field("signature", "%x", h.Signature[:])
	field("file_size", "%d", h.FileSize)
	field("header_size", "%d", h.HeaderSize)
	field("byte_order", "%v", h.ByteOrder)
	field("link", "%d @ %#x", h.Link.Size, h.Link.Off)
	field("map_off", "%#x", h.MapOff)
	field("string_ids", "%d @ %#x", h.StringIDs.Size, h.StringIDs.Off)
	field("type_ids", "%d @ %#x", h.TypeIDs.Size, h.TypeIDs.Off)
	field("proto_ids", "%d @ %#x", h.ProtoIDs.Size, h.ProtoIDs.Off)
	field("field_ids", "%d @ %#x", h.FieldIDs.Size, h.FieldIDs.Off)
	field("method_ids", "%d @ %#x", h.MethodIDs.Size, h.MethodIDs.Off)
	field("class_defs", "%d @ %#x", h.ClassDefs.Size, h.ClassDefs.Off)
	field("data", "%d @ %#x", h.Data.Size, h.Data.Off)
	if h.IsCompact() {
		field("feature_flags", "%#x", h.FeatureFlags)
		field("debug_info_offsets_pos", "%#x", h.DebugInfoOffsetsPos)
		field("debug_info_offsets_table", "%#x", h.DebugInfoOffsetsTableOffset)
		field("debug_info_base", "%#x", h.DebugInfoBase)
		field("owned_data", "[%#x, %#x)", h.OwnedDataBegin, h.OwnedDataEnd)
	}
	if len(f.MapList) > 0 {
		sb.WriteString("\nmap list:\n")
		for _, item := range f.MapList {
			fmt.Fprintf(&sb, "  %-28s %6d @ %#x\n", item.Type, item.Size, item.Off)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteMethodCode prints the code item of m: registers, raw instructions,
// try blocks with their handlers, and the line table.
func WriteMethodCode(w io.Writer, f *dex.File, m *dex.EncodedMethod) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", f.MethodSignature(m.Method))
	writeCode(&sb, f, m.Code, "  ")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeClass(sb *strings.Builder, f *dex.File, c *dex.ClassDef) {
	fmt.Fprintf(sb, "  descriptor    : %s\n", f.ClassName(c))
	fmt.Fprintf(sb, "  access        : %#04x (%s)\n", uint32(c.AccessFlags),
		strings.Join(append([]string{c.AccessFlags.Visibility()}, classModifiers(c.AccessFlags)...), " "))
	if c.HasSuperclass() {
		fmt.Fprintf(sb, "  superclass    : %s\n", f.SuperclassName(c))
	}
	for _, name := range f.InterfaceNames(c) {
		fmt.Fprintf(sb, "  interface     : %s\n", name)
	}
	if src := f.SourceFileName(c); src != "" {
		fmt.Fprintf(sb, "  source file   : %s\n", src)
	}
	if c.Annotations != nil {
		for _, item := range c.Annotations.ClassAnnotations {
			fmt.Fprintf(sb, "  annotation    : %s %s\n", item.Visibility, annotationString(f, item.Annotation))
		}
	}
	if c.Data == nil {
		return
	}

	for i, fd := range c.Data.StaticFields {
		fmt.Fprintf(sb, "  static field  : %s = %s%s\n", f.FieldSignature(fd.Field),
			valueString(f, f.StaticValue(c, i)), hiddenAPISuffix(fd.HiddenAPI))
	}
	for _, fd := range c.Data.InstanceFields {
		fmt.Fprintf(sb, "  field         : %s%s\n", f.FieldSignature(fd.Field), hiddenAPISuffix(fd.HiddenAPI))
	}
	for _, group := range []struct {
		name    string
		methods []dex.EncodedMethod
	}{
		{"direct method ", c.Data.DirectMethods},
		{"virtual method", c.Data.VirtualMethods},
	} {
		for _, m := range group.methods {
			fmt.Fprintf(sb, "  %s: %s (%s)%s\n", group.name, f.MethodSignature(m.Method),
				joinOrDash(methodModifiers(m.AccessFlags)), hiddenAPISuffix(m.HiddenAPI))
			if m.Code != nil {
				writeCode(sb, f, m.Code, "    ")
			}
		}
	}
}

func hiddenAPISuffix(flags *dex.HiddenAPIFlags) string {
	if flags == nil {
		return ""
	}
	return " [" + flags.String() + "]"
}

func writeCode(sb *strings.Builder, f *dex.File, code *dex.CodeItem, indent string) {
	if code == nil {
		fmt.Fprintf(sb, "%sno code\n", indent)
		return
	}
	fmt.Fprintf(sb, "%sregisters %d, ins %d, outs %d, %d code units\n",
		indent, code.RegistersSize, code.InsSize, code.OutsSize, len(code.Insns))
	for i := 0; i < len(code.Insns); i += 8 {
		end := i + 8
		if end > len(code.Insns) {
			end = len(code.Insns)
		}
		fmt.Fprintf(sb, "%s%04x:", indent, i)
		for _, u := range code.Insns[i:end] {
			fmt.Fprintf(sb, " %04x", u)
		}
		sb.WriteString("\n")
	}
	for _, t := range code.Tries {
		fmt.Fprintf(sb, "%stry [%04x, %04x)\n", indent, t.StartAddr, t.StartAddr+uint32(t.InsnCount))
		h := code.Handlers[t.Handler]
		for _, p := range h.Pairs {
			fmt.Fprintf(sb, "%s  catch %s -> %04x\n", indent, f.TypeName(p.Type), p.Addr)
		}
		if h.HasCatchAll {
			fmt.Fprintf(sb, "%s  catch all -> %04x\n", indent, h.CatchAll)
		}
	}
	if code.DebugInfo == nil {
		return
	}
	for i, name := range code.DebugInfo.ParameterNames {
		fmt.Fprintf(sb, "%sparameter %d: %s\n", indent, i, orDash(f.OptionalString(name)))
	}
	for _, p := range code.DebugInfo.Positions() {
		fmt.Fprintf(sb, "%sline %d at %04x\n", indent, p.Line, p.Addr)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
