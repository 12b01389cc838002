package dex

import (
	"fmt"
	"strings"

	"github.com/dhamidi/dexter/leb128"
)

// File is a fully decoded container. Identifier tables are indexed by their
// position; an index is the canonical id of an entry.
type File struct {
	Header        Header
	Strings       []string
	Types         []TypeID
	Protos        []ProtoID
	Fields        []FieldID
	Methods       []MethodID
	Classes       []ClassDef
	CallSites     []CallSite
	MethodHandles []MethodHandle
	MapList       []MapItem
	Link          []byte

	// DebugInfoOffsets locates per-method debug info in compact containers.
	DebugInfoOffsets *CompactOffsetTable

	// HiddenAPI reports whether hidden api flags were merged onto the class
	// data.
	HiddenAPI bool
}

type TypeID struct {
	Descriptor uint32
}

type ProtoID struct {
	Shorty     uint32
	ReturnType uint32
	Parameters []uint16
}

type FieldID struct {
	Class uint16
	Type  uint16
	Name  uint32
}

type MethodID struct {
	Class uint16
	Proto uint16
	Name  uint32
}

type MapItem struct {
	Type MapItemType
	Size uint32
	Off  uint32
}

type CallSite struct {
	Off    uint32
	Values []EncodedValue
}

type MethodHandle struct {
	Type          MethodHandleType
	FieldOrMethod uint16
}

func (f *File) IsCompact() bool { return f.Header.IsCompact() }

// String returns the string at index i, or "" if i is out of range.
func (f *File) String(i uint32) string {
	if int64(i) >= int64(len(f.Strings)) {
		return ""
	}
	return f.Strings[i]
}

// Type returns the descriptor of type i.
func (f *File) Type(i uint32) string {
	if int64(i) >= int64(len(f.Types)) {
		return ""
	}
	return f.String(f.Types[i].Descriptor)
}

// TypeName returns the source form of type i, e.g. "java.lang.String[]".
func (f *File) TypeName(i uint32) string {
	return PrettyDescriptor(f.Type(i))
}

func (f *File) OptionalString(o leb128.Optional) string {
	if i, ok := o.Get(); ok {
		return f.String(i)
	}
	return ""
}

func (f *File) FieldName(i uint32) string {
	if int64(i) >= int64(len(f.Fields)) {
		return ""
	}
	return f.String(f.Fields[i].Name)
}

func (f *File) MethodName(i uint32) string {
	if int64(i) >= int64(len(f.Methods)) {
		return ""
	}
	return f.String(f.Methods[i].Name)
}

// ProtoDescriptor renders prototype i in method descriptor form, e.g.
// "(ILjava/lang/String;)V".
func (f *File) ProtoDescriptor(i uint32) string {
	if int64(i) >= int64(len(f.Protos)) {
		return ""
	}
	p := f.Protos[i]
	var sb strings.Builder
	sb.WriteByte('(')
	for _, t := range p.Parameters {
		sb.WriteString(f.Type(uint32(t)))
	}
	sb.WriteByte(')')
	sb.WriteString(f.Type(p.ReturnType))
	return sb.String()
}

// MethodSignature renders method i as "Lcom/Foo;.bar:(I)V".
func (f *File) MethodSignature(i uint32) string {
	if int64(i) >= int64(len(f.Methods)) {
		return ""
	}
	m := f.Methods[i]
	return fmt.Sprintf("%s.%s:%s", f.Type(uint32(m.Class)), f.String(m.Name), f.ProtoDescriptor(uint32(m.Proto)))
}

// FieldSignature renders field i as "Lcom/Foo;.bar:I".
func (f *File) FieldSignature(i uint32) string {
	if int64(i) >= int64(len(f.Fields)) {
		return ""
	}
	fd := f.Fields[i]
	return fmt.Sprintf("%s.%s:%s", f.Type(uint32(fd.Class)), f.String(fd.Name), f.Type(uint32(fd.Type)))
}

func (f *File) ClassName(c *ClassDef) string {
	return f.Type(c.Class)
}

func (f *File) SuperclassName(c *ClassDef) string {
	if !c.HasSuperclass() {
		return ""
	}
	return f.Type(c.Superclass)
}

func (f *File) InterfaceNames(c *ClassDef) []string {
	names := make([]string, len(c.Interfaces))
	for i, idx := range c.Interfaces {
		names[i] = f.Type(uint32(idx))
	}
	return names
}

func (f *File) SourceFileName(c *ClassDef) string {
	if c.SourceFile == NoIndex {
		return ""
	}
	return f.String(c.SourceFile)
}

// ClassByDescriptor finds the class definition whose type descriptor is
// desc, e.g. "Ljava/lang/Object;".
func (f *File) ClassByDescriptor(desc string) *ClassDef {
	for i := range f.Classes {
		if f.Type(f.Classes[i].Class) == desc {
			return &f.Classes[i]
		}
	}
	return nil
}

// StaticValue returns the initial value of the i-th static field of c. Values
// missing from the end of the class's static values array default to the
// zero value of the field's type.
func (f *File) StaticValue(c *ClassDef, i int) EncodedValue {
	if i < len(c.StaticValues) {
		return c.StaticValues[i]
	}
	desc := ""
	if c.Data != nil && i < len(c.Data.StaticFields) {
		field := c.Data.StaticFields[i].Field
		if int64(field) < int64(len(f.Fields)) {
			desc = f.Type(uint32(f.Fields[field].Type))
		}
	}
	return ZeroValue(desc)
}
