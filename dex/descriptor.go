package dex

import "strings"

// TypeDescriptor is a parsed type descriptor such as "[Ljava/lang/String;".
type TypeDescriptor struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type the way Java source spells it.
func (td *TypeDescriptor) String() string {
	var sb strings.Builder
	if td.BaseType != "" {
		sb.WriteString(td.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(td.ClassName))
	}
	for i := 0; i < td.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

func (td *TypeDescriptor) IsArray() bool     { return td.ArrayDepth > 0 }
func (td *TypeDescriptor) IsPrimitive() bool { return td.BaseType != "" && td.ArrayDepth == 0 }
func (td *TypeDescriptor) IsVoid() bool      { return td.BaseType == "void" }

type MethodDescriptor struct {
	Parameters []TypeDescriptor
	ReturnType TypeDescriptor
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(") ")
	sb.WriteString(md.ReturnType.String())
	return sb.String()
}

// ParseTypeDescriptor returns nil when desc is not exactly one type.
func ParseTypeDescriptor(desc string) *TypeDescriptor {
	td, n := parseType(desc, 0, true)
	if td == nil || n != len(desc) {
		return nil
	}
	return td
}

// ParseMethodDescriptor parses "(params)return" as produced by
// File.ProtoDescriptor.
func ParseMethodDescriptor(desc string) *MethodDescriptor {
	if len(desc) == 0 || desc[0] != '(' {
		return nil
	}
	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		td, n := parseType(desc, i, false)
		if td == nil {
			return nil
		}
		md.Parameters = append(md.Parameters, *td)
		i += n
	}
	if i >= len(desc) {
		return nil
	}
	i++
	ret, n := parseType(desc, i, true)
	if ret == nil || i+n != len(desc) {
		return nil
	}
	md.ReturnType = *ret
	return md
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

func parseType(desc string, start int, allowVoid bool) (*TypeDescriptor, int) {
	td := &TypeDescriptor{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		td.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return nil, 0
	}
	if desc[i] == 'V' {
		if !allowVoid || td.ArrayDepth > 0 {
			return nil, 0
		}
		td.BaseType = "void"
		return td, i - start + 1
	}
	if name, ok := baseTypes[desc[i]]; ok {
		td.BaseType = name
		return td, i - start + 1
	}
	if desc[i] != 'L' {
		return nil, 0
	}
	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon <= 1 {
		return nil, 0
	}
	td.ClassName = desc[i+1 : i+semicolon]
	return td, i - start + semicolon + 1
}

// PrettyDescriptor renders a type descriptor in source form, for example
// "java.lang.Object[]". Strings that do not parse are returned unchanged.
func PrettyDescriptor(desc string) string {
	td := ParseTypeDescriptor(desc)
	if td == nil {
		return desc
	}
	return td.String()
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// SourceToDescriptor turns "java.lang.String" into "Ljava/lang/String;".
// Primitive names map to their one letter descriptor.
func SourceToDescriptor(name string) string {
	depth := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		depth++
	}
	desc := ""
	for c, base := range baseTypes {
		if base == name {
			desc = string(c)
		}
	}
	if name == "void" {
		desc = "V"
	}
	if desc == "" {
		desc = "L" + SourceToInternalName(name) + ";"
	}
	return strings.Repeat("[", depth) + desc
}
