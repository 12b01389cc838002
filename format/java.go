package format

import (
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/dexter/dex"
)

// JavaEncoder prints each class as a Java source skeleton: declarations,
// constant initializers and annotations, with empty method bodies.
type JavaEncoder struct {
	w    io.Writer
	file *dex.File
}

func NewJavaEncoder(w io.Writer) *JavaEncoder {
	return &JavaEncoder{w: w}
}

func (e *JavaEncoder) Encode(f *dex.File) error {
	e.file = f
	return write(e.w, e)
}

func (e *JavaEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	f := e.file
	if f == nil {
		return nil, nil
	}
	for i := range f.Classes {
		if i > 0 {
			sb.WriteString("\n")
		}
		e.writeClass(&sb, &f.Classes[i])
	}
	return []byte(sb.String()), nil
}

func (e *JavaEncoder) writeClass(sb *strings.Builder, c *dex.ClassDef) {
	f := e.file
	name := dex.PrettyDescriptor(f.ClassName(c))
	pkg, simple := splitClassName(name)
	if pkg != "" {
		sb.WriteString("package ")
		sb.WriteString(pkg)
		sb.WriteString(";\n\n")
	}

	annotations := annotationIndex{}
	if c.Annotations != nil {
		e.writeAnnotations(sb, c.Annotations.ClassAnnotations, "")
		annotations = indexAnnotations(c.Annotations)
	}

	flags := c.AccessFlags
	if flags.IsPublic() {
		sb.WriteString("public ")
	}
	if flags.IsAbstract() && !flags.IsInterface() {
		sb.WriteString("abstract ")
	}
	if flags.IsFinal() {
		sb.WriteString("final ")
	}
	switch {
	case flags.IsAnnotation():
		sb.WriteString("@interface ")
	case flags.IsEnum():
		sb.WriteString("enum ")
	case flags.IsInterface():
		sb.WriteString("interface ")
	default:
		sb.WriteString("class ")
	}
	sb.WriteString(simple)

	if super := dex.PrettyDescriptor(f.SuperclassName(c)); super != "" && super != "java.lang.Object" && !flags.IsEnum() {
		sb.WriteString(" extends ")
		sb.WriteString(super)
	}
	if ifaces := f.InterfaceNames(c); len(ifaces) > 0 {
		if flags.IsInterface() {
			sb.WriteString(" extends ")
		} else {
			sb.WriteString(" implements ")
		}
		for i, iface := range ifaces {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(dex.PrettyDescriptor(iface))
		}
	}
	sb.WriteString(" {\n")

	if c.Data != nil {
		e.writeFields(sb, c, annotations)
		e.writeMethods(sb, c, simple, annotations)
	}
	sb.WriteString("}\n")
}

func (e *JavaEncoder) writeFields(sb *strings.Builder, c *dex.ClassDef, annotations annotationIndex) {
	f := e.file
	written := 0
	field := func(fd dex.EncodedField, value dex.EncodedValue) {
		if fd.AccessFlags.IsSynthetic() {
			return
		}
		sb.WriteString("    ")
		e.writeAnnotations(sb, annotations.fields[fd.Field], "    ")
		writeMemberModifiers(sb, fd.AccessFlags)
		if fd.AccessFlags.IsVolatile() {
			sb.WriteString("volatile ")
		}
		if fd.AccessFlags.IsTransient() {
			sb.WriteString("transient ")
		}
		sb.WriteString(fieldType(f, fd.Field))
		sb.WriteString(" ")
		sb.WriteString(f.FieldName(fd.Field))
		if value != nil {
			sb.WriteString(" = ")
			sb.WriteString(javaLiteral(f, value))
		}
		sb.WriteString(";\n")
		written++
	}
	for i, fd := range c.Data.StaticFields {
		var value dex.EncodedValue
		if fd.AccessFlags.IsFinal() {
			value = f.StaticValue(c, i)
		}
		field(fd, value)
	}
	for _, fd := range c.Data.InstanceFields {
		field(fd, nil)
	}
	if written > 0 {
		sb.WriteString("\n")
	}
}

func (e *JavaEncoder) writeMethods(sb *strings.Builder, c *dex.ClassDef, simple string, annotations annotationIndex) {
	f := e.file
	first := true
	for _, group := range [][]dex.EncodedMethod{c.Data.DirectMethods, c.Data.VirtualMethods} {
		for _, m := range group {
			name := f.MethodName(m.Method)
			if m.AccessFlags.IsSynthetic() || m.AccessFlags.IsBridge() || name == "<clinit>" {
				continue
			}
			if !first {
				sb.WriteString("\n")
			}
			first = false
			sb.WriteString("    ")
			e.writeAnnotations(sb, annotations.methods[m.Method], "    ")
			writeMemberModifiers(sb, m.AccessFlags)
			if m.AccessFlags.IsAbstract() && !c.AccessFlags.IsInterface() {
				sb.WriteString("abstract ")
			}
			if m.AccessFlags.IsSynchronized() || m.AccessFlags&dex.AccDeclaredSynchronized != 0 {
				sb.WriteString("synchronized ")
			}
			if m.AccessFlags.IsNative() {
				sb.WriteString("native ")
			}

			ret, params := methodProto(f, m.Method)
			if name == "<init>" {
				sb.WriteString(simple)
			} else {
				sb.WriteString(ret)
				sb.WriteString(" ")
				sb.WriteString(name)
			}
			sb.WriteString("(")
			names := parameterNames(f, m.Code)
			for i, p := range params {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(p)
				sb.WriteString(" ")
				if i < len(names) && names[i] != "" {
					sb.WriteString(names[i])
				} else {
					sb.WriteString("p" + strconv.Itoa(i))
				}
			}
			sb.WriteString(")")
			if m.Code == nil {
				sb.WriteString(";\n")
			} else {
				sb.WriteString(" { }\n")
			}
		}
	}
}

func writeMemberModifiers(sb *strings.Builder, flags dex.AccessFlags) {
	switch {
	case flags.IsPublic():
		sb.WriteString("public ")
	case flags.IsPrivate():
		sb.WriteString("private ")
	case flags.IsProtected():
		sb.WriteString("protected ")
	}
	if flags.IsStatic() {
		sb.WriteString("static ")
	}
	if flags.IsFinal() {
		sb.WriteString("final ")
	}
}

func (e *JavaEncoder) writeAnnotations(sb *strings.Builder, set dex.AnnotationSet, indent string) {
	for _, item := range set {
		// system annotations carry compiler metadata, not source annotations
		if item.Visibility == dex.VisibilitySystem {
			continue
		}
		a := item.Annotation
		sb.WriteString("@")
		sb.WriteString(e.file.TypeName(a.TypeIdx))
		if len(a.Elements) > 0 {
			sb.WriteString("(")
			for i, el := range a.Elements {
				if i > 0 {
					sb.WriteString(", ")
				}
				name := e.file.String(el.Name)
				if len(a.Elements) > 1 || name != "value" {
					sb.WriteString(name)
					sb.WriteString(" = ")
				}
				sb.WriteString(javaLiteral(e.file, el.Value))
			}
			sb.WriteString(")")
		}
		sb.WriteString("\n")
		sb.WriteString(indent)
	}
}

// javaLiteral renders v as a Java source expression.
func javaLiteral(f *dex.File, v dex.EncodedValue) string {
	switch v := v.(type) {
	case dex.ByteValue:
		return "(byte) " + strconv.Itoa(int(v))
	case dex.ShortValue:
		return "(short) " + strconv.Itoa(int(v))
	case dex.CharValue:
		return strconv.QuoteRuneToASCII(rune(v))
	case dex.IntValue:
		return strconv.FormatInt(int64(v), 10)
	case dex.LongValue:
		return strconv.FormatInt(int64(v), 10) + "L"
	case dex.FloatValue:
		return strconv.FormatFloat(float64(v), 'g', -1, 32) + "f"
	case dex.DoubleValue:
		s := strconv.FormatFloat(float64(v), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case dex.EnumValue:
		fd := uint32(v)
		if int64(fd) < int64(len(f.Fields)) {
			return f.TypeName(uint32(f.Fields[fd].Class)) + "." + f.FieldName(fd)
		}
	case dex.ArrayValue:
		parts := make([]string, len(v))
		for i, el := range v {
			parts[i] = javaLiteral(f, el)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return valueString(f, v)
}

// parameterNames returns the debug info parameter names of code, if any.
func parameterNames(f *dex.File, code *dex.CodeItem) []string {
	if code == nil || code.DebugInfo == nil {
		return nil
	}
	names := make([]string, len(code.DebugInfo.ParameterNames))
	for i, n := range code.DebugInfo.ParameterNames {
		names[i] = f.OptionalString(n)
	}
	return names
}

func splitClassName(name string) (string, string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
