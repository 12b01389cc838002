package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/dexter/dex"
)

// valueString renders v with its indices resolved against f.
func valueString(f *dex.File, v dex.EncodedValue) string {
	switch v := v.(type) {
	case dex.StringValue:
		return strconv.Quote(f.String(uint32(v)))
	case dex.TypeValue:
		return f.TypeName(uint32(v)) + ".class"
	case dex.FieldValue:
		return f.FieldSignature(uint32(v))
	case dex.EnumValue:
		return f.FieldSignature(uint32(v))
	case dex.MethodValue:
		return f.MethodSignature(uint32(v))
	case dex.MethodTypeValue:
		return f.ProtoDescriptor(uint32(v))
	case dex.MethodHandleValue:
		return methodHandleString(f, uint32(v))
	case dex.ArrayValue:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = valueString(f, e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case dex.AnnotationValue:
		return annotationString(f, dex.EncodedAnnotation(v))
	case nil:
		return "null"
	default:
		return v.String()
	}
}

func annotationString(f *dex.File, a dex.EncodedAnnotation) string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = f.String(e.Name) + "=" + valueString(f, e.Value)
	}
	return fmt.Sprintf("@%s(%s)", f.TypeName(a.TypeIdx), strings.Join(parts, ", "))
}

func methodHandleString(f *dex.File, i uint32) string {
	if int64(i) >= int64(len(f.MethodHandles)) {
		return fmt.Sprintf("method_handle@%d", i)
	}
	h := f.MethodHandles[i]
	if h.Type.IsFieldAccessor() {
		return f.FieldSignature(uint32(h.FieldOrMethod))
	}
	return f.MethodSignature(uint32(h.FieldOrMethod))
}

// methodProto splits the prototype of method i into source-form return and
// parameter type names.
func methodProto(f *dex.File, i uint32) (string, []string) {
	if int64(i) >= int64(len(f.Methods)) {
		return "", nil
	}
	md := dex.ParseMethodDescriptor(f.ProtoDescriptor(uint32(f.Methods[i].Proto)))
	if md == nil {
		return "", nil
	}
	params := make([]string, len(md.Parameters))
	for j := range md.Parameters {
		params[j] = md.Parameters[j].String()
	}
	return md.ReturnType.String(), params
}

func fieldType(f *dex.File, i uint32) string {
	if int64(i) >= int64(len(f.Fields)) {
		return ""
	}
	return f.TypeName(uint32(f.Fields[i].Type))
}
