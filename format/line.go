package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/dexter/dex"
)

// LineEncoder prints one tab separated record per class and member, for
// use with grep and cut.
type LineEncoder struct {
	w    io.Writer
	file *dex.File
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(f *dex.File) error {
	e.file = f
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	f := e.file
	if f == nil {
		return nil, nil
	}

	for i := range f.Classes {
		c := &f.Classes[i]
		super := f.SuperclassName(c)
		if super == "" {
			super = "-"
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n",
			classKind(c.AccessFlags),
			dex.PrettyDescriptor(f.ClassName(c)),
			strings.Join(append([]string{c.AccessFlags.Visibility()}, classModifiers(c.AccessFlags)...), ","),
			dex.PrettyDescriptor(super),
		)
		if c.Data == nil {
			continue
		}

		for _, group := range [][]dex.EncodedField{c.Data.StaticFields, c.Data.InstanceFields} {
			for _, fd := range group {
				fmt.Fprintf(&sb, "field\t%s\t%s\t%s\t%s\n",
					f.FieldName(fd.Field),
					fieldType(f, fd.Field),
					fd.AccessFlags.Visibility(),
					joinOrDash(fieldModifiers(fd.AccessFlags)),
				)
			}
		}

		for _, group := range [][]dex.EncodedMethod{c.Data.DirectMethods, c.Data.VirtualMethods} {
			for _, m := range group {
				ret, params := methodProto(f, m.Method)
				fmt.Fprintf(&sb, "method\t%s\t%s\t%s\t%s\t%s\n",
					f.MethodName(m.Method),
					ret,
					joinOrDash(params),
					m.AccessFlags.Visibility(),
					joinOrDash(methodModifiers(m.AccessFlags)),
				)
			}
		}
	}

	return []byte(sb.String()), nil
}
