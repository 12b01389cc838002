package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/dexter/dex"
)

type JSONEncoder struct {
	w    io.Writer
	file *dex.File
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(f *dex.File) error {
	e.file = f
	if err := write(e.w, e); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(e.buildFile(), "", "  ")
}

type jsonFile struct {
	Version   string      `json:"version"`
	Compact   bool        `json:"compact"`
	FileSize  uint32      `json:"fileSize"`
	HiddenAPI bool        `json:"hiddenApi,omitempty"`
	Classes   []jsonClass `json:"classes"`
}

type jsonClass struct {
	Name        string       `json:"name"`
	SuperClass  string       `json:"superClass,omitempty"`
	Interfaces  []string     `json:"interfaces,omitempty"`
	SourceFile  string       `json:"sourceFile,omitempty"`
	Visibility  string       `json:"visibility"`
	Kind        string       `json:"kind"`
	Modifiers   []string     `json:"modifiers,omitempty"`
	Annotations []string     `json:"annotations,omitempty"`
	Fields      []jsonField  `json:"fields,omitempty"`
	Methods     []jsonMethod `json:"methods,omitempty"`
}

type jsonField struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Visibility  string   `json:"visibility"`
	Modifiers   []string `json:"modifiers,omitempty"`
	Value       string   `json:"value,omitempty"`
	Annotations []string `json:"annotations,omitempty"`
	HiddenAPI   string   `json:"hiddenApi,omitempty"`
}

type jsonMethod struct {
	Name        string    `json:"name"`
	ReturnType  string    `json:"returnType"`
	Parameters  []string  `json:"parameters,omitempty"`
	Visibility  string    `json:"visibility"`
	Modifiers   []string  `json:"modifiers,omitempty"`
	Annotations []string  `json:"annotations,omitempty"`
	HiddenAPI   string    `json:"hiddenApi,omitempty"`
	Code        *jsonCode `json:"code,omitempty"`
}

type jsonCode struct {
	Registers uint16         `json:"registers"`
	Ins       uint16         `json:"ins"`
	Outs      uint16         `json:"outs"`
	Insns     int            `json:"insns"`
	Tries     []jsonTry      `json:"tries,omitempty"`
	Positions []jsonPosition `json:"positions,omitempty"`
}

type jsonTry struct {
	Start    uint32      `json:"start"`
	End      uint32      `json:"end"`
	Catches  []jsonCatch `json:"catches,omitempty"`
	CatchAll *uint32     `json:"catchAll,omitempty"`
}

type jsonCatch struct {
	Type    string `json:"type"`
	Handler uint32 `json:"handler"`
}

type jsonPosition struct {
	Addr uint32 `json:"addr"`
	Line uint32 `json:"line"`
}

func (e *JSONEncoder) buildFile() jsonFile {
	f := e.file
	out := jsonFile{Classes: []jsonClass{}}
	if f == nil {
		return out
	}
	out.Version = f.Header.Version()
	out.Compact = f.IsCompact()
	out.FileSize = f.Header.FileSize
	out.HiddenAPI = f.HiddenAPI
	for i := range f.Classes {
		out.Classes = append(out.Classes, e.buildClass(&f.Classes[i]))
	}
	return out
}

func (e *JSONEncoder) buildClass(c *dex.ClassDef) jsonClass {
	f := e.file
	out := jsonClass{
		Name:       dex.PrettyDescriptor(f.ClassName(c)),
		SuperClass: dex.PrettyDescriptor(f.SuperclassName(c)),
		SourceFile: f.SourceFileName(c),
		Visibility: c.AccessFlags.Visibility(),
		Kind:       classKind(c.AccessFlags),
		Modifiers:  classModifiers(c.AccessFlags),
	}
	for _, name := range f.InterfaceNames(c) {
		out.Interfaces = append(out.Interfaces, dex.PrettyDescriptor(name))
	}
	annotations := annotationIndex{}
	if c.Annotations != nil {
		out.Annotations = e.annotationStrings(c.Annotations.ClassAnnotations)
		annotations = indexAnnotations(c.Annotations)
	}
	if c.Data == nil {
		return out
	}

	for i, fd := range c.Data.StaticFields {
		jf := e.buildField(fd, annotations)
		jf.Value = valueString(f, f.StaticValue(c, i))
		out.Fields = append(out.Fields, jf)
	}
	for _, fd := range c.Data.InstanceFields {
		out.Fields = append(out.Fields, e.buildField(fd, annotations))
	}
	for _, group := range [][]dex.EncodedMethod{c.Data.DirectMethods, c.Data.VirtualMethods} {
		for _, m := range group {
			out.Methods = append(out.Methods, e.buildMethod(m, annotations))
		}
	}
	return out
}

func (e *JSONEncoder) buildField(fd dex.EncodedField, annotations annotationIndex) jsonField {
	f := e.file
	out := jsonField{
		Name:        f.FieldName(fd.Field),
		Type:        fieldType(f, fd.Field),
		Visibility:  fd.AccessFlags.Visibility(),
		Modifiers:   fieldModifiers(fd.AccessFlags),
		Annotations: e.annotationStrings(annotations.fields[fd.Field]),
	}
	if fd.HiddenAPI != nil {
		out.HiddenAPI = fd.HiddenAPI.String()
	}
	return out
}

func (e *JSONEncoder) buildMethod(m dex.EncodedMethod, annotations annotationIndex) jsonMethod {
	f := e.file
	ret, params := methodProto(f, m.Method)
	out := jsonMethod{
		Name:        f.MethodName(m.Method),
		ReturnType:  ret,
		Parameters:  params,
		Visibility:  m.AccessFlags.Visibility(),
		Modifiers:   methodModifiers(m.AccessFlags),
		Annotations: e.annotationStrings(annotations.methods[m.Method]),
	}
	if m.HiddenAPI != nil {
		out.HiddenAPI = m.HiddenAPI.String()
	}
	if m.Code != nil {
		out.Code = e.buildCode(m.Code)
	}
	return out
}

func (e *JSONEncoder) buildCode(code *dex.CodeItem) *jsonCode {
	out := &jsonCode{
		Registers: code.RegistersSize,
		Ins:       code.InsSize,
		Outs:      code.OutsSize,
		Insns:     len(code.Insns),
	}
	for _, t := range code.Tries {
		jt := jsonTry{Start: t.StartAddr, End: t.StartAddr + uint32(t.InsnCount)}
		h := code.Handlers[t.Handler]
		for _, p := range h.Pairs {
			jt.Catches = append(jt.Catches, jsonCatch{Type: e.file.TypeName(p.Type), Handler: p.Addr})
		}
		if h.HasCatchAll {
			addr := h.CatchAll
			jt.CatchAll = &addr
		}
		out.Tries = append(out.Tries, jt)
	}
	if code.DebugInfo != nil {
		for _, p := range code.DebugInfo.Positions() {
			out.Positions = append(out.Positions, jsonPosition{Addr: p.Addr, Line: p.Line})
		}
	}
	return out
}

func (e *JSONEncoder) annotationStrings(set dex.AnnotationSet) []string {
	var out []string
	for _, item := range set {
		out = append(out, annotationString(e.file, item.Annotation))
	}
	return out
}

// annotationIndex looks up member annotation sets by member id.
type annotationIndex struct {
	fields  map[uint32]dex.AnnotationSet
	methods map[uint32]dex.AnnotationSet
}

func indexAnnotations(dir *dex.AnnotationsDirectory) annotationIndex {
	idx := annotationIndex{
		fields:  map[uint32]dex.AnnotationSet{},
		methods: map[uint32]dex.AnnotationSet{},
	}
	for _, fa := range dir.Fields {
		idx.fields[fa.Field] = fa.Annotations
	}
	for _, ma := range dir.Methods {
		idx.methods[ma.Method] = ma.Annotations
	}
	return idx
}
