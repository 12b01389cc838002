package dex

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// AnnotationsDirectory holds the annotations of a class and its members.
type AnnotationsDirectory struct {
	ClassAnnotations AnnotationSet
	Fields           []FieldAnnotations
	Methods          []MethodAnnotations
	Parameters       []ParameterAnnotations
}

type FieldAnnotations struct {
	Field       uint32
	Annotations AnnotationSet
}

type MethodAnnotations struct {
	Method      uint32
	Annotations AnnotationSet
}

// ParameterAnnotations holds one set per parameter; a nil set means the
// parameter has none.
type ParameterAnnotations struct {
	Method     uint32
	Parameters []AnnotationSet
}

type AnnotationSet []AnnotationItem

type AnnotationItem struct {
	Visibility AnnotationVisibility
	Annotation EncodedAnnotation
}

type EncodedAnnotation struct {
	TypeIdx  uint32
	Elements []AnnotationElement
}

type AnnotationElement struct {
	Name  uint32
	Value EncodedValue
}

func (a EncodedAnnotation) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = fmt.Sprintf("string@%d=%s", e.Name, e.Value)
	}
	return fmt.Sprintf("@type@%d(%s)", a.TypeIdx, strings.Join(parts, ", "))
}

// DecodeAnnotationsDirectoryAt decodes the annotations_directory_item at a
// data-section offset.
func (d *Decoder) DecodeAnnotationsDirectoryAt(off uint32) (*AnnotationsDirectory, error) {
	if off == 0 {
		return nil, invalidArgument(0, "annotations directory at offset 0")
	}
	r := d.data(off)
	classOff := r.readU4()
	fields := r.count(uint64(r.readU4()), 8, "field annotations")
	methods := r.count(uint64(r.readU4()), 8, "method annotations")
	params := r.count(uint64(r.readU4()), 8, "parameter annotations")
	if r.err != nil {
		return nil, r.err
	}

	type entry struct{ idx, off uint32 }
	readEntries := func(n int) []entry {
		out := make([]entry, n)
		for i := range out {
			out[i] = entry{r.readU4(), r.readU4()}
		}
		return out
	}
	fieldEntries := readEntries(fields)
	methodEntries := readEntries(methods)
	paramEntries := readEntries(params)
	if r.err != nil {
		return nil, r.err
	}

	dir := &AnnotationsDirectory{
		Fields:     make([]FieldAnnotations, fields),
		Methods:    make([]MethodAnnotations, methods),
		Parameters: make([]ParameterAnnotations, params),
	}
	var err error
	if classOff != 0 {
		if dir.ClassAnnotations, err = d.DecodeAnnotationSetAt(classOff); err != nil {
			return nil, errors.Wrap(err, "class annotations")
		}
	}
	for i, e := range fieldEntries {
		dir.Fields[i].Field = e.idx
		if dir.Fields[i].Annotations, err = d.DecodeAnnotationSetAt(e.off); err != nil {
			return nil, errors.Wrapf(err, "field %d annotations", e.idx)
		}
	}
	for i, e := range methodEntries {
		dir.Methods[i].Method = e.idx
		if dir.Methods[i].Annotations, err = d.DecodeAnnotationSetAt(e.off); err != nil {
			return nil, errors.Wrapf(err, "method %d annotations", e.idx)
		}
	}
	for i, e := range paramEntries {
		dir.Parameters[i].Method = e.idx
		if dir.Parameters[i].Parameters, err = d.DecodeAnnotationSetRefListAt(e.off); err != nil {
			return nil, errors.Wrapf(err, "method %d parameter annotations", e.idx)
		}
	}
	return dir, nil
}

// DecodeAnnotationSetRefListAt decodes an annotation_set_ref_list. Entries
// with offset 0 stay nil.
func (d *Decoder) DecodeAnnotationSetRefListAt(off uint32) ([]AnnotationSet, error) {
	if off == 0 {
		return nil, invalidArgument(0, "annotation set ref list at offset 0")
	}
	r := d.data(off)
	n := r.count(uint64(r.readU4()), 4, "annotation set ref list")
	offsets := make([]uint32, n)
	for i := range offsets {
		offsets[i] = r.readU4()
	}
	if r.err != nil {
		return nil, r.err
	}
	out := make([]AnnotationSet, n)
	for i, setOff := range offsets {
		if setOff == 0 {
			continue
		}
		set, err := d.DecodeAnnotationSetAt(setOff)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", i)
		}
		out[i] = set
	}
	return out, nil
}

// DecodeAnnotationSetAt decodes an annotation_set_item. Sets are shared
// between members, so each one is decoded once.
func (d *Decoder) DecodeAnnotationSetAt(off uint32) (AnnotationSet, error) {
	if off == 0 {
		return nil, invalidArgument(0, "annotation set at offset 0")
	}
	if set, ok := d.annotationSets[off]; ok {
		return set, nil
	}
	r := d.data(off)
	n := r.count(uint64(r.readU4()), 4, "annotation set")
	offsets := make([]uint32, n)
	for i := range offsets {
		offsets[i] = r.readU4()
	}
	if r.err != nil {
		return nil, r.err
	}
	set := make(AnnotationSet, n)
	for i, itemOff := range offsets {
		item, err := d.DecodeAnnotationAt(itemOff)
		if err != nil {
			return nil, errors.Wrapf(err, "annotation %d", i)
		}
		set[i] = *item
	}
	d.annotationSets[off] = set
	return set, nil
}

// DecodeAnnotationAt decodes an annotation_item at a data-section offset.
func (d *Decoder) DecodeAnnotationAt(off uint32) (*AnnotationItem, error) {
	if off == 0 {
		return nil, invalidArgument(0, "annotation at offset 0")
	}
	r := d.data(off)
	item := &AnnotationItem{Visibility: AnnotationVisibility(r.readU1())}
	item.Annotation = readEncodedAnnotation(r)
	if r.err != nil {
		return nil, r.err
	}
	return item, nil
}

func readEncodedAnnotation(r *reader) EncodedAnnotation {
	a := EncodedAnnotation{TypeIdx: r.uleb()}
	n := r.count(uint64(r.uleb()), 2, "annotation elements")
	a.Elements = make([]AnnotationElement, n)
	for i := range a.Elements {
		a.Elements[i].Name = r.uleb()
		a.Elements[i].Value = readEncodedValue(r)
		if r.err != nil {
			return EncodedAnnotation{}
		}
	}
	return a
}
