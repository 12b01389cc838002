package dex

import (
	"github.com/pkg/errors"
)

type ClassDef struct {
	Class       uint32
	AccessFlags AccessFlags
	Superclass  uint32
	Interfaces  []uint16
	SourceFile  uint32

	Annotations  *AnnotationsDirectory
	Data         *ClassData
	StaticValues []EncodedValue

	InterfacesOff   uint32
	AnnotationsOff  uint32
	ClassDataOff    uint32
	StaticValuesOff uint32
}

func (c *ClassDef) HasSuperclass() bool { return c.Superclass != NoIndex }

// ClassData holds the members of a class in four groups. Member ids are
// stored as deltas on the wire; here they are already summed.
type ClassData struct {
	StaticFields   []EncodedField
	InstanceFields []EncodedField
	DirectMethods  []EncodedMethod
	VirtualMethods []EncodedMethod
}

// MemberCount is the number of hidden api flags a class consumes.
func (cd *ClassData) MemberCount() int {
	return len(cd.StaticFields) + len(cd.InstanceFields) + len(cd.DirectMethods) + len(cd.VirtualMethods)
}

type EncodedField struct {
	Field       uint32
	AccessFlags AccessFlags
	HiddenAPI   *HiddenAPIFlags
}

type EncodedMethod struct {
	Method      uint32
	AccessFlags AccessFlags
	CodeOff     uint32
	Code        *CodeItem
	HiddenAPI   *HiddenAPIFlags
}

func (d *Decoder) decodeClassDefs() ([]ClassDef, error) {
	sec := d.header.ClassDefs
	if sec.Empty() {
		return []ClassDef{}, nil
	}
	r := d.at(sec.Off)
	out := make([]ClassDef, r.count(uint64(sec.Size), classDefSize, "class_defs"))
	for i := range out {
		if err := d.decodeClassDef(r, &out[i]); err != nil {
			return nil, errors.Wrapf(err, "class %d", i)
		}
	}
	d.log.Debugf("resolved %d class definitions", len(out))
	return out, nil
}

func (d *Decoder) decodeClassDef(r *reader, c *ClassDef) error {
	c.Class = r.readU4()
	c.AccessFlags = AccessFlags(r.readU4())
	c.Superclass = r.readU4()
	c.InterfacesOff = r.readU4()
	c.SourceFile = r.readU4()
	c.AnnotationsOff = r.readU4()
	c.ClassDataOff = r.readU4()
	c.StaticValuesOff = r.readU4()
	if r.err != nil {
		return r.err
	}

	var err error
	if c.Interfaces, err = d.typeList(c.InterfacesOff); err != nil {
		return errors.Wrap(err, "interfaces")
	}
	if c.AnnotationsOff != 0 {
		if c.Annotations, err = d.DecodeAnnotationsDirectoryAt(c.AnnotationsOff); err != nil {
			return errors.Wrap(err, "annotations")
		}
	}
	if c.ClassDataOff != 0 {
		if c.Data, err = d.DecodeClassDataAt(c.ClassDataOff); err != nil {
			return errors.Wrap(err, "class data")
		}
	}
	if c.StaticValuesOff != 0 {
		if c.StaticValues, err = d.DecodeEncodedArrayAt(c.StaticValuesOff); err != nil {
			return errors.Wrap(err, "static values")
		}
		declared := 0
		if c.Data != nil {
			declared = len(c.Data.StaticFields)
		}
		if len(c.StaticValues) > declared {
			return mismatch(int64(c.StaticValuesOff), "static values exceed static fields",
				declared, len(c.StaticValues))
		}
	}
	return nil
}

// DecodeClassDataAt decodes the class_data_item at a data-section offset,
// including the code items of its methods.
func (d *Decoder) DecodeClassDataAt(off uint32) (*ClassData, error) {
	if off == 0 {
		return nil, invalidArgument(0, "class data at offset 0")
	}
	r := d.data(off)
	staticFields := r.count(uint64(r.uleb()), 2, "static fields")
	instanceFields := r.count(uint64(r.uleb()), 2, "instance fields")
	directMethods := r.count(uint64(r.uleb()), 3, "direct methods")
	virtualMethods := r.count(uint64(r.uleb()), 3, "virtual methods")
	if r.err != nil {
		return nil, r.err
	}

	cd := &ClassData{
		StaticFields:   readEncodedFields(r, staticFields),
		InstanceFields: readEncodedFields(r, instanceFields),
		DirectMethods:  readEncodedMethods(r, directMethods),
		VirtualMethods: readEncodedMethods(r, virtualMethods),
	}
	if r.err != nil {
		return nil, r.err
	}

	for _, group := range [][]EncodedMethod{cd.DirectMethods, cd.VirtualMethods} {
		for i := range group {
			m := &group[i]
			if m.CodeOff == 0 {
				continue
			}
			code, err := d.decodeCodeItem(m.CodeOff, m.Method)
			if err != nil {
				return nil, errors.Wrapf(err, "method %d code", m.Method)
			}
			m.Code = code
		}
	}
	return cd, nil
}

// Each group restarts its running index at zero; every entry adds its delta
// to the previous entry's id.
func readEncodedFields(r *reader, n int) []EncodedField {
	out := make([]EncodedField, n)
	var idx uint32
	for i := range out {
		idx = nextMember(r, idx)
		out[i].Field = idx
		out[i].AccessFlags = AccessFlags(r.uleb())
	}
	return out
}

func readEncodedMethods(r *reader, n int) []EncodedMethod {
	out := make([]EncodedMethod, n)
	var idx uint32
	for i := range out {
		idx = nextMember(r, idx)
		out[i].Method = idx
		out[i].AccessFlags = AccessFlags(r.uleb())
		out[i].CodeOff = r.uleb()
	}
	return out
}

func nextMember(r *reader, prev uint32) uint32 {
	start := r.off
	delta := r.uleb()
	next := prev + delta
	if next < prev {
		r.fail(malformed(start, "member index overflows: %d + %d", prev, delta))
	}
	return next
}
