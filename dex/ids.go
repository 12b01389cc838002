package dex

import (
	"github.com/pkg/errors"
)

func (d *Decoder) decodeStrings() ([]string, error) {
	sec := d.header.StringIDs
	if sec.Empty() {
		d.log.Infof("string_ids section is empty")
		return []string{}, nil
	}
	r := d.at(sec.Off)
	n := r.count(uint64(sec.Size), 4, "string_ids")
	offsets := make([]uint32, n)
	for i := range offsets {
		offsets[i] = r.readU4()
	}
	if r.err != nil {
		return nil, r.err
	}

	out := make([]string, n)
	for i, off := range offsets {
		s, err := d.DecodeStringDataAt(off)
		if err != nil {
			return nil, errors.Wrapf(err, "string %d", i)
		}
		out[i] = s
	}
	d.log.Debugf("resolved %d strings", n)
	return out, nil
}

// DecodeStringDataAt decodes the string_data_item at a data-section offset.
func (d *Decoder) DecodeStringDataAt(off uint32) (string, error) {
	if off == 0 {
		return "", invalidArgument(0, "string data at offset 0")
	}
	if s, ok := d.strings[off]; ok {
		return s, nil
	}
	r := d.data(off)
	r.uleb() // utf16 length, not authoritative for the byte length
	s := r.mutf8String()
	if r.err != nil {
		return "", r.err
	}
	d.strings[off] = s
	return s, nil
}

func (d *Decoder) decodeTypes() ([]TypeID, error) {
	sec := d.header.TypeIDs
	if sec.Empty() {
		return []TypeID{}, nil
	}
	r := d.at(sec.Off)
	out := make([]TypeID, r.count(uint64(sec.Size), 4, "type_ids"))
	for i := range out {
		out[i].Descriptor = r.readU4()
	}
	return out, r.err
}

func (d *Decoder) decodeProtos() ([]ProtoID, error) {
	sec := d.header.ProtoIDs
	if sec.Empty() {
		return []ProtoID{}, nil
	}
	r := d.at(sec.Off)
	out := make([]ProtoID, r.count(uint64(sec.Size), 12, "proto_ids"))
	for i := range out {
		p := &out[i]
		p.Shorty = r.readU4()
		p.ReturnType = r.readU4()
		paramsOff := r.readU4()
		if r.err != nil {
			return nil, r.err
		}
		params, err := d.typeList(paramsOff)
		if err != nil {
			return nil, errors.Wrapf(err, "prototype %d parameters", i)
		}
		p.Parameters = params
	}
	return out, r.err
}

// typeList resolves a type_list at a data-section offset. Offset 0 is the
// empty list.
func (d *Decoder) typeList(off uint32) ([]uint16, error) {
	if off == 0 {
		return []uint16{}, nil
	}
	if l, ok := d.typeLists[off]; ok {
		return l, nil
	}
	r := d.data(off)
	size := r.readU4()
	l := make([]uint16, r.count(uint64(size), 2, "type_list"))
	for i := range l {
		l[i] = r.readU2()
	}
	if r.err != nil {
		return nil, r.err
	}
	d.typeLists[off] = l
	return l, nil
}

func (d *Decoder) decodeFields() ([]FieldID, error) {
	sec := d.header.FieldIDs
	if sec.Empty() {
		return []FieldID{}, nil
	}
	r := d.at(sec.Off)
	out := make([]FieldID, r.count(uint64(sec.Size), 8, "field_ids"))
	for i := range out {
		out[i] = FieldID{
			Class: r.readU2(),
			Type:  r.readU2(),
			Name:  r.readU4(),
		}
	}
	return out, r.err
}

func (d *Decoder) decodeMethods() ([]MethodID, error) {
	sec := d.header.MethodIDs
	if sec.Empty() {
		return []MethodID{}, nil
	}
	r := d.at(sec.Off)
	out := make([]MethodID, r.count(uint64(sec.Size), 8, "method_ids"))
	for i := range out {
		out[i] = MethodID{
			Class: r.readU2(),
			Proto: r.readU2(),
			Name:  r.readU4(),
		}
	}
	return out, r.err
}

func (d *Decoder) decodeLink() ([]byte, error) {
	sec := d.header.Link
	if sec.Empty() {
		return []byte{}, nil
	}
	r := d.data(sec.Off)
	n := r.count(uint64(sec.Size), 1, "link")
	b := r.readBytes(n)
	return b, r.err
}

// DecodeMapList decodes the map list the header points at. A zero map
// offset yields an empty list.
func (d *Decoder) DecodeMapList() ([]MapItem, error) {
	if d.header.MapOff == 0 {
		return []MapItem{}, nil
	}
	r := d.data(d.header.MapOff)
	size := r.readU4()
	out := make([]MapItem, r.count(uint64(size), 12, "map_list"))
	for i := range out {
		out[i].Type = MapItemType(r.readU2())
		r.readU2() // unused
		out[i].Size = r.readU4()
		out[i].Off = r.readU4()
	}
	if r.err != nil {
		return nil, r.err
	}
	for _, item := range out {
		d.log.Debugf("map item %s: %d at %#x", item.Type, item.Size, item.Off)
	}
	return out, nil
}

func (d *Decoder) decodeCallSites(item MapItem) ([]CallSite, error) {
	if item.Size == 0 || item.Off == 0 {
		return []CallSite{}, nil
	}
	r := d.at(item.Off)
	out := make([]CallSite, r.count(uint64(item.Size), 4, "call_site_ids"))
	for i := range out {
		off := r.readU4()
		if r.err != nil {
			return nil, r.err
		}
		values, err := d.DecodeEncodedArrayAt(off)
		if err != nil {
			return nil, errors.Wrapf(err, "call site %d", i)
		}
		out[i] = CallSite{Off: off, Values: values}
	}
	return out, nil
}

func (d *Decoder) decodeMethodHandles(item MapItem) ([]MethodHandle, error) {
	if item.Size == 0 || item.Off == 0 {
		return []MethodHandle{}, nil
	}
	r := d.at(item.Off)
	out := make([]MethodHandle, r.count(uint64(item.Size), 8, "method_handles"))
	for i := range out {
		out[i].Type = MethodHandleType(r.readU2())
		r.readU2() // unused
		out[i].FieldOrMethod = r.readU2()
		r.readU2() // unused
	}
	return out, r.err
}
