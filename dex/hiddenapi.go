package dex

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenAPIFlags is the restriction category of one class member. The low
// bits name an api list; higher bits mark the domains the member belongs to.
type HiddenAPIFlags uint32

type APIList uint32

const (
	APIListSDK          APIList = 0
	APIListUnsupported  APIList = 1
	APIListBlocked      APIList = 2
	APIListMaxTargetO   APIList = 3
	APIListMaxTargetP   APIList = 4
	APIListMaxTargetQ   APIList = 5
	APIListMaxTargetR   APIList = 6
	APIListMaxTargetS   APIList = 7
	apiListMask                 = 0x7
	HiddenAPICorePlatform       = HiddenAPIFlags(1 << 3)
	HiddenAPITestAPI            = HiddenAPIFlags(1 << 4)
)

var apiListNames = [...]string{
	"whitelist", "greylist", "blacklist", "greylist-max-o",
	"greylist-max-p", "greylist-max-q", "greylist-max-r", "greylist-max-s",
}

func (l APIList) String() string {
	if int(l) < len(apiListNames) {
		return apiListNames[l]
	}
	return fmt.Sprintf("api_list(%d)", uint32(l))
}

func (f HiddenAPIFlags) List() APIList { return APIList(f & apiListMask) }

func (f HiddenAPIFlags) IsCorePlatformAPI() bool { return f&HiddenAPICorePlatform != 0 }
func (f HiddenAPIFlags) IsTestAPI() bool         { return f&HiddenAPITestAPI != 0 }

func (f HiddenAPIFlags) String() string {
	parts := []string{f.List().String()}
	if f.IsCorePlatformAPI() {
		parts = append(parts, "core-platform-api")
	}
	if f.IsTestAPI() {
		parts = append(parts, "test-api")
	}
	return strings.Join(parts, ",")
}

func hiddenAPIMismatch(off int64, what string, expected, found any) *FormatError {
	return &FormatError{Kind: KindHiddenAPI, Offset: off, What: what, Expected: expected, Found: found}
}

// applyHiddenAPI merges the hiddenapi_class_data_item at a data-section
// offset onto classes. The item starts with its total size, followed by one
// offset per class definition relative to the item start. A class's flags
// run from its offset to the next larger class offset, or to the end of the
// item, and must be consumed exactly by its members.
func (d *Decoder) applyHiddenAPI(off uint32, classes []ClassDef) error {
	if off == 0 {
		return nil
	}
	r := d.data(off)
	size := r.readU4()
	offsets := make([]uint32, r.count(uint64(len(classes)), 4, "hidden api class offsets"))
	for i := range offsets {
		offsets[i] = r.readU4()
	}
	if r.err != nil {
		return r.err
	}
	if headerEnd := uint32(4 + 4*len(classes)); size < headerEnd {
		return hiddenAPIMismatch(d.dataBase+int64(off), "hidden api item smaller than its offset table", headerEnd, size)
	}

	sorted := make([]uint32, 0, len(offsets))
	for _, o := range offsets {
		if o != 0 {
			sorted = append(sorted, o)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	end := func(start uint32) uint32 {
		i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > start })
		if i < len(sorted) {
			return sorted[i]
		}
		return size
	}

	applied := 0
	for i := range classes {
		classOff := offsets[i]
		if classOff == 0 {
			continue
		}
		c := &classes[i]
		limit := int64(off) + int64(end(classOff))
		if classOff >= size {
			return hiddenAPIMismatch(d.dataBase+int64(off), fmt.Sprintf("class %d flags start past the item", i), size, classOff)
		}
		fr := d.data(off + classOff)
		next := func() *HiddenAPIFlags {
			if fr.off-d.dataBase >= limit {
				fr.fail(hiddenAPIMismatch(fr.off, fmt.Sprintf("class %d has more members than hidden api flags", i),
					c.Data.MemberCount(), "fewer flags"))
				return nil
			}
			flags := HiddenAPIFlags(fr.uleb())
			return &flags
		}

		if c.Data != nil {
			for j := range c.Data.StaticFields {
				c.Data.StaticFields[j].HiddenAPI = next()
			}
			for j := range c.Data.InstanceFields {
				c.Data.InstanceFields[j].HiddenAPI = next()
			}
			for j := range c.Data.DirectMethods {
				c.Data.DirectMethods[j].HiddenAPI = next()
			}
			for j := range c.Data.VirtualMethods {
				c.Data.VirtualMethods[j].HiddenAPI = next()
			}
		}
		if fr.err != nil {
			d.log.Warningf("hidden api data of class %d does not match its members", i)
			return fr.err
		}
		if consumed := fr.off - d.dataBase; consumed != limit {
			d.log.Warningf("hidden api data of class %d has %d trailing bytes", i, limit-consumed)
			return hiddenAPIMismatch(fr.off, fmt.Sprintf("class %d has leftover hidden api flags", i),
				limit, consumed)
		}
		applied++
	}
	d.log.Debugf("applied hidden api flags to %d classes", applied)
	return nil
}
