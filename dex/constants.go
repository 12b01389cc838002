package dex

// NoIndex marks an absent index in fixed-width index fields.
const NoIndex = 0xFFFFFFFF

const (
	headerSize        = 0x70
	compactHeaderSize = 0x88
	classDefSize      = 32
	endianTagOffset   = 40
)

var (
	dexMagicPrefix     = [4]byte{'d', 'e', 'x', '\n'}
	compactMagicPrefix = [4]byte{'c', 'd', 'e', 'x'}

	// endian_tag as raw bytes when written little-endian (forward) and
	// byte-reversed.
	endianConstant        = [4]byte{0x78, 0x56, 0x34, 0x12}
	reverseEndianConstant = [4]byte{0x12, 0x34, 0x56, 0x78}
)

type AccessFlags uint32

const (
	AccPublic               AccessFlags = 0x00001
	AccPrivate              AccessFlags = 0x00002
	AccProtected            AccessFlags = 0x00004
	AccStatic               AccessFlags = 0x00008
	AccFinal                AccessFlags = 0x00010
	AccSynchronized         AccessFlags = 0x00020
	AccVolatile             AccessFlags = 0x00040
	AccBridge               AccessFlags = 0x00040
	AccTransient            AccessFlags = 0x00080
	AccVarargs              AccessFlags = 0x00080
	AccNative               AccessFlags = 0x00100
	AccInterface            AccessFlags = 0x00200
	AccAbstract             AccessFlags = 0x00400
	AccStrict               AccessFlags = 0x00800
	AccSynthetic            AccessFlags = 0x01000
	AccAnnotation           AccessFlags = 0x02000
	AccEnum                 AccessFlags = 0x04000
	AccConstructor          AccessFlags = 0x10000
	AccDeclaredSynchronized AccessFlags = 0x20000
)

func (f AccessFlags) IsPublic() bool       { return f&AccPublic != 0 }
func (f AccessFlags) IsPrivate() bool      { return f&AccPrivate != 0 }
func (f AccessFlags) IsProtected() bool    { return f&AccProtected != 0 }
func (f AccessFlags) IsStatic() bool       { return f&AccStatic != 0 }
func (f AccessFlags) IsFinal() bool        { return f&AccFinal != 0 }
func (f AccessFlags) IsSynchronized() bool { return f&AccSynchronized != 0 }
func (f AccessFlags) IsVolatile() bool     { return f&AccVolatile != 0 }
func (f AccessFlags) IsBridge() bool       { return f&AccBridge != 0 }
func (f AccessFlags) IsTransient() bool    { return f&AccTransient != 0 }
func (f AccessFlags) IsVarargs() bool      { return f&AccVarargs != 0 }
func (f AccessFlags) IsNative() bool       { return f&AccNative != 0 }
func (f AccessFlags) IsInterface() bool    { return f&AccInterface != 0 }
func (f AccessFlags) IsAbstract() bool     { return f&AccAbstract != 0 }
func (f AccessFlags) IsStrict() bool       { return f&AccStrict != 0 }
func (f AccessFlags) IsSynthetic() bool    { return f&AccSynthetic != 0 }
func (f AccessFlags) IsAnnotation() bool   { return f&AccAnnotation != 0 }
func (f AccessFlags) IsEnum() bool         { return f&AccEnum != 0 }
func (f AccessFlags) IsConstructor() bool  { return f&AccConstructor != 0 }

// Visibility returns the Java visibility keyword, or "package" when none of
// the visibility bits are set.
func (f AccessFlags) Visibility() string {
	switch {
	case f.IsPublic():
		return "public"
	case f.IsProtected():
		return "protected"
	case f.IsPrivate():
		return "private"
	default:
		return "package"
	}
}

type MapItemType uint16

const (
	TypeHeaderItem               MapItemType = 0x0000
	TypeStringIDItem             MapItemType = 0x0001
	TypeTypeIDItem               MapItemType = 0x0002
	TypeProtoIDItem              MapItemType = 0x0003
	TypeFieldIDItem              MapItemType = 0x0004
	TypeMethodIDItem             MapItemType = 0x0005
	TypeClassDefItem             MapItemType = 0x0006
	TypeCallSiteIDItem           MapItemType = 0x0007
	TypeMethodHandleItem         MapItemType = 0x0008
	TypeMapList                  MapItemType = 0x1000
	TypeTypeList                 MapItemType = 0x1001
	TypeAnnotationSetRefList     MapItemType = 0x1002
	TypeAnnotationSetItem        MapItemType = 0x1003
	TypeClassDataItem            MapItemType = 0x2000
	TypeCodeItem                 MapItemType = 0x2001
	TypeStringDataItem           MapItemType = 0x2002
	TypeDebugInfoItem            MapItemType = 0x2003
	TypeAnnotationItem           MapItemType = 0x2004
	TypeEncodedArrayItem         MapItemType = 0x2005
	TypeAnnotationsDirectoryItem MapItemType = 0x2006
	TypeHiddenAPIClassDataItem   MapItemType = 0xF000
)

var mapItemTypeNames = map[MapItemType]string{
	TypeHeaderItem:               "header_item",
	TypeStringIDItem:             "string_id_item",
	TypeTypeIDItem:               "type_id_item",
	TypeProtoIDItem:              "proto_id_item",
	TypeFieldIDItem:              "field_id_item",
	TypeMethodIDItem:             "method_id_item",
	TypeClassDefItem:             "class_def_item",
	TypeCallSiteIDItem:           "call_site_id_item",
	TypeMethodHandleItem:         "method_handle_item",
	TypeMapList:                  "map_list",
	TypeTypeList:                 "type_list",
	TypeAnnotationSetRefList:     "annotation_set_ref_list",
	TypeAnnotationSetItem:        "annotation_set_item",
	TypeClassDataItem:            "class_data_item",
	TypeCodeItem:                 "code_item",
	TypeStringDataItem:           "string_data_item",
	TypeDebugInfoItem:            "debug_info_item",
	TypeAnnotationItem:           "annotation_item",
	TypeEncodedArrayItem:         "encoded_array_item",
	TypeAnnotationsDirectoryItem: "annotations_directory_item",
	TypeHiddenAPIClassDataItem:   "hiddenapi_class_data_item",
}

func (t MapItemType) String() string {
	if name, ok := mapItemTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

type MethodHandleType uint16

const (
	MethodHandleStaticPut         MethodHandleType = 0x00
	MethodHandleStaticGet         MethodHandleType = 0x01
	MethodHandleInstancePut       MethodHandleType = 0x02
	MethodHandleInstanceGet       MethodHandleType = 0x03
	MethodHandleInvokeStatic      MethodHandleType = 0x04
	MethodHandleInvokeInstance    MethodHandleType = 0x05
	MethodHandleInvokeConstructor MethodHandleType = 0x06
	MethodHandleInvokeDirect      MethodHandleType = 0x07
	MethodHandleInvokeInterface   MethodHandleType = 0x08
)

// IsFieldAccessor reports whether the handle's target is a field id rather
// than a method id.
func (t MethodHandleType) IsFieldAccessor() bool {
	return t <= MethodHandleInstanceGet
}

type AnnotationVisibility uint8

const (
	VisibilityBuild   AnnotationVisibility = 0x00
	VisibilityRuntime AnnotationVisibility = 0x01
	VisibilitySystem  AnnotationVisibility = 0x02
)

func (v AnnotationVisibility) String() string {
	switch v {
	case VisibilityBuild:
		return "build"
	case VisibilityRuntime:
		return "runtime"
	case VisibilitySystem:
		return "system"
	default:
		return "unknown"
	}
}
