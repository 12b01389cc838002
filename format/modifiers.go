package format

import (
	"strings"

	"github.com/dhamidi/dexter/dex"
)

func classKind(flags dex.AccessFlags) string {
	switch {
	case flags.IsAnnotation():
		return "annotation"
	case flags.IsEnum():
		return "enum"
	case flags.IsInterface():
		return "interface"
	default:
		return "class"
	}
}

func classModifiers(flags dex.AccessFlags) []string {
	var mods []string
	if flags.IsFinal() {
		mods = append(mods, "final")
	}
	if flags.IsAbstract() && !flags.IsInterface() {
		mods = append(mods, "abstract")
	}
	if flags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	return mods
}

func fieldModifiers(flags dex.AccessFlags) []string {
	var mods []string
	if flags.IsStatic() {
		mods = append(mods, "static")
	}
	if flags.IsFinal() {
		mods = append(mods, "final")
	}
	if flags.IsVolatile() {
		mods = append(mods, "volatile")
	}
	if flags.IsTransient() {
		mods = append(mods, "transient")
	}
	if flags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if flags.IsEnum() {
		mods = append(mods, "enum")
	}
	return mods
}

func methodModifiers(flags dex.AccessFlags) []string {
	var mods []string
	if flags.IsStatic() {
		mods = append(mods, "static")
	}
	if flags.IsFinal() {
		mods = append(mods, "final")
	}
	if flags.IsAbstract() {
		mods = append(mods, "abstract")
	}
	if flags.IsSynchronized() || flags&dex.AccDeclaredSynchronized != 0 {
		mods = append(mods, "synchronized")
	}
	if flags.IsNative() {
		mods = append(mods, "native")
	}
	if flags.IsBridge() {
		mods = append(mods, "bridge")
	}
	if flags.IsVarargs() {
		mods = append(mods, "varargs")
	}
	if flags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if flags.IsConstructor() {
		mods = append(mods, "constructor")
	}
	return mods
}

// joinOrDash joins mods with commas; an empty list prints as "-".
func joinOrDash(mods []string) string {
	if len(mods) == 0 {
		return "-"
	}
	return strings.Join(mods, ",")
}
