package dex

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a decode failure. I/O errors from the underlying
// source are not FormatErrors; they are returned wrapped but otherwise
// unchanged.
type ErrorKind int

const (
	KindMalformed ErrorKind = iota + 1
	KindInvalidArgument
	KindTooManyItems
	KindHiddenAPI
)

var (
	ErrMalformed         = errors.New("malformed dex file")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrTooManyItems      = errors.New("too many items")
	ErrHiddenAPIMismatch = errors.New("hidden api data does not match class data")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindTooManyItems:
		return ErrTooManyItems
	case KindHiddenAPI:
		return ErrHiddenAPIMismatch
	default:
		return ErrMalformed
	}
}

// FormatError describes which structural expectation failed. Expected and
// Found are set when the failure is a comparison.
type FormatError struct {
	Kind     ErrorKind
	Offset   int64
	What     string
	Expected any
	Found    any
	Err      error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("%v at offset %#x: %s", e.Kind.sentinel(), e.Offset, e.What)
	if e.Expected != nil || e.Found != nil {
		msg += fmt.Sprintf(" (expected %v, found %v)", e.Expected, e.Found)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *FormatError) Unwrap() error { return e.Err }

func malformed(off int64, format string, args ...any) *FormatError {
	return &FormatError{Kind: KindMalformed, Offset: off, What: fmt.Sprintf(format, args...)}
}

func mismatch(off int64, what string, expected, found any) *FormatError {
	return &FormatError{Kind: KindMalformed, Offset: off, What: what, Expected: expected, Found: found}
}

func invalidArgument(off int64, format string, args ...any) *FormatError {
	return &FormatError{Kind: KindInvalidArgument, Offset: off, What: fmt.Sprintf(format, args...)}
}
