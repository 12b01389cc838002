package format

import (
	"encoding"
	"io"

	"github.com/dhamidi/dexter/dex"
	"github.com/pkg/errors"
)

// Encoder writes a decoded container. MarshalText renders the container
// passed to the most recent Encode call.
type Encoder interface {
	encoding.TextMarshaler
	Encode(f *dex.File) error
}

// New returns the encoder registered under name: "line", "json", "text" or
// "java".
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "text":
		return NewTextEncoder(w), nil
	case "java":
		return NewJavaEncoder(w), nil
	default:
		return nil, errors.Errorf("unknown format: %s (expected line, json, text, or java)", name)
	}
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
