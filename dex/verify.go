package dex

import (
	"bytes"
	"crypto/sha1"
	"hash"
	"hash/adler32"
	"io"

	"github.com/pkg/errors"
)

const (
	checksumStart  = 12
	signatureStart = 32
)

// VerifyChecksum compares the Adler-32 checksum in the header against the
// bytes that follow it, up to the declared file size.
func (d *Decoder) VerifyChecksum() error {
	h := adler32.New()
	if err := d.hashFrom(checksumStart, h); err != nil {
		return err
	}
	if got := h.Sum32(); got != d.header.Checksum {
		return mismatch(8, "checksum", d.header.Checksum, got)
	}
	return nil
}

// VerifySignature compares the SHA-1 signature in the header against the
// bytes that follow it, up to the declared file size.
func (d *Decoder) VerifySignature() error {
	h := sha1.New()
	if err := d.hashFrom(signatureStart, h); err != nil {
		return err
	}
	if got := h.Sum(nil); !bytes.Equal(got, d.header.Signature[:]) {
		return mismatch(12, "signature", d.header.Signature[:], got)
	}
	return nil
}

func (d *Decoder) hashFrom(start int64, h hash.Hash) error {
	want := int64(d.header.FileSize) - start
	n, err := io.Copy(h, io.NewSectionReader(d.src, d.base+start, want))
	if err != nil {
		return errors.Wrap(err, "read container for verification")
	}
	if n != want {
		return mismatch(32, "file size", d.header.FileSize, n+start)
	}
	return nil
}
