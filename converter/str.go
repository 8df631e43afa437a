package converter

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

// DefaultChunkSize is the read size used when decoding strings and bytes.
const DefaultChunkSize = 256

// String converts a Go string to a string field. Decoding reads the
// payload ChunkSize bytes at a time, so the final length is never needed
// up front.
type String struct {
	ChunkSize int
	// ValidUTF8 rejects decoded payloads that are not valid UTF-8.
	ValidUTF8 bool
}

// Encoder returns a callback that writes *v as one occurrence.
func (s String) Encoder(v *string) wire.Callback {
	return wire.Callback{Encode: func(fw *wire.FieldWriter) error {
		return s.EncodeItem(fw, v)
	}}
}

// Decoder returns a callback that stores the field into *v.
func (s String) Decoder(v *string) wire.Callback {
	return wire.Callback{Decode: func(fr *wire.FieldReader) error {
		return s.DecodeItem(fr, v)
	}}
}

func (String) EncodeItem(fw *wire.FieldWriter, v *string) error {
	return fw.WriteString(*v)
}

func (s String) DecodeItem(fr *wire.FieldReader, v *string) error {
	var b strings.Builder
	err := readChunks(fr, s.ChunkSize, func(p []byte) {
		b.Write(p)
	})
	if err != nil {
		return err
	}
	out := b.String()
	if s.ValidUTF8 && !utf8.ValidString(out) {
		return errors.InvalidUTF8(errors.PhaseDecode, nil, []byte(out))
	}
	*v = out
	return nil
}

// Bytes converts a byte slice to a bytes field.
type Bytes struct {
	ChunkSize int
}

func (b Bytes) Encoder(v *[]byte) wire.Callback {
	return wire.Callback{Encode: func(fw *wire.FieldWriter) error {
		return b.EncodeItem(fw, v)
	}}
}

func (b Bytes) Decoder(v *[]byte) wire.Callback {
	return wire.Callback{Decode: func(fr *wire.FieldReader) error {
		return b.DecodeItem(fr, v)
	}}
}

func (Bytes) EncodeItem(fw *wire.FieldWriter, v *[]byte) error {
	return fw.WriteBytes(*v)
}

// DecodeItem replaces *v with a fresh slice. An empty payload decodes to
// an empty, non-nil slice.
func (b Bytes) DecodeItem(fr *wire.FieldReader, v *[]byte) error {
	out := []byte{}
	err := readChunks(fr, b.ChunkSize, func(p []byte) {
		out = append(out, p...)
	})
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func readChunks(fr *wire.FieldReader, size int, fn func([]byte)) error {
	if size <= 0 {
		size = DefaultChunkSize
	}
	payload, err := fr.Payload()
	if err != nil {
		return err
	}
	buf := make([]byte, min(size, payload.Len()))
	for payload.Len() > 0 {
		n, err := payload.Read(buf)
		if n > 0 {
			fn(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Stream(errors.PhaseDecode, []string{fr.Field().Name}, payload.WrapError(err))
		}
	}
	return nil
}
