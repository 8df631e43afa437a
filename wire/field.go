package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/stream"
)

// FieldWriter is the handle a Callback encoder uses to emit occurrences of
// its field. Every write adds the field tag. The handle is only valid
// during the call it was passed to.
type FieldWriter struct {
	w     *stream.Writer
	st    *state
	field *FieldDescriptor
	index int
	count int
	live  bool
}

// Field returns the descriptor of the field being written.
func (fw *FieldWriter) Field() *FieldDescriptor { return fw.field }

// Index returns how many times the callback was invoked before this call.
func (fw *FieldWriter) Index() int { return fw.index }

// Available returns the number of bytes the output can still accept.
func (fw *FieldWriter) Available() int { return fw.w.Available() }

func (fw *FieldWriter) elem() string { return elemName(fw.field, fw.index) }

func (fw *FieldWriter) begin(kind Kind) error {
	if !fw.live {
		return errors.New(errors.PhaseEncode, errors.KindScope).
			Path(fw.field.Name).
			Detail("field writer used after its callback returned").
			Build()
	}
	if fw.field.Kind != kind {
		return errors.SchemaMismatch(fw.st.phase, fw.st.pathWith(fw.elem()),
			"cannot write %s to %s field", kind, fw.field.Kind)
	}
	if fw.count > 0 && !fw.field.Repeated {
		return errors.SchemaMismatch(fw.st.phase, fw.st.pathWith(fw.elem()),
			"singular field written more than once")
	}
	return nil
}

func (fw *FieldWriter) writeScalar(kind Kind, raw uint64) error {
	if err := fw.begin(kind); err != nil {
		return err
	}
	var buf [maxHeaderLen]byte
	typ := kind.WireType()
	out := appendRaw(protowire.AppendTag(buf[:0], fw.field.Number, typ), typ, raw)
	if _, err := fw.w.Write(out); err != nil {
		return fw.st.streamErr(fw.elem(), err)
	}
	fw.count++
	return nil
}

func (fw *FieldWriter) WriteInt32(v int32) error { return fw.writeScalar(KindInt32, uint64(int64(v))) }
func (fw *FieldWriter) WriteSInt32(v int32) error { return fw.writeScalar(KindSInt32, protowire.EncodeZigZag(int64(v))) }
func (fw *FieldWriter) WriteUInt32(v uint32) error { return fw.writeScalar(KindUInt32, uint64(v)) }
func (fw *FieldWriter) WriteFixed32(v uint32) error { return fw.writeScalar(KindFixed32, uint64(v)) }
func (fw *FieldWriter) WriteSFixed32(v int32) error { return fw.writeScalar(KindSFixed32, uint64(uint32(v))) }
func (fw *FieldWriter) WriteInt64(v int64) error { return fw.writeScalar(KindInt64, uint64(v)) }
func (fw *FieldWriter) WriteSInt64(v int64) error { return fw.writeScalar(KindSInt64, protowire.EncodeZigZag(v)) }
func (fw *FieldWriter) WriteUInt64(v uint64) error { return fw.writeScalar(KindUInt64, v) }
func (fw *FieldWriter) WriteFixed64(v uint64) error { return fw.writeScalar(KindFixed64, v) }
func (fw *FieldWriter) WriteSFixed64(v int64) error { return fw.writeScalar(KindSFixed64, uint64(v)) }
func (fw *FieldWriter) WriteBool(v bool) error { return fw.writeScalar(KindBool, protowire.EncodeBool(v)) }
func (fw *FieldWriter) WriteEnum(v int32) error { return fw.writeScalar(KindEnum, uint64(int64(v))) }
func (fw *FieldWriter) WriteFloat(v float32) error { return fw.writeScalar(KindFloat, uint64(math.Float32bits(v))) }
func (fw *FieldWriter) WriteDouble(v float64) error { return fw.writeScalar(KindDouble, math.Float64bits(v)) }

func (fw *FieldWriter) writeDelimited(kind Kind, size int, body func() error) error {
	if err := fw.begin(kind); err != nil {
		return err
	}
	var buf [maxHeaderLen]byte
	hdr := protowire.AppendVarint(protowire.AppendTag(buf[:0], fw.field.Number, protowire.BytesType), uint64(size))
	if len(hdr)+size > fw.w.Available() {
		return fw.st.streamErr(fw.elem(), stream.ErrOverflow)
	}
	if _, err := fw.w.Write(hdr); err != nil {
		return fw.st.streamErr(fw.elem(), err)
	}
	if err := body(); err != nil {
		return fw.st.streamErr(fw.elem(), err)
	}
	fw.count++
	return nil
}

// WriteString writes one string occurrence.
func (fw *FieldWriter) WriteString(v string) error {
	return fw.writeDelimited(KindString, len(v), func() error {
		_, err := fw.w.WriteString(v)
		return err
	})
}

// WriteBytes writes one bytes occurrence.
func (fw *FieldWriter) WriteBytes(v []byte) error {
	return fw.writeDelimited(KindBytes, len(v), func() error {
		_, err := fw.w.Write(v)
		return err
	})
}

// WriteMessage encodes shadow as one occurrence of a message field. A nil
// desc means the field's own message type.
func (fw *FieldWriter) WriteMessage(shadow any, desc *MessageDescriptor) error {
	if err := fw.begin(KindMessage); err != nil {
		return err
	}
	if desc == nil {
		desc = fw.field.Message
	}
	if desc != fw.field.Message {
		return errors.SchemaMismatch(fw.st.phase, fw.st.pathWith(fw.elem()),
			"message %q written to field of type %q", desc.Name, fw.field.Message.Name)
	}
	b, base, err := resolve(shadow, desc, fw.st.phase)
	if err != nil {
		return err
	}
	child, err := fw.st.child(fw.elem())
	if err != nil {
		return err
	}
	if err := encodeNested(fw.w, child, fw.field.Number, b, base); err != nil {
		return err
	}
	fw.count++
	return nil
}

// FieldReader is the handle a Callback decoder uses to read one element of
// its field. For packed scalars each call sees a single element. The
// handle is only valid during the call it was passed to, and each call
// may read at most one value.
type FieldReader struct {
	r      *stream.Reader
	st     *state
	field  *FieldDescriptor
	wt     protowire.Type
	index  int
	packed bool
	live   bool
	used   bool
}

// Field returns the descriptor of the field being read.
func (fr *FieldReader) Field() *FieldDescriptor { return fr.field }

// Index returns the position of this element among all elements of the
// field seen so far in the message.
func (fr *FieldReader) Index() int { return fr.index }

// Packed reports whether the element came from a packed run.
func (fr *FieldReader) Packed() bool { return fr.packed }

func (fr *FieldReader) elem() string { return elemName(fr.field, fr.index) }

func (fr *FieldReader) invoke(fn func(*FieldReader) error, index int) error {
	fr.index, fr.used, fr.live = index, false, true
	err := fn(fr)
	fr.live = false
	if err != nil {
		return fr.st.callbackErr(fr.elem(), err)
	}
	return nil
}

func (fr *FieldReader) begin(kinds ...Kind) error {
	if !fr.live {
		return errors.New(errors.PhaseDecode, errors.KindScope).
			Path(fr.field.Name).
			Detail("field reader used after its callback returned").
			Build()
	}
	if fr.used {
		return errors.SchemaMismatch(fr.st.phase, fr.st.pathWith(fr.elem()),
			"element already read")
	}
	for _, k := range kinds {
		if fr.field.Kind == k {
			return nil
		}
	}
	return errors.SchemaMismatch(fr.st.phase, fr.st.pathWith(fr.elem()),
		"cannot read %s from %s field", kinds[0], fr.field.Kind)
}

func (fr *FieldReader) readScalar(kind Kind) (uint64, error) {
	if err := fr.begin(kind); err != nil {
		return 0, err
	}
	raw, n := consumeRaw(fr.wt, fr.r.Remaining())
	if n < 0 {
		return 0, fr.st.parseErr(fr.r, fr.elem(), n)
	}
	fr.r.Skip(n)
	fr.used = true
	return raw, nil
}

func (fr *FieldReader) ReadInt32() (int32, error) {
	raw, err := fr.readScalar(KindInt32)
	return int32(raw), err
}

func (fr *FieldReader) ReadSInt32() (int32, error) {
	raw, err := fr.readScalar(KindSInt32)
	return int32(protowire.DecodeZigZag(raw & math.MaxUint32)), err
}

func (fr *FieldReader) ReadUInt32() (uint32, error) {
	raw, err := fr.readScalar(KindUInt32)
	return uint32(raw), err
}

func (fr *FieldReader) ReadFixed32() (uint32, error) {
	raw, err := fr.readScalar(KindFixed32)
	return uint32(raw), err
}

func (fr *FieldReader) ReadSFixed32() (int32, error) {
	raw, err := fr.readScalar(KindSFixed32)
	return int32(uint32(raw)), err
}

func (fr *FieldReader) ReadInt64() (int64, error) {
	raw, err := fr.readScalar(KindInt64)
	return int64(raw), err
}

func (fr *FieldReader) ReadSInt64() (int64, error) {
	raw, err := fr.readScalar(KindSInt64)
	return protowire.DecodeZigZag(raw), err
}

func (fr *FieldReader) ReadUInt64() (uint64, error) {
	return fr.readScalar(KindUInt64)
}

func (fr *FieldReader) ReadFixed64() (uint64, error) {
	return fr.readScalar(KindFixed64)
}

func (fr *FieldReader) ReadSFixed64() (int64, error) {
	raw, err := fr.readScalar(KindSFixed64)
	return int64(raw), err
}

func (fr *FieldReader) ReadBool() (bool, error) {
	raw, err := fr.readScalar(KindBool)
	return protowire.DecodeBool(raw), err
}

func (fr *FieldReader) ReadEnum() (int32, error) {
	raw, err := fr.readScalar(KindEnum)
	return int32(raw), err
}

func (fr *FieldReader) ReadFloat() (float32, error) {
	raw, err := fr.readScalar(KindFloat)
	return math.Float32frombits(uint32(raw)), err
}

func (fr *FieldReader) ReadDouble() (float64, error) {
	raw, err := fr.readScalar(KindDouble)
	return math.Float64frombits(raw), err
}

// Payload hands out the raw bytes of a string or bytes element as a
// bounded reader, for callers that consume it in pieces. The reader must
// not be used after the callback returns.
func (fr *FieldReader) Payload() (*stream.Reader, error) {
	if err := fr.begin(KindString, KindBytes); err != nil {
		return nil, err
	}
	fr.used = true
	return fr.r, nil
}

// ReadString reads a whole string element.
func (fr *FieldReader) ReadString() (string, error) {
	if err := fr.begin(KindString); err != nil {
		return "", err
	}
	fr.used = true
	return string(fr.r.ReadRemaining()), nil
}

// ReadBytes reads a whole bytes element into a fresh slice.
func (fr *FieldReader) ReadBytes() ([]byte, error) {
	if err := fr.begin(KindBytes); err != nil {
		return nil, err
	}
	fr.used = true
	return fr.r.ReadRemaining(), nil
}

// ReadMessage decodes a message element into shadow. A nil desc means the
// field's own message type.
func (fr *FieldReader) ReadMessage(shadow any, desc *MessageDescriptor) error {
	if err := fr.begin(KindMessage); err != nil {
		return err
	}
	if desc == nil {
		desc = fr.field.Message
	}
	if desc != fr.field.Message {
		return errors.SchemaMismatch(fr.st.phase, fr.st.pathWith(fr.elem()),
			"message %q read from field of type %q", desc.Name, fr.field.Message.Name)
	}
	fr.used = true
	b, base, err := resolve(shadow, desc, fr.st.phase)
	if err != nil {
		return err
	}
	child, err := fr.st.child(fr.elem())
	if err != nil {
		return err
	}
	return decodeMessage(fr.r, child, b, base)
}
