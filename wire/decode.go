package wire

import (
	"io"
	"unsafe"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/stream"
)

// DecodeMessage reads one message from r into shadow, consuming all of r.
// Shadow must be a pointer to a struct bound by desc or to a Dynamic.
func DecodeMessage(r *stream.Reader, shadow any, desc *MessageDescriptor) error {
	b, base, err := resolve(shadow, desc, errors.PhaseDecode)
	if err != nil {
		return err
	}
	return decodeMessage(r, newState(errors.PhaseDecode, desc), b, base)
}

func decodeMessage(r *stream.Reader, s *state, b *Binding, base unsafe.Pointer) error {
	var seen []int // occurrences per repeated field, for paths

	for r.Len() > 0 {
		num, typ, n := protowire.ConsumeTag(r.Remaining())
		if n < 0 {
			return s.parseErr(r, "", n)
		}
		r.Skip(n)

		f := b.lookup(num)
		if f == nil {
			if err := skipValue(r, s, "", num, typ); err != nil {
				return err
			}
			Logger().Debug("skipped unknown field",
				zap.String("message", b.desc.Name),
				zap.Int32("number", int32(num)),
				zap.Int("wire_type", int(typ)))
			continue
		}

		var err error
		switch f.mode {
		case modeScalar:
			err = decodeScalar(r, s, f.desc, typ, b.fieldPtr(base, f))
		case modeNested:
			err = decodeNested(r, s, f, typ, b.fieldPtr(base, f))
		case modeCallback:
			cb := (*Callback)(b.fieldPtr(base, f))
			if cb.Decode == nil {
				err = skipValue(r, s, f.desc.Name, num, typ)
				break
			}
			index := 0
			if f.desc.Repeated {
				if seen == nil {
					seen = make([]int, len(b.fields))
				}
				index = seen[f.index]
				seen[f.index], err = decodeCallback(r, s, f.desc, typ, index, cb.Decode)
				break
			}
			_, err = decodeCallback(r, s, f.desc, typ, index, cb.Decode)
		case modeMember:
			err = decodeMember(r, s, f.desc, typ, b.oneofPtr(base, f.oneof))
		}
		if err != nil {
			return err
		}
	}

	for i := range b.oneofs {
		o := b.oneofPtr(base, i)
		if o.Done == nil {
			continue
		}
		if err := o.Done(); err != nil {
			return s.callbackErr(b.oneofs[i].desc.Name, err)
		}
	}
	return nil
}

func skipValue(r *stream.Reader, s *state, elem string, num Number, typ protowire.Type) error {
	n := protowire.ConsumeFieldValue(num, typ, r.Remaining())
	if n < 0 {
		return s.parseErr(r, elem, n)
	}
	r.Skip(n)
	return nil
}

func wireTypeErr(s *state, fd *FieldDescriptor, typ protowire.Type) error {
	return errors.SchemaMismatch(s.phase, s.pathWith(fd.Name),
		"wire type %d does not match %s field", typ, fd.Kind)
}

// substream consumes a length prefix and returns a reader over the payload.
func substream(r *stream.Reader, s *state, elem string) (*stream.Reader, error) {
	length, n := protowire.ConsumeVarint(r.Remaining())
	if n < 0 {
		return nil, s.parseErr(r, elem, n)
	}
	r.Skip(n)
	if length > uint64(r.Len()) {
		return nil, s.streamErr(elem, r.WrapError(io.ErrUnexpectedEOF))
	}
	sub, _ := r.Sub(int(length))
	return sub, nil
}

func decodeScalar(r *stream.Reader, s *state, fd *FieldDescriptor, typ protowire.Type, ptr unsafe.Pointer) error {
	if typ != fd.Kind.WireType() {
		return wireTypeErr(s, fd, typ)
	}
	raw, n := consumeRaw(typ, r.Remaining())
	if n < 0 {
		return s.parseErr(r, fd.Name, n)
	}
	r.Skip(n)
	storeRaw(fd.Kind, ptr, raw)
	return nil
}

func decodeNested(r *stream.Reader, s *state, f *boundField, typ protowire.Type, ptr unsafe.Pointer) error {
	if typ != protowire.BytesType {
		return wireTypeErr(s, f.desc, typ)
	}
	sub, err := substream(r, s, f.desc.Name)
	if err != nil {
		return err
	}
	child, err := s.child(f.desc.Name)
	if err != nil {
		return err
	}
	return decodeMessage(sub, child, f.nested, ptr)
}

// decodeCallback feeds one occurrence of a callback field to fn. A packed
// run is split so fn sees one element per call. It returns the next
// element index.
func decodeCallback(r *stream.Reader, s *state, fd *FieldDescriptor, typ protowire.Type, index int, fn func(*FieldReader) error) (int, error) {
	elem := elemName(fd, index)

	if typ == protowire.BytesType && fd.Kind.IsScalar() {
		if !fd.Repeated {
			return index, wireTypeErr(s, fd, typ)
		}
		sub, err := substream(r, s, elem)
		if err != nil {
			return index, err
		}
		fr := &FieldReader{r: sub, st: s, field: fd, wt: fd.Kind.WireType(), packed: true}
		for sub.Len() > 0 {
			before := sub.Len()
			if err := fr.invoke(fn, index); err != nil {
				return index, err
			}
			if sub.Len() == before {
				return index, errors.InvalidData(s.phase, s.pathWith(elemName(fd, index)),
					"packed element was not consumed")
			}
			index++
		}
		return index, nil
	}

	if typ != fd.Kind.WireType() {
		return index, wireTypeErr(s, fd, typ)
	}

	fr := &FieldReader{r: r, st: s, field: fd, wt: typ}
	if typ == protowire.BytesType {
		sub, err := substream(r, s, elem)
		if err != nil {
			return index, err
		}
		fr.r = sub
	}
	if err := fr.invoke(fn, index); err != nil {
		return index, err
	}
	if !fr.used && typ != protowire.BytesType {
		if err := skipValue(r, s, elem, fd.Number, typ); err != nil {
			return index, err
		}
	}
	return index + 1, nil
}

func decodeMember(r *stream.Reader, s *state, fd *FieldDescriptor, typ protowire.Type, o *Oneof) error {
	if typ != fd.Kind.WireType() {
		return wireTypeErr(s, fd, typ)
	}
	o.Which = fd.Number
	if o.Decode == nil {
		return skipValue(r, s, fd.Name, fd.Number, typ)
	}
	_, err := decodeCallback(r, s, fd, typ, 0, o.Decode)
	return err
}
