package wire

import (
	"unsafe"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/stream"
)

// EncodeMessage writes the message held by shadow to w. Shadow must be a
// pointer to a struct bound by desc or to a Dynamic.
func EncodeMessage(w *stream.Writer, shadow any, desc *MessageDescriptor) error {
	b, base, err := resolve(shadow, desc, errors.PhaseEncode)
	if err != nil {
		return err
	}
	return encodeMessage(w, newState(errors.PhaseEncode, desc), b, base)
}

func encodeMessage(w *stream.Writer, s *state, b *Binding, base unsafe.Pointer) error {
	for i := range b.oneofs {
		o := b.oneofPtr(base, i)
		if o.Which == 0 {
			continue
		}
		f := b.lookup(o.Which)
		if f == nil || f.oneof != i {
			return errors.SchemaMismatch(s.phase, s.pathWith(b.oneofs[i].desc.Name),
				"oneof %q has no member numbered %d", b.oneofs[i].desc.Name, o.Which)
		}
		if o.Encode == nil {
			return errors.New(s.phase, errors.KindNilPointer).
				Path(s.pathWith(f.desc.Name)...).
				Detail("oneof %q selects %q without an encoder", b.oneofs[i].desc.Name, f.desc.Name).
				Build()
		}
	}

	for i := range b.fields {
		f := &b.fields[i]
		var err error
		switch f.mode {
		case modeScalar:
			err = encodeScalar(w, s, f.desc, loadRaw(f.desc.Kind, b.fieldPtr(base, f)))
		case modeNested:
			var child *state
			if child, err = s.child(f.desc.Name); err == nil {
				err = encodeNested(w, child, f.desc.Number, f.nested, b.fieldPtr(base, f))
			}
		case modeCallback:
			cb := (*Callback)(b.fieldPtr(base, f))
			if cb.Encode != nil {
				err = encodeCallback(w, s, f.desc, cb.Encode)
			}
		case modeMember:
			o := b.oneofPtr(base, f.oneof)
			if o.Which == f.desc.Number {
				err = encodeCallback(w, s, f.desc, o.Encode)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeScalar writes a directly stored scalar. Zero values are omitted.
func encodeScalar(w *stream.Writer, s *state, fd *FieldDescriptor, raw uint64) error {
	if raw == 0 {
		return nil
	}
	var buf [maxHeaderLen]byte
	typ := fd.Kind.WireType()
	out := appendRaw(protowire.AppendTag(buf[:0], fd.Number, typ), typ, raw)
	if _, err := w.Write(out); err != nil {
		return s.streamErr(fd.Name, err)
	}
	return nil
}

// encodeNested writes a length-prefixed message body. The body is encoded
// into a scratch writer bounded by what the parent can still accept.
func encodeNested(w *stream.Writer, s *state, num Number, b *Binding, base unsafe.Pointer) error {
	scratch := getScratch(w.Available())
	defer putScratch(scratch)

	if err := encodeMessage(scratch, s, b, base); err != nil {
		return err
	}

	body := scratch.Bytes()
	var buf [maxHeaderLen]byte
	hdr := protowire.AppendVarint(protowire.AppendTag(buf[:0], num, protowire.BytesType), uint64(len(body)))
	if len(hdr)+len(body) > w.Available() {
		return errors.Stream(s.phase, s.path(), stream.ErrOverflow)
	}
	if _, err := w.Write(hdr); err != nil {
		return errors.Stream(s.phase, s.path(), err)
	}
	if _, err := w.Write(body); err != nil {
		return errors.Stream(s.phase, s.path(), err)
	}
	return nil
}

// encodeCallback drives fn until it stops producing occurrences.
func encodeCallback(w *stream.Writer, s *state, fd *FieldDescriptor, fn func(*FieldWriter) error) error {
	fw := &FieldWriter{w: w, st: s, field: fd}
	for i := 0; ; i++ {
		fw.index, fw.count, fw.live = i, 0, true
		err := fn(fw)
		fw.live = false
		if err != nil {
			return s.callbackErr(elemName(fd, i), err)
		}
		if fw.count == 0 || !fd.Repeated {
			return nil
		}
	}
}
