package converter

import (
	"reflect"

	"github.com/wippyai/pbconv/wire"
)

// Message converts a local type L through a wire shadow P.
//
// EncoderInit builds a shadow from the local value: scalars copied, other
// fields bound to callbacks reading from local. DecoderInit builds a shadow
// whose callbacks write into local. DecoderApply runs once the codec has
// finished the message and copies the shadow's scalars into local. A nil
// DecoderApply means there is nothing to copy.
type Message[L, P any] struct {
	Descriptor   *wire.MessageDescriptor
	EncoderInit  func(local *L) P
	DecoderInit  func(local *L) P
	DecoderApply func(shadow *P, local *L) error
}

// Bind checks the descriptor against the shadow type ahead of the first
// conversion.
func (m Message[L, P]) Bind() error {
	_, err := wire.Bind(m.Descriptor, reflect.TypeOf((*P)(nil)).Elem())
	return err
}

func (m Message[L, P]) encoderInit(local *L) P {
	if m.EncoderInit == nil {
		var zero P
		return zero
	}
	return m.EncoderInit(local)
}

func (m Message[L, P]) decoderInit(local *L) P {
	if m.DecoderInit == nil {
		var zero P
		return zero
	}
	return m.DecoderInit(local)
}

func (m Message[L, P]) apply(shadow *P, local *L) error {
	if m.DecoderApply == nil {
		return nil
	}
	return m.DecoderApply(shadow, local)
}

// EncodeItem writes v as one occurrence of a message field.
func (m Message[L, P]) EncodeItem(fw *wire.FieldWriter, v *L) error {
	shadow := m.encoderInit(v)
	return fw.WriteMessage(&shadow, m.Descriptor)
}

// DecodeItem reads one message occurrence into v. The apply step runs
// after the nested message is complete.
func (m Message[L, P]) DecodeItem(fr *wire.FieldReader, v *L) error {
	shadow := m.decoderInit(v)
	if err := fr.ReadMessage(&shadow, m.Descriptor); err != nil {
		return err
	}
	return m.apply(&shadow, v)
}

// Encoder returns a callback for a singular nested message field.
func (m Message[L, P]) Encoder(v *L) wire.Callback {
	return wire.Callback{Encode: func(fw *wire.FieldWriter) error {
		return m.EncodeItem(fw, v)
	}}
}

// Decoder returns a callback for a singular nested message field.
func (m Message[L, P]) Decoder(v *L) wire.Callback {
	return wire.Callback{Decode: func(fr *wire.FieldReader) error {
		return m.DecodeItem(fr, v)
	}}
}
