// Package converter maps local Go values to and from protobuf messages
// without requiring their shapes to match.
//
// A Message converter describes one message type with three functions.
// EncoderInit and DecoderInit build a wire shadow whose variable-length
// fields are wire.Callback values bound to the local object, and
// DecoderApply copies scalar results back once decoding is complete.
// Arrays, strings, bytes, nested messages and unions plug into those
// shadows through the Encoder and Decoder methods of their converters.
// Every converter also implements Item, so any of them can be the element
// converter of an Array.
//
//	inner := converter.Message[Inner, InnerShadow]{
//		Descriptor: innerDesc,
//		EncoderInit: func(v *Inner) InnerShadow {
//			return InnerShadow{Number: v.Number, Text: converter.String{}.Encoder(&v.Text)}
//		},
//		DecoderInit: func(v *Inner) InnerShadow {
//			return InnerShadow{Text: converter.String{}.Decoder(&v.Text)}
//		},
//		DecoderApply: func(p *InnerShadow, v *Inner) error {
//			v.Number = p.Number
//			return nil
//		},
//	}
//
// Converters hold no per-call state and are safe for concurrent use. Shadows
// and the callbacks inside them live for a single Encode or Decode call.
package converter
