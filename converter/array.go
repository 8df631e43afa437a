package converter

import "github.com/wippyai/pbconv/wire"

// Array converts a container to a repeated field, one element per
// codec invocation in both directions.
type Array[T any] struct {
	Item Item[T]
}

// ArrayOf returns an array converter applying item to every element.
func ArrayOf[T any](item Item[T]) Array[T] {
	return Array[T]{Item: item}
}

// Encoder returns a callback that writes one element of c per call and
// nothing once c is exhausted. The cursor is created here, so the callback
// belongs to a single shadow.
func (a Array[T]) Encoder(c Container[T]) wire.Callback {
	cur := c.Cursor()
	return wire.Callback{Encode: func(fw *wire.FieldWriter) error {
		v, ok := cur.Next()
		if !ok {
			return nil
		}
		return a.Item.EncodeItem(fw, &v)
	}}
}

// Decoder returns a callback that decodes one element per call and
// appends it to c.
func (a Array[T]) Decoder(c Container[T]) wire.Callback {
	return wire.Callback{Decode: func(fr *wire.FieldReader) error {
		var v T
		if err := a.Item.DecodeItem(fr, &v); err != nil {
			return err
		}
		c.PushBack(v)
		return nil
	}}
}

var (
	Int32Array    = ArrayOf[int32](Int32)
	SInt32Array   = ArrayOf[int32](SInt32)
	UInt32Array   = ArrayOf[uint32](UInt32)
	Fixed32Array  = ArrayOf[uint32](Fixed32)
	SFixed32Array = ArrayOf[int32](SFixed32)
	Int64Array    = ArrayOf[int64](Int64)
	SInt64Array   = ArrayOf[int64](SInt64)
	UInt64Array   = ArrayOf[uint64](UInt64)
	Fixed64Array  = ArrayOf[uint64](Fixed64)
	SFixed64Array = ArrayOf[int64](SFixed64)
	FloatArray    = ArrayOf[float32](Float)
	DoubleArray   = ArrayOf[float64](Double)
	BoolArray     = ArrayOf[bool](Bool)
	StringArray   = ArrayOf[string](String{})
	BytesArray    = ArrayOf[[]byte](Bytes{})
)

// EnumArray converts a repeated enum field.
func EnumArray[L comparable](e *Enum[L]) Array[L] {
	return ArrayOf[L](e)
}

// MessageArray converts a repeated message field.
func MessageArray[L, P any](m Message[L, P]) Array[L] {
	return ArrayOf[L](m)
}
