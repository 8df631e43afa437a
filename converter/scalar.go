package converter

import "github.com/wippyai/pbconv/wire"

// Item converts one value to or from one occurrence of a field. Repeated
// fields apply an Item once per element.
type Item[T any] interface {
	EncodeItem(fw *wire.FieldWriter, v *T) error
	DecodeItem(fr *wire.FieldReader, v *T) error
}

// Scalar is the item converter for one protobuf scalar kind. Scalars map
// to themselves, so Encode and Decode are identities kept for symmetry
// with Enum in EncoderInit and DecoderApply code.
type Scalar[T any] struct {
	write func(*wire.FieldWriter, T) error
	read  func(*wire.FieldReader) (T, error)
}

func (s Scalar[T]) EncodeItem(fw *wire.FieldWriter, v *T) error {
	return s.write(fw, *v)
}

func (s Scalar[T]) DecodeItem(fr *wire.FieldReader, v *T) error {
	x, err := s.read(fr)
	if err != nil {
		return err
	}
	*v = x
	return nil
}

func (Scalar[T]) Encode(v T) T { return v }
func (Scalar[T]) Decode(v T) T { return v }

var (
	Int32    = Scalar[int32]{write: (*wire.FieldWriter).WriteInt32, read: (*wire.FieldReader).ReadInt32}
	SInt32   = Scalar[int32]{write: (*wire.FieldWriter).WriteSInt32, read: (*wire.FieldReader).ReadSInt32}
	UInt32   = Scalar[uint32]{write: (*wire.FieldWriter).WriteUInt32, read: (*wire.FieldReader).ReadUInt32}
	Fixed32  = Scalar[uint32]{write: (*wire.FieldWriter).WriteFixed32, read: (*wire.FieldReader).ReadFixed32}
	SFixed32 = Scalar[int32]{write: (*wire.FieldWriter).WriteSFixed32, read: (*wire.FieldReader).ReadSFixed32}
	Int64    = Scalar[int64]{write: (*wire.FieldWriter).WriteInt64, read: (*wire.FieldReader).ReadInt64}
	SInt64   = Scalar[int64]{write: (*wire.FieldWriter).WriteSInt64, read: (*wire.FieldReader).ReadSInt64}
	UInt64   = Scalar[uint64]{write: (*wire.FieldWriter).WriteUInt64, read: (*wire.FieldReader).ReadUInt64}
	Fixed64  = Scalar[uint64]{write: (*wire.FieldWriter).WriteFixed64, read: (*wire.FieldReader).ReadFixed64}
	SFixed64 = Scalar[int64]{write: (*wire.FieldWriter).WriteSFixed64, read: (*wire.FieldReader).ReadSFixed64}
	Float    = Scalar[float32]{write: (*wire.FieldWriter).WriteFloat, read: (*wire.FieldReader).ReadFloat}
	Double   = Scalar[float64]{write: (*wire.FieldWriter).WriteDouble, read: (*wire.FieldReader).ReadDouble}
	Bool     = Scalar[bool]{write: (*wire.FieldWriter).WriteBool, read: (*wire.FieldReader).ReadBool}
)
