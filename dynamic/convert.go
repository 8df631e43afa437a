// Package dynamic converts messages described only at runtime. Values
// are held in a Record and the wire shadow is a wire.Dynamic, so any
// descriptor, for example one loaded by the schema package, can be
// encoded and decoded without generated Go types.
package dynamic

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/pbconv/converter"
	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

// Converter returns the converter for records of the message desc.
// Nested messages are converted lazily, so recursive descriptors are
// fine.
func Converter(desc *wire.MessageDescriptor) converter.Message[Record, *wire.Dynamic] {
	return converter.Message[Record, *wire.Dynamic]{
		Descriptor: desc,
		EncoderInit: func(local *Record) *wire.Dynamic {
			return encoderShadow(desc, local)
		},
		DecoderInit: func(local *Record) *wire.Dynamic {
			return decoderShadow(desc, local)
		},
	}
}

func encoderShadow(desc *wire.MessageDescriptor, local *Record) *wire.Dynamic {
	d := wire.NewDynamic(desc)
	for i := range desc.Fields {
		fd := &desc.Fields[i]
		if fd.Oneof != "" {
			continue
		}
		v, ok := local.Get(fd.Name)
		if !ok || v == nil {
			continue
		}
		if fd.Repeated {
			d.Fields[i].Encode = listEncoder(v)
			continue
		}
		d.Fields[i].Encode = func(fw *wire.FieldWriter) error {
			return writeValue(fw, v)
		}
	}

	for i := range desc.Oneofs {
		name := desc.Oneofs[i].Name
		// the member set last in the record wins
		var member *wire.FieldDescriptor
		for _, k := range local.Keys() {
			if fd := desc.FieldByName(k); fd != nil && fd.Oneof == name {
				member = fd
			}
		}
		if member == nil {
			continue
		}
		v, _ := local.Get(member.Name)
		d.Oneofs[i].Which = member.Number
		d.Oneofs[i].Encode = func(fw *wire.FieldWriter) error {
			return writeValue(fw, v)
		}
	}
	return d
}

func listEncoder(v any) func(*wire.FieldWriter) error {
	items, ok := v.([]any)
	if !ok {
		return func(fw *wire.FieldWriter) error {
			return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", v), "repeated "+fw.Field().Kind.String())
		}
	}
	next := 0
	return func(fw *wire.FieldWriter) error {
		if next >= len(items) {
			return nil
		}
		next++
		return writeValue(fw, items[next-1])
	}
}

func decoderShadow(desc *wire.MessageDescriptor, local *Record) *wire.Dynamic {
	d := wire.NewDynamic(desc)
	for i := range desc.Fields {
		fd := &desc.Fields[i]
		if fd.Oneof != "" {
			continue
		}
		d.Fields[i].Decode = func(fr *wire.FieldReader) error {
			v, err := readValue(fr)
			if err != nil {
				return err
			}
			if !fd.Repeated {
				local.Set(fd.Name, v)
				return nil
			}
			prev, _ := local.Get(fd.Name)
			items, _ := prev.([]any)
			local.Set(fd.Name, append(items, v))
			return nil
		}
	}

	for i := range desc.Oneofs {
		members := desc.Members(desc.Oneofs[i].Name)
		d.Oneofs[i].Decode = func(fr *wire.FieldReader) error {
			v, err := readValue(fr)
			if err != nil {
				return err
			}
			for _, m := range members {
				if m.Number != fr.Field().Number {
					local.Delete(m.Name)
				}
			}
			local.Set(fr.Field().Name, v)
			return nil
		}
	}
	return d
}

func writeValue(fw *wire.FieldWriter, v any) error {
	fd := fw.Field()
	switch fd.Kind {
	case wire.KindInt32, wire.KindSInt32, wire.KindSFixed32:
		n, err := asInt(v, 32)
		if err != nil {
			return err
		}
		switch fd.Kind {
		case wire.KindSInt32:
			return fw.WriteSInt32(int32(n))
		case wire.KindSFixed32:
			return fw.WriteSFixed32(int32(n))
		}
		return fw.WriteInt32(int32(n))

	case wire.KindUInt32, wire.KindFixed32:
		n, err := asUint(v, 32)
		if err != nil {
			return err
		}
		if fd.Kind == wire.KindFixed32 {
			return fw.WriteFixed32(uint32(n))
		}
		return fw.WriteUInt32(uint32(n))

	case wire.KindInt64, wire.KindSInt64, wire.KindSFixed64:
		n, err := asInt(v, 64)
		if err != nil {
			return err
		}
		switch fd.Kind {
		case wire.KindSInt64:
			return fw.WriteSInt64(n)
		case wire.KindSFixed64:
			return fw.WriteSFixed64(n)
		}
		return fw.WriteInt64(n)

	case wire.KindUInt64, wire.KindFixed64:
		n, err := asUint(v, 64)
		if err != nil {
			return err
		}
		if fd.Kind == wire.KindFixed64 {
			return fw.WriteFixed64(n)
		}
		return fw.WriteUInt64(n)

	case wire.KindFloat:
		f, err := asFloat(v)
		if err != nil {
			return err
		}
		return fw.WriteFloat(float32(f))

	case wire.KindDouble:
		f, err := asFloat(v)
		if err != nil {
			return err
		}
		return fw.WriteDouble(f)

	case wire.KindBool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(errors.PhaseEncode, nil, v, fd.Kind)
		}
		return fw.WriteBool(b)

	case wire.KindEnum:
		n, err := enumNumber(fd, v)
		if err != nil {
			return err
		}
		return fw.WriteEnum(n)

	case wire.KindString:
		s, ok := v.(string)
		if !ok {
			return mismatch(errors.PhaseEncode, nil, v, fd.Kind)
		}
		return fw.WriteString(s)

	case wire.KindBytes:
		switch b := v.(type) {
		case []byte:
			return fw.WriteBytes(b)
		case string:
			return fw.WriteBytes([]byte(b))
		}
		return mismatch(errors.PhaseEncode, nil, v, fd.Kind)

	case wire.KindMessage:
		switch rec := v.(type) {
		case *Record:
			if rec == nil {
				return errors.NilPointer(errors.PhaseEncode, nil, "*dynamic.Record")
			}
			return Converter(fd.Message).EncodeItem(fw, rec)
		case Record:
			return Converter(fd.Message).EncodeItem(fw, &rec)
		}
		return mismatch(errors.PhaseEncode, nil, v, fd.Kind)
	}
	return errors.Unsupported(errors.PhaseEncode, "field kind "+fd.Kind.String())
}

func enumNumber(fd *wire.FieldDescriptor, v any) (int32, error) {
	if name, ok := v.(string); ok {
		if fd.Enum != nil {
			if n, ok := fd.Enum.ValueNumber(name); ok {
				return n, nil
			}
		}
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidEnum).
			WireType(fd.Kind.String()).
			Value(name).
			Detail("unknown enum value %q", name).
			Build()
	}
	n, err := asInt(v, 32)
	return int32(n), err
}

func readValue(fr *wire.FieldReader) (any, error) {
	fd := fr.Field()
	switch fd.Kind {
	case wire.KindInt32:
		return fr.ReadInt32()
	case wire.KindSInt32:
		return fr.ReadSInt32()
	case wire.KindSFixed32:
		return fr.ReadSFixed32()
	case wire.KindUInt32:
		return fr.ReadUInt32()
	case wire.KindFixed32:
		return fr.ReadFixed32()
	case wire.KindInt64:
		return fr.ReadInt64()
	case wire.KindSInt64:
		return fr.ReadSInt64()
	case wire.KindSFixed64:
		return fr.ReadSFixed64()
	case wire.KindUInt64:
		return fr.ReadUInt64()
	case wire.KindFixed64:
		return fr.ReadFixed64()
	case wire.KindFloat:
		return fr.ReadFloat()
	case wire.KindDouble:
		return fr.ReadDouble()
	case wire.KindBool:
		return fr.ReadBool()
	case wire.KindEnum:
		n, err := fr.ReadEnum()
		if err != nil {
			return nil, err
		}
		return enumValue(fd, n), nil
	case wire.KindString:
		return fr.ReadString()
	case wire.KindBytes:
		return fr.ReadBytes()
	case wire.KindMessage:
		rec := NewRecord()
		if err := Converter(fd.Message).DecodeItem(fr, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "field kind "+fd.Kind.String())
}

func enumValue(fd *wire.FieldDescriptor, n int32) any {
	if fd.Enum != nil {
		if name, ok := fd.Enum.ValueName(n); ok {
			return name
		}
	}
	converter.Logger().Debug("enum number has no name",
		zap.String("field", fd.Name),
		zap.Int32("number", n))
	return n
}
