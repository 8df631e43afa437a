package converter

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

// Variant is a member of a closed set of local types sharing a union.
// Tag identifies the concrete type.
type Variant[K comparable] interface {
	Tag() K
}

// Case binds one variant of the local union L to one oneof member.
type Case[L Variant[K], K comparable] struct {
	tag    K
	number wire.Number
	name   string
	err    error
	encode func(fw *wire.FieldWriter, local L) error
	decode func(fr *wire.FieldReader) (L, error)
}

// UnionCase binds tag to the oneof member numbered number. The variant is
// stored in L as a *V and converted with m.
func UnionCase[L Variant[K], V, P any, K comparable](tag K, number wire.Number, m Message[V, P]) Case[L, K] {
	want := reflect.TypeOf((**V)(nil)).Elem()
	c := Case[L, K]{tag: tag, number: number, name: want.String()}

	if _, ok := any(new(V)).(L); !ok {
		c.err = errors.TypeMismatch(errors.PhaseCompile, nil, want.String(), reflect.TypeOf((*L)(nil)).Elem().String())
		return c
	}

	c.encode = func(fw *wire.FieldWriter, local L) error {
		v, ok := any(local).(*V)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, nil, fmt.Sprintf("%T", local), want.String())
		}
		if v == nil {
			return errors.NilPointer(errors.PhaseEncode, nil, want.String())
		}
		return m.EncodeItem(fw, v)
	}
	c.decode = func(fr *wire.FieldReader) (L, error) {
		v := new(V)
		if err := m.DecodeItem(fr, v); err != nil {
			var zero L
			return zero, err
		}
		return any(v).(L), nil
	}
	return c
}

// Union converts an interface-typed local value to a oneof. Each case
// pairs a tag with a member; Default supplies the value used when the
// input carries no member this union knows.
type Union[L Variant[K], K comparable] struct {
	cases []Case[L, K]
	byTag map[K]int
	byNum map[wire.Number]int
	def   func() L
}

// NewUnion validates the cases: tags and member numbers must be unique
// and def must be set.
func NewUnion[L Variant[K], K comparable](def func() L, cases ...Case[L, K]) (*Union[L, K], error) {
	if def == nil {
		return nil, errors.InvalidInput(errors.PhaseCompile, "union requires a default variant")
	}
	u := &Union[L, K]{
		cases: cases,
		byTag: make(map[K]int, len(cases)),
		byNum: make(map[wire.Number]int, len(cases)),
		def:   def,
	}
	for i, c := range cases {
		if c.err != nil {
			return nil, c.err
		}
		if _, dup := u.byTag[c.tag]; dup {
			return nil, errors.InvalidInput(errors.PhaseCompile, fmt.Sprintf("union tag %v used twice", c.tag))
		}
		if _, dup := u.byNum[c.number]; dup {
			return nil, errors.InvalidInput(errors.PhaseCompile, fmt.Sprintf("union member %d used twice", c.number))
		}
		u.byTag[c.tag] = i
		u.byNum[c.number] = i
	}
	return u, nil
}

// MustUnion is like NewUnion but panics on invalid cases.
func MustUnion[L Variant[K], K comparable](def func() L, cases ...Case[L, K]) *Union[L, K] {
	u, err := NewUnion(def, cases...)
	if err != nil {
		panic(err)
	}
	return u
}

// Default returns a fresh default variant.
func (u *Union[L, K]) Default() L {
	return u.def()
}

// Encoder selects the member matching the tag of *local. A nil value or
// a tag without a case leaves the oneof empty.
func (u *Union[L, K]) Encoder(local *L) wire.Oneof {
	var o wire.Oneof
	v := *local
	if any(v) == nil {
		return o
	}
	i, ok := u.byTag[v.Tag()]
	if !ok {
		Logger().Debug("union variant has no member, oneof left empty",
			zap.Any("tag", v.Tag()))
		return o
	}
	c := &u.cases[i]
	o.Which = c.number
	o.Encode = func(fw *wire.FieldWriter) error {
		return c.encode(fw, v)
	}
	return o
}

// Decoder stores the variant for the last member seen into *local.
// A member without a case, or no member at all, yields Default.
func (u *Union[L, K]) Decoder(local *L) wire.Oneof {
	known := false
	return wire.Oneof{
		Decode: func(fr *wire.FieldReader) error {
			i, ok := u.byNum[fr.Field().Number]
			if !ok {
				known = false
				Logger().Debug("oneof member has no union case",
					zap.String("member", fr.Field().Name))
				return nil
			}
			v, err := u.cases[i].decode(fr)
			if err != nil {
				return err
			}
			*local = v
			known = true
			return nil
		},
		Done: func() error {
			if !known {
				*local = u.def()
			}
			return nil
		},
	}
}

// Message returns a converter for a message whose content is the named
// oneof alone.
func (u *Union[L, K]) Message(desc *wire.MessageDescriptor, oneof string) (Message[L, *wire.Dynamic], error) {
	idx := desc.OneofIndex(oneof)
	if idx < 0 {
		return Message[L, *wire.Dynamic]{}, errors.NotFound(errors.PhaseCompile, "oneof", oneof)
	}
	return Message[L, *wire.Dynamic]{
		Descriptor: desc,
		EncoderInit: func(local *L) *wire.Dynamic {
			d := wire.NewDynamic(desc)
			d.Oneofs[idx] = u.Encoder(local)
			return d
		},
		DecoderInit: func(local *L) *wire.Dynamic {
			d := wire.NewDynamic(desc)
			d.Oneofs[idx] = u.Decoder(local)
			return d
		},
	}, nil
}
