package converter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

// EnumValue pairs a local enum value with its wire number.
type EnumValue[L comparable] struct {
	Local L
	Wire  int32
}

// Enum maps a local enum type to wire numbers through an explicit table.
// Values missing from the table fall back to the Invalid pair in both
// directions instead of failing.
type Enum[L comparable] struct {
	toWire      map[L]int32
	toLocal     map[int32]L
	name        string
	invalid     L
	invalidWire int32
}

// NewEnum builds an enum converter. The invalid pair is added to the table
// when it is not listed. A local or wire value mapped twice is an error,
// including one that collides with the invalid pair.
func NewEnum[L comparable](name string, invalid L, invalidWire int32, values ...EnumValue[L]) (*Enum[L], error) {
	e := &Enum[L]{
		toWire:      make(map[L]int32, len(values)+1),
		toLocal:     make(map[int32]L, len(values)+1),
		name:        name,
		invalid:     invalid,
		invalidWire: invalidWire,
	}
	for _, v := range values {
		if _, dup := e.toWire[v.Local]; dup {
			return nil, errors.InvalidInput(errors.PhaseCompile,
				fmt.Sprintf("enum %s: local value %v mapped twice", name, v.Local))
		}
		if _, dup := e.toLocal[v.Wire]; dup {
			return nil, errors.InvalidInput(errors.PhaseCompile,
				fmt.Sprintf("enum %s: wire value %d mapped twice", name, v.Wire))
		}
		e.toWire[v.Local] = v.Wire
		e.toLocal[v.Wire] = v.Local
	}
	if w, ok := e.toWire[invalid]; ok && w != invalidWire {
		return nil, errors.InvalidInput(errors.PhaseCompile,
			fmt.Sprintf("enum %s: invalid value %v mapped to %d, not %d", name, invalid, w, invalidWire))
	}
	if l, ok := e.toLocal[invalidWire]; ok && l != invalid {
		return nil, errors.InvalidInput(errors.PhaseCompile,
			fmt.Sprintf("enum %s: invalid wire value %d mapped to %v", name, invalidWire, l))
	}
	e.toWire[invalid] = invalidWire
	e.toLocal[invalidWire] = invalid
	return e, nil
}

// MustEnum is like NewEnum but panics on an inconsistent table.
func MustEnum[L comparable](name string, invalid L, invalidWire int32, values ...EnumValue[L]) *Enum[L] {
	e, err := NewEnum(name, invalid, invalidWire, values...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Enum[L]) Name() string { return e.name }

func (e *Enum[L]) Invalid() L { return e.invalid }

// Encode returns the wire number for v.
func (e *Enum[L]) Encode(v L) int32 {
	if w, ok := e.toWire[v]; ok {
		return w
	}
	Logger().Debug("unmapped enum value encoded as invalid",
		zap.String("enum", e.name),
		zap.Any("value", v))
	return e.invalidWire
}

// Decode returns the local value for a wire number.
func (e *Enum[L]) Decode(v int32) L {
	if l, ok := e.toLocal[v]; ok {
		return l
	}
	Logger().Debug("unknown enum number decoded as invalid",
		zap.String("enum", e.name),
		zap.Int32("number", v))
	return e.invalid
}

func (e *Enum[L]) EncodeItem(fw *wire.FieldWriter, v *L) error {
	return fw.WriteEnum(e.Encode(*v))
}

func (e *Enum[L]) DecodeItem(fr *wire.FieldReader, v *L) error {
	n, err := fr.ReadEnum()
	if err != nil {
		return err
	}
	*v = e.Decode(n)
	return nil
}
