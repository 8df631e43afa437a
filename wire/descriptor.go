package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/pbconv/errors"
)

// MessageDescriptor describes one message type: its fields in declaration
// order and the oneof groups some of them belong to.
type MessageDescriptor struct {
	Name   string
	Fields []FieldDescriptor
	Oneofs []OneofDescriptor
}

// FieldDescriptor describes a single field of a message.
type FieldDescriptor struct {
	Name string
	// GoName overrides the shadow struct field the descriptor binds to.
	GoName   string
	Number   Number
	Kind     Kind
	Repeated bool
	Message  *MessageDescriptor // KindMessage only
	Enum     *EnumDescriptor    // KindEnum, optional
	Oneof    string             // name of the containing oneof
}

// OneofDescriptor names a group of mutually exclusive fields.
type OneofDescriptor struct {
	Name   string
	GoName string
}

// EnumDescriptor lists the named values of an enum type.
type EnumDescriptor struct {
	Name   string
	Values []EnumValueDescriptor
}

type EnumValueDescriptor struct {
	Name   string
	Number int32
}

// FieldByName returns the field with the given schema name.
func (d *MessageDescriptor) FieldByName(name string) *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldByNumber returns the field with the given number.
func (d *MessageDescriptor) FieldByNumber(num Number) *FieldDescriptor {
	for i := range d.Fields {
		if d.Fields[i].Number == num {
			return &d.Fields[i]
		}
	}
	return nil
}

// OneofIndex returns the position of the named oneof, or -1.
func (d *MessageDescriptor) OneofIndex(name string) int {
	for i := range d.Oneofs {
		if d.Oneofs[i].Name == name {
			return i
		}
	}
	return -1
}

// Members returns the fields that belong to the named oneof.
func (d *MessageDescriptor) Members(oneof string) []*FieldDescriptor {
	var out []*FieldDescriptor
	for i := range d.Fields {
		if d.Fields[i].Oneof == oneof {
			out = append(out, &d.Fields[i])
		}
	}
	return out
}

// ValueName returns the name of an enum number.
func (e *EnumDescriptor) ValueName(num int32) (string, bool) {
	for _, v := range e.Values {
		if v.Number == num {
			return v.Name, true
		}
	}
	return "", false
}

// ValueNumber returns the number of a named enum value.
func (e *EnumDescriptor) ValueNumber(name string) (int32, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Number, true
		}
	}
	return 0, false
}

// Validate checks the descriptor for structural errors. Nested message
// descriptors are checked when they are bound.
func (d *MessageDescriptor) Validate() error {
	if d == nil {
		return errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("message descriptor cannot be nil").
			Build()
	}

	path := []string{d.Name}
	numbers := make(map[Number]string, len(d.Fields))
	names := make(map[string]bool, len(d.Fields))

	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Name == "" {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "field %d has no name", i)
		}
		if names[f.Name] {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "duplicate field name %q", f.Name)
		}
		names[f.Name] = true

		if f.Number < protowire.MinValidNumber || f.Number > protowire.MaxValidNumber {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "field %q has invalid number %d", f.Name, f.Number)
		}
		if f.Number >= protowire.FirstReservedNumber && f.Number <= protowire.LastReservedNumber {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "field %q uses reserved number %d", f.Name, f.Number)
		}
		if prev, ok := numbers[f.Number]; ok {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "fields %q and %q share number %d", prev, f.Name, f.Number)
		}
		numbers[f.Number] = f.Name

		if f.Kind == KindInvalid || f.Kind > KindMessage {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "field %q has invalid kind", f.Name)
		}
		if f.Kind == KindMessage && f.Message == nil {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "message field %q has no descriptor", f.Name)
		}
		if f.Oneof != "" {
			if d.OneofIndex(f.Oneof) < 0 {
				return errors.SchemaMismatch(errors.PhaseCompile, path, "field %q refers to unknown oneof %q", f.Name, f.Oneof)
			}
			if f.Repeated {
				return errors.SchemaMismatch(errors.PhaseCompile, path, "oneof member %q cannot be repeated", f.Name)
			}
		}
	}

	for _, o := range d.Oneofs {
		if names[o.Name] {
			return errors.SchemaMismatch(errors.PhaseCompile, path, "oneof %q collides with a field name", o.Name)
		}
		names[o.Name] = true
	}
	return nil
}
