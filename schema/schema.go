// Package schema loads message descriptors from YAML files.
//
// A schema file lists enums and messages. A field's type is either a
// scalar kind name ("int32", "string", "bytes", ...) or the name of an
// enum or message declared in the same file:
//
//	enums:
//	  - name: Status
//	    values:
//	      - {name: UNKNOWN, number: 0}
//	      - {name: ACTIVE, number: 1}
//	messages:
//	  - name: Item
//	    fields:
//	      - {name: text, number: 1, type: string}
//	      - {name: status, number: 2, type: Status}
//	      - {name: children, number: 3, type: Item, repeated: true}
//	    oneofs: [payload]
//
// References may point forward and may be recursive.
package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/wire"
)

type file struct {
	Enums    []enumDecl    `yaml:"enums"`
	Messages []messageDecl `yaml:"messages"`
}

type enumDecl struct {
	Name   string      `yaml:"name"`
	Values []valueDecl `yaml:"values"`
}

type valueDecl struct {
	Name   string `yaml:"name"`
	Number int32  `yaml:"number"`
}

type messageDecl struct {
	Name   string      `yaml:"name"`
	Fields []fieldDecl `yaml:"fields"`
	Oneofs []string    `yaml:"oneofs"`
}

type fieldDecl struct {
	Name     string `yaml:"name"`
	GoName   string `yaml:"go_name"`
	Number   int32  `yaml:"number"`
	Type     string `yaml:"type"`
	Repeated bool   `yaml:"repeated"`
	Oneof    string `yaml:"oneof"`
}

// Set holds the resolved descriptors of one schema file.
type Set struct {
	messages map[string]*wire.MessageDescriptor
	enums    map[string]*wire.EnumDescriptor
}

// Load reads and parses the schema file at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load(fmt.Sprintf("read schema %s", path), err)
	}
	return Parse(data)
}

// Parse decodes a YAML schema and resolves every type reference. All
// reference and validation errors are reported together.
func Parse(data []byte) (*Set, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.ParseFailed("schema", err)
	}
	return compile(&f)
}

func compile(f *file) (*Set, error) {
	s := &Set{
		messages: make(map[string]*wire.MessageDescriptor, len(f.Messages)),
		enums:    make(map[string]*wire.EnumDescriptor, len(f.Enums)),
	}
	var errs error

	for _, e := range f.Enums {
		if e.Name == "" {
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseCompile, "enum without a name"))
			continue
		}
		if s.declared(e.Name) {
			errs = multierr.Append(errs, errors.SchemaMismatch(errors.PhaseCompile, []string{e.Name}, "type declared twice"))
			continue
		}
		ed := &wire.EnumDescriptor{Name: e.Name}
		for _, v := range e.Values {
			ed.Values = append(ed.Values, wire.EnumValueDescriptor{Name: v.Name, Number: v.Number})
		}
		s.enums[e.Name] = ed
	}

	// Allocate every message first so fields can refer to any of them.
	for _, m := range f.Messages {
		if m.Name == "" {
			errs = multierr.Append(errs, errors.InvalidInput(errors.PhaseCompile, "message without a name"))
			continue
		}
		if s.declared(m.Name) {
			errs = multierr.Append(errs, errors.SchemaMismatch(errors.PhaseCompile, []string{m.Name}, "type declared twice"))
			continue
		}
		s.messages[m.Name] = &wire.MessageDescriptor{Name: m.Name}
	}

	for _, m := range f.Messages {
		md, ok := s.messages[m.Name]
		if !ok || md.Fields != nil || md.Oneofs != nil {
			continue
		}
		for _, o := range m.Oneofs {
			md.Oneofs = append(md.Oneofs, wire.OneofDescriptor{Name: o})
		}
		md.Fields = make([]wire.FieldDescriptor, 0, len(m.Fields))
		for _, fd := range m.Fields {
			field, err := s.resolveField(m.Name, fd)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			md.Fields = append(md.Fields, field)
		}
		errs = multierr.Append(errs, md.Validate())
	}

	if errs != nil {
		return nil, errs
	}
	return s, nil
}

func (s *Set) declared(name string) bool {
	_, m := s.messages[name]
	_, e := s.enums[name]
	return m || e
}

func (s *Set) resolveField(msg string, fd fieldDecl) (wire.FieldDescriptor, error) {
	out := wire.FieldDescriptor{
		Name:     fd.Name,
		GoName:   fd.GoName,
		Number:   wire.Number(fd.Number),
		Repeated: fd.Repeated,
		Oneof:    fd.Oneof,
	}
	path := []string{msg, fd.Name}

	if k, ok := wire.ParseKind(fd.Type); ok && k != wire.KindEnum && k != wire.KindMessage {
		out.Kind = k
		return out, nil
	}
	if e, ok := s.enums[fd.Type]; ok {
		out.Kind = wire.KindEnum
		out.Enum = e
		return out, nil
	}
	if m, ok := s.messages[fd.Type]; ok {
		out.Kind = wire.KindMessage
		out.Message = m
		return out, nil
	}
	if fd.Type == "" {
		return out, errors.SchemaMismatch(errors.PhaseCompile, path, "field has no type")
	}
	return out, errors.SchemaMismatch(errors.PhaseCompile, path, "unknown type %q", fd.Type)
}

// Message returns the descriptor of a declared message.
func (s *Set) Message(name string) (*wire.MessageDescriptor, error) {
	if m, ok := s.messages[name]; ok {
		return m, nil
	}
	return nil, errors.NotFound(errors.PhaseCompile, "message", name)
}

// Enum returns the descriptor of a declared enum.
func (s *Set) Enum(name string) (*wire.EnumDescriptor, error) {
	if e, ok := s.enums[name]; ok {
		return e, nil
	}
	return nil, errors.NotFound(errors.PhaseCompile, "enum", name)
}

// Messages returns the declared message names in sorted order.
func (s *Set) Messages() []string {
	names := make([]string, 0, len(s.messages))
	for n := range s.messages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
