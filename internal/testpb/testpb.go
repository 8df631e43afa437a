// Package testpb holds descriptors and shadows for the messages used in
// tests and examples.
package testpb

import (
	"sync"

	"github.com/wippyai/pbconv/wire"
)

// SimpleEnum wire numbers.
const (
	SimpleEnumInvalid  int32 = 0
	SimpleEnumValueOne int32 = 1
	SimpleEnumValueTwo int32 = 2
)

var SimpleEnumDesc = &wire.EnumDescriptor{
	Name: "SimpleEnum",
	Values: []wire.EnumValueDescriptor{
		{Name: "Invalid", Number: SimpleEnumInvalid},
		{Name: "ValueOne", Number: SimpleEnumValueOne},
		{Name: "ValueTwo", Number: SimpleEnumValueTwo},
	},
}

// Repeated is the shadow of every Repeated_<Kind> message.
type Repeated struct {
	Values wire.Callback
}

var (
	repeatedMu    sync.Mutex
	repeatedDescs = map[wire.Kind]*wire.MessageDescriptor{}
)

// RepeatedDesc returns the descriptor of a message with a single repeated
// field "values" of the given kind.
func RepeatedDesc(kind wire.Kind) *wire.MessageDescriptor {
	repeatedMu.Lock()
	defer repeatedMu.Unlock()

	if d, ok := repeatedDescs[kind]; ok {
		return d
	}
	f := wire.FieldDescriptor{Name: "values", Number: 1, Kind: kind, Repeated: true}
	if kind == wire.KindEnum {
		f.Enum = SimpleEnumDesc
	}
	d := &wire.MessageDescriptor{
		Name:   "Repeated_" + kind.String(),
		Fields: []wire.FieldDescriptor{f},
	}
	repeatedDescs[kind] = d
	return d
}

type InnerMessage struct {
	Text   wire.Callback
	Number uint32
}

var InnerMessageDesc = &wire.MessageDescriptor{
	Name: "InnerMessage",
	Fields: []wire.FieldDescriptor{
		{Name: "number", Number: 1, Kind: wire.KindUInt32},
		{Name: "text", Number: 2, Kind: wire.KindString},
	},
}

type OuterMessage struct {
	Items  wire.Callback
	Number int32
}

var OuterMessageDesc = &wire.MessageDescriptor{
	Name: "OuterMessage",
	Fields: []wire.FieldDescriptor{
		{Name: "number", Number: 1, Kind: wire.KindInt32},
		{Name: "items", Number: 2, Kind: wire.KindMessage, Message: InnerMessageDesc, Repeated: true},
	},
}

type TestMessage struct {
	Values wire.Callback
}

var TestMessageDesc = &wire.MessageDescriptor{
	Name: "TestMessage",
	Fields: []wire.FieldDescriptor{
		{Name: "values", Number: 1, Kind: wire.KindString, Repeated: true},
	},
}

type UnionInnerOne struct {
	Number int32
}

var UnionInnerOneDesc = &wire.MessageDescriptor{
	Name: "UnionInnerOne",
	Fields: []wire.FieldDescriptor{
		{Name: "number", Number: 1, Kind: wire.KindInt32},
	},
}

type UnionInnerTwo struct {
	Str wire.Callback
}

var UnionInnerTwoDesc = &wire.MessageDescriptor{
	Name: "UnionInnerTwo",
	Fields: []wire.FieldDescriptor{
		{Name: "str", Number: 1, Kind: wire.KindString},
	},
}

type UnionInnerThree struct {
	Values wire.Callback
}

var UnionInnerThreeDesc = &wire.MessageDescriptor{
	Name: "UnionInnerThree",
	Fields: []wire.FieldDescriptor{
		{Name: "values", Number: 1, Kind: wire.KindUInt32, Repeated: true},
	},
}

// UnionContainer member numbers.
const (
	UnionContainerOne   wire.Number = 1
	UnionContainerTwo   wire.Number = 2
	UnionContainerThree wire.Number = 3
)

type UnionContainer struct {
	Payload wire.Oneof
}

var UnionContainerDesc = &wire.MessageDescriptor{
	Name: "UnionContainer",
	Fields: []wire.FieldDescriptor{
		{Name: "one", Number: UnionContainerOne, Kind: wire.KindMessage, Message: UnionInnerOneDesc, Oneof: "payload"},
		{Name: "two", Number: UnionContainerTwo, Kind: wire.KindMessage, Message: UnionInnerTwoDesc, Oneof: "payload"},
		{Name: "three", Number: UnionContainerThree, Kind: wire.KindMessage, Message: UnionInnerThreeDesc, Oneof: "payload"},
	},
	Oneofs: []wire.OneofDescriptor{{Name: "payload"}},
}
