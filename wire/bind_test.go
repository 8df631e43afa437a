package wire

import (
	"reflect"
	"testing"

	"github.com/wippyai/pbconv/errors"
)

func TestBindCachesBindings(t *testing.T) {
	c := NewBinder()
	a, err := c.Bind(pointDesc, reflect.TypeOf(point{}))
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Bind(pointDesc, reflect.TypeOf(&point{}))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected the cached binding for the pointer type")
	}
	if a.Descriptor() != pointDesc || a.GoType() != reflect.TypeOf(point{}) {
		t.Error("binding reports wrong descriptor or type")
	}
}

func TestBindFieldMatching(t *testing.T) {
	desc := &MessageDescriptor{
		Name: "Names",
		Fields: []FieldDescriptor{
			{Name: "inner_number", Number: 1, Kind: KindUInt32},
			{Name: "tagged", Number: 2, Kind: KindBool},
			{Name: "renamed", GoName: "Other", Number: 3, Kind: KindInt64},
		},
	}
	type names struct {
		Tagged      Callback
		Flag        bool `pb:"tagged"`
		InnerNumber uint32
		Other       int64
	}

	b, err := NewBinder().Bind(desc, reflect.TypeOf(names{}))
	if err != nil {
		t.Fatal(err)
	}
	tagged := b.lookup(2)
	if tagged.mode != modeScalar {
		t.Error("pb tag should take precedence over a name match")
	}
	if b.lookup(1).mode != modeScalar || b.lookup(3).mode != modeScalar {
		t.Error("snake case and explicit names should bind")
	}
}

func TestBindErrors(t *testing.T) {
	type wrongScalar struct {
		X, Y  int64
		Label Callback
	}
	type missing struct {
		X int32
	}
	type stringField struct {
		X, Y  int32
		Label string
	}
	type repeatedScalar struct {
		Values int32
	}
	type noOneof struct {
		ID   uint64
		Pick int
	}

	tests := []struct {
		name   string
		desc   *MessageDescriptor
		goType reflect.Type
		kind   errors.Kind
	}{
		{"scalar kind", pointDesc, reflect.TypeOf(wrongScalar{}), errors.KindTypeMismatch},
		{"missing field", pointDesc, reflect.TypeOf(missing{}), errors.KindFieldMissing},
		{"string without callback", pointDesc, reflect.TypeOf(stringField{}), errors.KindTypeMismatch},
		{"repeated without callback", listDesc, reflect.TypeOf(repeatedScalar{}), errors.KindTypeMismatch},
		{"oneof slot type", choiceDesc, reflect.TypeOf(noOneof{}), errors.KindTypeMismatch},
		{"not a struct", pointDesc, reflect.TypeOf(0), errors.KindTypeMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBinder().Bind(tc.desc, tc.goType)
			assertKind(t, err, tc.kind)
		})
	}
}

func TestBindNil(t *testing.T) {
	_, err := Bind(nil, reflect.TypeOf(point{}))
	assertKind(t, err, errors.KindNilPointer)

	_, err = Bind(pointDesc, nil)
	assertKind(t, err, errors.KindNilPointer)
}

func TestDescriptorValidate(t *testing.T) {
	tests := []struct {
		name string
		desc MessageDescriptor
	}{
		{"duplicate number", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 1, Kind: KindInt32},
			{Name: "b", Number: 1, Kind: KindInt32},
		}}},
		{"duplicate name", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 1, Kind: KindInt32},
			{Name: "a", Number: 2, Kind: KindInt32},
		}}},
		{"zero number", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 0, Kind: KindInt32},
		}}},
		{"reserved number", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 19000, Kind: KindInt32},
		}}},
		{"missing kind", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 1},
		}}},
		{"message without descriptor", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 1, Kind: KindMessage},
		}}},
		{"unknown oneof", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 1, Kind: KindInt32, Oneof: "o"},
		}}},
		{"repeated member", MessageDescriptor{Name: "M", Fields: []FieldDescriptor{
			{Name: "a", Number: 1, Kind: KindInt32, Oneof: "o", Repeated: true},
		}, Oneofs: []OneofDescriptor{{Name: "o"}}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertKind(t, tc.desc.Validate(), errors.KindSchemaMismatch)
		})
	}

	if err := choiceDesc.Validate(); err != nil {
		t.Errorf("valid descriptor rejected: %v", err)
	}
}

func TestDescriptorLookups(t *testing.T) {
	if f := choiceDesc.FieldByName("text"); f == nil || f.Number != 3 {
		t.Error("FieldByName failed")
	}
	if f := choiceDesc.FieldByNumber(2); f == nil || f.Name != "num" {
		t.Error("FieldByNumber failed")
	}
	if choiceDesc.FieldByNumber(42) != nil {
		t.Error("FieldByNumber should miss")
	}
	if got := len(choiceDesc.Members("pick")); got != 2 {
		t.Errorf("Members = %d, want 2", got)
	}

	enum := &EnumDescriptor{Name: "Color", Values: []EnumValueDescriptor{{"RED", 0}, {"BLUE", 2}}}
	if name, ok := enum.ValueName(2); !ok || name != "BLUE" {
		t.Error("ValueName failed")
	}
	if num, ok := enum.ValueNumber("RED"); !ok || num != 0 {
		t.Error("ValueNumber failed")
	}
	if _, ok := enum.ValueName(1); ok {
		t.Error("ValueName should miss")
	}
}
