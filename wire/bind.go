package wire

import (
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/pbconv/errors"
)

var (
	callbackType = reflect.TypeOf(Callback{})
	oneofType    = reflect.TypeOf(Oneof{})
	dynamicType  = reflect.TypeOf(Dynamic{})
)

type fieldMode uint8

const (
	modeScalar fieldMode = iota
	modeCallback
	modeNested
	modeMember // oneof member, stored in the group's Oneof slot
)

// Binding is a descriptor resolved against a shadow type: every field has
// an offset into the shadow and a known access mode.
type Binding struct {
	desc    *MessageDescriptor
	goType  reflect.Type
	fields  []boundField
	oneofs  []boundOneof
	number  map[Number]int
	dynamic bool
}

type boundField struct {
	desc   *FieldDescriptor
	nested *Binding
	offset uintptr
	index  int // position in the descriptor, used for Dynamic shadows
	oneof  int // index into Binding.oneofs for members, -1 otherwise
	mode   fieldMode
}

type boundOneof struct {
	desc   *OneofDescriptor
	offset uintptr
	index  int
}

// Descriptor returns the bound message descriptor.
func (b *Binding) Descriptor() *MessageDescriptor { return b.desc }

// GoType returns the bound shadow type.
func (b *Binding) GoType() reflect.Type { return b.goType }

func (b *Binding) lookup(num Number) *boundField {
	if i, ok := b.number[num]; ok {
		return &b.fields[i]
	}
	return nil
}

func (b *Binding) fieldPtr(base unsafe.Pointer, f *boundField) unsafe.Pointer {
	if b.dynamic {
		return unsafe.Pointer(&(*Dynamic)(base).Fields[f.index])
	}
	return unsafe.Add(base, f.offset)
}

func (b *Binding) oneofPtr(base unsafe.Pointer, i int) *Oneof {
	if b.dynamic {
		return &(*Dynamic)(base).Oneofs[i]
	}
	return (*Oneof)(unsafe.Add(base, b.oneofs[i].offset))
}

// checkShadow verifies a Dynamic shadow's slots line up with the descriptor.
func (b *Binding) checkShadow(base unsafe.Pointer, phase errors.Phase, path []string) error {
	if !b.dynamic {
		return nil
	}
	d := (*Dynamic)(base)
	if d.desc != nil && d.desc != b.desc {
		return errors.SchemaMismatch(phase, path, "dynamic shadow was built for %q, not %q", d.desc.Name, b.desc.Name)
	}
	if len(d.Fields) != len(b.desc.Fields) || len(d.Oneofs) != len(b.desc.Oneofs) {
		return errors.SchemaMismatch(phase, path,
			"dynamic shadow has %d fields and %d oneofs, descriptor %q has %d and %d",
			len(d.Fields), len(d.Oneofs), b.desc.Name, len(b.desc.Fields), len(b.desc.Oneofs))
	}
	return nil
}

// Binder resolves descriptors against shadow types and caches the result.
type Binder struct {
	cache sync.Map // bindKey -> *Binding
}

type bindKey struct {
	desc   *MessageDescriptor
	goType reflect.Type
}

// NewBinder creates an empty Binder.
func NewBinder() *Binder {
	return &Binder{}
}

var defaultBinder = NewBinder()

// Bind resolves desc against goType using the shared cache.
func Bind(desc *MessageDescriptor, goType reflect.Type) (*Binding, error) {
	return defaultBinder.Bind(desc, goType)
}

// Bind resolves desc against goType. Pointer types are dereferenced.
func (c *Binder) Bind(desc *MessageDescriptor, goType reflect.Type) (*Binding, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("shadow type cannot be nil").
			Build()
	}
	if desc == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			GoType(goType.String()).
			Detail("message descriptor cannot be nil").
			Build()
	}
	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}
	return c.bind(desc, goType, []string{desc.Name})
}

func (c *Binder) bind(desc *MessageDescriptor, goType reflect.Type, path []string) (*Binding, error) {
	key := bindKey{desc: desc, goType: goType}
	if cached, ok := c.cache.Load(key); ok {
		return cached.(*Binding), nil
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}

	var (
		b   *Binding
		err error
	)
	switch {
	case goType == dynamicType:
		b = c.bindDynamic(desc)
	case goType.Kind() == reflect.Struct:
		b, err = c.bindStruct(desc, goType, path)
	default:
		err = errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), "message "+desc.Name)
	}
	if err != nil {
		return nil, err
	}

	actual, _ := c.cache.LoadOrStore(key, b)
	Logger().Debug("bound message",
		zap.String("message", desc.Name),
		zap.Stringer("shadow", goType),
		zap.Int("fields", len(b.fields)))
	return actual.(*Binding), nil
}

func (c *Binder) bindDynamic(desc *MessageDescriptor) *Binding {
	b := newBinding(desc, dynamicType)
	b.dynamic = true
	for i := range desc.Oneofs {
		b.oneofs = append(b.oneofs, boundOneof{desc: &desc.Oneofs[i], index: i})
	}
	for i := range desc.Fields {
		f := &desc.Fields[i]
		bf := boundField{desc: f, index: i, oneof: -1, mode: modeCallback}
		if f.Oneof != "" {
			bf.mode = modeMember
			bf.oneof = desc.OneofIndex(f.Oneof)
		}
		b.add(bf)
	}
	return b
}

func (c *Binder) bindStruct(desc *MessageDescriptor, goType reflect.Type, path []string) (*Binding, error) {
	b := newBinding(desc, goType)

	for i := range desc.Oneofs {
		o := &desc.Oneofs[i]
		goField, found := findGoField(goType, o.GoName, o.Name)
		if !found {
			return nil, errors.FieldMissing(errors.PhaseCompile, path, o.Name)
		}
		if goField.Type != oneofType {
			return nil, errors.TypeMismatch(errors.PhaseCompile, appendPath(path, o.Name), goField.Type.String(), "oneof")
		}
		b.oneofs = append(b.oneofs, boundOneof{desc: o, offset: goField.Offset, index: i})
	}

	for i := range desc.Fields {
		f := &desc.Fields[i]
		if f.Oneof != "" {
			b.add(boundField{desc: f, index: i, oneof: desc.OneofIndex(f.Oneof), mode: modeMember})
			continue
		}

		goField, found := findGoField(goType, f.GoName, f.Name)
		if !found {
			return nil, errors.FieldMissing(errors.PhaseCompile, path, f.Name)
		}

		bf := boundField{desc: f, offset: goField.Offset, index: i, oneof: -1}
		fieldPath := appendPath(path, f.Name)
		ft := goField.Type

		switch {
		case ft == callbackType:
			bf.mode = modeCallback
		case f.Repeated:
			return nil, errors.TypeMismatch(errors.PhaseCompile, fieldPath, ft.String(), "repeated "+f.Kind.String()+" (wire.Callback)")
		case f.Kind == KindMessage && ft.Kind() == reflect.Struct:
			nested, err := c.bind(f.Message, ft, fieldPath)
			if err != nil {
				return nil, err
			}
			bf.mode = modeNested
			bf.nested = nested
		case f.Kind.IsScalar() && ft.Kind() == f.Kind.goKind():
			bf.mode = modeScalar
		default:
			return nil, errors.TypeMismatch(errors.PhaseCompile, fieldPath, ft.String(), f.Kind.String())
		}
		b.add(bf)
	}
	return b, nil
}

func newBinding(desc *MessageDescriptor, goType reflect.Type) *Binding {
	return &Binding{
		desc:   desc,
		goType: goType,
		fields: make([]boundField, 0, len(desc.Fields)),
		number: make(map[Number]int, len(desc.Fields)),
	}
}

func (b *Binding) add(f boundField) {
	b.number[f.desc.Number] = len(b.fields)
	b.fields = append(b.fields, f)
}

// findGoField matches by: 1) explicit Go name, 2) pb:"name" tag,
// 3) case-insensitive, 4) snake_case to CamelCase. Tagged fields only
// match by tag.
func findGoField(goType reflect.Type, goName, name string) (reflect.StructField, bool) {
	if goName != "" {
		f, ok := goType.FieldByName(goName)
		if !ok || !f.IsExported() || len(f.Index) != 1 {
			return reflect.StructField{}, false
		}
		return f, true
	}

	for i := 0; i < goType.NumField(); i++ {
		field := goType.Field(i)
		if field.IsExported() && field.Tag.Get("pb") == name {
			return field, true
		}
	}

	camel := strings.ReplaceAll(name, "_", "")
	for i := 0; i < goType.NumField(); i++ {
		field := goType.Field(i)
		if !field.IsExported() || field.Tag.Get("pb") != "" {
			continue
		}
		if strings.EqualFold(field.Name, name) || strings.EqualFold(field.Name, camel) {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
