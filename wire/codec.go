package wire

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"unsafe"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/pbconv/errors"
)

// MaxDepth bounds message nesting in both directions.
const MaxDepth = 64

// tag plus one varint
const maxHeaderLen = 2 * binary.MaxVarintLen64

// state tracks the position of the codec in the message tree. The path is
// only materialized when an error needs it.
type state struct {
	parent *state
	name   string
	phase  errors.Phase
	depth  int
}

func newState(phase errors.Phase, desc *MessageDescriptor) *state {
	return &state{name: desc.Name, phase: phase}
}

func (s *state) child(name string) (*state, error) {
	if s.depth+1 > MaxDepth {
		return nil, errors.New(s.phase, errors.KindOverflow).
			Path(s.pathWith(name)...).
			Detail("message nesting exceeds %d levels", MaxDepth).
			Build()
	}
	return &state{parent: s, name: name, phase: s.phase, depth: s.depth + 1}, nil
}

func (s *state) path() []string {
	n := 0
	for p := s; p != nil; p = p.parent {
		n++
	}
	out := make([]string, n)
	for p := s; p != nil; p = p.parent {
		n--
		out[n] = p.name
	}
	return out
}

func (s *state) pathWith(elem string) []string {
	if elem == "" {
		return s.path()
	}
	return append(s.path(), elem)
}

// callbackErr keeps errors the codec already attributed to a field and
// wraps everything else as a callback failure at elem.
func (s *state) callbackErr(elem string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) && len(e.Path) > 0 {
		return err
	}
	return errors.Callback(s.phase, s.pathWith(elem), err)
}

func (s *state) streamErr(elem string, err error) error {
	return errors.Stream(s.phase, s.pathWith(elem), err)
}

// parseErr converts a protowire failure code. Truncated input is a stream
// failure; anything else is malformed data.
func (s *state) parseErr(r interface{ WrapError(error) error }, elem string, n int) error {
	err := protowire.ParseError(n)
	if stderrors.Is(err, io.ErrUnexpectedEOF) {
		return s.streamErr(elem, r.WrapError(err))
	}
	return errors.New(s.phase, errors.KindInvalidData).
		Path(s.pathWith(elem)...).
		Detail("malformed wire data").
		Cause(r.WrapError(err)).
		Build()
}

func elemName(fd *FieldDescriptor, index int) string {
	if !fd.Repeated {
		return fd.Name
	}
	return fd.Name + "[" + strconv.Itoa(index) + "]"
}

// resolve binds shadow, which must be a non-nil pointer, against desc.
func resolve(shadow any, desc *MessageDescriptor, phase errors.Phase) (*Binding, unsafe.Pointer, error) {
	if desc == nil {
		return nil, nil, errors.NilPointer(phase, nil, "*wire.MessageDescriptor")
	}
	rv := reflect.ValueOf(shadow)
	if !rv.IsValid() || rv.Kind() != reflect.Ptr || rv.IsNil() {
		return nil, nil, errors.NilPointer(phase, []string{desc.Name}, fmt.Sprintf("%T", shadow))
	}
	// shadows held by pointer, such as *Dynamic, arrive as **T
	for rv.Elem().Kind() == reflect.Ptr {
		rv = rv.Elem()
		if rv.IsNil() {
			return nil, nil, errors.NilPointer(phase, []string{desc.Name}, fmt.Sprintf("%T", shadow))
		}
	}
	b, err := Bind(desc, rv.Type().Elem())
	if err != nil {
		return nil, nil, err
	}
	base := rv.UnsafePointer()
	if err := b.checkShadow(base, phase, []string{desc.Name}); err != nil {
		return nil, nil, err
	}
	return b, base, nil
}

// loadRaw reads a scalar from shadow memory as its wire integer.
func loadRaw(kind Kind, ptr unsafe.Pointer) uint64 {
	switch kind {
	case KindInt32, KindEnum:
		return uint64(int64(*(*int32)(ptr)))
	case KindSInt32:
		return protowire.EncodeZigZag(int64(*(*int32)(ptr)))
	case KindSFixed32:
		return uint64(uint32(*(*int32)(ptr)))
	case KindUInt32, KindFixed32:
		return uint64(*(*uint32)(ptr))
	case KindInt64, KindSFixed64:
		return uint64(*(*int64)(ptr))
	case KindSInt64:
		return protowire.EncodeZigZag(*(*int64)(ptr))
	case KindUInt64, KindFixed64:
		return *(*uint64)(ptr)
	case KindFloat:
		return uint64(math.Float32bits(*(*float32)(ptr)))
	case KindDouble:
		return math.Float64bits(*(*float64)(ptr))
	case KindBool:
		return protowire.EncodeBool(*(*bool)(ptr))
	}
	return 0
}

// storeRaw writes a wire integer into shadow memory.
func storeRaw(kind Kind, ptr unsafe.Pointer, raw uint64) {
	switch kind {
	case KindInt32, KindEnum:
		*(*int32)(ptr) = int32(raw)
	case KindSInt32:
		*(*int32)(ptr) = int32(protowire.DecodeZigZag(raw & math.MaxUint32))
	case KindSFixed32:
		*(*int32)(ptr) = int32(uint32(raw))
	case KindUInt32, KindFixed32:
		*(*uint32)(ptr) = uint32(raw)
	case KindInt64, KindSFixed64:
		*(*int64)(ptr) = int64(raw)
	case KindSInt64:
		*(*int64)(ptr) = protowire.DecodeZigZag(raw)
	case KindUInt64, KindFixed64:
		*(*uint64)(ptr) = raw
	case KindFloat:
		*(*float32)(ptr) = math.Float32frombits(uint32(raw))
	case KindDouble:
		*(*float64)(ptr) = math.Float64frombits(raw)
	case KindBool:
		*(*bool)(ptr) = protowire.DecodeBool(raw)
	}
}

func appendRaw(b []byte, typ protowire.Type, raw uint64) []byte {
	switch typ {
	case protowire.Fixed32Type:
		return protowire.AppendFixed32(b, uint32(raw))
	case protowire.Fixed64Type:
		return protowire.AppendFixed64(b, raw)
	default:
		return protowire.AppendVarint(b, raw)
	}
}

func consumeRaw(typ protowire.Type, b []byte) (uint64, int) {
	switch typ {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		return uint64(v), n
	case protowire.Fixed64Type:
		return protowire.ConsumeFixed64(b)
	default:
		return protowire.ConsumeVarint(b)
	}
}
