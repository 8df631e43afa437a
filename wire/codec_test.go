package wire

import (
	"bytes"
	stderrors "errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/stream"
)

var pointDesc = &MessageDescriptor{
	Name: "Point",
	Fields: []FieldDescriptor{
		{Name: "x", Number: 1, Kind: KindSInt32},
		{Name: "y", Number: 2, Kind: KindSInt32},
		{Name: "label", Number: 3, Kind: KindString},
	},
}

type point struct {
	Label Callback
	X     int32
	Y     int32
}

var listDesc = &MessageDescriptor{
	Name: "List",
	Fields: []FieldDescriptor{
		{Name: "values", Number: 1, Kind: KindInt32, Repeated: true},
	},
}

type list struct {
	Values Callback
}

var pathDesc = &MessageDescriptor{
	Name: "Path",
	Fields: []FieldDescriptor{
		{Name: "origin", Number: 1, Kind: KindMessage, Message: pointDesc},
		{Name: "points", Number: 2, Kind: KindMessage, Message: pointDesc, Repeated: true},
	},
}

type path struct {
	Points Callback
	Origin point
}

var choiceDesc = &MessageDescriptor{
	Name: "Choice",
	Fields: []FieldDescriptor{
		{Name: "id", Number: 1, Kind: KindUInt64},
		{Name: "num", Number: 2, Kind: KindInt32, Oneof: "pick"},
		{Name: "text", Number: 3, Kind: KindString, Oneof: "pick"},
	},
	Oneofs: []OneofDescriptor{{Name: "pick"}},
}

type choice struct {
	Pick Oneof
	ID   uint64
}

func tag(num Number, typ protowire.Type) []byte {
	return protowire.AppendTag(nil, num, typ)
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func encode(t *testing.T, shadow any, desc *MessageDescriptor) []byte {
	t.Helper()
	w := stream.NewWriter(0)
	if err := EncodeMessage(w, shadow, desc); err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	return w.Bytes()
}

func assertKind(t *testing.T, err error, kind errors.Kind) *errors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if e.Kind != kind {
		t.Fatalf("expected kind %s, got %s: %v", kind, e.Kind, err)
	}
	return e
}

func TestEncodeScalarsAndString(t *testing.T) {
	p := point{X: -1, Y: 0}
	p.Label.Encode = func(fw *FieldWriter) error {
		return fw.WriteString("ab")
	}

	got := encode(t, &p, pointDesc)
	want := concat(tag(1, protowire.VarintType), []byte{0x01}, tag(3, protowire.BytesType), []byte{2, 'a', 'b'})
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestDecodeScalarsAndString(t *testing.T) {
	data := concat(
		tag(2, protowire.VarintType), protowire.AppendVarint(nil, protowire.EncodeZigZag(-300)),
		tag(3, protowire.BytesType), []byte{5, 'h', 'e', 'l', 'l', 'o'},
	)

	var p point
	var label string
	p.Label.Decode = func(fr *FieldReader) error {
		s, err := fr.ReadString()
		label = s
		return err
	}
	if err := DecodeMessage(stream.NewReader(data), &p, pointDesc); err != nil {
		t.Fatal(err)
	}
	if p.X != 0 || p.Y != -300 || label != "hello" {
		t.Errorf("got x=%d y=%d label=%q", p.X, p.Y, label)
	}
}

func TestRepeatedCallbackStopsWhenNothingWritten(t *testing.T) {
	values := []int32{5, 0, -1}
	var l list
	calls := 0
	l.Values.Encode = func(fw *FieldWriter) error {
		calls++
		if fw.Index() >= len(values) {
			return nil
		}
		return fw.WriteInt32(values[fw.Index()])
	}

	got := encode(t, &l, listDesc)
	want := concat(
		tag(1, protowire.VarintType), []byte{5},
		tag(1, protowire.VarintType), []byte{0},
		tag(1, protowire.VarintType), protowire.AppendVarint(nil, uint64(1<<64-1)),
	)
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestDecodePackedAndUnpacked(t *testing.T) {
	packed := []byte{1, 2, 3}
	data := concat(
		tag(1, protowire.BytesType), []byte{byte(len(packed))}, packed,
		tag(1, protowire.VarintType), []byte{4},
	)

	var l list
	var got []int32
	var indexes []int
	var packedFlags []bool
	l.Values.Decode = func(fr *FieldReader) error {
		v, err := fr.ReadInt32()
		got = append(got, v)
		indexes = append(indexes, fr.Index())
		packedFlags = append(packedFlags, fr.Packed())
		return err
	}
	if err := DecodeMessage(stream.NewReader(data), &l, listDesc); err != nil {
		t.Fatal(err)
	}

	if len(got) != 4 || got[0] != 1 || got[2] != 3 || got[3] != 4 {
		t.Errorf("values = %v", got)
	}
	if indexes[3] != 3 {
		t.Errorf("indexes = %v", indexes)
	}
	if !packedFlags[0] || packedFlags[3] {
		t.Errorf("packed flags = %v", packedFlags)
	}
}

func TestDecodePackedNoProgress(t *testing.T) {
	data := concat(tag(1, protowire.BytesType), []byte{2, 1, 2})
	var l list
	l.Values.Decode = func(fr *FieldReader) error { return nil }

	err := DecodeMessage(stream.NewReader(data), &l, listDesc)
	assertKind(t, err, errors.KindInvalidData)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	data := concat(
		tag(9, protowire.Fixed64Type), make([]byte, 8),
		tag(10, protowire.BytesType), []byte{2, 0xff, 0xff},
		tag(1, protowire.VarintType), []byte{0x04},
	)
	var p point
	if err := DecodeMessage(stream.NewReader(data), &p, pointDesc); err != nil {
		t.Fatal(err)
	}
	if p.X != 2 {
		t.Errorf("x = %d, want 2", p.X)
	}
}

func TestNestedMessages(t *testing.T) {
	pts := []point{{X: 1}, {Y: 2}}
	src := path{Origin: point{X: 7}}
	src.Points.Encode = func(fw *FieldWriter) error {
		if fw.Index() >= len(pts) {
			return nil
		}
		return fw.WriteMessage(&pts[fw.Index()], nil)
	}
	data := encode(t, &src, pathDesc)

	var dst path
	var decoded []point
	dst.Points.Decode = func(fr *FieldReader) error {
		var p point
		if err := fr.ReadMessage(&p, pointDesc); err != nil {
			return err
		}
		decoded = append(decoded, p)
		return nil
	}
	if err := DecodeMessage(stream.NewReader(data), &dst, pathDesc); err != nil {
		t.Fatal(err)
	}

	if dst.Origin.X != 7 {
		t.Errorf("origin.x = %d", dst.Origin.X)
	}
	if len(decoded) != 2 || decoded[0].X != 1 || decoded[1].Y != 2 {
		t.Errorf("points = %+v", decoded)
	}
}

func TestOneofEncode(t *testing.T) {
	c := choice{ID: 1}
	c.Pick.Which = 3
	c.Pick.Encode = func(fw *FieldWriter) error {
		return fw.WriteString("x")
	}

	got := encode(t, &c, choiceDesc)
	want := concat(tag(1, protowire.VarintType), []byte{1}, tag(3, protowire.BytesType), []byte{1, 'x'})
	if !bytes.Equal(got, want) {
		t.Errorf("got %x, want %x", got, want)
	}
}

func TestOneofEncodeUnknownMember(t *testing.T) {
	c := choice{}
	c.Pick.Which = 1
	c.Pick.Encode = func(fw *FieldWriter) error { return nil }

	w := stream.NewWriter(0)
	assertKind(t, EncodeMessage(w, &c, choiceDesc), errors.KindSchemaMismatch)
}

func TestOneofDecodeLastWins(t *testing.T) {
	data := concat(
		tag(3, protowire.BytesType), []byte{1, 'x'},
		tag(2, protowire.VarintType), []byte{9},
	)

	var c choice
	var seen []Number
	done := 0
	c.Pick.Decode = func(fr *FieldReader) error {
		seen = append(seen, fr.Field().Number)
		return nil
	}
	c.Pick.Done = func() error {
		done++
		return nil
	}
	if err := DecodeMessage(stream.NewReader(data), &c, choiceDesc); err != nil {
		t.Fatal(err)
	}
	if c.Pick.Which != 2 {
		t.Errorf("which = %d, want 2", c.Pick.Which)
	}
	if len(seen) != 2 || done != 1 {
		t.Errorf("seen=%v done=%d", seen, done)
	}
}

func TestCallbackErrorIsWrapped(t *testing.T) {
	boom := stderrors.New("boom")
	var l list
	l.Values.Encode = func(fw *FieldWriter) error {
		if fw.Index() == 2 {
			return boom
		}
		return fw.WriteInt32(1)
	}

	err := EncodeMessage(stream.NewWriter(0), &l, listDesc)
	e := assertKind(t, err, errors.KindCallback)
	if !stderrors.Is(err, boom) {
		t.Error("cause should be preserved")
	}
	if got := e.Path[len(e.Path)-1]; got != "values[2]" {
		t.Errorf("path tail = %q", got)
	}
}

func TestEncodeOverflow(t *testing.T) {
	var p point
	p.Label.Encode = func(fw *FieldWriter) error {
		return fw.WriteString("this does not fit")
	}
	err := EncodeMessage(stream.NewWriter(8), &p, pointDesc)
	assertKind(t, err, errors.KindStream)
}

func TestNestedOverflow(t *testing.T) {
	src := path{}
	src.Origin.Label.Encode = func(fw *FieldWriter) error {
		return fw.WriteString("0123456789")
	}
	err := EncodeMessage(stream.NewWriter(6), &src, pathDesc)
	assertKind(t, err, errors.KindStream)
}

func TestOverflowLeavesNoPartialField(t *testing.T) {
	p := point{X: 1}
	prefix := encode(t, &p, pointDesc)

	// room for the label header but not its body
	p.Label.Encode = func(fw *FieldWriter) error {
		return fw.WriteString("abcd")
	}
	w := stream.NewWriter(len(prefix) + 3)
	err := EncodeMessage(w, &p, pointDesc)
	assertKind(t, err, errors.KindStream)
	if !stderrors.Is(err, stream.ErrOverflow) {
		t.Errorf("error = %v, want stream.ErrOverflow", err)
	}
	if !bytes.Equal(w.Bytes(), prefix) {
		t.Errorf("output = %x, want %x", w.Bytes(), prefix)
	}

	// the nested body fits the scratch writer but not with its header
	src := path{Origin: point{X: 1}}
	w = stream.NewWriter(len(prefix) + 1)
	err = EncodeMessage(w, &src, pathDesc)
	assertKind(t, err, errors.KindStream)
	if !stderrors.Is(err, stream.ErrOverflow) {
		t.Errorf("nested error = %v, want stream.ErrOverflow", err)
	}
	if w.Len() != 0 {
		t.Errorf("nested output = %x, want empty", w.Bytes())
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := concat(tag(3, protowire.BytesType), []byte{10, 'a'})
	var p point
	p.Label.Decode = func(fr *FieldReader) error { return nil }
	err := DecodeMessage(stream.NewReader(data), &p, pointDesc)
	assertKind(t, err, errors.KindStream)
}

func TestDecodeWireTypeMismatch(t *testing.T) {
	data := concat(tag(1, protowire.Fixed32Type), make([]byte, 4))
	var p point
	err := DecodeMessage(stream.NewReader(data), &p, pointDesc)
	assertKind(t, err, errors.KindSchemaMismatch)
}

func TestWriteKindMismatch(t *testing.T) {
	var l list
	l.Values.Encode = func(fw *FieldWriter) error {
		return fw.WriteString("nope")
	}
	err := EncodeMessage(stream.NewWriter(0), &l, listDesc)
	assertKind(t, err, errors.KindSchemaMismatch)
}

func TestSingularWrittenTwice(t *testing.T) {
	var p point
	p.Label.Encode = func(fw *FieldWriter) error {
		if err := fw.WriteString("a"); err != nil {
			return err
		}
		return fw.WriteString("b")
	}
	err := EncodeMessage(stream.NewWriter(0), &p, pointDesc)
	assertKind(t, err, errors.KindSchemaMismatch)
}

func TestHandleScope(t *testing.T) {
	var kept *FieldWriter
	var p point
	p.Label.Encode = func(fw *FieldWriter) error {
		kept = fw
		return nil
	}
	encode(t, &p, pointDesc)

	assertKind(t, kept.WriteString("late"), errors.KindScope)
}

func TestReadTwice(t *testing.T) {
	data := concat(tag(1, protowire.VarintType), []byte{1})
	var l list
	l.Values.Decode = func(fr *FieldReader) error {
		if _, err := fr.ReadInt32(); err != nil {
			return err
		}
		_, err := fr.ReadInt32()
		return err
	}
	err := DecodeMessage(stream.NewReader(data), &l, listDesc)
	assertKind(t, err, errors.KindSchemaMismatch)
}

func TestMaxDepth(t *testing.T) {
	node := &MessageDescriptor{Name: "Node"}
	node.Fields = []FieldDescriptor{{Name: "child", Number: 1, Kind: KindMessage, Message: node}}

	var encodeNode func(fw *FieldWriter) error
	encodeNode = func(fw *FieldWriter) error {
		d := NewDynamic(node)
		d.Fields[0].Encode = encodeNode
		return fw.WriteMessage(d, node)
	}
	root := NewDynamic(node)
	root.Fields[0].Encode = encodeNode

	err := EncodeMessage(stream.NewWriter(0), root, node)
	assertKind(t, err, errors.KindOverflow)
}

func TestDynamicShadow(t *testing.T) {
	d := NewDynamic(pointDesc)
	d.Field("x").Encode = func(fw *FieldWriter) error { return fw.WriteSInt32(3) }
	d.Field("label").Encode = func(fw *FieldWriter) error { return fw.WriteString("d") }
	data := encode(t, d, pointDesc)

	var p point
	var label string
	p.Label.Decode = func(fr *FieldReader) error {
		var err error
		label, err = fr.ReadString()
		return err
	}
	if err := DecodeMessage(stream.NewReader(data), &p, pointDesc); err != nil {
		t.Fatal(err)
	}
	if p.X != 3 || label != "d" {
		t.Errorf("got x=%d label=%q", p.X, label)
	}
}

func TestDynamicShadowWrongDescriptor(t *testing.T) {
	d := NewDynamic(listDesc)
	err := EncodeMessage(stream.NewWriter(0), d, pointDesc)
	assertKind(t, err, errors.KindSchemaMismatch)
}

func TestNilShadow(t *testing.T) {
	err := EncodeMessage(stream.NewWriter(0), (*point)(nil), pointDesc)
	assertKind(t, err, errors.KindNilPointer)
}

func TestScalarExtremesRoundTrip(t *testing.T) {
	desc := &MessageDescriptor{
		Name: "Extremes",
		Fields: []FieldDescriptor{
			{Name: "i32", Number: 1, Kind: KindInt32},
			{Name: "s32", Number: 2, Kind: KindSInt32},
			{Name: "sf32", Number: 3, Kind: KindSFixed32},
			{Name: "u64", Number: 4, Kind: KindUInt64},
			{Name: "s64", Number: 5, Kind: KindSInt64},
			{Name: "f", Number: 6, Kind: KindFloat},
			{Name: "d", Number: 7, Kind: KindDouble},
			{Name: "b", Number: 8, Kind: KindBool},
		},
	}
	type extremes struct {
		I32  int32
		S32  int32
		SF32 int32
		U64  uint64
		S64  int64
		F    float32
		D    float64
		B    bool
	}

	src := extremes{
		I32: -1 << 31, S32: -1 << 31, SF32: 1<<31 - 1,
		U64: 1<<64 - 1, S64: -1 << 63,
		F: -1.5, D: 1e300, B: true,
	}
	data := encode(t, &src, desc)

	var dst extremes
	if err := DecodeMessage(stream.NewReader(data), &dst, desc); err != nil {
		t.Fatal(err)
	}
	if dst != src {
		t.Errorf("got %+v, want %+v", dst, src)
	}
}
