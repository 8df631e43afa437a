package converter_test

import (
	"container/list"
	stderrors "errors"
	"testing"

	"github.com/wippyai/pbconv/converter"
	"github.com/wippyai/pbconv/errors"
	"github.com/wippyai/pbconv/internal/testpb"
	"github.com/wippyai/pbconv/stream"
	"github.com/wippyai/pbconv/wire"
)

type innerMessage struct {
	Text   string
	Number uint32
}

type outerMessage struct {
	Items  []innerMessage
	Number int32
}

var innerConverter = converter.Message[innerMessage, testpb.InnerMessage]{
	Descriptor: testpb.InnerMessageDesc,
	EncoderInit: func(v *innerMessage) testpb.InnerMessage {
		return testpb.InnerMessage{
			Number: v.Number,
			Text:   converter.String{}.Encoder(&v.Text),
		}
	},
	DecoderInit: func(v *innerMessage) testpb.InnerMessage {
		return testpb.InnerMessage{
			Text: converter.String{}.Decoder(&v.Text),
		}
	},
	DecoderApply: func(p *testpb.InnerMessage, v *innerMessage) error {
		v.Number = p.Number
		return nil
	},
}

var outerConverter = converter.Message[outerMessage, testpb.OuterMessage]{
	Descriptor: testpb.OuterMessageDesc,
	EncoderInit: func(v *outerMessage) testpb.OuterMessage {
		return testpb.OuterMessage{
			Number: v.Number,
			Items:  converter.MessageArray(innerConverter).Encoder(converter.SliceOf(&v.Items)),
		}
	},
	DecoderInit: func(v *outerMessage) testpb.OuterMessage {
		return testpb.OuterMessage{
			Items: converter.MessageArray(innerConverter).Decoder(converter.SliceOf(&v.Items)),
		}
	},
	DecoderApply: func(p *testpb.OuterMessage, v *outerMessage) error {
		v.Number = p.Number
		return nil
	},
}

// sliceMessage converts a bare slice through a Repeated_<kind> message.
func sliceMessage[T any](kind wire.Kind, arr converter.Array[T]) converter.Message[[]T, testpb.Repeated] {
	return converter.Message[[]T, testpb.Repeated]{
		Descriptor: testpb.RepeatedDesc(kind),
		EncoderInit: func(v *[]T) testpb.Repeated {
			return testpb.Repeated{Values: arr.Encoder(converter.SliceOf(v))}
		},
		DecoderInit: func(v *[]T) testpb.Repeated {
			return testpb.Repeated{Values: arr.Decoder(converter.SliceOf(v))}
		},
	}
}

// listMessage is sliceMessage over a linked list.
func listMessage[T any](kind wire.Kind, arr converter.Array[T]) converter.Message[list.List, testpb.Repeated] {
	return converter.Message[list.List, testpb.Repeated]{
		Descriptor: testpb.RepeatedDesc(kind),
		EncoderInit: func(v *list.List) testpb.Repeated {
			return testpb.Repeated{Values: arr.Encoder(converter.ListOf[T](v))}
		},
		DecoderInit: func(v *list.List) testpb.Repeated {
			return testpb.Repeated{Values: arr.Decoder(converter.ListOf[T](v))}
		},
	}
}

func listOf[T any](values []T) *list.List {
	l := list.New()
	for _, v := range values {
		l.PushBack(v)
	}
	return l
}

func listValues[T any](l *list.List) []T {
	var out []T
	for e := l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(T))
	}
	return out
}

func encodeBytes[L, P any](t *testing.T, m converter.Message[L, P], v *L) []byte {
	t.Helper()
	w := stream.NewWriter(stream.DefaultMaxSize)
	if err := converter.Encode(w, m, v); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return w.Release()
}

func decodeBytes[L, P any](t *testing.T, m converter.Message[L, P], data []byte, v *L) {
	t.Helper()
	if err := converter.Decode(stream.NewReader(data), m, v); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func roundTrip[L, P any](t *testing.T, m converter.Message[L, P], in, out *L) {
	t.Helper()
	decodeBytes(t, m, encodeBytes(t, m, in), out)
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

func tryEncode[L, P any](m converter.Message[L, P], v *L) error {
	return converter.Encode(stream.NewWriter(0), m, v)
}

func tryDecode[L, P any](m converter.Message[L, P], data []byte, v *L) error {
	return converter.Decode(stream.NewReader(data), m, v)
}
