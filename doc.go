// Package pbconv converts rich Go domain values to and from protobuf wire
// messages through flat, schema-shaped shadow structs.
//
// A shadow mirrors one message of a schema: scalar fields are stored
// directly, while strings, bytes, repeated and nested fields are callbacks
// that stream values straight from and into the domain object. Nothing is
// buffered between the domain value and the wire, so the same code runs on
// tight output bounds.
//
// # Architecture Overview
//
//	pbconv/            Marshal and Unmarshal helpers with functional options
//	├── converter/     Scalar, Enum, String, Bytes, Array, Message and Union converters
//	├── wire/          Descriptors, shadow binding and the callback-driving codec
//	├── stream/        Bounded output writer and input reader with substreams
//	├── schema/        YAML schema loader producing wire descriptors
//	├── dynamic/       Descriptor-driven converters over generic records, JSON
//	├── errors/        Structured error types for debugging
//	└── cmd/pbconv/    Command line decoder/encoder with an interactive viewer
//
// # Quick Start
//
// Describe the message, declare a shadow and a converter:
//
//	var pointDesc = &wire.MessageDescriptor{
//	    Name: "Point",
//	    Fields: []wire.FieldDescriptor{
//	        {Name: "x", Number: 1, Kind: wire.KindSInt32},
//	        {Name: "label", Number: 2, Kind: wire.KindString},
//	    },
//	}
//
//	type pointShadow struct {
//	    X     int32
//	    Label wire.Callback
//	}
//
//	var pointConverter = converter.Message[Point, pointShadow]{
//	    Descriptor: pointDesc,
//	    EncoderInit: func(p *Point) pointShadow {
//	        return pointShadow{X: p.X, Label: converter.String{}.Encoder(&p.Label)}
//	    },
//	    DecoderInit: func(p *Point) pointShadow {
//	        return pointShadow{Label: converter.String{}.Decoder(&p.Label)}
//	    },
//	    DecoderApply: func(s *pointShadow, p *Point) error {
//	        p.X = s.X
//	        return nil
//	    },
//	}
//
// Then convert:
//
//	data, err := pbconv.Marshal(pointConverter, &p)
//	err = pbconv.Unmarshal(data, pointConverter, &p)
//
// # Error Handling
//
// All failures are *errors.Error values carrying the phase, a kind and
// the field path:
//
//	var e *errors.Error
//	if stderrors.As(err, &e) {
//	    fmt.Println(e.Kind, e.Path)
//	}
//
// # Logging
//
// Packages log through zap and are silent by default. Use SetLogger to
// route converter and codec diagnostics to an application logger.
package pbconv
