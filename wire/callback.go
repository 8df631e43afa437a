package wire

// Callback binds a variable-length or repeated field to user code.
//
// On encode, Encode is invoked once for a singular field. For a repeated
// field it is invoked again after every call that wrote at least one
// occurrence, so a converter emits one element per call and stops by
// writing nothing. On decode, Decode is invoked once per element found in
// the input, including each element of a packed run.
//
// A nil function leaves the field out of the output on encode and skips
// it on decode.
type Callback struct {
	Encode func(fw *FieldWriter) error
	Decode func(fr *FieldReader) error
}

// Oneof binds a group of mutually exclusive fields.
//
// Which holds the field number of the populated member, 0 for none. On
// encode, Encode is invoked once with a writer for the member named by
// Which. On decode, Which is set to each member number seen before
// Decode is invoked with its reader, so the last member in the input
// wins. Done, if set, runs after the containing message is fully decoded.
type Oneof struct {
	Which  Number
	Encode func(fw *FieldWriter) error
	Decode func(fr *FieldReader) error
	Done   func() error
}
