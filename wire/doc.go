// Package wire is the streaming protobuf codec the converters drive.
//
// A message is described by a MessageDescriptor and held during encoding
// and decoding by a shadow: a Go struct whose fields are bound to the
// descriptor by name, or a Dynamic. Fixed-size scalars may live directly
// in the shadow. Strings, bytes, repeated fields and submessages are
// bound to a Callback that the codec invokes while it walks the message,
// handing it a FieldWriter or FieldReader for exactly one element.
// Oneof groups are bound to a single Oneof slot.
//
// Field handles are only valid during the callback they were passed to.
// Encoding writes into a bounded stream.Writer. Scalars stored directly
// in the shadow are omitted when zero. Unknown fields are skipped during
// decoding.
package wire
