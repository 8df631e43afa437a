// Package stream provides the byte sink and source used by the wire codec.
//
// Writer is a growable output buffer with an optional maximum size. Writes
// that would exceed the bound fail with ErrOverflow and leave the buffer
// unchanged. Release hands the accumulated bytes to the caller.
//
// Reader walks a byte slice with position tracking. Sub carves a bounded
// substream out of the next n bytes, which is how length-delimited payloads
// are handed to field callbacks.
//
// Neither type is safe for concurrent use; each conversion owns its streams.
package stream
