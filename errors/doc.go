// Package errors provides structured error types for the pbconv module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/wire type names, and cause chain.
//
// The conversion failure taxonomy maps onto kinds:
//
//	KindStream          byte sink or source failed (output full, truncated input)
//	KindCallback        a nested converter failed inside a field callback
//	KindSchemaMismatch  wire data or shadow layout disagrees with the descriptor
//
// Unknown enum values and union discriminants are never errors; converters
// resolve them to their declared defaults.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
//		Path("outer", "number").
//		GoType("string").
//		WireType("int32").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Stream(errors.PhaseDecode, path, io.ErrUnexpectedEOF)
//	err := errors.Callback(errors.PhaseEncode, path, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
