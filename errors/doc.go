// Package errors provides the uniform failure channel of the runtime.
//
// Every failing core operation returns an *Error carrying the Phase (which
// component failed) and the Kind (what went wrong). Callers that only need a
// trap can treat any non-nil error as fatal; callers that want detail can
// match on phase and kind:
//
//	err := memory.StoreHandle(h.Add(1), h)
//	if errors.IsKind(err, errors.KindMisaligned) {
//		...
//	}
//
// Use the Builder for structured construction:
//
//	err := errors.New(errors.PhaseMemory, errors.KindOutOfBounds).
//		Handle(h).
//		Detail("access of %d bytes at offset %d (segment length %d)", 8, off, n).
//		Build()
//
// or the convenience constructors for the common cases. All errors implement
// the standard error interface and support errors.Is/As.
package errors
