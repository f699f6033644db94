package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which component reported the failure
type Phase string

const (
	PhaseSegment  Phase = "segment"  // allocation, free, resolution
	PhaseTag      Phase = "tag"      // tag table access
	PhaseHandle   Phase = "handle"   // arithmetic, ordering, encoding
	PhaseMemory   Phase = "memory"   // read/write protocol
	PhaseValue    Phase = "value"    // tagged value conversion
	PhaseDispatch Phase = "dispatch" // indirect calls
	PhaseHost     Phase = "host"     // host call shim
	PhaseRuntime  Phase = "runtime"  // instance operations
	PhaseConfig   Phase = "config"   // configuration loading
	PhaseSnapshot Phase = "snapshot" // segment snapshots
)

// Kind categorizes the failure
type Kind string

const (
	KindFreed        Kind = "freed"
	KindNotFound     Kind = "not_found"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindMisaligned   Kind = "misaligned"
	KindInvalidData  Kind = "invalid_data"
	KindOverflow     Kind = "overflow"
	KindCorrupted    Kind = "corrupted"
	KindNullHandle   Kind = "null_handle"
	KindTypeMismatch Kind = "type_mismatch"
	KindArity        Kind = "arity"
	KindAllocation   Kind = "allocation"
	KindInvalidInput Kind = "invalid_input"
	KindUnsupported  Kind = "unsupported"
	KindHostCall     Kind = "host_call"
)

// Error is the structured error type used by every package of the module
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	Handle   string
	Expected string
	Actual   string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Handle != "" {
		b.WriteString(" ")
		b.WriteString(e.Handle)
	}

	hasTypes := e.Expected != "" || e.Actual != ""
	if hasTypes {
		b.WriteString(": expected ")
		b.WriteString(orUnknown(e.Expected))
		b.WriteString(", got ")
		b.WriteString(orUnknown(e.Actual))
	}

	if e.Detail != "" {
		if hasTypes {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// Two errors match when phase and kind are equal.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind,
// regardless of phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (function name, argument index, ...)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Handle records the handle involved in the failure
func (b *Builder) Handle(h fmt.Stringer) *Builder {
	b.err.Handle = h.String()
	return b
}

// Expected sets the expected type or shape
func (b *Builder) Expected(s string) *Builder {
	b.err.Expected = s
	return b
}

// Actual sets the observed type or shape
func (b *Builder) Actual(s string) *Builder {
	b.err.Actual = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Freed creates a use-after-free error for a handle naming a freed segment
func Freed(phase Phase, h fmt.Stringer) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFreed,
		Handle: h.String(),
		Detail: "segment has been freed",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what string, key any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %v not found", what, key),
		Value:  key,
	}
}

// OutOfBounds creates an out of bounds error for an access of size bytes at
// offset into a region of the given length
func OutOfBounds(phase Phase, h fmt.Stringer, offset uint64, size, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Handle: h.String(),
		Detail: fmt.Sprintf("access of %d bytes at offset %d (length %d)", size, offset, length),
		Value:  offset,
	}
}

// IndexOutOfBounds creates an out of bounds error for an indexed lookup
func IndexOutOfBounds(phase Phase, what string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("%s index %d out of bounds (length %d)", what, index, length),
		Value:  index,
	}
}

// Misaligned creates an alignment error
func Misaligned(phase Phase, h fmt.Stringer, offset uint64, align int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMisaligned,
		Handle: h.String(),
		Detail: fmt.Sprintf("offset %d is not %d-byte aligned", offset, align),
		Value:  offset,
	}
}

// Overflow creates an arithmetic overflow error
func Overflow(phase Phase, value any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Detail: detail,
		Value:  value,
	}
}

// Corrupted creates an error for an operation attempted on a corrupted handle
func Corrupted(phase Phase, h fmt.Stringer, op string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCorrupted,
		Handle: h.String(),
		Detail: fmt.Sprintf("%s on corrupted handle", op),
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, expected, actual string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		Expected: expected,
		Actual:   actual,
	}
}

// Arity creates an argument or result count mismatch error
func Arity(phase Phase, path []string, expected, actual int) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindArity,
		Path:     path,
		Expected: fmt.Sprintf("%d values", expected),
		Actual:   fmt.Sprintf("%d values", actual),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
