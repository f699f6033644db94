package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseDispatch,
				Kind:     KindTypeMismatch,
				Path:     []string{"table", "7", "arg1"},
				Expected: "handle",
				Actual:   "i32",
				Detail:   "wrong variant",
			},
			contains: []string{"[dispatch]", "type_mismatch", "table.7.arg1", "expected handle", "got i32", "wrong variant"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseMemory,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[memory]", "out_of_bounds"},
		},
		{
			name: "with handle",
			err: &Error{
				Phase:  PhaseSegment,
				Kind:   KindFreed,
				Handle: "<seg=1 off=0x0>",
			},
			contains: []string{"[segment]", "freed", "<seg=1 off=0x0>"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseHost,
				Kind:   KindHostCall,
				Detail: "fd_write",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[host]", "host_call", "fd_write", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseSnapshot,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseMemory,
		Kind:  KindMisaligned,
	}

	if !err.Is(&Error{Phase: PhaseMemory, Kind: KindMisaligned}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseHandle, Kind: KindMisaligned}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseMemory, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(err, &Error{Phase: PhaseMemory, Kind: KindMisaligned}) {
		t.Error("errors.Is should match")
	}
}

func TestIsKind(t *testing.T) {
	inner := Freed(PhaseSegment, stringer("<seg=3 off=0x0>"))
	outer := Wrap(PhaseRuntime, KindHostCall, inner, "fd_write")
	wrapped := fmt.Errorf("trap: %w", outer)

	if !IsKind(wrapped, KindFreed) {
		t.Error("IsKind should find kind in cause chain")
	}
	if !IsKind(wrapped, KindHostCall) {
		t.Error("IsKind should match outer kind")
	}
	if IsKind(wrapped, KindOverflow) {
		t.Error("IsKind should not match absent kind")
	}
	if IsKind(errors.New("plain"), KindFreed) {
		t.Error("IsKind should not match plain errors")
	}

	k, ok := KindOf(wrapped)
	if !ok || k != KindHostCall {
		t.Errorf("KindOf = %v, %v; want %v, true", k, ok, KindHostCall)
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseMemory, KindOutOfBounds).
		Path("write", "u64").
		Handle(stringer("<seg=1 off=0xc>")).
		Expected("16 bytes").
		Actual("20 bytes").
		Value(12).
		Cause(cause).
		Detail("offset %d", 12).
		Build()

	if err.Phase != PhaseMemory {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseMemory)
	}
	if err.Kind != KindOutOfBounds {
		t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
	}
	if len(err.Path) != 2 || err.Path[0] != "write" || err.Path[1] != "u64" {
		t.Errorf("Path = %v, want [write u64]", err.Path)
	}
	if err.Handle != "<seg=1 off=0xc>" {
		t.Errorf("Handle = %v", err.Handle)
	}
	if err.Value != 12 {
		t.Errorf("Value = %v, want 12", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "offset 12" {
		t.Errorf("Detail = %v, want 'offset 12'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	h := stringer("<seg=2 off=0x1>")
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"Freed", Freed(PhaseSegment, h), KindFreed},
		{"NotFound", NotFound(PhaseDispatch, "slot", 3), KindNotFound},
		{"OutOfBounds", OutOfBounds(PhaseMemory, h, 12, 8, 16), KindOutOfBounds},
		{"IndexOutOfBounds", IndexOutOfBounds(PhaseTag, "word", 9, 2), KindOutOfBounds},
		{"Misaligned", Misaligned(PhaseMemory, h, 1, 8), KindMisaligned},
		{"Overflow", Overflow(PhaseHandle, int32(1), "null offset overflow"), KindOverflow},
		{"Corrupted", Corrupted(PhaseHandle, h, "add"), KindCorrupted},
		{"TypeMismatch", TypeMismatch(PhaseDispatch, nil, "i32", "f64"), KindTypeMismatch},
		{"Arity", Arity(PhaseDispatch, nil, 2, 1), KindArity},
		{"InvalidData", InvalidData(PhaseHandle, "bad sentinel"), KindInvalidData},
		{"InvalidInput", InvalidInput(PhaseSegment, "zero size"), KindInvalidInput},
		{"Unsupported", Unsupported(PhaseHandle, "null offset encoding"), KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}

	if got := OutOfBounds(PhaseMemory, h, 12, 8, 16).Value; got != uint64(12) {
		t.Errorf("OutOfBounds Value = %v, want 12", got)
	}
	if !strings.Contains(Arity(PhaseDispatch, nil, 2, 1).Error(), "expected 2 values") {
		t.Error("Arity message should contain expected count")
	}
}
