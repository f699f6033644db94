package value

import (
	"fmt"
	"math"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
)

// Type identifies the variant of a Value.
type Type uint8

const (
	TypeUndefined Type = iota
	TypeI32
	TypeI64
	TypeF32
	TypeF64
	TypeHandle
)

func (t Type) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeI32:
		return "i32"
	case TypeI64:
		return "i64"
	case TypeF32:
		return "f32"
	case TypeF64:
		return "f64"
	case TypeHandle:
		return "handle"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Size returns the number of memory bytes a value of type t occupies.
func (t Type) Size() int {
	switch t {
	case TypeI32, TypeF32:
		return 4
	case TypeI64, TypeF64:
		return 8
	case TypeHandle:
		return handle.Size
	default:
		return 0
	}
}

// Value is a tagged value. The set of implementations is closed.
type Value interface {
	Type() Type
	isValue()
}

type (
	I32 int32
	I64 int64
	F32 float32
	F64 float64

	// Handle carries a capability.
	Handle struct {
		handle.Handle
	}

	// Undefined is the value of an unset slot.
	Undefined struct{}
)

func (I32) isValue()       {}
func (I64) isValue()       {}
func (F32) isValue()       {}
func (F64) isValue()       {}
func (Handle) isValue()    {}
func (Undefined) isValue() {}

func (I32) Type() Type       { return TypeI32 }
func (I64) Type() Type       { return TypeI64 }
func (F32) Type() Type       { return TypeF32 }
func (F64) Type() Type       { return TypeF64 }
func (Handle) Type() Type    { return TypeHandle }
func (Undefined) Type() Type { return TypeUndefined }

func (v I32) String() string     { return fmt.Sprintf("i32:%d", int32(v)) }
func (v I64) String() string     { return fmt.Sprintf("i64:%d", int64(v)) }
func (v F32) String() string     { return fmt.Sprintf("f32:%g", float32(v)) }
func (v F64) String() string     { return fmt.Sprintf("f64:%g", float64(v)) }
func (v Handle) String() string  { return "handle:" + v.Handle.String() }
func (Undefined) String() string { return "undefined" }

// U32 returns the bits of v as unsigned.
func (v I32) U32() uint32 { return uint32(v) }

// U64 returns the bits of v as unsigned.
func (v I64) U64() uint64 { return uint64(v) }

// FromU32 reinterprets x as an I32.
func FromU32(x uint32) I32 { return I32(int32(x)) }

// FromU64 reinterprets x as an I64.
func FromU64(x uint64) I64 { return I64(int64(x)) }

// FromBool returns 1 or 0.
func FromBool(b bool) I32 {
	if b {
		return 1
	}
	return 0
}

// Of wraps h as a Value.
func Of(h handle.Handle) Handle { return Handle{h} }

// TypeOf returns the type of v. A nil Value is Undefined.
func TypeOf(v Value) Type {
	if v == nil {
		return TypeUndefined
	}
	return v.Type()
}

// Zero returns the zero value of type t. The zero Handle is Null.
func Zero(t Type) Value {
	switch t {
	case TypeI32:
		return I32(0)
	case TypeI64:
		return I64(0)
	case TypeF32:
		return F32(0)
	case TypeF64:
		return F64(0)
	case TypeHandle:
		return Handle{handle.Null}
	default:
		return Undefined{}
	}
}

// Equal reports whether a and b are the same variant with the same payload.
// Floats compare by bits, so NaN equals an identical NaN.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case I32:
		b, ok := b.(I32)
		return ok && a == b
	case I64:
		b, ok := b.(I64)
		return ok && a == b
	case F32:
		b, ok := b.(F32)
		return ok && math.Float32bits(float32(a)) == math.Float32bits(float32(b))
	case F64:
		b, ok := b.(F64)
		return ok && math.Float64bits(float64(a)) == math.Float64bits(float64(b))
	case Handle:
		b, ok := b.(Handle)
		return ok && a.Equal(b.Handle)
	case Undefined, nil:
		return TypeOf(b) == TypeUndefined
	default:
		return false
	}
}

// As returns v as the variant T or a type mismatch error.
func As[T Value](v Value) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, errors.TypeMismatch(errors.PhaseValue, nil, zero.Type().String(), TypeOf(v).String())
	}
	return t, nil
}

// HandleOf extracts the capability from v.
func HandleOf(v Value) (handle.Handle, error) {
	h, err := As[Handle](v)
	if err != nil {
		return handle.Null, err
	}
	return h.Handle, nil
}

// Types returns the type of each value.
func Types(vals []Value) []Type {
	out := make([]Type, len(vals))
	for i, v := range vals {
		out[i] = TypeOf(v)
	}
	return out
}
