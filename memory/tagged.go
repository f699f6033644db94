package memory

import (
	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/value"
)

// Load reads a value of type t at h.
func (m *Memory) Load(h handle.Handle, t value.Type) (value.Value, error) {
	switch t {
	case value.TypeI32:
		v, err := Read[int32](m, h)
		return value.I32(v), err
	case value.TypeI64:
		v, err := Read[int64](m, h)
		return value.I64(v), err
	case value.TypeF32:
		v, err := Read[float32](m, h)
		return value.F32(v), err
	case value.TypeF64:
		v, err := Read[float64](m, h)
		return value.F64(v), err
	case value.TypeHandle:
		v, err := m.LoadHandle(h)
		return value.Of(v), err
	default:
		return value.Undefined{}, errors.Unsupported(errors.PhaseMemory, "load of "+t.String())
	}
}

// Store writes v at h. Handle values go through StoreHandle.
func (m *Memory) Store(h handle.Handle, v value.Value) error {
	switch v := v.(type) {
	case value.I32:
		return Write(m, h, int32(v))
	case value.I64:
		return Write(m, h, int64(v))
	case value.F32:
		return Write(m, h, float32(v))
	case value.F64:
		return Write(m, h, float64(v))
	case value.Handle:
		return m.StoreHandle(h, v.Handle)
	default:
		return errors.Unsupported(errors.PhaseMemory, "store of "+value.TypeOf(v).String())
	}
}
