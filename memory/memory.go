package memory

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/segment"
	"github.com/wippyai/mswasm-runtime/tag"
)

// Scalar lists the plain value types memory can hold.
type Scalar interface {
	uint8 | uint16 | uint32 | uint64 | int8 | int16 | int32 | int64 | float32 | float64
}

// Memory provides the access protocol over a segment store.
type Memory struct {
	store *segment.Store
}

// New returns a Memory over store.
func New(store *segment.Store) *Memory {
	return &Memory{store: store}
}

// Segments returns the underlying store.
func (m *Memory) Segments() *segment.Store {
	return m.store
}

// locate resolves h and checks that n bytes at its offset lie in the segment.
func (m *Memory) locate(h handle.Handle, n int) (*segment.Segment, uint32, error) {
	switch {
	case h.IsCorrupted():
		return nil, 0, errors.Corrupted(errors.PhaseMemory, h, "memory access")
	case h.IsNull():
		return nil, 0, errors.New(errors.PhaseMemory, errors.KindNullHandle).
			Handle(h).Detail("memory access through null handle").Build()
	}
	seg, err := m.store.Resolve(h)
	if err != nil {
		return nil, 0, err
	}
	off64, _ := h.Offset()
	off := uint32(off64)
	if uint64(off)+uint64(n) > uint64(seg.Len()) {
		return nil, 0, errors.OutOfBounds(errors.PhaseMemory, h, uint64(off), n, seg.Len())
	}
	return seg, off, nil
}

// locateWord is locate for a handle-sized, handle-aligned access.
func (m *Memory) locateWord(h handle.Handle) (*segment.Segment, uint32, error) {
	if h.IsValid() {
		if off, _ := h.Offset(); off%handle.Size != 0 {
			return nil, 0, errors.Misaligned(errors.PhaseMemory, h, uint64(off), handle.Size)
		}
	}
	return m.locate(h, handle.Size)
}

// Read returns the value of type T stored at h. Tags are not consulted.
func Read[T Scalar](m *Memory, h handle.Handle) (T, error) {
	var v T
	seg, off, err := m.locate(h, sizeOf[T]())
	if err != nil {
		return v, err
	}
	decode(&v, seg.Data()[off:])
	return v, nil
}

// Write stores v at h and demotes every word it overlaps to Data.
func Write[T Scalar](m *Memory, h handle.Handle, v T) error {
	var buf [8]byte
	n := encode(buf[:], v)
	return m.WriteBytes(h, buf[:n])
}

func sizeOf[T Scalar]() int {
	var v T
	switch any(v).(type) {
	case uint8, int8:
		return 1
	case uint16, int16:
		return 2
	case uint32, int32, float32:
		return 4
	default:
		return 8
	}
}

func decode[T Scalar](v *T, b []byte) {
	switch p := any(v).(type) {
	case *uint8:
		*p = b[0]
	case *int8:
		*p = int8(b[0])
	case *uint16:
		*p = binary.LittleEndian.Uint16(b)
	case *int16:
		*p = int16(binary.LittleEndian.Uint16(b))
	case *uint32:
		*p = binary.LittleEndian.Uint32(b)
	case *int32:
		*p = int32(binary.LittleEndian.Uint32(b))
	case *uint64:
		*p = binary.LittleEndian.Uint64(b)
	case *int64:
		*p = int64(binary.LittleEndian.Uint64(b))
	case *float32:
		*p = math.Float32frombits(binary.LittleEndian.Uint32(b))
	case *float64:
		*p = math.Float64frombits(binary.LittleEndian.Uint64(b))
	}
}

func encode[T Scalar](b []byte, v T) int {
	switch x := any(v).(type) {
	case uint8:
		b[0] = x
		return 1
	case int8:
		b[0] = uint8(x)
		return 1
	case uint16:
		binary.LittleEndian.PutUint16(b, x)
		return 2
	case int16:
		binary.LittleEndian.PutUint16(b, uint16(x))
		return 2
	case uint32:
		binary.LittleEndian.PutUint32(b, x)
		return 4
	case int32:
		binary.LittleEndian.PutUint32(b, uint32(x))
		return 4
	case uint64:
		binary.LittleEndian.PutUint64(b, x)
		return 8
	case int64:
		binary.LittleEndian.PutUint64(b, uint64(x))
		return 8
	case float32:
		binary.LittleEndian.PutUint32(b, math.Float32bits(x))
		return 4
	case float64:
		binary.LittleEndian.PutUint64(b, math.Float64bits(x))
		return 8
	}
	return 0
}

// LoadHandle reads the handle stored at h, which must be 8-byte aligned.
// Words not tagged Handle decode as Corrupted.
func (m *Memory) LoadHandle(h handle.Handle) (handle.Handle, error) {
	seg, off, err := m.locateWord(h)
	if err != nil {
		return handle.Null, err
	}
	t, err := seg.Tags().Get(off / tag.WordSize)
	if err != nil {
		return handle.Null, err
	}
	var raw [8]byte
	copy(raw[:], seg.Data()[off:])
	v, err := handle.Decode(raw, t)
	if err != nil {
		return handle.Null, errors.New(errors.PhaseMemory, errors.KindInvalidData).
			Handle(h).Cause(err).Detail("load of malformed handle").Build()
	}
	return v, nil
}

// StoreHandle writes v at h, which must be 8-byte aligned, and sets the
// word's tag from the encoding: Handle for Valid and Null, Data for
// Corrupted.
func (m *Memory) StoreHandle(h handle.Handle, v handle.Handle) error {
	raw, t, err := v.Encode()
	if err != nil {
		return err
	}
	seg, off, err := m.locateWord(h)
	if err != nil {
		return err
	}
	if err := seg.Tags().Set(off/tag.WordSize, t); err != nil {
		return err
	}
	copy(seg.Data()[off:], raw[:])
	return nil
}

// Bytes returns a view of n bytes at h. The view aliases segment memory and
// is valid until the segment is freed. Writing through it bypasses tag
// demotion; use WriteBytes or Collect to modify memory.
func (m *Memory) Bytes(h handle.Handle, n uint32) ([]byte, error) {
	seg, off, err := m.locate(h, int(n))
	if err != nil {
		return nil, err
	}
	return seg.Data()[off : off+n : off+n], nil
}

// WriteBytes copies data to h and demotes every word it overlaps to Data.
func (m *Memory) WriteBytes(h handle.Handle, data []byte) error {
	seg, off, err := m.locate(h, len(data))
	if err != nil || len(data) == 0 {
		return err
	}
	first, last := tag.Span(off, uint32(len(data)))
	if err := tag.ClearRange(seg.Tags(), first, last); err != nil {
		return err
	}
	copy(seg.Data()[off:], data)
	return nil
}

// Collect hands fn a private copy of the n bytes at h. When fn succeeds the
// words whose bytes it changed are written back and demoted to Data; words
// it left alone keep their tags. When fn fails memory is unchanged.
func (m *Memory) Collect(h handle.Handle, n uint32, fn func([]byte) error) error {
	seg, off, err := m.locate(h, int(n))
	if err != nil {
		return err
	}
	orig := seg.Data()[off : off+n]
	scratch := bytes.Clone(orig)
	if scratch == nil {
		scratch = []byte{}
	}
	if err := fn(scratch); err != nil {
		return err
	}

	// Walk the range one tag word at a time, clipped to [off, off+n).
	for pos := uint32(0); pos < n; {
		next := (uint64(off+pos)/tag.WordSize + 1) * tag.WordSize
		end := uint32(min(next-uint64(off), uint64(n)))
		if !bytes.Equal(orig[pos:end], scratch[pos:end]) {
			if err := seg.Tags().Set((off+pos)/tag.WordSize, tag.Data); err != nil {
				return err
			}
			copy(orig[pos:end], scratch[pos:end])
		}
		pos = end
	}
	return nil
}
