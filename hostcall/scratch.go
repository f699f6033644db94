package hostcall

import (
	"github.com/tetratelabs/wazero/api"

	mswasm "github.com/wippyai/mswasm-runtime"
	"github.com/wippyai/mswasm-runtime/errors"
)

const pageSize = 65536

var (
	_ mswasm.Memory      = (*scratch)(nil)
	_ mswasm.MemorySizer = (*scratch)(nil)
	_ mswasm.Allocator   = (*scratch)(nil)
)

// region is one live scratch allocation and the top it was carved from.
type region struct {
	start uint32
	prev  uint32
	freed bool
}

// scratch is a stack arena over the shim's linear memory. Space returns to
// the arena once every allocation made after it has been freed as well; the
// memory grows on demand and never shrinks.
type scratch struct {
	mem     api.Memory
	top     uint32
	regions []region
}

func newScratch(mem api.Memory) *scratch {
	return &scratch{mem: mem}
}

// Alloc reserves size bytes aligned to align.
func (s *scratch) Alloc(size, align uint32) (uint32, error) {
	if align == 0 {
		align = 1
	}
	start := (uint64(s.top) + uint64(align) - 1) / uint64(align) * uint64(align)
	end := start + uint64(size)
	if end > uint64(^uint32(0)) {
		return 0, errors.New(errors.PhaseHost, errors.KindAllocation).
			Value(size).Detail("scratch allocation exceeds 4GiB").Build()
	}
	if have := uint64(s.Size()); end > have {
		pages := (end - have + pageSize - 1) / pageSize
		if _, ok := s.mem.Grow(uint32(pages)); !ok {
			return 0, errors.New(errors.PhaseHost, errors.KindAllocation).
				Value(pages).Detail("scratch memory cannot grow by %d pages", pages).Build()
		}
	}
	s.regions = append(s.regions, region{start: uint32(start), prev: s.top})
	s.top = uint32(end)
	return uint32(start), nil
}

// Free releases the allocation at ptr. Unknown pointers are ignored.
func (s *scratch) Free(ptr, _, _ uint32) {
	for i := len(s.regions) - 1; i >= 0; i-- {
		if s.regions[i].start == ptr && !s.regions[i].freed {
			s.regions[i].freed = true
			break
		}
	}
	for n := len(s.regions); n > 0 && s.regions[n-1].freed; n-- {
		s.top = s.regions[n-1].prev
		s.regions = s.regions[:n-1]
	}
}

// Size returns the scratch memory size in bytes.
func (s *scratch) Size() uint32 {
	return s.mem.Size()
}

// Read returns a view of length bytes at offset.
func (s *scratch) Read(offset, length uint32) ([]byte, error) {
	data, ok := s.mem.Read(offset, length)
	if !ok {
		return nil, s.outOfBounds("read", offset, length)
	}
	return data, nil
}

func (s *scratch) Write(offset uint32, data []byte) error {
	if !s.mem.Write(offset, data) {
		return s.outOfBounds("write", offset, uint32(len(data)))
	}
	return nil
}

func (s *scratch) ReadU32(offset uint32) (uint32, error) {
	v, ok := s.mem.ReadUint32Le(offset)
	if !ok {
		return 0, s.outOfBounds("read", offset, 4)
	}
	return v, nil
}

func (s *scratch) WriteU32(offset uint32, value uint32) error {
	if !s.mem.WriteUint32Le(offset, value) {
		return s.outOfBounds("write", offset, 4)
	}
	return nil
}

func (s *scratch) outOfBounds(op string, offset, length uint32) error {
	return errors.New(errors.PhaseHost, errors.KindOutOfBounds).
		Value(offset).
		Detail("scratch %s of %d bytes at %d (size %d)", op, length, offset, s.Size()).
		Build()
}
