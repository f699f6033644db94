package mswasm

// Memory is a flat, byte-addressed linear memory. The host-call layer marshals
// WASI arguments through it; segment memory is reached through handles instead.
type Memory interface {
	Read(offset, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	WriteU32(offset uint32, value uint32) error
}

// MemorySizer reports the current size of a linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator hands out regions of a linear memory. Free must be given the
// same size and alignment that Alloc received.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
