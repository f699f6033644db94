package tag

import (
	"fmt"

	"github.com/wippyai/mswasm-runtime/errors"
)

// WordSize is the number of bytes covered by one tag.
const WordSize = 8

// Tag records whether a memory word holds a handle or plain data.
type Tag uint8

const (
	Data Tag = iota
	Handle
)

// CanBeHandle reports whether a word with this tag may be decoded as a handle.
func (t Tag) CanBeHandle() bool {
	return t == Handle
}

func (t Tag) String() string {
	switch t {
	case Data:
		return "data"
	case Handle:
		return "handle"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Table stores one tag per word of a segment.
type Table interface {
	// Len returns the number of words tracked.
	Len() int

	// Get returns the tag of a word.
	Get(word uint32) (Tag, error)

	// Set updates the tag of a word.
	Set(word uint32, t Tag) error
}

// Words returns the number of tag words needed to cover size bytes.
func Words(size uint32) uint32 {
	return uint32((uint64(size) + WordSize - 1) / WordSize)
}

// Span returns the inclusive range of words touched by an access of n bytes
// at offset. n must be positive.
func Span(offset uint32, n uint32) (first, last uint32) {
	return offset / WordSize, uint32((uint64(offset) + uint64(n) - 1) / WordSize)
}

// ClearRange demotes every word in [first, last] to Data.
func ClearRange(t Table, first, last uint32) error {
	for w := first; w <= last; w++ {
		if err := t.Set(w, Data); err != nil {
			return err
		}
	}
	return nil
}

func outOfRange(word uint32, n int) error {
	return errors.IndexOutOfBounds(errors.PhaseTag, "word", int(word), n)
}
