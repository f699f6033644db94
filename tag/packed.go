package tag

import "math/bits"

// PackedTable keeps one bit per word: set means Handle, clear means Data.
type PackedTable struct {
	bits  []uint64
	words uint32
}

// NewPacked creates a packed table of words Data tags.
func NewPacked(words uint32) *PackedTable {
	return &PackedTable{
		bits:  make([]uint64, (uint64(words)+63)/64),
		words: words,
	}
}

func (t *PackedTable) Len() int { return int(t.words) }

func (t *PackedTable) Get(word uint32) (Tag, error) {
	if word >= t.words {
		return Data, outOfRange(word, int(t.words))
	}
	if t.bits[word/64]&(1<<(word%64)) == 0 {
		return Data, nil
	}
	return Handle, nil
}

func (t *PackedTable) Set(word uint32, tg Tag) error {
	if word >= t.words {
		return outOfRange(word, int(t.words))
	}
	if tg.CanBeHandle() {
		t.bits[word/64] |= 1 << (word % 64)
	} else {
		t.bits[word/64] &^= 1 << (word % 64)
	}
	return nil
}

// Count returns the number of words tagged Handle.
func (t *PackedTable) Count() int {
	n := 0
	for _, w := range t.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bits returns the underlying bitmap. The slice is shared with the table.
func (t *PackedTable) Bits() []uint64 {
	return t.bits
}
