package handle

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/tag"
)

// Sentinel is the segment id reserved for the encoding of Null.
const Sentinel uint32 = math.MaxUint32

// Size is the number of bytes a handle occupies in memory.
const Size = tag.WordSize

// Kind identifies the variant of a Handle.
type Kind uint8

const (
	KindNull Kind = iota
	KindValid
	KindCorrupted
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindValid:
		return "valid"
	case KindCorrupted:
		return "corrupted"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Handle is a capability value. Handles are plain values: copying one is
// free and they have no destructor. Validity of a Valid handle lapses when
// its segment is freed.
type Handle struct {
	raw    [8]byte
	seg    uint32
	off    uint32
	nullAt int32
	kind   Kind
}

// Null is the distinguished non-capability handle.
var Null = Handle{}

// Valid returns the handle naming offset off of segment seg.
// It panics if seg is the reserved Sentinel.
func Valid(seg, off uint32) Handle {
	if seg == Sentinel {
		panic("handle: segment id collides with null sentinel")
	}
	return Handle{kind: KindValid, seg: seg, off: off}
}

// NullAt returns Null displaced by off.
func NullAt(off int32) Handle {
	return Handle{kind: KindNull, nullAt: off}
}

// Corrupted returns the untrusted handle holding b.
func Corrupted(b [8]byte) Handle {
	return Handle{kind: KindCorrupted, raw: b}
}

// Kind returns the variant of h.
func (h Handle) Kind() Kind { return h.kind }

func (h Handle) IsValid() bool     { return h.kind == KindValid }
func (h Handle) IsNull() bool      { return h.kind == KindNull }
func (h Handle) IsCorrupted() bool { return h.kind == KindCorrupted }

// SegmentID returns the segment a Valid handle names.
func (h Handle) SegmentID() (uint32, error) {
	switch h.kind {
	case KindValid:
		return h.seg, nil
	case KindNull:
		return 0, errors.New(errors.PhaseHandle, errors.KindNullHandle).
			Handle(h).Detail("null handle names no segment").Build()
	default:
		return 0, errors.Corrupted(errors.PhaseHandle, h, "segment id")
	}
}

// Offset returns the offset of a Valid handle (unsigned) or the displacement
// of a Null handle (signed).
func (h Handle) Offset() (int64, error) {
	switch h.kind {
	case KindValid:
		return int64(h.off), nil
	case KindNull:
		return int64(h.nullAt), nil
	default:
		return 0, errors.Corrupted(errors.PhaseHandle, h, "offset")
	}
}

// Bytes returns the raw bytes of a Corrupted handle.
func (h Handle) Bytes() ([8]byte, bool) {
	return h.raw, h.kind == KindCorrupted
}

// Add displaces h by amt bytes. Valid offsets wrap modulo 2^32; bounds are
// checked at access time, not here. Null displacement is checked and fails
// on overflow. Arithmetic on a Corrupted handle always fails.
func (h Handle) Add(amt int32) (Handle, error) {
	switch h.kind {
	case KindValid:
		return Handle{kind: KindValid, seg: h.seg, off: h.off + uint32(amt)}, nil
	case KindNull:
		return h.nullDisplace(int64(h.nullAt) + int64(amt))
	default:
		return Handle{}, errors.Corrupted(errors.PhaseHandle, h, "add")
	}
}

// Sub displaces h by -amt bytes with the same rules as Add.
func (h Handle) Sub(amt int32) (Handle, error) {
	switch h.kind {
	case KindValid:
		return Handle{kind: KindValid, seg: h.seg, off: h.off - uint32(amt)}, nil
	case KindNull:
		return h.nullDisplace(int64(h.nullAt) - int64(amt))
	default:
		return Handle{}, errors.Corrupted(errors.PhaseHandle, h, "sub")
	}
}

func (h Handle) nullDisplace(off int64) (Handle, error) {
	if off < math.MinInt32 || off > math.MaxInt32 {
		return Handle{}, errors.Overflow(errors.PhaseHandle, off,
			fmt.Sprintf("null displacement %d overflows i32", off))
	}
	return NullAt(int32(off)), nil
}

// Equal reports structural equality. Handles of different variants are
// never equal; corrupted handles are equal when their bytes are.
func (h Handle) Equal(o Handle) bool {
	if h.kind != o.kind {
		return false
	}
	switch h.kind {
	case KindValid:
		return h.seg == o.seg && h.off == o.off
	case KindNull:
		return h.nullAt == o.nullAt
	default:
		return h.raw == o.raw
	}
}

// Less orders Null before every Valid handle, Null handles by displacement
// and Valid handles by (segment, offset). Corrupted handles have no order.
func (h Handle) Less(o Handle) (bool, error) {
	if h.kind == KindCorrupted {
		return false, errors.Corrupted(errors.PhaseHandle, h, "compare")
	}
	if o.kind == KindCorrupted {
		return false, errors.Corrupted(errors.PhaseHandle, o, "compare")
	}
	switch {
	case h.kind == KindNull && o.kind == KindNull:
		return h.nullAt < o.nullAt, nil
	case h.kind == KindNull:
		return true, nil
	case o.kind == KindNull:
		return false, nil
	}
	return h.seg < o.seg || (h.seg == o.seg && h.off < o.off), nil
}

// Encode returns the 8-byte wire form of h and the tag to store with it.
// A Null handle with a non-zero displacement has no wire form.
func (h Handle) Encode() ([8]byte, tag.Tag, error) {
	var b [8]byte
	switch h.kind {
	case KindValid:
		binary.LittleEndian.PutUint32(b[:4], h.seg)
		binary.LittleEndian.PutUint32(b[4:], h.off)
		return b, tag.Handle, nil
	case KindNull:
		if h.nullAt != 0 {
			return b, tag.Data, errors.New(errors.PhaseHandle, errors.KindUnsupported).
				Handle(h).Detail("null handle with displacement %d cannot be stored", h.nullAt).Build()
		}
		binary.LittleEndian.PutUint32(b[:4], Sentinel)
		binary.LittleEndian.PutUint32(b[4:], Sentinel)
		return b, tag.Handle, nil
	default:
		return h.raw, tag.Data, nil
	}
}

// Decode rebuilds a handle from a memory word and its tag.
func Decode(b [8]byte, t tag.Tag) (Handle, error) {
	if !t.CanBeHandle() {
		return Corrupted(b), nil
	}
	seg := binary.LittleEndian.Uint32(b[:4])
	off := binary.LittleEndian.Uint32(b[4:])
	if seg == Sentinel {
		if off != Sentinel {
			return Handle{}, errors.New(errors.PhaseHandle, errors.KindInvalidData).
				Value(b).Detail("null sentinel with offset %#x", off).Build()
		}
		return Null, nil
	}
	return Handle{kind: KindValid, seg: seg, off: off}, nil
}

func (h Handle) String() string {
	switch h.kind {
	case KindValid:
		return fmt.Sprintf("<seg=%d off=%#x>", h.seg, h.off)
	case KindNull:
		return fmt.Sprintf("<null off=%#x>", h.nullAt)
	default:
		return fmt.Sprintf("<corrupted %v>", h.raw)
	}
}
