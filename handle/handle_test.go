package handle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/tag"
)

func TestZeroValueIsNull(t *testing.T) {
	var h Handle
	require.True(t, h.IsNull())
	require.True(t, h.Equal(Null))
	off, err := h.Offset()
	require.NoError(t, err)
	require.Equal(t, int64(0), off)
}

func TestValidPanicsOnSentinel(t *testing.T) {
	require.Panics(t, func() { Valid(Sentinel, 0) })
}

func TestNullArithmetic(t *testing.T) {
	h, err := Null.Add(5)
	require.NoError(t, err)
	require.True(t, h.Equal(NullAt(5)))

	h, err = h.Add(-5)
	require.NoError(t, err)
	require.True(t, h.Equal(Null))

	_, err = NullAt(math.MaxInt32).Add(1)
	require.True(t, errors.IsKind(err, errors.KindOverflow))

	_, err = NullAt(math.MinInt32).Sub(1)
	require.True(t, errors.IsKind(err, errors.KindOverflow))

	h, err = NullAt(-1).Sub(math.MinInt32)
	require.NoError(t, err)
	require.True(t, h.Equal(NullAt(math.MaxInt32)))
}

func TestValidArithmeticWraps(t *testing.T) {
	base := Valid(3, 0)

	h, err := base.Add(16)
	require.NoError(t, err)
	off, _ := h.Offset()
	require.Equal(t, int64(16), off)

	h, err = base.Add(-1)
	require.NoError(t, err)
	off, _ = h.Offset()
	require.Equal(t, int64(math.MaxUint32), off)

	h, err = h.Add(1)
	require.NoError(t, err)
	require.True(t, h.Equal(base))

	h, err = base.Sub(8)
	require.NoError(t, err)
	back, err := h.Add(8)
	require.NoError(t, err)
	require.True(t, back.Equal(base))

	seg, err := h.SegmentID()
	require.NoError(t, err)
	require.Equal(t, uint32(3), seg)
}

func TestCorruptedRejectsArithmetic(t *testing.T) {
	c := Corrupted([8]byte{1, 2, 3})

	_, err := c.Add(1)
	require.True(t, errors.IsKind(err, errors.KindCorrupted))
	_, err = c.Sub(1)
	require.True(t, errors.IsKind(err, errors.KindCorrupted))
	_, err = c.SegmentID()
	require.True(t, errors.IsKind(err, errors.KindCorrupted))
	_, err = c.Offset()
	require.True(t, errors.IsKind(err, errors.KindCorrupted))

	_, err = Null.SegmentID()
	require.True(t, errors.IsKind(err, errors.KindNullHandle))

	b, ok := c.Bytes()
	require.True(t, ok)
	require.Equal(t, [8]byte{1, 2, 3}, b)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Handle
		want bool
	}{
		{"same valid", Valid(1, 8), Valid(1, 8), true},
		{"different offset", Valid(1, 8), Valid(1, 0), false},
		{"different segment", Valid(1, 8), Valid(2, 8), false},
		{"nulls", NullAt(4), NullAt(4), true},
		{"null offsets differ", NullAt(4), NullAt(3), false},
		{"same corrupted bytes", Corrupted([8]byte{9}), Corrupted([8]byte{9}), true},
		{"different corrupted bytes", Corrupted([8]byte{9}), Corrupted([8]byte{8}), false},
		{"null vs valid", Null, Valid(1, 0), false},
		{"corrupted vs null", Corrupted([8]byte{}), Null, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.Equal(tt.b))
			require.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestLess(t *testing.T) {
	tests := []struct {
		name string
		a, b Handle
		want bool
	}{
		{"null before valid", Null, Valid(1, 0), true},
		{"valid after null", Valid(1, 0), Null, false},
		{"null by offset", NullAt(-1), NullAt(0), true},
		{"segment order", Valid(1, 100), Valid(2, 0), true},
		{"offset order", Valid(2, 0), Valid(2, 1), true},
		{"irreflexive", Valid(2, 1), Valid(2, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.a.Less(tt.b)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := Corrupted([8]byte{}).Less(Null)
	require.True(t, errors.IsKind(err, errors.KindCorrupted))
	_, err = Valid(1, 0).Less(Corrupted([8]byte{}))
	require.True(t, errors.IsKind(err, errors.KindCorrupted))
}

func TestEncodeLayout(t *testing.T) {
	b, tg, err := Valid(0x01020304, 0x0a0b0c0d).Encode()
	require.NoError(t, err)
	require.Equal(t, tag.Handle, tg)
	require.Equal(t, [8]byte{0x04, 0x03, 0x02, 0x01, 0x0d, 0x0c, 0x0b, 0x0a}, b)

	b, tg, err = Null.Encode()
	require.NoError(t, err)
	require.Equal(t, tag.Handle, tg)
	require.Equal(t, [8]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, b)

	raw := [8]byte{0xff, 1, 2, 3, 4, 5, 6, 7}
	b, tg, err = Corrupted(raw).Encode()
	require.NoError(t, err)
	require.Equal(t, tag.Data, tg)
	require.Equal(t, raw, b)

	_, _, err = NullAt(8).Encode()
	require.True(t, errors.IsKind(err, errors.KindUnsupported))
}

func TestRoundTrip(t *testing.T) {
	for _, h := range []Handle{
		Null,
		Valid(1, 0),
		Valid(7, 24),
		Valid(Sentinel-1, math.MaxUint32),
		Corrupted([8]byte{1, 2, 3, 4, 5, 6, 7, 8}),
		Corrupted([8]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}),
	} {
		t.Run(h.String(), func(t *testing.T) {
			b, tg, err := h.Encode()
			require.NoError(t, err)
			back, err := Decode(b, tg)
			require.NoError(t, err)
			require.True(t, back.Equal(h), "got %v", back)
		})
	}
}

func TestDecodeDataTagNeverYieldsCapability(t *testing.T) {
	valid, _, err := Valid(2, 16).Encode()
	require.NoError(t, err)
	null, _, err := Null.Encode()
	require.NoError(t, err)

	for _, b := range [][8]byte{valid, null, {}} {
		h, err := Decode(b, tag.Data)
		require.NoError(t, err)
		require.True(t, h.IsCorrupted())
		raw, _ := h.Bytes()
		require.Equal(t, b, raw)
	}
}

func TestDecodeSentinelMismatch(t *testing.T) {
	b := [8]byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0}
	_, err := Decode(b, tag.Handle)
	require.True(t, errors.IsKind(err, errors.KindInvalidData))
}

func TestString(t *testing.T) {
	require.Equal(t, "<seg=1 off=0x8>", Valid(1, 8).String())
	require.Equal(t, "<null off=0x0>", Null.String())
	require.Contains(t, Corrupted([8]byte{255}).String(), "corrupted")
	require.Equal(t, "valid", KindValid.String())
}
