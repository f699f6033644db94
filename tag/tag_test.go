package tag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/mswasm-runtime/errors"
)

func TestWordsAndSpan(t *testing.T) {
	require.Equal(t, uint32(0), Words(0))
	require.Equal(t, uint32(1), Words(1))
	require.Equal(t, uint32(1), Words(8))
	require.Equal(t, uint32(2), Words(9))
	require.Equal(t, uint32(536870912), Words(^uint32(0)))

	tests := []struct {
		offset, n   uint32
		first, last uint32
	}{
		{0, 1, 0, 0},
		{0, 8, 0, 0},
		{7, 1, 0, 0},
		{7, 2, 0, 1},
		{4, 8, 0, 1},
		{8, 8, 1, 1},
		{15, 2, 1, 2},
	}
	for _, tt := range tests {
		first, last := Span(tt.offset, tt.n)
		require.Equal(t, tt.first, first, "first word of %d+%d", tt.offset, tt.n)
		require.Equal(t, tt.last, last, "last word of %d+%d", tt.offset, tt.n)
	}
}

func TestSafeStrategies(t *testing.T) {
	for _, s := range []Strategy{PerWord, Packed} {
		t.Run(s.String(), func(t *testing.T) {
			tbl := New(s, 130)
			require.Equal(t, 130, tbl.Len())

			for w := uint32(0); w < 130; w++ {
				got, err := tbl.Get(w)
				require.NoError(t, err)
				require.Equal(t, Data, got)
			}

			require.NoError(t, tbl.Set(0, Handle))
			require.NoError(t, tbl.Set(64, Handle))
			require.NoError(t, tbl.Set(129, Handle))

			for _, w := range []uint32{0, 64, 129} {
				got, err := tbl.Get(w)
				require.NoError(t, err)
				require.Equal(t, Handle, got, "word %d", w)
			}
			got, err := tbl.Get(1)
			require.NoError(t, err)
			require.Equal(t, Data, got)

			require.NoError(t, ClearRange(tbl, 63, 65))
			got, err = tbl.Get(64)
			require.NoError(t, err)
			require.Equal(t, Data, got)
			got, err = tbl.Get(0)
			require.NoError(t, err)
			require.Equal(t, Handle, got)

			_, err = tbl.Get(130)
			require.True(t, errors.IsKind(err, errors.KindOutOfBounds))
			err = tbl.Set(130, Handle)
			require.True(t, errors.IsKind(err, errors.KindOutOfBounds))
		})
	}
}

func TestPackedCount(t *testing.T) {
	tbl := NewPacked(200)
	require.Len(t, tbl.Bits(), 4)
	require.NoError(t, tbl.Set(3, Handle))
	require.NoError(t, tbl.Set(199, Handle))
	require.NoError(t, tbl.Set(3, Handle))
	require.Equal(t, 2, tbl.Count())
	require.NoError(t, tbl.Set(3, Data))
	require.Equal(t, 1, tbl.Count())
}

func TestDisabled(t *testing.T) {
	tbl := New(Disabled, 16)
	require.Equal(t, 0, tbl.Len())

	require.NoError(t, tbl.Set(1000, Data))
	got, err := tbl.Get(1000)
	require.NoError(t, err)
	require.Equal(t, Handle, got)
	require.True(t, got.CanBeHandle())
	require.False(t, Disabled.Safe())
}

func TestStrategyText(t *testing.T) {
	for _, s := range []Strategy{PerWord, Packed, Disabled} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var back Strategy
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, s, back)
	}

	s, err := ParseStrategy("")
	require.NoError(t, err)
	require.Equal(t, PerWord, s)

	s, err = ParseStrategy("NoTags")
	require.NoError(t, err)
	require.Equal(t, Disabled, s)

	_, err = ParseStrategy("sparse")
	require.Error(t, err)
}
