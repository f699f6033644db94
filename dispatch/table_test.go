package dispatch

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/value"
)

func echoFirst(_ context.Context, args []value.Value) ([]value.Value, error) {
	return args[:1], nil
}

func newScenarioTable(t *testing.T) *Table {
	t.Helper()
	tbl := New(8)
	require.NoError(t, tbl.Bind(7, &Target{
		Name: "f",
		Sig:  Sig(value.TypeI32, value.TypeHandle).Returning(value.TypeI32),
		Fn:   echoFirst,
	}))
	return tbl
}

func TestCallChecksSignature(t *testing.T) {
	ctx := context.Background()
	tbl := newScenarioTable(t)
	h := value.Of(handle.Valid(1, 0))

	out, err := tbl.Call(ctx, 7, []value.Value{value.I32(3), h})
	require.NoError(t, err)
	require.Equal(t, []value.Value{value.I32(3)}, out)

	tests := []struct {
		name string
		idx  uint32
		args []value.Value
		kind errors.Kind
	}{
		{"wrong second variant", 7, []value.Value{value.I32(3), value.I32(4)}, errors.KindTypeMismatch},
		{"swapped variants", 7, []value.Value{h, value.I32(3)}, errors.KindTypeMismatch},
		{"missing argument", 7, []value.Value{value.I32(3)}, errors.KindArity},
		{"extra argument", 7, []value.Value{value.I32(3), h, value.I32(0)}, errors.KindArity},
		{"undefined argument", 7, []value.Value{value.I32(3), value.Undefined{}}, errors.KindTypeMismatch},
		{"empty slot", 2, []value.Value{value.I32(3), h}, errors.KindNotFound},
		{"out of range", 8, []value.Value{value.I32(3), h}, errors.KindOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tbl.Call(ctx, tt.idx, tt.args)
			require.True(t, errors.IsKind(err, tt.kind), "got %v", err)
		})
	}
}

func TestCallChecksResults(t *testing.T) {
	tbl := New(1)
	require.NoError(t, tbl.Bind(0, &Target{
		Name: "bad",
		Sig:  Sig().Returning(value.TypeI64),
		Fn: func(context.Context, []value.Value) ([]value.Value, error) {
			return []value.Value{value.I32(1)}, nil
		},
	}))
	_, err := tbl.Call(context.Background(), 0, nil)
	require.True(t, errors.IsKind(err, errors.KindTypeMismatch))
	require.Contains(t, err.Error(), "bad.result.0")
}

func TestCallAs(t *testing.T) {
	tbl := newScenarioTable(t)
	args := []value.Value{value.I32(1), value.Of(handle.Null)}

	_, err := tbl.CallAs(context.Background(), 7, Sig(value.TypeI32, value.TypeHandle).Returning(value.TypeI32), args)
	require.NoError(t, err)

	_, err = tbl.CallAs(context.Background(), 7, Sig(value.TypeI32, value.TypeHandle), args)
	require.True(t, errors.IsKind(err, errors.KindTypeMismatch))
}

func TestBindUnbindGrow(t *testing.T) {
	tbl := New(2)
	target := &Target{Name: "g", Fn: echoFirst, Sig: Sig(value.TypeI32).Returning(value.TypeI32)}

	require.True(t, errors.IsKind(tbl.Bind(2, target), errors.KindOutOfBounds))
	require.True(t, errors.IsKind(tbl.Bind(0, &Target{Name: "nil"}), errors.KindInvalidInput))

	old, err := tbl.Grow(3)
	require.NoError(t, err)
	require.Equal(t, uint32(2), old)
	require.Equal(t, 5, tbl.Len())

	require.NoError(t, tbl.Bind(4, target))
	require.NoError(t, tbl.Bind(1, target))
	require.Equal(t, 2, tbl.Bound())

	var seen []uint32
	tbl.Each(func(idx uint32, got *Target) {
		require.Same(t, target, got)
		seen = append(seen, idx)
	})
	require.Equal(t, []uint32{1, 4}, seen)

	require.NoError(t, tbl.Unbind(4))
	_, err = tbl.Lookup(4)
	require.True(t, errors.IsKind(err, errors.KindNotFound))

	_, err = New(1).Grow(^uint32(0))
	require.True(t, errors.IsKind(err, errors.KindOverflow))
}

func TestSignatureString(t *testing.T) {
	require.Equal(t, "(i32, handle) -> (i32)", Sig(value.TypeI32, value.TypeHandle).Returning(value.TypeI32).String())
	require.Equal(t, "() -> ()", Sig().String())
}

func TestLargeTableIsSparse(t *testing.T) {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	tbl := New(1 << 30)
	runtime.ReadMemStats(&after)

	require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
	require.Equal(t, 1<<30, tbl.Len())
	require.Zero(t, tbl.Bound())

	last := uint32(1<<30 - 1)
	require.NoError(t, tbl.Bind(last, &Target{Name: "last", Sig: Sig(value.TypeI32).Returning(value.TypeI32), Fn: echoFirst}))
	res, err := tbl.Call(context.Background(), last, []value.Value{value.I32(9)})
	require.NoError(t, err)
	require.Equal(t, []value.Value{value.I32(9)}, res)
	require.Equal(t, 1, tbl.Bound())
}
