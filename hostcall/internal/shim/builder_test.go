package shim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func TestEncodeULEB128(t *testing.T) {
	tests := []struct {
		in   uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, EncodeULEB128(tt.in))
	}
}

func TestBuildCompiles(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	b := NewBuilder("env")
	b.AddFunc(Func{
		Name:    "add",
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI64},
		Results: []api.ValueType{api.ValueTypeI64},
	})
	b.AddFunc(Func{Name: "ping"})
	b.SetMinPages(2)

	compiled, err := r.CompileModule(ctx, b.Build())
	require.NoError(t, err)

	imports := compiled.ImportedFunctions()
	require.Len(t, imports, 2)
	mod, name, ok := imports[0].Import()
	require.True(t, ok)
	require.Equal(t, "env", mod)
	require.Equal(t, "add", name)

	exports := compiled.ExportedFunctions()
	require.Contains(t, exports, "add")
	require.Contains(t, exports, "ping")
	require.Equal(t, []api.ValueType{api.ValueTypeI32, api.ValueTypeI64}, exports["add"].ParamTypes())

	mems := compiled.ExportedMemories()
	require.Contains(t, mems, MemoryExport)
	require.Equal(t, uint32(2), mems[MemoryExport].Min())
}

func TestForwarding(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	_, err := r.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(func(_ context.Context, m api.Module, a uint32, b uint64) uint64 {
			m.Memory().WriteByte(0, 0x2a)
			return uint64(a) + b
		}).
		Export("add").
		Instantiate(ctx)
	require.NoError(t, err)

	b := NewBuilder("env")
	b.AddFunc(Func{
		Name:    "add",
		Params:  []api.ValueType{api.ValueTypeI32, api.ValueTypeI64},
		Results: []api.ValueType{api.ValueTypeI64},
	})
	mod, err := r.InstantiateWithConfig(ctx, b.Build(), wazero.NewModuleConfig().WithName("shim"))
	require.NoError(t, err)

	res, err := mod.ExportedFunction("add").Call(ctx, 2, 40)
	require.NoError(t, err)
	require.Equal(t, []uint64{42}, res)

	// The import ran against the shim's memory.
	v, ok := mod.Memory().ReadByte(0)
	require.True(t, ok)
	require.Equal(t, byte(0x2a), v)
}
