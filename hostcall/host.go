package hostcall

import (
	"context"
	"io"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	mswasm "github.com/wippyai/mswasm-runtime"
	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/hostcall/internal/shim"
)

const shimModuleName = "mswasm_host"

// WASI errno values returned by the operations.
const (
	ErrnoSuccess int32 = 0
	ErrnoBadf    int32 = 8
	ErrnoInval   int32 = 28
)

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// forwarded lists the WASI functions reachable through the shim.
var forwarded = []shim.Func{
	{Name: "args_get", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{i32}},
	{Name: "args_sizes_get", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{i32}},
	{Name: "environ_get", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{i32}},
	{Name: "environ_sizes_get", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{i32}},
	{Name: "clock_time_get", Params: []api.ValueType{i32, i64, i32}, Results: []api.ValueType{i32}},
	{Name: "fd_close", Params: []api.ValueType{i32}, Results: []api.ValueType{i32}},
	{Name: "fd_fdstat_get", Params: []api.ValueType{i32, i32}, Results: []api.ValueType{i32}},
	{Name: "fd_seek", Params: []api.ValueType{i32, i64, i32, i32}, Results: []api.ValueType{i32}},
	{Name: "fd_write", Params: []api.ValueType{i32, i32, i32, i32}, Results: []api.ValueType{i32}},
}

// Config configures the WASI environment seen by programs.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Env is presented to programs in key order.
	Env map[string]string

	// Args includes the program name as Args[0].
	Args []string

	// Walltime selects the host clock instead of wazero's deterministic one.
	Walltime bool
}

// Host executes WASI calls for one runtime instance.
type Host struct {
	runtime wazero.Runtime
	module  api.Module
	mem     mswasm.Memory
	arena   mswasm.Allocator
	funcs   map[string]api.Function
}

// New instantiates WASI and the shim module. Close releases them.
func New(ctx context.Context, cfg *Config) (*Host, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	r := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseHost, errors.KindHostCall, err, "instantiate WASI")
	}

	b := shim.NewBuilder(wasi_snapshot_preview1.ModuleName)
	for _, f := range forwarded {
		b.AddFunc(f)
	}
	mod, err := r.InstantiateWithConfig(ctx, b.Build(), moduleConfig(cfg))
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseHost, errors.KindHostCall, err, "instantiate shim module")
	}

	arena := newScratch(mod.Memory())
	h := &Host{
		runtime: r,
		module:  mod,
		mem:     arena,
		arena:   arena,
		funcs:   make(map[string]api.Function, len(forwarded)),
	}
	for _, f := range forwarded {
		h.funcs[f.Name] = mod.ExportedFunction(f.Name)
	}

	Logger().Debug("host ready",
		zap.Strings("args", cfg.Args),
		zap.Int("env", len(cfg.Env)),
		zap.Bool("walltime", cfg.Walltime))
	return h, nil
}

func moduleConfig(cfg *Config) wazero.ModuleConfig {
	mc := wazero.NewModuleConfig().
		WithName(shimModuleName).
		WithStartFunctions().
		WithArgs(cfg.Args...)

	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		mc = mc.WithEnv(k, cfg.Env[k])
	}

	if cfg.Stdin != nil {
		mc = mc.WithStdin(cfg.Stdin)
	}
	if cfg.Stdout != nil {
		mc = mc.WithStdout(cfg.Stdout)
	}
	if cfg.Stderr != nil {
		mc = mc.WithStderr(cfg.Stderr)
	}
	if cfg.Walltime {
		mc = mc.WithSysWalltime().WithSysNanotime()
	}
	return mc
}

// Close releases the wazero runtime.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

// call invokes a forwarded WASI function and returns its errno.
func (h *Host) call(ctx context.Context, name string, params ...uint64) (int32, error) {
	fn := h.funcs[name]
	if fn == nil {
		return 0, errors.NotFound(errors.PhaseHost, "function", name)
	}
	res, err := fn.Call(ctx, params...)
	if err != nil {
		return 0, errors.New(errors.PhaseHost, errors.KindHostCall).
			Path(name).Cause(err).Detail("WASI call failed").Build()
	}
	errno := int32(res[0])
	if ce := Logger().Check(zap.DebugLevel, "host call"); ce != nil {
		ce.Write(zap.String("func", name), zap.String("errno", ErrnoName(errno)))
	}
	return errno, nil
}

// alloc reserves scratch space. The returned release func frees it and is
// meant to be deferred, so a call's allocations unwind in reverse order.
func (h *Host) alloc(size, align uint32) (uint32, func(), error) {
	ptr, err := h.arena.Alloc(size, align)
	if err != nil {
		return 0, nil, err
	}
	return ptr, func() { h.arena.Free(ptr, size, align) }, nil
}
