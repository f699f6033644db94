package runtime

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/mswasm-runtime/dispatch"
	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/hostcall"
	"github.com/wippyai/mswasm-runtime/memory"
	"github.com/wippyai/mswasm-runtime/segment"
	"github.com/wippyai/mswasm-runtime/tag"
	"github.com/wippyai/mswasm-runtime/value"
)

// Config configures a new Instance.
type Config struct {
	// Logger overrides the package logger for this instance.
	Logger *zap.Logger

	// Host serves WASI calls. Programs that make none may leave it nil.
	Host *hostcall.Host

	// Snapshot, when set, restores segments from segment.Store.Snapshot
	// output instead of starting empty.
	Snapshot []byte

	TagStrategy tag.Strategy
	MaxSegments uint32
	Globals     int
	TableSize   uint32
}

// Instance is the execution context of one program.
type Instance struct {
	log     *zap.Logger
	store   *segment.Store
	mem     *memory.Memory
	table   *dispatch.Table
	host    *hostcall.Host
	exports map[string]*dispatch.Target
	globals []value.Value
}

// New creates an instance. A nil config selects defaults: per-word tags, no
// globals and an empty table.
func New(cfg *Config) (*Instance, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Globals < 0 {
		return nil, errors.InvalidInput(errors.PhaseRuntime, "negative global count")
	}

	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	storeCfg := &segment.Config{TagStrategy: cfg.TagStrategy, MaxSegments: cfg.MaxSegments}
	var store *segment.Store
	if cfg.Snapshot != nil {
		var err error
		if store, err = segment.Restore(cfg.Snapshot, storeCfg); err != nil {
			return nil, err
		}
	} else {
		store = segment.NewStore(storeCfg)
	}
	store.Subscribe(&segmentLogger{log: log})

	if !cfg.TagStrategy.Safe() {
		log.Warn("tag checking disabled, handles can be forged",
			zap.Stringer("strategy", cfg.TagStrategy))
	}

	inst := &Instance{
		log:     log,
		store:   store,
		mem:     memory.New(store),
		table:   dispatch.New(cfg.TableSize),
		host:    cfg.Host,
		exports: make(map[string]*dispatch.Target),
		globals: make([]value.Value, cfg.Globals),
	}
	for i := range inst.globals {
		inst.globals[i] = value.Of(handle.Null)
	}

	log.Debug("instance created",
		zap.Stringer("tags", cfg.TagStrategy),
		zap.Int("globals", cfg.Globals),
		zap.Uint32("table", cfg.TableSize),
		zap.Bool("restored", cfg.Snapshot != nil))
	return inst, nil
}

// Memory returns the checked memory of the instance.
func (i *Instance) Memory() *memory.Memory { return i.mem }

// Store returns the segment store.
func (i *Instance) Store() *segment.Store { return i.store }

// Table returns the indirect call table.
func (i *Instance) Table() *dispatch.Table { return i.table }

// Host returns the WASI host, or an error if none was configured.
func (i *Instance) Host() (*hostcall.Host, error) {
	if i.host == nil {
		return nil, errors.New(errors.PhaseRuntime, errors.KindNotFound).
			Detail("instance has no host").Build()
	}
	return i.host, nil
}

// NewSegment allocates a zeroed segment of size bytes.
func (i *Instance) NewSegment(size uint32) (handle.Handle, error) {
	return i.store.Allocate(size)
}

// FreeSegment frees the segment whose base is h.
func (i *Instance) FreeSegment(h handle.Handle) error {
	return i.store.Free(h)
}

// Global returns global idx.
func (i *Instance) Global(idx int) (value.Value, error) {
	if idx < 0 || idx >= len(i.globals) {
		return value.Undefined{}, errors.IndexOutOfBounds(errors.PhaseRuntime, "global", idx, len(i.globals))
	}
	return i.globals[idx], nil
}

// SetGlobal replaces global idx. Undefined cannot be stored.
func (i *Instance) SetGlobal(idx int, v value.Value) error {
	if idx < 0 || idx >= len(i.globals) {
		return errors.IndexOutOfBounds(errors.PhaseRuntime, "global", idx, len(i.globals))
	}
	if value.TypeOf(v) == value.TypeUndefined {
		return errors.InvalidInput(errors.PhaseRuntime, "global cannot be undefined")
	}
	i.globals[idx] = v
	return nil
}

// InitData copies data to base+offset, as a data segment initializer does.
func (i *Instance) InitData(base handle.Handle, offset int32, data []byte) error {
	at, err := base.Add(offset)
	if err != nil {
		return err
	}
	return i.mem.WriteBytes(at, data)
}

// InitHandle stores v at base+offset.
func (i *Instance) InitHandle(base handle.Handle, offset int32, v handle.Handle) error {
	at, err := base.Add(offset)
	if err != nil {
		return err
	}
	return i.mem.StoreHandle(at, v)
}

// Export makes target callable by name through Invoke.
func (i *Instance) Export(name string, target *dispatch.Target) error {
	if target == nil || target.Fn == nil {
		return errors.InvalidInput(errors.PhaseRuntime, "export "+name+" has no function")
	}
	if _, ok := i.exports[name]; ok {
		return errors.New(errors.PhaseRuntime, errors.KindInvalidInput).
			Path(name).Detail("duplicate export").Build()
	}
	i.exports[name] = target
	return nil
}

// Exports returns the export names in sorted order.
func (i *Instance) Exports() []string {
	names := make([]string, 0, len(i.exports))
	for name := range i.exports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke calls an export. Every failure, including proc_exit, is returned
// as a *Trap.
func (i *Instance) Invoke(ctx context.Context, name string, args ...value.Value) ([]value.Value, error) {
	target, ok := i.exports[name]
	if !ok {
		return nil, &Trap{Func: name, Cause: errors.NotFound(errors.PhaseRuntime, "export", name)}
	}

	results, err := target.Call(ctx, args)
	if err != nil {
		trap := &Trap{Func: name, Cause: err}
		if code, exited := ExitCode(err); exited {
			i.log.Debug("program exited", zap.String("func", name), zap.Uint32("code", code))
		} else {
			i.log.Warn("trap", zap.String("func", name), zap.Error(err))
		}
		return nil, trap
	}
	return results, nil
}

// Snapshot encodes the segment store.
func (i *Instance) Snapshot() ([]byte, error) {
	return i.store.Snapshot()
}

// Close releases the host, if any.
func (i *Instance) Close(ctx context.Context) error {
	if i.host == nil {
		return nil
	}
	return i.host.Close(ctx)
}
