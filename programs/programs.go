package programs

import (
	"context"
	"slices"

	"github.com/wippyai/mswasm-runtime/dispatch"
	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/hostcall"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/value"
)

// Export names installed by every program.
const (
	EntryPoint = "_start"
	MainExport = "__original_main"
)

const (
	stackPointer = 0
	stackSize    = 4096
)

// Program is an installable sample program.
type Program struct {
	main        func(inst *runtime.Instance) (dispatch.Func, error)
	Name        string
	Description string

	// Traps reports whether running the program ends in a trap.
	Traps bool
}

var registry = []*Program{
	helloProgram,
	echoProgram,
	smallestProgram,
	forLoopProgram,
	forLoopUnsafeProgram,
	temporalProgram,
	forgeProgram,
	indirectProgram,
}

// All returns every program in display order.
func All() []*Program {
	return slices.Clone(registry)
}

// Lookup returns the program with the given name.
func Lookup(name string) (*Program, error) {
	for _, p := range registry {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, errors.NotFound(errors.PhaseRuntime, "program", name)
}

// Install allocates the stack and exports the program's entry points.
// The instance needs at least one global.
func (p *Program) Install(inst *runtime.Instance) error {
	top, err := newStack(inst)
	if err != nil {
		return err
	}
	if err := inst.SetGlobal(stackPointer, value.Of(top)); err != nil {
		return err
	}

	fn, err := p.main(inst)
	if err != nil {
		return err
	}
	main := &dispatch.Target{
		Name: MainExport,
		Sig:  dispatch.Sig().Returning(value.TypeI32),
		Fn:   fn,
	}
	if err := inst.Export(MainExport, main); err != nil {
		return err
	}
	return inst.Export(EntryPoint, &dispatch.Target{
		Name: EntryPoint,
		Sig:  dispatch.Sig(),
		Fn: func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
			res, err := main.Call(ctx, nil)
			if err != nil {
				return nil, err
			}
			return nil, exit(inst, int32(res[0].(value.I32)))
		},
	})
}

func newStack(inst *runtime.Instance) (handle.Handle, error) {
	base, err := inst.NewSegment(stackSize)
	if err != nil {
		return handle.Null, err
	}
	return base.Add(stackSize)
}

// exit ends the program through the host when there is one.
func exit(inst *runtime.Instance, code int32) error {
	if host, err := inst.Host(); err == nil {
		return host.ProcExit(code)
	}
	return &hostcall.ExitError{Code: uint32(code)}
}

// push reserves n bytes of stack and returns the new stack pointer.
func push(inst *runtime.Instance, n int32) (handle.Handle, error) {
	sp, err := stackTop(inst)
	if err != nil {
		return handle.Null, err
	}
	if sp, err = sp.Sub(n); err != nil {
		return handle.Null, err
	}
	return sp, inst.SetGlobal(stackPointer, value.Of(sp))
}

// pop releases n bytes of stack.
func pop(inst *runtime.Instance, n int32) error {
	sp, err := stackTop(inst)
	if err != nil {
		return err
	}
	if sp, err = sp.Add(n); err != nil {
		return err
	}
	return inst.SetGlobal(stackPointer, value.Of(sp))
}

func stackTop(inst *runtime.Instance) (handle.Handle, error) {
	g, err := inst.Global(stackPointer)
	if err != nil {
		return handle.Null, err
	}
	return value.HandleOf(g)
}

func i32Result(v int32) []value.Value {
	return []value.Value{value.I32(v)}
}
