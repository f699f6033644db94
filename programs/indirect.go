package programs

import (
	"context"

	"github.com/wippyai/mswasm-runtime/dispatch"
	"github.com/wippyai/mswasm-runtime/memory"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/value"
)

// Table slots used by the indirect program.
const (
	slotAdd  = 1
	slotLoad = 2
)

var addSig = dispatch.Sig(value.TypeI32, value.TypeI32).Returning(value.TypeI32)

var indirectProgram = &Program{
	Name:        "indirect",
	Description: "loads 40 through a handle and adds 2, both via the call table",
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		table := inst.Table()
		if table.Len() <= slotLoad {
			if _, err := table.Grow(uint32(slotLoad + 1 - table.Len())); err != nil {
				return nil, err
			}
		}
		err := table.Bind(slotAdd, &dispatch.Target{
			Name: "add",
			Sig:  addSig,
			Fn: func(_ context.Context, args []value.Value) ([]value.Value, error) {
				return []value.Value{args[0].(value.I32) + args[1].(value.I32)}, nil
			},
		})
		if err != nil {
			return nil, err
		}
		err = table.Bind(slotLoad, &dispatch.Target{
			Name: "load",
			Sig:  dispatch.Sig(value.TypeHandle).Returning(value.TypeI32),
			Fn: func(_ context.Context, args []value.Value) ([]value.Value, error) {
				v, err := memory.Read[int32](inst.Memory(), args[0].(value.Handle).Handle)
				if err != nil {
					return nil, err
				}
				return i32Result(v), nil
			},
		})
		if err != nil {
			return nil, err
		}

		return func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
			cell, err := inst.NewSegment(8)
			if err != nil {
				return nil, err
			}
			if err := memory.Write[int32](inst.Memory(), cell, 40); err != nil {
				return nil, err
			}
			loaded, err := table.Call(ctx, slotLoad, []value.Value{value.Of(cell)})
			if err != nil {
				return nil, err
			}
			return table.CallAs(ctx, slotAdd, addSig, []value.Value{loaded[0], value.I32(2)})
		}, nil
	},
}
