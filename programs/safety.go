package programs

import (
	"context"

	"github.com/wippyai/mswasm-runtime/dispatch"
	"github.com/wippyai/mswasm-runtime/memory"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/value"
)

var temporalProgram = &Program{
	Name:        "temporal",
	Description: "reads a heap box after freeing it",
	Traps:       true,
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		return func(context.Context, []value.Value) ([]value.Value, error) {
			mem := inst.Memory()
			boxed, err := inst.NewSegment(4)
			if err != nil {
				return nil, err
			}
			if err := memory.Write[int32](mem, boxed, 42); err != nil {
				return nil, err
			}
			if err := inst.FreeSegment(boxed); err != nil {
				return nil, err
			}
			v, err := memory.Read[int32](mem, boxed)
			if err != nil {
				return nil, err
			}
			return i32Result(v), nil
		}, nil
	},
}

var forgeProgram = &Program{
	Name:        "forge",
	Description: "rewrites a stored handle as an integer and dereferences it",
	Traps:       true,
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		return func(context.Context, []value.Value) ([]value.Value, error) {
			mem := inst.Memory()
			secret, err := inst.NewSegment(8)
			if err != nil {
				return nil, err
			}
			if err := memory.Write[int32](mem, secret, 7); err != nil {
				return nil, err
			}

			sp, err := push(inst, 16)
			if err != nil {
				return nil, err
			}
			if err := mem.StoreHandle(sp, secret); err != nil {
				return nil, err
			}

			// Treat the pointer as an integer and move it by 4 bytes.
			bits, err := memory.Read[uint64](mem, sp)
			if err != nil {
				return nil, err
			}
			if err := memory.Write(mem, sp, bits+4<<32); err != nil {
				return nil, err
			}

			forged, err := mem.LoadHandle(sp)
			if err != nil {
				return nil, err
			}
			v, err := memory.Read[int32](mem, forged)
			if err != nil {
				return nil, err
			}
			if err := pop(inst, 16); err != nil {
				return nil, err
			}
			return i32Result(v), nil
		}, nil
	},
}
