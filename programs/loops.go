package programs

import (
	"context"

	"github.com/wippyai/mswasm-runtime/dispatch"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/memory"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/value"
)

var smallestProgram = &Program{
	Name:        "smallest",
	Description: "returns add(2, 2)",
	main: func(*runtime.Instance) (dispatch.Func, error) {
		return func(context.Context, []value.Value) ([]value.Value, error) {
			return i32Result(2 + 2), nil
		}, nil
	},
}

var forLoopProgram = &Program{
	Name:        "for-loop",
	Description: "sums a six element stack array",
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		return func(context.Context, []value.Value) ([]value.Value, error) {
			return sumArray(inst, 6)
		}, nil
	},
}

var forLoopUnsafeProgram = &Program{
	Name:        "for-loop-unsafe",
	Description: "sums a stack array, then reads array[100] past the stack",
	Traps:       true,
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		return func(context.Context, []value.Value) ([]value.Value, error) {
			return sumArray(inst, 100)
		}, nil
	},
}

// sumArray builds {1, 2, 3, 4, 5, 6} on the stack and returns its sum. An
// extra index other than 6 is added to the sum as array[extra].
func sumArray(inst *runtime.Instance, extra int32) ([]value.Value, error) {
	const frame = 32
	mem := inst.Memory()

	sp, err := push(inst, frame)
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < 6; i++ {
		at, err := sp.Add(4 * i)
		if err != nil {
			return nil, err
		}
		if err := memory.Write(mem, at, i+1); err != nil {
			return nil, err
		}
	}

	s, err := sum(mem, sp, 6)
	if err != nil {
		return nil, err
	}
	if extra != 6 {
		at, err := sp.Add(4 * extra)
		if err != nil {
			return nil, err
		}
		v, err := memory.Read[int32](mem, at)
		if err != nil {
			return nil, err
		}
		s += v
	}

	if err := pop(inst, frame); err != nil {
		return nil, err
	}
	return i32Result(s), nil
}

func sum(mem *memory.Memory, arr handle.Handle, size int32) (int32, error) {
	var s int32
	for i := int32(0); i < size; i++ {
		at, err := arr.Add(4 * i)
		if err != nil {
			return 0, err
		}
		v, err := memory.Read[int32](mem, at)
		if err != nil {
			return 0, err
		}
		s += v
	}
	return s, nil
}
