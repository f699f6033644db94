package programs

import (
	"context"

	"github.com/wippyai/mswasm-runtime/dispatch"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/memory"
	"github.com/wippyai/mswasm-runtime/runtime"
	"github.com/wippyai/mswasm-runtime/value"
)

const stdout = 1

var helloProgram = &Program{
	Name:        "hello",
	Description: "writes Hello World! to stdout",
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		msg := []byte("Hello World!\n")
		rodata, err := inst.NewSegment(uint32(len(msg)))
		if err != nil {
			return nil, err
		}
		if err := inst.InitData(rodata, 0, msg); err != nil {
			return nil, err
		}

		return func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
			errno, err := puts(ctx, inst, rodata, uint32(len(msg)))
			if err != nil {
				return nil, err
			}
			return i32Result(errno), nil
		}, nil
	},
}

var echoProgram = &Program{
	Name:        "echo",
	Description: "writes its arguments to stdout",
	main: func(inst *runtime.Instance) (dispatch.Func, error) {
		return func(ctx context.Context, _ []value.Value) ([]value.Value, error) {
			errno, err := echo(ctx, inst)
			if err != nil {
				return nil, err
			}
			return i32Result(errno), nil
		}, nil
	},
}

// puts writes n bytes at buf to stdout with a single iovec.
func puts(ctx context.Context, inst *runtime.Instance, buf handle.Handle, n uint32) (int32, error) {
	host, err := inst.Host()
	if err != nil {
		return 0, err
	}
	mem := inst.Memory()

	sp, err := push(inst, 24)
	if err != nil {
		return 0, err
	}
	if err := mem.StoreHandle(sp, buf); err != nil {
		return 0, err
	}
	lenAt, err := sp.Add(8)
	if err != nil {
		return 0, err
	}
	if err := memory.Write(mem, lenAt, n); err != nil {
		return 0, err
	}
	nwritten, err := sp.Add(16)
	if err != nil {
		return 0, err
	}

	errno, err := host.FdWrite(ctx, mem, stdout, sp, 1, nwritten)
	if err != nil {
		return 0, err
	}
	if err := pop(inst, 24); err != nil {
		return 0, err
	}
	return errno, nil
}

// echo prints argv[1:] separated by spaces and ending in a newline.
func echo(ctx context.Context, inst *runtime.Instance) (int32, error) {
	host, err := inst.Host()
	if err != nil {
		return 0, err
	}
	mem := inst.Memory()

	sizes, err := inst.NewSegment(8)
	if err != nil {
		return 0, err
	}
	bufSizeAt, err := sizes.Add(4)
	if err != nil {
		return 0, err
	}
	if errno, err := host.ArgsSizesGet(ctx, mem, sizes, bufSizeAt); err != nil || errno != 0 {
		return errno, err
	}
	argc, err := memory.Read[uint32](mem, sizes)
	if err != nil {
		return 0, err
	}
	bufSize, err := memory.Read[uint32](mem, bufSizeAt)
	if err != nil {
		return 0, err
	}
	if argc < 2 {
		nl, err := inst.NewSegment(1)
		if err != nil {
			return 0, err
		}
		if err := memory.Write[uint8](mem, nl, '\n'); err != nil {
			return 0, err
		}
		return puts(ctx, inst, nl, 1)
	}

	argv, err := inst.NewSegment(argc * handle.Size)
	if err != nil {
		return 0, err
	}
	buf, err := inst.NewSegment(bufSize)
	if err != nil {
		return 0, err
	}
	if errno, err := host.ArgsGet(ctx, mem, argv, buf); err != nil || errno != 0 {
		return errno, err
	}

	// argv[1] up to the end of the buffer holds the arguments to print.
	slot, err := argv.Add(handle.Size)
	if err != nil {
		return 0, err
	}
	first, err := mem.LoadHandle(slot)
	if err != nil {
		return 0, err
	}
	firstOff, err := first.Offset()
	if err != nil {
		return 0, err
	}
	n := bufSize - uint32(firstOff)
	for i := uint32(0); i < n; i++ {
		at, err := first.Add(int32(i))
		if err != nil {
			return 0, err
		}
		c, err := memory.Read[uint8](mem, at)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			continue
		}
		sep := uint8(' ')
		if i == n-1 {
			sep = '\n'
		}
		if err := memory.Write(mem, at, sep); err != nil {
			return 0, err
		}
	}

	for _, h := range []handle.Handle{sizes, argv} {
		if err := inst.FreeSegment(h); err != nil {
			return 0, err
		}
	}
	return puts(ctx, inst, first, n)
}
