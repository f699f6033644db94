package hostcall

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/memory"
)

// iovecSize is the size of an iovec in segment memory: a handle to the
// buffer followed by a 32-bit length, padded to a whole word.
const iovecSize = 16

// ExitError reports a proc_exit call. It is not a trap.
type ExitError struct {
	Code uint32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ArgsSizesGet stores the argument count at argc and the size of the
// NUL-terminated argument data at bufSize.
func (h *Host) ArgsSizesGet(ctx context.Context, mem *memory.Memory, argc, bufSize handle.Handle) (int32, error) {
	return h.sizesGet(ctx, mem, "args_sizes_get", argc, bufSize)
}

// ArgsGet writes the argument strings to argvBuf and, for each argument, a
// handle into argvBuf at consecutive 8-byte slots of argv.
func (h *Host) ArgsGet(ctx context.Context, mem *memory.Memory, argv, argvBuf handle.Handle) (int32, error) {
	return h.vectorGet(ctx, mem, "args_sizes_get", "args_get", argv, argvBuf)
}

// EnvironSizesGet is ArgsSizesGet for the environment.
func (h *Host) EnvironSizesGet(ctx context.Context, mem *memory.Memory, count, bufSize handle.Handle) (int32, error) {
	return h.sizesGet(ctx, mem, "environ_sizes_get", count, bufSize)
}

// EnvironGet is ArgsGet for the environment; entries have the form KEY=VALUE.
func (h *Host) EnvironGet(ctx context.Context, mem *memory.Memory, environ, environBuf handle.Handle) (int32, error) {
	return h.vectorGet(ctx, mem, "environ_sizes_get", "environ_get", environ, environBuf)
}

func (h *Host) sizes(ctx context.Context, fn string) (count, size uint32, errno int32, err error) {
	ptr, release, err := h.alloc(8, 4)
	if err != nil {
		return 0, 0, 0, err
	}
	defer release()

	errno, err = h.call(ctx, fn, uint64(ptr), uint64(ptr+4))
	if err != nil || errno != ErrnoSuccess {
		return 0, 0, errno, err
	}
	if count, err = h.mem.ReadU32(ptr); err != nil {
		return 0, 0, 0, err
	}
	if size, err = h.mem.ReadU32(ptr + 4); err != nil {
		return 0, 0, 0, err
	}
	return count, size, ErrnoSuccess, nil
}

func (h *Host) sizesGet(ctx context.Context, mem *memory.Memory, fn string, countOut, sizeOut handle.Handle) (int32, error) {
	count, size, errno, err := h.sizes(ctx, fn)
	if err != nil || errno != ErrnoSuccess {
		return errno, err
	}
	if err := memory.Write(mem, countOut, count); err != nil {
		return 0, err
	}
	if err := memory.Write(mem, sizeOut, size); err != nil {
		return 0, err
	}
	return ErrnoSuccess, nil
}

func (h *Host) vectorGet(ctx context.Context, mem *memory.Memory, sizesFn, getFn string, ptrs, buf handle.Handle) (int32, error) {
	count, size, errno, err := h.sizes(ctx, sizesFn)
	if err != nil || errno != ErrnoSuccess {
		return errno, err
	}
	if uint64(count)*handle.Size > math.MaxInt32 || size > math.MaxInt32 {
		return 0, errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("%s: %d entries of %d bytes do not fit a segment", getFn, count, size))
	}

	// Both destinations must be usable before anything is written.
	if _, err := mem.Bytes(ptrs, count*handle.Size); err != nil {
		return 0, err
	}
	if off, err := ptrs.Offset(); err != nil {
		return 0, err
	} else if off%handle.Size != 0 {
		return 0, errors.Misaligned(errors.PhaseHost, ptrs, uint64(off), handle.Size)
	}
	if _, err := mem.Bytes(buf, size); err != nil {
		return 0, err
	}

	ptrBase, releasePtrs, err := h.alloc(count*4, 4)
	if err != nil {
		return 0, err
	}
	defer releasePtrs()
	bufBase, releaseBuf, err := h.alloc(size, 1)
	if err != nil {
		return 0, err
	}
	defer releaseBuf()

	errno, err = h.call(ctx, getFn, uint64(ptrBase), uint64(bufBase))
	if err != nil || errno != ErrnoSuccess {
		return errno, err
	}

	entries := make([]handle.Handle, count)
	for i := range entries {
		p, err := h.mem.ReadU32(ptrBase + 4*uint32(i))
		if err != nil {
			return 0, err
		}
		if p < bufBase || p-bufBase >= size {
			return 0, errors.InvalidData(errors.PhaseHost, fmt.Sprintf("%s: entry %d points outside the buffer", getFn, i))
		}
		if entries[i], err = buf.Add(int32(p - bufBase)); err != nil {
			return 0, err
		}
	}
	data, err := h.mem.Read(bufBase, size)
	if err != nil {
		return 0, err
	}

	if err := mem.WriteBytes(buf, data); err != nil {
		return 0, err
	}
	for i, entry := range entries {
		slot, err := ptrs.Add(int32(i) * handle.Size)
		if err != nil {
			return 0, err
		}
		if err := mem.StoreHandle(slot, entry); err != nil {
			return 0, err
		}
	}
	return ErrnoSuccess, nil
}

// ClockTimeGet stores the time of clock id, in nanoseconds, as a u64 at out.
func (h *Host) ClockTimeGet(ctx context.Context, mem *memory.Memory, id int32, precision int64, out handle.Handle) (int32, error) {
	return h.collected(ctx, mem, out, 8, "clock_time_get", uint64(uint32(id)), uint64(precision))
}

// FdClose closes a file descriptor.
func (h *Host) FdClose(ctx context.Context, fd int32) (int32, error) {
	return h.call(ctx, "fd_close", uint64(uint32(fd)))
}

// FdFdstatGet stores the 24-byte fdstat of fd at out.
func (h *Host) FdFdstatGet(ctx context.Context, mem *memory.Memory, fd int32, out handle.Handle) (int32, error) {
	return h.collected(ctx, mem, out, 24, "fd_fdstat_get", uint64(uint32(fd)))
}

// FdSeek moves the offset of fd and stores the new offset as a u64 at out.
func (h *Host) FdSeek(ctx context.Context, mem *memory.Memory, fd int32, offset int64, whence int32, out handle.Handle) (int32, error) {
	return h.collected(ctx, mem, out, 8, "fd_seek", uint64(uint32(fd)), uint64(offset), uint64(uint32(whence)))
}

// collected runs fn with a scratch result buffer of n bytes appended to
// params and copies the buffer to out when the call succeeds.
func (h *Host) collected(ctx context.Context, mem *memory.Memory, out handle.Handle, n uint32, fn string, params ...uint64) (int32, error) {
	var errno int32
	err := mem.Collect(out, n, func(dst []byte) error {
		ptr, release, err := h.alloc(n, 8)
		if err != nil {
			return err
		}
		defer release()

		if errno, err = h.call(ctx, fn, append(params, uint64(ptr))...); err != nil {
			return err
		}
		if errno != ErrnoSuccess {
			return nil
		}
		data, err := h.mem.Read(ptr, n)
		if err != nil {
			return err
		}
		copy(dst, data)
		return nil
	})
	return errno, err
}

// FdWrite gathers iovsLen iovecs starting at iovs, writes them to fd and
// stores the number of bytes written as a u32 at nwritten.
func (h *Host) FdWrite(ctx context.Context, mem *memory.Memory, fd int32, iovs handle.Handle, iovsLen int32, nwritten handle.Handle) (int32, error) {
	if iovsLen < 0 || iovsLen > math.MaxInt32/iovecSize {
		return 0, errors.InvalidInput(errors.PhaseHost, fmt.Sprintf("fd_write: iovec count %d", iovsLen))
	}

	bufs := make([][]byte, iovsLen)
	total := uint64(0)
	for i := range bufs {
		iov, err := iovs.Add(int32(i) * iovecSize)
		if err != nil {
			return 0, err
		}
		loc, err := mem.LoadHandle(iov)
		if err != nil {
			return 0, err
		}
		lenAt, err := iov.Add(handle.Size)
		if err != nil {
			return 0, err
		}
		n, err := memory.Read[uint32](mem, lenAt)
		if err != nil {
			return 0, err
		}
		if n > 0 {
			if bufs[i], err = mem.Bytes(loc, n); err != nil {
				return 0, err
			}
		}
		total += uint64(n)
	}
	if total > math.MaxUint32 {
		return 0, errors.InvalidInput(errors.PhaseHost, "fd_write: iovecs exceed 4GiB")
	}

	// Layout: wasi ciovecs, then nwritten, then the gathered bytes.
	ciovs, releaseIovs, err := h.alloc(uint32(iovsLen)*8, 4)
	if err != nil {
		return 0, err
	}
	defer releaseIovs()
	out, releaseOut, err := h.alloc(4, 4)
	if err != nil {
		return 0, err
	}
	defer releaseOut()
	data, releaseData, err := h.alloc(uint32(total), 1)
	if err != nil {
		return 0, err
	}
	defer releaseData()

	ptr := data
	for i, b := range bufs {
		if err := h.mem.Write(ptr, b); err != nil {
			return 0, err
		}
		if err := h.mem.WriteU32(ciovs+uint32(i)*8, ptr); err != nil {
			return 0, err
		}
		if err := h.mem.WriteU32(ciovs+uint32(i)*8+4, uint32(len(b))); err != nil {
			return 0, err
		}
		ptr += uint32(len(b))
	}

	errno, err := h.call(ctx, "fd_write", uint64(uint32(fd)), uint64(ciovs), uint64(uint32(iovsLen)), uint64(out))
	if err != nil || errno != ErrnoSuccess {
		return errno, err
	}
	written, err := h.mem.ReadU32(out)
	if err != nil {
		return 0, err
	}
	if err := memory.Write(mem, nwritten, written); err != nil {
		return 0, err
	}
	return ErrnoSuccess, nil
}

// ProcExit terminates the program with code. The returned *ExitError
// unwinds the caller like a trap and carries the exit status.
func (h *Host) ProcExit(code int32) error {
	Logger().Debug("proc_exit", zap.Int32("code", code))
	return &ExitError{Code: uint32(code)}
}
