// Package programs contains small programs written against the runtime the
// way a bytecode translator would emit them: every memory access goes
// through handles, the stack pointer lives in global 0 as a handle into a
// stack segment, and indirect calls go through the dispatch table.
//
// Each program exports __original_main, which returns an i32, and _start,
// which runs __original_main and exits with its result. Some programs are
// expected to trap; Program.Traps records which.
package programs
