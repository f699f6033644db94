// Package hostcall runs WASI preview1 calls on behalf of translated programs.
//
// Programs keep their data in segments and pass handles, but WASI expects
// 32-bit pointers into one flat memory. A Host bridges the two: each call
// copies its inputs out of segment memory into a scratch memory owned by a
// small shim module, invokes wazero's WASI implementation through the shim,
// and copies results back through the checked memory operations.
//
// Composite structures are translated on the way through. An iovec in
// segment memory is 16 bytes, a handle followed by a 32-bit length; argv
// and environ entries are written back as handles into the caller's buffer.
//
// Operations return the WASI errno. A non-nil error is a trap: a bad
// handle, an out-of-bounds range, or a failure inside wazero.
package hostcall
