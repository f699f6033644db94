// Package mswasm is a capability-safe segmented memory runtime in the style
// of MS-Wasm.
//
// Memory is a set of independently allocated and freed segments. All access
// goes through handles, unforgeable (segment, offset) values, and every
// 8-byte word carries a tag recording whether it holds a handle or plain
// data. Translated programs get spatial safety, temporal safety and handle
// integrity from a small set of checked operations.
//
// # Architecture Overview
//
//	mswasm/              Root package with the flat Memory interface for host scratch
//	├── errors/          Structured error types shared by every package
//	├── tag/             Tag tables: per-word, packed bitset, disabled
//	├── handle/          Handle values, arithmetic, ordering, wire encoding
//	├── segment/         Segment store, statistics, observers, snapshots
//	├── memory/          Checked scalar and handle access through handles
//	├── value/           Tagged values passed between functions
//	├── dispatch/        Indirect call table with signature checks
//	├── runtime/         Instance: store, memory, globals, table, exports
//	├── hostcall/        WASI preview1 calls executed by wazero
//	├── config/          TOML configuration
//	├── programs/        Sample translated programs
//	└── cmd/mswasm/      Command line harness and inspector
//
// # Quick Start
//
//	inst, err := runtime.New(&runtime.Config{Globals: 1, TableSize: 4})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	buf, err := inst.NewSegment(16)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := memory.Write[uint32](inst.Memory(), buf, 42); err != nil {
//	    log.Fatal(err)
//	}
//	if err := inst.FreeSegment(buf); err != nil {
//	    log.Fatal(err)
//	}
//	_, err = memory.Read[uint32](inst.Memory(), buf) // freed segment: error
//
// # Safety Model
//
// Every access resolves its handle against the live store and checks the
// whole byte range before touching memory. Plain writes demote the tags of
// all words they overlap, so bytes that were not stored as a handle always
// load back as a Corrupted handle, which cannot be dereferenced.
//
// # Thread Safety
//
// Nothing in this module is safe for concurrent use. An Instance belongs to
// one goroutine.
package mswasm
