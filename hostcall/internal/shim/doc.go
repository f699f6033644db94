// Package shim builds the small core module that sits between the host-call
// layer and wazero's WASI implementation.
//
// The module imports a set of functions, defines one linear memory and
// exports a forwarding function for each import. Calls made through the
// forwarders execute with the shim as the calling module, so WASI reads and
// writes the shim's memory.
package shim
