package shim

import "github.com/tetratelabs/wazero/api"

// MemoryExport is the export name of the shim's linear memory.
const MemoryExport = "memory"

// Func describes one imported and re-exported function.
type Func struct {
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// Builder assembles a shim module.
type Builder struct {
	importModule string
	funcs        []Func
	minPages     uint32
}

// NewBuilder creates a builder importing functions from importModule.
func NewBuilder(importModule string) *Builder {
	return &Builder{importModule: importModule, minPages: 1}
}

// AddFunc adds a function to import and forward.
func (b *Builder) AddFunc(f Func) {
	b.funcs = append(b.funcs, f)
}

// SetMinPages sets the initial size of the shim memory in 64KiB pages.
func (b *Builder) SetMinPages(n uint32) {
	b.minPages = n
}

// Build generates the module bytes.
func (b *Builder) Build() []byte {
	var wasm []byte

	// Magic and version
	wasm = append(wasm, 0x00, 0x61, 0x73, 0x6d)
	wasm = append(wasm, 0x01, 0x00, 0x00, 0x00)

	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x01, b.buildTypeSection())
		wasm = appendSection(wasm, 0x02, b.buildImportSection())
		wasm = appendSection(wasm, 0x03, b.buildFuncSection())
	}
	wasm = appendSection(wasm, 0x05, b.buildMemorySection())
	wasm = appendSection(wasm, 0x07, b.buildExportSection())
	if len(b.funcs) > 0 {
		wasm = appendSection(wasm, 0x0a, b.buildCodeSection())
	}
	return wasm
}

// One type per function; type i belongs to import i and forwarder i.
func (b *Builder) buildTypeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for _, f := range b.funcs {
		section = append(section, 0x60)
		section = append(section, EncodeULEB128(uint32(len(f.Params)))...)
		for _, t := range f.Params {
			section = append(section, ValTypeToWasm(t))
		}
		section = append(section, EncodeULEB128(uint32(len(f.Results)))...)
		for _, t := range f.Results {
			section = append(section, ValTypeToWasm(t))
		}
	}
	return section
}

func (b *Builder) buildImportSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i, f := range b.funcs {
		section = appendName(section, b.importModule)
		section = appendName(section, f.Name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *Builder) buildFuncSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i := range b.funcs {
		section = append(section, EncodeULEB128(uint32(i))...)
	}
	return section
}

func (b *Builder) buildMemorySection() []byte {
	var section []byte
	section = append(section, 0x01)
	section = append(section, 0x00)
	section = append(section, EncodeULEB128(b.minPages)...)
	return section
}

func (b *Builder) buildExportSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)+1))...)

	section = appendName(section, MemoryExport)
	section = append(section, 0x02)
	section = append(section, 0x00)

	numImports := uint32(len(b.funcs))
	for i, f := range b.funcs {
		section = appendName(section, f.Name)
		section = append(section, 0x00)
		section = append(section, EncodeULEB128(numImports+uint32(i))...)
	}
	return section
}

// Each forwarder pushes its parameters and calls the matching import.
func (b *Builder) buildCodeSection() []byte {
	var section []byte
	section = append(section, EncodeULEB128(uint32(len(b.funcs)))...)
	for i, f := range b.funcs {
		var body []byte
		body = append(body, 0x00) // no locals
		for p := range f.Params {
			body = append(body, 0x20)
			body = append(body, EncodeULEB128(uint32(p))...)
		}
		body = append(body, 0x10)
		body = append(body, EncodeULEB128(uint32(i))...)
		body = append(body, 0x0b)

		section = append(section, EncodeULEB128(uint32(len(body)))...)
		section = append(section, body...)
	}
	return section
}
