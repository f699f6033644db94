package shim

import "github.com/tetratelabs/wazero/api"

// EncodeULEB128 encodes an unsigned value in LEB128 format.
func EncodeULEB128(v uint32) []byte {
	var result []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		result = append(result, b)
		if v == 0 {
			break
		}
	}
	return result
}

// ValTypeToWasm converts a wazero value type to its binary encoding.
func ValTypeToWasm(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}

func appendName(b []byte, name string) []byte {
	b = append(b, EncodeULEB128(uint32(len(name)))...)
	return append(b, name...)
}

func appendSection(b []byte, id byte, section []byte) []byte {
	b = append(b, id)
	b = append(b, EncodeULEB128(uint32(len(section)))...)
	return append(b, section...)
}
