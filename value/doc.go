// Package value defines the tagged values exchanged between translated code,
// the dispatch table and the host: 32/64-bit integers and floats, handles,
// and the undefined placeholder.
//
// Value is a closed sum type. Switch on the concrete type:
//
//	switch v := v.(type) {
//	case value.I32:
//	case value.Handle:
//		_ = v.Handle
//	}
package value
