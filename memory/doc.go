// Package memory implements checked access to segment memory through
// handles.
//
// Every operation resolves its handle against the segment store, verifies
// that the whole byte range lies inside the live segment and only then
// touches bytes or tags. A failed operation leaves memory unchanged.
//
// Tags follow two rules:
//
//   - A plain write demotes the tag of every word it overlaps to Data.
//   - StoreHandle is the only operation that sets a Handle tag.
//
// Together they make handles unforgeable: bytes produced by arithmetic or
// copied through plain writes always load back as Corrupted.
//
// Scalar access is generic:
//
//	v, err := memory.Read[uint32](mem, h)
//	err = memory.Write[float64](mem, h, 1.5)
//
// All multi-byte values are little-endian.
package memory
