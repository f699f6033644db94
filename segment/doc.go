// Package segment owns the byte buffers of segment memory.
//
// A Store hands out one segment per allocation and names it by a 32-bit id.
// Id 0 is reserved and never names a segment; the id 0xFFFFFFFF is reserved
// for the wire encoding of the null handle. Freed ids are never reused, so a
// stale handle can never resolve to a newer segment.
//
//	store := segment.NewStore(nil)
//
//	base, err := store.Allocate(64)      // Valid{id, 0}
//	seg, err := store.Resolve(base)      // live segment
//	err = store.Free(base)               // only the base handle may free
//	_, err = store.Resolve(base)         // errors.KindFreed
//
// Each live segment carries a tag.Table built with the store's configured
// strategy. Segment contents and tags are mutated by package memory, which
// implements the access protocol on top of Resolve.
//
// # Snapshots
//
// Snapshot encodes every segment, its handle-tagged words and the freed ids
// as canonical CBOR guarded by a BLAKE3 digest. Restore rebuilds an
// equivalent store, so handles stored in memory decode identically in the
// new instance.
//
// A Store is not safe for concurrent use.
package segment
