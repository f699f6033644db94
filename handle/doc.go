// Package handle implements the capability value used to address segment
// memory.
//
// A Handle is one of three variants:
//
//	Valid      names a segment id and a byte offset inside it
//	Null       the non-capability value, with a signed displacement
//	Corrupted  eight raw bytes loaded from a word tagged as data
//
// The zero Handle is Null with offset 0.
//
// # Wire Encoding
//
// A handle occupies one 8-byte memory word plus that word's tag:
//
//	Valid{id, off}  id (LE u32) | off (LE u32), tag Handle
//	Null{0}         0xFFFFFFFF | 0xFFFFFFFF, tag Handle
//	Corrupted{b}    b, tag Data
//
// Decoding bytes whose tag is Data always yields Corrupted, whatever their
// numeric content. This is what keeps data bytes from ever becoming a
// capability.
package handle
