// Package tag tracks, per 8-byte memory word, whether the word currently
// holds a handle or plain data.
//
// Tags are the anti-forgery mechanism of segment memory: a word decodes as a
// handle only while its tag says so, and every plain write demotes the tags
// of the words it touches.
//
// # Strategies
//
// Three interchangeable Table implementations are provided:
//
//	PerWord   one Tag value per word (simplest, one byte of overhead per word)
//	Packed    one bit per word in a []uint64 bitmap
//	Disabled  no storage; every word reports Handle
//
// Disabled turns the capability check off entirely. It exists to measure the
// cost of tag tracking and must not be used where capability integrity
// matters.
//
//	tags := tag.New(tag.Packed, tag.Words(segmentLen))
//	_ = tags.Set(0, tag.Handle)
//	t, _ := tags.Get(0) // tag.Handle
package tag
