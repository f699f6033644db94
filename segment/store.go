package segment

import (
	"fmt"
	"slices"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/tag"
)

// Config holds store configuration.
type Config struct {
	// TagStrategy selects the tag table built for new segments.
	TagStrategy tag.Strategy

	// MaxSegments bounds segment ids (exclusive). 0 means the full id space
	// up to the null sentinel.
	MaxSegments uint32
}

// Segment is an allocated byte buffer plus its tags.
type Segment struct {
	data []byte
	tags tag.Table
	id   uint32
}

// ID returns the segment id.
func (s *Segment) ID() uint32 { return s.id }

// Len returns the segment size in bytes.
func (s *Segment) Len() int { return len(s.data) }

// Data returns the segment bytes. The slice aliases segment memory and is
// valid until the segment is freed. Writers must demote tags themselves.
func (s *Segment) Data() []byte { return s.data }

// Tags returns the segment tag table.
func (s *Segment) Tags() tag.Table { return s.tags }

// Base returns the handle to offset 0 of the segment.
func (s *Segment) Base() handle.Handle { return handle.Valid(s.id, 0) }

// Store owns all segments of one runtime instance.
type Store struct {
	// segments[id] is nil for the reserved id 0 and for freed segments.
	segments  []*Segment
	observers []subscription
	nextSub   uint64
	stats     Statistics
	strategy  tag.Strategy
	limit     uint32
}

// NewStore creates an empty store. A nil config selects per-word tags and
// the full id space.
func NewStore(cfg *Config) *Store {
	s := &Store{
		segments: make([]*Segment, 1, 16),
		limit:    handle.Sentinel,
	}
	if cfg != nil {
		s.strategy = cfg.TagStrategy
		if cfg.MaxSegments > 0 && cfg.MaxSegments < handle.Sentinel {
			s.limit = cfg.MaxSegments
		}
	}
	return s
}

// Strategy returns the tag strategy used for new segments.
func (s *Store) Strategy() tag.Strategy { return s.strategy }

// Allocate creates a zeroed segment of size bytes with all-Data tags and
// returns the handle to its base.
func (s *Store) Allocate(size uint32) (handle.Handle, error) {
	if size == 0 {
		return handle.Null, errors.InvalidInput(errors.PhaseSegment, "zero-sized segment allocation")
	}
	id := uint32(len(s.segments))
	if uint64(len(s.segments)) >= uint64(s.limit) {
		return handle.Null, errors.New(errors.PhaseSegment, errors.KindAllocation).
			Value(size).Detail("segment id space exhausted (%d ids)", s.limit).Build()
	}

	seg := &Segment{
		id:   id,
		data: make([]byte, size),
		tags: tag.New(s.strategy, tag.Words(size)),
	}
	s.segments = append(s.segments, seg)
	s.stats.addAllocation(int(size))

	h := seg.Base()
	s.notify(Event{Type: EventAllocated, Handle: h, Size: size})
	return h, nil
}

// Free releases the segment named by a base handle. Interior handles, null
// and corrupted handles, and handles to freed segments are rejected.
func (s *Store) Free(h handle.Handle) error {
	if !h.IsValid() {
		return s.invalidHandle(h, "free")
	}
	off, _ := h.Offset()
	if off != 0 {
		return errors.New(errors.PhaseSegment, errors.KindInvalidInput).
			Handle(h).Detail("free of interior handle").Build()
	}
	seg, err := s.Resolve(h)
	if err != nil {
		return err
	}

	size := seg.Len()
	s.segments[seg.id] = nil
	seg.data = nil
	seg.tags = nil
	s.stats.addFree(size)

	s.notify(Event{Type: EventFreed, Handle: h, Size: uint32(size)})
	return nil
}

// Resolve returns the live segment named by a Valid handle.
func (s *Store) Resolve(h handle.Handle) (*Segment, error) {
	if !h.IsValid() {
		return nil, s.invalidHandle(h, "resolve")
	}
	id, _ := h.SegmentID()
	if id == 0 || int(id) >= len(s.segments) {
		return nil, errors.New(errors.PhaseSegment, errors.KindNotFound).
			Handle(h).Value(id).Detail("no segment with id %d", id).Build()
	}
	seg := s.segments[id]
	if seg == nil {
		return nil, errors.Freed(errors.PhaseSegment, h)
	}
	return seg, nil
}

func (s *Store) invalidHandle(h handle.Handle, op string) error {
	if h.IsCorrupted() {
		return errors.Corrupted(errors.PhaseSegment, h, op)
	}
	return errors.New(errors.PhaseSegment, errors.KindNullHandle).
		Handle(h).Detail("%s of null handle", op).Build()
}

// Len returns the number of live segments.
func (s *Store) Len() int {
	return s.stats.LiveCount
}

// NextID returns the id the next allocation will receive.
func (s *Store) NextID() uint32 {
	return uint32(len(s.segments))
}

// IsFreed reports whether id names a segment that existed and was freed.
func (s *Store) IsFreed(id uint32) bool {
	return id != 0 && int(id) < len(s.segments) && s.segments[id] == nil
}

// Each calls fn for every live segment in id order until fn returns false.
func (s *Store) Each(fn func(*Segment) bool) {
	for _, seg := range s.segments {
		if seg == nil {
			continue
		}
		if !fn(seg) {
			return
		}
	}
}

// Stats returns a copy of the store statistics.
func (s *Store) Stats() Statistics {
	return s.stats
}

// Subscribe adds an observer for allocation events and returns a func that
// removes it again. Calling the func more than once is harmless.
func (s *Store) Subscribe(o Observer) (cancel func()) {
	s.nextSub++
	id := s.nextSub
	s.observers = append(s.observers, subscription{id: id, observer: o})
	return func() {
		s.observers = slices.DeleteFunc(s.observers, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

func (s *Store) notify(e Event) {
	for _, sub := range s.observers {
		sub.observer.OnSegmentEvent(e)
	}
}

func (s *Store) String() string {
	return fmt.Sprintf("segment.Store{live=%d next=%d tags=%s}", s.stats.LiveCount, len(s.segments), s.strategy)
}
