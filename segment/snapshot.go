package segment

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"lukechampine.com/blake3"

	"github.com/wippyai/mswasm-runtime/errors"
	"github.com/wippyai/mswasm-runtime/handle"
	"github.com/wippyai/mswasm-runtime/tag"
)

const snapshotVersion = 1

var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("segment: failed to create CBOR enc mode: %v", err))
	}
	snapshotEncMode = em
}

type snapshotEnvelope struct {
	Body   []byte `cbor:"1,keyasint"`
	Digest []byte `cbor:"2,keyasint"`
}

type snapshotBody struct {
	Version  uint              `cbor:"1,keyasint"`
	Strategy string            `cbor:"2,keyasint"`
	NextID   uint32            `cbor:"3,keyasint"`
	Segments []snapshotSegment `cbor:"4,keyasint"`
}

// snapshotSegment describes one live segment. Ids below NextID that have no
// entry were freed.
type snapshotSegment struct {
	ID      uint32   `cbor:"1,keyasint"`
	Data    []byte   `cbor:"2,keyasint"`
	Handles []uint32 `cbor:"3,keyasint,omitempty"`
}

// Snapshot encodes the store contents, including which words hold handles.
func (s *Store) Snapshot() ([]byte, error) {
	body := snapshotBody{
		Version:  snapshotVersion,
		Strategy: s.strategy.String(),
		NextID:   s.NextID(),
	}
	var err error
	s.Each(func(seg *Segment) bool {
		entry := snapshotSegment{
			ID:   seg.id,
			Data: bytes.Clone(seg.data),
		}
		for w := 0; w < seg.tags.Len(); w++ {
			var t tag.Tag
			if t, err = seg.tags.Get(uint32(w)); err != nil {
				return false
			}
			if t == tag.Handle {
				entry.Handles = append(entry.Handles, uint32(w))
			}
		}
		body.Segments = append(body.Segments, entry)
		return true
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "read tags")
	}

	encoded, err := snapshotEncMode.Marshal(&body)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "encode body")
	}
	digest := blake3.Sum256(encoded)
	out, err := snapshotEncMode.Marshal(&snapshotEnvelope{Body: encoded, Digest: digest[:]})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "encode envelope")
	}
	return out, nil
}

// Restore rebuilds a store from Snapshot output. The new store uses the tag
// strategy and id limit of cfg; words recorded as handles are re-tagged.
// A snapshot taken with tags disabled restores only into a disabled store.
func Restore(data []byte, cfg *Config) (*Store, error) {
	var env snapshotEnvelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "decode envelope")
	}
	digest := blake3.Sum256(env.Body)
	if !bytes.Equal(digest[:], env.Digest) {
		return nil, errors.InvalidData(errors.PhaseSnapshot, "digest mismatch")
	}

	var body snapshotBody
	if err := cbor.Unmarshal(env.Body, &body); err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "decode body")
	}
	if body.Version != snapshotVersion {
		return nil, errors.Unsupported(errors.PhaseSnapshot, fmt.Sprintf("snapshot version %d", body.Version))
	}

	from, err := tag.ParseStrategy(body.Strategy)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "snapshot tag strategy")
	}

	s := NewStore(cfg)
	// Without tags the snapshot cannot say which words held handles.
	if !from.Safe() && s.strategy.Safe() {
		return nil, errors.Unsupported(errors.PhaseSnapshot,
			fmt.Sprintf("restoring a %s snapshot with %s tags", from, s.strategy))
	}
	if body.NextID == 0 || uint64(body.NextID) > uint64(s.limit) {
		return nil, errors.InvalidData(errors.PhaseSnapshot, fmt.Sprintf("segment count %d exceeds id space", body.NextID))
	}
	s.segments = make([]*Segment, body.NextID)

	prev := uint32(0)
	for _, entry := range body.Segments {
		if entry.ID <= prev || entry.ID >= body.NextID {
			return nil, errors.InvalidData(errors.PhaseSnapshot, fmt.Sprintf("segment id %d out of order or range", entry.ID))
		}
		if len(entry.Data) == 0 || uint64(len(entry.Data)) >= uint64(handle.Sentinel) {
			return nil, errors.InvalidData(errors.PhaseSnapshot, fmt.Sprintf("segment %d has invalid size %d", entry.ID, len(entry.Data)))
		}
		prev = entry.ID

		size := uint32(len(entry.Data))
		seg := &Segment{
			id:   entry.ID,
			data: entry.Data,
			tags: tag.New(s.strategy, tag.Words(size)),
		}
		for _, w := range entry.Handles {
			if w >= tag.Words(size) {
				return nil, errors.InvalidData(errors.PhaseSnapshot, fmt.Sprintf("segment %d tag word %d out of range", entry.ID, w))
			}
			if err := seg.tags.Set(w, tag.Handle); err != nil {
				return nil, errors.Wrap(errors.PhaseSnapshot, errors.KindInvalidData, err, "restore tags")
			}
		}
		s.segments[entry.ID] = seg
		s.stats.addAllocation(int(size))
	}

	for id := uint32(1); id < body.NextID; id++ {
		if s.segments[id] == nil {
			s.stats.AllocationCount++
			s.stats.FreeCount++
		}
	}
	return s, nil
}
