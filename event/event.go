// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package event defines the fundamental hashgraph vertex and its
// binary hashed/unhashed split.
package event

import (
	"github.com/luxfi/crypto/hashing"
	"github.com/luxfi/ids"
)

// Member identifies a creator by its index into the member table,
// 0 <= Member < N.
type Member uint32

// NoRound is the negative-infinity sentinel that round-created
// comparisons use for a missing parent. Real rounds start at 1
// (genesis witnesses live in round 1); an event built by New carries
// RoundCreated 0 until the voting engine assigns it.
const NoRound int64 = -1

// Generation of an event with a missing parent.
const NoGeneration int64 = -1

// HashedData is the region of the event that is cryptographically
// hashed to produce its identity. Kept as its own type so the
// hashed/unhashed split required for interop with signed-state files
// cannot be accidentally blurred.
type HashedData struct {
	Creator          Member
	SelfParentHash   ids.ID
	OtherParentHash  ids.ID
	SelfParentGen    int64
	OtherParentGen   int64
	TimestampCreated int64 // unix nanoseconds, creator-asserted
	Transactions     [][]byte
}

// UnhashedData is appended to the event after hashing and signing; it
// never contributes to the event's hash.
type UnhashedData struct {
	Signature []byte // serialized BLS signature over HashedData's hash
	OtherID   uint32 // gossip bookkeeping id, opaque to consensus
}

// Event is the fundamental hashgraph vertex.
type Event struct {
	Hashed   HashedData
	Unhashed UnhashedData

	hash ids.ID

	Sequence uint64 // per-creator monotonic counter from 0

	// Resolved parent references, nil if absent. Cleared by
	// eventstore on expiry.
	SelfParent  *Event
	OtherParent *Event

	Generation int64

	// Consensus-derived fields, mutated only by voting/ordering.
	RoundCreated   int64
	Witness        bool
	Famous         bool
	FameDecided    bool
	RoundReceived  int64
	ConsensusTime  int64 // unix nanoseconds
	ConsensusOrder int64 // -1 until assigned; immutable once set
	Stale          bool
	Frozen         bool
	LastInRoundReceived bool

	// witnessIndex is this event's position within its own round's
	// witness list, assigned once when recorded. Shared across every
	// election of that round so a voter's cast vote can be looked up
	// by later rounds (roundindex.Election.Votes[witnessIndex]).
	witnessIndex int

	// Per-member memoized graph-function results, sized to N and
	// filled lazily on first query: index-keyed caches rather than
	// per-call recursion.
	lastSee            []*Event // last-see(this, m) for each member m
	lastSeeFilled      bool
	strongSeeParent    []*Event // strongly-see-parent(this, m) for each member m
	firstSelfWitness   *Event
	firstSelfWitnessOK bool
	firstWitness       *Event
	firstWitnessOK     bool

	// traversalStamp is the per-traversal integer stamp ordering
	// ancestor visits during commit, avoiding O(n) clearing between
	// traversals.
	traversalStamp uint64
}

// NewConsensusOrderUnset is the sentinel stored in ConsensusOrder
// before the ordering engine assigns a real, monotonic value.
const NewConsensusOrderUnset int64 = -1

// New creates an event and computes its generation from its parents.
// It does not compute the hash; call Hash() once Unhashed has been
// populated by the caller (or, for verification, once parsed).
func New(creator Member, sequence uint64, selfParent, otherParent *Event, timestampCreated int64, txs [][]byte) *Event {
	e := &Event{
		Hashed: HashedData{
			Creator:          creator,
			TimestampCreated: timestampCreated,
			Transactions:     txs,
		},
		Sequence:       sequence,
		SelfParent:     selfParent,
		OtherParent:    otherParent,
		RoundCreated:   0,
		FameDecided:    false,
		RoundReceived:  0,
		ConsensusOrder: NewConsensusOrderUnset,
	}

	selfGen := NoGeneration
	if selfParent != nil {
		e.Hashed.SelfParentHash = selfParent.Hash()
		e.Hashed.SelfParentGen = selfParent.Generation
		selfGen = selfParent.Generation
	} else {
		e.Hashed.SelfParentGen = NoGeneration
	}

	otherGen := NoGeneration
	if otherParent != nil {
		e.Hashed.OtherParentHash = otherParent.Hash()
		e.Hashed.OtherParentGen = otherParent.Generation
		otherGen = otherParent.Generation
	} else {
		e.Hashed.OtherParentGen = NoGeneration
	}

	e.Generation = 1 + max64(selfGen, otherGen)
	return e
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Hash returns the event's content address, computed over HashedData
// only. It is memoized after the first call; HashedData must not be
// mutated afterward.
func (e *Event) Hash() ids.ID {
	if e.hash != (ids.ID{}) {
		return e.hash
	}
	h := hashing.ComputeHash256Array(e.encodeHashed())
	id, err := ids.ToID(h[:])
	if err != nil {
		// ComputeHash256Array always returns 32 bytes; ToID can only
		// fail on the wrong length, which would be a programming
		// error in this package, not a runtime condition.
		panic(err)
	}
	e.hash = id
	return e.hash
}

// encodeHashed serializes HashedData deterministically. Field order is
// fixed and never includes UnhashedData.
func (e *Event) encodeHashed() []byte {
	buf := make([]byte, 0, 128)
	buf = appendUint32(buf, uint32(e.Hashed.Creator))
	buf = append(buf, e.Hashed.SelfParentHash[:]...)
	buf = append(buf, e.Hashed.OtherParentHash[:]...)
	buf = appendInt64(buf, e.Hashed.SelfParentGen)
	buf = appendInt64(buf, e.Hashed.OtherParentGen)
	buf = appendInt64(buf, e.Hashed.TimestampCreated)
	for _, tx := range e.Hashed.Transactions {
		buf = appendUint32(buf, uint32(len(tx)))
		buf = append(buf, tx...)
	}
	return buf
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendInt64(buf []byte, v int64) []byte {
	u := uint64(v)
	for i := 7; i >= 0; i-- {
		buf = append(buf, byte(u>>(8*uint(i))))
	}
	return buf
}

// IsGenesis reports whether the event has no parents at all.
func (e *Event) IsGenesis() bool {
	return e.SelfParent == nil && e.OtherParent == nil
}

// IsWitness reports whether the event is a witness: its self-parent is
// nil, or its round-created exceeds its self-parent's.
func (e *Event) IsWitness() bool {
	if e.SelfParent == nil {
		return true
	}
	return e.RoundCreated > e.SelfParent.RoundCreated
}

// LastSee returns the memoized last-see cache, sized to n members,
// allocating it on first use.
func (e *Event) LastSee(n int) []*Event {
	if e.lastSee == nil {
		e.lastSee = make([]*Event, n)
	}
	return e.lastSee
}

// LastSeeFilled reports whether the last-see cache has been populated
// for every member in a single pass.
func (e *Event) LastSeeFilled() bool { return e.lastSeeFilled }

// SetLastSeeFilled marks the last-see cache as fully populated.
func (e *Event) SetLastSeeFilled() { e.lastSeeFilled = true }

// WitnessIndex returns this event's position within its own round's
// witness list.
func (e *Event) WitnessIndex() int { return e.witnessIndex }

// SetWitnessIndex records this event's position within its own
// round's witness list.
func (e *Event) SetWitnessIndex(idx int) { e.witnessIndex = idx }

// StrongSeeParent returns the memoized strongly-see-parent cache,
// sized to n members, allocating it on first use.
func (e *Event) StrongSeeParent(n int) []*Event {
	if e.strongSeeParent == nil {
		e.strongSeeParent = make([]*Event, n)
	}
	return e.strongSeeParent
}

// FirstSelfWitness returns the memoized first-self-witness result and
// whether it has been computed yet.
func (e *Event) FirstSelfWitness() (*Event, bool) {
	return e.firstSelfWitness, e.firstSelfWitnessOK
}

// SetFirstSelfWitness memoizes the first-self-witness result.
func (e *Event) SetFirstSelfWitness(w *Event) {
	e.firstSelfWitness = w
	e.firstSelfWitnessOK = true
}

// FirstWitness returns the memoized first-witness result and whether
// it has been computed yet.
func (e *Event) FirstWitness() (*Event, bool) {
	return e.firstWitness, e.firstWitnessOK
}

// SetFirstWitness memoizes the first-witness result.
func (e *Event) SetFirstWitness(w *Event) {
	e.firstWitness = w
	e.firstWitnessOK = true
}

// TraversalStamp returns the event's last traversal stamp.
func (e *Event) TraversalStamp() uint64 { return e.traversalStamp }

// SetTraversalStamp records the current ancestor-traversal stamp on
// this event, used instead of per-node visited-flag clearing between
// traversals.
func (e *Event) SetTraversalStamp(stamp uint64) { e.traversalStamp = stamp }

// VisitedAt reports whether the event was already visited in the
// traversal identified by stamp.
func (e *Event) VisitedAt(stamp uint64) bool { return e.traversalStamp == stamp }

// Clear nulls out parent/child references so the event's memory can
// be reclaimed by the garbage collector once the event store has
// unlinked it from its indexes.
func (e *Event) Clear() {
	e.SelfParent = nil
	e.OtherParent = nil
	e.lastSee = nil
	e.lastSeeFilled = false
	e.strongSeeParent = nil
	e.firstSelfWitness = nil
	e.firstSelfWitnessOK = false
	e.firstWitness = nil
	e.firstWitnessOK = false
}
