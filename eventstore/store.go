// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package eventstore implements the content-addressed event
// repository: lookup by (creator, sequence) and by hash,
// last-consensus tracking per creator, and expiry-driven reference
// clearing.
package eventstore

import (
	"fmt"

	"github.com/luxfi/ids"

	"github.com/hashgraph/consensus-core/event"
)

type key struct {
	creator  event.Member
	sequence uint64
}

// Store is the canonical, content-addressed repository of live
// events. Lookups are O(1) amortized via two maps. It is not
// internally synchronized: the core serializes all mutation under its
// own single logical lock.
type Store struct {
	byKey  map[key]*event.Event
	byHash map[ids.ID]*event.Event

	// lastConsensus[m] is the most recent event by member m that has
	// ConsensusOrder assigned. Retained across expiry to preserve
	// sequence continuity for late-arriving events.
	lastConsensus []*event.Event

	// retained holds events kept alive only because they are some
	// creator's last-consensus event. Expire refreshes it from
	// lastConsensus, so an entry is replaced at the first Expire after
	// that creator produces a newer consensus event.
	retained map[event.Member]*event.Event
}

// New creates an empty Store sized for n members.
func New(n int) *Store {
	return &Store{
		byKey:         make(map[key]*event.Event),
		byHash:        make(map[ids.ID]*event.Event),
		lastConsensus: make([]*event.Event, n),
		retained:      make(map[event.Member]*event.Event),
	}
}

// Insert records a validated event, rejecting duplicates and broken
// self-parent ancestry.
func (s *Store) Insert(e *event.Event) error {
	k := key{creator: e.Hashed.Creator, sequence: e.Sequence}
	if _, exists := s.byKey[k]; exists {
		return fmt.Errorf("%w: creator=%d sequence=%d", ErrDuplicate, e.Hashed.Creator, e.Sequence)
	}

	if e.SelfParent != nil && e.SelfParent.Sequence != e.Sequence-1 {
		return fmt.Errorf("%w: creator=%d sequence=%d self-parent-sequence=%d", ErrInvalidAncestry, e.Hashed.Creator, e.Sequence, e.SelfParent.Sequence)
	}
	if e.SelfParent == nil && e.Sequence != 0 {
		return fmt.Errorf("%w: creator=%d sequence=%d has no self-parent but sequence != 0", ErrInvalidAncestry, e.Hashed.Creator, e.Sequence)
	}

	s.byKey[k] = e
	s.byHash[e.Hash()] = e
	return nil
}

// Get returns the live event at (creator, sequence), or the creator's
// retained last-consensus event if its sequence matches.
func (s *Store) Get(creator event.Member, sequence uint64) *event.Event {
	if e, ok := s.byKey[key{creator: creator, sequence: sequence}]; ok {
		return e
	}
	if e, ok := s.retained[creator]; ok && e.Sequence == sequence {
		return e
	}
	return nil
}

// GetByHash returns the live event with the given hash, if any.
func (s *Store) GetByHash(h ids.ID) *event.Event {
	return s.byHash[h]
}

// All returns every live event, in no particular order.
func (s *Store) All() []*event.Event {
	out := make([]*event.Event, 0, len(s.byKey))
	for _, e := range s.byKey {
		out = append(out, e)
	}
	return out
}

// LastConsensus returns the most recent event by creator with
// ConsensusOrder assigned.
func (s *Store) LastConsensus(creator event.Member) *event.Event {
	if int(creator) >= len(s.lastConsensus) {
		return nil
	}
	return s.lastConsensus[creator]
}

// RecordConsensus updates the last-consensus pointer for e's creator.
// Called by the ordering engine immediately after assigning e's
// ConsensusOrder. Draining of the old retained entry for this creator
// happens lazily the next time Expire runs.
func (s *Store) RecordConsensus(e *event.Event) {
	c := e.Hashed.Creator
	if int(c) >= len(s.lastConsensus) {
		grown := make([]*event.Event, c+1)
		copy(grown, s.lastConsensus)
		s.lastConsensus = grown
	}
	s.lastConsensus[c] = e
}

// Expire clears parent/child references and unlinks from all indexes
// every event whose generation is strictly less than
// minGenerationNonAncient and which is not the last-consensus event
// of its creator. It returns the expired events.
func (s *Store) Expire(minGenerationNonAncient int64) []*event.Event {
	var expired []*event.Event

	for c, last := range s.lastConsensus {
		if last != nil {
			s.retained[event.Member(c)] = last
		}
	}

	for k, e := range s.byKey {
		if e.Generation >= minGenerationNonAncient {
			continue
		}
		if retained, ok := s.retained[e.Hashed.Creator]; ok && retained == e {
			continue
		}
		delete(s.byKey, k)
		delete(s.byHash, e.Hash())
		e.Clear()
		expired = append(expired, e)
	}

	return expired
}
