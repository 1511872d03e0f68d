// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package roundindex

import "github.com/hashgraph/consensus-core/event"

// Election is the tuple of which round is voting, on which target
// witness, how old that election is, and the stake-weighted vote cast
// by each witness of round-of-election.
//
// Elections form two orthogonal linked lists: one along rounds,
// chaining the same target witness's elections forward from age 1
// upward, and one within a round, chaining every election live in
// that round regardless of target. Go's garbage collector owns
// reclamation once both lists drop a node, so plain pointers are used
// here instead of an arena of slots.
type Election struct {
	RoundOfElection int64
	Target          *event.Event
	Age             int64
	Votes           []bool // Votes[i] is the vote of the i-th witness of RoundOfElection
	Decided         bool
	Outcome         bool

	// within-round list
	prevInRound *Election
	nextInRound *Election

	// along-rounds list for the same target
	prevForTarget *Election
	nextForTarget *Election
}

// PrevForTarget returns the same-target election one round earlier in
// the along-rounds chain, or nil at age 1.
func (e *Election) PrevForTarget() *Election { return e.prevForTarget }

// VoteOf returns the vote cast into this election by witness w, using
// w's position within this election's round: vote-bitmap[i] is the
// vote cast by the i-th witness of round-of-election.
func (e *Election) VoteOf(w *event.Event) bool {
	idx := w.WitnessIndex()
	if idx < 0 || idx >= len(e.Votes) {
		return false
	}
	return e.Votes[idx]
}
