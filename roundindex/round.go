// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package roundindex

import (
	"math"

	"github.com/hashgraph/consensus-core/event"
)

// RoundInfo is the per-round metadata: the witnesses created in the
// round, the judges ultimately chosen, fame decision state, minimum
// generation, whitening vector, and the within-round election list.
type RoundInfo struct {
	Round int64

	Witnesses []*event.Event
	Judges    map[event.Member]*event.Event

	FameDecided    bool
	NumUnknownFame int

	MinGeneration int64

	// Whitening is the XOR of judge signatures truncated to the
	// configured whitening length, zero-initialized.
	Whitening []byte

	electionsHead *Election
	electionsTail *Election
}

func newRoundInfo(round int64, whiteningLength int) *RoundInfo {
	return &RoundInfo{
		Round:         round,
		Judges:        make(map[event.Member]*event.Event),
		MinGeneration: math.MaxInt64,
		Whitening:     make([]byte, whiteningLength),
	}
}

// appendElection links e onto the tail of the round's within-round
// list.
func (r *RoundInfo) appendElection(e *Election) {
	e.prevInRound = r.electionsTail
	e.nextInRound = nil
	if r.electionsTail != nil {
		r.electionsTail.nextInRound = e
	} else {
		r.electionsHead = e
	}
	r.electionsTail = e
}

// removeElection unlinks e from the round's within-round list. Called
// once e is decided.
func (r *RoundInfo) removeElection(e *Election) {
	if e.prevInRound != nil {
		e.prevInRound.nextInRound = e.nextInRound
	} else {
		r.electionsHead = e.nextInRound
	}
	if e.nextInRound != nil {
		e.nextInRound.prevInRound = e.prevInRound
	} else {
		r.electionsTail = e.prevInRound
	}
	e.prevInRound = nil
	e.nextInRound = nil
}

// OpenElections returns the elections of this round still awaiting
// decision, in insertion order.
func (r *RoundInfo) OpenElections() []*Election {
	var out []*Election
	for e := r.electionsHead; e != nil; e = e.nextInRound {
		out = append(out, e)
	}
	return out
}

// observeGeneration lowers MinGeneration if gen is smaller.
func (r *RoundInfo) observeGeneration(gen int64) {
	if gen < r.MinGeneration {
		r.MinGeneration = gen
	}
}
