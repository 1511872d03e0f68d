// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package ordering

import (
	"github.com/luxfi/ids"

	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/roundindex"
	"github.com/hashgraph/consensus-core/utils/set"
)

// computeWhitening XORs each judge's signature, truncated or
// zero-padded to length, into round.Whitening, in judge (creator)
// order. A creator with no judge contributes nothing, leaving its
// share of the vector at zero.
func computeWhitening(round *roundindex.RoundInfo, judges []*event.Event, length int) {
	for i := range round.Whitening {
		round.Whitening[i] = 0
	}
	for _, j := range judges {
		sig := j.Unhashed.Signature
		for i := 0; i < length; i++ {
			if i < len(sig) {
				round.Whitening[i] ^= sig[i]
			}
		}
	}
}

// collectWitnessHashes enumerates, for each judge, the witness
// ancestors one and two rounds earlier, alongside the judges' own
// hashes, for external verification of the round's fame decisions.
func collectWitnessHashes(rounds *roundindex.Index, round *roundindex.RoundInfo, judges []*event.Event) WitnessHashes {
	out := WitnessHashes{}
	for _, j := range judges {
		out.Round = append(out.Round, j.Hash())
	}

	seen := set.New[ids.ID](len(judges))
	for _, j := range judges {
		collectWitnessAncestors(j, round.Round-1, &out.RoundM1, seen)
	}
	seen2 := set.New[ids.ID](len(judges))
	for _, j := range judges {
		collectWitnessAncestors(j, round.Round-2, &out.RoundM2, seen2)
	}
	return out
}

// collectWitnessAncestors walks j's ancestry through its self- and
// other-parent links, never descending below targetRound, collecting
// every distinct witness created in targetRound. A bounded depth-first walk
// suffices here since both rounds of interest are at most two below
// j's own.
func collectWitnessAncestors(j *event.Event, targetRound int64, out *[]ids.ID, seen set.Set[ids.ID]) {
	if targetRound < 1 {
		return
	}
	var walk func(e *event.Event)
	visited := set.New[*event.Event](0)
	walk = func(e *event.Event) {
		if e == nil || e.RoundCreated < targetRound {
			return
		}
		if visited.Contains(e) {
			return
		}
		visited.Add(e)
		if e.RoundCreated == targetRound && e.Witness {
			h := e.Hash()
			if !seen.Contains(h) {
				seen.Add(h)
				*out = append(*out, h)
			}
			return
		}
		walk(e.SelfParent)
		walk(e.OtherParent)
	}
	walk(j)
}
