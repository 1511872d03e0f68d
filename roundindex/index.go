// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package roundindex implements per-round witness and judge
// bookkeeping plus the forward-propagating election list.
package roundindex

import (
	"github.com/luxfi/ids"

	"github.com/hashgraph/consensus-core/errs"
	"github.com/hashgraph/consensus-core/event"
)

// Index owns every active RoundInfo and the cross-round election
// chains.
type Index struct {
	whiteningLength int

	rounds   map[int64]*RoundInfo
	minRound int64
	maxRound int64

	// earliestOpen[targetHash] is the most recently created election
	// for that target witness (each continuation replaces it), not the
	// oldest one in its chain; a non-owning reference kept separate
	// from the witness itself. Its presence marks the target as already
	// having an election.
	earliestOpen map[ids.ID]*Election
}

// New creates an empty Index.
func New(whiteningLength int) *Index {
	return &Index{
		whiteningLength: whiteningLength,
		rounds:          make(map[int64]*RoundInfo),
		earliestOpen:    make(map[ids.ID]*Election),
	}
}

// MinRound and MaxRound report the active round window.
func (x *Index) MinRound() int64 { return x.minRound }
func (x *Index) MaxRound() int64 { return x.maxRound }

// Round returns the RoundInfo for round, or nil if it does not exist.
func (x *Index) Round(round int64) *RoundInfo {
	return x.rounds[round]
}

// GetOrCreate creates round if absent, seeding it with a new age-1
// election for every witness of round-1 that does not yet have one,
// and a continuation of every still-open election from round-1.
func (x *Index) GetOrCreate(round int64) *RoundInfo {
	if r, ok := x.rounds[round]; ok {
		return r
	}

	r := newRoundInfo(round, x.whiteningLength)
	x.rounds[round] = r

	if len(x.rounds) == 1 {
		x.minRound, x.maxRound = round, round
	} else {
		if round < x.minRound {
			x.minRound = round
		}
		if round > x.maxRound {
			x.maxRound = round
		}
	}

	prev, ok := x.rounds[round-1]
	if !ok {
		return r
	}

	for _, w := range prev.Witnesses {
		if w.FameDecided {
			continue
		}
		if _, hasElection := x.earliestOpen[w.Hash()]; hasElection {
			// Already has an election somewhere in the chain; the
			// continuation branch below advances it.
			continue
		}
		x.newElectionLocked(r, w, 1)
	}

	for _, e := range prev.OpenElections() {
		age := round - e.Target.RoundCreated
		x.newContinuationLocked(r, e, age)
	}

	return r
}

// CreateElection starts a fresh election for target in round
// (age 1), used by the voting engine immediately on witness detection
// when round = target.RoundCreated+1 already exists.
func (x *Index) CreateElection(round *RoundInfo, target *event.Event) *Election {
	return x.newElectionLocked(round, target, round.Round-target.RoundCreated)
}

func (x *Index) newElectionLocked(round *RoundInfo, target *event.Event, age int64) *Election {
	e := &Election{
		RoundOfElection: round.Round,
		Target:          target,
		Age:             age,
		Votes:           make([]bool, len(round.Witnesses)),
	}
	round.appendElection(e)
	x.earliestOpen[target.Hash()] = e
	return e
}

func (x *Index) newContinuationLocked(round *RoundInfo, prevElection *Election, age int64) *Election {
	e := &Election{
		RoundOfElection: round.Round,
		Target:          prevElection.Target,
		Age:             age,
		Votes:           make([]bool, len(round.Witnesses)),
	}
	round.appendElection(e)
	e.prevForTarget = prevElection
	prevElection.nextForTarget = e
	x.earliestOpen[prevElection.Target.Hash()] = e
	return e
}

// RecordWitness appends w to round's witness list, bumps
// NumUnknownFame, and extends the vote bitmap of every open election
// of that round by one slot.
func (x *Index) RecordWitness(round *RoundInfo, w *event.Event) {
	w.SetWitnessIndex(len(round.Witnesses))
	round.Witnesses = append(round.Witnesses, w)
	round.observeGeneration(w.Generation)

	if round.FameDecided {
		// Late-witness rule: a witness discovered after its round's
		// fame is already decided is immediately not famous, without
		// an election.
		w.Famous = false
		w.FameDecided = true
		return
	}

	round.NumUnknownFame++
	for e := round.electionsHead; e != nil; e = e.nextInRound {
		e.Votes = append(e.Votes, false)
	}
}

// SetFamous records the fame decision for event (a witness of round),
// decrements NumUnknownFame, and marks the round fame-decided once it
// reaches zero.
func (x *Index) SetFamous(round *RoundInfo, w *event.Event, famous bool) (decided bool) {
	if w.FameDecided {
		return false
	}
	w.Famous = famous
	w.FameDecided = true

	if famous {
		if existing, ok := round.Judges[w.Hashed.Creator]; ok {
			// Fork: two witnesses by the same creator in the same
			// round. Canonical tie-break is lexicographic order of
			// the witness hash (DESIGN.md Open Question decision); the
			// loser is recorded but never becomes a judge.
			if lessHash(w.Hash(), existing.Hash()) {
				round.Judges[w.Hashed.Creator] = w
			}
		} else {
			round.Judges[w.Hashed.Creator] = w
		}
	}

	round.NumUnknownFame--
	if round.NumUnknownFame < 0 {
		errs.Fatal("negative num-unknown-fame", errs.Diagnostic{
			Creator:      uint32(w.Hashed.Creator),
			Sequence:     w.Sequence,
			RoundCreated: w.RoundCreated,
			Generation:   w.Generation,
			MinRound:     round.Round,
			MaxRound:     round.Round,
		})
	}
	if round.NumUnknownFame == 0 {
		round.FameDecided = true
		return true
	}
	return false
}

// RemoveElection unlinks e from its round's within-round list and
// clears it as the earliest-open election for its target if it was.
func (x *Index) RemoveElection(round *RoundInfo, e *Election) {
	round.removeElection(e)
	if x.earliestOpen[e.Target.Hash()] == e {
		delete(x.earliestOpen, e.Target.Hash())
	}
}

// RestoreRound recreates round directly from already-decided witness
// state, used only when bootstrapping from a persisted snapshot: no
// elections are reconstructed since every witness's fame is already
// final. minGeneration overrides the value observed from the
// witnesses themselves, since some ancestors behind the snapshot's
// horizon may no longer be present to derive it from.
func (x *Index) RestoreRound(round int64, witnesses []*event.Event, minGeneration int64) *RoundInfo {
	r := newRoundInfo(round, x.whiteningLength)
	r.FameDecided = true

	for _, w := range witnesses {
		w.SetWitnessIndex(len(r.Witnesses))
		r.Witnesses = append(r.Witnesses, w)
		if w.Famous {
			if existing, ok := r.Judges[w.Hashed.Creator]; !ok || lessHash(w.Hash(), existing.Hash()) {
				r.Judges[w.Hashed.Creator] = w
			}
		}
	}
	r.MinGeneration = minGeneration

	x.rounds[round] = r
	if len(x.rounds) == 1 {
		x.minRound, x.maxRound = round, round
	} else {
		if round < x.minRound {
			x.minRound = round
		}
		if round > x.maxRound {
			x.maxRound = round
		}
	}
	return r
}

// Remove deletes round from the index entirely, used by garbage
// collection once every event it covers has been emitted.
func (x *Index) Remove(round int64) {
	delete(x.rounds, round)
	if round == x.minRound {
		for x.minRound < x.maxRound {
			x.minRound++
			if _, ok := x.rounds[x.minRound]; ok {
				break
			}
		}
	}
}

func lessHash(a, b ids.ID) bool {
	return a.Compare(b) < 0
}
