// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package roundindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashgraph/consensus-core/event"
)

func TestMinMaxRoundTrackWindow(t *testing.T) {
	x := New(8)
	x.GetOrCreate(5)
	x.GetOrCreate(3)
	x.GetOrCreate(7)

	require.Equal(t, int64(3), x.MinRound())
	require.Equal(t, int64(7), x.MaxRound())
}

func TestRoundReturnsNilForUnknownRound(t *testing.T) {
	x := New(8)
	require.Nil(t, x.Round(99))
}

func TestElectionContinuesAcrossRoundsForOpenElection(t *testing.T) {
	x := New(8)
	r1 := x.GetOrCreate(1)
	w := witness(0, 0, 1, 1)
	x.RecordWitness(r1, w)

	r2 := x.GetOrCreate(2)
	require.Len(t, r2.OpenElections(), 1)
	el2 := r2.OpenElections()[0]
	require.Equal(t, int64(1), el2.Age)

	// Round 2 does not decide it, so round 3 carries it forward as age 2.
	r3 := x.GetOrCreate(3)
	require.Len(t, r3.OpenElections(), 1)
	el3 := r3.OpenElections()[0]
	require.Equal(t, int64(2), el3.Age)
	require.Same(t, el2, el3.PrevForTarget())
	require.Same(t, w, el3.Target)
}

func TestDecidedWitnessGetsNoContinuationElection(t *testing.T) {
	x := New(8)
	r1 := x.GetOrCreate(1)
	w := witness(0, 0, 1, 1)
	x.RecordWitness(r1, w)
	require.True(t, x.SetFamous(r1, w, true))

	r2 := x.GetOrCreate(2)
	require.Empty(t, r2.OpenElections(), "a fame-decided witness seeds no age-1 election")
}

func TestRemoveElectionClearsEarliestOpenReference(t *testing.T) {
	x := New(8)
	r1 := x.GetOrCreate(1)
	w := witness(0, 0, 1, 1)
	x.RecordWitness(r1, w)

	r2 := x.GetOrCreate(2)
	el := r2.OpenElections()[0]
	x.RemoveElection(r2, el)
	require.Empty(t, r2.OpenElections())

	// Recreating round 2 no longer finds an election for w, so it
	// re-seeds a fresh age-1 election from the still-undecided witness.
	x.Remove(2)
	r2 = x.GetOrCreate(2)
	require.Len(t, r2.OpenElections(), 1)
	require.Nil(t, r2.OpenElections()[0].PrevForTarget())
}

func TestRestoreRoundRebuildsJudgesWithoutElections(t *testing.T) {
	x := New(8)
	wA := witness(0, 0, 5, 1)
	wA.Famous = true
	wA.FameDecided = true
	wB := witness(1, 0, 5, 1)
	wB.Famous = false
	wB.FameDecided = true

	r := x.RestoreRound(5, []*event.Event{wA, wB}, 42)

	require.True(t, r.FameDecided)
	require.Same(t, wA, r.Judges[0])
	require.NotContains(t, r.Judges, event.Member(1))
	require.Equal(t, int64(42), r.MinGeneration)
	require.Equal(t, int64(5), x.MinRound())
	require.Equal(t, int64(5), x.MaxRound())
}

func TestRemoveDeletesRound(t *testing.T) {
	x := New(8)
	x.GetOrCreate(1)
	x.Remove(1)
	require.Nil(t, x.Round(1))
}

func TestVoteOfReadsBitmapByWitnessIndex(t *testing.T) {
	x := New(8)
	r1 := x.GetOrCreate(1)
	x.RecordWitness(r1, witness(0, 0, 1, 1))

	// The voters are the witnesses of the election's own round.
	r2 := x.GetOrCreate(2)
	wA := witness(0, 1, 2, 2)
	wB := witness(1, 0, 2, 1)
	x.RecordWitness(r2, wA)
	x.RecordWitness(r2, wB)
	el := r2.OpenElections()[0]
	el.Votes[wA.WitnessIndex()] = true
	el.Votes[wB.WitnessIndex()] = false

	require.True(t, el.VoteOf(wA))
	require.False(t, el.VoteOf(wB))
}

func TestVoteOfOutOfRangeIndexIsFalse(t *testing.T) {
	el := &Election{Votes: make([]bool, 1)}
	stranger := witness(9, 0, 1, 1)
	stranger.SetWitnessIndex(5)
	require.False(t, el.VoteOf(stranger))
}
