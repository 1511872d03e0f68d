// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package voting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/roundindex"
)

func TestGenesisEventIsAlwaysARoundOneWitness(t *testing.T) {
	table, err := member.New([]uint64{1, 1})
	require.NoError(t, err)
	e := New(table, roundindex.New(8), config.TestConfig, nil)

	g := event.New(0, 0, nil, nil, 100, nil)
	decided := e.OnInserted(g)

	require.Equal(t, int64(1), g.RoundCreated)
	require.True(t, g.Witness)
	require.Empty(t, decided)
}

// TestRoundAdvancesOnSupermajorityStronglySeeing builds a two-member
// graph by hand (equal stake) and verifies round-created advances
// exactly when an event's strongly-seen round-1 witnesses reach a
// supermajority of total stake:
//
//	g0(m0) g1(m1)            round 1, both witnesses
//	   \   /  \
//	    \ /    (self)
//	     (other)w1            round 1, not a witness (only reaches
//	                           1/2 of the table's stake)
//	g0--------x               round 2 witness: strongly sees both
//	  (self)  (other=w1)       g0 and g1 with full stake
func TestRoundAdvancesOnSupermajorityStronglySeeing(t *testing.T) {
	table, err := member.New([]uint64{1, 1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	e := New(table, idx, config.TestConfig, nil)

	g0 := event.New(0, 0, nil, nil, 10, nil)
	g1 := event.New(1, 0, nil, nil, 10, nil)
	require.Empty(t, e.OnInserted(g0))
	require.Empty(t, e.OnInserted(g1))
	require.Equal(t, int64(1), g0.RoundCreated)
	require.Equal(t, int64(1), g1.RoundCreated)

	w1 := event.New(1, 1, g1, g0, 20, nil)
	e.OnInserted(w1)
	require.Equal(t, int64(1), w1.RoundCreated, "one member's reach alone is not a supermajority")
	require.False(t, w1.Witness)

	x := event.New(0, 1, g0, w1, 30, nil)
	e.OnInserted(x)
	require.Equal(t, int64(2), x.RoundCreated, "x strongly sees both round-1 witnesses with full stake")
	require.True(t, x.Witness)
}

// coinFixture builds a long-running election (age 4) over a target T,
// plus two prior-round witnesses w1 and w2 (equal stake 1) and a
// third voter x that strongly sees both thanks to a heavily skewed
// member-0 stake, so the w1/w2 tally alone can never reach
// supermajority regardless of how it splits — every test built on
// this fixture exercises the no-supermajority branch of vote().
func coinFixture(t *testing.T) (table *member.Table, idx *roundindex.Index, el, prevEl *roundindex.Election, x *event.Event) {
	t.Helper()

	var err error
	table, err = member.New([]uint64{100, 1, 1})
	require.NoError(t, err)
	idx = roundindex.New(8)

	T := event.New(0, 0, nil, nil, 1, nil)
	T.RoundCreated = 7
	T.Witness = true
	round7 := idx.GetOrCreate(7)
	idx.RecordWitness(round7, T)

	idx.GetOrCreate(8)
	idx.GetOrCreate(9)
	round10 := idx.GetOrCreate(10)

	w1 := event.New(1, 0, nil, nil, 2, nil)
	w2 := event.New(2, 0, nil, nil, 2, nil)
	idx.RecordWitness(round10, w1)
	idx.RecordWitness(round10, w2)

	round11 := idx.GetOrCreate(11)

	for _, e := range round10.OpenElections() {
		if e.Target == T {
			prevEl = e
			break
		}
	}
	require.NotNil(t, prevEl, "round 10 must carry T's age-3 continuation")
	require.Equal(t, int64(3), prevEl.Age)
	prevEl.Votes[w1.WitnessIndex()] = true
	prevEl.Votes[w2.WitnessIndex()] = false

	for _, e := range round11.OpenElections() {
		if e.Target == T {
			el = e
			break
		}
	}
	require.NotNil(t, el, "round 11 must carry T's age-4 continuation")
	require.Equal(t, int64(4), el.Age)

	g0 := event.New(0, 0, nil, nil, 5, nil)
	mid := event.New(0, 1, g0, w1, 6, nil)
	x = event.New(0, 2, mid, w2, 4, nil)

	require.True(t, stronglySees(x, w1, table))
	require.True(t, stronglySees(x, w2, table))

	return table, idx, el, prevEl, x
}

func TestVoteNoSupermajorityNonCoinRoundIsUndecided(t *testing.T) {
	table, idx, el, _, x := coinFixture(t)
	cfg := config.TestConfig
	cfg.CoinFreq = 100 // age 4 is nowhere near a coin round
	e := New(table, idx, cfg, nil)

	outcome, decided := e.vote(el, x)
	require.False(t, outcome, "w1 (yes) and w2 (no) hold equal stake: not a strict majority")
	require.False(t, decided, "a tied, non-coin vote never reaches supermajority")
}

func TestVoteCoinRoundEvenOrdinalUsesSignatureParity(t *testing.T) {
	table, idx, el, _, x := coinFixture(t)
	cfg := config.TestConfig
	cfg.CoinFreq = 2 // age 4 / coinFreq 2 = ordinal 2, even
	e := New(table, idx, cfg, nil)

	x.Unhashed.Signature = []byte{0x00, 0x01} // odd byte at len/2=1 -> parity bit set
	outcome, decided := e.vote(el, x)
	require.False(t, decided, "coin rounds never decide")
	require.Equal(t, signatureParityBit(x), outcome)
	require.True(t, outcome)
}

func TestVoteCoinRoundOddOrdinalAlwaysVotesTrue(t *testing.T) {
	table, idx, el, _, x := coinFixture(t)
	cfg := config.TestConfig
	cfg.CoinFreq = 4 // age 4 / coinFreq 4 = ordinal 1, odd
	e := New(table, idx, cfg, nil)

	x.Unhashed.Signature = []byte{0x00, 0x00} // parity bit clear, irrelevant for odd ordinals
	outcome, decided := e.vote(el, x)
	require.False(t, decided)
	require.True(t, outcome)
}

func TestVoteAgeOneMatchesFirstSeeOfTarget(t *testing.T) {
	table, err := member.New([]uint64{1, 1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	e := New(table, idx, config.TestConfig, nil)

	target := event.New(1, 0, nil, nil, 1, nil)
	target.RoundCreated = 1
	target.Witness = true
	round1 := idx.GetOrCreate(1)
	idx.RecordWitness(round1, target)

	x := event.New(1, 1, target, nil, 2, nil)
	x.RoundCreated = 1
	el := &roundindex.Election{RoundOfElection: 1, Target: target, Age: 1, Votes: make([]bool, 1)}

	outcome, decided := e.vote(el, x)
	require.False(t, decided, "age-1 votes never directly decide")
	require.True(t, outcome, "x's own chain first-saw exactly target")
}
