// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package ordering

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/eventstore"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/roundindex"
)

// decidedRound builds a single round with one fame-decided witness,
// ready to be committed.
func decidedRound(t *testing.T, store *eventstore.Store, idx *roundindex.Index) (*roundindex.RoundInfo, *event.Event) {
	t.Helper()
	g := event.New(0, 0, nil, nil, 100, nil)
	g.RoundCreated = 1
	g.Witness = true
	require.NoError(t, store.Insert(g))

	r1 := idx.GetOrCreate(1)
	idx.RecordWitness(r1, g)
	require.True(t, idx.SetFamous(r1, g, true))
	return r1, g
}

func TestAdvanceAndCommitAssignsOrderAndTimestamp(t *testing.T) {
	table, err := member.New([]uint64{1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	store := eventstore.New(1)
	_, g := decidedRound(t, store, idx)

	e := New(table, idx, store, config.TestConfig, nil, 0, 0)
	consensus, stale := e.AdvanceAndCommit()

	require.Empty(t, stale)
	require.Len(t, consensus, 1)
	require.Same(t, g, consensus[0])
	require.Equal(t, int64(1), g.RoundReceived)
	require.Equal(t, int64(0), g.ConsensusOrder)
	require.True(t, g.LastInRoundReceived)
	require.Equal(t, int64(100), g.ConsensusTime)
	require.Equal(t, int64(1), e.DecidedThrough())
}

func TestAdvanceAndCommitClampsTimestampToMinimum(t *testing.T) {
	table, err := member.New([]uint64{1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	store := eventstore.New(1)
	_, g := decidedRound(t, store, idx)

	// A minimum far above the judge's own timestamp forces clamping.
	e := New(table, idx, store, config.TestConfig, nil, 0, 10_000)
	_, _ = e.AdvanceAndCommit()

	require.Equal(t, int64(10_000), g.ConsensusTime)
}

func TestAdvanceAndCommitStopsAtFirstUndecidedRound(t *testing.T) {
	table, err := member.New([]uint64{1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	store := eventstore.New(1)

	e := New(table, idx, store, config.TestConfig, nil, 0, 0)
	consensus, stale := e.AdvanceAndCommit()

	require.Empty(t, consensus)
	require.Empty(t, stale)
	require.Equal(t, int64(0), e.DecidedThrough())
}

func TestGetWitnessHashesServesFromCacheAfterCommit(t *testing.T) {
	table, err := member.New([]uint64{1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	store := eventstore.New(1)
	_, g := decidedRound(t, store, idx)

	e := New(table, idx, store, config.TestConfig, nil, 0, 0)
	_, _ = e.AdvanceAndCommit()

	hashes, ok := e.GetWitnessHashes(1)
	require.True(t, ok)
	require.Equal(t, []ids.ID{g.Hash()}, hashes.Round)
	require.Empty(t, hashes.RoundM1)
	require.Empty(t, hashes.RoundM2)
}

func TestGetWitnessHashesMissingRoundReportsFalse(t *testing.T) {
	table, err := member.New([]uint64{1})
	require.NoError(t, err)
	idx := roundindex.New(8)
	store := eventstore.New(1)

	e := New(table, idx, store, config.TestConfig, nil, 0, 0)
	_, ok := e.GetWitnessHashes(7)
	require.False(t, ok)
}

func TestComputeWhiteningXorsJudgeSignatures(t *testing.T) {
	idx := roundindex.New(2)
	r := idx.GetOrCreate(1)
	j0 := event.New(0, 0, nil, nil, 1, nil)
	j0.Unhashed.Signature = []byte{0x0F, 0xFF}
	j1 := event.New(1, 0, nil, nil, 1, nil)
	j1.Unhashed.Signature = []byte{0xF0, 0x00}

	computeWhitening(r, []*event.Event{j0, j1}, 2)
	require.Equal(t, []byte{0xFF, 0xFF}, r.Whitening)
}

func TestComputeWhiteningHandlesShortSignature(t *testing.T) {
	idx := roundindex.New(2)
	r := idx.GetOrCreate(1)
	j0 := event.New(0, 0, nil, nil, 1, nil)
	j0.Unhashed.Signature = []byte{0xAB}

	computeWhitening(r, []*event.Event{j0}, 2)
	require.Equal(t, []byte{0xAB, 0x00}, r.Whitening)
}

func TestCollectWitnessAncestorsFindsDistinctWitnessesOneRoundBack(t *testing.T) {
	w := event.New(0, 0, nil, nil, 1, nil)
	w.RoundCreated = 1
	w.Witness = true

	child := event.New(0, 1, w, nil, 2, nil)
	child.RoundCreated = 2

	var out []ids.ID
	seen := make(map[ids.ID]struct{})
	collectWitnessAncestors(child, 1, &out, seen)

	require.Equal(t, []ids.ID{w.Hash()}, out)
}

func TestCollectWitnessAncestorsBelowRoundOneIsNoOp(t *testing.T) {
	child := event.New(0, 0, nil, nil, 1, nil)
	var out []ids.ID
	collectWitnessAncestors(child, 0, &out, make(map[ids.ID]struct{}))
	require.Empty(t, out)
}

func TestSortedJudgesOrdersByCreator(t *testing.T) {
	idx := roundindex.New(4)
	r := idx.GetOrCreate(1)
	j1 := event.New(1, 0, nil, nil, 1, nil)
	j0 := event.New(0, 0, nil, nil, 1, nil)
	r.Judges[1] = j1
	r.Judges[0] = j0

	out := sortedJudges(r)
	require.Equal(t, []*event.Event{j0, j1}, out)
}
