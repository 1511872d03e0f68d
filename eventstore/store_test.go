// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package eventstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashgraph/consensus-core/event"
)

func TestInsertGenesisAndChild(t *testing.T) {
	s := New(2)
	genesis := event.New(0, 0, nil, nil, 100, nil)
	require.NoError(t, s.Insert(genesis))

	child := event.New(0, 1, genesis, nil, 200, nil)
	require.NoError(t, s.Insert(child))

	require.Same(t, child, s.Get(0, 1))
	require.Same(t, genesis, s.GetByHash(genesis.Hash()))
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	s := New(1)
	a := event.New(0, 0, nil, nil, 100, nil)
	require.NoError(t, s.Insert(a))

	b := event.New(0, 0, nil, nil, 999, nil)
	err := s.Insert(b)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestInsertRejectsSequenceGap(t *testing.T) {
	s := New(1)
	genesis := event.New(0, 0, nil, nil, 100, nil)
	require.NoError(t, s.Insert(genesis))

	gapped := event.New(0, 5, genesis, nil, 200, nil)
	err := s.Insert(gapped)
	require.ErrorIs(t, err, ErrInvalidAncestry)
}

func TestInsertRejectsNonZeroSequenceWithoutSelfParent(t *testing.T) {
	s := New(1)
	orphan := event.New(0, 3, nil, nil, 100, nil)
	err := s.Insert(orphan)
	require.ErrorIs(t, err, ErrInvalidAncestry)
}

func TestExpireRetainsLastConsensusEvent(t *testing.T) {
	s := New(1)
	a := event.New(0, 0, nil, nil, 100, nil)
	a.Generation = 0
	require.NoError(t, s.Insert(a))
	b := event.New(0, 1, a, nil, 200, nil)
	require.NoError(t, s.Insert(b))

	b.ConsensusOrder = 0
	s.RecordConsensus(b)

	expired := s.Expire(10)
	require.Len(t, expired, 1, "only a should expire; b is retained as last-consensus")
	require.Equal(t, a, expired[0])
	require.Same(t, b, s.Get(0, 1), "retained last-consensus event stays reachable")
	require.Nil(t, s.Get(0, 0), "expired event no longer reachable by key")
}
