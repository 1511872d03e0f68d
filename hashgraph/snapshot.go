// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package hashgraph

import (
	"fmt"

	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/errs"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/eventstore"
	"github.com/hashgraph/consensus-core/log"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/metrics"
	"github.com/hashgraph/consensus-core/ordering"
	"github.com/hashgraph/consensus-core/roundindex"
	"github.com/hashgraph/consensus-core/voting"
)

// Snapshot is a persisted core state: events already in consensus
// order, the round-received watermark, the last transaction
// timestamp, and the minimum generation recorded for each round at
// the time of the snapshot (events older than that bound may no
// longer be present).
type Snapshot struct {
	Events                  []*event.Event // in ascending ConsensusOrder
	LastRoundReceived       int64
	LastTransactionTimestamp int64
	MinGenerationPerRound   map[int64]int64
}

// LoadSnapshot reconstructs a Core from a persisted snapshot. It
// validates that the loaded events' ConsensusOrder forms a gap-free
// prefix starting at 0 and that LastRoundReceived matches the highest
// RoundReceived among them, refusing to initialize otherwise.
func LoadSnapshot(stakes []uint64, cfg config.Config, logger log.Logger, m *metrics.Metrics, snap Snapshot) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("hashgraph: invalid configuration: %w", err)
	}
	table, err := member.New(stakes)
	if err != nil {
		return nil, fmt.Errorf("hashgraph: invalid member table: %w", err)
	}
	if logger == nil {
		logger = log.NewNoOp()
	}
	if m == nil {
		m = metrics.NewNoOp()
	}

	if err := validateSnapshot(snap); err != nil {
		return nil, err
	}

	store := eventstore.New(table.N())
	rounds := roundindex.New(cfg.WhiteningLength)

	// RoundInfo.Witnesses/Judges are always indexed by a witness's
	// round-created, never its round-received — those are distinct
	// axes assigned at different times (round-created at graph-entry,
	// round-received once the round's judges have witnessed it), so
	// reconstruction must group the same way or every Round() lookup
	// downstream silently lands on the wrong RoundInfo.
	byRoundCreated := make(map[int64][]*event.Event)
	maxRoundCreated := int64(0)

	for _, e := range snap.Events {
		if err := store.Insert(e); err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrStateLoadFailure, err)
		}
		store.RecordConsensus(e)
		byRoundCreated[e.RoundCreated] = append(byRoundCreated[e.RoundCreated], e)
		if e.RoundCreated > maxRoundCreated {
			maxRoundCreated = e.RoundCreated
		}
	}

	for round := int64(1); round <= maxRoundCreated; round++ {
		var witnesses []*event.Event
		for _, e := range byRoundCreated[round] {
			if e.Witness {
				witnesses = append(witnesses, e)
			}
		}
		minGen := snap.MinGenerationPerRound[round]
		rounds.RestoreRound(round, witnesses, minGen)
	}

	voter := voting.New(table, rounds, cfg, m)
	nextOrder := int64(0)
	for _, e := range snap.Events {
		if e.ConsensusOrder+1 > nextOrder {
			nextOrder = e.ConsensusOrder + 1
		}
	}
	minTimestamp := snap.LastTransactionTimestamp + cfg.MinTransTimestampIncrNanos
	order := ordering.New(table, rounds, store, cfg, m, snap.LastRoundReceived, minTimestamp)
	order.SetNextConsensusOrder(nextOrder)

	c := &Core{
		table:  table,
		store:  store,
		rounds: rounds,
		voter:  voter,
		order:  order,
		cfg:    cfg,
		log:    logger,
		m:      m,
	}
	c.minRound.Store(rounds.MinRound())
	c.maxRound.Store(maxRoundCreated)
	c.lastRoundDecided.Store(snap.LastRoundReceived)
	c.numConsensus.Store(int64(len(snap.Events)))
	return c, nil
}

// validateSnapshot enforces the two consistency conditions bootstrap
// requires: a gap-free ConsensusOrder prefix starting at 0, and
// LastRoundReceived matching the maximum RoundReceived actually
// present.
func validateSnapshot(snap Snapshot) error {
	maxRoundReceived := int64(0)
	for i, e := range snap.Events {
		if e.ConsensusOrder != int64(i) {
			return fmt.Errorf("%w: event at index %d has consensus-order %d, expected %d", errs.ErrStateLoadFailure, i, e.ConsensusOrder, i)
		}
		if e.RoundReceived > maxRoundReceived {
			maxRoundReceived = e.RoundReceived
		}
	}
	if len(snap.Events) > 0 && maxRoundReceived != snap.LastRoundReceived {
		return fmt.Errorf("%w: last-round-received=%d but loaded events reach round-received=%d", errs.ErrStateLoadFailure, snap.LastRoundReceived, maxRoundReceived)
	}
	return nil
}
