// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hashgraph wires the event store, round index, virtual
// voting engine and ordering engine into the single external surface:
// insert, the read-only getters, and bootstrap from a persisted
// snapshot.
package hashgraph

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/luxfi/ids"
	"go.uber.org/zap"

	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/eventstore"
	"github.com/hashgraph/consensus-core/log"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/metrics"
	"github.com/hashgraph/consensus-core/ordering"
	"github.com/hashgraph/consensus-core/roundindex"
	"github.com/hashgraph/consensus-core/voting"
)

// Result is the output of Insert: every event that newly reached
// consensus as a result of the insert, in final total order, and
// every event newly declared stale.
type Result struct {
	NewlyConsensus []*event.Event
	Stale          []*event.Event
}

// Core is the single-threaded cooperative consensus engine: every
// mutating operation runs under mu, while the atomically published
// scalar getters below may be called from any goroutine without it.
type Core struct {
	mu sync.Mutex

	table  *member.Table
	store  *eventstore.Store
	rounds *roundindex.Index
	voter  *voting.Engine
	order  *ordering.Engine

	cfg config.Config
	log log.Logger
	m   *metrics.Metrics

	// Atomically published scalars, safe to read without mu.
	minRound         atomic.Int64
	maxRound         atomic.Int64
	lastRoundDecided atomic.Int64
	numConsensus     atomic.Int64
}

// New constructs a Core over a fresh, empty state.
func New(stakes []uint64, cfg config.Config, logger log.Logger, m *metrics.Metrics) (*Core, error) {
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

	store := eventstore.New(table.N())
	rounds := roundindex.New(cfg.WhiteningLength)
	voter := voting.New(table, rounds, cfg, m)
	order := ordering.New(table, rounds, store, cfg, m, 0, 0)

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
	c.minRound.Store(0)
	c.maxRound.Store(0)
	c.lastRoundDecided.Store(0)
	return c, nil
}

// Insert validates e's ancestry, runs it through the voting engine,
// commits every round that becomes fame-decided as a result, and
// returns the newly-consensus and newly-stale events. Insert
// serializes internally; callers need no external lock.
func (c *Core) Insert(e *event.Event) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := e.Hash()
	if !c.table.VerifySignature(e.Hashed.Creator, hash[:], e.Unhashed.Signature) {
		return Result{}, fmt.Errorf("%w: creator=%d sequence=%d", eventstore.ErrInvalidSignature, e.Hashed.Creator, e.Sequence)
	}

	if err := c.store.Insert(e); err != nil {
		return Result{}, err
	}
	if c.m != nil {
		c.m.EventsInserted.Inc()
	}

	decided := c.voter.OnInserted(e)
	c.maxRound.Store(c.rounds.MaxRound())
	c.minRound.Store(c.rounds.MinRound())

	if len(decided) == 0 {
		return Result{}, nil
	}

	consensus, stale := c.order.AdvanceAndCommit()
	c.lastRoundDecided.Store(c.order.DecidedThrough())
	c.numConsensus.Add(int64(len(consensus)))

	c.log.Debug("committed rounds",
		zap.Int64("lastRoundDecided", c.lastRoundDecided.Load()),
		zap.Int("newlyConsensus", len(consensus)),
		zap.Int("newlyStale", len(stale)),
	)

	return Result{NewlyConsensus: consensus, Stale: stale}, nil
}

// GetMinGenerationNonAncient returns the lowest generation still
// eligible to reach consensus, the threshold below which an event is
// either already resolved or will be staled the next time its round's
// judges are traversed.
func (c *Core) GetMinGenerationNonAncient() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.rounds.Round(c.order.DecidedThrough() - int64(c.cfg.RoundsStale))
	if r == nil {
		return 0
	}
	return r.MinGeneration
}

// GetLastRoundDecided returns the highest round fully committed.
func (c *Core) GetLastRoundDecided() int64 { return c.lastRoundDecided.Load() }

// GetMaxRound returns the highest round-created assigned so far.
func (c *Core) GetMaxRound() int64 { return c.maxRound.Load() }

// GetMinRound returns the lowest round still tracked by the index.
func (c *Core) GetMinRound() int64 { return c.minRound.Load() }

// GetAllEvents returns every live event, in no particular order.
func (c *Core) GetAllEvents() []*event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// GetWitnessHashes returns the three-round witness hash export for
// round, if it has been committed.
func (c *Core) GetWitnessHashes(round int64) (ordering.WitnessHashes, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.GetWitnessHashes(round)
}

// GetByHash looks up a live event by its content address.
func (c *Core) GetByHash(h ids.ID) *event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetByHash(h)
}

// GetNumConsensus reports how many events have reached consensus over
// this Core's lifetime.
func (c *Core) GetNumConsensus() int64 { return c.numConsensus.Load() }
