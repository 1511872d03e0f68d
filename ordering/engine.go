// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ordering implements the ordering and commit engine:
// round-received assignment via ancestor traversal from a round's
// judges, the median consensus timestamp, the four-key total order,
// commit, freezing and garbage collection.
package ordering

import (
	"sort"

	"github.com/luxfi/ids"

	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/errs"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/eventstore"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/metrics"
	"github.com/hashgraph/consensus-core/roundindex"
)

// WitnessHashes is the three-round witness-hash export: the judge
// hashes of round R itself, and the witness-ancestor hashes of rounds
// R-1 and R-2 reachable from those judges.
type WitnessHashes struct {
	Round   []ids.ID
	RoundM1 []ids.ID
	RoundM2 []ids.ID
}

// Engine assigns round-received, timestamps and the total order once a
// round's fame is fully decided, then drives garbage collection behind
// the advancing consensus frontier.
type Engine struct {
	table  *member.Table
	rounds *roundindex.Index
	store  *eventstore.Store
	cfg    config.Config
	m      *metrics.Metrics

	// decidedThrough is the highest round-received fully committed so
	// far; Commit only ever advances contiguously from here.
	decidedThrough int64

	// nextOrder is the next value handed out by ConsensusOrder,
	// monotonic for the engine's lifetime.
	nextOrder int64

	// minTimestamp is the watermark below which no future consensus
	// timestamp may fall.
	minTimestamp int64

	// mark is the traversal-stamp counter handed to event.SetTraversalStamp
	// for each per-judge ancestor walk.
	mark uint64

	hashes *witnessHashCache
}

// witnessHashCacheCapacity bounds the LRU backing the witness-hash
// export.
const witnessHashCacheCapacity = 16

// New creates an ordering Engine. decidedThrough should be the round
// already fully committed, 0 at genesis.
func New(table *member.Table, rounds *roundindex.Index, store *eventstore.Store, cfg config.Config, m *metrics.Metrics, decidedThrough int64, minTimestamp int64) *Engine {
	return &Engine{
		table:          table,
		rounds:         rounds,
		store:          store,
		cfg:            cfg,
		m:              m,
		decidedThrough: decidedThrough,
		minTimestamp:   minTimestamp,
		hashes:         newWitnessHashCache(witnessHashCacheCapacity),
	}
}

// NextConsensusOrder previews the next value Commit will assign.
func (o *Engine) NextConsensusOrder() int64 { return o.nextOrder }

// SetNextConsensusOrder seeds the monotonic order counter, used only
// by hashgraph.Core when restoring from a snapshot.
func (o *Engine) SetNextConsensusOrder(n int64) { o.nextOrder = n }

// DecidedThrough reports the highest round fully committed.
func (o *Engine) DecidedThrough() int64 { return o.decidedThrough }

// SetDecidedThrough seeds the committed-round frontier. Snapshot
// restore passes the frontier to New instead of calling this.
func (o *Engine) SetDecidedThrough(round int64) { o.decidedThrough = round }

// AdvanceAndCommit commits every contiguous round beyond decidedThrough
// whose fame is now decided, stopping at the first gap. It is called
// after every insert that produced newly fame-decided rounds. Returned
// events are in final consensus order across every round committed by
// this call.
func (o *Engine) AdvanceAndCommit() (consensus []*event.Event, stale []*event.Event) {
	for {
		next := o.decidedThrough + 1
		round := o.rounds.Round(next)
		if round == nil || !round.FameDecided {
			return consensus, stale
		}
		committed, staled := o.commit(round)
		consensus = append(consensus, committed...)
		stale = append(stale, staled...)
		o.decidedThrough = next
	}
}

// commit assigns round-received = round.Round to every event that
// accumulates a rec-time from every judge of round, in final total
// order, then runs garbage collection behind the new frontier.
func (o *Engine) commit(round *roundindex.RoundInfo) (consensus []*event.Event, staleOut []*event.Event) {
	judges := sortedJudges(round)
	computeWhitening(round, judges, o.cfg.WhiteningLength)
	o.hashes.Put(round.Round, collectWitnessHashes(o.rounds, round, judges))

	minGenConsensus := o.minGenerationNonAncient(round.Round - int64(o.cfg.RoundsStale))

	recTimes := make(map[*event.Event][]int64)
	var staled []*event.Event

	for _, j := range judges {
		o.mark++
		o.traverseFromJudge(j, o.mark, minGenConsensus, recTimes, &staled)
	}

	for _, e := range staled {
		e.Stale = true
		if o.m != nil {
			o.m.EventsStaled.Inc()
		}
	}
	checkWitnessInvariant(round, minGenConsensus)

	type candidate struct {
		e    *event.Event
		ts   []int64
		cons int64
	}
	var candidates []candidate
	for e, ts := range recTimes {
		if len(ts) != len(judges) {
			continue
		}
		sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
		candidates = append(candidates, candidate{e: e, ts: ts, cons: medianTimestamp(ts)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return less(candidates[i].e, candidates[i].cons, candidates[i].ts, candidates[j].e, candidates[j].cons, candidates[j].ts, round.Whitening)
	})

	out := make([]*event.Event, 0, len(candidates))
	for i, c := range candidates {
		e := c.e
		e.RoundReceived = round.Round
		ts := c.cons
		if ts < o.minTimestamp {
			ts = o.minTimestamp
		}
		e.ConsensusTime = ts
		e.ConsensusOrder = o.nextOrder
		o.nextOrder++
		if i == len(candidates)-1 {
			e.LastInRoundReceived = true
		}
		o.store.RecordConsensus(e)
		out = append(out, e)

		if o.m != nil {
			o.m.RoundsCommitted.Inc()
			o.m.ConsensusOrder.Set(float64(e.ConsensusOrder))
			o.m.RoundReceived.Set(float64(e.RoundReceived))
		}

		if len(e.Hashed.Transactions) > 0 {
			lastTxTime := ts + int64(len(e.Hashed.Transactions)-1)*o.cfg.MinTransTimestampIncrNanos
			if next := lastTxTime + o.cfg.MinTransTimestampIncrNanos; next > o.minTimestamp {
				o.minTimestamp = next
			}
		} else if ts+o.cfg.MinTransTimestampIncrNanos > o.minTimestamp {
			o.minTimestamp = ts + o.cfg.MinTransTimestampIncrNanos
		}
	}

	o.garbageCollect(round.Round)
	return out, staled
}

// minGenerationNonAncient is the minimum generation still eligible for
// consensus: the MinGeneration recorded for round, or 0 if that round
// has already been garbage collected or never existed (no staling
// applies yet).
func (o *Engine) minGenerationNonAncient(round int64) int64 {
	r := o.rounds.Round(round)
	if r == nil {
		return 0
	}
	return r.MinGeneration
}

// garbageCollect expires events below the window behind
// round-RoundsExpired and drops round metadata with nothing left to
// export.
func (o *Engine) garbageCollect(round int64) {
	expireRound := round - int64(o.cfg.RoundsExpired)
	minGen := o.minGenerationNonAncient(expireRound)
	expired := o.store.Expire(minGen)
	if o.m != nil {
		o.m.EventsExpired.Add(float64(len(expired)))
	}

	for r := o.rounds.MinRound(); r <= expireRound; r++ {
		if o.rounds.Round(r) != nil {
			o.rounds.Remove(r)
		}
		o.hashes.Delete(r)
	}
}

// GetWitnessHashes returns the three-round witness hash export for
// round, if it has been committed. A cache miss on a round old enough
// to have been evicted but not yet garbage collected falls back to
// recomputing it directly from the round's judges.
func (o *Engine) GetWitnessHashes(round int64) (WitnessHashes, bool) {
	if h, ok := o.hashes.Get(round); ok {
		return h, true
	}
	r := o.rounds.Round(round)
	if r == nil || !r.FameDecided {
		return WitnessHashes{}, false
	}
	judges := sortedJudges(r)
	h := collectWitnessHashes(o.rounds, r, judges)
	o.hashes.Put(round, h)
	return h, true
}

func sortedJudges(round *roundindex.RoundInfo) []*event.Event {
	out := make([]*event.Event, 0, len(round.Judges))
	for _, j := range round.Judges {
		out = append(out, j)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hashed.Creator < out[j].Hashed.Creator })
	return out
}

// checkWitnessInvariant panics with a diagnostic if a round's own
// witness is older than min-generation-consensus yet never reached
// consensus or staleness. Witnesses are the only events this engine
// can check without an extra full-store walk, since every ancestor it
// actually visits is resolved to one state or the other by
// construction.
func checkWitnessInvariant(round *roundindex.RoundInfo, minGenConsensus int64) {
	for _, w := range round.Witnesses {
		if w.Generation < minGenConsensus && w.ConsensusOrder == event.NewConsensusOrderUnset && !w.Stale {
			errs.Fatal("witness older than min-generation-consensus is neither consensus nor stale", errs.Diagnostic{
				Creator:      uint32(w.Hashed.Creator),
				Sequence:     w.Sequence,
				RoundCreated: w.RoundCreated,
				Generation:   w.Generation,
				MinRound:     round.Round,
			})
		}
	}
}
