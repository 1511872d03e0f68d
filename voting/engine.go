// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package voting

import (
	"github.com/hashgraph/consensus-core/config"
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/metrics"
	"github.com/hashgraph/consensus-core/roundindex"
	"github.com/hashgraph/consensus-core/utils/bag"
)

// Engine drives round-created assignment, witness detection and vote
// casting for one newly-inserted event at a time. It holds no event
// storage of its own; it operates on the shared roundindex.Index and
// member.Table the hashgraph.Core wires in.
type Engine struct {
	table   *member.Table
	rounds  *roundindex.Index
	cfg     config.Config
	metrics *metrics.Metrics
}

// New creates a voting Engine over the given member table, round
// index and configuration.
func New(table *member.Table, rounds *roundindex.Index, cfg config.Config, m *metrics.Metrics) *Engine {
	return &Engine{table: table, rounds: rounds, cfg: cfg, metrics: m}
}

// DecidedRound is returned from OnInserted whenever an insert pushes
// some round's fame decision to completion.
type DecidedRound struct {
	Round int64
}

// OnInserted runs the full per-insert sequence: set round-created,
// detect witness status and propagate, cast votes in every open
// election of the event's round. It returns every round whose fame
// decision completed as a direct result of processing x, in the order
// the decisions were reached, which is not necessarily ascending;
// ordering.Engine.AdvanceAndCommit commits rounds in ascending order.
func (e *Engine) OnInserted(x *event.Event) []DecidedRound {
	e.computeRoundCreated(x)
	x.Witness = x.IsWitness()

	var decided []DecidedRound

	if !x.Witness {
		return decided
	}

	rc := x.RoundCreated
	round := e.rounds.GetOrCreate(rc)
	e.rounds.RecordWitness(round, x)
	if e.metrics != nil {
		e.metrics.WitnessesDetected.Inc()
	}

	if x.FameDecided {
		// Late-witness rule already resolved it inside RecordWitness.
		return decided
	}

	if e.rounds.Round(rc+2) != nil {
		// Theorem: no round-(p+2) event can strongly see a witness
		// whose round-(p+2) already exists without it, so it cannot
		// become famous through the normal election path.
		if e.decide(round, x, false, &decided) {
			return decided
		}
		return decided
	}

	if next := e.rounds.Round(rc + 1); next != nil {
		e.rounds.CreateElection(next, x)
	}

	return append(decided, e.castVotes(x)...)
}

// computeRoundCreated assigns x.RoundCreated: the shared round of its
// parents, advanced by one when x strongly sees a supermajority of
// that round's witnesses.
func (e *Engine) computeRoundCreated(x *event.Event) {
	if x.SelfParent == nil && x.OtherParent == nil {
		x.RoundCreated = 1
		return
	}

	selfR := event.NoRound
	if x.SelfParent != nil {
		selfR = x.SelfParent.RoundCreated
	}
	otherR := event.NoRound
	if x.OtherParent != nil {
		otherR = x.OtherParent.RoundCreated
	}

	if selfR != otherR {
		if selfR > otherR {
			x.RoundCreated = selfR
		} else {
			x.RoundCreated = otherR
		}
		return
	}

	if selfR == event.NoRound {
		x.RoundCreated = event.NoRound
		return
	}

	p := selfR
	round := e.rounds.Round(p)
	var yes uint64
	for m := 0; m < e.table.N(); m++ {
		if stronglySeeParent(x, event.Member(m), p, round, e.table) != nil {
			yes += e.table.Stake(event.Member(m))
		}
	}
	if e.table.IsSupermajority(yes) {
		x.RoundCreated = p + 1
	} else {
		x.RoundCreated = p
	}
}

// castVotes casts x's vote, as a witness, in every open election of
// x's own round, returning any rounds whose fame decision completes
// as a result.
func (e *Engine) castVotes(x *event.Event) []DecidedRound {
	round := e.rounds.Round(x.RoundCreated)
	var decided []DecidedRound

	// Snapshot before iterating: a decision inside the loop can
	// remove elections from round's list.
	for _, el := range round.OpenElections() {
		outcome, isDecision := e.vote(el, x)
		el.Votes[x.WitnessIndex()] = outcome
		if !isDecision {
			continue
		}
		targetRound := e.rounds.Round(el.Target.RoundCreated)
		if e.decide(targetRound, el.Target, outcome, &decided) {
			e.rounds.RemoveElection(round, el)
			el.Decided = true
			el.Outcome = outcome
		}
	}
	return decided
}

// decide applies set-famous for target and, when that completes the
// round's fame, records it in decided. Returns whether the round's
// fame completed.
func (e *Engine) decide(round *roundindex.RoundInfo, target *event.Event, famous bool, decided *[]DecidedRound) bool {
	roundDone := e.rounds.SetFamous(round, target, famous)
	if e.metrics != nil {
		if famous {
			e.metrics.ElectionsFamous.Inc()
		} else {
			e.metrics.ElectionsNotFamous.Inc()
		}
	}
	if roundDone {
		*decided = append(*decided, DecidedRound{Round: round.Round})
	}
	return roundDone
}

// vote computes the vote x (a witness of el.RoundOfElection) casts in
// el, and whether that vote constitutes a decision.
func (e *Engine) vote(el *roundindex.Election, x *event.Event) (outcome bool, decided bool) {
	t := el.Target

	if el.Age == 1 {
		fs := firstSee(x, t.Hashed.Creator, e.table)
		cur := fs
		for cur != nil && cur.RoundCreated > t.RoundCreated {
			cur = cur.SelfParent
		}
		outcome = cur != nil && cur.Hash() == t.Hash()
		return outcome, false
	}

	prevEl := el.PrevForTarget()
	prevRound := e.rounds.Round(el.RoundOfElection - 1)

	tally := bag.New[bool]()
	for _, w := range prevRound.Witnesses {
		if !stronglySees(x, w, e.table) {
			continue
		}
		tally.AddWeight(prevEl.VoteOf(w), e.table.Stake(w.Hashed.Creator))
	}
	yesStake, noStake := tally.Count(true), tally.Count(false)

	isCoin := uint64(el.Age)%e.cfg.CoinFreq == 0
	if isCoin {
		if e.metrics != nil {
			e.metrics.CoinRoundsStruck.Inc()
		}
		switch {
		case e.table.IsSupermajority(yesStake):
			outcome = true
		case e.table.IsSupermajority(noStake):
			outcome = false
		default:
			coinRoundOrdinal := uint64(el.Age) / e.cfg.CoinFreq
			if coinRoundOrdinal%2 == 1 {
				outcome = true
			} else {
				outcome = signatureParityBit(x)
			}
		}
		return outcome, false
	}

	outcome = yesStake > noStake
	winning := yesStake
	if !outcome {
		winning = noStake
	}
	return outcome, e.table.IsSupermajority(winning)
}

// signatureParityBit extracts the deterministic coin-round bit from
// x's own signature: the LSB of the byte at index len/2.
func signatureParityBit(x *event.Event) bool {
	sig := x.Unhashed.Signature
	if len(sig) == 0 {
		return false
	}
	b := sig[len(sig)/2]
	return b&1 == 1
}
