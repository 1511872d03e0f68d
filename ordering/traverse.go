// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package ordering

import "github.com/hashgraph/consensus-core/event"

// frame is one entry of the explicit ancestor-traversal stack.
// receiverTime is the creation timestamp of the nearest ancestor of
// this judge (by its own creator) through which the node was reached:
// the approximation of "when the judge's creator first saw this
// event," its rec-time.
type frame struct {
	e            *event.Event
	receiverTime int64
}

// traverseFromJudge walks every ancestor of judge reachable without
// crossing an already-consensus or already-stale event, using an
// explicit stack rather than recursion because ancestor depth can
// exceed any goroutine's default stack. Self-parent is pushed after
// other-parent so it pops first, walking a creator's own chain before
// branching.
//
// Every visited event not yet consensus accumulates one rec-time per
// judge traversal that reaches it; once generation falls below
// minGenConsensus it is staled instead and excluded from further
// rec-time accumulation. Every visited event is frozen: its ancestry
// must not change shape once a commit has examined it.
func (o *Engine) traverseFromJudge(judge *event.Event, stamp uint64, minGenConsensus int64, recTimes map[*event.Event][]int64, staled *[]*event.Event) {
	stack := []frame{{e: judge, receiverTime: judge.Hashed.TimestampCreated}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e := top.e
		if e == nil || e.VisitedAt(stamp) {
			continue
		}
		e.SetTraversalStamp(stamp)

		receiverTime := top.receiverTime
		if e.Hashed.Creator == judge.Hashed.Creator {
			receiverTime = e.Hashed.TimestampCreated
		}

		if e.ConsensusOrder == event.NewConsensusOrderUnset {
			if e.Generation < minGenConsensus {
				if !e.Stale {
					*staled = append(*staled, e)
				}
			} else if !e.Stale {
				recTimes[e] = append(recTimes[e], receiverTime)
			}
		}
		e.Frozen = true

		if e.ConsensusOrder != event.NewConsensusOrderUnset || e.Stale {
			continue
		}

		if e.OtherParent != nil {
			stack = append(stack, frame{e: e.OtherParent, receiverTime: receiverTime})
		}
		if e.SelfParent != nil {
			stack = append(stack, frame{e: e.SelfParent, receiverTime: receiverTime})
		}
	}
}
