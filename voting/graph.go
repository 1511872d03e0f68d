// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package voting implements the virtual voting engine: the memoized
// graph helper functions, round-created assignment, witness
// detection, and vote casting.
package voting

import (
	"github.com/hashgraph/consensus-core/event"
	"github.com/hashgraph/consensus-core/member"
	"github.com/hashgraph/consensus-core/roundindex"
)

// parentRound is max(round(self-parent), round(other-parent));
// event.NoRound (-1) for a missing parent, not memoized.
func parentRound(x *event.Event) int64 {
	selfR := event.NoRound
	if x.SelfParent != nil {
		selfR = x.SelfParent.RoundCreated
	}
	otherR := event.NoRound
	if x.OtherParent != nil {
		otherR = x.OtherParent.RoundCreated
	}
	if selfR > otherR {
		return selfR
	}
	return otherR
}

// fillLastSee populates x's last-see cache for every member in one
// pass, recursing into parents first if they are not already filled:
// an index-keyed cache filled once, for all members simultaneously.
func fillLastSee(x *event.Event, table *member.Table) {
	if x.LastSeeFilled() {
		return
	}
	if x.SelfParent != nil {
		fillLastSee(x.SelfParent, table)
	}
	if x.OtherParent != nil {
		fillLastSee(x.OtherParent, table)
	}

	n := table.N()
	cache := x.LastSee(n)
	var selfCache, otherCache []*event.Event
	if x.SelfParent != nil {
		selfCache = x.SelfParent.LastSee(n)
	}
	if x.OtherParent != nil {
		otherCache = x.OtherParent.LastSee(n)
	}

	for m := 0; m < n; m++ {
		if int(x.Hashed.Creator) == m {
			cache[m] = x
			continue
		}
		var a, b *event.Event
		if selfCache != nil {
			a = selfCache[m]
		}
		if otherCache != nil {
			b = otherCache[m]
		}
		cache[m] = pickLastSee(x, event.Member(m), a, b, table)
	}
	x.SetLastSeeFilled()
}

// pickLastSee resolves the last-see(self-parent, m) vs
// last-see(other-parent, m) tie: prefer the greater round, and on
// equal round prefer the greater generation when both candidates
// share the same first-see for m. When rounds are equal and the
// first-see values differ, generation is used as the deterministic
// fallback.
func pickLastSee(owner *event.Event, m event.Member, a, b *event.Event, table *member.Table) *event.Event {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.RoundCreated != b.RoundCreated {
		if a.RoundCreated > b.RoundCreated {
			return a
		}
		return b
	}
	if a.Generation >= b.Generation {
		return a
	}
	return b
}

// firstSelfWitness is the earliest self-ancestor of x in the same
// round as x, memoized.
func firstSelfWitness(x *event.Event) *event.Event {
	if w, ok := x.FirstSelfWitness(); ok {
		return w
	}
	var result *event.Event
	if x.SelfParent == nil || x.SelfParent.RoundCreated != x.RoundCreated {
		result = x
	} else {
		result = firstSelfWitness(x.SelfParent)
	}
	x.SetFirstSelfWitness(result)
	return result
}

// firstWitness is the earliest ancestor of x (self or other path) that
// is a witness in the same round as x, memoized. "Earliest" is the
// lowest-generation witness reachable without leaving x's round; x
// itself is a candidate only when it is a witness.
func firstWitness(x *event.Event) *event.Event {
	if w, ok := x.FirstWitness(); ok {
		return w
	}

	var best *event.Event
	consider := func(c *event.Event) {
		if c == nil {
			return
		}
		if best == nil || c.Generation < best.Generation {
			best = c
		}
	}

	if x.Witness {
		consider(x)
	}
	if x.SelfParent != nil && x.SelfParent.RoundCreated == x.RoundCreated {
		consider(firstWitness(x.SelfParent))
	}
	if x.OtherParent != nil && x.OtherParent.RoundCreated == x.RoundCreated {
		consider(firstWitness(x.OtherParent))
	}

	x.SetFirstWitness(best)
	return best
}

// firstSee(x, m) = first-self-witness(last-see(x, m)).
func firstSee(x *event.Event, m event.Member, table *member.Table) *event.Event {
	fillLastSee(x, table)
	last := x.LastSee(table.N())[m]
	if last == nil {
		return nil
	}
	return firstSelfWitness(last)
}

// isDescendant reports whether w is an ancestor of e (inclusive),
// using the fact that every creator's events form a single
// self-parent chain: w is an ancestor of e iff e's last-seen event by
// w's creator has sequence >= w's sequence.
func isDescendant(e, w *event.Event, table *member.Table) bool {
	fillLastSee(e, table)
	rel := e.LastSee(table.N())[w.Hashed.Creator]
	return rel != nil && rel.Sequence >= w.Sequence
}

// stronglySees reports whether x strongly sees w: the creators of
// intermediates by which x reaches w hold a supermajority of total
// stake. A member m is such an intermediate iff last-see(x, m) is a
// descendant of w.
func stronglySees(x, w *event.Event, table *member.Table) bool {
	fillLastSee(x, table)
	cache := x.LastSee(table.N())
	var yes uint64
	for m := 0; m < table.N(); m++ {
		rel := cache[m]
		if rel != nil && isDescendant(rel, w, table) {
			yes += table.Stake(event.Member(m))
		}
	}
	return table.IsSupermajority(yes)
}

// witnessOf returns round's witness created by m, resolving a fork by
// the same lexicographic-hash rule used for judge selection. Returns
// nil if m produced no witness in round.
func witnessOf(round *roundindex.RoundInfo, m event.Member) *event.Event {
	var best *event.Event
	for _, w := range round.Witnesses {
		if w.Hashed.Creator != m {
			continue
		}
		if best == nil || lessHash(w, best) {
			best = w
		}
	}
	return best
}

func lessHash(a, b *event.Event) bool {
	return a.Hash().Compare(b.Hash()) < 0
}

// stronglySeeParent is a witness by m in parent-round(x) that x
// strongly sees, memoized.
func stronglySeeParent(x *event.Event, m event.Member, p int64, round *roundindex.RoundInfo, table *member.Table) *event.Event {
	cache := x.StrongSeeParent(table.N())
	if cache[m] != nil {
		return cache[m]
	}
	if round == nil {
		return nil
	}
	w := witnessOf(round, m)
	if w == nil || !stronglySees(x, w, table) {
		return nil
	}
	cache[m] = w
	return w
}
