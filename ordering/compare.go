// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package ordering

import (
	"bytes"

	"github.com/hashgraph/consensus-core/errs"
	"github.com/hashgraph/consensus-core/event"
)

// medianTimestamp is the consensus timestamp: the median of the
// sorted rec-times, taking the later of the two middle values when
// the count is even.
func medianTimestamp(sorted []int64) int64 {
	return sorted[len(sorted)/2]
}

// less implements the four-key total order: primary key consensus
// timestamp; on a tie, an extended scan outward from the median
// comparing successive rec-time pairs; on a further tie, generation;
// and, as the final tie-break, the XOR of the event's signature with
// the round's whitening vector, compared lexicographically.
func less(a *event.Event, aTime int64, aTimes []int64, b *event.Event, bTime int64, bTimes []int64, whitening []byte) bool {
	if aTime != bTime {
		return aTime < bTime
	}

	if c := compareExtendedMedian(a, aTimes, b, bTimes); c != 0 {
		return c < 0
	}

	if a.Generation != b.Generation {
		return a.Generation < b.Generation
	}

	return bytes.Compare(whitenedSignature(a, whitening), whitenedSignature(b, whitening)) < 0
}

// compareExtendedMedian walks outward from the shared median index of
// two equally-timestamped events, comparing the next pair of rec-times
// not yet examined, and returns as soon as a pair differs. Ties that
// survive this scan fall through to generation.
//
// When aTimes and bTimes come from committed judge sets of different
// sizes they were never eligible to share a median tie in the first
// place, and the comparison legitimately falls through to generation.
// But when the sizes match and a and b share the same consensus
// timestamp, the scan is guaranteed to find a diverging rec-time
// pair before exhausting both slices; reaching the end of the scan
// without resolving the tie means the round's rec-time bookkeeping is
// corrupt, not that the two events are interchangeable.
func compareExtendedMedian(a *event.Event, aTimes []int64, b *event.Event, bTimes []int64) int {
	mid := len(aTimes) / 2
	if len(bTimes)/2 != mid {
		return 0
	}

	for offset := 0; ; offset++ {
		lo, hi := mid-offset, mid+offset
		found := false
		if lo >= 0 && lo < len(aTimes) && lo < len(bTimes) {
			found = true
			if aTimes[lo] != bTimes[lo] {
				if aTimes[lo] < bTimes[lo] {
					return -1
				}
				return 1
			}
		}
		if hi != lo && hi >= 0 && hi < len(aTimes) && hi < len(bTimes) {
			found = true
			if aTimes[hi] != bTimes[hi] {
				if aTimes[hi] < bTimes[hi] {
					return -1
				}
				return 1
			}
		}
		if !found {
			minRound, maxRound := a.RoundCreated, b.RoundCreated
			if minRound > maxRound {
				minRound, maxRound = maxRound, minRound
			}
			errs.Fatal("extended-median scan exhausted without resolving a consensus-timestamp tie", errs.Diagnostic{
				Creator:      uint32(a.Hashed.Creator),
				Sequence:     a.Sequence,
				RoundCreated: a.RoundCreated,
				Generation:   a.Generation,
				MinRound:     minRound,
				MaxRound:     maxRound,
			})
		}
	}
}

// whitenedSignature XORs e's signature with the round's whitening
// vector, truncated to the shorter of the two lengths.
func whitenedSignature(e *event.Event, whitening []byte) []byte {
	sig := e.Unhashed.Signature
	n := len(whitening)
	if len(sig) < n {
		n = len(sig)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = sig[i] ^ whitening[i]
	}
	return out
}
