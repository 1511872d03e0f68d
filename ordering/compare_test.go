// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package ordering

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashgraph/consensus-core/event"
)

func TestMedianTimestampOddTakesMiddle(t *testing.T) {
	require.Equal(t, int64(30), medianTimestamp([]int64{10, 20, 30, 40, 50}))
}

func TestMedianTimestampEvenTakesLaterMiddle(t *testing.T) {
	require.Equal(t, int64(30), medianTimestamp([]int64{10, 20, 30, 40}))
}

func TestLessOrdersByConsensusTimestampFirst(t *testing.T) {
	a, b := &event.Event{}, &event.Event{}
	require.True(t, less(a, 100, nil, b, 200, nil, nil))
	require.False(t, less(a, 200, nil, b, 100, nil, nil))
}

func TestLessFallsBackToGenerationOnMedianTie(t *testing.T) {
	a := &event.Event{Generation: 1}
	b := &event.Event{Generation: 2}
	times := []int64{5, 5, 5}
	require.True(t, less(a, 100, times, b, 100, times, nil))
	require.False(t, less(b, 100, times, a, 100, times, nil))
}

func TestLessFallsBackToWhitenedSignatureOnFullTie(t *testing.T) {
	a := &event.Event{Generation: 3}
	b := &event.Event{Generation: 3}
	a.Unhashed.Signature = []byte{0x01, 0x00}
	b.Unhashed.Signature = []byte{0x02, 0x00}
	whitening := []byte{0xff, 0xff}
	// whitened(a) = 0xfe,0xff ; whitened(b) = 0xfd,0xff -> b < a
	require.True(t, less(b, 100, nil, a, 100, nil, whitening))
	require.False(t, less(a, 100, nil, b, 100, nil, whitening))
}

func TestCompareExtendedMedianWalksOutwardFromMiddle(t *testing.T) {
	// Shared median index 2; entries differ only two steps out.
	a := &event.Event{}
	b := &event.Event{}
	aTimes := []int64{1, 2, 3, 4, 5}
	bTimes := []int64{1, 2, 3, 4, 6}
	require.Equal(t, -1, compareExtendedMedian(a, aTimes, b, bTimes))
	require.Equal(t, 1, compareExtendedMedian(b, bTimes, a, aTimes))
}

func TestCompareExtendedMedianTreatsMismatchedJudgeCountsAsEqual(t *testing.T) {
	a := &event.Event{}
	b := &event.Event{}
	require.Equal(t, 0, compareExtendedMedian(a, []int64{1, 2, 3}, b, []int64{1, 2, 3, 4, 5}))
}

func TestCompareExtendedMedianFatalsOnExhaustedScan(t *testing.T) {
	a := &event.Event{Sequence: 1, RoundCreated: 4, Generation: 7}
	b := &event.Event{Sequence: 2, RoundCreated: 4, Generation: 8}
	aTimes := []int64{1, 2, 3}
	bTimes := []int64{1, 2, 3}
	require.Panics(t, func() { compareExtendedMedian(a, aTimes, b, bTimes) })
}

func TestWhitenedSignatureTruncatesToShorterLength(t *testing.T) {
	e := &event.Event{}
	e.Unhashed.Signature = []byte{0x0f}
	out := whitenedSignature(e, []byte{0xff, 0xff})
	require.Equal(t, []byte{0xf0}, out)
}
