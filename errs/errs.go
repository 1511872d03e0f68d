// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package errs implements the core's error taxonomy: a fatal
// InvariantViolation panic type carrying a diagnostic, and the
// recoverable StateLoadFailure / TransientBookkeeping sentinels.
// Ordinary recoverable errors live next to the operations that raise
// them (eventstore.ErrDuplicate, eventstore.ErrInvalidAncestry)
// instead of in this taxonomy.
package errs

import (
	"errors"
	"fmt"
)

// ErrStateLoadFailure is returned when a bootstrap snapshot is
// internally inconsistent. The core refuses to initialize; the caller
// decides whether to abort.
var ErrStateLoadFailure = errors.New("hashgraph: state load failure")

// ErrTransientBookkeeping marks a brief race a reader should retry a
// small bounded number of times.
var ErrTransientBookkeeping = errors.New("hashgraph: transient bookkeeping race")

// Diagnostic is attached to every InvariantViolation so a process
// supervisor can log it before the core terminates.
type Diagnostic struct {
	Creator      uint32
	Sequence     uint64
	RoundCreated int64
	Generation   int64
	MinRound     int64
	MaxRound     int64
}

func (d Diagnostic) String() string {
	return fmt.Sprintf(
		"creator=%d sequence=%d round-created=%d generation=%d min-round=%d max-round=%d",
		d.Creator, d.Sequence, d.RoundCreated, d.Generation, d.MinRound, d.MaxRound,
	)
}

// InvariantViolation is the fatal error taxon: missing round
// metadata, inconsistent election links, negative vote counts, or an
// ancestor older than min-round yet neither consensus nor stale. The
// core does not retry on this condition; it panics, carrying the
// diagnostic for the caller to recover via errors.As.
type InvariantViolation struct {
	Msg        string
	Diagnostic Diagnostic
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("hashgraph: invariant violation: %s (%s)", e.Msg, e.Diagnostic)
}

// Fatal panics with an *InvariantViolation carrying d. Call sites pass
// the msg describing which invariant broke.
func Fatal(msg string, d Diagnostic) {
	panic(&InvariantViolation{Msg: msg, Diagnostic: d})
}
