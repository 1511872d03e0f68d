// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package eventstore

import "errors"

// Recoverable errors returned by Store.Insert. Callers may wrap these
// with fmt.Errorf("%w: ...") without losing errors.Is compatibility.
var (
	// ErrDuplicate is returned when (creator, sequence) already
	// exists in the store.
	ErrDuplicate = errors.New("eventstore: duplicate (creator, sequence)")

	// ErrInvalidAncestry is returned when self-parent.sequence !=
	// sequence-1.
	ErrInvalidAncestry = errors.New("eventstore: invalid self-parent ancestry")

	// ErrInvalidSignature is returned when an event's signature does
	// not verify against its claimed creator's public key.
	ErrInvalidSignature = errors.New("eventstore: invalid signature")
)
