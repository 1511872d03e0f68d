// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package member implements the stake-weighted member table. The
// member set and stake vector are fixed for the window this core
// covers; there is no dynamic membership here, mirroring how the
// teacher's validators package separates static weight lookups from
// set-membership churn.
package member

import (
	"fmt"

	"github.com/luxfi/crypto/bls"

	"github.com/hashgraph/consensus-core/event"
)

// Table is an ordered, fixed stake-weight table over members
// 0..N-1, with an optional parallel BLS public key per member used to
// authenticate the hashed content of incoming events against their
// unhashed signature.
type Table struct {
	stakes  []uint64
	total   uint64
	pubKeys []*bls.PublicKey
}

// New builds a Table from a stake vector ordered by member id, with
// signature verification disabled: VerifySignature always passes.
// Stakes must be non-negative; the caller is expected to have
// validated this during config loading.
func New(stakes []uint64) (*Table, error) {
	return newTable(stakes, nil)
}

// NewWithKeys builds a Table whose members carry BLS public keys,
// enabling VerifySignature to authenticate event signatures against
// their claimed creator. pubKeys must be the same length as stakes;
// pass nil for a member who has not published a key yet, which
// VerifySignature treats as always-invalid.
func NewWithKeys(stakes []uint64, pubKeys []*bls.PublicKey) (*Table, error) {
	if len(pubKeys) != len(stakes) {
		return nil, fmt.Errorf("member: pubKeys length (%d) must match stakes length (%d)", len(pubKeys), len(stakes))
	}
	return newTable(stakes, pubKeys)
}

func newTable(stakes []uint64, pubKeys []*bls.PublicKey) (*Table, error) {
	if len(stakes) == 0 {
		return nil, fmt.Errorf("member: table must have at least one member")
	}
	var total uint64
	for _, s := range stakes {
		total += s
	}
	if total == 0 {
		return nil, fmt.Errorf("member: total stake must be positive")
	}
	t := &Table{
		stakes:  append([]uint64(nil), stakes...),
		total:   total,
		pubKeys: append([]*bls.PublicKey(nil), pubKeys...),
	}
	return t, nil
}

// VerifySignature reports whether sig is a valid BLS signature by
// creator over msg. A Table built without keys (via New) always
// passes, deferring signature authentication to whatever layer above
// this core distributes keys: gossip and transport are someone else's
// problem.
func (t *Table) VerifySignature(creator event.Member, msg, sig []byte) bool {
	if t.pubKeys == nil {
		return true
	}
	if int(creator) >= len(t.pubKeys) || t.pubKeys[creator] == nil {
		return false
	}
	parsed, err := bls.SignatureFromBytes(sig)
	if err != nil {
		return false
	}
	return bls.Verify(t.pubKeys[creator], parsed, msg)
}

// N returns the number of members.
func (t *Table) N() int { return len(t.stakes) }

// Stake returns the stake weight of member m.
func (t *Table) Stake(m event.Member) uint64 {
	return t.stakes[m]
}

// TotalStake returns the sum of all member stakes.
func (t *Table) TotalStake() uint64 { return t.total }

// IsSupermajority reports whether yes is a strict supermajority of
// the table's total stake: 2*yes > total. Exactly 2*yes == total is
// NOT a supermajority.
func (t *Table) IsSupermajority(yes uint64) bool {
	return 2*yes > t.total
}

// Valid reports whether m is a legal member index for this table.
func (t *Table) Valid(m event.Member) bool {
	return int(m) < len(t.stakes)
}
