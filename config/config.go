// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the tunable parameters of the consensus core.
package config

import "fmt"

// Config holds all consensus core parameters. All fields are
// positive unless noted; Validate checks this, and Builder.Build calls
// it.
type Config struct {
	// CoinFreq is the spacing of coin rounds: in an election whose age
	// is a multiple of CoinFreq, a voter follows a supermajority it
	// strongly sees; without one, successive coin rounds alternate
	// between voting TRUE and voting a bit taken from the voter's own
	// signature. A coin round never decides.
	CoinFreq uint64 `json:"coinFreq"`

	// RoundsStale is the window, in rounds, after which a
	// non-consensus event becomes stale and is excluded from
	// consensus permanently.
	RoundsStale uint64 `json:"roundsStale"`

	// RoundsExpired is the window, in rounds, after which a round's
	// events are garbage collected. Must be >= RoundsStale.
	RoundsExpired uint64 `json:"roundsExpired"`

	// MinTransTimestampIncrNanos is the minimum nanosecond spacing (Δ)
	// assumed between consecutive transactions within one event when
	// deriving that event's last-transaction-time for watermark
	// advancement.
	MinTransTimestampIncrNanos int64 `json:"minTransTimestampIncrNanos"`

	// WhiteningLength is the number of leading signature bytes XORed
	// together to produce a round's whitening vector.
	WhiteningLength int `json:"whiteningLength"`
}

// Validate reports whether c is internally consistent.
func (c Config) Validate() error {
	if c.CoinFreq == 0 {
		return fmt.Errorf("config: coinFreq must be positive")
	}
	if c.RoundsStale == 0 {
		return fmt.Errorf("config: roundsStale must be positive")
	}
	if c.RoundsExpired < c.RoundsStale {
		return fmt.Errorf("config: roundsExpired (%d) must be >= roundsStale (%d)", c.RoundsExpired, c.RoundsStale)
	}
	if c.MinTransTimestampIncrNanos <= 0 {
		return fmt.Errorf("config: minTransTimestampIncrNanos must be positive")
	}
	if c.WhiteningLength <= 0 {
		return fmt.Errorf("config: whiteningLength must be positive")
	}
	return nil
}

// Default returns the reference-implementation defaults.
func Default() Config {
	return Config{
		CoinFreq:                   12,
		RoundsStale:                25,
		RoundsExpired:              26,
		MinTransTimestampIncrNanos: 1,
		WhiteningLength:            24,
	}
}

// TestConfig is a small-window configuration used by unit tests so
// staleness/expiry scenarios don't require thousands of rounds.
var TestConfig = Config{
	CoinFreq:                   3,
	RoundsStale:                4,
	RoundsExpired:              5,
	MinTransTimestampIncrNanos: 1,
	WhiteningLength:            8,
}
