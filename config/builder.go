// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import "fmt"

// Builder provides a fluent, validating interface for constructing a
// Config, mirroring how the rest of the stack builds its parameter
// objects.
type Builder struct {
	cfg Config
	err error
}

// NewBuilder starts from the reference defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: Default()}
}

// NetworkType selects one of the preset configurations FromPreset
// loads.
type NetworkType string

const (
	MainnetNetwork NetworkType = "mainnet"
	TestnetNetwork NetworkType = "testnet"
	LocalNetwork   NetworkType = "local"
)

// Preset configurations tuned for each network's expected size and
// latency: mainnet favors safety margin (wider stale/expiry windows,
// a longer whitening vector), local favors fast iteration.
var (
	MainnetPreset = Config{
		CoinFreq:                   12,
		RoundsStale:                25,
		RoundsExpired:              26,
		MinTransTimestampIncrNanos: 1,
		WhiteningLength:            24,
	}

	TestnetPreset = Config{
		CoinFreq:                   10,
		RoundsStale:                15,
		RoundsExpired:              16,
		MinTransTimestampIncrNanos: 1,
		WhiteningLength:            16,
	}

	LocalPreset = Config{
		CoinFreq:                   3,
		RoundsStale:                4,
		RoundsExpired:              5,
		MinTransTimestampIncrNanos: 1,
		WhiteningLength:            8,
	}
)

// FromPreset replaces the builder's working configuration with one of
// the named network presets, discarding any overrides applied before
// the call. Subsequent With* calls still apply on top of the preset.
func (b *Builder) FromPreset(preset NetworkType) *Builder {
	if b.err != nil {
		return b
	}
	switch preset {
	case MainnetNetwork:
		b.cfg = MainnetPreset
	case TestnetNetwork:
		b.cfg = TestnetPreset
	case LocalNetwork:
		b.cfg = LocalPreset
	default:
		b.err = errInvalid(fmt.Sprintf("unknown network preset %q", preset))
	}
	return b
}

// WithCoinFreq overrides the coin-round spacing.
func (b *Builder) WithCoinFreq(freq uint64) *Builder {
	if b.err != nil {
		return b
	}
	if freq == 0 {
		b.err = errInvalid("coinFreq must be positive")
		return b
	}
	b.cfg.CoinFreq = freq
	return b
}

// WithExpiry overrides the stale/expired round windows.
func (b *Builder) WithExpiry(roundsStale, roundsExpired uint64) *Builder {
	if b.err != nil {
		return b
	}
	if roundsExpired < roundsStale {
		b.err = errInvalid("roundsExpired must be >= roundsStale")
		return b
	}
	b.cfg.RoundsStale = roundsStale
	b.cfg.RoundsExpired = roundsExpired
	return b
}

// WithWhiteningLength overrides the whitening byte length.
func (b *Builder) WithWhiteningLength(n int) *Builder {
	if b.err != nil {
		return b
	}
	if n <= 0 {
		b.err = errInvalid("whiteningLength must be positive")
		return b
	}
	b.cfg.WhiteningLength = n
	return b
}

// Build validates and returns the assembled Config.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	if err := b.cfg.Validate(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}

func errInvalid(msg string) error {
	return &buildError{msg: msg}
}

type buildError struct{ msg string }

func (e *buildError) Error() string { return "config: " + e.msg }
