// Copyright (C) 2025, Hashgraph Consensus Contributors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log re-exports the logger interface the core is built
// against, keeping the heavy logging dependency isolated to this one
// package the way the rest of the core imports it.
package log

import (
	"github.com/luxfi/log"
)

// Logger is the structured logger interface every core component
// accepts at construction time. Never passed via context.Context.
type Logger = log.Logger

// NewNoOp returns a logger that discards everything, used by default
// in tests and by callers that have not wired a real sink.
func NewNoOp() Logger {
	return log.NewNoOpLogger()
}
