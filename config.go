// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"errors"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
)

// Configuration errors
var (
	ErrNoSelfID           = errors.New("config needs our own node ID")
	ErrInvalidCacheSize   = errors.New("sight cache size must be positive")
	ErrInvalidAlarmQuorum = errors.New("round alarm threshold must be positive")
)

// Config carries everything the engine needs besides the voter group.
type Config struct {
	// Us is our own identity.
	Us ids.NodeID

	// Log receives structured engine logging. Defaults to a no-op logger.
	Log log.Logger

	// Registerer receives the engine's metrics. Defaults to a fresh
	// registry.
	Registerer metric.Registerer

	// DB, when set, receives an append-only archive of every event the
	// engine inserts, in insertion order, so a restarted engine can be
	// rebuilt with ReplayArchive.
	DB database.Database

	// SightCacheSize bounds the strong-seeing memoization cache.
	SightCacheSize int

	// RoundAlarmThreshold is the binary-agreement round at which the
	// engine starts flagging prolonged non-decision in logs and metrics.
	// Purely observational; the election is never aborted.
	RoundAlarmThreshold uint64
}

// Validate checks Config invariants.
func (c Config) Validate() error {
	if c.Us == ids.EmptyNodeID {
		return ErrNoSelfID
	}
	if c.SightCacheSize <= 0 {
		return ErrInvalidCacheSize
	}
	if c.RoundAlarmThreshold == 0 {
		return ErrInvalidAlarmQuorum
	}
	return nil
}

// DefaultConfig returns a production-ready configuration for the given
// node. The archive database stays unset.
func DefaultConfig(us ids.NodeID) Config {
	return Config{
		Us:                  us,
		Log:                 log.NewNoOpLogger(),
		Registerer:          metric.NewRegistry(),
		SightCacheSize:      16384,
		RoundAlarmThreshold: 64,
	}
}

// withDefaults fills the optional collaborators left unset.
func (c Config) withDefaults() Config {
	if c.Log == nil {
		c.Log = log.NewNoOpLogger()
	}
	if c.Registerer == nil {
		c.Registerer = metric.NewRegistry()
	}
	return c
}
