// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import "errors"

var (
	// ErrOrphanParent is returned when an event names a parent that is not
	// in the graph.
	ErrOrphanParent = errors.New("event parent unknown to the graph")

	// ErrDuplicateSequence is returned when a different event already
	// occupies the same (creator, sequence) slot.
	ErrDuplicateSequence = errors.New("conflicting event for creator and sequence number")

	// ErrCyclicReference is returned when an event references itself or an
	// event that could only be its descendant.
	ErrCyclicReference = errors.New("event reference would create a cycle")

	// ErrInvalidEvent is returned when an event's cause and parents don't
	// line up.
	ErrInvalidEvent = errors.New("event is malformed")
)
