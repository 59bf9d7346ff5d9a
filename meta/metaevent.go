// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

// Event is the election-side shadow of one gossip event: what the event's
// creator can derive, purely from graph shape, at the moment the event
// was created.
type Event struct {
	// Observees are the voters whose interesting events the gossip event
	// strongly sees.
	Observees set.Set[ids.NodeID]

	// InterestingContent is the observation keys this event newly
	// nominates, in deterministic order. Non-empty only for interesting
	// events.
	InterestingContent []ids.ID

	// Votes holds one binary-agreement column per candidate voter. Only
	// observer events and their descendants carry votes.
	Votes map[ids.NodeID][]MetaVote
}

// NewEvent creates an empty meta-event shadow.
func NewEvent() *Event {
	return &Event{
		Observees: make(set.Set[ids.NodeID]),
	}
}

// IsObserver reports whether the shadowed event started voting: it
// strongly sees interesting events from a quorum of voters.
func (e *Event) IsObserver() bool {
	return len(e.Votes) > 0
}

// Column returns the event's binary-agreement column for the candidate
// nominated by the given voter.
func (e *Event) Column(candidate ids.NodeID) ([]MetaVote, bool) {
	column, ok := e.Votes[candidate]
	return column, ok
}
