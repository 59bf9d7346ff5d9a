// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package peer

import "strings"

// State is a bitmask of a peer's capabilities.
type State uint8

const (
	// StateVote lets the peer's events take part in voting.
	StateVote State = 1 << iota
	// StateSend lets us send gossip to the peer.
	StateSend
	// StateRecv lets us accept gossip from the peer.
	StateRecv

	// StateInactive is a peer we know of but don't interact with.
	StateInactive State = 0
	// StateActive is a fully participating peer.
	StateActive = StateVote | StateSend | StateRecv
)

func (s State) CanVote() bool { return s&StateVote != 0 }
func (s State) CanSend() bool { return s&StateSend != 0 }
func (s State) CanRecv() bool { return s&StateRecv != 0 }

// Contains reports whether every capability in o is present in s.
func (s State) Contains(o State) bool { return s&o == o }

func (s State) String() string {
	if s == StateInactive {
		return "inactive"
	}
	parts := make([]string, 0, 3)
	if s.CanVote() {
		parts = append(parts, "vote")
	}
	if s.CanSend() {
		parts = append(parts, "send")
	}
	if s.CanRecv() {
		parts = append(parts, "recv")
	}
	return strings.Join(parts, "|")
}
