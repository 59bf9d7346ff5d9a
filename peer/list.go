// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package peer

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
	"github.com/luxfi/utils"
)

var (
	// ErrUnknownPeer is returned when a peer is not in the registry.
	ErrUnknownPeer = errors.New("peer unknown to the registry")

	// ErrInvalidState is returned when a peer lacks a required capability.
	ErrInvalidState = errors.New("peer is in invalid state")
)

// Peer is a participant identity with its capability state.
type Peer struct {
	id    ids.NodeID
	state State
}

func (p *Peer) ID() ids.NodeID { return p.id }
func (p *Peer) State() State   { return p.state }

// List is the process-wide peer registry: ourselves plus every peer we
// know of, with their capability states.
type List struct {
	us    ids.NodeID
	peers map[ids.NodeID]*Peer
}

// NewList creates a registry containing only ourselves.
func NewList(us ids.NodeID, ourState State) *List {
	l := &List{
		us:    us,
		peers: make(map[ids.NodeID]*Peer),
	}
	l.peers[us] = &Peer{id: us, state: ourState}
	return l
}

// Us is our own identity.
func (l *List) Us() ids.NodeID { return l.us }

// OurState is our own capability state.
func (l *List) OurState() State { return l.peers[l.us].state }

func (l *List) Len() int { return len(l.peers) }

func (l *List) Get(id ids.NodeID) (*Peer, bool) {
	p, ok := l.peers[id]
	return p, ok
}

func (l *List) Contains(id ids.NodeID) bool {
	_, ok := l.peers[id]
	return ok
}

// Add registers a peer, or updates its state if already known.
func (l *List) Add(id ids.NodeID, state State) {
	if p, ok := l.peers[id]; ok {
		p.state = state
		return
	}
	l.peers[id] = &Peer{id: id, state: state}
}

// ChangeState updates a known peer's capability state.
func (l *List) ChangeState(id ids.NodeID, state State) error {
	p, ok := l.peers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, id)
	}
	p.state = state
	return nil
}

// Confirm checks that a known peer holds all the required capabilities.
func (l *List) Confirm(id ids.NodeID, required State) error {
	p, ok := l.peers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, id)
	}
	if !p.state.Contains(required) {
		return fmt.Errorf("%w: %s requires %s, has %s", ErrInvalidState, id, required, p.state)
	}
	return nil
}

// Voters returns the IDs of all voting peers in stable (sorted) order.
func (l *List) Voters() []ids.NodeID {
	voters := make([]ids.NodeID, 0, len(l.peers))
	for id, p := range l.peers {
		if p.state.CanVote() {
			voters = append(voters, id)
		}
	}
	utils.Sort(voters)
	return voters
}

// VoterSet returns the set of all voting peers.
func (l *List) VoterSet() set.Set[ids.NodeID] {
	voters := set.NewSet[ids.NodeID](len(l.peers))
	for id, p := range l.peers {
		if p.state.CanVote() {
			voters.Add(id)
		}
	}
	return voters
}

// GossipRecipients returns the peers we may send gossip to, in stable
// (sorted) order. We are never our own recipient.
func (l *List) GossipRecipients() []ids.NodeID {
	recipients := make([]ids.NodeID, 0, len(l.peers))
	for id, p := range l.peers {
		if id != l.us && p.state.CanSend() {
			recipients = append(recipients, id)
		}
	}
	utils.Sort(recipients)
	return recipients
}
