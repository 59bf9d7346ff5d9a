// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

// Event is an immutable node in a peer's append-only gossip history. The
// ancestry cache (sequence number and last-ancestor vector) is computed
// once at construction and never changes.
type Event struct {
	id      ids.ID
	bytes   []byte
	creator ids.NodeID
	seq     uint64
	cause   Cause

	// payloadBytes is the canonical serialization of the observation an
	// observation event votes for. Nil for every other cause.
	payloadBytes []byte

	// lastAncestors maps a peer to the highest sequence number of that
	// peer's events causally known to this event. The entry for the
	// creator is this event's own sequence number. Absence means no event
	// by that peer is an ancestor.
	lastAncestors map[ids.NodeID]uint64
}

// NewInitialEvent creates the first event of the given peer's history.
func NewInitialEvent(g *Graph, creator ids.NodeID) (*Event, error) {
	return newEvent(g, creator, Cause{
		Type:        CauseInitial,
		SelfParent:  NoEvent,
		OtherParent: NoEvent,
	}, nil)
}

// NewObservationEvent creates an event recording the creator's vote for
// the payload with the given canonical serialization.
func NewObservationEvent(g *Graph, creator ids.NodeID, selfParent EventIndex, payloadBytes []byte) (*Event, error) {
	if len(payloadBytes) == 0 {
		return nil, fmt.Errorf("%w: observation event without payload", ErrInvalidEvent)
	}
	key := hash.ComputeHash256Array(payloadBytes)
	return newEvent(g, creator, Cause{
		Type:        CauseObservation,
		SelfParent:  selfParent,
		OtherParent: NoEvent,
		Payload:     key,
	}, payloadBytes)
}

// NewRequestEvent creates the sync event acknowledging a gossip request
// whose sender's latest event is otherParent.
func NewRequestEvent(g *Graph, creator ids.NodeID, selfParent, otherParent EventIndex) (*Event, error) {
	return newEvent(g, creator, Cause{
		Type:        CauseRequest,
		SelfParent:  selfParent,
		OtherParent: otherParent,
	}, nil)
}

// NewResponseEvent creates the sync event acknowledging a gossip response
// whose sender's latest event is otherParent.
func NewResponseEvent(g *Graph, creator ids.NodeID, selfParent, otherParent EventIndex) (*Event, error) {
	return newEvent(g, creator, Cause{
		Type:        CauseResponse,
		SelfParent:  selfParent,
		OtherParent: otherParent,
	}, nil)
}

// NewRequestingEvent creates an event recording that the creator sent a
// gossip request to the given peer.
func NewRequestingEvent(g *Graph, creator ids.NodeID, selfParent EventIndex, recipient ids.NodeID) (*Event, error) {
	return newEvent(g, creator, Cause{
		Type:        CauseRequesting,
		SelfParent:  selfParent,
		OtherParent: NoEvent,
		Recipient:   recipient,
	}, nil)
}

func newEvent(g *Graph, creator ids.NodeID, cause Cause, payloadBytes []byte) (*Event, error) {
	if err := cause.validateShape(); err != nil {
		return nil, err
	}
	packed, err := packCause(g, creator, cause, payloadBytes)
	if err != nil {
		return nil, err
	}
	b, err := Codec.Marshal(codecVersion, packed)
	if err != nil {
		return nil, fmt.Errorf("serializing event: %w", err)
	}
	e := &Event{
		id:           hash.ComputeHash256Array(b),
		bytes:        b,
		creator:      creator,
		cause:        cause,
		payloadBytes: payloadBytes,
	}
	if err := e.cacheAncestry(g); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Event) cacheAncestry(g *Graph) error {
	la := make(map[ids.NodeID]uint64, 1)
	if sp, ok := e.cause.selfParent(); ok {
		parent, found := g.Get(sp)
		if !found {
			return ErrOrphanParent
		}
		if parent.creator != e.creator {
			return fmt.Errorf("%w: self-parent by different creator", ErrInvalidEvent)
		}
		e.seq = parent.seq + 1
		for p, s := range parent.lastAncestors {
			la[p] = s
		}
	}
	if op, ok := e.cause.otherParent(); ok {
		parent, found := g.Get(op)
		if !found {
			return ErrOrphanParent
		}
		if parent.creator == e.creator {
			return fmt.Errorf("%w: other-parent by own creator", ErrInvalidEvent)
		}
		for p, s := range parent.lastAncestors {
			if known, ok := la[p]; !ok || s > known {
				la[p] = s
			}
		}
	}
	la[e.creator] = e.seq
	e.lastAncestors = la
	return nil
}

// ID is the hash of the event's serialized content.
func (e *Event) ID() ids.ID { return e.id }

// Bytes is the serialized wire form of the event.
func (e *Event) Bytes() []byte { return e.bytes }

// Creator is the peer that created this event.
func (e *Event) Creator() ids.NodeID { return e.creator }

// Seq is the event's position in its creator's history, starting at 0.
func (e *Event) Seq() uint64 { return e.seq }

// Cause reports why the event exists.
func (e *Event) Cause() Cause { return e.cause }

// SelfParent returns the index of the creator's previous event.
func (e *Event) SelfParent() (EventIndex, bool) { return e.cause.selfParent() }

// OtherParent returns the index of the acknowledged gossip partner event.
func (e *Event) OtherParent() (EventIndex, bool) { return e.cause.otherParent() }

// Payload returns the observation key this event votes for, if any.
func (e *Event) Payload() (ids.ID, bool) {
	return e.cause.Payload, e.cause.Type == CauseObservation
}

// PayloadBytes is the canonical serialization of the observation voted
// for. Nil unless the event's cause is CauseObservation.
func (e *Event) PayloadBytes() []byte { return e.payloadBytes }

func (e *Event) IsInitial() bool  { return e.cause.Type == CauseInitial }
func (e *Event) IsRequest() bool  { return e.cause.Type == CauseRequest }
func (e *Event) IsResponse() bool { return e.cause.Type == CauseResponse }

// LastAncestor returns the highest sequence number of the given peer's
// events causally known to this event. ok is false if no event by that
// peer is an ancestor.
func (e *Event) LastAncestor(p ids.NodeID) (uint64, bool) {
	seq, ok := e.lastAncestors[p]
	return seq, ok
}

// LastAncestors exposes the full last-ancestor vector. Callers must not
// mutate the returned map.
func (e *Event) LastAncestors() map[ids.NodeID]uint64 { return e.lastAncestors }

// Sees reports whether x is an ancestor of e (inclusive: an event sees
// itself). O(1) via the cached last-ancestor vectors.
func (e *Event) Sees(x *Event) bool {
	seq, ok := e.lastAncestors[x.creator]
	return ok && seq >= x.seq
}

func (e *Event) String() string {
	return fmt.Sprintf("%s(%s_%d)", e.cause.Type, e.creator, e.seq)
}
