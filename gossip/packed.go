// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"fmt"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

// PackedEvent is the wire and archive form of an event. Parents are named
// by content hash instead of graph index so that the form is portable
// between peers with different insertion orders.
type PackedEvent struct {
	Creator     ids.NodeID `serialize:"true"`
	Cause       CauseType  `serialize:"true"`
	SelfParent  ids.ID     `serialize:"true"`
	OtherParent ids.ID     `serialize:"true"`
	Recipient   ids.NodeID `serialize:"true"`

	// Payload is the canonical serialization of the observation voted
	// for. Empty for every cause but CauseObservation.
	Payload []byte `serialize:"true"`
}

// Bytes is the canonical serialization of the packed event. The event ID
// is the hash of these bytes.
func (p *PackedEvent) Bytes() ([]byte, error) {
	return Codec.Marshal(codecVersion, p)
}

// ParsePackedEvent deserializes a packed event.
func ParsePackedEvent(b []byte) (*PackedEvent, error) {
	p := &PackedEvent{}
	if _, err := Codec.Unmarshal(b, p); err != nil {
		return nil, fmt.Errorf("parsing packed event: %w", err)
	}
	return p, nil
}

func packCause(g *Graph, creator ids.NodeID, cause Cause, payloadBytes []byte) (*PackedEvent, error) {
	p := &PackedEvent{
		Creator:   creator,
		Cause:     cause.Type,
		Payload:   payloadBytes,
		Recipient: cause.Recipient,
	}
	if sp, ok := cause.selfParent(); ok {
		parent, found := g.Get(sp)
		if !found {
			return nil, ErrOrphanParent
		}
		p.SelfParent = parent.id
	}
	if op, ok := cause.otherParent(); ok {
		parent, found := g.Get(op)
		if !found {
			return nil, ErrOrphanParent
		}
		p.OtherParent = parent.id
	}
	return p, nil
}

// Pack converts the event back to its portable form.
func (e *Event) Pack(g *Graph) (*PackedEvent, error) {
	return packCause(g, e.creator, e.cause, e.payloadBytes)
}

// FromPacked reconstructs an event against the local graph, resolving
// parent hashes to graph indices. It fails with ErrOrphanParent if a
// parent is not yet known and ErrCyclicReference if the event names
// itself as a parent.
func FromPacked(g *Graph, p *PackedEvent) (*Event, error) {
	b, err := p.Bytes()
	if err != nil {
		return nil, err
	}
	id := hash.ComputeHash256Array(b)
	if p.SelfParent == id || p.OtherParent == id {
		return nil, ErrCyclicReference
	}
	cause := Cause{
		Type:        p.Cause,
		SelfParent:  NoEvent,
		OtherParent: NoEvent,
		Recipient:   p.Recipient,
	}
	if len(p.Payload) > 0 {
		cause.Payload = hash.ComputeHash256Array(p.Payload)
	}
	if p.SelfParent != ids.Empty {
		idx, ok := g.IndexOf(p.SelfParent)
		if !ok {
			return nil, fmt.Errorf("%w: self-parent %s", ErrOrphanParent, p.SelfParent)
		}
		cause.SelfParent = idx
	}
	if p.OtherParent != ids.Empty {
		idx, ok := g.IndexOf(p.OtherParent)
		if !ok {
			return nil, fmt.Errorf("%w: other-parent %s", ErrOrphanParent, p.OtherParent)
		}
		cause.OtherParent = idx
	}
	if err := cause.validateShape(); err != nil {
		return nil, err
	}
	e := &Event{
		id:           id,
		bytes:        b,
		creator:      p.Creator,
		cause:        cause,
		payloadBytes: p.Payload,
	}
	if err := e.cacheAncestry(g); err != nil {
		return nil, err
	}
	return e, nil
}
