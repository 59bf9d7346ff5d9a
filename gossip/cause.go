// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import "github.com/luxfi/ids"

// EventIndex addresses an event by its position in the graph's insertion
// order. Indices are stable for the lifetime of the graph.
type EventIndex int

// NoEvent marks an absent parent reference.
const NoEvent EventIndex = -1

// CauseType distinguishes the ways an event can come into existence.
type CauseType uint8

const (
	// CauseInitial marks the first event a peer creates.
	CauseInitial CauseType = iota
	// CauseObservation records a payload the creator votes for.
	CauseObservation
	// CauseRequest records receipt of a gossip request from another peer.
	CauseRequest
	// CauseResponse records receipt of a gossip response from another peer.
	CauseResponse
	// CauseRequesting records that the creator sent a gossip request.
	CauseRequesting
)

func (t CauseType) String() string {
	switch t {
	case CauseInitial:
		return "initial"
	case CauseObservation:
		return "observation"
	case CauseRequest:
		return "request"
	case CauseResponse:
		return "response"
	case CauseRequesting:
		return "requesting"
	default:
		return "unknown"
	}
}

// Cause says why an event exists and links it to its parents.
//
// SelfParent is the creator's previous event and is set for every type
// except CauseInitial. OtherParent is the gossip partner's event being
// acknowledged and is set for CauseRequest and CauseResponse only.
type Cause struct {
	Type        CauseType
	SelfParent  EventIndex
	OtherParent EventIndex

	// Payload is the key of the observation voted for, the hash of its
	// canonical serialization. Set for CauseObservation.
	Payload ids.ID

	// Recipient is the peer a gossip request was sent to. Set for
	// CauseRequesting.
	Recipient ids.NodeID
}

func (c *Cause) selfParent() (EventIndex, bool) {
	return c.SelfParent, c.SelfParent != NoEvent
}

func (c *Cause) otherParent() (EventIndex, bool) {
	return c.OtherParent, c.OtherParent != NoEvent
}

// validateShape checks that the parent slots agree with the cause type.
func (c *Cause) validateShape() error {
	hasSelf := c.SelfParent != NoEvent
	hasOther := c.OtherParent != NoEvent
	switch c.Type {
	case CauseInitial:
		if hasSelf || hasOther {
			return ErrInvalidEvent
		}
	case CauseObservation, CauseRequesting:
		if !hasSelf || hasOther {
			return ErrInvalidEvent
		}
	case CauseRequest, CauseResponse:
		if !hasSelf || !hasOther {
			return ErrInvalidEvent
		}
	default:
		return ErrInvalidEvent
	}
	if (c.Type == CauseObservation) != (c.Payload != ids.Empty) {
		return ErrInvalidEvent
	}
	return nil
}
