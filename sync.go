// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/parsec/gossip"
	"github.com/luxfi/parsec/peer"
)

var errSelfGossip = errors.New("cannot gossip to ourselves")

// CreateGossip assembles a request for the given peer: every event we
// hold that their latest event known to us has not seen, preceded by a
// Requesting event recording the exchange in our own history.
func (e *Engine) CreateGossip(to ids.NodeID) (*Request, error) {
	if to == e.peers.Us() {
		return nil, errSelfGossip
	}
	if err := e.peers.Confirm(to, peer.StateSend); err != nil {
		return nil, err
	}
	last, ok := e.graph.LastEvent(e.peers.Us())
	if !ok {
		return nil, errNoHistory
	}
	ev, err := gossip.NewRequestingEvent(e.graph, e.peers.Us(), last, to)
	if err != nil {
		return nil, err
	}
	if _, err := e.insertEvent(ev); err != nil {
		return nil, err
	}
	if err := e.processEvents(); err != nil {
		return nil, err
	}
	events, err := e.eventsToGossip(to)
	if err != nil {
		return nil, err
	}
	e.log.Debug("created gossip request",
		log.Stringer("to", to),
		log.Int("events", len(events)),
	)
	return &Request{Events: events}, nil
}

// HandleRequest folds a peer's request into the graph, appends our sync
// event acknowledging it, and returns the events the sender lacks.
func (e *Engine) HandleRequest(from ids.NodeID, req *Request) (*Response, error) {
	if err := e.acceptGossip(from, req.Events); err != nil {
		return nil, err
	}
	theirLast, ok := e.graph.LastEvent(from)
	if !ok {
		return nil, fmt.Errorf("%w: from %s", ErrInvalidMessage, from)
	}
	ourLast, ok := e.graph.LastEvent(e.peers.Us())
	if !ok {
		return nil, errNoHistory
	}
	ev, err := gossip.NewRequestEvent(e.graph, e.peers.Us(), ourLast, theirLast)
	if err != nil {
		return nil, err
	}
	if _, err := e.insertEvent(ev); err != nil {
		return nil, err
	}
	if err := e.processEvents(); err != nil {
		return nil, err
	}
	events, err := e.eventsToGossip(from)
	if err != nil {
		return nil, err
	}
	return &Response{Events: events}, nil
}

// HandleResponse folds a peer's response into the graph and appends our
// sync event acknowledging it.
func (e *Engine) HandleResponse(from ids.NodeID, resp *Response) error {
	if err := e.acceptGossip(from, resp.Events); err != nil {
		return err
	}
	theirLast, ok := e.graph.LastEvent(from)
	if !ok {
		return fmt.Errorf("%w: from %s", ErrInvalidMessage, from)
	}
	ourLast, ok := e.graph.LastEvent(e.peers.Us())
	if !ok {
		return errNoHistory
	}
	ev, err := gossip.NewResponseEvent(e.graph, e.peers.Us(), ourLast, theirLast)
	if err != nil {
		return err
	}
	if _, err := e.insertEvent(ev); err != nil {
		return err
	}
	return e.processEvents()
}

// acceptGossip validates the sender and inserts the carried events.
func (e *Engine) acceptGossip(from ids.NodeID, events []*gossip.PackedEvent) error {
	if !e.peers.Contains(from) {
		return fmt.Errorf("%w: %s", peer.ErrUnknownPeer, from)
	}
	if err := e.peers.Confirm(from, peer.StateRecv); err != nil {
		return fmt.Errorf("%w: %s", ErrPrematureGossip, from)
	}
	if len(events) > 0 {
		bySender := false
		for _, p := range events {
			if p.Creator == from {
				bySender = true
				break
			}
		}
		if !bySender {
			return fmt.Errorf("%w: from %s", ErrInvalidMessage, from)
		}
	}
	for _, p := range events {
		if err := e.peers.Confirm(p.Creator, 0); err != nil {
			return err
		}
		ev, err := gossip.FromPacked(e.graph, p)
		if err != nil {
			e.metrics.numEventsRejected.Inc()
			return err
		}
		if e.graph.Contains(ev.ID()) {
			continue
		}
		if _, err := e.insertEvent(ev); err != nil {
			return err
		}
	}
	return e.processEvents()
}

// eventsToGossip packs, oldest first, every event the peer's latest
// event known to us has not seen. A peer with no event in our graph gets
// everything.
func (e *Engine) eventsToGossip(to ids.NodeID) ([]*gossip.PackedEvent, error) {
	var horizon *gossip.Event
	if lastIdx, ok := e.graph.LastEvent(to); ok {
		horizon, _ = e.graph.Get(lastIdx)
	}
	var events []*gossip.PackedEvent
	for i := 0; i < e.graph.Len(); i++ {
		ev, _ := e.graph.Get(gossip.EventIndex(i))
		if horizon != nil && horizon.Sees(ev) {
			continue
		}
		packed, err := ev.Pack(e.graph)
		if err != nil {
			return nil, err
		}
		events = append(events, packed)
	}
	return events, nil
}
