// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"github.com/luxfi/ids"
)

// IndexedEvent pairs an event with its graph index.
type IndexedEvent struct {
	Event *Event
	Index EventIndex
}

// Graph is an arena of immutable events in insertion (topological) order.
// Events are addressed by EventIndex; the hash index deduplicates
// re-delivered events. Nothing is ever removed.
type Graph struct {
	events    []*Event
	indices   map[ids.ID]EventIndex
	byCreator map[ids.NodeID][]EventIndex
}

func NewGraph() *Graph {
	return &Graph{
		indices:   make(map[ids.ID]EventIndex),
		byCreator: make(map[ids.NodeID][]EventIndex),
	}
}

// Len is the number of events in the graph.
func (g *Graph) Len() int { return len(g.events) }

// Get returns the event at the given index.
func (g *Graph) Get(i EventIndex) (*Event, bool) {
	if i < 0 || int(i) >= len(g.events) {
		return nil, false
	}
	return g.events[i], true
}

// IndexOf resolves an event hash to its graph index.
func (g *Graph) IndexOf(id ids.ID) (EventIndex, bool) {
	idx, ok := g.indices[id]
	return idx, ok
}

// Contains reports whether the event with the given hash is in the graph.
func (g *Graph) Contains(id ids.ID) bool {
	_, ok := g.indices[id]
	return ok
}

// ByCreatorSeq returns the event a peer created at the given sequence
// number.
func (g *Graph) ByCreatorSeq(creator ids.NodeID, seq uint64) (EventIndex, bool) {
	chain := g.byCreator[creator]
	if seq >= uint64(len(chain)) {
		return NoEvent, false
	}
	return chain[seq], true
}

// LastEvent returns the most recent event created by the given peer.
func (g *Graph) LastEvent(creator ids.NodeID) (EventIndex, bool) {
	chain := g.byCreator[creator]
	if len(chain) == 0 {
		return NoEvent, false
	}
	return chain[len(chain)-1], true
}

// Insert appends an event to the graph. Re-inserting a byte-identical
// event is a no-op returning the existing index. A different event for an
// occupied (creator, seq) slot fails with ErrDuplicateSequence, which
// also keeps every peer's chain fork-free. Failed inserts leave the graph
// untouched.
func (g *Graph) Insert(e *Event) (EventIndex, error) {
	if idx, ok := g.indices[e.id]; ok {
		return idx, nil
	}
	next := EventIndex(len(g.events))
	if sp, ok := e.SelfParent(); ok && (sp < 0 || sp >= next) {
		return NoEvent, ErrCyclicReference
	}
	if op, ok := e.OtherParent(); ok && (op < 0 || op >= next) {
		return NoEvent, ErrCyclicReference
	}
	chain := g.byCreator[e.creator]
	if e.seq < uint64(len(chain)) {
		return NoEvent, ErrDuplicateSequence
	}
	if e.seq > uint64(len(chain)) {
		// Unreachable when the self-parent is in this graph, since seq is
		// derived from it.
		return NoEvent, ErrInvalidEvent
	}
	g.events = append(g.events, e)
	g.indices[e.id] = next
	g.byCreator[e.creator] = append(chain, next)
	return next, nil
}

// IsAncestor reports whether a is an ancestor of d, inclusively. O(1) via
// the cached last-ancestor vectors.
func (g *Graph) IsAncestor(a, d EventIndex) bool {
	ae, ok := g.Get(a)
	if !ok {
		return false
	}
	de, ok := g.Get(d)
	if !ok {
		return false
	}
	return de.Sees(ae)
}
