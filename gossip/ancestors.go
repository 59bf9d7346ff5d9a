// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import "container/heap"

// AncestorIterator walks the causal predecessors of an event in reverse
// topological order, starting with the event itself. The walk is lazy; a
// fresh iterator can always be obtained from Graph.Ancestors.
type AncestorIterator struct {
	g       *Graph
	pending indexHeap
	visited map[EventIndex]struct{}
}

// Ancestors returns an iterator over the event's causal history,
// including the event itself.
func (g *Graph) Ancestors(i EventIndex) *AncestorIterator {
	it := &AncestorIterator{
		g:       g,
		visited: make(map[EventIndex]struct{}),
	}
	if _, ok := g.Get(i); ok {
		it.push(i)
	}
	return it
}

// Next yields the next ancestor. Events with a higher graph index are
// yielded first, so every event appears after all of its descendants in
// the walk.
func (it *AncestorIterator) Next() (IndexedEvent, bool) {
	if it.pending.Len() == 0 {
		return IndexedEvent{}, false
	}
	i := heap.Pop(&it.pending).(EventIndex)
	e, _ := it.g.Get(i)
	if sp, ok := e.SelfParent(); ok {
		it.push(sp)
	}
	if op, ok := e.OtherParent(); ok {
		it.push(op)
	}
	return IndexedEvent{Event: e, Index: i}, true
}

func (it *AncestorIterator) push(i EventIndex) {
	if _, seen := it.visited[i]; seen {
		return
	}
	it.visited[i] = struct{}{}
	heap.Push(&it.pending, i)
}

// indexHeap is a max-heap of event indices.
type indexHeap []EventIndex

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] > h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x interface{}) { *h = append(*h, x.(EventIndex)) }
func (h *indexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
