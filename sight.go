// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/ids"

	"github.com/luxfi/parsec/gossip"
	"github.com/luxfi/parsec/peer"
)

// sightKey identifies one strong-seeing query. Results depend on the
// election's frozen voter set, so the election round is part of the key.
type sightKey struct {
	observer gossip.EventIndex
	target   gossip.EventIndex
	election uint64
}

// sightIndex answers see / strongly-see queries over the graph. Seeing is
// O(1) off the last-ancestor vectors; strong seeing walks the voter list
// once and memoizes.
type sightIndex struct {
	graph *gossip.Graph
	cache *lru.Cache[sightKey, bool]
}

func newSightIndex(graph *gossip.Graph, cacheSize int) *sightIndex {
	return &sightIndex{
		graph: graph,
		cache: lru.NewCache[sightKey, bool](cacheSize),
	}
}

// sees reports whether observer has target in its causal history.
func (s *sightIndex) sees(observer, target gossip.EventIndex) bool {
	return s.graph.IsAncestor(target, observer)
}

// stronglySees reports whether observer sees target through events of
// more than two thirds of the voters: for each counted voter there is an
// event of theirs that observer sees and that itself sees target. The
// graph's duplicate-sequence rejection keeps every counted chain
// fork-free.
func (s *sightIndex) stronglySees(observer, target gossip.EventIndex, voters []ids.NodeID, election uint64) bool {
	key := sightKey{observer: observer, target: target, election: election}
	if saw, ok := s.cache.Get(key); ok {
		return saw
	}
	saw := s.computeStronglySees(observer, target, voters)
	s.cache.Put(key, saw)
	return saw
}

func (s *sightIndex) computeStronglySees(observer, target gossip.EventIndex, voters []ids.NodeID) bool {
	oe, ok := s.graph.Get(observer)
	if !ok {
		return false
	}
	te, ok := s.graph.Get(target)
	if !ok {
		return false
	}
	count := 0
	for _, v := range voters {
		seq, ok := oe.LastAncestor(v)
		if !ok {
			continue
		}
		// The latest of v's events visible to the observer sees the most;
		// if it misses the target, every earlier one does too.
		idx, ok := s.graph.ByCreatorSeq(v, seq)
		if !ok {
			continue
		}
		ve, _ := s.graph.Get(idx)
		if ve.Sees(te) {
			count++
		}
	}
	return peer.IsQuorum(count, len(voters))
}
