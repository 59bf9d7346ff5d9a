// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/utils"

	"github.com/luxfi/parsec/block"
)

// computeConsensus freezes the fully decided election: payloads of
// candidates decided true are emitted as ordered blocks, the winners'
// causal frontier becomes the next election's cut, and undecided
// observations carry forward.
func (e *Engine) computeConsensus() error {
	type group struct {
		key    ids.ID
		voters set.Set[ids.NodeID]
		order  block.Order
	}
	groups := make(map[ids.ID]*group)

	cut := make(map[ids.NodeID]uint64, len(e.election.Cut()))
	for p, s := range e.election.Cut() {
		cut[p] = s
	}

	for _, cand := range e.election.Candidates() {
		bit, at := e.election.UnanimousDecision(cand)
		if !bit {
			continue
		}
		candIdx, _ := e.election.Nominated(cand)
		candEv, ok := e.graph.Get(candIdx)
		if !ok {
			continue
		}
		for p, s := range candEv.LastAncestors() {
			if s > cut[p] {
				cut[p] = s
			}
		}
		me, ok := e.election.MetaEvent(candIdx)
		if !ok {
			continue
		}
		order := block.Order{
			DecidedAt: at,
			Creator:   cand,
			Seq:       candEv.Seq(),
		}
		for _, key := range me.InterestingContent {
			info, ok := e.observations.Get(key)
			if !ok || info.Consensused {
				continue
			}
			g, ok := groups[key]
			if !ok {
				groups[key] = &group{
					key:    key,
					voters: e.votersFor(key),
					order:  order,
				}
				continue
			}
			if order.Compare(g.order) < 0 {
				g.order = order
			}
		}
	}

	blocks := make([]*block.Block, 0, len(groups))
	for key, g := range groups {
		info, _ := e.observations.Get(key)
		info.Consensused = true
		blocks = append(blocks, block.New(info.Observation, key, g.voters, g.order))
	}
	utils.Sort(blocks)
	e.blocks = append(e.blocks, blocks...)
	e.metrics.numBlocks.Add(float64(len(blocks)))
	e.metrics.numElections.Inc()

	// Drop votes whose payload was just emitted; the rest carry forward.
	remaining := e.unconsensused[:0]
	for _, voteIdx := range e.unconsensused {
		voteEv, ok := e.graph.Get(voteIdx)
		if !ok {
			continue
		}
		key, _ := voteEv.Payload()
		if info, ok := e.observations.Get(key); ok && info.Consensused {
			continue
		}
		remaining = append(remaining, voteIdx)
	}
	e.unconsensused = remaining

	voters := e.election.VoterSet()
	if e.pendingVoters != nil {
		voters = e.pendingVoters
		e.pendingVoters = nil
	}
	seed := nextSeed(e.election.Seed(), blocks)
	e.log.Info("election decided",
		log.Uint64("election", e.election.Round()),
		log.Int("blocks", len(blocks)),
		log.Int("voters", voters.Len()),
	)
	e.election = e.election.Next(seed, cut, voters)
	e.sight = newSightIndex(e.graph, e.cfg.SightCacheSize)
	return nil
}

// votersFor collects the creators of the vote events carrying the given
// payload key; they are the block's proofs.
func (e *Engine) votersFor(key ids.ID) set.Set[ids.NodeID] {
	voters := set.NewSet[ids.NodeID](2)
	for _, voteIdx := range e.unconsensused {
		voteEv, ok := e.graph.Get(voteIdx)
		if !ok {
			continue
		}
		if voteKey, ok := voteEv.Payload(); ok && voteKey == key {
			voters.Add(voteEv.Creator())
		}
	}
	return voters
}

// nextSeed chains the coin seed through the decided history so every
// election flips fresh, but identical, coins on all peers.
func nextSeed(prev ids.ID, blocks []*block.Block) ids.ID {
	buf := make([]byte, 0, (len(blocks)+1)*len(prev))
	buf = append(buf, prev[:]...)
	for _, b := range blocks {
		key := b.Key()
		buf = append(buf, key[:]...)
	}
	return hash.ComputeHash256Array(buf)
}
