// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/utils"

	"github.com/luxfi/parsec/gossip"
	"github.com/luxfi/parsec/meta"
	"github.com/luxfi/parsec/peer"
)

// computeObservees marks the candidate voters whose interesting events
// the event strongly sees.
func (e *Engine) computeObservees(idx gossip.EventIndex, me *meta.Event) {
	voters := e.election.Voters()
	round := e.election.Round()
	for _, cand := range e.election.Candidates() {
		candIdx, _ := e.election.Nominated(cand)
		if e.sight.stronglySees(idx, candIdx, voters, round) {
			me.Observees.Add(cand)
		}
	}
}

// detectInteresting nominates the event as its creator's candidate if it
// is the first of the creator's events in this election to strongly see
// events of a quorum of voters past the starting cut while seeing a vote
// for an undecided payload.
func (e *Engine) detectInteresting(idx gossip.EventIndex, ev *gossip.Event, me *meta.Event) {
	creator := ev.Creator()
	if _, done := e.election.Nominated(creator); done {
		return
	}
	if !e.stronglySeesQuorumSinceCut(idx) {
		return
	}
	content := e.undecidedContentSeen(ev)
	if len(content) == 0 {
		return
	}
	e.election.Nominate(creator, idx)
	me.InterestingContent = content
	e.log.Debug("nominated interesting event",
		log.Stringer("event", ev),
		log.Int("payloads", len(content)),
		log.Uint64("election", e.election.Round()),
	)
}

// stronglySeesQuorumSinceCut reports whether the event strongly sees,
// for a quorum of voters, that voter's first event past the election's
// starting cut.
func (e *Engine) stronglySeesQuorumSinceCut(idx gossip.EventIndex) bool {
	voters := e.election.Voters()
	round := e.election.Round()
	count := 0
	for _, v := range voters {
		firstSeq := uint64(0)
		if consumed, ok := e.election.Cut()[v]; ok {
			firstSeq = consumed + 1
		}
		firstIdx, ok := e.graph.ByCreatorSeq(v, firstSeq)
		if !ok {
			continue
		}
		if e.sight.stronglySees(idx, firstIdx, voters, round) {
			count++
		}
	}
	return peer.IsQuorum(count, len(voters))
}

// undecidedContentSeen collects the keys of undecided payloads whose
// votes are in the event's causal history, in deterministic order.
func (e *Engine) undecidedContentSeen(ev *gossip.Event) []ids.ID {
	seen := set.NewSet[ids.ID](4)
	for _, voteIdx := range e.unconsensused {
		voteEv, ok := e.graph.Get(voteIdx)
		if !ok {
			continue
		}
		key, ok := voteEv.Payload()
		if !ok {
			continue
		}
		if info, ok := e.observations.Get(key); !ok || info.Consensused {
			continue
		}
		if ev.Sees(voteEv) {
			seen.Add(key)
		}
	}
	content := seen.List()
	utils.Sort(content)
	return content
}
