// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
	"github.com/luxfi/utils"

	"github.com/luxfi/parsec/gossip"
	"github.com/luxfi/parsec/peer"
)

// Election owns one consensus round over a batch of candidates. The voter
// set is frozen for the election's whole life; membership changes apply
// only when the next election starts.
type Election struct {
	round  uint64
	seed   ids.ID
	voters set.Set[ids.NodeID]

	// cut is the causal frontier where the previous election ended: per
	// peer, the highest sequence number already consumed. Events at or
	// below the cut take no part in this election.
	cut map[ids.NodeID]uint64

	// nominated maps a creator to its single interesting event for this
	// election.
	nominated map[ids.NodeID]gossip.EventIndex

	metaEvents map[gossip.EventIndex]*Event

	// decisions maps candidate creator, then observer, to the observer's
	// terminal output. Write-once per pair.
	decisions map[ids.NodeID]map[ids.NodeID]Decision

	// maxRound is the highest binary-agreement round reached by any
	// column, decided or not. Observability only.
	maxRound uint64
}

// Decision is one observer's terminal output for one candidate.
type Decision struct {
	Bit bool
	// At is the sequence number of the observer's event whose processing
	// produced the decision. Sequence numbers are part of the events
	// themselves, so every peer derives the same value.
	At uint64
}

// NewElection starts the first election with the given voters and no
// causal cut.
func NewElection(voters set.Set[ids.NodeID]) *Election {
	return &Election{
		seed:       ids.Empty,
		voters:     voters,
		cut:        make(map[ids.NodeID]uint64),
		nominated:  make(map[ids.NodeID]gossip.EventIndex),
		metaEvents: make(map[gossip.EventIndex]*Event),
		decisions:  make(map[ids.NodeID]map[ids.NodeID]Decision),
	}
}

// Next starts the follow-up election: the decided batch key reseeds the
// coin, the decided candidates' causal frontier becomes the new cut, and
// a pending voter change, if any, takes effect.
func (e *Election) Next(decidedKey ids.ID, cut map[ids.NodeID]uint64, voters set.Set[ids.NodeID]) *Election {
	return &Election{
		round:      e.round + 1,
		seed:       decidedKey,
		voters:     voters,
		cut:        cut,
		nominated:  make(map[ids.NodeID]gossip.EventIndex),
		metaEvents: make(map[gossip.EventIndex]*Event),
		decisions:  make(map[ids.NodeID]map[ids.NodeID]Decision),
	}
}

// ReplaceVoters restarts this election in place with a new voter group.
// Valid only before any candidate has been nominated; all meta state is
// rebuilt against the new quorum arithmetic.
func (e *Election) ReplaceVoters(voters set.Set[ids.NodeID]) *Election {
	return &Election{
		round:      e.round,
		seed:       e.seed,
		voters:     voters,
		cut:        e.cut,
		nominated:  make(map[ids.NodeID]gossip.EventIndex),
		metaEvents: make(map[gossip.EventIndex]*Event),
		decisions:  make(map[ids.NodeID]map[ids.NodeID]Decision),
	}
}

// Round is the election counter, starting at 0.
func (e *Election) Round() uint64 { return e.round }

// Seed is the consensus key of the previous election's decided batch.
func (e *Election) Seed() ids.ID { return e.seed }

func (e *Election) IsVoter(id ids.NodeID) bool { return e.voters.Contains(id) }

// Voters returns the frozen voter set in stable (sorted) order.
func (e *Election) Voters() []ids.NodeID {
	voters := e.voters.List()
	utils.Sort(voters)
	return voters
}

func (e *Election) VoterCount() int { return e.voters.Len() }

// VoterSet returns the frozen voter set. Callers must not mutate it.
func (e *Election) VoterSet() set.Set[ids.NodeID] { return e.voters }

// QuorumSize is the strong-seeing and decision threshold for this
// election's frozen voter arithmetic.
func (e *Election) QuorumSize() int { return peer.Quorum(e.voters.Len()) }

// SinceCut reports whether an event by the given creator at the given
// sequence number is past the election's starting frontier.
func (e *Election) SinceCut(creator ids.NodeID, seq uint64) bool {
	consumed, ok := e.cut[creator]
	return !ok || seq > consumed
}

// Cut exposes the starting frontier. Callers must not mutate the map.
func (e *Election) Cut() map[ids.NodeID]uint64 { return e.cut }

// Nominate records the creator's interesting event. Only the first
// nomination per creator counts.
func (e *Election) Nominate(creator ids.NodeID, idx gossip.EventIndex) bool {
	if _, ok := e.nominated[creator]; ok {
		return false
	}
	e.nominated[creator] = idx
	return true
}

// Nominated returns the creator's interesting event for this election.
func (e *Election) Nominated(creator ids.NodeID) (gossip.EventIndex, bool) {
	idx, ok := e.nominated[creator]
	return idx, ok
}

// Candidates returns the creators with a nominated interesting event, in
// stable (sorted) order.
func (e *Election) Candidates() []ids.NodeID {
	creators := make([]ids.NodeID, 0, len(e.nominated))
	for creator := range e.nominated {
		creators = append(creators, creator)
	}
	utils.Sort(creators)
	return creators
}

func (e *Election) AddMetaEvent(idx gossip.EventIndex, me *Event) {
	e.metaEvents[idx] = me
}

func (e *Election) MetaEvent(idx gossip.EventIndex) (*Event, bool) {
	me, ok := e.metaEvents[idx]
	return me, ok
}

// RecordDecision stores an observer's terminal output for a candidate.
// Only the first write per (candidate, observer) pair sticks.
func (e *Election) RecordDecision(candidate, observer ids.NodeID, bit bool, at uint64) {
	byObserver, ok := e.decisions[candidate]
	if !ok {
		byObserver = make(map[ids.NodeID]Decision)
		e.decisions[candidate] = byObserver
	}
	if _, done := byObserver[observer]; !done {
		byObserver[observer] = Decision{Bit: bit, At: at}
	}
}

// Decision returns an observer's terminal output for a candidate.
func (e *Election) Decision(candidate, observer ids.NodeID) (Decision, bool) {
	d, ok := e.decisions[candidate][observer]
	return d, ok
}

// IsFullyDecided reports whether the election can be retired: it has at
// least one candidate and every voter holds a decision for every one.
func (e *Election) IsFullyDecided() bool {
	if len(e.nominated) == 0 {
		return false
	}
	for candidate := range e.nominated {
		byObserver := e.decisions[candidate]
		for voter := range e.voters {
			if _, ok := byObserver[voter]; !ok {
				return false
			}
		}
	}
	return true
}

// UnanimousDecision returns the agreed bit for a candidate and the
// highest deciding-event sequence number among the observers, the point
// at which the decision became unanimous. Meaningful only once
// IsFullyDecided holds; agreement makes every observer's bit equal.
func (e *Election) UnanimousDecision(candidate ids.NodeID) (bool, uint64) {
	bit := false
	at := uint64(0)
	for _, d := range e.decisions[candidate] {
		bit = d.Bit
		if d.At > at {
			at = d.At
		}
	}
	return bit, at
}

// ObserveRound folds a column's current round into the election's
// high-water mark.
func (e *Election) ObserveRound(round uint64) {
	if round > e.maxRound {
		e.maxRound = round
	}
}

// MaxRound is the highest binary-agreement round any column has reached.
func (e *Election) MaxRound() uint64 { return e.maxRound }

// Coin returns the shared-coin function for the given candidate's
// columns. Every peer derives the same coin from the election seed, the
// candidate identity, and the agreement round.
func (e *Election) Coin(candidate ids.NodeID) CoinFn {
	seed := e.seed
	return func(round uint64) bool {
		return roundCoin(seed, candidate, round)
	}
}
