// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package parsec implements a gossip-based, leaderless, asynchronous BFT
// consensus engine. Peers exchange causally linked events; agreement on
// payload validity and total order is derived purely from the shape of
// the resulting graph (virtual voting), without explicit vote messages.
package parsec

import (
	"errors"
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math/set"
	"github.com/luxfi/utils"

	"github.com/luxfi/parsec/block"
	"github.com/luxfi/parsec/gossip"
	"github.com/luxfi/parsec/meta"
	"github.com/luxfi/parsec/observation"
	"github.com/luxfi/parsec/peer"
)

var errNotInGenesisGroup = errors.New("our node is not in the genesis group")

// Engine is one peer's view of the consensus: its copy of the event
// graph, the running meta-election, and the decided blocks not yet
// polled. It is not safe for concurrent use; the caller owns the single
// logical thread of graph mutation.
type Engine struct {
	cfg     Config
	log     log.Logger
	metrics *metrics

	graph        *gossip.Graph
	peers        *peer.List
	observations *observation.Store
	election     *meta.Election
	sight        *sightIndex
	archive      *eventArchive

	// unconsensused are observation events whose payload has not been
	// decided, in graph order. Pruned when their payload is emitted.
	unconsensused []gossip.EventIndex

	// pendingVoters, when non-nil, replaces the voter set at the next
	// election boundary.
	pendingVoters set.Set[ids.NodeID]

	// processed is the next graph index the meta-election has not
	// consumed. Reset to zero when an election completes.
	processed gossip.EventIndex

	blocks    []*block.Block
	polled    int
	replaying bool
}

// New creates an engine that knows only itself and has no voters. Use
// FromGenesis or FromExisting to join a network.
func New(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}
	graph := gossip.NewGraph()
	e := &Engine{
		cfg:          cfg,
		log:          cfg.Log,
		metrics:      m,
		graph:        graph,
		peers:        peer.NewList(cfg.Us, peer.StateSend|peer.StateRecv),
		observations: observation.NewStore(),
		election:     meta.NewElection(set.NewSet[ids.NodeID](0)),
		sight:        newSightIndex(graph, cfg.SightCacheSize),
	}
	if cfg.DB != nil {
		e.archive, err = newEventArchive(cfg.DB)
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// FromGenesis creates a founding member's engine: every peer in the
// group is an active voter, our initial event is appended, and our vote
// for the Genesis observation is cast.
func FromGenesis(cfg Config, group []ids.NodeID) (*Engine, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	founders := set.NewSet[ids.NodeID](len(group))
	for _, id := range group {
		founders.Add(id)
		e.peers.Add(id, peer.StateActive)
	}
	if !founders.Contains(cfg.Us) {
		return nil, errNotInGenesisGroup
	}
	e.election = meta.NewElection(founders)

	if err := e.appendInitialEvent(); err != nil {
		return nil, err
	}
	sorted := founders.List()
	utils.Sort(sorted)
	if err := e.Vote(&observation.Genesis{Group: sorted}); err != nil {
		return nil, err
	}
	return e, nil
}

// FromExisting creates an engine joining a running network as a
// non-voting peer. The voters are the network's current voting group;
// history arrives through gossip.
func FromExisting(cfg Config, voters []ids.NodeID) (*Engine, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	voterSet := set.NewSet[ids.NodeID](len(voters))
	for _, id := range voters {
		voterSet.Add(id)
		e.peers.Add(id, peer.StateActive)
	}
	e.election = meta.NewElection(voterSet)
	if err := e.appendInitialEvent(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) appendInitialEvent() error {
	ev, err := gossip.NewInitialEvent(e.graph, e.peers.Us())
	if err != nil {
		return err
	}
	if _, err := e.insertEvent(ev); err != nil {
		return err
	}
	return e.processEvents()
}

// Us is our own identity.
func (e *Engine) Us() ids.NodeID { return e.peers.Us() }

// Graph exposes the event graph for read-only inspection.
func (e *Engine) Graph() *gossip.Graph { return e.graph }

// Deliver hands the engine a fully constructed event from the transport
// layer. Structurally invalid events are rejected without touching graph
// state; re-delivering a known event is a no-op.
func (e *Engine) Deliver(p *gossip.PackedEvent) error {
	if err := e.peers.Confirm(p.Creator, 0); err != nil {
		return err
	}
	ev, err := gossip.FromPacked(e.graph, p)
	if err != nil {
		e.metrics.numEventsRejected.Inc()
		return err
	}
	if e.graph.Contains(ev.ID()) {
		return nil
	}
	if _, err := e.insertEvent(ev); err != nil {
		return err
	}
	return e.processEvents()
}

// Vote casts our vote for an observation by appending an observation
// event to our history.
func (e *Engine) Vote(obs observation.Observation) error {
	if err := e.peers.Confirm(e.peers.Us(), peer.StateVote); err != nil {
		return err
	}
	key, info, err := e.observations.Put(obs)
	if err != nil {
		return err
	}
	if info.OurVote {
		return fmt.Errorf("%w: %s", ErrDuplicateVote, key)
	}
	last, ok := e.graph.LastEvent(e.peers.Us())
	if !ok {
		return errNoHistory
	}
	payloadBytes, err := observation.Bytes(obs)
	if err != nil {
		return err
	}
	ev, err := gossip.NewObservationEvent(e.graph, e.peers.Us(), last, payloadBytes)
	if err != nil {
		return err
	}
	if _, err := e.insertEvent(ev); err != nil {
		return err
	}
	info.OurVote = true
	return e.processEvents()
}

// HaveVotedFor reports whether we already cast a vote for the
// observation.
func (e *Engine) HaveVotedFor(obs observation.Observation) bool {
	key, err := observation.KeyOf(obs)
	if err != nil {
		return false
	}
	info, ok := e.observations.Get(key)
	return ok && info.OurVote
}

// Observation resolves a payload key, as carried by events and blocks,
// back to the payload itself.
func (e *Engine) Observation(key ids.ID) (observation.Observation, error) {
	info, ok := e.observations.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayload, key)
	}
	return info.Observation, nil
}

// HasUnconsensusedObservations reports whether any known observation is
// still awaiting consensus.
func (e *Engine) HasUnconsensusedObservations() bool {
	for _, key := range e.observations.Keys() {
		if info, ok := e.observations.Get(key); ok && !info.Consensused {
			return true
		}
	}
	return false
}

// OurUnpolledObservations returns the observations we voted for whose
// blocks have not yet been returned by NextDecided.
func (e *Engine) OurUnpolledObservations() []observation.Observation {
	var out []observation.Observation
	for _, key := range e.observations.Keys() {
		if info, ok := e.observations.Get(key); ok && info.OurVote && !info.Polled {
			out = append(out, info.Observation)
		}
	}
	return out
}

// NextDecided returns the next decided block in final order, or nil when
// none is pending. The stream is monotonic and gap-free across calls.
func (e *Engine) NextDecided() *block.Block {
	if e.polled >= len(e.blocks) {
		return nil
	}
	b := e.blocks[e.polled]
	e.polled++
	if info, ok := e.observations.Get(b.Key()); ok {
		info.Polled = true
	}
	return b
}

// SetVoters updates the voting group. The running election's quorum
// arithmetic stays frozen; the change applies when the next election
// starts, or immediately if the current one has no candidates yet.
// Capability states in the peer registry update right away.
func (e *Engine) SetVoters(voters set.Set[ids.NodeID]) error {
	for _, id := range e.election.Voters() {
		if voters.Contains(id) {
			continue
		}
		if p, ok := e.peers.Get(id); ok {
			if err := e.peers.ChangeState(id, p.State()&^peer.StateVote); err != nil {
				return err
			}
		}
	}
	for id := range voters {
		if p, ok := e.peers.Get(id); ok {
			if err := e.peers.ChangeState(id, p.State()|peer.StateVote); err != nil {
				return err
			}
			continue
		}
		e.peers.Add(id, peer.StateActive)
	}

	if len(e.election.Candidates()) == 0 {
		e.election = e.election.ReplaceVoters(voters)
		e.sight = newSightIndex(e.graph, e.cfg.SightCacheSize)
		e.processed = 0
		return e.processEvents()
	}
	e.pendingVoters = voters
	e.log.Info("voter change deferred to election boundary",
		log.Int("voters", voters.Len()),
		log.Uint64("election", e.election.Round()),
	)
	return nil
}

// QuorumUnavailable reports whether the running election is stalled
// because fewer of its frozen voters are still vote-capable than its
// quorum threshold. A stall is not an error; progress resumes if the
// membership manager restores quorum.
func (e *Engine) QuorumUnavailable() bool {
	live := 0
	for _, v := range e.election.Voters() {
		if p, ok := e.peers.Get(v); ok && p.State().CanVote() {
			live++
		}
	}
	return !peer.IsQuorum(live, e.election.VoterCount())
}

// insertEvent appends an event to the graph and does the engine-side
// bookkeeping: observation registration, archive append, metrics.
func (e *Engine) insertEvent(ev *gossip.Event) (gossip.EventIndex, error) {
	var info *observation.Info
	if key, ok := ev.Payload(); ok {
		obs, err := observation.Parse(ev.PayloadBytes())
		if err != nil {
			e.metrics.numEventsRejected.Inc()
			return gossip.NoEvent, err
		}
		storedKey, storedInfo, err := e.observations.Put(obs)
		if err != nil {
			return gossip.NoEvent, err
		}
		if storedKey != key {
			e.metrics.numEventsRejected.Inc()
			return gossip.NoEvent, fmt.Errorf("%w: non-canonical payload serialization", gossip.ErrInvalidEvent)
		}
		info = storedInfo
	}

	idx, err := e.graph.Insert(ev)
	if err != nil {
		e.metrics.numEventsRejected.Inc()
		return gossip.NoEvent, err
	}
	e.metrics.numEventsInserted.Inc()

	if info != nil && !info.Consensused {
		e.unconsensused = append(e.unconsensused, idx)
	}
	if e.archive != nil && !e.replaying {
		if err := e.archive.put(ev); err != nil {
			return idx, err
		}
	}
	e.log.Debug("inserted event",
		log.Stringer("event", ev),
		log.Int("index", int(idx)),
	)
	return idx, nil
}

// processEvents runs the meta-election over every event not yet
// consumed. When an election completes, the follow-up election reprocesses
// the graph from the start, skipping everything below the new cut.
func (e *Engine) processEvents() error {
	for int(e.processed) < e.graph.Len() {
		idx := e.processed
		e.processed++
		restarted, err := e.processEvent(idx)
		if err != nil {
			return err
		}
		if restarted {
			e.processed = 0
		}
	}
	e.updateHealth()
	return nil
}

// processEvent builds the event's meta-election shadow and, if the event
// completes the election, computes the decided batch and restarts.
func (e *Engine) processEvent(idx gossip.EventIndex) (bool, error) {
	ev, ok := e.graph.Get(idx)
	if !ok {
		return false, fmt.Errorf("no event at index %d", idx)
	}
	creator := ev.Creator()
	if !e.election.IsVoter(creator) {
		return false, nil
	}
	if !e.election.SinceCut(creator, ev.Seq()) {
		return false, nil
	}

	me := meta.NewEvent()
	e.computeObservees(idx, me)
	e.detectInteresting(idx, ev, me)
	e.computeVotes(ev, me)
	e.election.AddMetaEvent(idx, me)
	e.recordDecisions(ev, me)

	if !e.election.IsFullyDecided() {
		return false, nil
	}
	if err := e.computeConsensus(); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) updateHealth() {
	undecided := 0
	for _, cand := range e.election.Candidates() {
		done := true
		for _, v := range e.election.Voters() {
			if _, ok := e.election.Decision(cand, v); !ok {
				done = false
				break
			}
		}
		if !done {
			undecided++
		}
	}
	e.metrics.undecidedCandidates.Set(float64(undecided))
	e.metrics.maxRoundInFlight.Set(float64(e.election.MaxRound()))

	if e.election.MaxRound() >= e.cfg.RoundAlarmThreshold {
		e.log.Warn("binary agreement running long",
			log.Uint64("round", e.election.MaxRound()),
			log.Uint64("election", e.election.Round()),
			log.Int("undecidedCandidates", undecided),
		)
	}
	if undecided > 0 && e.QuorumUnavailable() {
		e.log.Warn("election stalled below quorum",
			log.Uint64("election", e.election.Round()),
			log.Int("voters", e.election.VoterCount()),
		)
	}
}
