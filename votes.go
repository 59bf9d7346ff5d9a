// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"github.com/luxfi/ids"

	"github.com/luxfi/parsec/gossip"
	"github.com/luxfi/parsec/meta"
	"github.com/luxfi/parsec/peer"
)

// computeVotes fills in the event's binary-agreement columns. An event
// whose self-parent already votes keeps voting; an event that newly
// strongly sees interesting events from a quorum of voters becomes an
// observer and opens columns with its raw observee judgments.
func (e *Engine) computeVotes(ev *gossip.Event, me *meta.Event) {
	candidates := e.election.Candidates()
	if len(candidates) == 0 {
		return
	}
	n := e.election.VoterCount()

	var parent *meta.Event
	if spIdx, ok := ev.SelfParent(); ok {
		parent, _ = e.election.MetaEvent(spIdx)
	}
	continuing := parent != nil && parent.IsObserver()
	if !continuing && !peer.IsQuorum(me.Observees.Len(), n) {
		return
	}

	me.Votes = make(map[ids.NodeID][]meta.MetaVote, len(candidates))
	for _, cand := range candidates {
		others := e.collectOtherColumns(ev, cand)
		coin := e.election.Coin(cand)
		var column []meta.MetaVote
		if continuing {
			if parentColumn, ok := parent.Column(cand); ok {
				column = meta.NextColumn(parentColumn, others, n, coin)
			} else {
				// The candidate appeared after the observer started
				// voting; open its column now.
				column = meta.NewColumn(me.Observees.Contains(cand), others, n, coin)
			}
		} else {
			column = meta.NewColumn(me.Observees.Contains(cand), others, n, coin)
		}
		me.Votes[cand] = column
		e.election.ObserveRound(column[len(column)-1].Round)
	}
}

// collectOtherColumns gathers, per other voter, the column for the given
// candidate held by the voter's latest event visible to ev. Voters not
// yet voting contribute nothing.
func (e *Engine) collectOtherColumns(ev *gossip.Event, cand ids.NodeID) [][]meta.MetaVote {
	voters := e.election.Voters()
	columns := make([][]meta.MetaVote, 0, len(voters))
	for _, v := range voters {
		if v == ev.Creator() {
			continue
		}
		seq, ok := ev.LastAncestor(v)
		if !ok {
			continue
		}
		lastIdx, ok := e.graph.ByCreatorSeq(v, seq)
		if !ok {
			continue
		}
		otherMeta, ok := e.election.MetaEvent(lastIdx)
		if !ok {
			continue
		}
		if column, ok := otherMeta.Column(cand); ok {
			columns = append(columns, column)
		}
	}
	return columns
}

// recordDecisions folds any freshly decided columns into the election's
// decision table.
func (e *Engine) recordDecisions(ev *gossip.Event, me *meta.Event) {
	for cand, column := range me.Votes {
		if bit, decided := meta.Decided(column); decided {
			e.election.RecordDecision(cand, ev.Creator(), bit, ev.Seq())
		}
	}
}
