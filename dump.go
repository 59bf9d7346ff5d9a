// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"fmt"
	"io"
	"sort"

	"github.com/luxfi/ids"

	"github.com/luxfi/parsec/gossip"
)

// Dump renders the graph and the live election state for inspection:
// per event its cause and last-ancestor vector, and for voting events
// the current binary-agreement columns. Diagnostic only; the output
// format carries no compatibility promise.
func (e *Engine) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "peer %s, election %d, %d voters, %d events\n",
		e.peers.Us(), e.election.Round(), e.election.VoterCount(), e.graph.Len()); err != nil {
		return err
	}
	for i := 0; i < e.graph.Len(); i++ {
		idx := gossip.EventIndex(i)
		ev, _ := e.graph.Get(idx)
		if _, err := fmt.Fprintf(w, "[%d] %s last_ancestors=%s\n",
			i, ev, formatAncestors(ev.LastAncestors())); err != nil {
			return err
		}
		me, ok := e.election.MetaEvent(idx)
		if !ok {
			continue
		}
		if len(me.InterestingContent) > 0 {
			if _, err := fmt.Fprintf(w, "     interesting: %v\n", me.InterestingContent); err != nil {
				return err
			}
		}
		for _, cand := range e.election.Candidates() {
			column, ok := me.Column(cand)
			if !ok {
				continue
			}
			last := column[len(column)-1]
			if _, err := fmt.Fprintf(w, "     vote[%s] %s\n", cand, last.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatAncestors(la map[ids.NodeID]uint64) string {
	type entry struct {
		peer ids.NodeID
		seq  uint64
	}
	entries := make([]entry, 0, len(la))
	for p, s := range la {
		entries = append(entries, entry{peer: p, seq: s})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].peer.Compare(entries[j].peer) < 0
	})
	out := "{"
	for i, en := range entries {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s:%d", en.peer, en.seq)
	}
	return out + "}"
}
