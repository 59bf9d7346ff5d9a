// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"encoding/binary"

	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"

	"github.com/luxfi/parsec/gossip"
)

var (
	archiveEventsPrefix = []byte("events")
	archiveMetaPrefix   = []byte("meta")
	archiveLenKey       = []byte("len")
)

// eventArchive appends the wire form of every inserted event to a
// database, keyed by insertion counter so iteration replays them in
// topological order.
type eventArchive struct {
	events database.Database
	meta   database.Database
	count  uint64
}

func newEventArchive(db database.Database) (*eventArchive, error) {
	a := &eventArchive{
		events: prefixdb.New(archiveEventsPrefix, db),
		meta:   prefixdb.New(archiveMetaPrefix, db),
	}
	lenBytes, err := a.meta.Get(archiveLenKey)
	switch err {
	case nil:
		a.count = binary.BigEndian.Uint64(lenBytes)
	case database.ErrNotFound:
	default:
		return nil, err
	}
	return a, nil
}

func (a *eventArchive) put(ev *gossip.Event) error {
	key := binary.BigEndian.AppendUint64(nil, a.count)
	if err := a.events.Put(key, ev.Bytes()); err != nil {
		return err
	}
	a.count++
	lenBytes := binary.BigEndian.AppendUint64(nil, a.count)
	return a.meta.Put(archiveLenKey, lenBytes)
}

// replayTo feeds every archived event to the callback, oldest first.
func (a *eventArchive) replayTo(deliver func(*gossip.PackedEvent) error) error {
	it := a.events.NewIterator()
	defer it.Release()
	for it.Next() {
		packed, err := gossip.ParsePackedEvent(it.Value())
		if err != nil {
			return err
		}
		if err := deliver(packed); err != nil {
			return err
		}
	}
	return it.Error()
}

// ReplayArchive rebuilds graph state from the archive database. Intended
// for a freshly constructed engine after a restart; events already in
// the graph are skipped.
func (e *Engine) ReplayArchive() error {
	if e.archive == nil {
		return ErrNoArchive
	}
	e.replaying = true
	defer func() { e.replaying = false }()

	return e.archive.replayTo(func(p *gossip.PackedEvent) error {
		ev, err := gossip.FromPacked(e.graph, p)
		if err != nil {
			return err
		}
		if e.graph.Contains(ev.ID()) {
			return nil
		}
		if _, err := e.insertEvent(ev); err != nil {
			return err
		}
		return e.processEvents()
	})
}
