// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package observation

import (
	"github.com/luxfi/ids"
)

// Info tracks what we know about one observation.
type Info struct {
	Observation Observation

	// OurVote is true if we created an event voting for it.
	OurVote bool

	// Consensused is true once the observation has been emitted in a
	// block.
	Consensused bool

	// Polled is true once the block carrying the observation has been
	// returned to the application.
	Polled bool
}

// Store indexes observations by key, preserving first-seen order so that
// iteration is deterministic.
type Store struct {
	order []ids.ID
	infos map[ids.ID]*Info
}

func NewStore() *Store {
	return &Store{
		infos: make(map[ids.ID]*Info),
	}
}

// Put records an observation, returning its key. Re-putting a known
// observation returns the existing entry.
func (s *Store) Put(o Observation) (ids.ID, *Info, error) {
	key, err := KeyOf(o)
	if err != nil {
		return ids.Empty, nil, err
	}
	if info, ok := s.infos[key]; ok {
		return key, info, nil
	}
	info := &Info{Observation: o}
	s.infos[key] = info
	s.order = append(s.order, key)
	return key, info, nil
}

// Get returns the entry for a known observation key.
func (s *Store) Get(key ids.ID) (*Info, bool) {
	info, ok := s.infos[key]
	return info, ok
}

// Keys returns all known observation keys in first-seen order.
func (s *Store) Keys() []ids.ID {
	return s.order
}

func (s *Store) Len() int { return len(s.order) }
