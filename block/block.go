// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"fmt"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/parsec/observation"
)

// Order is the stable sort key of a decided payload: the event sequence
// number at which the decision became unanimous, then the earliest
// nominating creator, then its sequence number.
type Order struct {
	DecidedAt uint64
	Creator   ids.NodeID
	Seq       uint64
}

// Compare implements utils.Sortable.
func (o Order) Compare(other Order) int {
	switch {
	case o.DecidedAt < other.DecidedAt:
		return -1
	case o.DecidedAt > other.DecidedAt:
		return 1
	}
	if c := o.Creator.Compare(other.Creator); c != 0 {
		return c
	}
	switch {
	case o.Seq < other.Seq:
		return -1
	case o.Seq > other.Seq:
		return 1
	default:
		return 0
	}
}

// Block is one decided payload with the voters that backed it. Immutable
// once emitted.
type Block struct {
	payload observation.Observation
	key     ids.ID
	voters  set.Set[ids.NodeID]
	order   Order
}

// New creates a block for a decided payload. voters are the peers whose
// interesting events carried it.
func New(payload observation.Observation, key ids.ID, voters set.Set[ids.NodeID], order Order) *Block {
	return &Block{
		payload: payload,
		key:     key,
		voters:  voters,
		order:   order,
	}
}

// Payload is the decided observation.
func (b *Block) Payload() observation.Observation { return b.payload }

// Key is the decided observation's key.
func (b *Block) Key() ids.ID { return b.key }

// Voters are the peers that backed the payload.
func (b *Block) Voters() set.Set[ids.NodeID] { return b.voters }

// IsVotedBy reports whether the given peer backed the payload.
func (b *Block) IsVotedBy(id ids.NodeID) bool { return b.voters.Contains(id) }

// Order is the block's position key in the final total order.
func (b *Block) Order() Order { return b.order }

// Compare implements utils.Sortable over the final total order.
func (b *Block) Compare(other *Block) int {
	return b.order.Compare(other.order)
}

func (b *Block) String() string {
	return fmt.Sprintf("block(%s, %d voters)", b.payload, b.voters.Len())
}
