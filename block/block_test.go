// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
	"github.com/luxfi/utils"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/parsec/observation"
)

func TestOrderCompare(t *testing.T) {
	require := require.New(t)

	low := ids.BuildTestNodeID([]byte{1})
	high := ids.BuildTestNodeID([]byte{2})

	a := Order{DecidedAt: 1, Creator: low, Seq: 0}
	require.Zero(a.Compare(a))

	// DecidedAt dominates.
	require.Equal(-1, a.Compare(Order{DecidedAt: 2, Creator: low, Seq: 0}))
	require.Equal(1, Order{DecidedAt: 2}.Compare(a))

	// Then creator, then sequence number.
	require.Equal(-1, a.Compare(Order{DecidedAt: 1, Creator: high, Seq: 0}))
	require.Equal(-1, a.Compare(Order{DecidedAt: 1, Creator: low, Seq: 5}))
	require.Equal(1, Order{DecidedAt: 1, Creator: low, Seq: 5}.Compare(a))
}

func TestBlockAccessors(t *testing.T) {
	require := require.New(t)

	payload := &observation.OpaquePayload{Data: []byte("payload")}
	key, err := observation.KeyOf(payload)
	require.NoError(err)

	voter := ids.GenerateTestNodeID()
	voters := set.NewSet[ids.NodeID](1)
	voters.Add(voter)
	order := Order{DecidedAt: 7, Creator: voter, Seq: 2}

	b := New(payload, key, voters, order)
	require.Equal(payload, b.Payload())
	require.Equal(key, b.Key())
	require.Equal(order, b.Order())
	require.True(b.IsVotedBy(voter))
	require.False(b.IsVotedBy(ids.GenerateTestNodeID()))
	require.Equal(1, b.Voters().Len())
}

func TestBlockSorting(t *testing.T) {
	require := require.New(t)

	creator := ids.GenerateTestNodeID()
	voters := set.NewSet[ids.NodeID](1)
	voters.Add(creator)

	mk := func(decidedAt uint64) *Block {
		payload := &observation.OpaquePayload{Data: []byte{byte(decidedAt)}}
		key, err := observation.KeyOf(payload)
		require.NoError(err)
		return New(payload, key, voters, Order{DecidedAt: decidedAt, Creator: creator})
	}

	blocks := []*Block{mk(9), mk(3), mk(6)}
	utils.Sort(blocks)
	require.Equal(uint64(3), blocks[0].Order().DecidedAt)
	require.Equal(uint64(6), blocks[1].Order().DecidedAt)
	require.Equal(uint64(9), blocks[2].Order().DecidedAt)
}
