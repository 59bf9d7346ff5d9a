// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"testing"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/parsec/gossip"
)

func testVoters(n int) (set.Set[ids.NodeID], []ids.NodeID) {
	voters := set.NewSet[ids.NodeID](n)
	list := make([]ids.NodeID, 0, n)
	for i := 0; i < n; i++ {
		id := ids.BuildTestNodeID([]byte{byte(i + 1)})
		voters.Add(id)
		list = append(list, id)
	}
	return voters, list
}

func TestElectionLifecycle(t *testing.T) {
	require := require.New(t)

	voters, list := testVoters(3)
	e := NewElection(voters)
	require.Zero(e.Round())
	require.Equal(ids.Empty, e.Seed())
	require.Equal(3, e.VoterCount())
	require.Equal(3, e.QuorumSize())
	require.True(e.IsVoter(list[0]))
	require.False(e.IsVoter(ids.GenerateTestNodeID()))
	require.Len(e.Voters(), 3)
	require.Equal(voters, e.VoterSet())
	require.False(e.IsFullyDecided())
}

func TestElectionNomination(t *testing.T) {
	require := require.New(t)

	voters, list := testVoters(2)
	e := NewElection(voters)

	require.Empty(e.Candidates())
	require.True(e.Nominate(list[0], gossip.EventIndex(4)))

	// Only the first nomination per creator sticks.
	require.False(e.Nominate(list[0], gossip.EventIndex(9)))
	idx, ok := e.Nominated(list[0])
	require.True(ok)
	require.Equal(gossip.EventIndex(4), idx)

	_, ok = e.Nominated(list[1])
	require.False(ok)
	require.Equal([]ids.NodeID{list[0]}, e.Candidates())
}

func TestElectionDecisions(t *testing.T) {
	require := require.New(t)

	voters, list := testVoters(2)
	e := NewElection(voters)
	e.Nominate(list[0], gossip.EventIndex(2))

	require.False(e.IsFullyDecided())
	e.RecordDecision(list[0], list[0], true, 5)
	require.False(e.IsFullyDecided())
	e.RecordDecision(list[0], list[1], true, 7)
	require.True(e.IsFullyDecided())

	// The first write per (candidate, observer) pair is immutable.
	e.RecordDecision(list[0], list[1], false, 9)
	d, ok := e.Decision(list[0], list[1])
	require.True(ok)
	require.True(d.Bit)
	require.Equal(uint64(7), d.At)

	// Unanimity is dated by the latest deciding event.
	bit, at := e.UnanimousDecision(list[0])
	require.True(bit)
	require.Equal(uint64(7), at)
}

func TestElectionCut(t *testing.T) {
	require := require.New(t)

	voters, list := testVoters(2)
	e := NewElection(voters)
	require.True(e.SinceCut(list[0], 0))

	next := e.Next(ids.GenerateTestID(), map[ids.NodeID]uint64{list[0]: 3}, voters)
	require.Equal(uint64(1), next.Round())
	require.False(next.SinceCut(list[0], 2))
	require.False(next.SinceCut(list[0], 3))
	require.True(next.SinceCut(list[0], 4))
	require.True(next.SinceCut(list[1], 0))
}

func TestElectionReplaceVoters(t *testing.T) {
	require := require.New(t)

	voters, list := testVoters(3)
	e := NewElection(voters)
	e.Nominate(list[0], gossip.EventIndex(1))
	e.AddMetaEvent(gossip.EventIndex(1), NewEvent())

	smaller := set.NewSet[ids.NodeID](2)
	smaller.Add(list[0])
	smaller.Add(list[1])
	replaced := e.ReplaceVoters(smaller)

	// Same round and seed, fresh meta state, new quorum arithmetic.
	require.Equal(e.Round(), replaced.Round())
	require.Equal(e.Seed(), replaced.Seed())
	require.Equal(2, replaced.VoterCount())
	require.Empty(replaced.Candidates())
	_, ok := replaced.MetaEvent(gossip.EventIndex(1))
	require.False(ok)
}

func TestElectionMaxRound(t *testing.T) {
	require := require.New(t)

	voters, _ := testVoters(2)
	e := NewElection(voters)
	require.Zero(e.MaxRound())
	e.ObserveRound(3)
	e.ObserveRound(1)
	require.Equal(uint64(3), e.MaxRound())
}

func TestCoinIsDeterministic(t *testing.T) {
	require := require.New(t)

	voters, list := testVoters(2)
	seed := ids.GenerateTestID()
	e1 := NewElection(voters).Next(seed, nil, voters)
	e2 := NewElection(voters).Next(seed, nil, voters)

	coin1 := e1.Coin(list[0])
	coin2 := e2.Coin(list[0])
	for round := uint64(0); round < 32; round++ {
		require.Equal(coin1(round), coin2(round))
	}

	// Different candidates flip independent coins; at 32 rounds a full
	// match would mean the candidate is ignored.
	other := e1.Coin(list[1])
	same := true
	for round := uint64(0); round < 32; round++ {
		if coin1(round) != other(round) {
			same = false
			break
		}
	}
	require.False(same)
}

func TestMetaEventColumns(t *testing.T) {
	require := require.New(t)

	_, list := testVoters(2)
	me := NewEvent()
	require.False(me.IsObserver())
	_, ok := me.Column(list[0])
	require.False(ok)

	me.Votes = map[ids.NodeID][]MetaVote{
		list[0]: {{Round: 0, Step: StepForcedTrue, Estimates: SingleBool(true)}},
	}
	require.True(me.IsObserver())
	column, ok := me.Column(list[0])
	require.True(ok)
	require.Len(column, 1)
}
