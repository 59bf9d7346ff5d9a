// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func noCoin(uint64) bool {
	panic("coin must not be consulted")
}

func TestSingleVoterDecidesImmediately(t *testing.T) {
	require := require.New(t)

	column := NewColumn(true, nil, 1, noCoin)
	bit, decided := Decided(column)
	require.True(decided)
	require.True(bit)
	require.Len(column, 1)

	column = NewColumn(false, nil, 1, noCoin)
	bit, decided = Decided(column)
	require.True(decided)
	require.False(bit)
}

// threeVoterRound simulates one gossip pass among three voters that all
// start with the same estimate: each voter opens its column seeing the
// columns of the voters before it.
func threeVoterRound(initial bool) [][]MetaVote {
	a := NewColumn(initial, nil, 3, noCoin)
	b := NewColumn(initial, [][]MetaVote{a}, 3, noCoin)
	c := NewColumn(initial, [][]MetaVote{a, b}, 3, noCoin)
	return [][]MetaVote{a, b, c}
}

func TestUnanimousVotersDecide(t *testing.T) {
	require := require.New(t)

	for _, initial := range []bool{true, false} {
		columns := threeVoterRound(initial)

		// The third voter already sees two aux bits and decides.
		bit, decided := Decided(columns[2])
		require.True(decided)
		require.Equal(initial, bit)

		// The first voter decides once the others' votes become visible.
		_, decided = Decided(columns[0])
		require.False(decided)
		extended := NextColumn(columns[0], [][]MetaVote{columns[1], columns[2]}, 3, noCoin)
		bit, decided = Decided(extended)
		require.True(decided)
		require.Equal(initial, bit)
	}
}

func TestDecisionIsSomeVotersEstimate(t *testing.T) {
	require := require.New(t)

	// Two of three voters estimate true; no column may decide false.
	a := NewColumn(true, nil, 3, noCoin)
	b := NewColumn(false, [][]MetaVote{a}, 3, noCoin)
	c := NewColumn(true, [][]MetaVote{a, b}, 3, noCoin)

	a2 := NextColumn(a, [][]MetaVote{b, c}, 3, noCoin)
	bit, decided := Decided(a2)
	require.True(decided)
	require.True(bit)
}

func TestColumnStallsWithoutQuorum(t *testing.T) {
	require := require.New(t)

	// Alone among three voters, a column can neither accumulate bin
	// values nor advance.
	column := NewColumn(true, nil, 3, noCoin)
	require.Len(column, 1)
	last := column[len(column)-1]
	require.Equal(SingleBool(true), last.Estimates)
	require.True(last.BinValues.IsEmpty())
	require.True(last.Aux.IsEmpty())
	require.True(last.Decision.IsEmpty())
}

func TestNextColumnDoesNotMutateParent(t *testing.T) {
	require := require.New(t)

	parent := NewColumn(true, nil, 3, noCoin)
	snapshot := parent[0]

	others := threeVoterRound(true)
	_ = NextColumn(parent, [][]MetaVote{others[1], others[2]}, 3, noCoin)
	require.Equal(snapshot, parent[0])
}

func TestAdvanceAdoptsMajorityAux(t *testing.T) {
	require := require.New(t)

	v := MetaVote{
		Round:     0,
		Step:      StepForcedTrue,
		Estimates: BoolSetBoth,
		BinValues: BoolSetBoth,
		Aux:       SingleBool(true),
	}
	peersAt := []MetaVote{
		{Round: 0, Step: StepForcedTrue, BinValues: BoolSetBoth, Aux: SingleBool(true)},
		{Round: 0, Step: StepForcedTrue, BinValues: BoolSetBoth, Aux: SingleBool(false)},
	}

	next, ok := v.advance(peersAt, 3, noCoin)
	require.True(ok)
	require.Equal(uint64(0), next.Round)
	require.Equal(StepForcedFalse, next.Step)
	require.Equal(SingleBool(true), next.Estimates)
}

func TestAdvanceAdoptsUnanimousBinValue(t *testing.T) {
	require := require.New(t)

	// Aux values tie, but every visible bin-value set is exactly {false};
	// the unanimous bin value wins over the forced bit.
	v := MetaVote{
		Round:     0,
		Step:      StepForcedTrue,
		Estimates: BoolSetBoth,
		BinValues: SingleBool(false),
		Aux:       SingleBool(true),
	}
	peersAt := []MetaVote{
		{Round: 0, Step: StepForcedTrue, BinValues: SingleBool(false), Aux: SingleBool(false)},
	}

	next, ok := v.advance(peersAt, 2, noCoin)
	require.True(ok)
	require.Equal(SingleBool(false), next.Estimates)
}

func TestAdvanceConsultsCoinOnGenuineFlip(t *testing.T) {
	require := require.New(t)

	v := MetaVote{
		Round:     0,
		Step:      StepForcedFalse,
		Estimates: BoolSetBoth,
		BinValues: SingleBool(true),
		Aux:       SingleBool(true),
	}
	peersAt := []MetaVote{
		{Round: 0, Step: StepForcedFalse, BinValues: SingleBool(false), Aux: SingleBool(false)},
	}

	var coinRounds []uint64
	coin := func(round uint64) bool {
		coinRounds = append(coinRounds, round)
		return false
	}
	next, ok := v.advance(peersAt, 2, coin)
	require.True(ok)
	require.Equal(uint64(0), next.Round)
	require.Equal(StepGenuineFlip, next.Step)
	require.Equal(SingleBool(false), next.Estimates)
	require.Equal([]uint64{0}, coinRounds)
}

func TestAdvanceWrapsRoundAfterGenuineFlip(t *testing.T) {
	require := require.New(t)

	v := MetaVote{
		Round:     0,
		Step:      StepGenuineFlip,
		Estimates: BoolSetBoth,
		BinValues: BoolSetBoth,
		Aux:       SingleBool(true),
	}
	peersAt := []MetaVote{
		{Round: 0, Step: StepGenuineFlip, BinValues: BoolSetBoth, Aux: SingleBool(true)},
	}

	next, ok := v.advance(peersAt, 2, noCoin)
	require.True(ok)
	require.Equal(uint64(1), next.Round)
	require.Equal(StepForcedTrue, next.Step)
	require.Equal(SingleBool(true), next.Estimates)
}

func TestAdvanceBlockedWithoutAuxQuorum(t *testing.T) {
	require := require.New(t)

	v := MetaVote{
		Round:     0,
		Step:      StepForcedTrue,
		Estimates: SingleBool(true),
		BinValues: SingleBool(true),
		Aux:       SingleBool(true),
	}

	// No other aux bit visible among three voters.
	_, ok := v.advance(nil, 3, noCoin)
	require.False(ok)
}

func TestDecidedColumnStopsExtending(t *testing.T) {
	require := require.New(t)

	columns := threeVoterRound(true)
	decidedColumn := columns[2]
	length := len(decidedColumn)

	again := NextColumn(decidedColumn, [][]MetaVote{columns[0], columns[1]}, 3, noCoin)
	require.Len(again, length)
	bit, decided := Decided(again)
	require.True(decided)
	require.True(bit)
}
