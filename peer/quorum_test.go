// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package peer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuorum(t *testing.T) {
	require := require.New(t)

	require.Equal(1, Quorum(1))
	require.Equal(2, Quorum(2))
	require.Equal(3, Quorum(3))
	require.Equal(3, Quorum(4))
	require.Equal(5, Quorum(7))
	require.Equal(7, Quorum(10))
}

func TestThresholds(t *testing.T) {
	require := require.New(t)

	// IsQuorum is strictly more than two thirds.
	require.True(IsQuorum(3, 4))
	require.False(IsQuorum(2, 4))
	require.True(IsQuorum(1, 1))
	require.False(IsQuorum(4, 6))
	require.True(IsQuorum(5, 6))

	// IsSupermajority admits exactly two thirds.
	require.True(IsSupermajority(4, 6))
	require.False(IsSupermajority(3, 6))
	require.True(IsSupermajority(2, 3))

	// IsOneThird is strictly more than one third.
	require.True(IsOneThird(2, 4))
	require.False(IsOneThird(1, 3))
	require.True(IsOneThird(2, 3))

	// IsMajority is strictly more than half.
	require.True(IsMajority(2, 3))
	require.False(IsMajority(2, 4))
	require.True(IsMajority(3, 4))
}

func TestQuorumIsAlwaysAQuorum(t *testing.T) {
	require := require.New(t)

	for n := 1; n <= 100; n++ {
		q := Quorum(n)
		require.True(IsQuorum(q, n), "n=%d q=%d", n, q)
		require.False(IsQuorum(q-1, n), "n=%d q=%d", n, q)
	}
}
