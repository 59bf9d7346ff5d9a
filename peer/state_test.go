// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package peer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateCapabilities(t *testing.T) {
	require := require.New(t)

	require.True(StateActive.CanVote())
	require.True(StateActive.CanSend())
	require.True(StateActive.CanRecv())
	require.False(StateInactive.CanVote())

	revoked := StateActive &^ StateVote
	require.False(revoked.CanVote())
	require.True(revoked.CanSend())
	require.True(revoked.CanRecv())

	require.True(StateActive.Contains(StateVote | StateSend))
	require.False(revoked.Contains(StateVote))
	require.True(revoked.Contains(StateInactive))
}

func TestStateString(t *testing.T) {
	require := require.New(t)

	require.Equal("inactive", StateInactive.String())
	require.Equal("vote|send|recv", StateActive.String())
	require.Equal("send|recv", (StateSend | StateRecv).String())
	require.Equal("vote", StateVote.String())
}
