// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package observation

import (
	"testing"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestSerializationRoundTrip(t *testing.T) {
	require := require.New(t)

	observations := []Observation{
		&Genesis{Group: []ids.NodeID{ids.GenerateTestNodeID(), ids.GenerateTestNodeID()}},
		&AddPeer{Peer: ids.GenerateTestNodeID(), RelatedInfo: []byte("proof")},
		&RemovePeer{Peer: ids.GenerateTestNodeID()},
		&OpaquePayload{Data: []byte("application data")},
	}
	for _, o := range observations {
		b, err := Bytes(o)
		require.NoError(err)
		parsed, err := Parse(b)
		require.NoError(err)

		// The codec round trip must be canonical: the reparsed
		// observation serializes to the same bytes and the same key.
		require.Equal(o.String(), parsed.String())
		reserialized, err := Bytes(parsed)
		require.NoError(err)
		require.Equal(b, reserialized)
	}
}

func TestKeyIsStable(t *testing.T) {
	require := require.New(t)

	o := &OpaquePayload{Data: []byte("payload")}
	key1, err := KeyOf(o)
	require.NoError(err)
	key2, err := KeyOf(&OpaquePayload{Data: []byte("payload")})
	require.NoError(err)
	require.Equal(key1, key2)

	other, err := KeyOf(&OpaquePayload{Data: []byte("different")})
	require.NoError(err)
	require.NotEqual(key1, other)

	// The key is the hash of the canonical serialization, whatever its
	// length.
	b, err := Bytes(o)
	require.NoError(err)
	require.Equal(key1, ids.ID(hash.ComputeHash256Array(b)))
}

func TestParseGarbage(t *testing.T) {
	require := require.New(t)

	_, err := Parse([]byte{0xde, 0xad, 0xbe, 0xef})
	require.Error(err)
}

func TestStore(t *testing.T) {
	require := require.New(t)

	s := NewStore()
	require.Zero(s.Len())

	first := &OpaquePayload{Data: []byte("first")}
	key, info, err := s.Put(first)
	require.NoError(err)
	require.NotNil(info)
	require.Equal(1, s.Len())

	// Re-putting an equal payload returns the existing entry.
	info.OurVote = true
	_, again, err := s.Put(&OpaquePayload{Data: []byte("first")})
	require.NoError(err)
	require.True(again.OurVote)
	require.Equal(1, s.Len())

	got, ok := s.Get(key)
	require.True(ok)
	require.Equal(first, got.Observation)
	_, ok = s.Get(ids.GenerateTestID())
	require.False(ok)

	_, _, err = s.Put(&OpaquePayload{Data: []byte("second")})
	require.NoError(err)
	keys := s.Keys()
	require.Len(keys, 2)
	require.Equal(key, keys[0])
}
