// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"encoding/binary"

	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

// roundCoin derives the shared coin for one agreement round: the low bit
// of the hash of the election seed, the candidate identity, and the round
// counter. No wall clock, no OS randomness; every peer computes the same
// bit from data it already holds.
func roundCoin(seed ids.ID, candidate ids.NodeID, round uint64) bool {
	buf := make([]byte, 0, len(seed)+len(candidate.Bytes())+8)
	buf = append(buf, seed[:]...)
	buf = append(buf, candidate.Bytes()...)
	buf = binary.BigEndian.AppendUint64(buf, round)
	id := hash.ComputeHash256Array(buf)
	return id[0]&1 == 1
}
