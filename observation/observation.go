// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package observation

import (
	"fmt"

	"github.com/luxfi/ids"
)

// Observation is a network payload a peer can vote for. The engine treats
// every variant as an opaque, totally ordered block of content; only the
// Genesis variant carries meaning for the engine itself (the founding
// voter group).
type Observation interface {
	fmt.Stringer

	observation()
}

// Genesis is the founding group of voters. Voted for exactly once, by
// every founding member, as their first observation.
type Genesis struct {
	Group []ids.NodeID `serialize:"true"`
}

// AddPeer proposes admitting a peer to the voter group.
type AddPeer struct {
	Peer        ids.NodeID `serialize:"true"`
	RelatedInfo []byte     `serialize:"true"`
}

// RemovePeer proposes revoking a peer from the voter group.
type RemovePeer struct {
	Peer        ids.NodeID `serialize:"true"`
	RelatedInfo []byte     `serialize:"true"`
}

// OpaquePayload is application content the engine orders without
// interpreting.
type OpaquePayload struct {
	Data []byte `serialize:"true"`
}

func (*Genesis) observation()       {}
func (*AddPeer) observation()       {}
func (*RemovePeer) observation()    {}
func (*OpaquePayload) observation() {}

func (g *Genesis) String() string {
	return fmt.Sprintf("genesis(%d founders)", len(g.Group))
}

func (a *AddPeer) String() string {
	return fmt.Sprintf("add(%s)", a.Peer)
}

func (r *RemovePeer) String() string {
	return fmt.Sprintf("remove(%s)", r.Peer)
}

func (o *OpaquePayload) String() string {
	return fmt.Sprintf("opaque(%d bytes)", len(o.Data))
}
