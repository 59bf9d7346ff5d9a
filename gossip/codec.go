// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package gossip

import (
	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const codecVersion = 0

// Codec serializes events for gossip and archival.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()

	if err := c.RegisterType(&PackedEvent{}); err != nil {
		panic(err)
	}

	Codec = codec.NewDefaultManager()
	if err := Codec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}
