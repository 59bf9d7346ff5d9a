// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package observation

import (
	"fmt"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/crypto/hash"
	"github.com/luxfi/ids"
)

const codecVersion = 0

// Codec serializes observations. The serialized form is canonical: the
// observation key is the hash of it.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()

	errs := []error{
		c.RegisterType(&Genesis{}),
		c.RegisterType(&AddPeer{}),
		c.RegisterType(&RemovePeer{}),
		c.RegisterType(&OpaquePayload{}),
	}
	for _, err := range errs {
		if err != nil {
			panic(err)
		}
	}

	Codec = codec.NewDefaultManager()
	if err := Codec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}

// container lets the codec resolve the concrete observation type.
type container struct {
	Observation Observation `serialize:"true"`
}

// Bytes returns the canonical serialization of an observation.
func Bytes(o Observation) ([]byte, error) {
	return Codec.Marshal(codecVersion, &container{Observation: o})
}

// Parse deserializes an observation.
func Parse(b []byte) (Observation, error) {
	c := &container{}
	if _, err := Codec.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parsing observation: %w", err)
	}
	return c.Observation, nil
}

// KeyOf derives the observation key: the hash of the canonical
// serialization. Two observations with the same key are the same payload.
func KeyOf(o Observation) (ids.ID, error) {
	b, err := Bytes(o)
	if err != nil {
		return ids.Empty, err
	}
	return hash.ComputeHash256Array(b), nil
}
