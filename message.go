// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"fmt"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"

	"github.com/luxfi/parsec/gossip"
)

const messageCodecVersion = 0

// messageCodec serializes gossip messages for the transport layer.
var messageCodec codec.Manager

func init() {
	c := linearcodec.NewDefault()

	errs := []error{
		c.RegisterType(&Request{}),
		c.RegisterType(&Response{}),
	}
	for _, err := range errs {
		if err != nil {
			panic(err)
		}
	}

	messageCodec = codec.NewDefaultManager()
	if err := messageCodec.RegisterCodec(messageCodecVersion, c); err != nil {
		panic(err)
	}
}

// Request carries the events a peer believes its gossip partner lacks,
// oldest first.
type Request struct {
	Events []*gossip.PackedEvent `serialize:"true"`
}

// Response carries the events sent back after handling a Request, oldest
// first.
type Response struct {
	Events []*gossip.PackedEvent `serialize:"true"`
}

// Bytes serializes the request for the transport layer.
func (r *Request) Bytes() ([]byte, error) {
	return messageCodec.Marshal(messageCodecVersion, r)
}

// ParseRequest deserializes a request.
func ParseRequest(b []byte) (*Request, error) {
	r := &Request{}
	if _, err := messageCodec.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	return r, nil
}

// Bytes serializes the response for the transport layer.
func (r *Response) Bytes() ([]byte, error) {
	return messageCodec.Marshal(messageCodecVersion, r)
}

// ParseResponse deserializes a response.
func ParseResponse(b []byte) (*Response, error) {
	r := &Response{}
	if _, err := messageCodec.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return r, nil
}
