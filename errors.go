// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import "errors"

var (
	// ErrDuplicateVote is returned when we already voted for the payload.
	ErrDuplicateVote = errors.New("already voted for this payload")

	// ErrUnknownPayload is returned when a payload key matches nothing we
	// have seen.
	ErrUnknownPayload = errors.New("payload key unknown")

	// ErrPrematureGossip is returned when a peer gossips to us before we
	// can accept events from it.
	ErrPrematureGossip = errors.New("gossip received before we could handle it")

	// ErrInvalidMessage is returned when a non-empty gossip message holds
	// no event created by its sender.
	ErrInvalidMessage = errors.New("message contains no event by its sender")

	// ErrNoArchive is returned when replay is requested without an
	// archive database.
	ErrNoArchive = errors.New("engine has no archive database")
)

var errNoHistory = errors.New("our history is empty")
