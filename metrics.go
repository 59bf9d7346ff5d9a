// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"errors"

	"github.com/luxfi/metric"

	"github.com/luxfi/parsec/utils/wrappers"
)

type metrics struct {
	numEventsInserted metric.Counter
	numEventsRejected metric.Counter
	numElections      metric.Counter
	numBlocks         metric.Counter

	undecidedCandidates metric.Gauge
	maxRoundInFlight    metric.Gauge
}

func newMetrics(registerer metric.Registerer) (*metrics, error) {
	if _, ok := registerer.(metric.Registry); !ok {
		return nil, errors.New("registerer must implement metric.Registry")
	}
	errs := wrappers.Errs{}

	m := &metrics{}
	m.numEventsInserted = metric.NewCounter(metric.CounterOpts{
		Name: "events_inserted",
		Help: "Number of events appended to the gossip graph",
	})
	m.numEventsRejected = metric.NewCounter(metric.CounterOpts{
		Name: "events_rejected",
		Help: "Number of delivered events rejected for graph-integrity violations",
	})
	m.numElections = metric.NewCounter(metric.CounterOpts{
		Name: "elections_completed",
		Help: "Number of meta-elections that reached a decided batch",
	})
	m.numBlocks = metric.NewCounter(metric.CounterOpts{
		Name: "blocks_emitted",
		Help: "Number of decided payload blocks emitted",
	})
	m.undecidedCandidates = metric.NewGauge(metric.GaugeOpts{
		Name: "undecided_candidates",
		Help: "Candidates in the current election without a unanimous decision",
	})
	m.maxRoundInFlight = metric.NewGauge(metric.GaugeOpts{
		Name: "max_round_in_flight",
		Help: "Highest binary-agreement round of any undecided column",
	})

	return m, errs.Err
}
