// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"fmt"
	"slices"

	"github.com/luxfi/parsec/peer"
)

// Step is the sub-round of a binary-agreement stage. The forced steps
// break symmetry with a fixed bit; the genuine flip consults the round
// coin.
type Step uint8

const (
	StepForcedTrue Step = iota
	StepForcedFalse
	StepGenuineFlip
)

func (s Step) String() string {
	switch s {
	case StepForcedTrue:
		return "t"
	case StepForcedFalse:
		return "f"
	case StepGenuineFlip:
		return "flip"
	default:
		return "unknown"
	}
}

// CoinFn derives the shared coin for a round. It must be deterministic
// from graph-visible data so every peer flips the same coin.
type CoinFn func(round uint64) bool

// MetaVote is one observer's binary-agreement state for one candidate at
// one stage. A column ([]MetaVote) holds every stage the observer has
// passed through, in order; only the last entry can still change, and
// only until its Decision is set.
type MetaVote struct {
	Round uint64
	Step  Step

	// Estimates are the bits the observer currently considers possible.
	Estimates BoolSet
	// BinValues are the bits estimated by a strict majority of voters at
	// this stage.
	BinValues BoolSet
	// Aux is the single bit broadcast once BinValues is non-empty.
	Aux BoolSet
	// Decision, once set, is immutable and terminal.
	Decision BoolSet
}

func (v *MetaVote) String() string {
	return fmt.Sprintf("{%d/%s est:%s bin:%s aux:%s dec:%s}",
		v.Round, v.Step, v.Estimates, v.BinValues, v.Aux, v.Decision)
}

// sameStage reports whether the vote belongs to the given stage.
func (v *MetaVote) sameStage(round uint64, step Step) bool {
	return v.Round == round && v.Step == step
}

// NewColumn opens an observer's column with its raw initial estimate and
// immediately folds in the votes already visible from other voters.
func NewColumn(initial bool, others [][]MetaVote, voters int, coin CoinFn) []MetaVote {
	first := MetaVote{
		Round:     0,
		Step:      StepForcedTrue,
		Estimates: SingleBool(initial),
	}
	return extend([]MetaVote{first}, others, voters, coin)
}

// NextColumn extends the observer's previous column with the votes now
// visible from other voters. The parent column is not modified.
func NextColumn(parent []MetaVote, others [][]MetaVote, voters int, coin CoinFn) []MetaVote {
	return extend(slices.Clone(parent), others, voters, coin)
}

// Decided returns the column's decision, if reached.
func Decided(column []MetaVote) (bool, bool) {
	if len(column) == 0 {
		return false, false
	}
	return column[len(column)-1].Decision.Single()
}

func extend(votes []MetaVote, others [][]MetaVote, voters int, coin CoinFn) []MetaVote {
	for {
		last := &votes[len(votes)-1]
		if !last.Decision.IsEmpty() {
			return votes
		}
		peersAt := stageVotes(others, last.Round, last.Step)
		last.update(peersAt, voters)
		next, ok := last.advance(peersAt, voters, coin)
		if !ok {
			return votes
		}
		votes = append(votes, next)
	}
}

// stageVotes picks, per other voter, its vote at exactly the given stage.
// Voters that have not reached the stage contribute nothing.
func stageVotes(others [][]MetaVote, round uint64, step Step) []MetaVote {
	picked := make([]MetaVote, 0, len(others))
	for _, column := range others {
		for i := range column {
			if column[i].sameStage(round, step) {
				picked = append(picked, column[i])
				break
			}
		}
	}
	return picked
}

// update recomputes the mutable fields of the stage from the votes
// currently visible. peersAt holds the other voters' entries for this
// stage; counts always include the observer's own vote.
func (v *MetaVote) update(peersAt []MetaVote, voters int) {
	// A bit estimated by more than a third of the voters joins our
	// estimates: fewer than a third can be faulty, so the bit has at
	// least one honest backer and withholding it would stall the stage.
	for _, bit := range [2]bool{true, false} {
		if v.Estimates.Contains(bit) {
			continue
		}
		if peer.IsOneThird(countEstimates(v, peersAt, bit), voters) {
			v.Estimates = v.Estimates.With(bit)
		}
	}

	// Bits estimated by a strict majority accumulate into bin values.
	for _, bit := range [2]bool{true, false} {
		if !v.BinValues.Contains(bit) && peer.IsMajority(countEstimates(v, peersAt, bit), voters) {
			v.BinValues = v.BinValues.With(bit)
		}
	}

	// Broadcast an aux bit once bin values is non-empty. When both bits
	// made it in, fall back to our own estimate, then the step's bit.
	if v.Aux.IsEmpty() && !v.BinValues.IsEmpty() {
		if bit, ok := v.BinValues.Single(); ok {
			v.Aux = SingleBool(bit)
		} else if bit, ok := v.Estimates.Single(); ok {
			v.Aux = SingleBool(bit)
		} else {
			v.Aux = SingleBool(v.Step != StepForcedFalse)
		}
	}

	// Decide a bit backed by a supermajority of aux values, provided it
	// is in our own bin values.
	for _, bit := range [2]bool{true, false} {
		if !v.BinValues.Contains(bit) {
			continue
		}
		if peer.IsSupermajority(countAux(v, peersAt, bit), voters) {
			v.Decision = SingleBool(bit)
			break
		}
	}
}

// advance opens the next stage once this one is exhausted: our aux bit is
// out, a quorum of aux values is visible, and still no decision. The new
// estimate adopts the unanimous bin value when there is one, then the
// majority aux bit, and otherwise the next step's forced bit or the round
// coin.
func (v *MetaVote) advance(peersAt []MetaVote, voters int, coin CoinFn) (MetaVote, bool) {
	if !v.Decision.IsEmpty() || v.Aux.IsEmpty() {
		return MetaVote{}, false
	}
	auxSeen := 1
	for i := range peersAt {
		if !peersAt[i].Aux.IsEmpty() {
			auxSeen++
		}
	}
	if !peer.IsQuorum(auxSeen, voters) {
		return MetaVote{}, false
	}

	next := MetaVote{Round: v.Round, Step: v.Step + 1}
	if v.Step == StepGenuineFlip {
		next.Round = v.Round + 1
		next.Step = StepForcedTrue
	}

	if bit, ok := unanimousBinValue(v, peersAt); ok {
		next.Estimates = SingleBool(bit)
		return next, true
	}
	auxTrue := countAux(v, peersAt, true)
	auxFalse := countAux(v, peersAt, false)
	switch {
	case auxTrue > auxFalse:
		next.Estimates = SingleBool(true)
	case auxFalse > auxTrue:
		next.Estimates = SingleBool(false)
	case next.Step == StepForcedTrue:
		next.Estimates = SingleBool(true)
	case next.Step == StepForcedFalse:
		next.Estimates = SingleBool(false)
	default:
		next.Estimates = SingleBool(coin(next.Round))
	}
	return next, true
}

func countEstimates(v *MetaVote, peersAt []MetaVote, bit bool) int {
	count := 0
	if v.Estimates.Contains(bit) {
		count++
	}
	for i := range peersAt {
		if peersAt[i].Estimates.Contains(bit) {
			count++
		}
	}
	return count
}

func countAux(v *MetaVote, peersAt []MetaVote, bit bool) int {
	count := 0
	if v.Aux.Contains(bit) {
		count++
	}
	for i := range peersAt {
		if peersAt[i].Aux.Contains(bit) {
			count++
		}
	}
	return count
}

// unanimousBinValue reports whether every visible bin-value set at this
// stage is the same single bit.
func unanimousBinValue(v *MetaVote, peersAt []MetaVote) (bool, bool) {
	bit, ok := v.BinValues.Single()
	if !ok {
		return false, false
	}
	for i := range peersAt {
		if peersAt[i].BinValues.IsEmpty() {
			continue
		}
		other, single := peersAt[i].BinValues.Single()
		if !single || other != bit {
			return false, false
		}
	}
	return bit, true
}
