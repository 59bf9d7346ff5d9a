// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

// BoolSet is a subset of {false, true} packed into two bits.
type BoolSet uint8

const (
	boolSetFalse BoolSet = 1 << 0
	boolSetTrue  BoolSet = 1 << 1

	// BoolSetEmpty contains neither value.
	BoolSetEmpty BoolSet = 0
	// BoolSetBoth contains both values.
	BoolSetBoth = boolSetFalse | boolSetTrue
)

// SingleBool is the set containing exactly v.
func SingleBool(v bool) BoolSet {
	if v {
		return boolSetTrue
	}
	return boolSetFalse
}

func (s BoolSet) Contains(v bool) bool {
	return s&SingleBool(v) != 0
}

// With returns the set extended with v.
func (s BoolSet) With(v bool) BoolSet {
	return s | SingleBool(v)
}

// Union returns the set extended with every value in o.
func (s BoolSet) Union(o BoolSet) BoolSet {
	return s | o
}

func (s BoolSet) IsEmpty() bool { return s == BoolSetEmpty }

func (s BoolSet) Len() int {
	n := 0
	if s.Contains(false) {
		n++
	}
	if s.Contains(true) {
		n++
	}
	return n
}

// Single returns the contained value if the set holds exactly one.
func (s BoolSet) Single() (bool, bool) {
	switch s {
	case boolSetFalse:
		return false, true
	case boolSetTrue:
		return true, true
	default:
		return false, false
	}
}

func (s BoolSet) String() string {
	switch s {
	case BoolSetEmpty:
		return "{}"
	case boolSetFalse:
		return "{f}"
	case boolSetTrue:
		return "{t}"
	default:
		return "{f,t}"
	}
}
