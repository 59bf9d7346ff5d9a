// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package peer

// Quorum is the minimum peer count for strong seeing and decisions:
// floor(2n/3) + 1.
func Quorum(n int) int {
	return 2*n/3 + 1
}

// IsQuorum reports whether count is more than two thirds of n.
func IsQuorum(count, n int) bool {
	return 3*count > 2*n
}

// IsSupermajority reports whether count is at least two thirds of n.
func IsSupermajority(count, n int) bool {
	return 3*count >= 2*n
}

// IsOneThird reports whether count is more than one third of n.
func IsOneThird(count, n int) bool {
	return 3*count > n
}

// IsMajority reports whether count is a strict majority of n.
func IsMajority(count, n int) bool {
	return 2*count > n
}
