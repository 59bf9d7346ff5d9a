// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package parsec

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The engine is single-threaded by design; any goroutine left behind
	// by a test is a bug.
	goleak.VerifyTestMain(m)
}
