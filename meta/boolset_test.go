// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoolSet(t *testing.T) {
	require := require.New(t)

	require.True(BoolSetEmpty.IsEmpty())
	require.Zero(BoolSetEmpty.Len())
	require.False(BoolSetEmpty.Contains(true))
	require.False(BoolSetEmpty.Contains(false))

	tr := SingleBool(true)
	require.True(tr.Contains(true))
	require.False(tr.Contains(false))
	require.Equal(1, tr.Len())
	bit, ok := tr.Single()
	require.True(ok)
	require.True(bit)

	fa := SingleBool(false)
	bit, ok = fa.Single()
	require.True(ok)
	require.False(bit)

	both := tr.With(false)
	require.Equal(BoolSetBoth, both)
	require.Equal(2, both.Len())
	_, ok = both.Single()
	require.False(ok)

	require.Equal(BoolSetBoth, tr.Union(fa))
	require.Equal(tr, tr.With(true))
	_, ok = BoolSetEmpty.Single()
	require.False(ok)
}

func TestBoolSetString(t *testing.T) {
	require := require.New(t)

	require.Equal("{}", BoolSetEmpty.String())
	require.Equal("{t}", SingleBool(true).String())
	require.Equal("{f}", SingleBool(false).String())
	require.Equal("{f,t}", BoolSetBoth.String())
}
