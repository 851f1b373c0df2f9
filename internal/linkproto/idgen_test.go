// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDGeneratorNeverRepeatsOrZero(t *testing.T) {
	g := newIDGenerator()
	var prev byte
	for i := 0; i < 10000; i++ {
		id := g.next()
		require.NotZero(t, id, "call %d returned reserved id 0", i)
		if i > 0 {
			require.NotEqual(t, prev, id, "call %d repeated the previous id %d", i, prev)
		}
		prev = id
	}
}
