// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package linkproto

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// idGenerator allocates message IDs in [1,255], never repeating the
// immediately previous value. 0 is reserved (the firmware treats ID==0
// as "not a reply to anything") so it is never handed out.
type idGenerator struct {
	mu   sync.Mutex
	last byte
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

func (g *idGenerator) next() byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		n, err := rand.Int(rand.Reader, big.NewInt(255))
		if err != nil {
			// crypto/rand failing is a platform-level problem; fall back
			// to a deterministic bump rather than panic or block.
			id := g.last + 1
			if id == 0 {
				id = 1
			}
			g.last = id
			return id
		}
		id := byte(n.Int64()) + 1 // n in [0,254] -> id in [1,255]
		if id != g.last {
			g.last = id
			return id
		}
	}
}
