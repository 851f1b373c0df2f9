// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package celestial

// Observer holds the site latitude/longitude used by every alt/az and
// tracking computation. It is process-wide state for the lifetime of a
// run — constructed once by the caller (cmd/root.go) and threaded
// through explicitly, never reached via a package-level global, so
// tests can swap in a different site without touching shared state.
type Observer struct {
	LatDeg float64
	LonDeg float64
}
