// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package celestial

import (
	"math"
	"time"
)

// j2000Epoch is the Julian Date of the J2000.0 epoch, the reference
// point GMST is computed relative to.
const j2000Epoch = 2451545.0

// SiderealRateArcsecPerSec is the nominal rate at which the celestial
// sphere appears to rotate, in arcseconds of RA per wall-clock second.
// This constant must match the firmware's exactly, or reframed sky
// vectors will drift against the mount's own tracking.
const SiderealRateArcsecPerSec = 15.041

// GMSTHours returns Greenwich Mean Sidereal Time, in hours, for t.
func GMSTHours(t time.Time) float64 {
	d := JulianDate(t) - j2000Epoch
	gmst := 18.697374558 + 24.06570982441908*d
	return mod24(gmst)
}

// LSTHours returns Local Sidereal Time, in hours, at longitude lonDeg
// (east positive) for t.
func LSTHours(t time.Time, lonDeg float64) float64 {
	return mod24(GMSTHours(t) + lonDeg/15)
}

func mod24(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}
