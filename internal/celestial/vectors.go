// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package celestial

import (
	"math"
	"time"
)

const (
	arcsecPerHour = 15 * 3600
	arcsecToRad   = math.Pi / (180 * 3600)
)

// Vector3 is a plain 3-element Cartesian unit vector. Kept separate from
// internal/alignment's Matrix3 so this package stays free of rotation-
// solving concerns — it only produces the vectors the solver consumes.
type Vector3 struct {
	X, Y, Z float64
}

// SkyUnitVector returns the unit vector pointing at (raHours, decDeg) as
// recorded at obsTime, reframed to refTime by the sidereal drift
// accumulated between the two: RA advances by SiderealRateArcsecPerSec
// for every second refTime is ahead of obsTime. This keeps an alignment
// point captured some minutes ago consistent with a reference time of
// now.
func SkyUnitVector(raHours, decDeg float64, refTime, obsTime time.Time) Vector3 {
	raArcsec := raHours * arcsecPerHour
	deltaSeconds := refTime.Sub(obsTime).Seconds()
	raArcsec += SiderealRateArcsecPerSec * deltaSeconds

	raRad := raArcsec * arcsecToRad
	decRad := decDeg * math.Pi / 180

	cosDec := math.Cos(decRad)
	return Vector3{
		X: cosDec * math.Cos(raRad),
		Y: cosDec * math.Sin(raRad),
		Z: math.Sin(decRad),
	}
}

// MountUnitVector returns the mount's pointing direction from its
// altitude and azimuth encoder readings, in arcseconds. The roll axis
// (Y) does not affect pointing direction and is not part of this
// vector.
func MountUnitVector(altArcsec, azArcsec float64) Vector3 {
	alt := altArcsec * arcsecToRad
	az := azArcsec * arcsecToRad
	cosAlt := math.Cos(alt)
	return Vector3{
		X: cosAlt * math.Cos(az),
		Y: cosAlt * math.Sin(az),
		Z: math.Sin(alt),
	}
}
