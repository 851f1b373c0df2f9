// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package alignment

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func vecToPoint(sky, mount Vector3, t time.Time) AlignmentPoint {
	// Invert celestial.SkyUnitVector/MountUnitVector so a test can
	// specify unit vectors directly and still drive the solver through
	// its normal AlignmentPoint-based entry point.
	decRad := math.Asin(sky.Z)
	raRad := math.Atan2(sky.Y, sky.X)
	raHours := raRad * 180 / math.Pi / 15
	if raHours < 0 {
		raHours += 24
	}
	decDeg := decRad * 180 / math.Pi

	altRad := math.Asin(mount.Z)
	azRad := math.Atan2(mount.Y, mount.X)
	altArcsec := altRad * 180 / math.Pi * 3600
	azArcsec := azRad * 180 / math.Pi * 3600

	return AlignmentPoint{
		RAHours:      float32(raHours),
		DecDegrees:   float32(decDeg),
		MountXArcsec: int32(math.Round(altArcsec)),
		MountYArcsec: 0,
		MountZArcsec: int32(math.Round(azArcsec)),
		CapturedAt:   t,
	}
}

func TestTwoStarExactRotation(t *testing.T) {
	now := time.Now().UTC()
	sky1 := Vector3{X: 1, Y: 0, Z: 0}
	sky2 := Vector3{X: 0, Y: 1, Z: 0}
	mount1 := Vector3{X: 0, Y: 1, Z: 0}
	mount2 := Vector3{X: -1, Y: 0, Z: 0}

	points := []AlignmentPoint{
		vecToPoint(sky1, mount1, now),
		vecToPoint(sky2, mount2, now),
	}

	result, err := Solve(points, now)
	require.NoError(t, err)

	want := Matrix3{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}}
	require.InDelta(t, 0, result.Matrix.FrobeniusDistance(want), 1e-6)
}

// rotationAboutAxis builds the rotation by angleRad about axis.
func rotationAboutAxis(axis Vector3, angleRad float64) Matrix3 {
	axis = normalize(axis)
	c, s := math.Cos(angleRad), math.Sin(angleRad)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z
	return Matrix3{
		{t*x*x + c, t*x*y - s*z, t*x*z + s*y},
		{t*x*y + s*z, t*y*y + c, t*y*z - s*x},
		{t*x*z - s*y, t*y*z + s*x, t*z*z + c},
	}
}

func TestWahbaRecoversKnownRotation(t *testing.T) {
	now := time.Now().UTC()
	r := rotationAboutAxis(Vector3{X: 0.3, Y: 0.5, Z: 0.8}, 0.7)

	skyVecs := []Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}

	var points []AlignmentPoint
	for _, sv := range skyVecs {
		mv := r.apply(sv)
		points = append(points, vecToPoint(sv, mv, now))
	}

	result, err := Solve(points, now)
	require.NoError(t, err)
	require.Less(t, result.Matrix.FrobeniusDistance(r), 1e-4)
}

func TestOutlierRejection(t *testing.T) {
	now := time.Now().UTC()
	r := rotationAboutAxis(Vector3{X: 0.1, Y: 0.2, Z: 0.9}, 0.4)

	skyVecs := []Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0.577, Y: 0.577, Z: 0.577},
	}

	var points []AlignmentPoint
	for i, sv := range skyVecs {
		mv := r.apply(normalize(sv))
		if i == 3 {
			// Perturb the fourth point's mount vector by ~5 degrees.
			perturbAxis := normalize(Vector3{X: 1, Y: -1, Z: 0})
			perturb := rotationAboutAxis(perturbAxis, 5*math.Pi/180)
			mv = perturb.apply(mv)
		}
		points = append(points, vecToPoint(normalize(sv), mv, now))
	}

	result, err := Solve(points, now)
	require.NoError(t, err)
	require.Contains(t, result.ExcludedIndices, 3)
	require.Less(t, result.AvgResidualDeg, 0.05)
}

func TestSolveRequiresAtLeastTwoPoints(t *testing.T) {
	_, err := Solve([]AlignmentPoint{{}}, time.Now())
	require.ErrorIs(t, err, ErrInsufficientPoints)
}
