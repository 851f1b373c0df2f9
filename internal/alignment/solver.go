// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package alignment

import (
	"errors"
	"math"
	"time"

	"github.com/skymount/skymount/internal/celestial"
)

// ErrInsufficientPoints is returned by Solve when fewer than two points
// are available — a rotation needs at least a pair of directions.
var ErrInsufficientPoints = errors.New("alignment: need at least 2 points to solve")

// ErrAlignmentRejected is returned by Solve when the accept/reject gate
// discards the candidate matrix: residuals or pairwise inconsistency
// exceed the "unaligned" threshold.
var ErrAlignmentRejected = errors.New("alignment: residuals exceed accept gate")

// Quality tiers the accept/reject gate assigns to a surviving matrix.
type Quality string

const (
	QualityMarginal  Quality = "marginal"
	QualityOK        Quality = "ok"
	QualityExcellent Quality = "excellent"
)

// Result is a solved rotation plus the diagnostics the accept/reject
// gate used to grade it.
type Result struct {
	Matrix          Matrix3
	Quality         Quality
	AvgResidualDeg  float64
	MaxPairDeltaDeg float64
	ActiveIndices   []int
	ExcludedIndices []int
}

// pointVectors is the per-point sky/mount unit vector pair, computed
// once and reused across every candidate evaluated during solving.
type pointVectors struct {
	sky   Vector3
	mount Vector3
}

func vectorsFor(points []AlignmentPoint, refTime time.Time) []pointVectors {
	out := make([]pointVectors, len(points))
	for i, p := range points {
		out[i] = pointVectors{
			sky:   celestial.SkyUnitVector(float64(p.RAHours), float64(p.DecDegrees), refTime, p.CapturedAt),
			mount: celestial.MountUnitVector(float64(p.MountXArcsec), float64(p.MountZArcsec)),
		}
	}
	return out
}

// basis builds the orthonormal triple (b1, b2, b3) the two-star path
// uses: b1 along v1, b2 perpendicular to the plane of v1,v2, b3
// completing a right-handed frame.
func basis(v1, v2 Vector3) (b1, b2, b3 Vector3) {
	b1 = normalize(v1)
	b2 = normalize(cross(v1, v2))
	b3 = cross(b1, b2)
	return
}

// twoStarRotation solves the exact rotation mapping a's sky direction
// to a's mount direction and b's sky direction to b's mount direction,
// via each side's own orthonormal basis built from the pair.
func twoStarRotation(a, b pointVectors) Matrix3 {
	skyB1, skyB2, skyB3 := basis(a.sky, b.sky)
	mountB1, mountB2, mountB3 := basis(a.mount, b.mount)
	s := columns(skyB1, skyB2, skyB3)
	m := columns(mountB1, mountB2, mountB3)
	return m.mul(s.transpose())
}

// wahbaRotation solves Wahba's problem for three or more point pairs
// via SVD of their cross-covariance.
func wahbaRotation(pts []pointVectors) Matrix3 {
	var h Matrix3
	for _, pv := range pts {
		h[0][0] += pv.mount.X * pv.sky.X
		h[0][1] += pv.mount.X * pv.sky.Y
		h[0][2] += pv.mount.X * pv.sky.Z
		h[1][0] += pv.mount.Y * pv.sky.X
		h[1][1] += pv.mount.Y * pv.sky.Y
		h[1][2] += pv.mount.Y * pv.sky.Z
		h[2][0] += pv.mount.Z * pv.sky.X
		h[2][1] += pv.mount.Z * pv.sky.Y
		h[2][2] += pv.mount.Z * pv.sky.Z
	}

	u, _, v := svd3(h)
	d := 1.0
	if u.det()*v.det() < 0 {
		d = -1.0
	}
	corrected := Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, d}}
	return u.mul(corrected).mul(v.transpose())
}

// solveActive dispatches to the two-star or Wahba path depending on
// how many points are active.
func solveActive(all []pointVectors, active []int) Matrix3 {
	if len(active) == 2 {
		return twoStarRotation(all[active[0]], all[active[1]])
	}
	pts := make([]pointVectors, len(active))
	for i, idx := range active {
		pts[i] = all[idx]
	}
	return wahbaRotation(pts)
}

// residualDeg is the angular residual, in degrees, between R·sky and
// mount for one point.
func residualDeg(r Matrix3, pv pointVectors) float64 {
	predicted := r.apply(pv.sky)
	c := clampUnit(dot(predicted, pv.mount))
	return math.Acos(c) * 180 / math.Pi
}

func clampUnit(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

func avgResidual(r Matrix3, all []pointVectors, active []int) float64 {
	var sum float64
	for _, idx := range active {
		sum += residualDeg(r, all[idx])
	}
	return sum / float64(len(active))
}

// maxPairDelta computes the pairwise step-loss diagnostic across
// active: the largest absolute difference between the sky-to-sky and
// mount-to-mount great-circle separation of any pair.
func maxPairDelta(all []pointVectors, active []int) float64 {
	var maxDelta float64
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			a, b := all[active[i]], all[active[j]]
			skySep := math.Acos(clampUnit(dot(a.sky, b.sky))) * 180 / math.Pi
			mountSep := math.Acos(clampUnit(dot(a.mount, b.mount))) * 180 / math.Pi
			delta := math.Abs(skySep - mountSep)
			if delta > maxDelta {
				maxDelta = delta
			}
		}
	}
	return maxDelta
}

// Solve computes a rotation from points, anchored at refTime, applying
// quality-gated inclusion, outlier pruning, and the accept/reject
// grading described for the rotation solver.
func Solve(points []AlignmentPoint, refTime time.Time) (Result, error) {
	if len(points) < 2 {
		return Result{}, ErrInsufficientPoints
	}

	all := vectorsFor(points, refTime)

	active := []int{0, 1}
	r := solveActive(all, active)
	baseline := avgResidual(r, all, active)

	var excluded []int
	for k := 2; k < len(all); k++ {
		candidate := append(append([]int{}, active...), k)
		candR := solveActive(all, candidate)
		candResidual := avgResidual(candR, all, candidate)

		if candResidual <= 1.5*baseline || candResidual < 0.167 {
			active = candidate
			r = candR
			baseline = candResidual
		} else {
			excluded = append(excluded, k)
		}
	}

	for len(active) >= 3 {
		minRes, maxRes := math.Inf(1), math.Inf(-1)
		worstIdx := -1
		for pos, idx := range active {
			res := residualDeg(r, all[idx])
			if res < minRes {
				minRes = res
			}
			if res > maxRes {
				maxRes = res
				worstIdx = pos
			}
		}
		if maxRes > 5*minRes && maxRes > 0.167 {
			excluded = append(excluded, active[worstIdx])
			active = append(append([]int{}, active[:worstIdx]...), active[worstIdx+1:]...)
			r = solveActive(all, active)
			continue
		}
		break
	}

	avgRes := avgResidual(r, all, active)
	maxDelta := maxPairDelta(all, active)

	result := Result{
		Matrix:          r,
		AvgResidualDeg:  avgRes,
		MaxPairDeltaDeg: maxDelta,
		ActiveIndices:   active,
		ExcludedIndices: excluded,
	}

	switch {
	case avgRes > 0.5 || maxDelta > 0.7:
		return result, ErrAlignmentRejected
	case avgRes > 0.25 || maxDelta > 0.3:
		result.Quality = QualityMarginal
	case avgRes > 0.10:
		result.Quality = QualityOK
	default:
		result.Quality = QualityExcellent
	}
	return result, nil
}
