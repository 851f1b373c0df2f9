// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

// Package alignment implements the alignment-point store and the
// two-star/Wahba rotation solver that turns recorded sky/mount point
// pairs into a 3×3 rotation, plus the tracker façade that uses it to
// start celestial tracking and predict approximate gotos. All matrix
// and vector math here runs at double precision; only the wire-bound
// command façade downcasts to float32.
package alignment

import (
	"fmt"
	"math"

	"github.com/skymount/skymount/internal/celestial"
)

// Vector3 aliases celestial.Vector3 so solver code reads naturally
// without pulling the celestial package into every signature.
type Vector3 = celestial.Vector3

// Matrix3 is a 3×3 row-major matrix of float64.
type Matrix3 [3][3]float64

// Identity3 returns the 3×3 identity matrix.
func Identity3() Matrix3 {
	return Matrix3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func dot(a, b Vector3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func cross(a, b Vector3) Vector3 {
	return Vector3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func norm(v Vector3) float64 {
	return math.Sqrt(dot(v, v))
}

func normalize(v Vector3) Vector3 {
	n := norm(v)
	if n == 0 {
		return v
	}
	return Vector3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// apply returns m·v.
func (m Matrix3) apply(v Vector3) Vector3 {
	return Vector3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Apply returns m·v. Exported for callers predicting mount direction
// from a solved rotation.
func (m Matrix3) Apply(v Vector3) Vector3 {
	return m.apply(v)
}

func (m Matrix3) transpose() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

func (m Matrix3) mul(o Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += m[i][k] * o[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

func (m Matrix3) det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// columns builds a matrix whose columns are c0, c1, c2.
func columns(c0, c1, c2 Vector3) Matrix3 {
	return Matrix3{
		{c0.X, c1.X, c2.X},
		{c0.Y, c1.Y, c2.Y},
		{c0.Z, c1.Z, c2.Z},
	}
}

// Flat returns m in row-major order, for the wire's f32[9] rotation
// field.
func (m Matrix3) Flat() [9]float32 {
	var out [9]float32
	i := 0
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[i] = float32(m[r][c])
			i++
		}
	}
	return out
}

// FrobeniusDistance returns the Frobenius norm of m-o, used by tests to
// compare a solved matrix against a known rotation.
func (m Matrix3) FrobeniusDistance(o Matrix3) float64 {
	var sum float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			d := m[i][j] - o[i][j]
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}

func (m Matrix3) String() string {
	return fmt.Sprintf("[[%.6f %.6f %.6f] [%.6f %.6f %.6f] [%.6f %.6f %.6f]]",
		m[0][0], m[0][1], m[0][2], m[1][0], m[1][1], m[1][2], m[2][0], m[2][1], m[2][2])
}
