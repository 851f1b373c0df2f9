// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Skymount Contributors

package alignment

import "math"

const (
	jacobiMaxSweeps  = 100
	jacobiConverged  = 1e-15
	singularZeroGate = 1e-10
)

// jacobiEigenSymmetric3 diagonalizes the symmetric 3×3 matrix a via
// cyclic Jacobi rotations, returning its eigenvalues and the matrix
// whose columns are the corresponding eigenvectors. a is assumed
// symmetric; entries on both sides of the diagonal are read.
func jacobiEigenSymmetric3(a Matrix3) (eigenvalues [3]float64, eigenvectors Matrix3) {
	v := Identity3()

	for sweep := 0; sweep < jacobiMaxSweeps; sweep++ {
		off := math.Abs(a[0][1]) + math.Abs(a[0][2]) + math.Abs(a[1][2])
		if off < jacobiConverged {
			break
		}
		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				if math.Abs(a[p][q]) < jacobiConverged {
					continue
				}
				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(1+theta*theta))
				c := 1 / math.Sqrt(1+t*t)
				s := t * c

				app, aqq, apq := a[p][p], a[q][q], a[p][q]
				a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
				a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
				a[p][q] = 0
				a[q][p] = 0

				for i := 0; i < 3; i++ {
					if i == p || i == q {
						continue
					}
					aip, aiq := a[i][p], a[i][q]
					a[i][p] = c*aip - s*aiq
					a[p][i] = a[i][p]
					a[i][q] = s*aip + c*aiq
					a[q][i] = a[i][q]
				}

				for i := 0; i < 3; i++ {
					vip, viq := v[i][p], v[i][q]
					v[i][p] = c*vip - s*viq
					v[i][q] = s*vip + c*viq
				}
			}
		}
	}

	return [3]float64{a[0][0], a[1][1], a[2][2]}, v
}

// svd3 computes the singular value decomposition H = U·diag(s)·Vᵀ of a
// 3×3 matrix H, via eigendecomposition of HᵀH.
func svd3(h Matrix3) (u Matrix3, s [3]float64, v Matrix3) {
	hth := h.transpose().mul(h)
	lambda, v := jacobiEigenSymmetric3(hth)

	for i := 0; i < 3; i++ {
		s[i] = math.Sqrt(math.Max(0, lambda[i]))
	}

	var uCols [3]Vector3
	for col := 0; col < 3; col++ {
		vCol := Vector3{X: v[0][col], Y: v[1][col], Z: v[2][col]}
		hv := h.apply(vCol)
		if s[col] < singularZeroGate {
			uCols[col] = Vector3{}
			continue
		}
		uCols[col] = Vector3{X: hv.X / s[col], Y: hv.Y / s[col], Z: hv.Z / s[col]}
	}
	u = columns(uCols[0], uCols[1], uCols[2])
	return u, s, v
}
