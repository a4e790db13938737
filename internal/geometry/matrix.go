// Package geometry converts DICOM patient-space geometry (LPS) into the
// NIFTI RAS convention and provides the small 4x4 matrix algebra it needs.
package geometry

import (
	"errors"
	"math"
)

// ErrSingular is returned when a matrix cannot be inverted.
var ErrSingular = errors.New("geometry: singular matrix")

// Matrix4 is a row-major 4x4 homogeneous transform. Column c of the upper
// 3x3 block is the physical step for voxel axis c; column 3 is the origin.
type Matrix4 [4][4]float64

// Identity returns the 4x4 identity matrix.
func Identity() Matrix4 {
	var m Matrix4
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

// Multiply returns a*b.
func Multiply(a, b Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s float64
			for k := 0; k < 4; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Invert returns the inverse of m using Gauss-Jordan elimination with
// partial pivoting.
func Invert(m Matrix4) (Matrix4, error) {
	a := m
	inv := Identity()
	for col := 0; col < 4; col++ {
		pivot := col
		for r := col + 1; r < 4; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return Matrix4{}, ErrSingular
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		p := a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] /= p
			inv[col][j] /= p
		}
		for r := 0; r < 4; r++ {
			if r == col {
				continue
			}
			f := a[r][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				a[r][j] -= f * a[col][j]
				inv[r][j] -= f * inv[col][j]
			}
		}
	}
	return inv, nil
}

// Column returns the first three components of column c.
func (m Matrix4) Column(c int) [3]float64 {
	return [3]float64{m[0][c], m[1][c], m[2][c]}
}

// SetColumn overwrites the first three components of column c.
func (m *Matrix4) SetColumn(c int, v [3]float64) {
	m[0][c], m[1][c], m[2][c] = v[0], v[1], v[2]
}

// Determinant3 returns the determinant of the upper-left 3x3 block.
func (m Matrix4) Determinant3() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Cross returns a × b.
func Cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Dot returns a · b.
func Dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Norm returns the Euclidean length of v.
func Norm(v [3]float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// Scale returns v*s.
func Scale(v [3]float64, s float64) [3]float64 {
	return [3]float64{v[0] * s, v[1] * s, v[2] * s}
}
