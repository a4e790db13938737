package nifti

import (
	"math"

	"github.com/backmassage/dicomtonifti/internal/geometry"
)

// quatern is the qform representation of an affine: a unit quaternion
// (b, c, d; a is implied), voxel spacing, the handedness factor and the
// offset.
type quatern struct {
	b, c, d    float64
	dx, dy, dz float64
	qfac       float64
	offset     [3]float64
}

// toQuatern decomposes m, whose columns are assumed orthogonal, into
// quaternion form. A left-handed m yields qfac = -1 with the third column
// negated before the rotation is extracted.
func toQuatern(m geometry.Matrix4) quatern {
	var q quatern
	q.offset = [3]float64{m[0][3], m[1][3], m[2][3]}

	var r [3][3]float64
	spacing := [3]float64{}
	for c := 0; c < 3; c++ {
		col := m.Column(c)
		n := geometry.Norm(col)
		if n == 0 {
			col = [3]float64{}
			col[c] = 1
			n = 1
		} else {
			col = geometry.Scale(col, 1/n)
		}
		spacing[c] = n
		for row := 0; row < 3; row++ {
			r[row][c] = col[row]
		}
	}
	q.dx, q.dy, q.dz = spacing[0], spacing[1], spacing[2]

	det := r[0][0]*(r[1][1]*r[2][2]-r[1][2]*r[2][1]) -
		r[0][1]*(r[1][0]*r[2][2]-r[1][2]*r[2][0]) +
		r[0][2]*(r[1][0]*r[2][1]-r[1][1]*r[2][0])
	q.qfac = 1
	if det < 0 {
		q.qfac = -1
		for row := 0; row < 3; row++ {
			r[row][2] = -r[row][2]
		}
	}

	var a, b, c, d float64
	if tr := r[0][0] + r[1][1] + r[2][2] + 1; tr > 0.5 {
		a = 0.5 * math.Sqrt(tr)
		b = 0.25 * (r[2][1] - r[1][2]) / a
		c = 0.25 * (r[0][2] - r[2][0]) / a
		d = 0.25 * (r[1][0] - r[0][1]) / a
	} else {
		xd := 1 + r[0][0] - (r[1][1] + r[2][2])
		yd := 1 + r[1][1] - (r[0][0] + r[2][2])
		zd := 1 + r[2][2] - (r[0][0] + r[1][1])
		switch {
		case xd > 1:
			b = 0.5 * math.Sqrt(xd)
			c = 0.25 * (r[0][1] + r[1][0]) / b
			d = 0.25 * (r[0][2] + r[2][0]) / b
			a = 0.25 * (r[2][1] - r[1][2]) / b
		case yd > 1:
			c = 0.5 * math.Sqrt(yd)
			b = 0.25 * (r[0][1] + r[1][0]) / c
			d = 0.25 * (r[1][2] + r[2][1]) / c
			a = 0.25 * (r[0][2] - r[2][0]) / c
		default:
			d = 0.5 * math.Sqrt(zd)
			b = 0.25 * (r[0][2] + r[2][0]) / d
			c = 0.25 * (r[1][2] + r[2][1]) / d
			a = 0.25 * (r[1][0] - r[0][1]) / d
		}
		if a < 0 {
			b, c, d = -b, -c, -d
		}
	}
	q.b, q.c, q.d = b, c, d
	return q
}
