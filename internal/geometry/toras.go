package geometry

import (
	"math"

	"github.com/backmassage/dicomtonifti/internal/volume"
)

// Converter maps a volume and its DICOM patient matrix into NIFTI RAS space.
//
// Columns are reordered so higher column indices lie further toward the
// positive end of their dominant RAS axis (patient right, or anterior for
// sagittal images); rows likewise. Slices are then reordered whenever the
// resulting axes would be left-handed.
type Converter struct {
	AllowRowReordering    bool
	AllowColumnReordering bool
}

// Result is the output of a conversion.
type Result struct {
	Matrix Matrix4 // voxel (i, j, k) of Volume -> RAS millimetres.
	Volume *volume.Volume

	FlippedColumns bool
	FlippedRows    bool
	FlippedSlices  bool
}

// LPSToRAS negates the x and y rows of m.
func LPSToRAS(m Matrix4) Matrix4 {
	for j := 0; j < 4; j++ {
		m[0][j] = -m[0][j]
		m[1][j] = -m[1][j]
	}
	return m
}

// Matrix computes the RAS matrix for a patient matrix and volume extent
// without touching voxel data. The returned flags report which axes were
// reversed.
func (c *Converter) Matrix(patient Matrix4, dims [3]int) (Matrix4, [3]bool) {
	m := LPSToRAS(patient)
	var flipped [3]bool

	if c.AllowColumnReordering && dominantSign(m.Column(0)) < 0 {
		flipAxis(&m, 0, dims[0])
		flipped[0] = true
	}
	if c.AllowRowReordering && dominantSign(m.Column(1)) < 0 {
		flipAxis(&m, 1, dims[1])
		flipped[1] = true
	}
	if m.Determinant3() < 0 {
		flipAxis(&m, 2, dims[2])
		flipped[2] = true
	}
	return m, flipped
}

// Convert computes the RAS matrix and reorders vol in place to match it.
func (c *Converter) Convert(patient Matrix4, vol *volume.Volume) Result {
	m, flipped := c.Matrix(patient, vol.Dims)
	for axis, f := range flipped {
		if f {
			vol.Flip(axis)
		}
	}
	return Result{
		Matrix:         m,
		Volume:         vol,
		FlippedColumns: flipped[0],
		FlippedRows:    flipped[1],
		FlippedSlices:  flipped[2],
	}
}

// flipAxis reverses voxel axis c of m: the origin moves to the far end and
// the step is negated.
func flipAxis(m *Matrix4, c, n int) {
	step := m.Column(c)
	if n > 1 {
		for r := 0; r < 3; r++ {
			m[r][3] += float64(n-1) * step[r]
		}
	}
	m.SetColumn(c, Scale(step, -1))
}

// dominantSign returns the sign of the largest-magnitude component of v.
func dominantSign(v [3]float64) float64 {
	best := 0
	for i := 1; i < 3; i++ {
		if math.Abs(v[i]) > math.Abs(v[best]) {
			best = i
		}
	}
	if v[best] < 0 {
		return -1
	}
	return 1
}
