package planner

import "github.com/backmassage/dicomtonifti/internal/geometry"

// throughSliceTolerance rejects near-zero noise in the through-slice term of
// the check matrix. The value is inherited unchanged from dicomtonifti.
const throughSliceTolerance = 0.1

// ReaderReorderedSlices reports whether the volume reader assembled slices
// in a different order than the files were supplied: the first slice came
// from a later file than the last slice.
func ReaderReorderedSlices(fileIndices []int) bool {
	n := len(fileIndices)
	return n > 1 && fileIndices[0] > fileIndices[n-1]
}

// ConverterReorderedSlices reports whether the RAS conversion reversed the
// slice axis. The patient matrix is taken into RAS with a plain x/y sign
// inversion, inverted, and composed with the converter's matrix; the
// result maps converted voxel indices back onto reader voxel indices, so a
// negative (2,2) term means k runs backwards.
func ConverterReorderedSlices(patient, ras geometry.Matrix4) (bool, error) {
	check, err := geometry.Invert(geometry.LPSToRAS(patient))
	if err != nil {
		return false, err
	}
	check = geometry.Multiply(check, ras)
	return check[2][2] < -throughSliceTolerance, nil
}

// SlicesReordered combines both stages. Two reversals cancel out.
func SlicesReordered(readerReordered, converterReordered bool) bool {
	return readerReordered != converterReordered
}

// QFac returns the through-slice scale the writer should declare: -1 when
// the user asked to keep the on-disk slice order and the net effect of both
// stages was a reorder, otherwise 1.
func QFac(noSliceReordering, reordered bool) float64 {
	if noSliceReordering && reordered {
		return -1
	}
	return 1
}
