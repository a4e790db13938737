package planner

import "github.com/backmassage/dicomtonifti/internal/geometry"

// WritePlan holds the per-series decisions handed to the NIFTI writer. It is
// produced by BuildPlan and never shared between series.
type WritePlan struct {
	OutputPath string

	// QFac is -1 when slices must be stored in their original DICOM order.
	QFac float64

	// Matrix maps converted voxel indices to RAS millimetres. It always
	// supplies pixdim, even when both orientation fields are suppressed.
	Matrix geometry.Matrix4

	// Orientation matrices; nil when suppressed by --no-qform / --no-sform.
	QForm *geometry.Matrix4
	SForm *geometry.Matrix4

	// Decision trail, kept for logging and the run manifest.
	ReaderReordered    bool
	ConverterReordered bool
	SlicesReordered    bool
}

// PreservesDiskOrder reports whether the writer must reverse the slices back
// into their on-disk order.
func (p *WritePlan) PreservesDiskOrder() bool { return p.QFac < 0 }
