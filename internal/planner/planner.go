// Package planner decides, per series, how the converted volume is written:
// whether slice order must be compensated and which orientation matrices
// go into the header.
package planner

import (
	"fmt"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/geometry"
)

// BuildPlan produces the WritePlan for one series.
//
// Flow:
//  1. Did the reader reorder slices? (first file index > last)
//  2. Did the RAS converter reorder slices? (sign of the check matrix)
//  3. XOR the two; request qfac = -1 when --no-slice-reordering is set
//  4. Attach qform/sform unless suppressed
func BuildPlan(cfg *config.Config, patient, ras geometry.Matrix4, fileIndices []int) (*WritePlan, error) {
	plan := &WritePlan{QFac: 1, Matrix: ras}

	plan.ReaderReordered = ReaderReorderedSlices(fileIndices)

	converted, err := ConverterReorderedSlices(patient, ras)
	if err != nil {
		return nil, fmt.Errorf("slice order check: %w", err)
	}
	plan.ConverterReordered = converted

	plan.SlicesReordered = SlicesReordered(plan.ReaderReordered, plan.ConverterReordered)
	plan.QFac = QFac(cfg.NoSliceReordering, plan.SlicesReordered)

	if !cfg.NoQForm {
		m := ras
		plan.QForm = &m
	}
	if !cfg.NoSForm {
		m := ras
		plan.SForm = &m
	}
	return plan, nil
}
