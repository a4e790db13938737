package dicomio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/dicomtonifti/internal/ioerr"
	"github.com/backmassage/dicomtonifti/internal/volume"
)

func TestValueConversions(t *testing.T) {
	assert.Equal(t, "DOE^JANE", toString([]string{"DOE^JANE "}))
	assert.Equal(t, `A\B`, toString([]string{"A", "B"}))
	assert.Equal(t, "7", toString([]int{7}))
	assert.Equal(t, "", toString(nil))

	assert.Equal(t, []float64{0.5, 0.75}, toFloats([]string{"0.5", " 0.75 "}))
	assert.Equal(t, []float64{2}, toFloats([]int{2}))
	assert.Nil(t, toFloats([]string{"x"}))
	assert.Nil(t, toFloats(nil))

	n, ok := toInt([]string{" 12 "})
	assert.True(t, ok)
	assert.Equal(t, 12, n)
	n, ok = toInt([]string{"3.0"})
	assert.True(t, ok)
	assert.Equal(t, 3, n)
	_, ok = toInt([]string{})
	assert.False(t, ok)
}

func TestNewGrouping(t *testing.T) {
	g := NewGrouping([][][]string{
		{{"a1", "a2"}, {"b1"}},
		{{"c1", "c2", "c3"}},
	})
	assert.Equal(t, 2, g.NumberOfStudies())
	assert.Equal(t, 3, g.NumberOfSeries())
	assert.Equal(t, 0, g.FirstSeriesInStudy(0))
	assert.Equal(t, 2, g.NumberOfSeriesInStudy(0))
	assert.Equal(t, 2, g.FirstSeriesInStudy(1))
	assert.Equal(t, 1, g.NumberOfSeriesInStudy(1))
	assert.Equal(t, []string{"b1"}, g.FileNamesForSeries(1))
	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2", "c3"}, g.OutputFileNames())
}

func TestGroupHeaders(t *testing.T) {
	hs := []header{
		{path: "s2-i2", studyUID: "S2", seriesUID: "X", seriesNumber: 1, instanceNumber: 2},
		{path: "s1-5-i1", studyUID: "S1", seriesUID: "B", seriesNumber: 5, instanceNumber: 1},
		{path: "s1-2-i3", studyUID: "S1", seriesUID: "A", seriesNumber: 2, instanceNumber: 3},
		{path: "s2-i1", studyUID: "S2", seriesUID: "X", seriesNumber: 1, instanceNumber: 1},
		{path: "s1-2-i1", studyUID: "S1", seriesUID: "A", seriesNumber: 2, instanceNumber: 1},
		{path: "s1-2-i1b", studyUID: "S1", seriesUID: "A", seriesNumber: 2, instanceNumber: 1},
	}
	for i := range hs {
		hs[i].order = i
	}
	g := groupHeaders(hs)

	require.Equal(t, 2, g.NumberOfStudies())
	// S2 appears first in the input.
	assert.Equal(t, []string{"s2-i1", "s2-i2"}, g.FileNamesForSeries(0))
	assert.Equal(t, 1, g.NumberOfSeriesInStudy(0))

	assert.Equal(t, 1, g.FirstSeriesInStudy(1))
	assert.Equal(t, 2, g.NumberOfSeriesInStudy(1))
	assert.Equal(t, []string{"s1-2-i1", "s1-2-i1b", "s1-2-i3"}, g.FileNamesForSeries(1),
		"series 2 precedes series 5; equal instance numbers keep input order")
	assert.Equal(t, []string{"s1-5-i1"}, g.FileNamesForSeries(2))
}

func TestGroupHeaders_SeriesNumberTies(t *testing.T) {
	hs := []header{
		{path: "b", order: 0, studyUID: "S", seriesUID: "B"},
		{path: "a", order: 1, studyUID: "S", seriesUID: "A"},
	}
	g := groupHeaders(hs)
	assert.Equal(t, []string{"b"}, g.FileNamesForSeries(0))
	assert.Equal(t, []string{"a"}, g.FileNamesForSeries(1))
}

func axialGeometry() imageGeometry {
	return imageGeometry{
		rows: 2, cols: 3,
		rowCos:     [3]float64{1, 0, 0},
		colCos:     [3]float64{0, 1, 0},
		rowSpacing: 0.5,
		colSpacing: 0.25,
		thickness:  4,
		dataType:   volume.Int16,
		slope:      1,
	}
}

func constSlice(file int, z float64, v int) rawSlice {
	data := make([]int, 6)
	for i := range data {
		data[i] = v
	}
	return rawSlice{file: file, pos: [3]float64{10, 20, z}, data: data}
}

func TestAssemble_SortsAlongNormal(t *testing.T) {
	img := assemble(axialGeometry(), []rawSlice{
		constSlice(0, 6, 30),
		constSlice(1, 3, 20),
		constSlice(2, 0, 10),
	})

	assert.Equal(t, []int{2, 1, 0}, img.FileIndices)
	assert.Equal(t, [3]int{3, 2, 3}, img.Volume.Dims)
	assert.Equal(t, int64(10), img.Volume.At(0, 0, 0))
	assert.Equal(t, int64(30), img.Volume.At(2, 1, 2))
	assert.Equal(t, [3]float64{0.25, 0.5, 3}, img.Volume.Spacing)

	m := img.Patient
	assert.Equal(t, [3]float64{0.25, 0, 0}, m.Column(0))
	assert.Equal(t, [3]float64{0, 0.5, 0}, m.Column(1))
	assert.Equal(t, [3]float64{0, 0, 3}, m.Column(2))
	assert.Equal(t, 10.0, m[0][3])
	assert.Equal(t, 20.0, m[1][3])
	assert.Equal(t, 0.0, m[2][3])
}

func TestAssemble_InOrder(t *testing.T) {
	img := assemble(axialGeometry(), []rawSlice{
		constSlice(0, 0, 1),
		constSlice(1, 2, 2),
	})
	assert.Equal(t, []int{0, 1}, img.FileIndices)
	assert.Equal(t, 2.0, img.Volume.Spacing[2])
}

func TestAssemble_SingleSliceUsesThickness(t *testing.T) {
	img := assemble(axialGeometry(), []rawSlice{constSlice(0, 0, 1)})
	assert.Equal(t, 4.0, img.Volume.Spacing[2])
	assert.Equal(t, [3]float64{0, 0, 4}, img.Patient.Column(2))
}

func TestVoxelType(t *testing.T) {
	tests := []struct {
		bits   int
		signed bool
		want   volume.DataType
	}{
		{8, false, volume.Uint8},
		{8, true, volume.Int16},
		{16, true, volume.Int16},
		{16, false, volume.Uint16},
		{32, true, volume.Int32},
		{32, false, volume.Uint32},
	}
	for _, tt := range tests {
		got, err := voxelType(tt.bits, tt.signed)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "bits=%d signed=%v", tt.bits, tt.signed)
	}
	_, err := voxelType(12, false)
	assert.Error(t, err)
}

func TestReaders_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.dcm")

	_, err := MetadataReader{}.ReadMetadata(missing)
	assert.Equal(t, ioerr.FileNotFound, ioerr.KindOf(err))

	_, err = (&Sorter{}).Sort(context.Background(), []string{missing})
	assert.Equal(t, ioerr.FileNotFound, ioerr.KindOf(err))

	_, err = VolumeReader{}.ReadVolume(context.Background(), []string{missing})
	assert.Equal(t, ioerr.FileNotFound, ioerr.KindOf(err))
	assert.Equal(t, "File not found: "+missing, ioerr.Message(err))
}

func TestReaders_NotDICOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a dicom file"), 0o644))

	_, err := MetadataReader{}.ReadMetadata(path)
	require.Error(t, err)
	var e *ioerr.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, path, e.Path)
	assert.NotEqual(t, ioerr.FileNotFound, e.Kind)
}

func TestSort_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Sorter{}).Sort(ctx, []string{"a.dcm"})
	assert.ErrorIs(t, err, context.Canceled)
}
