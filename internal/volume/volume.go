// Package volume holds the voxel container passed from the DICOM reader
// through the coordinate converter to the NIFTI writer.
package volume

import "fmt"

// DataType identifies the on-disk voxel type.
type DataType int

const (
	Uint8 DataType = iota
	Int16
	Uint16
	Int32
	Uint32
)

// BitsPerVoxel returns the storage size of one voxel.
func (d DataType) BitsPerVoxel() int {
	switch d {
	case Uint8:
		return 8
	case Int16, Uint16:
		return 16
	default:
		return 32
	}
}

func (d DataType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// Volume is a 3D scalar image. Data is stored column-fastest:
// index = k*Dims[0]*Dims[1] + j*Dims[0] + i.
type Volume struct {
	Dims    [3]int
	Spacing [3]float64
	Type    DataType
	Data    []int64

	// Rescale applied by readers: real = Slope*stored + Intercept.
	Slope     float64
	Intercept float64
}

// New allocates a zero-filled volume.
func New(nx, ny, nz int, t DataType) *Volume {
	return &Volume{
		Dims:    [3]int{nx, ny, nz},
		Spacing: [3]float64{1, 1, 1},
		Type:    t,
		Data:    make([]int64, nx*ny*nz),
		Slope:   1,
	}
}

// Index returns the flat offset of voxel (i, j, k).
func (v *Volume) Index(i, j, k int) int {
	return (k*v.Dims[1]+j)*v.Dims[0] + i
}

// At returns the stored value at (i, j, k).
func (v *Volume) At(i, j, k int) int64 { return v.Data[v.Index(i, j, k)] }

// Set stores val at (i, j, k).
func (v *Volume) Set(i, j, k int, val int64) { v.Data[v.Index(i, j, k)] = val }

// SliceLen is the number of voxels in one slice.
func (v *Volume) SliceLen() int { return v.Dims[0] * v.Dims[1] }

// Flip reverses the voxel order along axis (0 = columns, 1 = rows, 2 = slices)
// in place.
func (v *Volume) Flip(axis int) {
	nx, ny, nz := v.Dims[0], v.Dims[1], v.Dims[2]
	switch axis {
	case 0:
		for k := 0; k < nz; k++ {
			for j := 0; j < ny; j++ {
				row := v.Data[v.Index(0, j, k) : v.Index(0, j, k)+nx]
				reverse(row)
			}
		}
	case 1:
		for k := 0; k < nz; k++ {
			for a, b := 0, ny-1; a < b; a, b = a+1, b-1 {
				swapRange(v.Data, v.Index(0, a, k), v.Index(0, b, k), nx)
			}
		}
	case 2:
		n := v.SliceLen()
		for a, b := 0, nz-1; a < b; a, b = a+1, b-1 {
			swapRange(v.Data, a*n, b*n, n)
		}
	}
}

func reverse(s []int64) {
	for a, b := 0, len(s)-1; a < b; a, b = a+1, b-1 {
		s[a], s[b] = s[b], s[a]
	}
}

func swapRange(s []int64, a, b, n int) {
	for x := 0; x < n; x++ {
		s[a+x], s[b+x] = s[b+x], s[a+x]
	}
}
