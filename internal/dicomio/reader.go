package dicomio

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mkmik/argsort"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/backmassage/dicomtonifti/internal/geometry"
	"github.com/backmassage/dicomtonifti/internal/ioerr"
	"github.com/backmassage/dicomtonifti/internal/volume"
)

// minSliceSpacing is the smallest position spread treated as a real
// slice spacing; below it the spacing falls back to SliceThickness.
const minSliceSpacing = 1e-4

// Image is a series assembled into a volume.
type Image struct {
	Volume *volume.Volume

	// Patient maps voxel (i, j, k) to DICOM patient (LPS) millimetres.
	Patient geometry.Matrix4

	// FileIndices[k] is the index, in the input file list, of the file
	// that supplied slice k.
	FileIndices []int
}

// VolumeReader reads every file of a series with pixel data.
type VolumeReader struct{}

// imageGeometry holds the per-series attributes taken from the first file.
type imageGeometry struct {
	rows, cols int
	rowCos     [3]float64 // direction of increasing column index
	colCos     [3]float64 // direction of increasing row index
	rowSpacing float64    // PixelSpacing[0]: distance between rows
	colSpacing float64    // PixelSpacing[1]: distance between columns
	thickness  float64
	dataType   volume.DataType
	slope      float64
	intercept  float64
}

// rawSlice is one native frame before ordering.
type rawSlice struct {
	file int
	pos  [3]float64
	data []int
}

// ReadVolume parses files in order and stacks their frames into a volume.
// Slices are sorted by position along the slice normal, so FileIndices
// reveals whether that order differs from the file order.
func (VolumeReader) ReadVolume(ctx context.Context, files []string) (*Image, error) {
	if len(files) == 0 {
		return nil, ioerr.New(ioerr.FileFormat, "", errors.New("series has no files"))
	}
	var (
		geom   imageGeometry
		slices []rawSlice
	)
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err != nil {
			return nil, ioerr.Classify(path, err)
		}
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, ioerr.Classify(path, err)
		}
		g, err := readGeometry(&ds)
		if err != nil {
			return nil, ioerr.New(ioerr.FileFormat, path, err)
		}
		if i == 0 {
			geom = g
		} else if g.rows != geom.rows || g.cols != geom.cols {
			return nil, ioerr.New(ioerr.FileFormat, path,
				fmt.Errorf("image size %dx%d differs from %dx%d", g.cols, g.rows, geom.cols, geom.rows))
		}
		frames, err := readFrames(&ds, geom.rows*geom.cols)
		if err != nil {
			return nil, ioerr.New(ioerr.FileFormat, path, err)
		}
		origin := position(&ds)
		step := frameStep(&ds, g)
		normal := geometry.Cross(g.rowCos, g.colCos)
		for f, data := range frames {
			var pos [3]float64
			for r := 0; r < 3; r++ {
				pos[r] = origin[r] + float64(f)*step*normal[r]
			}
			slices = append(slices, rawSlice{file: i, pos: pos, data: data})
		}
	}
	return assemble(geom, slices), nil
}

// assemble orders slices along the normal and builds the volume and its
// patient matrix.
func assemble(g imageGeometry, slices []rawSlice) *Image {
	normal := geometry.Cross(g.rowCos, g.colCos)
	dist := make([]float64, len(slices))
	for i, s := range slices {
		dist[i] = geometry.Dot(s.pos, normal)
	}
	order := argsort.SortSlice(slices, func(a, b int) bool {
		if dist[a] != dist[b] {
			return dist[a] < dist[b]
		}
		return a < b
	})

	nz := len(slices)
	dz := 0.0
	if nz > 1 {
		dz = (dist[order[nz-1]] - dist[order[0]]) / float64(nz-1)
	}
	if dz < minSliceSpacing {
		dz = g.thickness
	}
	if dz <= 0 {
		dz = 1
	}

	vol := volume.New(g.cols, g.rows, nz, g.dataType)
	vol.Spacing = [3]float64{g.colSpacing, g.rowSpacing, dz}
	vol.Slope = g.slope
	vol.Intercept = g.intercept

	img := &Image{Volume: vol, FileIndices: make([]int, nz)}
	sliceLen := vol.SliceLen()
	for k, idx := range order {
		s := slices[idx]
		img.FileIndices[k] = s.file
		base := k * sliceLen
		for p, v := range s.data {
			vol.Data[base+p] = int64(v)
		}
	}

	m := geometry.Identity()
	m.SetColumn(0, geometry.Scale(g.rowCos, g.colSpacing))
	m.SetColumn(1, geometry.Scale(g.colCos, g.rowSpacing))
	m.SetColumn(2, geometry.Scale(normal, dz))
	origin := [3]float64{}
	if nz > 0 {
		origin = slices[order[0]].pos
	}
	for r := 0; r < 3; r++ {
		m[r][3] = origin[r]
	}
	img.Patient = m
	return img
}

func readGeometry(ds *dicom.Dataset) (imageGeometry, error) {
	g := imageGeometry{
		rowCos:     [3]float64{1, 0, 0},
		colCos:     [3]float64{0, 1, 0},
		rowSpacing: 1,
		colSpacing: 1,
		slope:      1,
	}
	var ok bool
	if g.rows, ok = intValue(ds, tag.Rows); !ok || g.rows <= 0 {
		return g, errors.New("missing Rows")
	}
	if g.cols, ok = intValue(ds, tag.Columns); !ok || g.cols <= 0 {
		return g, errors.New("missing Columns")
	}
	if spp, ok := intValue(ds, tag.SamplesPerPixel); ok && spp != 1 {
		return g, fmt.Errorf("%d samples per pixel, only grayscale is supported", spp)
	}
	if iop := floatValues(ds, tag.ImageOrientationPatient); len(iop) == 6 {
		copy(g.rowCos[:], iop[:3])
		copy(g.colCos[:], iop[3:])
	}
	if ps := floatValues(ds, tag.PixelSpacing); len(ps) == 2 && ps[0] > 0 && ps[1] > 0 {
		g.rowSpacing, g.colSpacing = ps[0], ps[1]
	}
	if st := floatValues(ds, tag.SliceThickness); len(st) > 0 {
		g.thickness = st[0]
	}
	if s := floatValues(ds, tag.RescaleSlope); len(s) > 0 && s[0] != 0 {
		g.slope = s[0]
	}
	if b := floatValues(ds, tag.RescaleIntercept); len(b) > 0 {
		g.intercept = b[0]
	}

	bits, _ := intValue(ds, tag.BitsAllocated)
	signed, _ := intValue(ds, tag.PixelRepresentation)
	dt, err := voxelType(bits, signed == 1)
	if err != nil {
		return g, err
	}
	g.dataType = dt
	return g, nil
}

// voxelType maps BitsAllocated/PixelRepresentation onto a NIFTI-storable
// type. Signed 8-bit data is widened to int16.
func voxelType(bits int, signed bool) (volume.DataType, error) {
	switch {
	case bits == 8 && !signed:
		return volume.Uint8, nil
	case bits == 8, bits == 16 && signed:
		return volume.Int16, nil
	case bits == 16:
		return volume.Uint16, nil
	case bits == 32 && signed:
		return volume.Int32, nil
	case bits == 32:
		return volume.Uint32, nil
	default:
		return 0, fmt.Errorf("unsupported BitsAllocated %d", bits)
	}
}

func position(ds *dicom.Dataset) [3]float64 {
	var p [3]float64
	if ipp := floatValues(ds, tag.ImagePositionPatient); len(ipp) == 3 {
		copy(p[:], ipp)
	}
	return p
}

// frameStep is the spacing between frames of a multi-frame file.
func frameStep(ds *dicom.Dataset, g imageGeometry) float64 {
	if s := floatValues(ds, tag.SpacingBetweenSlices); len(s) > 0 && s[0] > 0 {
		return s[0]
	}
	if g.thickness > 0 {
		return g.thickness
	}
	return 1
}

// readFrames returns the first sample of every pixel of every native frame.
func readFrames(ds *dicom.Dataset, pixels int) ([][]int, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil || el == nil || el.Value == nil {
		return nil, errors.New("no pixel data")
	}
	if el.Value.ValueType() != dicom.PixelData {
		return nil, errors.New("pixel data has unexpected type")
	}
	info := dicom.MustGetPixelDataInfo(el.Value)
	if info.IsEncapsulated {
		return nil, errors.New("compressed pixel data is not supported")
	}
	out := make([][]int, 0, len(info.Frames))
	for _, fr := range info.Frames {
		nf, err := fr.GetNativeFrame()
		if err != nil {
			return nil, err
		}
		if len(nf.Data) != pixels {
			return nil, fmt.Errorf("frame has %d pixels, want %d", len(nf.Data), pixels)
		}
		data := make([]int, pixels)
		for p, sample := range nf.Data {
			if len(sample) > 0 {
				data[p] = sample[0]
			}
		}
		out = append(out, data)
	}
	if len(out) == 0 {
		return nil, errors.New("no frames")
	}
	return out, nil
}
