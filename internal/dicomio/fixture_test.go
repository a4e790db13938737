package dicomio

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"github.com/suyashkumar/dicom/pkg/uid"
)

// fixture describes one single-frame MR slice. Pixel p holds Fill+p.
type fixture struct {
	StudyUID       string
	SeriesUID      string
	SeriesNumber   int
	InstanceNumber int
	Rows, Cols     int
	Z              float64
	Fill           int
	Encapsulated   bool
}

// axial returns a 2x2 axial slice of series 1.2.3.1 at height z.
func axial(instance int, z float64, fill int) fixture {
	return fixture{
		StudyUID:       "1.2.3",
		SeriesUID:      "1.2.3.1",
		SeriesNumber:   3,
		InstanceNumber: instance,
		Rows:           2,
		Cols:           2,
		Z:              z,
		Fill:           fill,
	}
}

func decimal(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// writeFixture encodes f as an implicit VR little endian file in dir.
func writeFixture(t *testing.T, dir, name string, f fixture) string {
	t.Helper()
	el := func(tg tag.Tag, v interface{}) *dicom.Element {
		e, err := dicom.NewElement(tg, v)
		require.NoError(t, err)
		return e
	}

	pixelData := el(tag.PixelData, nativePixels(f))
	if f.Encapsulated {
		pixelData = el(tag.PixelData, dicom.PixelDataInfo{
			IsEncapsulated: true,
			Frames: []*frame.Frame{{
				Encapsulated:     true,
				EncapsulatedData: frame.EncapsulatedFrame{Data: []byte{0xFF, 0xD8, 0xFF, 0xD9}},
			}},
		})
		pixelData.ValueLength = tag.VLUndefinedLength
	}

	// Elements in ascending tag order.
	data := dicom.Dataset{Elements: []*dicom.Element{
		el(tag.MediaStorageSOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
		el(tag.MediaStorageSOPInstanceUID, []string{f.SeriesUID + "." + strconv.Itoa(f.InstanceNumber)}),
		el(tag.TransferSyntaxUID, []string{uid.ImplicitVRLittleEndian}),
		el(tag.StudyDescription, []string{"MR BRAIN"}),
		el(tag.SeriesDescription, []string{"T1 AX"}),
		el(tag.PatientName, []string{"DOE^JANE"}),
		el(tag.PatientID, []string{"P1"}),
		el(tag.SliceThickness, []string{"2"}),
		el(tag.StudyInstanceUID, []string{f.StudyUID}),
		el(tag.SeriesInstanceUID, []string{f.SeriesUID}),
		el(tag.StudyID, []string{"42"}),
		el(tag.SeriesNumber, []string{strconv.Itoa(f.SeriesNumber)}),
		el(tag.InstanceNumber, []string{strconv.Itoa(f.InstanceNumber)}),
		el(tag.ImagePositionPatient, []string{"0", "0", decimal(f.Z)}),
		el(tag.ImageOrientationPatient, []string{"1", "0", "0", "0", "1", "0"}),
		el(tag.SamplesPerPixel, []int{1}),
		el(tag.Rows, []int{f.Rows}),
		el(tag.Columns, []int{f.Cols}),
		el(tag.PixelSpacing, []string{"0.5", "0.5"}),
		el(tag.BitsAllocated, []int{16}),
		el(tag.BitsStored, []int{16}),
		el(tag.HighBit, []int{15}),
		el(tag.PixelRepresentation, []int{0}),
		pixelData,
	}}

	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	require.NoError(t, err)
	defer out.Close()
	require.NoError(t, dicom.Write(out, data))
	return path
}

func nativePixels(f fixture) dicom.PixelDataInfo {
	pixels := make([][]int, f.Rows*f.Cols)
	for p := range pixels {
		pixels[p] = []int{f.Fill + p}
	}
	return dicom.PixelDataInfo{
		Frames: []*frame.Frame{{
			NativeData: frame.NativeFrame{
				BitsPerSample: 16,
				Rows:          f.Rows,
				Cols:          f.Cols,
				Data:          pixels,
			},
		}},
	}
}
