package nifti

import (
	"github.com/backmassage/dicomtonifti/internal/volume"
)

const (
	headerSize = 348
	voxOffset  = 352

	// Transform code for scanner-based coordinates; 0 means absent.
	xformScanner = 1

	unitsMM  = 2
	unitsSec = 8
)

// NIFTI datatype codes.
const (
	dtUint8  = 2
	dtInt16  = 4
	dtInt32  = 8
	dtUint16 = 512
	dtUint32 = 768
)

var magicSingleFile = [4]byte{'n', '+', '1', 0}

// header is the on-disk NIFTI-1 header. Field order and sizes match the
// file layout exactly, so encoding/binary can write it without padding.
type header struct {
	SizeofHdr     int32
	DataTypeName  [10]byte
	DBName        [18]byte
	Extents       int32
	SessionError  int16
	Regular       byte
	DimInfo       byte
	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XYZTUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	TOffset       float32
	GLMax         int32
	GLMin         int32
	Descrip       [80]byte
	AuxFile       [24]byte
	QformCode     int16
	SformCode     int16
	QuaternB      float32
	QuaternC      float32
	QuaternD      float32
	QOffsetX      float32
	QOffsetY      float32
	QOffsetZ      float32
	SrowX         [4]float32
	SrowY         [4]float32
	SrowZ         [4]float32
	IntentName    [16]byte
	Magic         [4]byte
}

func datatypeCode(t volume.DataType) int16 {
	switch t {
	case volume.Uint8:
		return dtUint8
	case volume.Int16:
		return dtInt16
	case volume.Uint16:
		return dtUint16
	case volume.Int32:
		return dtInt32
	default:
		return dtUint32
	}
}

// newHeader fills the fields that do not depend on orientation.
func newHeader(vol *volume.Volume, description string) header {
	h := header{
		SizeofHdr: headerSize,
		Regular:   'r',
		Datatype:  datatypeCode(vol.Type),
		Bitpix:    int16(vol.Type.BitsPerVoxel()),
		VoxOffset: voxOffset,
		SclSlope:  float32(vol.Slope),
		SclInter:  float32(vol.Intercept),
		XYZTUnits: unitsMM | unitsSec,
		Magic:     magicSingleFile,
	}
	h.Dim[0] = 3
	for i := 0; i < 3; i++ {
		h.Dim[i+1] = int16(vol.Dims[i])
	}
	for i := 4; i < 8; i++ {
		h.Dim[i] = 1
	}
	h.Pixdim[0] = 1
	for i := 0; i < 3; i++ {
		h.Pixdim[i+1] = float32(vol.Spacing[i])
	}
	for i := 4; i < 8; i++ {
		h.Pixdim[i] = 1
	}
	copy(h.Descrip[:len(h.Descrip)-1], description)
	return h
}
