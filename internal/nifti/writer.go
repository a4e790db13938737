package nifti

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/klauspost/compress/gzip"

	"github.com/backmassage/dicomtonifti/internal/geometry"
	"github.com/backmassage/dicomtonifti/internal/ioerr"
	"github.com/backmassage/dicomtonifti/internal/planner"
	"github.com/backmassage/dicomtonifti/internal/volume"
)

// DefaultDescription is stored in the header's descrip field.
const DefaultDescription = "dicomtonifti"

// Writer writes volumes as single-file NIFTI-1.
type Writer struct {
	Description string
}

// IsCompressedName reports whether path asks for gzip output.
func IsCompressedName(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".gz")
}

// Write stores vol at path following plan and returns the size of the
// file written. A partially written file is removed on failure.
//
// When plan.QFac is negative the slices are stored in reverse, restoring
// the original DICOM order, and the orientation is adjusted to match:
// the slice axis is negated and the origin moved to the last slice, which
// makes the header's qfac -1.
func (w *Writer) Write(path string, vol *volume.Volume, plan *planner.WritePlan) (int64, error) {
	if path == "" {
		return 0, ioerr.New(ioerr.NoFileName, path, errors.New("empty output path"))
	}

	reverse := plan.PreservesDiskOrder()
	nz := vol.Dims[2]
	adjust := func(m geometry.Matrix4) geometry.Matrix4 {
		if !reverse {
			return m
		}
		step := m.Column(2)
		for r := 0; r < 3; r++ {
			m[r][3] += float64(nz-1) * step[r]
		}
		m.SetColumn(2, geometry.Scale(step, -1))
		return m
	}

	desc := w.Description
	if desc == "" {
		desc = DefaultDescription
	}
	h := newHeader(vol, desc)

	q := toQuatern(adjust(plan.Matrix))
	h.Pixdim[0] = float32(q.qfac)
	h.Pixdim[1], h.Pixdim[2], h.Pixdim[3] = float32(q.dx), float32(q.dy), float32(q.dz)

	if plan.QForm != nil {
		qf := toQuatern(adjust(*plan.QForm))
		h.QformCode = xformScanner
		h.QuaternB, h.QuaternC, h.QuaternD = float32(qf.b), float32(qf.c), float32(qf.d)
		h.QOffsetX, h.QOffsetY, h.QOffsetZ = float32(qf.offset[0]), float32(qf.offset[1]), float32(qf.offset[2])
		h.Pixdim[0] = float32(qf.qfac)
	}
	if plan.SForm != nil {
		sf := adjust(*plan.SForm)
		h.SformCode = xformScanner
		for c := 0; c < 4; c++ {
			h.SrowX[c] = float32(sf[0][c])
			h.SrowY[c] = float32(sf[1][c])
			h.SrowZ[c] = float32(sf[2][c])
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fileError(path, err)
	}
	if err := encode(f, path, h, vol, reverse); err != nil {
		f.Close()
		os.Remove(path)
		return 0, fileError(path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return 0, fileError(path, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return 0, ioerr.Classify(path, err)
	}
	return fi.Size(), nil
}

func encode(f *os.File, path string, h header, vol *volume.Volume, reverse bool) error {
	bw := bufio.NewWriterSize(f, 1<<20)
	var out io.Writer = bw
	var zw *gzip.Writer
	if IsCompressedName(path) {
		zw = gzip.NewWriter(bw)
		out = zw
	}

	if err := binary.Write(out, binary.LittleEndian, &h); err != nil {
		return err
	}
	// Empty extension block: the four bytes after the header are zero.
	if _, err := out.Write(make([]byte, voxOffset-headerSize)); err != nil {
		return err
	}
	if err := writeVoxels(out, vol, reverse); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// writeVoxels writes the volume one slice at a time, last slice first when
// reverse is set.
func writeVoxels(w io.Writer, vol *volume.Volume, reverse bool) error {
	n := vol.SliceLen()
	bpv := vol.Type.BitsPerVoxel() / 8
	buf := make([]byte, n*bpv)
	nz := vol.Dims[2]
	for s := 0; s < nz; s++ {
		k := s
		if reverse {
			k = nz - 1 - s
		}
		src := vol.Data[k*n : (k+1)*n]
		switch bpv {
		case 1:
			for i, v := range src {
				buf[i] = byte(v)
			}
		case 2:
			for i, v := range src {
				binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
			}
		default:
			for i, v := range src {
				binary.LittleEndian.PutUint32(buf[4*i:], uint32(v))
			}
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// fileError maps a create or write failure. Anything other than a full
// disk is reported as an unusable output file.
func fileError(path string, err error) error {
	if errors.Is(err, syscall.ENOSPC) {
		return ioerr.New(ioerr.OutOfDiskSpace, path, err)
	}
	return ioerr.New(ioerr.CannotOpenFile, path, err)
}
