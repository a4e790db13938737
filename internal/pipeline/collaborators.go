package pipeline

import (
	"context"

	"github.com/backmassage/dicomtonifti/internal/config"
	"github.com/backmassage/dicomtonifti/internal/dicomio"
	"github.com/backmassage/dicomtonifti/internal/geometry"
	"github.com/backmassage/dicomtonifti/internal/naming"
	"github.com/backmassage/dicomtonifti/internal/nifti"
	"github.com/backmassage/dicomtonifti/internal/planner"
	"github.com/backmassage/dicomtonifti/internal/volume"
)

// Sorter groups a flat file list by study and series.
type Sorter interface {
	Sort(ctx context.Context, files []string) (*dicomio.Grouping, error)
}

// MetadataReader extracts the naming attributes of one file.
type MetadataReader interface {
	ReadMetadata(path string) (naming.SeriesMetadata, error)
}

// VolumeReader assembles the files of one series into a volume.
type VolumeReader interface {
	ReadVolume(ctx context.Context, files []string) (*dicomio.Image, error)
}

// Converter maps a volume into NIFTI RAS space.
type Converter interface {
	Convert(patient geometry.Matrix4, vol *volume.Volume) geometry.Result
}

// Writer stores a converted volume and returns the file size.
type Writer interface {
	Write(path string, vol *volume.Volume, plan *planner.WritePlan) (int64, error)
}

// Collaborators bundles everything the driver delegates to.
type Collaborators struct {
	Sorter    Sorter
	Metadata  MetadataReader
	Volumes   VolumeReader
	Converter Converter
	Writer    Writer
}

// DefaultCollaborators returns the DICOM readers, RAS converter and NIFTI
// writer configured from cfg.
func DefaultCollaborators(cfg *config.Config) Collaborators {
	return Collaborators{
		Sorter:   &dicomio.Sorter{},
		Metadata: dicomio.MetadataReader{},
		Volumes:  dicomio.VolumeReader{},
		Converter: &geometry.Converter{
			AllowRowReordering:    !cfg.NoRowReordering,
			AllowColumnReordering: !cfg.NoColumnReordering,
		},
		Writer: &nifti.Writer{},
	}
}
