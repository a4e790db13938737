// Package dicomio reads DICOM files for the conversion pipeline.
//
// It provides the three read-side collaborators of the driver:
//
//   - [Sorter] groups a flat file list into studies and series.
//   - [MetadataReader] extracts the naming attributes of one file.
//   - [VolumeReader] assembles a series into a voxel volume plus its
//     patient-space matrix.
//
// Parsing is done with github.com/suyashkumar/dicom. Every error returned
// from this package is an [ioerr.Error] naming the offending file.
package dicomio
