package dicomio

import (
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/backmassage/dicomtonifti/internal/ioerr"
	"github.com/backmassage/dicomtonifti/internal/naming"
)

// MetadataReader reads the naming attributes of a single file.
type MetadataReader struct{}

// ReadMetadata returns the raw (unsanitized) naming attributes of path.
// Missing attributes are empty strings.
func (MetadataReader) ReadMetadata(path string) (naming.SeriesMetadata, error) {
	if _, err := os.Stat(path); err != nil {
		return naming.SeriesMetadata{}, ioerr.Classify(path, err)
	}
	ds, err := dicom.ParseFile(path, nil, dicom.SkipPixelData())
	if err != nil {
		return naming.SeriesMetadata{}, ioerr.Classify(path, err)
	}
	return naming.SeriesMetadata{
		PatientName:       stringValue(&ds, tag.PatientName),
		PatientID:         stringValue(&ds, tag.PatientID),
		StudyDescription:  stringValue(&ds, tag.StudyDescription),
		StudyID:           stringValue(&ds, tag.StudyID),
		SeriesDescription: stringValue(&ds, tag.SeriesDescription),
		SeriesNumber:      stringValue(&ds, tag.SeriesNumber),
	}, nil
}
