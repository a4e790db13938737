package naming

import (
	"path/filepath"
)

// SeriesMetadata holds the six raw attributes used to name a series,
// read from the first file of the series.
type SeriesMetadata struct {
	PatientName       string
	PatientID         string
	StudyDescription  string
	StudyID           string
	SeriesDescription string
	SeriesNumber      string
}

// Sanitized returns a copy with every field passed through [SafeString].
func (m SeriesMetadata) Sanitized() SeriesMetadata {
	return SeriesMetadata{
		PatientName:       SafeString(m.PatientName),
		PatientID:         SafeString(m.PatientID),
		StudyDescription:  SafeString(m.StudyDescription),
		StudyID:           SafeString(m.StudyID),
		SeriesDescription: SafeString(m.SeriesDescription),
		SeriesNumber:      SafeString(m.SeriesNumber),
	}
}

// OutputPath builds the batch-mode output file for one series:
//
//	<root>/<patient>/<studyDescription>-<studyID>/<seriesDescription>_<seriesNumber>.nii
//
// The patient segment is the sanitized name unless it is UNKNOWN, in which
// case the sanitized ID is used. The result never carries ".gz"; the caller
// appends it when compressing.
func OutputPath(root string, meta SeriesMetadata) string {
	m := meta.Sanitized()
	patient := m.PatientName
	if patient == Unknown {
		patient = m.PatientID
	}
	study := m.StudyDescription + "-" + m.StudyID
	file := m.SeriesDescription + "_" + m.SeriesNumber + ".nii"
	return filepath.Join(root, patient, study, file)
}

// StudyDir returns the directory that holds every series of the study
// that path belongs to.
func StudyDir(path string) string {
	return filepath.Dir(path)
}
