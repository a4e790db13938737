// Package naming turns series metadata into batch-mode output paths.
//
// Every metadata field is sanitized independently ([SafeString]) and the
// path is assembled as
//
//	<root>/<patient>/<studyDescription>-<studyID>/<seriesDescription>_<seriesNumber>.nii
//
// where <patient> is the sanitized patient name, or the patient ID when the
// name is UNKNOWN. [CollisionResolver] keeps two series of one run from
// claiming the same file.
package naming
