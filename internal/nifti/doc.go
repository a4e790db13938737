// Package nifti writes single-file NIFTI-1 images (.nii, .nii.gz).
//
// A file is a 348-byte little-endian header, a 4-byte empty extension
// block, then the voxel data starting at offset 352. The qform (quaternion
// plus qfac in pixdim[0]) and sform (affine rows) are taken from the
// series' write plan; either can be suppressed, in which case its code is 0.
package nifti
