// Package nifti reads and writes single-file NIfTI-1 images (.nii and
// .nii.gz).
//
// Only the subset of the format the generator needs is supported: scalar
// volumes stored as uint8, int16, int32, float32, or float64, with the data
// in the same file as the header ("n+1" magic). Voxels are surfaced as
// float64 with the header scl slope/intercept applied on read.
//
// Header layout follows the official nifti1.h definition,
// https://nifti.nimh.nih.gov/pub/dist/src/niftilib/nifti1.h
package nifti
