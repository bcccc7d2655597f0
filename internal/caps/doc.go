// Package caps models the CAPS on-disk layout for processed neuroimaging
// data and locates preprocessed images by participant and session.
//
// A CAPS tree stores one directory per subject under subjects/, one
// directory per session below that, and pipeline output below the session
// (for example subjects/sub-ADNI001/ses-M00/t1_linear/...). Multi-cohort
// inputs are expressed as a TSV mapping cohort names to CAPS roots.
package caps
