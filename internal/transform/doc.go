// Package transform implements the random gamma intensity transform used to
// corrupt source images with synthetic contrast artefacts.
//
// The exponent is sampled as exp(g) with g uniform in a configured
// log-gamma range, then applied to min-max normalized intensities so the
// output stays within the input's intensity range.
package transform
