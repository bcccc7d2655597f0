// Package provenance records how a synthetic dataset was produced. Every
// run writes a commandline.json at the output root capturing the invocation
// parameters, run identifier, and timing.
package provenance
