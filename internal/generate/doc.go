// Package generate orchestrates synthetic contrast dataset runs: it
// resolves the participant list, locates each source image, applies the
// random gamma transform in parallel, and writes the output CAPS tree with
// its manifests, provenance record, and ledger entries.
package generate
