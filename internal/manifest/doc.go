// Package manifest reads participant/session TSV lists and writes the
// output manifests of a generation run (data.tsv and the per-session
// missing-modalities report).
package manifest
