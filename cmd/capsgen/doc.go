// Command capsgen generates synthetic "trivial" neuroimaging datasets by
// corrupting existing CAPS-organized brain images with random gamma
// contrast artefacts.
package main
