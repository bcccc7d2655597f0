// Package testsupport provides shared fixtures for capsgen tests: temp-dir
// configs and miniature CAPS trees populated with small NIfTI volumes.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"capsgen/internal/config"
	"capsgen/internal/nifti"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerDir = filepath.Join(base, "ledger")
	cfg.Generation.Workers = 2
	return &cfg
}

// T1CroppedFileName returns the conventional t1-linear cropped image name
// for a participant/session pair.
func T1CroppedFileName(participant, session string) string {
	return fmt.Sprintf("%s_%s_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz", participant, session)
}

// WriteCAPSImage creates a small gradient volume at the conventional
// t1-linear location inside capsDir and returns its path.
func WriteCAPSImage(t testing.TB, capsDir, participant, session string) string {
	t.Helper()

	dir := filepath.Join(capsDir, "subjects", participant, session, "t1_linear")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create CAPS pipeline directory: %v", err)
	}

	img, err := nifti.New(4, 4, 4, nifti.DTFloat32)
	if err != nil {
		t.Fatalf("build test volume: %v", err)
	}
	for i := range img.Data {
		img.Data[i] = float64(i)
	}

	path := filepath.Join(dir, T1CroppedFileName(participant, session))
	if err := nifti.WriteFile(path, img); err != nil {
		t.Fatalf("write test volume: %v", err)
	}
	return path
}

// WriteParticipantsTSV writes a participant/session list and returns its path.
func WriteParticipantsTSV(t testing.TB, dir string, visits [][2]string) string {
	t.Helper()

	content := "participant_id\tsession_id\n"
	for _, visit := range visits {
		content += visit[0] + "\t" + visit[1] + "\n"
	}
	path := filepath.Join(dir, "participants.tsv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write participants TSV: %v", err)
	}
	return path
}
