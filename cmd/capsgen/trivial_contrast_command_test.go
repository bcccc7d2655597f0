package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"capsgen/internal/testsupport"
)

func TestTrivialContrastCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	capsDir := filepath.Join(env.baseDir, "caps")
	testsupport.WriteCAPSImage(t, capsDir, "sub-01", "ses-M00")
	testsupport.WriteCAPSImage(t, capsDir, "sub-02", "ses-M00")
	outputDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, []string{
		"trivial-contrast", capsDir, outputDir,
		"--seed", "42",
	}, env.configPath)
	if err != nil {
		t.Fatalf("trivial-contrast: %v", err)
	}
	requireContains(t, out, "Generated 2 synthetic images")
	requireContains(t, out, "sub-CONT01")
	requireContains(t, out, "sub-CONT02")

	for _, p := range []string{
		filepath.Join(outputDir, "data.tsv"),
		filepath.Join(outputDir, "missing_mods", "missing_mods_ses-M00.tsv"),
		filepath.Join(outputDir, "commandline.json"),
		filepath.Join(outputDir, "subjects", "sub-CONT01", "ses-M00", "t1-linear",
			"sub-CONT01_ses-M00_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz"),
	} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected output %s: %v", p, err)
		}
	}
}

func TestTrivialContrastCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	capsDir := filepath.Join(env.baseDir, "caps")
	testsupport.WriteCAPSImage(t, capsDir, "sub-01", "ses-M00")
	outputDir := filepath.Join(env.baseDir, "out")

	out, _, err := runCLI(t, []string{
		"trivial-contrast", capsDir, outputDir,
		"--seed", "7",
		"--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("trivial-contrast --json: %v", err)
	}

	var summary runSummaryJSON
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("parse summary: %v\noutput: %s", err, out)
	}
	if summary.ImageCount != 1 || summary.RunID == "" {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.OutputDir != outputDir {
		t.Fatalf("output dir = %q", summary.OutputDir)
	}
}

func TestTrivialContrastCommandRejectsBadGamma(t *testing.T) {
	env := setupCLITestEnv(t)

	capsDir := filepath.Join(env.baseDir, "caps")
	testsupport.WriteCAPSImage(t, capsDir, "sub-01", "ses-M00")

	_, _, err := runCLI(t, []string{
		"trivial-contrast", capsDir, filepath.Join(env.baseDir, "out"),
		"--gamma", "0.5,-0.5",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected inverted gamma range to fail")
	}

	_, _, err = runCLI(t, []string{
		"trivial-contrast", capsDir, filepath.Join(env.baseDir, "out"),
		"--gamma", "-0.2",
	}, env.configPath)
	if err == nil {
		t.Fatal("expected single gamma value to fail")
	}
}

func TestTrivialContrastCommandRequiresArgs(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"trivial-contrast", "only-one-arg"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing OUTPUT_DIR to fail")
	}
}
