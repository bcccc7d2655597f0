package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"capsgen/internal/testsupport"
)

func TestRunsCommandListsRuns(t *testing.T) {
	env := setupCLITestEnv(t)

	capsDir := filepath.Join(env.baseDir, "caps")
	testsupport.WriteCAPSImage(t, capsDir, "sub-01", "ses-M00")

	out, _, err := runCLI(t, []string{
		"trivial-contrast", capsDir, filepath.Join(env.baseDir, "out"),
		"--seed", "9", "--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("trivial-contrast: %v", err)
	}
	var summary runSummaryJSON
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("parse summary: %v", err)
	}

	out, _, err = runCLI(t, []string{"runs", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs []runJSON
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("parse runs: %v\noutput: %s", err, out)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[0].Status != "completed" || runs[0].ImageCount != 1 {
		t.Fatalf("run = %+v", runs[0])
	}
}

func TestRunsShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	capsDir := filepath.Join(env.baseDir, "caps")
	testsupport.WriteCAPSImage(t, capsDir, "sub-01", "ses-M00")

	out, _, err := runCLI(t, []string{
		"trivial-contrast", capsDir, filepath.Join(env.baseDir, "out"),
		"--seed", "9", "--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("trivial-contrast: %v", err)
	}
	var summary runSummaryJSON
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("parse summary: %v", err)
	}

	out, _, err = runCLI(t, []string{"runs", "show", summary.RunID, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	var detail runDetailJSON
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("parse detail: %v\noutput: %s", err, out)
	}
	if detail.Run.ID != summary.RunID || len(detail.Images) != 1 {
		t.Fatalf("detail = %+v", detail)
	}
	image := detail.Images[0]
	if image.ParticipantID != "sub-CONT01" || image.Status != "completed" || image.Gamma <= 0 {
		t.Fatalf("image = %+v", image)
	}
}

func TestRunsShowUnknownRun(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"runs", "show", "no-such-run"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown run to fail")
	}
}

func TestRunsCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"runs"}, env.configPath)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	requireContains(t, out, "No runs recorded.")
}
