package caps

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileTypeFor(t *testing.T) {
	tests := []struct {
		name          string
		preprocessing string
		uncropped     bool
		tracer        string
		region        string
		wantPattern   string
		wantErr       bool
	}{
		{
			name:          "t1 cropped",
			preprocessing: "t1-linear",
			wantPattern:   "*space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz",
		},
		{
			name:          "t1 uncropped",
			preprocessing: "t1-linear",
			uncropped:     true,
			wantPattern:   "*space-MNI152NLin2009cSym_res-1x1x1_T1w.nii.gz",
		},
		{
			name:          "pet cropped",
			preprocessing: "pet-linear",
			tracer:        "18FFDG",
			region:        "pons",
			wantPattern:   "*trc-18FFDG_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_suvr-pons_pet.nii.gz",
		},
		{
			name:          "pet missing tracer",
			preprocessing: "pet-linear",
			region:        "pons",
			wantErr:       true,
		},
		{
			name:          "unknown pipeline",
			preprocessing: "t2-linear",
			wantErr:       true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft, err := FileTypeFor(tc.preprocessing, tc.uncropped, tc.tracer, tc.region)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ft.Pattern != tc.wantPattern {
				t.Fatalf("pattern = %q, want %q", ft.Pattern, tc.wantPattern)
			}
		})
	}
}

func TestFindImage(t *testing.T) {
	caps := t.TempDir()
	target := filepath.Join(caps, "subjects", "sub-ADNI001", "ses-M00", "t1_linear",
		"sub-ADNI001_ses-M00_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz")
	writeFile(t, target)

	ft, err := FileTypeFor("t1-linear", false, "", "")
	if err != nil {
		t.Fatal(err)
	}

	got, err := FindImage(caps, "sub-ADNI001", "ses-M00", ft)
	if err != nil {
		t.Fatalf("find image: %v", err)
	}
	if got != target {
		t.Fatalf("got %q, want %q", got, target)
	}
}

func TestFindImageNotFound(t *testing.T) {
	caps := t.TempDir()
	writeFile(t, filepath.Join(caps, "subjects", "sub-01", "ses-M00", "t1_linear", "unrelated.txt"))

	ft, _ := FileTypeFor("t1-linear", false, "", "")
	_, err := FindImage(caps, "sub-01", "ses-M00", ft)
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("want ErrImageNotFound, got %v", err)
	}

	_, err = FindImage(caps, "sub-02", "ses-M00", ft)
	if !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("missing session dir should be ErrImageNotFound, got %v", err)
	}
}

func TestFindImageAmbiguous(t *testing.T) {
	caps := t.TempDir()
	base := filepath.Join(caps, "subjects", "sub-01", "ses-M00", "t1_linear")
	writeFile(t, filepath.Join(base, "sub-01_ses-M00_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz"))
	writeFile(t, filepath.Join(base, "copy", "sub-01_ses-M00_space-MNI152NLin2009cSym_desc-Crop_res-1x1x1_T1w.nii.gz"))

	ft, _ := FileTypeFor("t1-linear", false, "", "")
	_, err := FindImage(caps, "sub-01", "ses-M00", ft)
	if !errors.Is(err, ErrAmbiguousImage) {
		t.Fatalf("want ErrAmbiguousImage, got %v", err)
	}
}

func TestDiscoverVisits(t *testing.T) {
	caps := t.TempDir()
	writeFile(t, filepath.Join(caps, "subjects", "sub-02", "ses-M12", "t1_linear", "a"))
	writeFile(t, filepath.Join(caps, "subjects", "sub-01", "ses-M00", "t1_linear", "a"))
	writeFile(t, filepath.Join(caps, "subjects", "sub-01", "ses-M12", "t1_linear", "a"))
	writeFile(t, filepath.Join(caps, "subjects", "not-a-subject", "ses-M00", "a"))

	visits, err := DiscoverVisits(caps, DefaultCohort)
	if err != nil {
		t.Fatal(err)
	}
	want := []Visit{
		{Participant: "sub-01", Session: "ses-M00", Cohort: DefaultCohort},
		{Participant: "sub-01", Session: "ses-M12", Cohort: DefaultCohort},
		{Participant: "sub-02", Session: "ses-M12", Cohort: DefaultCohort},
	}
	if len(visits) != len(want) {
		t.Fatalf("got %d visits, want %d: %v", len(visits), len(want), visits)
	}
	for i := range want {
		if visits[i] != want[i] {
			t.Fatalf("visit %d = %+v, want %+v", i, visits[i], want[i])
		}
	}
}

func TestParseCohortsSingle(t *testing.T) {
	caps := t.TempDir()
	cohorts, err := ParseCohorts(caps, false)
	if err != nil {
		t.Fatal(err)
	}
	if cohorts[DefaultCohort] != caps {
		t.Fatalf("cohorts = %v", cohorts)
	}
}

func TestParseCohortsMulti(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	tsv := filepath.Join(t.TempDir(), "cohorts.tsv")
	content := "cohort\tpath\nADNI\t" + dirA + "\nAIBL\t" + dirB + "\n"
	if err := os.WriteFile(tsv, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cohorts, err := ParseCohorts(tsv, true)
	if err != nil {
		t.Fatal(err)
	}
	if cohorts["ADNI"] != dirA || cohorts["AIBL"] != dirB {
		t.Fatalf("cohorts = %v", cohorts)
	}
}

func TestParseCohortsRejectsMissingColumns(t *testing.T) {
	tsv := filepath.Join(t.TempDir(), "cohorts.tsv")
	if err := os.WriteFile(tsv, []byte("name\tdir\nADNI\t/tmp\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ParseCohorts(tsv, true)
	if err == nil || !strings.Contains(err.Error(), "cohort and path") {
		t.Fatalf("expected column error, got %v", err)
	}
}
