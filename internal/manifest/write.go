package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Row is one line of the generated data.tsv manifest.
type Row struct {
	ParticipantID string
	SessionID     string
	Diagnosis     string
}

// WriteDataTSV writes the output manifest to <outputDir>/data.tsv in the
// order the rows are supplied.
func WriteDataTSV(outputDir string, rows []Row) error {
	var sb strings.Builder
	sb.WriteString("participant_id\tsession_id\tdiagnosis\n")
	for _, row := range rows {
		sb.WriteString(row.ParticipantID)
		sb.WriteByte('\t')
		sb.WriteString(row.SessionID)
		sb.WriteByte('\t')
		sb.WriteString(row.Diagnosis)
		sb.WriteByte('\n')
	}

	path := filepath.Join(outputDir, "data.tsv")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write data.tsv: %w", err)
	}
	return nil
}

// WriteMissingModalities writes one TSV per session under
// <outputDir>/missing_mods/, marking the synthetic modality present (1) for
// every generated participant. Downstream tooling expects these files to
// exist even for fully synthetic datasets.
func WriteMissingModalities(outputDir string, rows []Row) error {
	missingDir := filepath.Join(outputDir, "missing_mods")
	if err := os.MkdirAll(missingDir, 0o755); err != nil {
		return fmt.Errorf("create missing_mods directory: %w", err)
	}

	bySession := make(map[string][]Row)
	var sessions []string
	for _, row := range rows {
		if _, ok := bySession[row.SessionID]; !ok {
			sessions = append(sessions, row.SessionID)
		}
		bySession[row.SessionID] = append(bySession[row.SessionID], row)
	}

	for _, session := range sessions {
		var sb strings.Builder
		sb.WriteString("participant_id\tsynthetic\n")
		for _, row := range bySession[session] {
			sb.WriteString(row.ParticipantID)
			sb.WriteString("\t1\n")
		}
		path := filepath.Join(missingDir, fmt.Sprintf("missing_mods_%s.tsv", session))
		if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}
