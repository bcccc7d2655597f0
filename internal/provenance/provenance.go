package provenance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the provenance record written at the output root.
const FileName = "commandline.json"

// Record captures one generator invocation.
type Record struct {
	RunID      string            `json:"run_id"`
	Tool       string            `json:"tool"`
	Version    string            `json:"version"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Parameters map[string]any    `json:"parameters"`
	ImageCount int               `json:"image_count"`
	Outputs    map[string]string `json:"outputs,omitempty"`
}

// Write stores the record as pretty-printed JSON under outputDir.
func Write(outputDir string, record Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal provenance record: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(outputDir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", FileName, err)
	}
	return nil
}

// Read loads a previously written record, mainly for tests and inspection.
func Read(outputDir string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, FileName))
	if err != nil {
		return Record{}, fmt.Errorf("read %s: %w", FileName, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("parse %s: %w", FileName, err)
	}
	return record, nil
}
