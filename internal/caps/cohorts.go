package caps

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ParseCohorts resolves the source argument into a cohort-name to CAPS-root
// map. In multi-cohort mode the source must be a TSV with cohort and path
// columns; otherwise the source is used directly under DefaultCohort.
func ParseCohorts(source string, multiCohort bool) (map[string]string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("source CAPS path is required")
	}

	if !multiCohort {
		info, err := os.Stat(source)
		if err != nil {
			return nil, fmt.Errorf("stat CAPS directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("CAPS path %q is not a directory (use --multi-cohort for a cohort TSV)", source)
		}
		return map[string]string{DefaultCohort: source}, nil
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open cohort TSV: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse cohort TSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("cohort TSV %q has no data rows", source)
	}

	cohortIdx, pathIdx := -1, -1
	for i, column := range records[0] {
		switch strings.TrimSpace(column) {
		case "cohort":
			cohortIdx = i
		case "path":
			pathIdx = i
		}
	}
	if cohortIdx < 0 || pathIdx < 0 {
		return nil, fmt.Errorf("cohort TSV must have cohort and path columns, got %v", records[0])
	}

	cohorts := make(map[string]string, len(records)-1)
	for _, record := range records[1:] {
		name := strings.TrimSpace(record[cohortIdx])
		dir := strings.TrimSpace(record[pathIdx])
		if name == "" || dir == "" {
			return nil, fmt.Errorf("cohort TSV has an empty cohort or path entry")
		}
		if _, ok := cohorts[name]; ok {
			return nil, fmt.Errorf("cohort %q listed twice", name)
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolve cohort path %q: %w", dir, err)
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("cohort %q path %q is not a directory", name, dir)
		}
		cohorts[name] = abs
	}
	return cohorts, nil
}
